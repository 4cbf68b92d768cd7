//go:build opencv

package engines

import (
	"context"
	"crypto/md5"
	"fmt"
	"image"
	"io"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-imgprep/images"
)

func init() {
	Register(EngineOpenCV, func(logger *zap.Logger) (Engine, error) { return NewOpenCV(logger), nil })
}

// OpenCV runs jobs through gocv: IMRead, Resize with INTER_AREA or CvtColor
// BGR2GRAY, then IMEncode to JPEG.
type OpenCV struct {
	logger *zap.Logger
}

// NewOpenCV creates the OpenCV engine. A nil logger disables logging.
func NewOpenCV(logger *zap.Logger) *OpenCV {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OpenCV{logger: logger}
}

// Name returns EngineOpenCV.
func (o *OpenCV) Name() Type { return EngineOpenCV }

// Close is a no-op; Mats are released per job.
func (o *OpenCV) Close() error { return nil }

// Transform decodes job.Input with OpenCV, applies job.Op and writes job.Output as JPEG.
func (o *OpenCV) Transform(ctx context.Context, job Job) (images.Image, error) {
	if err := job.Validate(); err != nil {
		return images.Image{}, err
	}

	// IMRead returns an empty Mat for every failure, so stat the file first to
	// keep "missing" and "not an image" apart.
	if _, err := os.Stat(job.Input); err != nil {
		return images.Image{}, images.NewDecodeError(job.Input, err, "failed to open image")
	}

	src := gocv.IMRead(job.Input, gocv.IMReadColor)
	defer src.Close()
	if src.Empty() {
		return images.Image{}, &images.DecodeError{Path: job.Input, Err: images.ErrUnsupportedFormat}
	}
	if err := ctx.Err(); err != nil {
		return images.Image{}, err
	}

	dst := gocv.NewMat()
	defer dst.Close()

	switch job.Op {
	case OpResize:
		gocv.Resize(src, &dst, image.Point{X: job.Width, Y: job.Height}, 0, 0, gocv.InterpolationArea)
	case OpGrayscale:
		gocv.CvtColor(src, &dst, gocv.ColorBGRToGray)
	default:
		return images.Image{}, fmt.Errorf("unsupported operation: %q", job.Op)
	}
	if dst.Empty() {
		return images.Image{}, &images.DecodeError{Path: job.Input, Err: errors.Errorf("opencv %s produced an empty image", job.Op)}
	}
	if err := ctx.Err(); err != nil {
		return images.Image{}, err
	}
	o.logger.Debug("mat transformed",
		zap.Int("cols", dst.Cols()),
		zap.Int("rows", dst.Rows()),
		zap.String("checksum", ComputeMatChecksum(dst)),
	)

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, dst)
	if err != nil {
		return images.Image{}, images.NewEncodeError(job.Output, err, "failed to encode image")
	}
	defer buf.Close()

	encoded := buf.GetBytes()
	if err := images.WriteFile(job.Output, func(w io.Writer) error {
		_, err := w.Write(encoded)
		return err
	}); err != nil {
		return images.Image{}, err
	}

	return images.Image{
		Format:   images.FormatJPEG,
		Width:    dst.Cols(),
		Height:   dst.Rows(),
		Channels: dst.Channels(),
	}, nil
}

// ComputeMatChecksum generates a deterministic checksum for a Mat.
//
// Arguments:
// - mat: The Mat to compute checksum for.
//
// Returns:
// - A hex-encoded MD5 checksum string.
func ComputeMatChecksum(mat gocv.Mat) string {
	if mat.Empty() {
		return "empty"
	}

	data, _ := mat.DataPtrUint8()
	hash := md5.New()
	hash.Write(data)
	return fmt.Sprintf("%x", hash.Sum(nil))
}
