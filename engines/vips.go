//go:build vips

package engines

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/cshum/vipsgen/vips"
	"go.uber.org/zap"

	"github.com/nvr-ai/go-imgprep/images"
)

func init() {
	Register(EngineVips, func(logger *zap.Logger) (Engine, error) { return NewVips(logger), nil })
}

// Vips runs jobs through libvips: a forced-size thumbnail for resize and a B/W
// colourspace conversion for grayscale.
type Vips struct {
	logger *zap.Logger
}

// NewVips creates the libvips engine. A nil logger disables logging.
func NewVips(logger *zap.Logger) *Vips {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Vips{logger: logger}
}

// Name returns EngineVips.
func (v *Vips) Name() Type { return EngineVips }

// Close is a no-op; images are released per job.
func (v *Vips) Close() error { return nil }

// Transform decodes job.Input with libvips, applies job.Op and writes job.Output as JPEG.
func (v *Vips) Transform(ctx context.Context, job Job) (images.Image, error) {
	if err := job.Validate(); err != nil {
		return images.Image{}, err
	}

	data, err := os.ReadFile(job.Input)
	if err != nil {
		return images.Image{}, images.NewDecodeError(job.Input, err, "failed to open image")
	}

	// Load the image from buffer.
	img, err := vips.NewImageFromBuffer(data, &vips.LoadOptions{
		Access: vips.AccessSequential,
	})
	if err != nil {
		return images.Image{}, images.NewDecodeError(job.Input, err, "failed to load image")
	}
	defer img.Close()

	if err := ctx.Err(); err != nil {
		return images.Image{}, err
	}

	switch job.Op {
	case OpResize:
		// Forced size: stretch to the exact box instead of fitting inside it.
		err = img.ThumbnailImage(job.Width, &vips.ThumbnailImageOptions{
			Height: job.Height,
			Size:   vips.SizeForce,
			FailOn: vips.FailOnError,
		})
		if err != nil {
			return images.Image{}, images.NewDecodeError(job.Input, err, "failed to resize image")
		}
	case OpGrayscale:
		if err := img.Colourspace(vips.InterpretationBW, nil); err != nil {
			return images.Image{}, images.NewDecodeError(job.Input, err, "failed to convert colourspace")
		}
	default:
		return images.Image{}, fmt.Errorf("unsupported operation: %q", job.Op)
	}
	if err := ctx.Err(); err != nil {
		return images.Image{}, err
	}
	v.logger.Debug("image transformed", zap.Int("width", img.Width()), zap.Int("height", img.Height()), zap.Int("bands", img.Bands()))

	// Export to JPEG buffer.
	encoded, err := img.JpegsaveBuffer(&vips.JpegsaveBufferOptions{})
	if err != nil {
		return images.Image{}, images.NewEncodeError(job.Output, err, "failed to encode image")
	}
	if len(encoded) == 0 {
		return images.Image{}, &images.EncodeError{Path: job.Output, Err: images.ErrEmptyImage}
	}

	if err := images.WriteFile(job.Output, func(w io.Writer) error {
		_, err := w.Write(encoded)
		return err
	}); err != nil {
		return images.Image{}, err
	}

	return images.Image{
		Format:   images.FormatJPEG,
		Width:    img.Width(),
		Height:   img.Height(),
		Channels: img.Bands(),
	}, nil
}
