package engines

import (
	"context"
	"fmt"
	"image"

	"go.uber.org/zap"

	"github.com/nvr-ai/go-imgprep/images"
)

func init() {
	Register(EngineNative, func(logger *zap.Logger) (Engine, error) { return NewNative(logger), nil })
}

// Native runs jobs with the pure Go primitives of the images package.
type Native struct {
	logger *zap.Logger
}

// NewNative creates the pure Go engine. A nil logger disables logging.
func NewNative(logger *zap.Logger) *Native {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Native{logger: logger}
}

// Name returns EngineNative.
func (n *Native) Name() Type { return EngineNative }

// Close is a no-op; the engine holds no resources between jobs.
func (n *Native) Close() error { return nil }

// Transform decodes job.Input, applies job.Op and writes job.Output as JPEG.
//
// Arguments:
//   - ctx: Checked between steps.
//   - job: The job to run.
//
// Returns:
//   - images.Image: The descriptor of the written output.
//   - error: *images.DecodeError, *images.EncodeError, or a validation error.
func (n *Native) Transform(ctx context.Context, job Job) (images.Image, error) {
	if err := job.Validate(); err != nil {
		return images.Image{}, err
	}

	src, format, err := images.DecodeFile(job.Input)
	if err != nil {
		return images.Image{}, err
	}
	n.logger.Debug("image decoded",
		zap.String("format", string(format)),
		zap.Int("width", src.Bounds().Dx()),
		zap.Int("height", src.Bounds().Dy()),
	)
	if err := ctx.Err(); err != nil {
		return images.Image{}, err
	}

	var out image.Image
	switch job.Op {
	case OpResize:
		resized, err := images.ResizeArea(src, job.Width, job.Height)
		if err != nil {
			return images.Image{}, &images.DecodeError{Path: job.Input, Err: err}
		}
		out = resized
	case OpGrayscale:
		out = images.Grayscale(src)
	default:
		return images.Image{}, fmt.Errorf("unsupported operation: %q", job.Op)
	}
	if err := ctx.Err(); err != nil {
		return images.Image{}, err
	}

	if err := images.EncodeFile(job.Output, out); err != nil {
		return images.Image{}, err
	}

	return images.Describe(out, images.FormatJPEG), nil
}
