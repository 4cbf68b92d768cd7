// Package runner - validates and runs a single image transform job.
package runner

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/nvr-ai/go-imgprep/engines"
	"github.com/nvr-ai/go-imgprep/images"
)

const (
	// ResizeOutput is where the resize program writes its result.
	ResizeOutput = "resized_image.jpg"
	// GrayscaleOutput is where the grayscale program writes its result.
	GrayscaleOutput = "gray_image.jpg"
)

// ResizeJob builds the job that stretches input to the 32x32 OLED target.
func ResizeJob(input string) engines.Job {
	return engines.Job{
		Op:     engines.OpResize,
		Input:  input,
		Output: ResizeOutput,
		Width:  images.TargetWidth,
		Height: images.TargetHeight,
	}
}

// GrayscaleJob builds the job that converts input to grayscale and writes output.
func GrayscaleJob(input, output string) engines.Job {
	return engines.Job{
		Op:     engines.OpGrayscale,
		Input:  input,
		Output: output,
	}
}

// Result describes a completed job.
type Result struct {
	// Job is the job that ran.
	Job engines.Job
	// Engine is the back end that ran it.
	Engine engines.Type
	// Output describes the written file.
	Output images.Image
	// Checksum is the MD5 of the decoded output pixels.
	Checksum string
	// Elapsed is the wall time of the transform.
	Elapsed time.Duration
}

// Runner runs jobs on one engine.
type Runner struct {
	engine engines.Engine
	logger *zap.Logger
}

// New creates a runner.
//
// Arguments:
//   - engine: The back end that performs the transform.
//   - logger: Structured logger; nil disables logging.
//
// Returns:
//   - *Runner: The runner.
func New(engine engines.Engine, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{engine: engine, logger: logger}
}

// Run validates job, then decodes, transforms and encodes it exactly once.
// A job without an input path fails with *images.MissingArgumentError before
// any file is touched.
//
// Arguments:
//   - ctx: Checked between steps.
//   - job: The job to run.
//
// Returns:
//   - *Result: The output descriptor and checksum.
//   - error: *images.MissingArgumentError, *images.DecodeError, *images.EncodeError,
//     or a validation error.
func (r *Runner) Run(ctx context.Context, job engines.Job) (*Result, error) {
	if err := job.Validate(); err != nil {
		return nil, err
	}

	log := r.logger.With(
		zap.String("engine", string(r.engine.Name())),
		zap.String("op", string(job.Op)),
		zap.String("input", job.Input),
		zap.String("output", job.Output),
	)
	// Output is always JPEG whatever the name says.
	if ext := images.FormatFromPath(job.Output); ext != images.FormatJPEG && ext != images.FormatUnknown {
		log.Warn("output extension does not match JPEG content", zap.String("extension_format", string(ext)))
	}
	log.Debug("transform started")

	start := time.Now()
	out, err := r.engine.Transform(ctx, job)
	elapsed := time.Since(start)
	if err != nil {
		log.Debug("transform failed", zap.Error(err), zap.Duration("elapsed", elapsed))
		return nil, err
	}

	// Read the output back so every engine is held to the same guarantees.
	written, _, err := images.DecodeFile(job.Output)
	if err != nil {
		return nil, &images.EncodeError{Path: job.Output, Err: err}
	}

	result := &Result{
		Job:      job,
		Engine:   r.engine.Name(),
		Output:   out,
		Checksum: images.ComputeChecksum(written),
		Elapsed:  elapsed,
	}

	log.Info("transform complete",
		zap.Int("width", out.Width),
		zap.Int("height", out.Height),
		zap.Int("channels", out.Channels),
		zap.String("checksum", result.Checksum),
		zap.Duration("elapsed", elapsed),
	)

	return result, nil
}
