// Package engines - Transform engine interface and implementations.
package engines

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/nvr-ai/go-imgprep/images"
)

// Type is the name of a transform back end.
type Type string

const (
	// EngineNative decodes, transforms and encodes in pure Go.
	EngineNative Type = "native"
	// EngineOpenCV uses OpenCV through gocv (build tag "opencv").
	EngineOpenCV Type = "opencv"
	// EngineVips uses libvips through vipsgen (build tag "vips").
	EngineVips Type = "vips"
)

// Engines is a list of all known engines, compiled in or not.
var Engines = []Type{EngineNative, EngineOpenCV, EngineVips}

// Op is the single transformation a job applies.
type Op string

const (
	// OpResize stretches the input to Job.Width x Job.Height with area averaging.
	OpResize Op = "resize"
	// OpGrayscale converts the input to single-channel luma.
	OpGrayscale Op = "grayscale"
)

// Job is one decode, transform, encode sequence.
type Job struct {
	// Op is the transformation to apply.
	Op Op
	// Input is the path of the image to read.
	Input string
	// Output is the path the JPEG result is written to.
	Output string
	// Width is the resize target width. Ignored by OpGrayscale.
	Width int
	// Height is the resize target height. Ignored by OpGrayscale.
	Height int
}

// Validate checks the job before any file is touched.
func (j Job) Validate() error {
	if j.Input == "" {
		return &images.MissingArgumentError{Name: "input"}
	}
	if j.Output == "" {
		return &images.MissingArgumentError{Name: "output"}
	}
	switch j.Op {
	case OpResize:
		if j.Width <= 0 || j.Height <= 0 {
			return fmt.Errorf("invalid dimensions: width=%d, height=%d", j.Width, j.Height)
		}
	case OpGrayscale:
	default:
		return fmt.Errorf("unsupported operation: %q", j.Op)
	}
	return nil
}

// Engine performs a Job end to end.
type Engine interface {
	// Name returns the engine type.
	Name() Type
	// Transform runs the job and describes the written output.
	Transform(ctx context.Context, job Job) (images.Image, error)
	// Close releases engine-wide resources.
	Close() error
}

// Factory builds an engine that logs to logger.
type Factory func(logger *zap.Logger) (Engine, error)

var (
	registryMu sync.RWMutex
	registry   = map[Type]Factory{}
)

// Register makes an engine available to New. Engines behind build tags register
// themselves from init.
func Register(name Type, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// New creates the named engine.
//
// Arguments:
//   - name: The engine type.
//   - logger: Receives per-job debug entries; nil disables them.
//
// Returns:
//   - Engine: The engine.
//   - error: If the engine is unknown or was not compiled into this binary.
func New(name Type, logger *zap.Logger) (Engine, error) {
	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		for _, known := range Engines {
			if known == name {
				return nil, fmt.Errorf("engine %q is not compiled in; rebuild with -tags %s", name, name)
			}
		}
		return nil, fmt.Errorf("unknown engine: %q", name)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return factory(logger.Named(string(name)))
}

// Available lists the engines compiled into this binary.
func Available() []Type {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]Type, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}
