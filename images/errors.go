package images

import (
	"fmt"

	"github.com/pkg/errors"
)

// MissingArgumentMessage is printed verbatim when a required input path is absent.
const MissingArgumentMessage = "No image path provided."

var (
	// ErrUnsupportedFormat is wrapped into a DecodeError when the content is not an image we can read.
	ErrUnsupportedFormat = errors.New("unrecognized image format")
	// ErrEmptyImage is returned for zero-sized rasters.
	ErrEmptyImage = errors.New("image has no pixels")
)

// MissingArgumentError reports that a required path was not supplied.
type MissingArgumentError struct {
	// Name of the missing argument, e.g. "input".
	Name string
}

func (e *MissingArgumentError) Error() string {
	return MissingArgumentMessage
}

// DecodeError reports that the input could not be opened, read or decoded.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EncodeError reports that the output could not be encoded or written.
type EncodeError struct {
	Path string
	Err  error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode %s: %v", e.Path, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// NewDecodeError wraps err with the input path and a short context message.
func NewDecodeError(path string, err error, msg string) error {
	return &DecodeError{Path: path, Err: errors.Wrap(err, msg)}
}

// NewEncodeError wraps err with the output path and a short context message.
func NewEncodeError(path string, err error, msg string) error {
	return &EncodeError{Path: path, Err: errors.Wrap(err, msg)}
}

// IsMissingArgument reports whether err is, or wraps, a MissingArgumentError.
func IsMissingArgument(err error) bool {
	var target *MissingArgumentError
	return errors.As(err, &target)
}

// IsDecodeError reports whether err is, or wraps, a DecodeError.
func IsDecodeError(err error) bool {
	var target *DecodeError
	return errors.As(err, &target)
}

// IsEncodeError reports whether err is, or wraps, an EncodeError.
func IsEncodeError(err error) bool {
	var target *EncodeError
	return errors.As(err, &target)
}
