package oled

import (
	"context"
	"io"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-imgprep/images"
)

const (
	// DefaultOutput is where the packer writes its header.
	DefaultOutput = "oled_image.h"
	// DefaultBinaryOutput is where the packer writes raw bytes.
	DefaultBinaryOutput = "oled_image.bin"
	// DefaultSymbol is the array name used in the header.
	DefaultSymbol = "oled_image"
)

// Format selects how the packed bitmap is written.
type Format string

const (
	// FormatHeader writes a C header, see Render.
	FormatHeader Format = "header"
	// FormatBinary writes Bitmap.Data as is, the layout the firmware reads from its SD card.
	FormatBinary Format = "bin"
)

// Options configures Export.
//
// The embedded Threshold has no implicit default: the zero value lights every
// pixel. Set it to DefaultThreshold for the usual split.
type Options struct {
	BinarizeOptions
	// Symbol is the C array name. Ignored by FormatBinary.
	Symbol string
	// Format is the output encoding; empty means FormatHeader.
	Format Format
	// Panel picks the packed size when Width and Height are zero. Empty means
	// PanelSprite; PanelAuto picks the largest panel that fits the source image.
	Panel PanelType
	// Width and Height force the packed size when both are set, overriding Panel.
	Width  int
	Height int
}

// Export decodes input, stretches it to the target size with area averaging,
// converts it to grayscale, binarizes and packs it, and writes it to output.
//
// Arguments:
//   - ctx: Checked between steps.
//   - input: Path of the source image.
//   - output: Path of the file to write.
//   - opts: Packing options.
//
// Returns:
//   - *Bitmap: The packed bitmap that was written.
//   - error: *images.MissingArgumentError, *images.DecodeError or *images.EncodeError.
func Export(ctx context.Context, input, output string, opts Options) (*Bitmap, error) {
	if input == "" {
		return nil, &images.MissingArgumentError{Name: "input"}
	}
	if output == "" {
		return nil, &images.MissingArgumentError{Name: "output"}
	}
	if opts.Symbol == "" {
		opts.Symbol = DefaultSymbol
	}
	if opts.Format == "" {
		opts.Format = FormatHeader
	}

	var write func(w io.Writer, bm *Bitmap) error
	switch opts.Format {
	case FormatHeader:
		if !identifier.MatchString(opts.Symbol) {
			return nil, errors.Errorf("invalid C identifier: %q", opts.Symbol)
		}
		write = func(w io.Writer, bm *Bitmap) error { return Render(w, opts.Symbol, bm) }
	case FormatBinary:
		write = WriteBinary
	default:
		return nil, errors.Errorf("unknown output format: %q", opts.Format)
	}

	auto := opts.Width == 0 && opts.Height == 0 && opts.Panel == PanelAuto
	if !auto && (opts.Width == 0 || opts.Height == 0) {
		panel, err := LookupPanel(opts.Panel)
		if err != nil {
			return nil, err
		}
		opts.Width, opts.Height = panel.Width, panel.Height
	}

	src, _, err := images.DecodeFile(input)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if auto {
		b := src.Bounds()
		panel, ok := LargestPanelWithin(b.Dx(), b.Dy())
		if !ok {
			panel = panels[PanelSprite]
		}
		opts.Width, opts.Height = panel.Width, panel.Height
	}

	resized, err := images.ResizeArea(src, opts.Width, opts.Height)
	if err != nil {
		return nil, &images.DecodeError{Path: input, Err: err}
	}

	bm, err := Pack(Binarize(images.Grayscale(resized), opts.BinarizeOptions))
	if err != nil {
		return nil, &images.EncodeError{Path: output, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := images.WriteFile(output, func(w io.Writer) error {
		return write(w, bm)
	}); err != nil {
		return nil, err
	}

	return bm, nil
}

// WriteBinary writes the packed bytes of bm with no framing.
func WriteBinary(w io.Writer, bm *Bitmap) error {
	_, err := w.Write(bm.Data)
	return err
}
