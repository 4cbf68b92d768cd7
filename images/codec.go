package images

import (
	"bufio"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/chai2010/webp"
	"github.com/pkg/errors"
	"golang.org/x/image/bmp"
)

// sniffLen is the number of leading bytes SniffFormat needs.
const sniffLen = 12

// Decode reads an encoded image, choosing the decoder from the content signature.
//
// Arguments:
//   - r: The encoded image stream.
//
// Returns:
//   - image.Image: The decoded raster.
//   - ImageFormat: The format the content was recognized as.
//   - error: ErrUnsupportedFormat if the signature is unknown, or the decoder's error.
func Decode(r io.Reader) (image.Image, ImageFormat, error) {
	br := bufio.NewReader(r)
	header, err := br.Peek(sniffLen)
	if err != nil && err != io.EOF {
		return nil, FormatUnknown, errors.Wrap(err, "failed to read image header")
	}

	format := SniffFormat(header)

	var img image.Image
	switch format {
	case FormatJPEG:
		img, err = jpeg.Decode(br)
	case FormatPNG:
		img, err = png.Decode(br)
	case FormatGIF:
		img, err = gif.Decode(br)
	case FormatBMP:
		img, err = bmp.Decode(br)
	case FormatWebP:
		img, err = webp.Decode(br)
	default:
		return nil, FormatUnknown, ErrUnsupportedFormat
	}
	if err != nil {
		return nil, format, errors.Wrapf(err, "failed to decode %s", format)
	}
	if img.Bounds().Empty() {
		return nil, format, ErrEmptyImage
	}

	return img, format, nil
}

// DecodeFile opens and decodes the image at path. Every failure is a *DecodeError.
func DecodeFile(path string) (image.Image, ImageFormat, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, FormatUnknown, NewDecodeError(path, err, "failed to open image")
	}
	defer f.Close()

	img, format, err := Decode(f)
	if err != nil {
		return nil, format, &DecodeError{Path: path, Err: err}
	}
	return img, format, nil
}

// EncodeJPEG writes img as a baseline JPEG at the default quality.
func EncodeJPEG(w io.Writer, img image.Image) error {
	return jpeg.Encode(w, img, &jpeg.Options{Quality: jpeg.DefaultQuality})
}

// WriteFile writes the output of write to path through a temporary file in the
// same directory, so path is either fully replaced or left untouched.
// Every failure is an *EncodeError.
func WriteFile(path string, write func(w io.Writer) error) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return NewEncodeError(path, err, "failed to create output")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	bw := bufio.NewWriter(tmp)
	if err := write(bw); err != nil {
		tmp.Close()
		return NewEncodeError(path, err, "failed to encode image")
	}
	if err := bw.Flush(); err != nil {
		tmp.Close()
		return NewEncodeError(path, err, "failed to write output")
	}
	if err := tmp.Close(); err != nil {
		return NewEncodeError(path, err, "failed to close output")
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return NewEncodeError(path, err, "failed to set output permissions")
	}
	if err := os.Rename(tmpName, path); err != nil {
		return NewEncodeError(path, err, "failed to move output into place")
	}
	return nil
}

// EncodeFile writes img to path as JPEG.
func EncodeFile(path string, img image.Image) error {
	return WriteFile(path, func(w io.Writer) error {
		return EncodeJPEG(w, img)
	})
}
