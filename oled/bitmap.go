// Package oled - converts grayscale rasters into the page-packed 1bpp layout that
// SSD1306 display controllers stream over I2C.
//
// The controller addresses its memory in pages of 8 rows. One byte covers one
// column of one page, least significant bit on top, so a W x H bitmap is H/8
// runs of W bytes.
package oled

import (
	"image"

	"github.com/pkg/errors"
)

// PageHeight is the number of rows packed into each byte.
const PageHeight = 8

// ErrHeightNotPageAligned is returned when the raster height is not a multiple of PageHeight.
var ErrHeightNotPageAligned = errors.New("height must be a multiple of 8")

// Bitmap is a page-packed monochrome image.
type Bitmap struct {
	// Width is the number of columns.
	Width int
	// Height is the number of rows, a multiple of PageHeight.
	Height int
	// Data holds Pages()*Width bytes; byte page*Width+x holds rows page*8..page*8+7 of column x.
	Data []byte
}

// Pages returns the number of 8-row pages.
func (b *Bitmap) Pages() int {
	return b.Height / PageHeight
}

// At reports whether the pixel at (x, y) is lit.
func (b *Bitmap) At(x, y int) bool {
	page := y / PageHeight
	return b.Data[page*b.Width+x]&(1<<uint(y%PageHeight)) != 0
}

// Pack turns a binarized grayscale image into a Bitmap. Pixels with a value of
// 128 or more are lit.
//
// Arguments:
//   - img: The grayscale image, normally the output of Binarize.
//
// Returns:
//   - *Bitmap: The packed bitmap.
//   - error: ErrHeightNotPageAligned, or an error for an empty image.
func Pack(img *image.Gray) (*Bitmap, error) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return nil, errors.New("image has no pixels")
	}
	if height%PageHeight != 0 {
		return nil, errors.Wrapf(ErrHeightNotPageAligned, "got %d rows", height)
	}

	bm := &Bitmap{
		Width:  width,
		Height: height,
		Data:   make([]byte, width*height/PageHeight),
	}

	for y := 0; y < height; y++ {
		page, bit := y/PageHeight, uint(y%PageHeight)
		for x := 0; x < width; x++ {
			if img.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y >= 128 {
				bm.Data[page*width+x] |= 1 << bit
			}
		}
	}

	return bm, nil
}
