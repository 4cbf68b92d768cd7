package oled

import (
	"image"

	"github.com/chewxy/math32"
)

// DefaultThreshold splits the 0..255 range in half.
const DefaultThreshold = 128

// BinarizeOptions controls how gray levels collapse to on/off pixels.
type BinarizeOptions struct {
	// Threshold is the lowest gray value that lights a pixel. Zero lights
	// everything; DefaultThreshold is the usual value.
	Threshold uint8
	// Dither spreads the quantization error with Floyd-Steinberg weights
	// instead of cutting at Threshold alone.
	Dither bool
	// Invert lights dark pixels instead of bright ones.
	Invert bool
}

// Binarize maps every pixel of img to 0 or 255.
//
// Arguments:
//   - img: The grayscale source.
//   - opts: Threshold, dithering and inversion.
//
// Returns:
//   - *image.Gray: A new image, origin at (0, 0), containing only 0 and 255.
func Binarize(img *image.Gray, opts BinarizeOptions) *image.Gray {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	dst := image.NewGray(image.Rect(0, 0, width, height))

	threshold := float32(opts.Threshold)

	// Working copy in float32 so diffused error can leave the 0..255 range.
	levels := make([]float32, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := float32(img.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y)
			if opts.Invert {
				v = 255 - v
			}
			levels[y*width+x] = v
		}
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			old := levels[y*width+x]
			var quantized float32
			if old >= threshold {
				quantized = 255
			}
			if quantized != 0 {
				dst.Pix[y*dst.Stride+x] = 255
			}
			if !opts.Dither {
				continue
			}

			diff := old - quantized
			spread(levels, width, height, x+1, y, diff*7/16)
			spread(levels, width, height, x-1, y+1, diff*3/16)
			spread(levels, width, height, x, y+1, diff*5/16)
			spread(levels, width, height, x+1, y+1, diff*1/16)
		}
	}

	return dst
}

// spread adds err to the pixel at (x, y) if it exists, bounded to keep runaway
// error from saturating whole regions.
func spread(levels []float32, width, height, x, y int, err float32) {
	if x < 0 || x >= width || y >= height {
		return
	}
	i := y*width + x
	levels[i] = math32.Max(-128, math32.Min(383, levels[i]+err))
}
