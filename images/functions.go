// Package images - provides the raster primitives behind the transforms: area
// resampling, luma conversion, decoding and atomic encoding.
package images

import (
	"image"
	"math"
	"runtime"
	"sync"

	"github.com/nfnt/resize"
	"golang.org/x/image/draw"
)

// Contribution represents a single source pixel's share of an output pixel.
type Contribution struct {
	// pixel is the source pixel index.
	pixel int
	// weight is the fraction of the output footprint covered by the source pixel.
	weight float64
}

// minWeight drops slivers left over from floating point edges.
const minWeight = 1e-9

// AreaContributions computes, for each of dstLen output pixels, which source pixels
// fall inside its footprint and by how much.
//
// Output pixel i covers the source interval [i*scale, (i+1)*scale) where
// scale = srcLen/dstLen. Each source pixel contributes the length of its overlap
// with that interval divided by scale, so the weights of every output pixel sum to 1.
//
// Arguments:
//   - srcLen: Source length along the axis.
//   - dstLen: Destination length along the axis (must not exceed srcLen).
//
// Returns:
//   - [][]Contribution: The weights per output index.
func AreaContributions(srcLen, dstLen int) [][]Contribution {
	scale := float64(srcLen) / float64(dstLen)
	contributions := make([][]Contribution, dstLen)

	for i := 0; i < dstLen; i++ {
		start := float64(i) * scale
		end := start + scale

		first := int(math.Floor(start))
		last := int(math.Ceil(end)) - 1
		if last >= srcLen {
			last = srcLen - 1
		}

		weights := make([]Contribution, 0, last-first+1)
		for s := first; s <= last; s++ {
			overlap := math.Min(end, float64(s+1)) - math.Max(start, float64(s))
			if overlap <= minWeight {
				continue
			}
			weights = append(weights, Contribution{pixel: s, weight: overlap / scale})
		}
		contributions[i] = weights
	}

	return contributions
}

// ResizeArea stretches img to exactly width x height. When neither axis grows, each
// output pixel is the area-weighted mean of the source pixels under its footprint.
// When an axis has to grow, area averaging degenerates to sampling, so the image is
// interpolated bilinearly instead.
//
// Arguments:
//   - img: The source image.
//   - width: The target width in pixels.
//   - height: The target height in pixels.
//
// Returns:
//   - *image.RGBA: The resized image with its origin at (0, 0).
//   - error: ErrEmptyImage for an empty source or non-positive target.
//
// @example
// thumb, err := ResizeArea(photo, TargetWidth, TargetHeight)
func ResizeArea(img image.Image, width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 || img.Bounds().Empty() {
		return nil, ErrEmptyImage
	}

	srcWidth := img.Bounds().Dx()
	srcHeight := img.Bounds().Dy()

	if width > srcWidth || height > srcHeight {
		return toRGBA(resize.Resize(uint(width), uint(height), img, resize.Bilinear)), nil
	}

	src := toRGBA(img)
	if srcWidth == width && srcHeight == height {
		return src, nil
	}

	// Separable: columns first into a width x srcHeight buffer, then rows.
	intermediate := image.NewRGBA(image.Rect(0, 0, width, srcHeight))
	resizeAxis(src, intermediate, AreaContributions(srcWidth, width), true)

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	resizeAxis(intermediate, dst, AreaContributions(srcHeight, height), false)

	return dst, nil
}

// resizeAxis applies contributions along one axis. Both images start at (0, 0).
func resizeAxis(src, dst *image.RGBA, contributions [][]Contribution, horizontal bool) {
	dstWidth := dst.Rect.Dx()
	dstHeight := dst.Rect.Dy()

	Parallel(dstHeight, func(partStart, partEnd int) {
		for y := partStart; y < partEnd; y++ {
			for x := 0; x < dstWidth; x++ {
				var acc [4]float64

				var weights []Contribution
				if horizontal {
					weights = contributions[x]
				} else {
					weights = contributions[y]
				}

				for _, c := range weights {
					var off int
					if horizontal {
						off = src.PixOffset(c.pixel, y)
					} else {
						off = src.PixOffset(x, c.pixel)
					}
					for ch := 0; ch < 4; ch++ {
						acc[ch] += float64(src.Pix[off+ch]) * c.weight
					}
				}

				dstIdx := dst.PixOffset(x, y)
				for ch := 0; ch < 4; ch++ {
					dst.Pix[dstIdx+ch] = uint8(Clamp(acc[ch], 0, 255) + 0.5)
				}
			}
		}
	})
}

// Grayscale converts an image to single-channel luma using the ITU-R BT.601
// weights (0.299, 0.587, 0.114). A *image.Gray input is copied unchanged, and any
// pixel with R=G=B keeps its value, so converting twice is the same as converting once.
//
// Arguments:
//   - img: The source image to convert.
//
// Returns:
//   - *image.Gray: A new grayscale image with the same dimensions, origin at (0, 0).
//
// @example
// gray := Grayscale(colorImage)
func Grayscale(img image.Image) *image.Gray {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	dst := image.NewGray(image.Rect(0, 0, width, height))

	if g, ok := img.(*image.Gray); ok {
		for y := 0; y < height; y++ {
			srcOff := g.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			copy(dst.Pix[y*dst.Stride:y*dst.Stride+width], g.Pix[srcOff:srcOff+width])
		}
		return dst
	}

	Parallel(height, func(partStart, partEnd int) {
		for y := partStart; y < partEnd; y++ {
			row := dst.Pix[y*dst.Stride:]
			for x := 0; x < width; x++ {
				r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
				// 16-bit fixed point; the coefficients sum to 1<<16.
				luma := (19595*r + 38470*g + 7471*b + 1<<15) >> 24
				row[x] = uint8(luma)
			}
		}
	})

	return dst
}

// toRGBA copies img into a new premultiplied RGBA image with its origin at (0, 0).
func toRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// Clamp restricts a value to the specified range [min, max].
// This is used to prevent overflow in color calculations.
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// Parallel executes a function in Parallel across multiple goroutines.
// This improves performance on multi-core systems.
//
// Arguments:
// - dataSize: The size of the data to process.
// - fn: Function to execute for each partition (receives start and end indices).
//
// @example
//
//	Parallel(height, func(start, end int) {
//	    for y := start; y < end; y++ {
//	        // Process row y
//	    }
//	})
func Parallel(dataSize int, fn func(partStart, partEnd int)) {
	numGoroutines := runtime.NumCPU()

	// Small inputs are not worth the goroutine overhead.
	if dataSize < numGoroutines*2 {
		fn(0, dataSize)
		return
	}

	partSize := dataSize / numGoroutines

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		partStart := i * partSize
		partEnd := partStart + partSize

		// Last partition gets any remaining data.
		if i == numGoroutines-1 {
			partEnd = dataSize
		}

		go func(start, end int) {
			defer wg.Done()
			fn(start, end)
		}(partStart, partEnd)
	}

	wg.Wait()
}
