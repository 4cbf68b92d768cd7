// Package images - Image definition for processing utilities.
package images

import (
	"fmt"
	"image"
)

const (
	// TargetWidth is the column count of the OLED region the resized images are made for.
	TargetWidth = 32
	// TargetHeight is the row count of the OLED region the resized images are made for.
	TargetHeight = 32
)

// Image describes a raster produced or consumed by a transform.
type Image struct {
	// The format of the image.
	Format ImageFormat `json:"format" yaml:"format"`
	// The width of the image.
	Width int `json:"width" yaml:"width"`
	// The height of the image.
	Height int `json:"height" yaml:"height"`
	// Channels is 1 for grayscale, 3 for color, 4 for color with alpha.
	Channels int `json:"channels" yaml:"channels"`
}

// String renders the descriptor as WxHxC/format.
func (i Image) String() string {
	return fmt.Sprintf("%dx%dx%d/%s", i.Width, i.Height, i.Channels, i.Format)
}

// Describe builds the descriptor of a decoded image.
func Describe(img image.Image, format ImageFormat) Image {
	b := img.Bounds()
	return Image{
		Format:   format,
		Width:    b.Dx(),
		Height:   b.Dy(),
		Channels: Channels(img),
	}
}

// Channels reports how many channels the image stores per pixel.
func Channels(img image.Image) int {
	switch m := img.(type) {
	case *image.Gray, *image.Gray16:
		return 1
	case *image.YCbCr:
		return 3
	case interface{ Opaque() bool }:
		if m.Opaque() {
			return 3
		}
		return 4
	default:
		return 4
	}
}
