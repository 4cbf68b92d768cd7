package images

import (
	"crypto/md5"
	"fmt"
	"image"
)

// ComputeChecksum generates a deterministic checksum of the pixel values of an image,
// independent of its in-memory representation and origin.
//
// Arguments:
// - img: The image to compute checksum for.
//
// Returns:
// - A hex-encoded MD5 checksum string.
//
// Example:
//
// ```go
//
//	checksum := ComputeChecksum(gray)
//	fmt.Printf("Output checksum: %s\n", checksum)
//
// ```
func ComputeChecksum(img image.Image) string {
	b := img.Bounds()
	if b.Empty() {
		return "empty"
	}

	hash := md5.New()
	switch m := img.(type) {
	case *image.Gray:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			off := m.PixOffset(b.Min.X, y)
			hash.Write(m.Pix[off : off+b.Dx()])
		}
	default:
		px := make([]byte, 0, b.Dx()*4)
		for y := b.Min.Y; y < b.Max.Y; y++ {
			px = px[:0]
			for x := b.Min.X; x < b.Max.X; x++ {
				r, g, bl, a := img.At(x, y).RGBA()
				px = append(px, uint8(r>>8), uint8(g>>8), uint8(bl>>8), uint8(a>>8))
			}
			hash.Write(px)
		}
	}
	return fmt.Sprintf("%x", hash.Sum(nil))
}
