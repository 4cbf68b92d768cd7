package images

import (
	"bytes"
	"path/filepath"
	"strings"
)

// ImageFormat represents supported image formats
type ImageFormat string

const (
	FormatJPEG ImageFormat = "jpeg"
	FormatPNG  ImageFormat = "png"
	FormatBMP  ImageFormat = "bmp"
	FormatGIF  ImageFormat = "gif"
	FormatWebP ImageFormat = "webp"
	// FormatUnknown is returned when neither the content nor the extension match.
	FormatUnknown ImageFormat = ""
)

// magic maps each decodable format to the byte signature at the start of the file.
var magic = []struct {
	format ImageFormat
	offset int
	sig    []byte
}{
	{FormatJPEG, 0, []byte{0xFF, 0xD8, 0xFF}},
	{FormatPNG, 0, []byte("\x89PNG\r\n\x1a\n")},
	{FormatGIF, 0, []byte("GIF8")},
	{FormatBMP, 0, []byte("BM")},
	{FormatWebP, 8, []byte("WEBP")},
}

// SniffFormat identifies an encoded image by its leading bytes.
//
// Arguments:
//   - header: At least the first 12 bytes of the encoded image.
//
// Returns:
//   - ImageFormat: The detected format, FormatUnknown if nothing matched.
func SniffFormat(header []byte) ImageFormat {
	for _, m := range magic {
		end := m.offset + len(m.sig)
		if len(header) < end {
			continue
		}
		if m.format == FormatWebP && !bytes.HasPrefix(header, []byte("RIFF")) {
			continue
		}
		if bytes.Equal(header[m.offset:end], m.sig) {
			return m.format
		}
	}
	return FormatUnknown
}

// FormatFromPath maps a file extension to a format.
func FormatFromPath(path string) ImageFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return FormatJPEG
	case ".png":
		return FormatPNG
	case ".bmp":
		return FormatBMP
	case ".gif":
		return FormatGIF
	case ".webp":
		return FormatWebP
	default:
		return FormatUnknown
	}
}
