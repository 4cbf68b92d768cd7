// Command oledpack turns an image into a 32x32 monochrome bitmap in SSD1306
// page layout and writes it as a C header (oled_image.h by default).
//
//	oledpack [--dither] [--threshold 128] [--symbol name] [-o file.h] <input_path>
package main

import (
	"os"

	"github.com/nvr-ai/go-imgprep/cli"
)

func main() {
	os.Exit(cli.Main(cli.OLEDPack, os.Args[1:], os.Stdout, os.Stderr))
}
