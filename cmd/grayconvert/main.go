// Command grayconvert converts the configured input image to grayscale and
// writes it to the configured output path.
//
//	grayconvert --input photo.jpg --output photo_gray.jpg
//	IMGPREP_INPUT=photo.jpg IMGPREP_OUTPUT=photo_gray.jpg grayconvert
package main

import (
	"os"

	"github.com/nvr-ai/go-imgprep/cli"
)

func main() {
	os.Exit(cli.Main(cli.GrayConvert, os.Args[1:], os.Stdout, os.Stderr))
}
