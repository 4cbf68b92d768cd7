// Command grayscale converts an image to single-channel luma and writes
// gray_image.jpg in the working directory.
//
//	grayscale <input_path>
package main

import (
	"os"

	"github.com/nvr-ai/go-imgprep/cli"
)

func main() {
	os.Exit(cli.Main(cli.Grayscale, os.Args[1:], os.Stdout, os.Stderr))
}
