// Command resize stretches an image to 32x32 with area averaging and writes
// resized_image.jpg in the working directory.
//
//	resize <input_path>
package main

import (
	"os"

	"github.com/nvr-ai/go-imgprep/cli"
)

func main() {
	os.Exit(cli.Main(cli.Resize, os.Args[1:], os.Stdout, os.Stderr))
}
