package oled

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// bytesPerLine is how many array elements Render puts on one source line.
const bytesPerLine = 16

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Render writes bm as a C header declaring a static const uint8_t array named
// symbol, with WIDTH, HEIGHT and PAGES defines derived from the upper-cased symbol.
//
// Arguments:
//   - w: Destination of the header text.
//   - symbol: A valid C identifier for the array.
//   - bm: The packed bitmap.
//
// Returns:
//   - error: For an invalid symbol or a write failure.
func Render(w io.Writer, symbol string, bm *Bitmap) error {
	if !identifier.MatchString(symbol) {
		return errors.Errorf("invalid C identifier: %q", symbol)
	}

	macro := strings.ToUpper(symbol)
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "// %s: %dx%d monochrome, SSD1306 page layout (%d pages x %d columns, LSB on top).\n",
		symbol, bm.Width, bm.Height, bm.Pages(), bm.Width)
	fmt.Fprintf(bw, "#ifndef %s_H\n#define %s_H\n\n", macro, macro)
	fmt.Fprintf(bw, "#include <stdint.h>\n\n")
	fmt.Fprintf(bw, "#define %s_WIDTH %d\n", macro, bm.Width)
	fmt.Fprintf(bw, "#define %s_HEIGHT %d\n", macro, bm.Height)
	fmt.Fprintf(bw, "#define %s_PAGES %d\n\n", macro, bm.Pages())
	fmt.Fprintf(bw, "static const uint8_t %s[] = {\n", symbol)

	for i := 0; i < len(bm.Data); i += bytesPerLine {
		end := min(i+bytesPerLine, len(bm.Data))
		bw.WriteString("   ")
		for _, b := range bm.Data[i:end] {
			fmt.Fprintf(bw, " 0x%02x,", b)
		}
		bw.WriteString("\n")
	}

	fmt.Fprintf(bw, "};\n\n#endif // %s_H\n", macro)

	return bw.Flush()
}
