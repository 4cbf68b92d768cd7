package oled

import (
	"fmt"
	"sort"
)

// PanelType names a monochrome display geometry.
type PanelType string

// Common SSD1306-class geometries. PanelSprite is the 32x32 region the firmware
// draws into and is the default.
const (
	PanelSprite PanelType = "32x32"
	Panel64x32  PanelType = "64x32"
	Panel64x48  PanelType = "64x48"
	Panel72x40  PanelType = "72x40"
	Panel96x16  PanelType = "96x16"
	Panel128x32 PanelType = "128x32"
	Panel128x64 PanelType = "128x64"

	// PanelAuto selects the largest panel that fits the source image.
	PanelAuto PanelType = "auto"
)

// Panel describes the pixel dimensions of a display.
type Panel struct {
	Name   PanelType `json:"name"`
	Width  int       `json:"width"`
	Height int       `json:"height"`
	// Controller is informational; every listed panel uses page addressing.
	Controller string `json:"controller"`
}

// Pages returns the number of 8-row pages the panel memory holds.
func (p Panel) Pages() int {
	return p.Height / PageHeight
}

// Bytes returns the size of a full frame buffer for the panel.
func (p Panel) Bytes() int {
	return p.Width * p.Pages()
}

// String returns a human-readable summary of the panel.
func (p Panel) String() string {
	return fmt.Sprintf("%s (%s, %d pages, %d bytes)", p.Name, p.Controller, p.Pages(), p.Bytes())
}

var panels = map[PanelType]Panel{
	PanelSprite: {Name: PanelSprite, Width: 32, Height: 32, Controller: "SSD1306"},
	Panel64x32:  {Name: Panel64x32, Width: 64, Height: 32, Controller: "SSD1306"},
	Panel64x48:  {Name: Panel64x48, Width: 64, Height: 48, Controller: "SSD1306"},
	Panel72x40:  {Name: Panel72x40, Width: 72, Height: 40, Controller: "SSD1306"},
	Panel96x16:  {Name: Panel96x16, Width: 96, Height: 16, Controller: "SSD1306"},
	Panel128x32: {Name: Panel128x32, Width: 128, Height: 32, Controller: "SSD1306"},
	Panel128x64: {Name: Panel128x64, Width: 128, Height: 64, Controller: "SSD1306"},
}

// Panels returns every known panel, smallest frame buffer first.
func Panels() []Panel {
	all := make([]Panel, 0, len(panels))
	for _, p := range panels {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Bytes() != all[j].Bytes() {
			return all[i].Bytes() < all[j].Bytes()
		}
		return all[i].Name < all[j].Name
	})
	return all
}

// Panel returns the preset with the bitmap's dimensions, if there is one.
func (b *Bitmap) Panel() (Panel, bool) {
	for _, p := range panels {
		if p.Width == b.Width && p.Height == b.Height {
			return p, true
		}
	}
	return Panel{}, false
}

// LookupPanel returns the panel called name. An empty name selects PanelSprite.
//
// Arguments:
//   - name: The panel type, e.g. "128x64".
//
// Returns:
//   - Panel: The panel geometry.
//   - error: If the name is not a known panel.
func LookupPanel(name PanelType) (Panel, error) {
	if name == "" {
		name = PanelSprite
	}
	p, ok := panels[name]
	if !ok {
		return Panel{}, fmt.Errorf("unknown panel: %q", name)
	}
	return p, nil
}

// LargestPanelWithin returns the panel with the biggest frame buffer that fits
// inside width x height.
//
// Arguments:
//   - width: The maximum width.
//   - height: The maximum height.
//
// Returns:
//   - Panel: The largest fitting panel.
//   - bool: False if no panel fits.
func LargestPanelWithin(width, height int) (Panel, bool) {
	var best Panel
	var found bool
	for _, p := range Panels() {
		if p.Width <= width && p.Height <= height {
			best, found = p, true
		}
	}
	return best, found
}
