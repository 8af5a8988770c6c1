package site

import (
	"fmt"

	"github.com/phanxgames/offgrid"
)

// Palette.
var (
	Neon    = offgrid.Hex("#00ff88")
	Magenta = offgrid.Hex("#ff0080")
	Cyan    = offgrid.Hex("#00d9ff")
	Black   = offgrid.ColorBlack
	White   = offgrid.ColorWhite
)

// SceneURL is the embedded hero scene.
const SceneURL = "https://prod.spline.design/EF7JOSsHLk16Tlw9/scene.splinecode"

// Theme holds the parsed fonts shared by every section. Sizes are derived
// per element with Font.WithSize.
type Theme struct {
	Display *offgrid.Font // heavy headlines
	Body    *offgrid.Font // paragraphs
	Mono    *offgrid.Font // labels, tags, buttons
}

// LoadTheme parses the bundled Go fonts.
func LoadTheme() (*Theme, error) {
	display, err := offgrid.LoadGoFont(offgrid.GoBold, 64)
	if err != nil {
		return nil, fmt.Errorf("load display font: %w", err)
	}
	body, err := offgrid.LoadGoFont(offgrid.GoRegular, 16)
	if err != nil {
		return nil, fmt.Errorf("load body font: %w", err)
	}
	mono, err := offgrid.LoadGoFont(offgrid.GoMono, 12)
	if err != nil {
		return nil, fmt.Errorf("load mono font: %w", err)
	}
	return &Theme{Display: display, Body: body, Mono: mono}, nil
}

// tint returns c at alpha a.
func tint(c offgrid.Color, a float64) offgrid.Color {
	return c.WithAlpha(a)
}
