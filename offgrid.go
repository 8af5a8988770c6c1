package offgrid

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs at render submission time.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default text and tint color.
var ColorWhite = Color{1, 1, 1, 1}

// ColorBlack is the page background.
var ColorBlack = Color{0, 0, 0, 1}

// Hex parses "#rrggbb" or "#rrggbbaa" into a Color. It panics on malformed
// input, which keeps palette declarations terse; use ParseHex for input that
// did not come from source code.
func Hex(s string) Color {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// ParseHex parses "#rrggbb" or "#rrggbbaa" into a Color.
func ParseHex(s string) (Color, error) {
	h := strings.TrimPrefix(s, "#")
	if len(h) != 6 && len(h) != 8 {
		return Color{}, fmt.Errorf("offgrid: bad hex color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("offgrid: bad hex color %q: %w", s, err)
	}
	if len(h) == 6 {
		v = v<<8 | 0xff
	}
	return Color{
		R: float64(v>>24&0xff) / 255,
		G: float64(v>>16&0xff) / 255,
		B: float64(v>>8&0xff) / 255,
		A: float64(v&0xff) / 255,
	}, nil
}

// WithAlpha returns c with its alpha replaced.
func (c Color) WithAlpha(a float64) Color {
	c.A = a
	return c
}

// toRGBA converts to a premultiplied color.RGBA.
func (c Color) toRGBA() color.RGBA {
	a := clamp01(c.A)
	return color.RGBA{
		R: uint8(clamp01(c.R)*a*255 + 0.5),
		G: uint8(clamp01(c.G)*a*255 + 0.5),
		B: uint8(clamp01(c.B)*a*255 + 0.5),
		A: uint8(a*255 + 0.5),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Vec2 is a 2D vector used for positions, offsets and sizes.
type Vec2 struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Intersects reports whether r and other overlap.
// Adjacent rectangles (sharing only an edge) are considered intersecting.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.Width &&
		r.X+r.Width >= other.X &&
		r.Y <= other.Y+other.Height &&
		r.Y+r.Height >= other.Y
}

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Vec2 {
	return Vec2{r.X + r.Width/2, r.Y + r.Height/2}
}

// BlendMode selects a compositing operation.
type BlendMode uint8

const (
	BlendNormal BlendMode = iota // source-over
	BlendAdd                     // additive, used for glows
	BlendScreen                  // screen, only brightens (mix-blend-screen)
	BlendSoftLight               // approximated as a low-contrast screen
)

// EbitenBlend returns the ebiten.Blend value corresponding to this BlendMode.
func (b BlendMode) EbitenBlend() ebiten.Blend {
	switch b {
	case BlendAdd:
		return ebiten.BlendLighter
	case BlendScreen, BlendSoftLight:
		return ebiten.Blend{
			BlendFactorSourceRGB:        ebiten.BlendFactorOne,
			BlendFactorSourceAlpha:      ebiten.BlendFactorOne,
			BlendFactorDestinationRGB:   ebiten.BlendFactorOneMinusSourceColor,
			BlendFactorDestinationAlpha: ebiten.BlendFactorOneMinusSourceAlpha,
			BlendOperationRGB:           ebiten.BlendOperationAdd,
			BlendOperationAlpha:         ebiten.BlendOperationAdd,
		}
	default:
		return ebiten.BlendSourceOver
	}
}

// ElementKind distinguishes rendering behavior for an Element.
type ElementKind uint8

const (
	KindBox     ElementKind = iota // filled and/or bordered rectangle, may be empty
	KindText                       // text rendered through a TTF face
	KindPattern                    // procedurally generated image (grain, grids, gradients)
	KindViewer                     // opaque embedded scene drawn by a Viewer
)

// EventType identifies a kind of pointer or scroll event.
type EventType uint8

const (
	EventPointerMove  EventType = iota // pointer moved (window-wide or over an element)
	EventPointerEnter                  // pointer entered an element's bounds
	EventPointerLeave                  // pointer left an element's bounds
	EventClick                         // press then release over the same element
	EventScroll                        // wheel or keyboard scroll request
)

func (t EventType) String() string {
	switch t {
	case EventPointerMove:
		return "pointermove"
	case EventPointerEnter:
		return "pointerenter"
	case EventPointerLeave:
		return "pointerleave"
	case EventClick:
		return "click"
	case EventScroll:
		return "scroll"
	default:
		return "unknown"
	}
}

// TextAlign controls horizontal text alignment within a text element.
type TextAlign uint8

const (
	TextAlignLeft   TextAlign = iota // align text to the left edge (default)
	TextAlignCenter                  // center text horizontally
	TextAlignRight                   // align text to the right edge
)

// Layer orders whole groups of render commands. Fixed overlays draw above
// page content regardless of tree position.
type Layer uint8

const (
	LayerPage    Layer = iota // scrolling page content
	LayerOverlay              // fixed overlays: spotlight, grain
	LayerChrome               // fixed interactive chrome: menus
	LayerDebug                // debug overlays
)
