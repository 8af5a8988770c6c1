package offgrid

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

// --- Font ---

// Font wraps Ebitengine's text/v2 for TrueType font rendering.
type Font struct {
	face   *text.GoTextFace
	source *text.GoTextFaceSource
	size   float64
	lh     float64 // cached line height
}

// LoadFont loads a TrueType font from raw TTF/OTF data at the given size.
func LoadFont(ttfData []byte, size float64) (*Font, error) {
	source, err := text.NewGoTextFaceSource(bytes.NewReader(ttfData))
	if err != nil {
		return nil, fmt.Errorf("offgrid: parse font: %w", err)
	}
	return newFont(source, size), nil
}

func newFont(source *text.GoTextFaceSource, size float64) *Font {
	face := &text.GoTextFace{Source: source, Size: size}
	m := face.Metrics()
	return &Font{
		face:   face,
		source: source,
		size:   size,
		lh:     m.HAscent + m.HDescent + m.HLineGap,
	}
}

// WithSize returns a font sharing this font's parsed source at another size.
func (f *Font) WithSize(size float64) *Font {
	return newFont(f.source, size)
}

// Size returns the font size in pixels.
func (f *Font) Size() float64 { return f.size }

// MeasureString returns the width and height of the rendered text.
func (f *Font) MeasureString(s string) (width, height float64) {
	return text.Measure(s, f.face, f.lh)
}

// LineHeight returns the vertical distance between baselines.
func (f *Font) LineHeight() float64 {
	return f.lh
}

// Face returns the underlying GoTextFace for direct text/v2 rendering.
func (f *Font) Face() *text.GoTextFace {
	return f.face
}

// GoFont selects one of the bundled Go fonts.
type GoFont uint8

const (
	GoRegular GoFont = iota
	GoBold
	GoMono
)

// LoadGoFont loads a bundled Go font at the given size. The display type on
// the page uses GoBold; labels and tags use GoMono.
func LoadGoFont(which GoFont, size float64) (*Font, error) {
	switch which {
	case GoBold:
		return LoadFont(gobold.TTF, size)
	case GoMono:
		return LoadFont(gomono.TTF, size)
	default:
		return LoadFont(goregular.TTF, size)
	}
}

// --- TextStyle ---

// TextShadow is one offset copy of the glyphs drawn behind the fill, used for
// the chromatic aberration look.
type TextShadow struct {
	DX, DY float64
	Color  Color
}

// TextStyle holds text content, formatting and cached layout state.
type TextStyle struct {
	Content    string
	Font       *Font
	Align      TextAlign
	WrapWidth  float64 // 0 disables wrapping
	Color      Color
	LineHeight float64 // override; 0 = Font.LineHeight()
	Shadows    []TextShadow

	lines     []string
	measuredW float64
	measuredH float64
	dirty     bool

	image      *ebiten.Image
	imageDirty bool
	pad        float64
}

// SetText replaces a text element's content and resizes the element to fit.
func (e *Element) SetText(content string) {
	if e.Text == nil || e.Text.Content == content {
		return
	}
	e.Text.Content = content
	e.Text.dirty = true
	e.Width, e.Height = e.Text.measure()
	e.transformDirty = true
}

// Relayout re-measures a text element after its TextStyle fields were
// changed directly, and resizes the element to fit.
func (e *Element) Relayout() {
	if e.Text == nil {
		return
	}
	e.Text.dirty = true
	e.Width, e.Height = e.Text.measure()
	e.transformDirty = true
}

// lineHeight returns the effective line height.
func (ts *TextStyle) lineHeight() float64 {
	if ts.LineHeight > 0 {
		return ts.LineHeight
	}
	if ts.Font != nil {
		return ts.Font.LineHeight()
	}
	return 0
}

// measure lays out the text if needed and returns its size.
func (ts *TextStyle) measure() (float64, float64) {
	if !ts.dirty {
		return ts.measuredW, ts.measuredH
	}
	ts.dirty = false
	ts.imageDirty = true
	ts.lines = ts.lines[:0]
	ts.measuredW, ts.measuredH = 0, 0
	if ts.Font == nil {
		return 0, 0
	}

	for _, para := range strings.Split(ts.Content, "\n") {
		ts.lines = append(ts.lines, ts.wrap(para)...)
	}
	for _, line := range ts.lines {
		w, _ := ts.Font.MeasureString(line)
		ts.measuredW = math.Max(ts.measuredW, w)
	}
	if ts.WrapWidth > 0 {
		ts.measuredW = math.Max(ts.measuredW, ts.WrapWidth)
	}
	ts.measuredH = float64(len(ts.lines)) * ts.lineHeight()
	return ts.measuredW, ts.measuredH
}

// wrap breaks one paragraph into lines no wider than WrapWidth, greedily at
// spaces. A single word wider than WrapWidth gets its own line.
func (ts *TextStyle) wrap(para string) []string {
	if ts.WrapWidth <= 0 {
		return []string{para}
	}
	words := strings.Fields(para)
	if len(words) == 0 {
		return []string{""}
	}
	var out []string
	cur := words[0]
	for _, w := range words[1:] {
		next := cur + " " + w
		if width, _ := ts.Font.MeasureString(next); width > ts.WrapWidth {
			out = append(out, cur)
			cur = w
			continue
		}
		cur = next
	}
	return append(out, cur)
}

// render redraws the cached text image when content or style changed.
// The image is padded so shadows are not cut off.
func (ts *TextStyle) render() *ebiten.Image {
	w, h := ts.measure()
	if w == 0 || h == 0 {
		return nil
	}
	if ts.image != nil && !ts.imageDirty {
		return ts.image
	}
	ts.imageDirty = false

	pad := 0.0
	for _, s := range ts.Shadows {
		pad = math.Max(pad, math.Max(math.Abs(s.DX), math.Abs(s.DY)))
	}
	ts.pad = math.Ceil(pad)
	iw := int(math.Ceil(w+2*ts.pad)) + 1
	ih := int(math.Ceil(h+2*ts.pad)) + 1

	if ts.image != nil {
		b := ts.image.Bounds()
		if b.Dx() != iw || b.Dy() != ih {
			ts.image.Deallocate()
			ts.image = ebiten.NewImage(iw, ih)
		} else {
			ts.image.Clear()
		}
	} else {
		ts.image = ebiten.NewImage(iw, ih)
	}

	for _, s := range ts.Shadows {
		ts.drawLines(ts.pad+s.DX, ts.pad+s.DY, s.Color)
	}
	ts.drawLines(ts.pad, ts.pad, ts.Color)
	return ts.image
}

func (ts *TextStyle) drawLines(ox, oy float64, c Color) {
	lh := ts.lineHeight()
	for i, line := range ts.lines {
		lw, _ := ts.Font.MeasureString(line)
		x := ox
		switch ts.Align {
		case TextAlignCenter:
			x += (ts.measuredW - lw) / 2
		case TextAlignRight:
			x += ts.measuredW - lw
		}
		op := &text.DrawOptions{}
		op.GeoM.Translate(x, oy+float64(i)*lh)
		op.ColorScale.ScaleWithColor(c.toRGBA())
		op.LineSpacing = lh
		text.Draw(ts.image, line, ts.Font.face, op)
	}
}

// release frees the cached image.
func (ts *TextStyle) release() {
	if ts.image != nil {
		ts.image.Deallocate()
		ts.image = nil
	}
}
