package site

import (
	"math"

	"github.com/phanxgames/offgrid"
)

// Builder creates styled elements for a viewport size. Sections build their
// trees through it so spacing and type scale follow the window.
type Builder struct {
	Theme  *Theme
	Width  float64
	Height float64
}

// NewBuilder returns a builder for a w x h viewport.
func NewBuilder(theme *Theme, w, h float64) *Builder {
	return &Builder{Theme: theme, Width: w, Height: h}
}

// VW returns pct percent of the viewport width.
func (b *Builder) VW(pct float64) float64 { return b.Width * pct / 100 }

// VH returns pct percent of the viewport height.
func (b *Builder) VH(pct float64) float64 { return b.Height * pct / 100 }

// Section returns a full-width section root of height h.
func (b *Builder) Section(id string, h float64) *offgrid.Element {
	e := offgrid.NewElement("section")
	e.ID = id
	e.SetSize(b.Width, h)
	e.Fill = Black
	return e
}

// Text returns a text element in font at size px.
func (b *Builder) Text(tag, content string, font *offgrid.Font, size float64, c offgrid.Color) *offgrid.Element {
	e := offgrid.NewText(tag, content, font.WithSize(size))
	e.Text.Color = c
	return e
}

// Paragraph returns body text wrapped at wrap px.
func (b *Builder) Paragraph(content string, size, wrap float64, c offgrid.Color) *offgrid.Element {
	e := offgrid.NewText("p", content, b.Theme.Body.WithSize(size))
	e.Text.Color = c
	e.Text.WrapWidth = wrap
	e.Relayout()
	return e
}

// Glass returns a frosted panel: faint white fill and a faint border.
func (b *Builder) Glass(tag string, w, h float64) *offgrid.Element {
	e := offgrid.NewBox(tag, w, h, tint(White, 0.05))
	e.Border = tint(White, 0.1)
	e.BorderWidth = 1
	return e
}

// Button returns a padded label box marked as a magnet.
func (b *Builder) Button(label string, size float64, fg, bg, border offgrid.Color) *offgrid.Element {
	txt := b.Text("span", label, b.Theme.Mono, size, fg)
	const padX, padY = 12, 8
	btn := offgrid.NewBox("button", txt.Width+2*padX, txt.Height+2*padY, bg)
	btn.Border = border
	btn.BorderWidth = 1
	btn.Interactable = true
	btn.AddClass("magnet")
	txt.SetPosition(padX, padY)
	btn.AppendChild(txt)
	return btn
}

// Tag returns a small bordered label.
func (b *Builder) Tag(label string, size float64) *offgrid.Element {
	txt := b.Text("span", label, b.Theme.Mono, size, White)
	const padX, padY = 8, 4
	tag := offgrid.NewBox("span", txt.Width+2*padX, txt.Height+2*padY, tint(White, 0.05))
	tag.Border = tint(White, 0.15)
	tag.BorderWidth = 1
	txt.SetPosition(padX, padY)
	tag.AppendChild(txt)
	return tag
}

// chroma returns a pair of horizontally split shadows.
func chroma(dx float64, right, left offgrid.Color) []offgrid.TextShadow {
	return []offgrid.TextShadow{
		{DX: dx, Color: right},
		{DX: -dx, Color: left},
	}
}

// column places els top to bottom starting at y, gap px apart, and returns
// the y below the last one.
func column(x, y, gap float64, els ...*offgrid.Element) float64 {
	for i, e := range els {
		if i > 0 {
			y += gap
		}
		e.SetPosition(x, y)
		y += e.Height
	}
	return y
}

// clampf limits v to [lo, hi].
func clampf(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
