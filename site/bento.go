package site

import (
	"math"

	"github.com/phanxgames/offgrid"
)

// Bento is the skewed grid of cards.
type Bento struct{}

// Name implements Section.
func (Bento) Name() string { return "bento" }

type bentoCell struct {
	span  int
	minH  float64
	build func(b *Builder, w, h float64) *offgrid.Element
}

var bentoRows = [][]bentoCell{
	{{5, 280, y2kCard}, {3, 300, glitchFieldCard}, {4, 300, signalCard}},
	{{6, 360, gradientCard}, {6, 200, artifactsCard}},
}

// Build implements Section.
func (Bento) Build(b *Builder) *offgrid.Element {
	margin := 48.0
	gap := 24.0
	if b.Width < 768 {
		margin, gap = 16, 16
	}
	inner := b.Width - 2*margin
	col := (inner - 11*gap) / 12

	grid := offgrid.NewElement("div")
	grid.SkewY = -2
	y := 0.0
	for _, row := range bentoRows {
		rowH := 0.0
		for _, c := range row {
			rowH = math.Max(rowH, c.minH)
		}
		x := 0.0
		for _, c := range row {
			w := float64(c.span)*col + float64(c.span-1)*gap
			card := c.build(b, w, rowH)
			card.AddClass("bento-card")
			card.SetPosition(x, y)
			grid.AppendChild(card)
			x += w + gap
		}
		y += rowH + gap
	}
	grid.SetSize(inner, y-gap)
	grid.SetPosition(margin, 96)

	root := b.Section("bento", grid.Height+192)
	glow := offgrid.NewPattern("bg", b.Width, root.Height, offgrid.LayeredPattern(
		offgrid.RadialGradient(tint(Neon, 0.15), 0.2, 0.1, 0.4*b.Width),
		offgrid.RadialGradient(tint(Magenta, 0.12), 0.8, 0.9, 0.4*b.Width),
	))
	glow.Alpha = 0.4
	root.AppendChild(glow)
	root.AppendChild(grid)
	return root
}

func y2kCard(b *Builder, w, h float64) *offgrid.Element {
	card := b.Glass("div", w, h)
	title := b.Text("h3", "Y2K LAB", b.Theme.Display, clampf(b.VW(4.5), 36, 60), White)
	title.Text.Shadows = []offgrid.TextShadow{{DX: 1, Color: Neon}}
	title.Relayout()
	body := b.Paragraph("Heavy fonts. Sharp edges. Kinetic color. Built for disobedience.", 15, w-80, tint(White, 0.8))
	column(40, 40, 16, title, body)
	card.AppendChild(title)
	card.AppendChild(body)
	return card
}

func glitchFieldCard(b *Builder, w, h float64) *offgrid.Element {
	card := offgrid.NewBox("div", w, h, tint(Magenta, 0.2))
	card.Border = tint(Magenta, 0.4)
	card.BorderWidth = 1
	field := offgrid.NewBox("div", w-48, h-48, tint(Black, 0.3))
	field.Border = tint(White, 0.2)
	field.BorderWidth = 1
	field.SetPosition(24, 24)
	label := b.Text("span", "glitch-field", b.Theme.Mono, 12, White)
	label.SetPosition(12, field.Height-12-label.Height)
	field.AppendChild(label)
	card.AppendChild(field)
	return card
}

func signalCard(b *Builder, w, h float64) *offgrid.Element {
	card := offgrid.NewBox("div", w, h, tint(Cyan, 0.1))
	card.Border = tint(Cyan, 0.3)
	card.BorderWidth = 1
	kicker := b.Text("p", "SIGNAL", b.Theme.Mono, 12, tint(White, 0.7))
	title := b.Text("h4", "PARALLAX", b.Theme.Display, clampf(b.VW(3.5), 30, 48), Cyan)
	title.Blend = offgrid.BlendScreen
	column(32, 32, 8, kicker, title)
	card.AppendChild(kicker)
	card.AppendChild(title)
	return card
}

func gradientCard(b *Builder, w, h float64) *offgrid.Element {
	card := b.Glass("div", w, h)
	fill := offgrid.NewPattern("div", w, h, offgrid.LayeredPattern(
		offgrid.LinearGradient(Neon, 45, 0.4),
		offgrid.LinearGradient(Magenta, 135, 0.45),
	))
	fill.Blend = offgrid.BlendScreen
	card.AppendChild(fill)
	return card
}

func artifactsCard(b *Builder, w, h float64) *offgrid.Element {
	card := b.Glass("div", w, h)
	label := b.Text("span", "ARTIFACTS", b.Theme.Mono, 11, tint(White, 0.7))
	label.SetPosition(24, 24)
	beta := b.Tag("beta", 10)
	beta.SetPosition(w-24-beta.Width, 20)
	card.AppendChild(label)
	card.AppendChild(beta)

	const cols, gap = 3, 12.0
	cellW := (w - 48 - (cols-1)*gap) / cols
	for i, name := range []string{"mesh", "blur", "scan", "tear", "shift", "glow"} {
		btn := b.Button(name, 12, White, tint(Black, 0.6), tint(White, 0.2))
		btn.SetSize(cellW, btn.Height)
		btn.SetPosition(24+float64(i%cols)*(cellW+gap), 72+float64(i/cols)*(btn.Height+gap))
		card.AppendChild(btn)
		card.Height = math.Max(card.Height, btn.Y+btn.Height+24)
	}
	return card
}

// Animate implements Section.
func (Bento) Animate(s *offgrid.Scope, root *offgrid.Element, cfg offgrid.EffectConfig) {
	s.Reveal(root.QueryClass("bento-card"), cfg.BentoReveal)
	s.Magnetic(root.QueryClass("magnet"), cfg.Magnetic)
}
