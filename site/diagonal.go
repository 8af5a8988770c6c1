package site

import (
	"math"

	"github.com/phanxgames/offgrid"
)

// Diagonal is the pair of skewed panels below the bento grid.
type Diagonal struct{}

// Name implements Section.
func (Diagonal) Name() string { return "diagonal" }

// Build implements Section.
func (Diagonal) Build(b *Builder) *offgrid.Element {
	margin := 64.0
	if b.Width < 768 {
		margin = 24
	}
	inner := b.Width - 2*margin

	// Panel one: glass band with the headline.
	head := b.Text("h3", "Diagonal Reality", b.Theme.Display, clampf(b.VW(6), 44, 72), White)
	head.Text.Shadows = chroma(1, Magenta, Neon)
	head.Relayout()
	body := b.Paragraph("Sections cut against the flow. Backgrounds skewed and layered. "+
		"The grid is broken on purpose.", 16, math.Min(600, inner), tint(White, 0.8))
	copy1 := offgrid.NewElement("div")
	copy1.Rotation = 2
	bottom := column(0, 0, 16, head, body)
	copy1.AppendChild(head)
	copy1.AppendChild(body)
	copy1.SetSize(inner, bottom)
	copy1.SetPosition(margin, 96)

	one := b.Glass("div", b.Width, copy1.Height+192)
	one.SkewY = -6
	one.AddClass("diag")
	one.AppendChild(copy1)

	// Panel two: gradient band with two cards.
	cardW := inner
	if b.Width >= 768 {
		cardW = (inner - 32) / 2
	}
	kinetic := offgrid.NewBox("div", cardW, 0, tint(White, 0.05))
	kinetic.Border = tint(White, 0.1)
	kinetic.BorderWidth = 1
	kh := b.Text("h4", "Kinetic Type", b.Theme.Display, clampf(b.VW(3.5), 30, 48), White)
	kp := b.Paragraph("Oversized typography shouts through the layers. "+
		"Color channels misaligned for a subtle chromatic aberration.", 15, cardW-80, tint(White, 0.8))
	kinetic.Height = column(40, 40, 12, kh, kp) + 40
	kinetic.AppendChild(kh)
	kinetic.AppendChild(kp)

	swatches := offgrid.NewBox("div", cardW, 0, tint(Black, 0.4))
	swatches.Border = tint(White, 0.1)
	swatches.BorderWidth = 1
	swatches.Rotation = 2
	var items []*offgrid.Element
	for _, line := range []string{"NEON: #00FF88", "MAGENTA: #FF0080", "CYAN: #00D9FF"} {
		li := b.Text("li", line, b.Theme.Mono, 13, tint(White, 0.8))
		swatches.AppendChild(li)
		items = append(items, li)
	}
	swatches.Height = column(40, 40, 12, items...) + 40

	cards := offgrid.NewElement("div")
	cards.Rotation = -2
	if b.Width >= 768 {
		swatches.SetPosition(cardW+32, 0)
		cards.SetSize(inner, math.Max(kinetic.Height, swatches.Height))
	} else {
		swatches.SetPosition(0, kinetic.Height+32)
		cards.SetSize(inner, swatches.Y+swatches.Height)
	}
	cards.AppendChild(kinetic)
	cards.AppendChild(swatches)
	cards.SetPosition(margin, 96)

	two := offgrid.NewPattern("div", b.Width, cards.Height+192, offgrid.LayeredPattern(
		offgrid.LinearGradient(tint(Cyan, 0.1), 45, 0.5),
		offgrid.LinearGradient(tint(Magenta, 0.1), 225, 0.5),
	))
	two.Border = tint(White, 0.1)
	two.BorderWidth = 1
	two.SkewY = 3
	two.AddClass("diag")
	two.AppendChild(cards)

	column(0, 0, 0, one, two)
	root := b.Section("diagonal", one.Height+two.Height)
	root.AppendChild(one)
	root.AppendChild(two)
	return root
}

// Animate implements Section.
func (Diagonal) Animate(s *offgrid.Scope, root *offgrid.Element, cfg offgrid.EffectConfig) {
	s.Reveal(root.QueryClass("diag"), cfg.DiagonalReveal)
}
