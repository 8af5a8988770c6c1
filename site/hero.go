package site

import (
	"fmt"
	"math"

	"github.com/phanxgames/offgrid"
)

// Hero is the opening section: headline, side nav, floating layers, tags,
// the embedded scene and the glass panel with the Enter link.
type Hero struct{}

// Name implements Section.
func (Hero) Name() string { return "hero" }

// Build implements Section.
func (Hero) Build(b *Builder) *offgrid.Element {
	w := b.Width
	root := b.Section("hero", b.Height)

	// Content first, so the section height can follow it.
	headSize := clampf(b.VW(18), 72, 280)
	head := b.Text("h1", "DIGITAL\nBRUTALISM", b.Theme.Display, headSize, White)
	head.ID = "hero-title"
	head.Text.LineHeight = headSize * 0.8
	head.Text.Shadows = chroma(2, Magenta, Cyan)
	head.Relayout()
	head.AddClass("hero-rotate", "reveal", "glitch")
	head.Interactable = true

	lede := b.Paragraph("Cyberpunk energy. Broken symmetry. Off-grid layouts. "+
		"A playground of neon glass, ripped edges, morphing blobs and parallax artifacts. "+
		"Nothing is centered. Everything is alive.", 16, math.Min(460, w-64), tint(White, 0.8))
	lede.Rotation = -2
	lede.AddClass("reveal")
	bar := offgrid.NewBox("border", 2, lede.Height, Neon)
	bar.SetPosition(-10, 0)
	lede.AppendChild(bar)

	panel := heroPanel(b)

	y := column(0, 144, 24, head, lede)
	lede.X = 8
	panel.SetPosition(-b.VW(10), y+64)
	height := math.Max(b.Height, panel.Y+panel.Height+96)
	root.SetSize(w, height)

	noise := offgrid.NewPattern("noise", w, height, offgrid.NoisePattern(7, 1))
	noise.Alpha = 0.3
	noise.Blend = offgrid.BlendSoftLight

	size := 0.6 * math.Max(b.Width, b.Height)
	spot := offgrid.NewPattern("spotlight", size, size, offgrid.RadialGradient(tint(Neon, 0.22), 0.5, 0.5, size*0.3))
	spot.ID = "spotlight"
	spot.AddClass("spotlight")
	spot.Fixed = true
	spot.Layer = offgrid.LayerOverlay
	spot.Blend = offgrid.BlendAdd
	spot.SetPosition((b.Width-size)/2, (b.Height-size)/2)
	spot.SetZIndex(20)

	grid := offgrid.NewPattern("grid", b.VW(160), b.VH(140), offgrid.GridPattern(80, tint(Cyan, 0.2), tint(Magenta, 0.2)))
	grid.AddClass("distort")
	grid.Alpha = 0.2
	grid.SetPosition(-64, -96)

	scene := offgrid.NewViewerElement("spline", w, height, offgrid.NewWireframeViewer(SceneURL, Neon, Magenta, Cyan))

	root.AppendChild(noise)
	root.AppendChild(spot)
	root.AppendChild(grid)
	root.AppendChild(scene)
	root.AppendChild(heroNav(b))

	textBlock := offgrid.NewElement("div")
	textBlock.SetZIndex(10)
	textBlock.AppendChild(head)
	textBlock.AppendChild(lede)
	root.AppendChild(textBlock)

	layers := offgrid.NewElement("div")
	layers.SetZIndex(10)
	for i, ly := range []struct {
		x, y, w, h, rot float64
		c               offgrid.Color
	}{
		{w - 40 - 160, 96, 160, 160, 6, Neon},
		{80, 224, 192, 256, -12, Magenta},
		{w - 128 - 208, height - 40 - 208, 208, 208, 12, Cyan},
	} {
		l := offgrid.NewBox("div", ly.w, ly.h, tint(ly.c, 0.1))
		l.ID = fmt.Sprintf("hero-layer-%d", i)
		l.Border = tint(ly.c, 0.3)
		l.BorderWidth = 1
		l.Glow = tint(ly.c, 0.25)
		l.Rotation = ly.rot
		l.SetPosition(ly.x, ly.y)
		l.AddClass("layer")
		layers.AppendChild(l)
	}
	root.AppendChild(layers)

	tags := offgrid.NewElement("div")
	tags.SetZIndex(20)
	for i := 0; i < 16; i++ {
		t := b.Tag(fmt.Sprintf("EXP-%02d", i+1), 12)
		sign := 1.0
		if i%2 != 0 {
			sign = -1
		}
		t.Rotation = sign * float64(i+2)
		t.SetPosition(w*float64((i*7)%100)/100, height*float64((i*13)%100)/100)
		tags.AppendChild(t)
	}
	root.AppendChild(tags)

	panel.SetZIndex(20)
	root.AppendChild(panel)
	return root
}

// heroNav is the fixed asymmetric nav in the top-left corner.
func heroNav(b *Builder) *offgrid.Element {
	nav := offgrid.NewElement("nav")
	nav.ID = "side-nav"
	nav.Fixed = true
	nav.Layer = offgrid.LayerChrome
	nav.SetPosition(16, 24)
	nav.SetZIndex(30)
	y := 0.0
	for i, label := range []string{"Index", "Labs", "Archive"} {
		btn := b.Button(label, 10, White, tint(White, 0.05), tint(White, 0.1))
		btn.SkewY = []float64{3, -6, 3}[i]
		btn.SetPosition(0, y)
		y += btn.Height + 12
		nav.AppendChild(btn)
	}
	nav.SetSize(96, y)
	return nav
}

// heroPanel is the tilted glass strip holding the lab heading and the
// Enter link.
func heroPanel(b *Builder) *offgrid.Element {
	w := b.Width * 1.2
	outer := offgrid.NewElement("div")
	outer.Rotation = 2

	h2 := b.Text("h2", "Off-Grid Interface Lab", b.Theme.Display, clampf(b.VW(6), 40, 72), White)
	h2.Text.Shadows = chroma(1, Magenta, Cyan)
	h2.Relayout()
	h2.AddClass("reveal")

	p := b.Paragraph("We break constraints and then animate the debris. Scroll to bend space. "+
		"Hover to glitch the matrix. Drag the neon and make it scream.", 15, math.Min(560, b.Width*0.5), tint(White, 0.8))
	p.AddClass("reveal")

	inner := offgrid.NewElement("div")
	inner.SkewY = 3
	bottom := column(b.VW(10)+64, 48, 16, h2, p)

	enter := b.Button("Enter", 14, Black, Neon, tint(Black, 0.2))
	enter.ID = "enter"
	enter.Href = "#bento"
	enter.SetPosition(b.VW(10)+b.Width-64-enter.Width, bottom-enter.Height)

	inner.AppendChild(h2)
	inner.AppendChild(p)
	inner.AppendChild(enter)
	inner.SetSize(w, bottom+48)

	glass := b.Glass("div", w, inner.Height)
	glass.AppendChild(inner)
	outer.AppendChild(glass)
	outer.SetSize(w, inner.Height)
	return outer
}

// Animate implements Section.
func (Hero) Animate(s *offgrid.Scope, root *offgrid.Element, cfg offgrid.EffectConfig) {
	for _, g := range root.QueryClass("distort") {
		s.Loop(g, cfg.GridLoop)
	}
	s.Parallax(root, root.QueryClass("layer"), cfg.Parallax)
	for _, el := range root.QueryClass("hero-rotate") {
		s.Tilt(root, el, cfg.Tilt)
	}
	s.Reveal(root.QueryClass("reveal"), cfg.Reveal)
	for _, el := range root.QueryClass("glitch") {
		s.Glitch(el, cfg.Glitch)
	}
	s.Magnetic(root.QueryClass("magnet"), cfg.Magnetic)
	for _, el := range root.QueryClass("spotlight") {
		s.Spotlight(el, cfg.Spotlight)
	}
}
