package site

import (
	"github.com/phanxgames/offgrid"
)

// Menu is the fixed floating menu in the top-right corner.
type Menu struct{}

// Name implements Section.
func (Menu) Name() string { return "menu" }

// Build implements Section.
func (Menu) Build(b *Builder) *offgrid.Element {
	root := offgrid.NewElement("div")
	root.ID = "menu"
	root.Fixed = true
	root.Layer = offgrid.LayerChrome
	root.SetZIndex(40)

	x := 0.0
	h := 0.0
	for _, item := range []struct {
		label string
		c     offgrid.Color
	}{
		{"PULSE", Neon},
		{"SHIFT", Magenta},
		{"WARP", Cyan},
	} {
		btn := b.Button(item.label, 11, item.c, tint(item.c, 0.2), tint(item.c, 0.4))
		btn.SetPosition(x, 0)
		x += btn.Width + 8
		h = max(h, btn.Height)
		root.AppendChild(btn)
	}
	root.SetSize(x-8, h)
	root.SetPosition(b.Width-16-root.Width, 24)
	return root
}

// Animate implements Section.
func (Menu) Animate(s *offgrid.Scope, root *offgrid.Element, cfg offgrid.EffectConfig) {
	s.Magnetic(root.QueryClass("magnet"), cfg.Magnetic)
}
