package site

import (
	"github.com/phanxgames/offgrid"
)

// Footer closes the page. It has no effects.
type Footer struct{}

// Name implements Section.
func (Footer) Name() string { return "footer" }

// Build implements Section.
func (Footer) Build(b *Builder) *offgrid.Element {
	root := b.Section("footer", 0)
	root.Tag = "footer"
	h5 := b.Text("h5", "DIGITAL BRUTALISM MEETS CYBERPUNK", b.Theme.Mono, 12, tint(White, 0.7))
	note := b.Text("div", "Made for experiments • Mixed sizes • Broken grid • Heavy blur", b.Theme.Mono, 10, tint(White, 0.6))
	h5.SetPosition(64, 64)
	note.SetPosition(64+h5.Width+24, 64+h5.Height-note.Height)
	if note.X+note.Width > b.Width-64 {
		// Wrap under the heading on narrow windows.
		note.SetPosition(64, h5.Y+h5.Height+12)
	}
	root.AppendChild(h5)
	root.AppendChild(note)
	root.SetSize(b.Width, note.Y+note.Height+64)
	return root
}

// Animate implements Section.
func (Footer) Animate(*offgrid.Scope, *offgrid.Element, offgrid.EffectConfig) {}
