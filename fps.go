package offgrid

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// NewStatsOverlay creates a fixed debug element in the top-left corner that
// shows FPS, TPS and the document's live tween, trigger and listener counts.
// The image is refreshed every half second.
func NewStatsOverlay(d *Document) *Element {
	const w, h = 160, 64
	var img *ebiten.Image
	var since float64

	el := NewPattern("stats", w, h, func(w, h int) *ebiten.Image {
		img = ebiten.NewImage(w, h)
		return img
	})
	el.ID = "stats-overlay"
	el.Fixed = true
	el.Layer = LayerDebug
	el.SetPosition(8, 8)

	var remove func()
	remove = d.OnFrame(func(dt float64) {
		if el.IsDisposed() {
			remove()
			return
		}
		since += dt
		if img == nil || since < 0.5 {
			return
		}
		since = 0
		s := d.Stats()
		img.Fill(color.RGBA{0, 0, 0, 160})
		ebitenutil.DebugPrint(img, fmt.Sprintf("FPS: %.1f\nTPS: %.1f\ntweens: %d triggers: %d\nlisteners: %d",
			ebiten.ActualFPS(), ebiten.ActualTPS(), s.Tweens, s.Triggers, s.Listeners))
	})
	return el
}
