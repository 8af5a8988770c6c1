package offgrid

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// RunConfig configures the window opened by Run.
type RunConfig struct {
	Title  string
	Width  int
	Height int
	// ShowStats adds the FPS and counter overlay.
	ShowStats bool
	// Input overrides the input source. Nil reads the real mouse, wheel and
	// keyboard.
	Input InputSource
}

// game adapts a Document to ebiten.Game.
type game struct {
	doc *Document
}

func (g *game) Update() error { return g.doc.Update() }

func (g *game) Draw(screen *ebiten.Image) { g.doc.Draw(screen) }

// Layout resizes the viewport to the window, so the page reflows with it.
func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.doc.SetViewport(float64(outsideWidth), float64(outsideHeight))
	return outsideWidth, outsideHeight
}

// Run opens a resizable window and drives doc until the window closes or an
// attached smoke run finishes. It blocks and must be called from the main
// goroutine.
func Run(doc *Document, cfg RunConfig) error {
	if cfg.Width <= 0 {
		cfg.Width = 1280
	}
	if cfg.Height <= 0 {
		cfg.Height = 800
	}
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if cfg.Input != nil {
		doc.SetInput(cfg.Input)
	} else if doc.input == nil {
		doc.SetInput(EbitenInput{})
	}
	doc.SetViewport(float64(cfg.Width), float64(cfg.Height))
	if cfg.ShowStats {
		doc.Body().AppendChild(NewStatsOverlay(doc))
	}
	return ebiten.RunGame(&game{doc: doc})
}
