package offgrid

import (
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"
)

const defaultCommandCap = 1024

// Document is the top-level object that owns the element tree, the scroll
// position, the tween engine, the scroll observer, input state and render
// buffers. All of its methods must be called from the update goroutine.
type Document struct {
	body *Element
	log  *zap.Logger

	width, height float64
	scrollY       float64 // native scroll position
	viewY         float64 // displayed scroll position
	smoother      *ScrollSmoother

	tweens   *TweenEngine
	observer *ScrollObserver

	// Input state
	input       InputSource
	handlers    handlerRegistry
	pointer     pointerState
	hitBuf      []*Element
	injectQueue []syntheticEvent

	hooks     []frameHook
	hookSeq   uint32
	smoke     *SmokeRunner
	debug     bool
	frame     uint64
	stats     FrameStats
	lastDebug time.Time

	// Render state
	commands        []RenderCommand
	sortBuf         []RenderCommand
	rtPool          renderTexturePool
	rtDeferred      []*ebiten.Image
	offscreenCmds   []RenderCommand
	offscreenDepth  int
	screenshotQueue []string
	// ScreenshotDir is where queued screenshots are written.
	ScreenshotDir string
}

// NewDocument creates an empty document with a viewport of the given size.
// The body element has ID "body".
func NewDocument(width, height float64) *Document {
	body := NewElement("body")
	body.ID = "body"
	body.Width = width
	body.Height = height
	d := &Document{
		body:          body,
		log:           zap.NewNop(),
		width:         width,
		height:        height,
		commands:      make([]RenderCommand, 0, defaultCommandCap),
		sortBuf:       make([]RenderCommand, 0, defaultCommandCap),
		ScreenshotDir: "screenshots",
	}
	d.tweens = newTweenEngine(d)
	d.observer = newScrollObserver(d)
	return d
}

// SetLogger replaces the document logger. Nil restores the no-op logger.
func (d *Document) SetLogger(log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	d.log = log
	d.observer.log = log
}

// Logger returns the document logger.
func (d *Document) Logger() *zap.Logger { return d.log }

// Body returns the root element.
func (d *Document) Body() *Element { return d.body }

// Tweens returns the tween engine.
func (d *Document) Tweens() *TweenEngine { return d.tweens }

// Observer returns the scroll observer.
func (d *Document) Observer() *ScrollObserver { return d.observer }

// SetInput sets the source of real pointer and wheel input. Nil disables
// real input; injected events still apply.
func (d *Document) SetInput(src InputSource) { d.input = src }

// GetElementByID searches the whole tree.
func (d *Document) GetElementByID(id string) *Element {
	return d.body.GetElementByID(id)
}

// QueryClass returns every element carrying class, in tree order.
func (d *Document) QueryClass(class string) []*Element {
	return d.body.QueryClass(class)
}

// Contains reports whether el is attached to this document's tree.
func (d *Document) Contains(el *Element) bool {
	if el == nil || el.IsDisposed() {
		return false
	}
	return el.Root() == d.body
}

// --- Viewport & scrolling ---

// Viewport returns the viewport size.
func (d *Document) Viewport() (w, h float64) { return d.width, d.height }

// SetViewport resizes the viewport and re-clamps the scroll position.
func (d *Document) SetViewport(w, h float64) {
	if w == d.width && h == d.height {
		return
	}
	d.width, d.height = w, h
	d.body.SetSize(w, math.Max(h, d.body.Height))
	d.scrollY = d.clampScroll(d.scrollY)
}

// ContentHeight returns the bottom edge of the lowest non-fixed element.
func (d *Document) ContentHeight() float64 {
	bottom := d.height
	d.body.Walk(func(el *Element) bool {
		if el.Fixed || !el.Visible {
			return false
		}
		r := el.PageBounds()
		bottom = math.Max(bottom, r.Y+r.Height)
		return true
	})
	return bottom
}

func (d *Document) clampScroll(y float64) float64 {
	maxY := math.Max(0, d.ContentHeight()-d.height)
	return math.Max(0, math.Min(y, maxY))
}

// ScrollY returns the native scroll position.
func (d *Document) ScrollY() float64 { return d.scrollY }

// ViewY returns the displayed scroll position, which lags ScrollY while a
// smoother is catching up.
func (d *Document) ViewY() float64 { return d.viewY }

// ScrollTo jumps the native scroll position to y, clamped to the content.
func (d *Document) ScrollTo(y float64) {
	if d.smoother != nil {
		d.smoother.interrupt()
	}
	d.scrollY = d.clampScroll(y)
}

// ScrollBy moves the native scroll position by dy.
func (d *Document) ScrollBy(dy float64) {
	d.ScrollTo(d.scrollY + dy)
}

// ScrollIntoView scrolls so el's top meets the viewport top, smoothly when
// a smoother is attached.
func (d *Document) ScrollIntoView(el *Element) {
	if !d.Contains(el) {
		return
	}
	y := el.PageBounds().Y
	if d.smoother != nil {
		d.smoother.ScrollTo(y, 1, nil)
		return
	}
	d.ScrollTo(y)
}

// Navigate follows an in-page anchor such as "#bento". Unknown or
// non-anchor hrefs are ignored.
func (d *Document) Navigate(href string) {
	if len(href) < 2 || href[0] != '#' {
		d.log.Debug("ignoring non-anchor href", zap.String("href", href))
		return
	}
	el := d.GetElementByID(href[1:])
	if el == nil {
		d.log.Debug("anchor target not found", zap.String("href", href))
		return
	}
	d.ScrollIntoView(el)
}

// applyScroll writes the displayed scroll offset onto the scrolled container.
func (d *Document) applyScroll() {
	if d.smoother != nil && d.smoother.content != nil && !d.smoother.content.IsDisposed() {
		d.viewY = d.smoother.y
		if d.body.Motion.Y != 0 {
			d.body.Set(PropY, 0)
		}
		if d.smoother.content.Motion.Y != -d.viewY {
			d.smoother.content.Set(PropY, -d.viewY)
		}
		return
	}
	d.viewY = d.scrollY
	if d.body.Motion.Y != -d.viewY {
		d.body.Set(PropY, -d.viewY)
	}
}

// --- Frame loop ---

type frameHook struct {
	id uint32
	fn func(dt float64)
}

// OnFrame registers fn to run at the end of every Advance. Hooks are how
// goroutine-owned state (config reloads, metrics) is applied on the update
// goroutine.
func (d *Document) OnFrame(fn func(dt float64)) (remove func()) {
	d.hookSeq++
	id := d.hookSeq
	d.hooks = append(d.hooks, frameHook{id: id, fn: fn})
	return func() {
		for i, h := range d.hooks {
			if h.id == id {
				d.hooks = append(d.hooks[:i], d.hooks[i+1:]...)
				return
			}
		}
	}
}

// Update advances the document by one tick at the current ebiten TPS.
func (d *Document) Update() error {
	d.Advance(1.0 / float64(ebiten.TPS()))
	if d.smoke != nil && d.smoke.Done() {
		return ebiten.Termination
	}
	return nil
}

// Advance runs one frame of dt seconds: smoke steps, input, smoothing,
// scroll triggers, tweens, embedded viewers and frame hooks, in that order.
func (d *Document) Advance(dt float64) {
	t0 := time.Now()
	d.frame++

	if d.smoke != nil {
		d.smoke.step(d)
	}

	// Hit testing needs this frame's transforms.
	updateWorldTransform(d.body, identityTransform, 1.0, false)
	d.processInput()

	if d.smoother != nil {
		d.smoother.update(dt)
	}
	d.applyScroll()
	d.observer.update(d.viewY, d.height, dt)
	d.tweens.Tick(dt)
	d.updateViewers(dt)

	for _, h := range append([]frameHook(nil), d.hooks...) {
		h.fn(dt)
	}

	updateWorldTransform(d.body, identityTransform, 1.0, false)

	d.stats.Frame = d.frame
	d.stats.Tweens = d.tweens.ActiveCount()
	d.stats.Triggers = d.observer.ActiveCount()
	d.stats.Listeners = d.handlers.count()
	d.stats.UpdateTime = time.Since(t0)
	if d.debug {
		d.debugLog()
	}
}

func (d *Document) updateViewers(dt float64) {
	d.body.Walk(func(el *Element) bool {
		if !el.Visible {
			return false
		}
		if el.Kind == KindViewer && el.Viewer != nil {
			el.Viewer.Update(dt)
		}
		return true
	})
}

// Frame returns the number of frames advanced so far.
func (d *Document) Frame() uint64 { return d.frame }

// FrameStats is a snapshot of per-frame counters.
type FrameStats struct {
	Frame      uint64
	Tweens     int
	Triggers   int
	Listeners  int
	Elements   int
	Commands   int
	UpdateTime time.Duration
	DrawTime   time.Duration
}

// Stats returns the counters from the last Advance and Draw.
func (d *Document) Stats() FrameStats {
	s := d.stats
	s.Elements = 0
	d.body.Walk(func(*Element) bool {
		s.Elements++
		return true
	})
	return s
}

// SetDebugMode enables per-second frame stats at debug log level.
func (d *Document) SetDebugMode(enabled bool) {
	d.debug = enabled
}

// Draw traverses the tree, emits render commands, sorts them and submits
// them to screen.
func (d *Document) Draw(screen *ebiten.Image) {
	t0 := time.Now()
	screen.Fill(ColorBlack.toRGBA())
	d.commands = d.commands[:0]

	treeOrder := 0
	d.traverse(d.body, identityTransform, 1.0, LayerPage, &treeOrder)
	d.mergeSort()
	d.submitBatches(screen)
	d.stats.Commands = len(d.commands)

	for _, img := range d.rtDeferred {
		d.rtPool.Release(img)
	}
	d.rtDeferred = d.rtDeferred[:0]

	d.flushScreenshots(screen)
	d.stats.DrawTime = time.Since(t0)
}
