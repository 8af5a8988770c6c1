package offgrid

import (
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// WheelStep is the scroll distance in pixels of one wheel notch.
const WheelStep = 60

// --- Input sources ---

// InputSource supplies real pointer and scroll input once per frame.
type InputSource interface {
	// Cursor returns the pointer position in viewport pixels.
	Cursor() (x, y float64)
	// Pressed reports whether the primary button is held.
	Pressed() bool
	// ScrollDelta returns the requested scroll distance in pixels this frame.
	ScrollDelta() float64
}

// EbitenInput reads the mouse, wheel and scroll keys through ebiten.
type EbitenInput struct{}

// Cursor implements InputSource.
func (EbitenInput) Cursor() (float64, float64) {
	x, y := ebiten.CursorPosition()
	return float64(x), float64(y)
}

// Pressed implements InputSource.
func (EbitenInput) Pressed() bool {
	return ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
}

// ScrollDelta implements InputSource. Arrow keys scroll one wheel step,
// space and page keys most of a viewport.
func (EbitenInput) ScrollDelta() float64 {
	_, wy := ebiten.Wheel()
	dy := -wy * WheelStep
	_, h := ebiten.WindowSize()
	page := float64(h) * 0.85
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowDown):
		dy += WheelStep
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowUp):
		dy -= WheelStep
	case inpututil.IsKeyJustPressed(ebiten.KeyPageDown), inpututil.IsKeyJustPressed(ebiten.KeySpace):
		dy += page
	case inpututil.IsKeyJustPressed(ebiten.KeyPageUp):
		dy -= page
	}
	return dy
}

// --- Events ---

// PointerEvent is delivered to listeners. Target is the element the
// listener is attached to, or nil for window listeners; Hit is the topmost
// interactable element under the pointer.
type PointerEvent struct {
	Type           EventType
	Target         *Element
	Hit            *Element
	X, Y           float64 // viewport coordinates
	LocalX, LocalY float64 // Target-local coordinates, zero for window listeners
	DeltaY         float64 // EventScroll only
}

// --- Handler registry ---

type listener struct {
	id     uint32
	target *Element // nil = window
	event  EventType
	fn     func(PointerEvent)
}

type handlerRegistry struct {
	listeners []listener
	nextID    uint32
}

func (r *handlerRegistry) add(target *Element, event EventType, fn func(PointerEvent)) CallbackHandle {
	r.nextID++
	id := r.nextID
	r.listeners = append(r.listeners, listener{id: id, target: target, event: event, fn: fn})
	return CallbackHandle{id: id, reg: r}
}

func (r *handlerRegistry) remove(id uint32) {
	for i := range r.listeners {
		if r.listeners[i].id == id {
			copy(r.listeners[i:], r.listeners[i+1:])
			r.listeners[len(r.listeners)-1] = listener{}
			r.listeners = r.listeners[:len(r.listeners)-1]
			return
		}
	}
}

func (r *handlerRegistry) count() int { return len(r.listeners) }

func (r *handlerRegistry) countFor(target *Element) int {
	n := 0
	for _, l := range r.listeners {
		if l.target == target {
			n++
		}
	}
	return n
}

// matching returns the listeners for (target, event) as a snapshot, so
// handlers can add or remove listeners while being dispatched.
func (r *handlerRegistry) matching(target *Element, event EventType) []listener {
	var out []listener
	for _, l := range r.listeners {
		if l.target == target && l.event == event {
			out = append(out, l)
		}
	}
	return out
}

// CallbackHandle removes a registered listener.
type CallbackHandle struct {
	id  uint32
	reg *handlerRegistry
}

// Remove unregisters the listener. Safe to call repeatedly.
func (h CallbackHandle) Remove() {
	if h.reg == nil {
		return
	}
	h.reg.remove(h.id)
}

// AddEventListener registers fn for event on target. A nil target listens
// on the window: pointer moves anywhere and every scroll request.
func (d *Document) AddEventListener(target *Element, event EventType, fn func(PointerEvent)) CallbackHandle {
	return d.handlers.add(target, event, fn)
}

// ListenerCount returns the number of listeners attached to el; nil counts
// window listeners.
func (d *Document) ListenerCount(el *Element) int {
	return d.handlers.countFor(el)
}

// --- Pointer state ---

type pointerState struct {
	known      bool
	x, y       float64
	down       bool
	downTarget *Element
	hoverPath  []*Element // hit element first, then its ancestors
}

// Pointer returns the last known pointer position.
func (d *Document) Pointer() (x, y float64, ok bool) {
	return d.pointer.x, d.pointer.y, d.pointer.known
}

// --- Hit testing ---

// collectInteractable walks the tree in painter order, appending
// interactable elements to buf.
func (d *Document) collectInteractable(e *Element, buf []*Element) []*Element {
	if !e.Visible {
		return buf
	}
	if e.Interactable && e.Width > 0 && e.Height > 0 {
		buf = append(buf, e)
	}
	for _, child := range sortedChildren(e) {
		buf = d.collectInteractable(child, buf)
	}
	return buf
}

// hitTest finds the topmost interactable element at viewport (x, y).
func (d *Document) hitTest(x, y float64) *Element {
	d.hitBuf = d.collectInteractable(d.body, d.hitBuf[:0])
	// Higher layers paint later; keep tree order within a layer.
	sort.SliceStable(d.hitBuf, func(i, j int) bool {
		return d.hitBuf[i].Layer < d.hitBuf[j].Layer
	})
	for i := len(d.hitBuf) - 1; i >= 0; i-- {
		e := d.hitBuf[i]
		lx, ly := e.WorldToLocal(x, y)
		if lx >= 0 && lx <= e.Width && ly >= 0 && ly <= e.Height {
			return e
		}
	}
	return nil
}

// --- Input processing ---

// processInput consumes one injected event if any are queued, otherwise
// reads the real input source.
func (d *Document) processInput() {
	if d.processInjectedInput() {
		return
	}
	if d.input == nil {
		return
	}
	x, y := d.input.Cursor()
	d.processPointer(x, y, d.input.Pressed())
	if dy := d.input.ScrollDelta(); dy != 0 {
		d.processScroll(dy)
	}
}

// processPointer runs the pointer state machine: enter/leave, move, then
// press/release/click.
func (d *Document) processPointer(x, y float64, pressed bool) {
	ps := &d.pointer
	moved := !ps.known || x != ps.x || y != ps.y
	ps.known = true
	ps.x, ps.y = x, y

	hit := d.hitTest(x, y)
	d.updateHover(hit, x, y)

	if moved {
		d.dispatch(nil, EventPointerMove, hit, x, y)
		for _, el := range ps.hoverPath {
			d.dispatch(el, EventPointerMove, hit, x, y)
		}
	}

	switch {
	case pressed && !ps.down:
		ps.down = true
		ps.downTarget = hit
	case !pressed && ps.down:
		ps.down = false
		target := ps.downTarget
		ps.downTarget = nil
		if target != nil && target == hit {
			d.click(hit, x, y)
		}
	}
}

// updateHover fires leave events for elements no longer under the pointer
// (innermost first) and enter events for newly hovered ones (outermost
// first).
func (d *Document) updateHover(hit *Element, x, y float64) {
	ps := &d.pointer
	var path []*Element
	for p := hit; p != nil; p = p.Parent {
		path = append(path, p)
	}
	old := ps.hoverPath
	ps.hoverPath = path

	for _, el := range old {
		if !containsElement(path, el) && !el.IsDisposed() {
			d.dispatch(el, EventPointerLeave, hit, x, y)
		}
	}
	for i := len(path) - 1; i >= 0; i-- {
		if !containsElement(old, path[i]) {
			d.dispatch(path[i], EventPointerEnter, hit, x, y)
		}
	}
}

// click dispatches a bubbling click and follows the nearest anchor href.
func (d *Document) click(hit *Element, x, y float64) {
	href := ""
	for p := hit; p != nil; p = p.Parent {
		d.dispatch(p, EventClick, hit, x, y)
		if href == "" && p.Href != "" {
			href = p.Href
		}
	}
	if href != "" {
		d.Navigate(href)
	}
}

// processScroll applies a scroll request and notifies window listeners.
func (d *Document) processScroll(dy float64) {
	d.ScrollBy(dy)
	for _, l := range d.handlers.matching(nil, EventScroll) {
		l.fn(PointerEvent{Type: EventScroll, X: d.pointer.x, Y: d.pointer.y, DeltaY: dy})
	}
}

func (d *Document) dispatch(target *Element, event EventType, hit *Element, x, y float64) {
	ls := d.handlers.matching(target, event)
	if len(ls) == 0 {
		return
	}
	ev := PointerEvent{Type: event, Target: target, Hit: hit, X: x, Y: y}
	if target != nil {
		ev.LocalX, ev.LocalY = target.WorldToLocal(x, y)
	}
	for _, l := range ls {
		l.fn(ev)
	}
}

func containsElement(list []*Element, el *Element) bool {
	for _, x := range list {
		if x == el {
			return true
		}
	}
	return false
}
