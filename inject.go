package offgrid

type syntheticKind uint8

const (
	syntheticPointer syntheticKind = iota
	syntheticScroll
)

// syntheticEvent is a single injected input event in viewport coordinates,
// processed exactly like real input.
type syntheticEvent struct {
	kind    syntheticKind
	x, y    float64
	pressed bool
	dy      float64
}

// InjectMove queues a pointer move to (x, y) with the button up. The event
// is consumed on the next frame.
func (d *Document) InjectMove(x, y float64) {
	d.injectQueue = append(d.injectQueue, syntheticEvent{kind: syntheticPointer, x: x, y: y})
}

// InjectPress queues a button press at (x, y).
func (d *Document) InjectPress(x, y float64) {
	d.injectQueue = append(d.injectQueue, syntheticEvent{kind: syntheticPointer, x: x, y: y, pressed: true})
}

// InjectRelease queues a button release at (x, y).
func (d *Document) InjectRelease(x, y float64) {
	d.injectQueue = append(d.injectQueue, syntheticEvent{kind: syntheticPointer, x: x, y: y})
}

// InjectClick queues a press followed by a release at (x, y). Consumes two
// frames.
func (d *Document) InjectClick(x, y float64) {
	d.InjectPress(x, y)
	d.InjectRelease(x, y)
}

// InjectScroll queues a scroll request of dy pixels.
func (d *Document) InjectScroll(dy float64) {
	d.injectQueue = append(d.injectQueue, syntheticEvent{kind: syntheticScroll, dy: dy})
}

// InjectGlide queues pointer moves from (fromX, fromY) to (toX, toY) spread
// over frames frames, the last one landing exactly on the destination.
func (d *Document) InjectGlide(fromX, fromY, toX, toY float64, frames int) {
	if frames < 1 {
		frames = 1
	}
	for i := 1; i <= frames; i++ {
		t := float64(i) / float64(frames)
		d.InjectMove(fromX+(toX-fromX)*t, fromY+(toY-fromY)*t)
	}
}

// PendingInput returns the number of queued synthetic events.
func (d *Document) PendingInput() int { return len(d.injectQueue) }

// processInjectedInput pops one event from the queue and feeds it through
// the regular input path. Returns true if an event was consumed, in which
// case real input is skipped for the frame.
func (d *Document) processInjectedInput() bool {
	if len(d.injectQueue) == 0 {
		return false
	}
	evt := d.injectQueue[0]
	copy(d.injectQueue, d.injectQueue[1:])
	d.injectQueue = d.injectQueue[:len(d.injectQueue)-1]

	switch evt.kind {
	case syntheticScroll:
		d.processScroll(evt.dy)
	default:
		d.processPointer(evt.x, evt.y, evt.pressed)
	}
	return true
}
