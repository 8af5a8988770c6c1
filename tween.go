package offgrid

import (
	"sort"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Prop names one animatable element property.
type Prop uint8

const (
	PropX        Prop = iota // Motion.X, pixels
	PropY                    // Motion.Y, pixels
	PropXPercent             // Motion.XPercent
	PropYPercent             // Motion.YPercent
	PropRotation             // Motion.Rotation, degrees
	PropSkewX                // Motion.SkewX, degrees
	PropSkewY                // Motion.SkewY, degrees
	PropScale                // Motion.Scale
	PropRotateX              // Motion.RotateX, degrees
	PropRotateY              // Motion.RotateY, degrees
	PropAlpha                // Element.Alpha
	PropClip                 // Element.Clip
	numProps
)

var propNames = [numProps]string{
	"x", "y", "xPercent", "yPercent", "rotation", "skewX", "skewY",
	"scale", "rotateX", "rotateY", "alpha", "clip",
}

func (p Prop) String() string {
	if p < numProps {
		return propNames[p]
	}
	return "unknown"
}

// Props is a set of property values for a tween endpoint.
type Props map[Prop]float64

// field returns a pointer to the element field backing p.
func (e *Element) field(p Prop) *float64 {
	switch p {
	case PropX:
		return &e.Motion.X
	case PropY:
		return &e.Motion.Y
	case PropXPercent:
		return &e.Motion.XPercent
	case PropYPercent:
		return &e.Motion.YPercent
	case PropRotation:
		return &e.Motion.Rotation
	case PropSkewX:
		return &e.Motion.SkewX
	case PropSkewY:
		return &e.Motion.SkewY
	case PropScale:
		return &e.Motion.Scale
	case PropRotateX:
		return &e.Motion.RotateX
	case PropRotateY:
		return &e.Motion.RotateY
	case PropAlpha:
		return &e.Alpha
	case PropClip:
		return &e.Clip
	}
	return nil
}

// Get returns the current value of an animatable property.
func (e *Element) Get(p Prop) float64 {
	if f := e.field(p); f != nil {
		return *f
	}
	return 0
}

// Set writes an animatable property and marks the element dirty.
func (e *Element) Set(p Prop, v float64) {
	if f := e.field(p); f != nil {
		*f = v
		e.transformDirty = true
	}
}

// Apply writes every property in props.
func (e *Element) Apply(props Props) {
	for p, v := range props {
		e.Set(p, v)
	}
}

func cloneProps(p Props) Props {
	out := make(Props, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// sortedProps returns the keys of props in Prop order so tracks are written
// deterministically.
func sortedProps(props Props) []Prop {
	keys := make([]Prop, 0, len(props))
	for p := range props {
		keys = append(keys, p)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// TweenOptions configures a tween.
type TweenOptions struct {
	// Duration in seconds. Zero jumps to the end values on the first tick.
	Duration float64
	// Ease maps normalized time to normalized progress. Nil means ease.OutQuad.
	Ease ease.TweenFunc
	// Delay in seconds before the first iteration starts.
	Delay float64
	// Repeat is the number of extra iterations; -1 repeats until cancelled.
	Repeat int
	// Yoyo alternates direction on every repeat.
	Yoyo bool
	// Overwrite kills the same properties on earlier tweens of the target
	// when this tween starts writing.
	Overwrite bool
	// OnComplete fires once when the last iteration finishes. It does not
	// fire on Cancel.
	OnComplete func()
}

type tweenState uint8

const (
	tweenPending tweenState = iota // waiting out its delay
	tweenRunning
	tweenDone
	tweenCancelled
)

type tweenTrack struct {
	prop     Prop
	from, to float64
	tw       *gween.Tween
	killed   bool
}

// Tween animates properties of one element. Create with TweenEngine.To or
// TweenEngine.FromTo; the engine advances it on every tick.
type Tween struct {
	engine *TweenEngine
	id     uint64
	target *Element

	fromCurrent bool
	from, to    Props
	tracks      []tweenTrack
	opts        TweenOptions

	delay     float64
	elapsed   float64
	forward   bool
	iteration int
	state     tweenState
}

// Target returns the animated element.
func (t *Tween) Target() *Element { return t.target }

// Active reports whether the tween is waiting or running.
func (t *Tween) Active() bool {
	return t.state == tweenPending || t.state == tweenRunning
}

// Delay returns the configured start delay in seconds.
func (t *Tween) Delay() float64 { return t.opts.Delay }

// Iteration returns how many iterations have completed.
func (t *Tween) Iteration() int { return t.iteration }

// Cancel stops the tween. Properties keep the last value written; nothing is
// reset. Safe to call repeatedly and after completion.
func (t *Tween) Cancel() {
	if !t.Active() {
		return
	}
	t.state = tweenCancelled
}

// TweenEngine owns every in-flight tween of a Document and advances them once
// per frame in registration order, so overlapping writes are
// last-writer-wins.
type TweenEngine struct {
	doc    *Document
	active []*Tween
	nextID uint64
}

func newTweenEngine(doc *Document) *TweenEngine {
	return &TweenEngine{doc: doc}
}

// To animates target from its values at start time toward to.
func (e *TweenEngine) To(target *Element, to Props, opts TweenOptions) *Tween {
	return e.add(target, nil, to, opts, true)
}

// FromTo animates target from from toward to. The from values are written
// immediately, before any delay elapses.
func (e *TweenEngine) FromTo(target *Element, from, to Props, opts TweenOptions) *Tween {
	t := e.add(target, from, to, opts, false)
	if t.Active() {
		target.Apply(from)
	}
	return t
}

func (e *TweenEngine) add(target *Element, from, to Props, opts TweenOptions, fromCurrent bool) *Tween {
	e.nextID++
	t := &Tween{
		engine:      e,
		id:          e.nextID,
		target:      target,
		fromCurrent: fromCurrent,
		from:        from,
		to:          cloneProps(to),
		opts:        opts,
		delay:       opts.Delay,
		forward:     true,
	}
	if t.opts.Ease == nil {
		t.opts.Ease = ease.OutQuad
	}
	if !e.reachable(target) {
		// Best-effort polish: a missing target never raises.
		t.state = tweenDone
		return t
	}
	e.active = append(e.active, t)
	return t
}

// reachable reports whether el can still be animated.
func (e *TweenEngine) reachable(el *Element) bool {
	if el == nil || el.IsDisposed() {
		return false
	}
	if e.doc == nil {
		return true
	}
	return e.doc.Contains(el)
}

// Tick advances every active tween by dt seconds. Tweens created during the
// tick (for example from an OnComplete callback) start on the next tick.
func (e *TweenEngine) Tick(dt float64) {
	n := len(e.active)
	for i := 0; i < n; i++ {
		t := e.active[i]
		if !t.Active() {
			continue
		}
		if !e.reachable(t.target) {
			t.state = tweenDone
			continue
		}
		t.advance(dt)
	}
	e.compact()
}

// compact drops finished and cancelled tweens, preserving order.
func (e *TweenEngine) compact() {
	kept := e.active[:0]
	for _, t := range e.active {
		if t.Active() {
			kept = append(kept, t)
		}
	}
	for i := len(kept); i < len(e.active); i++ {
		e.active[i] = nil
	}
	e.active = kept
}

// ActiveCount returns the number of waiting or running tweens.
func (e *TweenEngine) ActiveCount() int {
	count := 0
	for _, t := range e.active {
		if t.Active() {
			count++
		}
	}
	return count
}

// ActiveFor returns the number of waiting or running tweens targeting el.
func (e *TweenEngine) ActiveFor(el *Element) int {
	count := 0
	for _, t := range e.active {
		if t.Active() && t.target == el {
			count++
		}
	}
	return count
}

// KillTweensOf cancels every tween targeting el.
func (e *TweenEngine) KillTweensOf(el *Element) {
	for _, t := range e.active {
		if t.target == el {
			t.Cancel()
		}
	}
}

// overwrite kills props on earlier tweens of the same target.
func (e *TweenEngine) overwrite(owner *Tween) {
	for _, t := range e.active {
		if t == owner || t.target != owner.target || !t.Active() || t.id > owner.id {
			continue
		}
		live := 0
		for i := range t.tracks {
			tr := &t.tracks[i]
			if _, ok := owner.to[tr.prop]; ok {
				tr.killed = true
			}
			if !tr.killed {
				live++
			}
		}
		if t.state == tweenPending && len(t.tracks) == 0 {
			for p := range t.to {
				if _, ok := owner.to[p]; ok {
					delete(t.to, p)
				}
			}
			if len(t.to) == 0 {
				t.state = tweenCancelled
			}
			continue
		}
		if len(t.tracks) > 0 && live == 0 {
			t.state = tweenCancelled
		}
	}
}

// start builds the gween tracks for the first iteration.
func (t *Tween) start() {
	t.state = tweenRunning
	t.tracks = t.tracks[:0]
	for _, p := range sortedProps(t.to) {
		from := t.target.Get(p)
		if !t.fromCurrent {
			if v, ok := t.from[p]; ok {
				from = v
			}
		}
		t.tracks = append(t.tracks, tweenTrack{prop: p, from: from, to: t.to[p]})
	}
	t.rebuild()
	if t.opts.Overwrite {
		t.engine.overwrite(t)
	}
}

// rebuild recreates the gween tweens for the current direction.
func (t *Tween) rebuild() {
	d := float32(t.opts.Duration)
	for i := range t.tracks {
		tr := &t.tracks[i]
		begin, end := tr.from, tr.to
		if !t.forward {
			begin, end = end, begin
		}
		tr.tw = gween.New(float32(begin), float32(end), d, t.opts.Ease)
	}
	t.elapsed = 0
}

// advance consumes dt: first the delay, then the current iteration.
func (t *Tween) advance(dt float64) {
	if t.state == tweenPending {
		if t.delay > dt {
			t.delay -= dt
			return
		}
		dt -= t.delay
		t.delay = 0
		t.start()
	}

	t.elapsed += dt
	finished := true
	for i := range t.tracks {
		tr := &t.tracks[i]
		if tr.killed {
			continue
		}
		val, done := tr.to, true
		if !t.forward {
			val = tr.from
		}
		if t.opts.Duration > 0 {
			v, d := tr.tw.Update(float32(dt))
			val, done = float64(v), d
		}
		t.target.Set(tr.prop, val)
		if !done {
			finished = false
		}
	}
	if !finished {
		return
	}

	if t.opts.Repeat < 0 || t.iteration < t.opts.Repeat {
		t.iteration++
		if t.opts.Yoyo {
			t.forward = !t.forward
		}
		t.rebuild()
		return
	}
	t.iteration++
	t.state = tweenDone
	if t.opts.OnComplete != nil {
		t.opts.OnComplete()
	}
}
