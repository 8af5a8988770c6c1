package offgrid

import (
	"errors"

	"go.uber.org/zap"
)

var errScopeClosed = errors.New("offgrid: scope closed")

// Choreographer hands out Scopes that bind effects to a Document. Each
// mounted section owns one Scope and closes it on unmount.
type Choreographer struct {
	doc    *Document
	cfg    EffectConfig
	log    *zap.Logger
	scopes []*Scope
}

// NewChoreographer creates a choreographer for doc using cfg as the effect
// tuning for every scope opened afterwards.
func NewChoreographer(doc *Document, cfg EffectConfig) *Choreographer {
	return &Choreographer{doc: doc, cfg: cfg, log: doc.Logger().Named("choreo")}
}

// Document returns the animated document.
func (c *Choreographer) Document() *Document { return c.doc }

// Config returns the current effect tuning.
func (c *Choreographer) Config() EffectConfig { return c.cfg }

// SetConfig replaces the effect tuning. Effects already registered keep the
// values they were created with; remount to apply the new ones.
func (c *Choreographer) SetConfig(cfg EffectConfig) { c.cfg = cfg }

// Scope opens a new scope. The name only appears in logs.
func (c *Choreographer) Scope(name string) *Scope {
	s := &Scope{
		name:  name,
		owner: c,
		doc:   c.doc,
		log:   c.log.With(zap.String("scope", name)),
		saved: make(map[*Element]savedState),
	}
	c.scopes = append(c.scopes, s)
	return s
}

// OpenScopes returns the number of scopes not yet closed.
func (c *Choreographer) OpenScopes() int { return len(c.scopes) }

func (c *Choreographer) release(s *Scope) {
	for i, x := range c.scopes {
		if x == s {
			c.scopes = append(c.scopes[:i], c.scopes[i+1:]...)
			return
		}
	}
}

// savedState is an element's animatable state before a scope touched it.
type savedState struct {
	motion Motion
	alpha  float64
	clip   float64
}

// Scope collects everything registered for one mount: tweens, scroll
// triggers and event listeners. Close releases all of it and restores the
// animated properties of every element the scope touched.
type Scope struct {
	name  string
	owner *Choreographer
	doc   *Document
	log   *zap.Logger

	cancels []func()
	tweens  []*Tween
	saved   map[*Element]savedState
	touched []*Element
	closed  bool
}

// Name returns the scope name.
func (s *Scope) Name() string { return s.name }

// Closed reports whether Close has run.
func (s *Scope) Closed() bool { return s.closed }

// Add registers a cancel function to run on Close. Cancels run in reverse
// registration order. Adding to a closed scope runs fn immediately.
func (s *Scope) Add(fn func()) {
	if fn == nil {
		return
	}
	if s.closed {
		fn()
		return
	}
	s.cancels = append(s.cancels, fn)
}

// Listen attaches an event listener owned by the scope.
func (s *Scope) Listen(target *Element, event EventType, fn func(PointerEvent)) {
	if s.closed {
		return
	}
	h := s.doc.AddEventListener(target, event, fn)
	s.Add(h.Remove)
}

// Observe registers a scroll trigger owned by the scope.
func (s *Scope) Observe(opts TriggerOptions) (*Trigger, error) {
	if s.closed {
		return nil, errScopeClosed
	}
	t, err := s.doc.Observer().Observe(opts)
	if err != nil {
		return nil, err
	}
	s.Add(func() { s.doc.Observer().Unobserve(t) })
	return t, nil
}

// To starts a tween owned by the scope. On a closed scope it returns an
// inert tween and leaves el untouched.
func (s *Scope) To(el *Element, to Props, opts TweenOptions) *Tween {
	if s.closed {
		return &Tween{target: el, state: tweenCancelled}
	}
	s.track(el)
	return s.own(s.doc.Tweens().To(el, to, opts))
}

// FromTo starts a tween owned by the scope. On a closed scope it returns an
// inert tween and leaves el untouched.
func (s *Scope) FromTo(el *Element, from, to Props, opts TweenOptions) *Tween {
	if s.closed {
		return &Tween{target: el, state: tweenCancelled}
	}
	s.track(el)
	return s.own(s.doc.Tweens().FromTo(el, from, to, opts))
}

// own records t so Close can cancel it. Finished tweens are pruned as new
// ones arrive, which keeps pointer-driven effects from growing the list.
func (s *Scope) own(t *Tween) *Tween {
	if len(s.tweens) >= 32 {
		kept := s.tweens[:0]
		for _, x := range s.tweens {
			if x.Active() {
				kept = append(kept, x)
			}
		}
		clear(s.tweens[len(kept):])
		s.tweens = kept
	}
	if t.Active() {
		s.tweens = append(s.tweens, t)
	}
	return t
}

// ActiveTweens returns the number of live tweens started through the scope.
func (s *Scope) ActiveTweens() int {
	n := 0
	for _, t := range s.tweens {
		if t.Active() {
			n++
		}
	}
	return n
}

// track saves el's animatable state the first time the scope touches it.
func (s *Scope) track(el *Element) {
	if el == nil {
		return
	}
	if _, ok := s.saved[el]; ok {
		return
	}
	s.saved[el] = savedState{motion: el.Motion, alpha: el.Alpha, clip: el.Clip}
	s.touched = append(s.touched, el)
}

// usable reports whether el can take part in an effect. Missing or
// detached elements are skipped without error.
func (s *Scope) usable(el *Element, effect string) bool {
	if s.closed {
		s.log.Debug("scope closed, skipping effect", zap.String("effect", effect))
		return false
	}
	if el == nil {
		s.log.Debug("skipping effect on nil element", zap.String("effect", effect))
		return false
	}
	if !s.doc.Contains(el) {
		s.log.Debug("skipping effect on detached element",
			zap.String("effect", effect), zap.String("tag", el.Tag), zap.String("id", el.ID))
		return false
	}
	return true
}

// Close cancels every tween, trigger and listener registered through the
// scope, then restores the motion, alpha and clip of each touched element
// that is still alive. Safe to call repeatedly.
func (s *Scope) Close() {
	if s.closed {
		return
	}
	s.closed = true
	for i := len(s.cancels) - 1; i >= 0; i-- {
		s.cancels[i]()
	}
	s.cancels = nil
	for _, t := range s.tweens {
		t.Cancel()
	}
	s.tweens = nil
	for i := len(s.touched) - 1; i >= 0; i-- {
		el := s.touched[i]
		if el.IsDisposed() {
			continue
		}
		st := s.saved[el]
		el.Motion = st.motion
		el.Alpha = st.alpha
		el.Clip = st.clip
		el.MarkDirty()
	}
	s.touched = nil
	clear(s.saved)
	s.owner.release(s)
	s.log.Debug("scope closed")
}
