package offgrid

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// scrollAnim is an in-flight programmatic scroll.
type scrollAnim struct {
	tween *gween.Tween
	done  bool
}

// ScrollSmoother decouples the displayed scroll position from the native
// one: wheel and keyboard input move the target, and the content container
// eases toward it. Scroll triggers follow the displayed position so effects
// stay in sync with what is on screen.
type ScrollSmoother struct {
	doc     *Document
	content *Element

	// Smooth is roughly how many seconds the content takes to catch up with
	// the native scroll position. Zero disables smoothing.
	Smooth float64

	y      float64
	scroll *scrollAnim
	killed bool
}

// NewScrollSmoother attaches a smoother that translates content. A document
// has at most one smoother; creating another replaces the previous one.
func (d *Document) NewScrollSmoother(content *Element, smooth float64) *ScrollSmoother {
	if d.smoother != nil {
		d.smoother.Kill()
	}
	s := &ScrollSmoother{doc: d, content: content, Smooth: smooth, y: d.scrollY}
	d.smoother = s
	return s
}

// Smoother returns the attached smoother, or nil.
func (d *Document) Smoother() *ScrollSmoother { return d.smoother }

// Content returns the translated container.
func (s *ScrollSmoother) Content() *Element { return s.content }

// Y returns the displayed scroll position.
func (s *ScrollSmoother) Y() float64 { return s.y }

// ScrollTo animates the native scroll position to y over duration seconds.
func (s *ScrollSmoother) ScrollTo(y, duration float64, easeFn ease.TweenFunc) {
	if easeFn == nil {
		easeFn = ease.InOutCubic
	}
	y = s.doc.clampScroll(y)
	if duration <= 0 {
		s.scroll = nil
		s.doc.scrollY = y
		return
	}
	s.scroll = &scrollAnim{
		tween: gween.New(float32(s.doc.scrollY), float32(y), float32(duration), easeFn),
	}
}

// Scrolling reports whether a programmatic scroll is in flight.
func (s *ScrollSmoother) Scrolling() bool { return s.scroll != nil }

// Kill detaches the smoother and restores the content container.
func (s *ScrollSmoother) Kill() {
	if s.killed {
		return
	}
	s.killed = true
	s.scroll = nil
	if s.content != nil && !s.content.IsDisposed() {
		s.content.Set(PropY, 0)
	}
	if s.doc.smoother == s {
		s.doc.smoother = nil
	}
}

// update advances programmatic scrolling and the displayed position.
// Called from Document.Advance.
func (s *ScrollSmoother) update(dt float64) {
	if s.scroll != nil {
		val, done := s.scroll.tween.Update(float32(dt))
		s.doc.scrollY = s.doc.clampScroll(float64(val))
		if done {
			s.scroll = nil
		}
	}

	target := s.doc.scrollY
	if s.Smooth <= 0 {
		s.y = target
		return
	}
	k := 1 - math.Exp(-3*dt/s.Smooth)
	s.y += (target - s.y) * k
	if math.Abs(target-s.y) < 0.5 {
		s.y = target
	}
}

// interrupt cancels a programmatic scroll when the user scrolls manually.
func (s *ScrollSmoother) interrupt() {
	s.scroll = nil
}
