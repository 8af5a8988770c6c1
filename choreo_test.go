package offgrid

import "testing"

// stage is a document with a choreographer and a handful of attached
// elements for effect tests.
type stage struct {
	doc    *Document
	choreo *Choreographer
	cfg    EffectConfig
	page   *Element
}

func newStage() *stage {
	doc := NewDocument(800, 600)
	page := NewElement("main")
	page.SetSize(800, 4000)
	doc.Body().AppendChild(page)
	cfg := DefaultEffectConfig()
	return &stage{doc: doc, choreo: NewChoreographer(doc, cfg), cfg: cfg, page: page}
}

// box appends a w x h box at (x, y) to the page.
func (s *stage) box(x, y, w, h float64) *Element {
	el := NewBox("div", w, h, ColorWhite)
	el.SetPosition(x, y)
	el.Interactable = true
	s.page.AppendChild(el)
	return el
}

func (s *stage) run(frames int) {
	for i := 0; i < frames; i++ {
		s.doc.Advance(frame)
	}
}

// assertReleased fails unless the document holds no tweens, triggers or
// listeners.
func assertReleased(t *testing.T, doc *Document) {
	t.Helper()
	if n := doc.Tweens().ActiveCount(); n != 0 {
		t.Errorf("active tweens = %d, want 0", n)
	}
	if n := doc.Observer().ActiveCount(); n != 0 {
		t.Errorf("active triggers = %d, want 0", n)
	}
	if n := doc.handlers.count(); n != 0 {
		t.Errorf("listeners = %d, want 0", n)
	}
}

func TestScopeCloseReleasesEverything(t *testing.T) {
	s := newStage()
	title := s.box(100, 100, 400, 120)
	lede := s.box(100, 260, 400, 60)
	layers := []*Element{s.box(0, 0, 200, 200), s.box(200, 0, 200, 200), s.box(400, 0, 200, 200)}
	buttons := []*Element{s.box(100, 400, 100, 40), s.box(250, 400, 100, 40)}
	light := s.box(0, 0, 600, 600)
	light.Fixed = true
	grid := s.box(0, 0, 800, 800)

	sc := s.choreo.Scope("hero")
	sc.Loop(grid, s.cfg.GridLoop)
	sc.Parallax(s.page, layers, s.cfg.Parallax)
	sc.Tilt(s.page, title, s.cfg.Tilt)
	sc.Reveal([]*Element{title, lede}, s.cfg.Reveal)
	g := sc.Glitch(title, s.cfg.Glitch)
	sc.Magnetic(buttons, s.cfg.Magnetic)
	sc.Spotlight(light, s.cfg.Spotlight)

	s.doc.InjectGlide(0, 0, 150, 420, 10)
	s.doc.ScrollTo(300)
	g.Trigger()
	s.run(12)

	if s.doc.Observer().ActiveCount() == 0 || s.doc.handlers.count() == 0 || s.doc.Tweens().ActiveCount() == 0 {
		t.Fatal("effects should have registered work before close")
	}
	if s.choreo.OpenScopes() != 1 {
		t.Errorf("open scopes = %d, want 1", s.choreo.OpenScopes())
	}

	sc.Close()
	assertReleased(t, s.doc)
	if s.choreo.OpenScopes() != 0 {
		t.Errorf("open scopes after close = %d, want 0", s.choreo.OpenScopes())
	}
	if sc.ActiveTweens() != 0 {
		t.Error("scope should own no tweens after close")
	}
	if g.Active() {
		t.Error("glitch should be stopped")
	}

	// Nothing keeps animating after close.
	before := grid.Motion
	s.doc.InjectMove(600, 500)
	s.run(30)
	if grid.Motion != before {
		t.Error("element animated after its scope closed")
	}
	assertReleased(t, s.doc)
}

func TestScopeCloseRestoresTouchedElements(t *testing.T) {
	s := newStage()
	a := s.box(0, 100, 200, 100)
	b := s.box(0, 300, 200, 100)
	b.Alpha = 0.7
	b.Motion.X = 12

	sc := s.choreo.Scope("reveal")
	sc.Reveal([]*Element{a, b}, s.cfg.Reveal)
	if a.Alpha != 0 || a.Clip != 0 {
		t.Fatalf("reveal should hide immediately, alpha=%v clip=%v", a.Alpha, a.Clip)
	}
	s.run(5)
	sc.Close()

	assertNear(t, "a alpha", a.Alpha, 1)
	assertNear(t, "a clip", a.Clip, 1)
	assertNear(t, "a y", a.Motion.Y, 0)
	assertNear(t, "b alpha", b.Alpha, 0.7)
	assertNear(t, "b x", b.Motion.X, 12)
}

func TestScopeCloseIdempotent(t *testing.T) {
	s := newStage()
	sc := s.choreo.Scope("x")
	calls := 0
	sc.Add(func() { calls++ })
	sc.Close()
	sc.Close()
	if calls != 1 {
		t.Errorf("cancel ran %d times, want 1", calls)
	}
	if !sc.Closed() {
		t.Error("Closed should report true")
	}
}

func TestScopeCancelsRunInReverse(t *testing.T) {
	s := newStage()
	sc := s.choreo.Scope("x")
	var order []int
	for i := 0; i < 3; i++ {
		sc.Add(func() { order = append(order, i) })
	}
	sc.Add(nil)
	sc.Close()
	if len(order) != 3 || order[0] != 2 || order[2] != 0 {
		t.Errorf("order = %v, want [2 1 0]", order)
	}
}

func TestClosedScopeRejectsNewWork(t *testing.T) {
	s := newStage()
	el := s.box(0, 0, 100, 100)
	sc := s.choreo.Scope("late")
	sc.Close()

	ran := false
	sc.Add(func() { ran = true })
	if !ran {
		t.Error("Add on a closed scope should run fn immediately")
	}
	sc.Listen(el, EventClick, func(PointerEvent) {})
	if _, err := sc.Observe(TriggerOptions{Trigger: el}); err == nil {
		t.Error("Observe on a closed scope should fail")
	}
	if tw := sc.To(el, Props{PropX: 5}, TweenOptions{Duration: 1}); tw.Active() {
		t.Error("To on a closed scope should return a cancelled tween")
	}
	sc.Reveal([]*Element{el}, s.cfg.Reveal)
	sc.Magnetic([]*Element{el}, s.cfg.Magnetic)
	if g := sc.Glitch(el, s.cfg.Glitch); g != nil {
		t.Error("Glitch on a closed scope should return nil")
	}
	if tw := sc.Loop(el, s.cfg.GridLoop); tw != nil {
		t.Error("Loop on a closed scope should return nil")
	}
	assertReleased(t, s.doc)
	assertNear(t, "alpha untouched", el.Alpha, 1)
}

func TestScopesAreIndependent(t *testing.T) {
	s := newStage()
	a := s.box(0, 0, 100, 40)
	b := s.box(0, 200, 100, 40)
	first := s.choreo.Scope("first")
	second := s.choreo.Scope("second")
	first.Magnetic([]*Element{a}, s.cfg.Magnetic)
	second.Magnetic([]*Element{b}, s.cfg.Magnetic)
	second.Loop(b, s.cfg.GridLoop)

	first.Close()
	if s.doc.ListenerCount(a) != 0 {
		t.Error("first scope listeners remain")
	}
	if s.doc.ListenerCount(b) != 1 || s.doc.ListenerCount(nil) != 1 {
		t.Error("second scope listeners should survive")
	}
	if s.doc.Tweens().ActiveFor(b) != 1 {
		t.Error("second scope tween should survive")
	}
	second.Close()
	assertReleased(t, s.doc)
}

func TestScopeCloseSkipsDisposedElements(t *testing.T) {
	s := newStage()
	el := s.box(0, 0, 100, 100)
	sc := s.choreo.Scope("x")
	sc.Reveal([]*Element{el}, s.cfg.Reveal)
	el.Dispose()
	sc.Close()
	if !el.IsDisposed() {
		t.Fatal("element should stay disposed")
	}
	assertReleased(t, s.doc)
}

func TestScopePrunesFinishedTweens(t *testing.T) {
	s := newStage()
	el := s.box(0, 0, 100, 100)
	sc := s.choreo.Scope("x")
	for i := 0; i < 500; i++ {
		sc.To(el, Props{PropX: float64(i)}, TweenOptions{Duration: 0})
		s.doc.Tweens().Tick(frame)
	}
	if len(sc.tweens) > 33 {
		t.Errorf("scope keeps %d tween records, want pruning", len(sc.tweens))
	}
	if sc.ActiveTweens() != 0 {
		t.Errorf("active tweens = %d, want 0", sc.ActiveTweens())
	}
}

func TestChoreographerConfig(t *testing.T) {
	s := newStage()
	cfg := s.choreo.Config()
	cfg.Magnetic.Strength = 0.9
	s.choreo.SetConfig(cfg)
	if s.choreo.Config().Magnetic.Strength != 0.9 {
		t.Error("SetConfig did not apply")
	}
	if s.choreo.Document() != s.doc {
		t.Error("Document mismatch")
	}
	if s.choreo.Scope("named").Name() != "named" {
		t.Error("scope name mismatch")
	}
}
