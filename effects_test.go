package offgrid

import (
	"math"
	"strings"
	"testing"

	"github.com/tanema/gween/ease"
)

// tweensByTarget indexes the engine's active tweens.
func tweensByTarget(doc *Document) map[*Element]*Tween {
	out := make(map[*Element]*Tween)
	for _, tw := range doc.Tweens().active {
		if tw.Active() {
			out[tw.Target()] = tw
		}
	}
	return out
}

// --- Reveal ---

func TestRevealStaggersByRegistrationIndex(t *testing.T) {
	s := newStage()
	els := []*Element{s.box(0, 100, 200, 50), s.box(0, 200, 200, 50), s.box(0, 300, 200, 50)}
	sc := s.choreo.Scope("hero")
	sc.Reveal(els, s.cfg.Reveal)

	s.run(1)
	byTarget := tweensByTarget(s.doc)
	for i, el := range els {
		tw := byTarget[el]
		if tw == nil {
			t.Fatalf("no tween for element %d", i)
		}
		assertNear(t, "delay", tw.Delay(), float64(i)*0.08)
	}
	sc.Close()
}

func TestRevealStaggerSkipsMissingElements(t *testing.T) {
	s := newStage()
	detached := NewBox("div", 10, 10, ColorWhite)
	a := s.box(0, 100, 200, 50)
	b := s.box(0, 200, 200, 50)
	sc := s.choreo.Scope("hero")
	sc.Reveal([]*Element{nil, a, detached, b}, s.cfg.Reveal)

	if s.doc.Observer().ActiveCount() != 2 {
		t.Fatalf("triggers = %d, want 2", s.doc.Observer().ActiveCount())
	}
	assertNear(t, "detached untouched", detached.Alpha, 1)

	s.run(1)
	byTarget := tweensByTarget(s.doc)
	assertNear(t, "a delay", byTarget[a].Delay(), 0)
	assertNear(t, "b delay", byTarget[b].Delay(), 0.08)
	sc.Close()
}

func TestRevealWaitsForStartLine(t *testing.T) {
	s := newStage()
	cfg := s.cfg.DiagonalReveal // "top 70%"
	below := s.box(0, 2000, 400, 300)
	sc := s.choreo.Scope("diagonal")
	sc.Reveal([]*Element{below}, cfg)

	s.run(10)
	assertNear(t, "hidden", below.Clip, 0)
	if s.doc.Tweens().ActiveFor(below) != 0 {
		t.Fatal("reveal should not start before the start line")
	}

	// top 70%: starts once scrollY >= 2000 - 420.
	s.doc.ScrollTo(1579)
	s.run(1)
	if s.doc.Tweens().ActiveFor(below) != 0 {
		t.Fatal("reveal started early")
	}
	s.doc.ScrollTo(1580)
	s.run(1)
	if s.doc.Tweens().ActiveFor(below) != 1 {
		t.Fatal("reveal should start at the start line")
	}
	s.run(120)
	assertNear(t, "clip", below.Clip, 1)
	assertNear(t, "alpha", below.Alpha, 1)
	sc.Close()
}

func TestRevealPlaysToRest(t *testing.T) {
	s := newStage()
	el := s.box(0, 100, 200, 50)
	sc := s.choreo.Scope("hero")
	sc.Reveal([]*Element{el}, s.cfg.Reveal)
	assertNear(t, "from alpha", el.Alpha, 0)
	assertNear(t, "from y", el.Motion.Y, 30)
	assertNear(t, "from clip", el.Clip, 0)

	s.run(120)
	assertNear(t, "alpha", el.Alpha, 1)
	assertNear(t, "y", el.Motion.Y, 0)
	assertNear(t, "clip", el.Clip, 1)
	if s.doc.Tweens().ActiveCount() != 0 {
		t.Error("reveal tween should finish")
	}
	sc.Close()
}

func TestBentoRevealAlternatesRotation(t *testing.T) {
	s := newStage()
	even := s.box(0, 100, 200, 200)
	odd := s.box(220, 100, 200, 200)
	sc := s.choreo.Scope("bento")
	sc.Reveal([]*Element{even, odd}, s.cfg.BentoReveal)

	assertNear(t, "even from", even.Motion.Rotation, 3)
	assertNear(t, "odd from", odd.Motion.Rotation, -2)
	assertNear(t, "from alpha", even.Alpha, 0.001)
	assertNear(t, "from y", even.Motion.Y, 60)

	s.run(180)
	assertNear(t, "even to", even.Motion.Rotation, 2)
	assertNear(t, "odd to", odd.Motion.Rotation, -1)
	sc.Close()
	assertNear(t, "restored", even.Motion.Rotation, 0)
}

func TestRevealProps(t *testing.T) {
	from, to := revealProps(RevealConfig{Y: 30}, 0)
	if _, ok := from[PropClip]; ok {
		t.Error("clip should only animate when enabled")
	}
	if _, ok := from[PropRotation]; ok {
		t.Error("rotation should only animate when configured")
	}
	assertNear(t, "to alpha", to[PropAlpha], 1)
}

// --- Scrubbed effects ---

func TestParallaxFollowsProgress(t *testing.T) {
	s := newStage()
	hero := s.box(0, 0, 800, 1000)
	hero.Interactable = false
	layers := []*Element{s.box(0, 0, 100, 100), s.box(0, 0, 100, 100), s.box(0, 0, 100, 100)}
	cfg := s.cfg.Parallax
	cfg.ScrubLag = 0

	sc := s.choreo.Scope("hero")
	sc.Parallax(hero, layers, cfg)
	s.doc.ScrollTo(500)
	s.run(1)

	k := float64(ease.OutQuad(0.5, 0, 1, 1))
	for i, el := range layers {
		sign := 1.0
		if i%2 != 0 {
			sign = -1
		}
		assertNear(t, "yPercent", el.Motion.YPercent, float64(i+1)*8*k)
		assertNear(t, "xPercent", el.Motion.XPercent, sign*6*k)
		assertNear(t, "rotation", el.Motion.Rotation, sign*2*k)
	}

	s.doc.ScrollTo(0)
	s.run(1)
	assertNear(t, "back to base", layers[2].Motion.YPercent, 0)
	sc.Close()
}

func TestParallaxLagTrailsScroll(t *testing.T) {
	s := newStage()
	hero := s.box(0, 0, 800, 1000)
	layer := s.box(0, 0, 100, 100)
	sc := s.choreo.Scope("hero")
	sc.Parallax(hero, []*Element{layer}, s.cfg.Parallax)
	s.run(1)
	s.doc.ScrollTo(1000)
	s.run(1)
	if layer.Motion.YPercent <= 0 || layer.Motion.YPercent >= 4 {
		t.Errorf("lagged yPercent = %v, want partway", layer.Motion.YPercent)
	}
	s.run(600)
	assertNear(t, "settled", layer.Motion.YPercent, 8)
	sc.Close()
}

func TestTilt(t *testing.T) {
	s := newStage()
	hero := s.box(0, 0, 800, 1000)
	title := s.box(100, 100, 400, 100)
	cfg := s.cfg.Tilt
	cfg.ScrubLag = 0
	sc := s.choreo.Scope("hero")
	sc.Tilt(hero, title, cfg)

	// "+=80%" of a 600px viewport: fully tilted at scrollY 480.
	s.doc.ScrollTo(480)
	s.run(1)
	assertNear(t, "rotateX", title.Motion.RotateX, 25)
	assertNear(t, "rotateY", title.Motion.RotateY, -20)
	assertNear(t, "rotation", title.Motion.Rotation, -2)
	sc.Close()
	assertNear(t, "restored", title.Motion.RotateX, 0)
}

// --- Magnetic ---

func TestMagneticPullsProportionally(t *testing.T) {
	cases := []struct{ dx, dy float64 }{
		{20, 10},
		{-40, 0},
		{0, -60},
		{70, 70},
	}
	for _, c := range cases {
		s := newStage()
		btn := s.box(100, 100, 100, 40) // center (150, 120)
		sc := s.choreo.Scope("magnets")
		sc.Magnetic([]*Element{btn}, s.cfg.Magnetic)

		s.doc.InjectMove(150+c.dx, 120+c.dy)
		s.run(90)
		if math.Abs(btn.Motion.X-c.dx*0.4) > 1e-3 || math.Abs(btn.Motion.Y-c.dy*0.4) > 1e-3 {
			t.Errorf("offset (%v, %v): pulled to (%v, %v), want (%v, %v)",
				c.dx, c.dy, btn.Motion.X, btn.Motion.Y, c.dx*0.4, c.dy*0.4)
		}
		sc.Close()
	}
}

func TestMagneticMeasuresFromRest(t *testing.T) {
	s := newStage()
	btn := s.box(100, 100, 100, 40)
	sc := s.choreo.Scope("magnets")
	sc.Magnetic([]*Element{btn}, s.cfg.Magnetic)

	s.doc.InjectMove(180, 120)
	s.run(90)
	s.doc.InjectMove(181, 120)
	s.run(90)
	// Pulled toward 31px away from rest, not from the displaced center.
	if math.Abs(btn.Motion.X-31*0.4) > 1e-3 {
		t.Errorf("X = %v, want %v", btn.Motion.X, 31*0.4)
	}
	sc.Close()
}

func TestMagneticReleasesOutsideRadius(t *testing.T) {
	s := newStage()
	btn := s.box(100, 100, 100, 40)
	sc := s.choreo.Scope("magnets")
	sc.Magnetic([]*Element{btn}, s.cfg.Magnetic)

	s.doc.InjectMove(170, 130)
	s.run(60)
	if btn.Motion.X == 0 {
		t.Fatal("button should be pulled")
	}
	// 150px right of center is outside the 140px radius.
	s.doc.InjectMove(300, 120)
	s.run(90)
	assertNear(t, "x", btn.Motion.X, 0)
	assertNear(t, "y", btn.Motion.Y, 0)
	sc.Close()
}

func TestMagneticReleasesOnPointerLeave(t *testing.T) {
	s := newStage()
	btn := s.box(100, 100, 100, 40)
	sc := s.choreo.Scope("magnets")
	sc.Magnetic([]*Element{btn}, s.cfg.Magnetic)

	s.doc.InjectMove(150, 120)
	s.run(30)
	m := &magnet{scope: sc, el: btn, cfg: s.cfg.Magnetic, ease: ease.OutQuart, pulled: true}
	m.release()
	if m.pulled {
		t.Error("release should clear the pulled flag")
	}
	m.release() // second release is a no-op
	s.run(90)
	assertNear(t, "x", btn.Motion.X, 0)
	sc.Close()
}

func TestMagneticListenersPerElement(t *testing.T) {
	s := newStage()
	a := s.box(0, 0, 100, 40)
	b := s.box(200, 0, 100, 40)
	sc := s.choreo.Scope("magnets")
	sc.Magnetic([]*Element{a, b, nil}, s.cfg.Magnetic)
	if s.doc.ListenerCount(nil) != 2 {
		t.Errorf("window listeners = %d, want 2", s.doc.ListenerCount(nil))
	}
	if s.doc.ListenerCount(a) != 1 || s.doc.ListenerCount(b) != 1 {
		t.Error("each magnet needs one leave listener")
	}
	sc.Close()
	assertReleased(t, s.doc)
}

// --- Spotlight ---

func TestSpotlightFollowsPointer(t *testing.T) {
	s := newStage()
	light := s.box(100, 0, 600, 600)
	light.Fixed = true
	light.Interactable = false
	sc := s.choreo.Scope("hero")
	sc.Spotlight(light, s.cfg.Spotlight)

	s.doc.InjectMove(500, 400)
	s.run(60)
	assertNear(t, "x", light.Motion.X, 100)
	assertNear(t, "y", light.Motion.Y, 100)

	s.doc.InjectMove(0, 0)
	s.run(60)
	assertNear(t, "x", light.Motion.X, -400)
	assertNear(t, "y", light.Motion.Y, -300)
	sc.Close()
	assertNear(t, "restored", light.Motion.X, 0)
}

// --- Glitch ---

func TestGlitchIsNotReentrant(t *testing.T) {
	s := newStage()
	title := s.box(100, 100, 400, 100)
	sc := s.choreo.Scope("hero")
	g := sc.Glitch(title, s.cfg.Glitch)
	if g == nil {
		t.Fatal("glitch not registered")
	}

	if !g.Trigger() {
		t.Fatal("first trigger should start a pulse")
	}
	s.run(2)
	if g.Trigger() {
		t.Error("trigger while playing must not restart")
	}
	if g.Runs() != 1 {
		t.Errorf("runs = %d, want 1", g.Runs())
	}

	s.run(60)
	if g.Active() {
		t.Fatal("pulse should have finished")
	}
	assertNear(t, "x", title.Motion.X, 0)
	assertNear(t, "skew", title.Motion.SkewX, 0)
	if !g.Trigger() || g.Runs() != 2 {
		t.Error("a finished pulse should start again")
	}
	sc.Close()
	if g.Trigger() {
		t.Error("closed scope must not trigger")
	}
}

func TestGlitchOnPointerEnter(t *testing.T) {
	s := newStage()
	title := s.box(100, 100, 400, 100)
	sc := s.choreo.Scope("hero")
	g := sc.Glitch(title, s.cfg.Glitch)

	s.doc.InjectMove(10, 10)
	s.doc.InjectMove(200, 150)
	s.doc.InjectMove(210, 150)
	s.doc.InjectMove(10, 10)
	s.doc.InjectMove(200, 150)
	s.run(5)
	if g.Runs() != 1 {
		t.Errorf("runs = %d, want 1 (re-entry while playing is ignored)", g.Runs())
	}

	s.run(60)
	s.doc.InjectMove(10, 10)
	s.doc.InjectMove(200, 150)
	s.run(2)
	if g.Runs() != 2 {
		t.Errorf("runs = %d, want 2", g.Runs())
	}
	sc.Close()
}

func TestGlitchSequence(t *testing.T) {
	s := newStage()
	title := s.box(100, 100, 400, 100)
	cfg := s.cfg.Glitch
	cfg.Ease = "linear"
	sc := s.choreo.Scope("hero")
	g := sc.Glitch(title, cfg)
	g.Trigger()

	s.doc.Tweens().Tick(0.06)
	assertNear(t, "jolt right", title.Motion.X, 2)
	s.doc.Tweens().Tick(0.06)
	assertNear(t, "jolt left", title.Motion.X, -2)
	s.doc.Tweens().Tick(0.08)
	assertNear(t, "skew", title.Motion.SkewX, 8)
	s.doc.Tweens().Tick(0.12)
	assertNear(t, "settle x", title.Motion.X, 0)
	assertNear(t, "settle skew", title.Motion.SkewX, 0)
	sc.Close()
}

// --- Loop ---

func TestLoopRunsUntilClosed(t *testing.T) {
	s := newStage()
	grid := s.box(0, 0, 800, 800)
	sc := s.choreo.Scope("hero")
	tw := sc.Loop(grid, s.cfg.GridLoop)
	s.run(60 * 20)
	if !tw.Active() {
		t.Fatal("loop should run forever")
	}
	if grid.Motion.Scale < 1 || grid.Motion.Scale > 1.05+1e-6 {
		t.Errorf("scale %v out of range", grid.Motion.Scale)
	}
	sc.Close()
	if tw.Active() {
		t.Error("close should stop the loop")
	}
	assertNear(t, "restored scale", grid.Motion.Scale, 1)
}

// --- Config ---

func TestDefaultEffectConfigValid(t *testing.T) {
	if err := DefaultEffectConfig().Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestEffectConfigValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*EffectConfig)
		field  string
	}{
		{"bad ease", func(c *EffectConfig) { c.Magnetic.Ease = "wobble" }, "magnetic.ease"},
		{"bad offset", func(c *EffectConfig) { c.BentoReveal.Start = "middle 80%" }, "bento_reveal.start"},
		{"negative smooth", func(c *EffectConfig) { c.Smooth = -1 }, "smooth"},
		{"negative radius", func(c *EffectConfig) { c.Magnetic.Radius = -5 }, "magnetic.radius"},
	}
	for _, c := range cases {
		cfg := DefaultEffectConfig()
		c.mutate(&cfg)
		err := cfg.Validate()
		if err == nil {
			t.Errorf("%s: expected error", c.name)
			continue
		}
		if !strings.Contains(err.Error(), c.field) {
			t.Errorf("%s: error %q should name %s", c.name, err, c.field)
		}
	}
}

func TestAlternating(t *testing.T) {
	a := Alternating{Even: 3, Odd: -2}
	if a.At(0) != 3 || a.At(1) != -2 || a.At(4) != 3 {
		t.Error("Alternating.At wrong")
	}
}
