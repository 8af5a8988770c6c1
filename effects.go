package offgrid

import (
	"fmt"
	"math"

	"github.com/tanema/gween/ease"
	"go.uber.org/zap"
)

// --- Tuning ---

// Alternating holds a value for even and odd registration indices.
type Alternating struct {
	Even float64 `mapstructure:"even" yaml:"even"`
	Odd  float64 `mapstructure:"odd" yaml:"odd"`
}

// At returns the value for index i.
func (a Alternating) At(i int) float64 {
	if i%2 == 0 {
		return a.Even
	}
	return a.Odd
}

// RevealConfig tunes an entrance reveal. Elements start at FromAlpha, shifted
// down by Y and rotated by FromRotation, and animate to full opacity at rest.
type RevealConfig struct {
	Duration     float64     `mapstructure:"duration"`
	Ease         string      `mapstructure:"ease"`
	Stagger      float64     `mapstructure:"stagger"`
	Start        string      `mapstructure:"start"`
	Y            float64     `mapstructure:"y"`
	FromAlpha    float64     `mapstructure:"from_alpha"`
	Clip         bool        `mapstructure:"clip"`
	FromRotation Alternating `mapstructure:"from_rotation"`
	ToRotation   Alternating `mapstructure:"to_rotation"`
}

// ParallaxConfig tunes scrubbed parallax layers. Layer i travels
// (i+1)*YPercentStep percent of its height and alternates the sign of
// XPercent and Rotation.
type ParallaxConfig struct {
	Start        string  `mapstructure:"start"`
	End          string  `mapstructure:"end"`
	ScrubLag     float64 `mapstructure:"scrub_lag"`
	Ease         string  `mapstructure:"ease"`
	YPercentStep float64 `mapstructure:"y_percent_step"`
	XPercent     float64 `mapstructure:"x_percent"`
	Rotation     float64 `mapstructure:"rotation"`
}

// TiltConfig tunes the scrubbed 3D tilt of the hero headline.
type TiltConfig struct {
	Start    string  `mapstructure:"start"`
	End      string  `mapstructure:"end"`
	ScrubLag float64 `mapstructure:"scrub_lag"`
	Ease     string  `mapstructure:"ease"`
	RotateX  float64 `mapstructure:"rotate_x"`
	RotateY  float64 `mapstructure:"rotate_y"`
	Rotation float64 `mapstructure:"rotation"`
}

// MagneticConfig tunes magnetic buttons.
type MagneticConfig struct {
	Radius      float64 `mapstructure:"radius"`
	Strength    float64 `mapstructure:"strength"`
	InDuration  float64 `mapstructure:"in_duration"`
	OutDuration float64 `mapstructure:"out_duration"`
	Ease        string  `mapstructure:"ease"`
}

// SpotlightConfig tunes the cursor spotlight.
type SpotlightConfig struct {
	Duration float64 `mapstructure:"duration"`
	Ease     string  `mapstructure:"ease"`
}

// GlitchConfig tunes the glitch pulse: a jolt right, a jolt left, a skew,
// then a settle back to rest.
type GlitchConfig struct {
	Shift          float64 `mapstructure:"shift"`
	Skew           float64 `mapstructure:"skew"`
	ShiftDuration  float64 `mapstructure:"shift_duration"`
	SkewDuration   float64 `mapstructure:"skew_duration"`
	SettleDuration float64 `mapstructure:"settle_duration"`
	Ease           string  `mapstructure:"ease"`
}

// LoopConfig tunes an endless yoyo distortion.
type LoopConfig struct {
	Rotation float64 `mapstructure:"rotation"`
	SkewX    float64 `mapstructure:"skew_x"`
	SkewY    float64 `mapstructure:"skew_y"`
	Scale    float64 `mapstructure:"scale"`
	Duration float64 `mapstructure:"duration"`
	Ease     string  `mapstructure:"ease"`
}

// EffectConfig is the full set of cosmetic tuning values for the page.
type EffectConfig struct {
	// Smooth is the scroll smoother catch-up time in seconds; 0 disables it.
	Smooth float64 `mapstructure:"smooth"`

	Reveal         RevealConfig    `mapstructure:"reveal"`
	BentoReveal    RevealConfig    `mapstructure:"bento_reveal"`
	DiagonalReveal RevealConfig    `mapstructure:"diagonal_reveal"`
	Parallax       ParallaxConfig  `mapstructure:"parallax"`
	Tilt           TiltConfig      `mapstructure:"tilt"`
	Magnetic       MagneticConfig  `mapstructure:"magnetic"`
	Spotlight      SpotlightConfig `mapstructure:"spotlight"`
	Glitch         GlitchConfig    `mapstructure:"glitch"`
	GridLoop       LoopConfig      `mapstructure:"grid_loop"`
}

// DefaultEffectConfig returns the stock tuning.
func DefaultEffectConfig() EffectConfig {
	return EffectConfig{
		Smooth: 1.2,
		Reveal: RevealConfig{
			Duration: 1.2, Ease: "power3.out", Stagger: 0.08,
			Y: 30, Clip: true,
		},
		BentoReveal: RevealConfig{
			Duration: 1.1, Ease: "power3.out", Start: "top 80%",
			Y: 60, FromAlpha: 0.001,
			FromRotation: Alternating{Even: 3, Odd: -2},
			ToRotation:   Alternating{Even: 2, Odd: -1},
		},
		DiagonalReveal: RevealConfig{
			Duration: 1.4, Ease: "power3.out", Start: "top 70%", Clip: true,
		},
		Parallax: ParallaxConfig{
			Start: "top top", End: "bottom top", ScrubLag: 0.6, Ease: "power1.out",
			YPercentStep: 8, XPercent: 6, Rotation: 2,
		},
		Tilt: TiltConfig{
			Start: "top top", End: "+=80% top", Ease: "power1.out",
			RotateX: 25, RotateY: -20, Rotation: -2,
		},
		Magnetic: MagneticConfig{
			Radius: 140, Strength: 0.4, InDuration: 0.3, OutDuration: 0.6, Ease: "power3.out",
		},
		Spotlight: SpotlightConfig{Duration: 0.2, Ease: "power3.out"},
		Glitch: GlitchConfig{
			Shift: 2, Skew: 8, ShiftDuration: 0.06, SkewDuration: 0.08, SettleDuration: 0.12,
			Ease: "power1.inOut",
		},
		GridLoop: LoopConfig{
			Rotation: 2, SkewX: 6, SkewY: -4, Scale: 1.05, Duration: 8, Ease: "sine.inOut",
		},
	}
}

// Validate checks every offset and ease name.
func (c EffectConfig) Validate() error {
	if c.Smooth < 0 {
		return fmt.Errorf("offgrid: smooth must not be negative, got %v", c.Smooth)
	}
	offsets := []struct{ field, value string }{
		{"reveal.start", c.Reveal.Start},
		{"bento_reveal.start", c.BentoReveal.Start},
		{"diagonal_reveal.start", c.DiagonalReveal.Start},
		{"parallax.start", c.Parallax.Start},
		{"parallax.end", c.Parallax.End},
		{"tilt.start", c.Tilt.Start},
		{"tilt.end", c.Tilt.End},
	}
	for _, o := range offsets {
		if o.value == "" {
			continue
		}
		if _, err := ParseOffset(o.value); err != nil {
			return fmt.Errorf("%s: %w", o.field, err)
		}
	}
	eases := []struct{ field, value string }{
		{"reveal.ease", c.Reveal.Ease},
		{"bento_reveal.ease", c.BentoReveal.Ease},
		{"diagonal_reveal.ease", c.DiagonalReveal.Ease},
		{"parallax.ease", c.Parallax.Ease},
		{"tilt.ease", c.Tilt.Ease},
		{"magnetic.ease", c.Magnetic.Ease},
		{"spotlight.ease", c.Spotlight.Ease},
		{"glitch.ease", c.Glitch.Ease},
		{"grid_loop.ease", c.GridLoop.Ease},
	}
	for _, e := range eases {
		if _, err := ParseEase(e.value); err != nil {
			return fmt.Errorf("%s: %w", e.field, err)
		}
	}
	if c.Magnetic.Radius < 0 {
		return fmt.Errorf("magnetic.radius: must not be negative, got %v", c.Magnetic.Radius)
	}
	return nil
}

// --- Reveal ---

// Reveal hides each element and plays it in when its top reaches cfg.Start.
// Element i waits i*cfg.Stagger seconds after entering, where i counts the
// elements actually registered.
func (s *Scope) Reveal(els []*Element, cfg RevealConfig) {
	fn := easeOr(cfg.Ease, ease.OutQuart)
	idx := 0
	for _, el := range els {
		if !s.usable(el, "reveal") {
			continue
		}
		from, to := revealProps(cfg, idx)
		delay := float64(idx) * cfg.Stagger
		idx++

		target := el
		_, err := s.Observe(TriggerOptions{
			Trigger: target,
			Start:   cfg.Start,
			OnEnter: func() {
				if !s.doc.Contains(target) {
					return
				}
				s.FromTo(target, from, to, TweenOptions{
					Duration:  cfg.Duration,
					Ease:      fn,
					Delay:     delay,
					Overwrite: true,
				})
			},
		})
		if err != nil {
			s.log.Warn("reveal trigger", zap.String("tag", el.Tag), zap.Error(err))
			continue
		}
		s.track(el)
		el.Apply(from)
	}
}

func revealProps(cfg RevealConfig, i int) (from, to Props) {
	from = Props{PropAlpha: cfg.FromAlpha, PropY: cfg.Y}
	to = Props{PropAlpha: 1, PropY: 0}
	if cfg.Clip {
		from[PropClip] = 0
		to[PropClip] = 1
	}
	if r0, r1 := cfg.FromRotation.At(i), cfg.ToRotation.At(i); r0 != 0 || r1 != 0 {
		from[PropRotation] = r0
		to[PropRotation] = r1
	}
	return from, to
}

// --- Scrubbed effects ---

// scrubTo ties el's props to a trigger's progress: at progress p each
// property sits at base + (to-base)*ease(p).
func (s *Scope) scrubTo(trigger, el *Element, to Props, start, end string, lag float64, easeName, effect string) {
	if !s.usable(el, effect) || !s.usable(trigger, effect) {
		return
	}
	fn := easeOr(easeName, ease.OutQuad)
	s.track(el)
	base := make(Props, len(to))
	for p := range to {
		base[p] = el.Get(p)
	}
	keys := sortedProps(to)
	_, err := s.Observe(TriggerOptions{
		Trigger:  trigger,
		Start:    start,
		End:      end,
		Scrub:    true,
		ScrubLag: lag,
		OnProgress: func(p float64) {
			if el.IsDisposed() {
				return
			}
			k := float64(fn(float32(p), 0, 1, 1))
			for _, prop := range keys {
				el.Set(prop, base[prop]+(to[prop]-base[prop])*k)
			}
		},
	})
	if err != nil {
		s.log.Warn(effect+" trigger", zap.String("tag", el.Tag), zap.Error(err))
	}
}

// Parallax drifts each layer as trigger scrolls through the viewport.
// Deeper layers (higher index) travel further.
func (s *Scope) Parallax(trigger *Element, layers []*Element, cfg ParallaxConfig) {
	for i, el := range layers {
		sign := 1.0
		if i%2 != 0 {
			sign = -1
		}
		to := Props{
			PropYPercent: float64(i+1) * cfg.YPercentStep,
			PropXPercent: sign * cfg.XPercent,
			PropRotation: sign * cfg.Rotation,
		}
		s.scrubTo(trigger, el, to, cfg.Start, cfg.End, cfg.ScrubLag, cfg.Ease, "parallax")
	}
}

// Tilt rotates el in 3D as trigger scrolls away.
func (s *Scope) Tilt(trigger, el *Element, cfg TiltConfig) {
	to := Props{
		PropRotateX:  cfg.RotateX,
		PropRotateY:  cfg.RotateY,
		PropRotation: cfg.Rotation,
	}
	s.scrubTo(trigger, el, to, cfg.Start, cfg.End, cfg.ScrubLag, cfg.Ease, "tilt")
}

// --- Pointer effects ---

// restCenter returns el's viewport center with its magnetic offset removed,
// so the pull is measured from where the element sits at rest.
func restCenter(el *Element) Vec2 {
	mx, my := el.Motion.X, el.Motion.Y
	el.Motion.X, el.Motion.Y = 0, 0
	c := el.Bounds().Center()
	el.Motion.X, el.Motion.Y = mx, my
	return c
}

// Magnetic pulls each element toward the pointer while it is within
// cfg.Radius of the element's center, by cfg.Strength of the distance.
// Outside the radius, or when the pointer leaves the element, it springs
// back to rest.
func (s *Scope) Magnetic(els []*Element, cfg MagneticConfig) {
	fn := easeOr(cfg.Ease, ease.OutQuart)
	for _, el := range els {
		if !s.usable(el, "magnetic") {
			continue
		}
		s.track(el)
		m := &magnet{scope: s, el: el, cfg: cfg, ease: fn}
		s.Listen(nil, EventPointerMove, m.move)
		s.Listen(el, EventPointerLeave, func(PointerEvent) { m.release() })
	}
}

type magnet struct {
	scope  *Scope
	el     *Element
	cfg    MagneticConfig
	ease   ease.TweenFunc
	pulled bool
}

func (m *magnet) move(ev PointerEvent) {
	if m.el.IsDisposed() {
		return
	}
	c := restCenter(m.el)
	dx, dy := ev.X-c.X, ev.Y-c.Y
	if math.Hypot(dx, dy) >= m.cfg.Radius {
		m.release()
		return
	}
	m.pulled = true
	m.scope.To(m.el, Props{PropX: dx * m.cfg.Strength, PropY: dy * m.cfg.Strength}, TweenOptions{
		Duration:  m.cfg.InDuration,
		Ease:      m.ease,
		Overwrite: true,
	})
}

// release animates back to rest. Repeated releases while already heading
// home are dropped.
func (m *magnet) release() {
	if !m.pulled {
		return
	}
	m.pulled = false
	m.scope.To(m.el, Props{PropX: 0, PropY: 0}, TweenOptions{
		Duration:  m.cfg.OutDuration,
		Ease:      m.ease,
		Overwrite: true,
	})
}

// Spotlight makes el follow the pointer, offset so that el's center sits
// under the cursor when el is laid out centered in the viewport.
func (s *Scope) Spotlight(el *Element, cfg SpotlightConfig) {
	if !s.usable(el, "spotlight") {
		return
	}
	fn := easeOr(cfg.Ease, ease.OutQuart)
	s.track(el)
	s.Listen(nil, EventPointerMove, func(ev PointerEvent) {
		w, h := s.doc.Viewport()
		s.To(el, Props{PropX: ev.X - w/2, PropY: ev.Y - h/2}, TweenOptions{
			Duration:  cfg.Duration,
			Ease:      fn,
			Overwrite: true,
		})
	})
}

// GlitchPulse is a registered glitch effect.
type GlitchPulse struct {
	scope *Scope
	el    *Element
	tl    *Timeline
	runs  int
}

// Glitch plays a short jolt sequence on el every time the pointer enters it.
// A pulse that is still playing is never restarted. Returns nil when el
// cannot be animated.
func (s *Scope) Glitch(el *Element, cfg GlitchConfig) *GlitchPulse {
	if !s.usable(el, "glitch") {
		return nil
	}
	fn := easeOr(cfg.Ease, ease.InOutQuad)
	s.track(el)
	tl := s.doc.Tweens().NewTimeline(el).
		To(Props{PropX: cfg.Shift}, cfg.ShiftDuration, fn).
		To(Props{PropX: -cfg.Shift}, cfg.ShiftDuration, fn).
		To(Props{PropSkewX: cfg.Skew}, cfg.SkewDuration, ease.OutQuad).
		To(Props{PropSkewX: 0, PropX: 0}, cfg.SettleDuration, ease.OutQuad)
	g := &GlitchPulse{scope: s, el: el, tl: tl}
	s.Listen(el, EventPointerEnter, func(PointerEvent) { g.Trigger() })
	s.Add(tl.Cancel)
	return g
}

// Trigger starts the sequence unless it is already playing. It reports
// whether a new sequence started.
func (g *GlitchPulse) Trigger() bool {
	if g.scope.closed || g.tl.Active() {
		return false
	}
	g.tl.Play()
	if !g.tl.Active() {
		return false
	}
	g.runs++
	return true
}

// Active reports whether a sequence is playing.
func (g *GlitchPulse) Active() bool { return g.tl.Active() }

// Runs returns how many sequences have started.
func (g *GlitchPulse) Runs() int { return g.runs }

// --- Ambient ---

// Loop distorts el back and forth forever.
func (s *Scope) Loop(el *Element, cfg LoopConfig) *Tween {
	if !s.usable(el, "loop") {
		return nil
	}
	return s.To(el, Props{
		PropRotation: cfg.Rotation,
		PropSkewX:    cfg.SkewX,
		PropSkewY:    cfg.SkewY,
		PropScale:    cfg.Scale,
	}, TweenOptions{
		Duration: cfg.Duration,
		Ease:     easeOr(cfg.Ease, ease.InOutSine),
		Repeat:   -1,
		Yoyo:     true,
	})
}
