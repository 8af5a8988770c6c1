package offgrid

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// --- Offsets ---

// Anchor is a position along one axis of an element or the viewport,
// either a fraction of its size or an absolute pixel distance from its top.
type Anchor struct {
	Fraction float64
	Pixels   float64
}

// resolve returns the anchor's distance from the top of a box of the given size.
func (a Anchor) resolve(size float64) float64 {
	return a.Fraction*size + a.Pixels
}

// Offset is a parsed trigger position such as "top 80%" (element top meets
// the viewport at 80% of its height) or "+=80%" (80% of the viewport height
// past the start position).
type Offset struct {
	Element  Anchor
	Viewport Anchor
	// Relative offsets are measured from the trigger's start position.
	Relative bool
	Distance Anchor
}

// ParseOffset parses a trigger offset string. Accepted forms:
//
//	"<element-anchor> <viewport-anchor>"  e.g. "top 80%", "center center"
//	"<element-anchor>"                    viewport anchor defaults to top
//	"+=<distance>"                        e.g. "+=80%", "+=300px"
//
// Anchors are top, center, bottom, N% or Npx (a bare number means pixels).
func ParseOffset(s string) (Offset, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return Offset{}, fmt.Errorf("offgrid: empty scroll offset")
	}
	if strings.HasPrefix(fields[0], "+=") {
		// A trailing viewport anchor is accepted and ignored.
		d, err := parseAnchor(strings.TrimPrefix(fields[0], "+="))
		if err != nil {
			return Offset{}, fmt.Errorf("offgrid: scroll offset %q: %w", s, err)
		}
		return Offset{Relative: true, Distance: d}, nil
	}
	if len(fields) > 2 {
		return Offset{}, fmt.Errorf("offgrid: scroll offset %q: too many fields", s)
	}
	el, err := parseAnchor(fields[0])
	if err != nil {
		return Offset{}, fmt.Errorf("offgrid: scroll offset %q: %w", s, err)
	}
	var vp Anchor
	if len(fields) == 2 {
		vp, err = parseAnchor(fields[1])
		if err != nil {
			return Offset{}, fmt.Errorf("offgrid: scroll offset %q: %w", s, err)
		}
	}
	return Offset{Element: el, Viewport: vp}, nil
}

func parseAnchor(tok string) (Anchor, error) {
	switch strings.ToLower(tok) {
	case "top":
		return Anchor{}, nil
	case "center":
		return Anchor{Fraction: 0.5}, nil
	case "bottom":
		return Anchor{Fraction: 1}, nil
	}
	if v, ok := strings.CutSuffix(tok, "%"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Anchor{}, fmt.Errorf("bad anchor %q: %w", tok, err)
		}
		return Anchor{Fraction: f / 100}, nil
	}
	v, _ := strings.CutSuffix(tok, "px")
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return Anchor{}, fmt.Errorf("bad anchor %q: %w", tok, err)
	}
	return Anchor{Pixels: f}, nil
}

// Default offsets: active while any part of the element is on screen.
const (
	DefaultTriggerStart = "top bottom"
	DefaultTriggerEnd   = "bottom top"
)

// --- Triggers ---

// TriggerOptions configures a scroll trigger.
type TriggerOptions struct {
	// Trigger is the element whose layout position drives the trigger.
	Trigger *Element
	// Start and End are offsets; empty means the defaults.
	Start, End string

	// Scrub ties progress continuously to the scroll position. ScrubLag > 0
	// makes reported progress catch up with the scroll over roughly that
	// many seconds.
	Scrub    bool
	ScrubLag float64

	// OnEnter fires once, the first time the scroll position reaches Start.
	OnEnter func()
	// OnLeave fires when scrolling forward past End.
	OnLeave func()
	// OnLeaveBack fires when scrolling backward past Start.
	OnLeaveBack func()
	// OnProgress receives the normalized 0-1 progress whenever it changes.
	OnProgress func(progress float64)
}

// Trigger is a registered scroll trigger. Obtain one from
// ScrollObserver.Observe and release it with ScrollObserver.Unobserve.
type Trigger struct {
	opts       TriggerOptions
	start, end Offset

	registered bool
	primed     bool
	entered    bool
	inside     bool
	before     bool
	shown      bool
	progress   float64 // raw
	displayed  float64 // after scrub lag
	reported   float64
}

// Element returns the trigger element.
func (t *Trigger) Element() *Element { return t.opts.Trigger }

// Progress returns the last reported progress.
func (t *Trigger) Progress() float64 { return t.reported }

// Entered reports whether OnEnter has fired.
func (t *Trigger) Entered() bool { return t.entered }

// Active reports whether the trigger is still registered.
func (t *Trigger) Active() bool { return t.registered }

// Range returns the scroll positions at which the trigger starts and ends
// for the given viewport height.
func (t *Trigger) Range(viewportH float64) (start, end float64) {
	r := t.opts.Trigger.PageBounds()
	start = r.Y + t.start.Element.resolve(r.Height) - t.start.Viewport.resolve(viewportH)
	if t.end.Relative {
		end = start + t.end.Distance.resolve(viewportH)
	} else {
		end = r.Y + t.end.Element.resolve(r.Height) - t.end.Viewport.resolve(viewportH)
	}
	return start, end
}

// ScrollObserver watches trigger elements against the viewport and emits
// progress and crossing callbacks. It is advanced by its Document once per
// frame, after the scroll position settles.
type ScrollObserver struct {
	doc      *Document
	triggers []*Trigger
	log      *zap.Logger
}

func newScrollObserver(doc *Document) *ScrollObserver {
	return &ScrollObserver{doc: doc, log: zap.NewNop()}
}

// Observe registers a trigger. It returns an error only for a nil element
// or malformed offsets.
func (o *ScrollObserver) Observe(opts TriggerOptions) (*Trigger, error) {
	if opts.Trigger == nil {
		return nil, fmt.Errorf("offgrid: observe: nil trigger element")
	}
	if opts.Start == "" {
		opts.Start = DefaultTriggerStart
	}
	if opts.End == "" {
		opts.End = DefaultTriggerEnd
	}
	start, err := ParseOffset(opts.Start)
	if err != nil {
		return nil, err
	}
	if start.Relative {
		return nil, fmt.Errorf("offgrid: observe: start offset %q cannot be relative", opts.Start)
	}
	end, err := ParseOffset(opts.End)
	if err != nil {
		return nil, err
	}
	t := &Trigger{opts: opts, start: start, end: end, registered: true}
	o.triggers = append(o.triggers, t)
	return t, nil
}

// Unobserve removes a trigger. Safe to call repeatedly and with nil.
func (o *ScrollObserver) Unobserve(t *Trigger) {
	if t == nil || !t.registered {
		return
	}
	t.registered = false
	for i, x := range o.triggers {
		if x == t {
			copy(o.triggers[i:], o.triggers[i+1:])
			o.triggers[len(o.triggers)-1] = nil
			o.triggers = o.triggers[:len(o.triggers)-1]
			return
		}
	}
}

// ActiveCount returns the number of registered triggers.
func (o *ScrollObserver) ActiveCount() int { return len(o.triggers) }

// ActiveFor returns the number of registered triggers on el.
func (o *ScrollObserver) ActiveFor(el *Element) int {
	n := 0
	for _, t := range o.triggers {
		if t.opts.Trigger == el {
			n++
		}
	}
	return n
}

// update evaluates every trigger against the scroll position. Callbacks may
// register or remove triggers; new triggers are evaluated next frame.
func (o *ScrollObserver) update(scrollY, viewportH, dt float64) {
	snapshot := append([]*Trigger(nil), o.triggers...)
	for _, t := range snapshot {
		if !t.registered {
			continue
		}
		el := t.opts.Trigger
		if el.IsDisposed() || (o.doc != nil && !o.doc.Contains(el)) {
			o.log.Debug("dropping trigger on detached element", zap.String("tag", el.Tag), zap.String("id", el.ID))
			o.Unobserve(t)
			continue
		}
		t.evaluate(scrollY, viewportH, dt)
	}
}

func (t *Trigger) evaluate(scrollY, viewportH, dt float64) {
	start, end := t.Range(viewportH)
	if end <= start {
		end = start + 1
	}
	t.progress = clamp01((scrollY - start) / (end - start))

	before := scrollY < start
	inside := !before && scrollY <= end
	if !t.primed {
		t.primed = true
		if !before {
			t.fireEnter()
		}
	} else {
		switch {
		case t.before && !before:
			t.fireEnter()
		case !t.before && before:
			if t.opts.OnLeaveBack != nil {
				t.opts.OnLeaveBack()
			}
		}
		if t.inside && !inside && !before && t.opts.OnLeave != nil {
			t.opts.OnLeave()
		}
	}
	t.before, t.inside = before, inside

	if !t.registered {
		return
	}
	first := !t.shown
	t.displayed = t.nextDisplayed(dt, first)
	t.shown = true
	changed := first || t.displayed != t.reported
	t.reported = t.displayed
	if changed && t.opts.OnProgress != nil {
		t.opts.OnProgress(t.displayed)
	}
}

func (t *Trigger) fireEnter() {
	if t.entered {
		return
	}
	t.entered = true
	if t.opts.OnEnter != nil {
		t.opts.OnEnter()
	}
}

// nextDisplayed eases the displayed progress toward the raw progress.
func (t *Trigger) nextDisplayed(dt float64, first bool) float64 {
	if !t.opts.Scrub || t.opts.ScrubLag <= 0 || first {
		return t.progress
	}
	diff := t.progress - t.displayed
	if math.Abs(diff) < 1e-4 {
		return t.progress
	}
	// Reaches ~95% of the gap after ScrubLag seconds.
	k := 1 - math.Exp(-3*dt/t.opts.ScrubLag)
	return t.displayed + diff*k
}
