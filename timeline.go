package offgrid

import "github.com/tanema/gween/ease"

type timelineStep struct {
	props    Props
	duration float64
	ease     ease.TweenFunc
}

// Timeline plays a fixed sequence of To tweens on one element, each step
// starting where the previous one ended.
type Timeline struct {
	engine *TweenEngine
	target *Element
	steps  []timelineStep

	current *Tween
	index   int
	playing bool

	// OnComplete fires after the last step. It does not fire on Cancel.
	OnComplete func()
}

// NewTimeline creates an empty timeline for target.
func (e *TweenEngine) NewTimeline(target *Element) *Timeline {
	return &Timeline{engine: e, target: target}
}

// To appends a step and returns the timeline for chaining.
func (tl *Timeline) To(props Props, duration float64, fn ease.TweenFunc) *Timeline {
	tl.steps = append(tl.steps, timelineStep{props: props, duration: duration, ease: fn})
	return tl
}

// Len returns the number of steps.
func (tl *Timeline) Len() int { return len(tl.steps) }

// Play starts the sequence from the first step. Playing an active timeline
// restarts it.
func (tl *Timeline) Play() {
	tl.Cancel()
	if len(tl.steps) == 0 {
		return
	}
	tl.playing = true
	tl.index = 0
	tl.startStep()
}

func (tl *Timeline) startStep() {
	step := tl.steps[tl.index]
	tl.current = tl.engine.To(tl.target, step.props, TweenOptions{
		Duration:   step.duration,
		Ease:       step.ease,
		OnComplete: tl.next,
	})
	if !tl.current.Active() {
		// Target is gone; the rest of the sequence is skipped.
		tl.playing = false
		tl.current = nil
	}
}

func (tl *Timeline) next() {
	tl.index++
	if tl.index >= len(tl.steps) {
		tl.playing = false
		tl.current = nil
		if tl.OnComplete != nil {
			tl.OnComplete()
		}
		return
	}
	tl.startStep()
}

// Active reports whether the timeline is mid-sequence.
func (tl *Timeline) Active() bool {
	if tl.playing && tl.current != nil && !tl.current.Active() {
		// The step ended without completing: its target was removed.
		tl.playing = false
		tl.current = nil
	}
	return tl.playing
}

// Cancel stops the sequence, freezing the target at its current values.
func (tl *Timeline) Cancel() {
	if tl.current != nil {
		tl.current.Cancel()
		tl.current = nil
	}
	tl.playing = false
}
