package offgrid

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// SmokeStep is a single action in a smoke script.
type SmokeStep struct {
	Action string  `yaml:"action"`
	Label  string  `yaml:"label,omitempty"`
	X      float64 `yaml:"x,omitempty"`
	Y      float64 `yaml:"y,omitempty"`
	DY     float64 `yaml:"dy,omitempty"`
	Href   string  `yaml:"href,omitempty"`
	Frames int     `yaml:"frames,omitempty"`
}

// SmokeScript is the top-level structure of a smoke script file.
type SmokeScript struct {
	Name  string      `yaml:"name,omitempty"`
	Steps []SmokeStep `yaml:"steps"`
}

var smokeActions = map[string]bool{
	"move": true, "click": true, "scroll": true, "wait": true,
	"screenshot": true, "navigate": true,
}

// SmokeRunner sequences injected input and screenshots across frames for
// visual smoke checks. Attach it with Document.SetSmokeRunner.
type SmokeRunner struct {
	script    SmokeScript
	cursor    int
	waitCount int
	done      bool
	x, y      float64
}

// LoadSmokeScript parses a YAML (or JSON) smoke script:
//
//	name: hero
//	steps:
//	  - {action: move, x: 400, y: 300, frames: 20}
//	  - {action: scroll, dy: 900}
//	  - {action: wait, frames: 60}
//	  - {action: screenshot, label: bento}
//
// move glides the pointer over frames (default 1); click presses and
// releases at x/y, or at the pointer when both are zero; navigate follows an
// in-page href.
func LoadSmokeScript(data []byte) (*SmokeRunner, error) {
	var script SmokeScript
	if err := yaml.Unmarshal(data, &script); err != nil {
		return nil, fmt.Errorf("parse smoke script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("parse smoke script: no steps")
	}
	for i, st := range script.Steps {
		if !smokeActions[st.Action] {
			return nil, fmt.Errorf("parse smoke script: step %d: unknown action %q", i, st.Action)
		}
		if st.Frames < 0 {
			return nil, fmt.Errorf("parse smoke script: step %d: negative frames", i)
		}
	}
	return &SmokeRunner{script: script}, nil
}

// Name returns the script name.
func (r *SmokeRunner) Name() string { return r.script.Name }

// Steps returns the parsed steps. The returned slice MUST NOT be mutated.
func (r *SmokeRunner) Steps() []SmokeStep { return r.script.Steps }

// Done reports whether every step has executed and all injected input has
// been consumed.
func (r *SmokeRunner) Done() bool { return r.done }

// SetSmokeRunner attaches a runner. Its step runs at the start of every
// Advance, before input processing.
func (d *Document) SetSmokeRunner(r *SmokeRunner) {
	d.smoke = r
}

// step advances the runner by one frame.
func (r *SmokeRunner) step(d *Document) {
	if r.done {
		return
	}
	// Let pending injections drain before the next action.
	if len(d.injectQueue) > 0 {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.script.Steps) {
		r.done = true
		return
	}

	st := r.script.Steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "move":
		d.InjectGlide(r.x, r.y, st.X, st.Y, max(st.Frames, 1))
		r.x, r.y = st.X, st.Y
	case "click":
		if st.X != 0 || st.Y != 0 {
			r.x, r.y = st.X, st.Y
		}
		d.InjectClick(r.x, r.y)
	case "scroll":
		d.InjectScroll(st.DY)
	case "navigate":
		d.Navigate(st.Href)
	case "screenshot":
		d.Screenshot(st.Label)
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	}
}
