package offgrid

import (
	"time"

	"go.uber.org/zap"
)

// debugLogInterval throttles frame stat logging.
const debugLogInterval = time.Second

// debugLog logs frame counters at debug level, at most once per interval.
func (d *Document) debugLog() {
	now := time.Now()
	if now.Sub(d.lastDebug) < debugLogInterval {
		return
	}
	d.lastDebug = now
	s := d.Stats()
	d.log.Debug("frame",
		zap.Uint64("frame", s.Frame),
		zap.Int("tweens", s.Tweens),
		zap.Int("triggers", s.Triggers),
		zap.Int("listeners", s.Listeners),
		zap.Int("elements", s.Elements),
		zap.Int("commands", s.Commands),
		zap.Int("drawCalls", countDrawCalls(d.commands)),
		zap.Duration("update", s.UpdateTime),
		zap.Duration("draw", s.DrawTime),
		zap.Float64("scrollY", d.scrollY),
		zap.Float64("viewY", d.viewY),
	)
}

// debugMaxTreeDepth is the depth beyond which CheckTree warns.
const debugMaxTreeDepth = 32

// CheckTree logs a warning for every element nested deeper than a sane
// page depth and for duplicate IDs, both of which usually indicate a
// section was mounted twice.
func (d *Document) CheckTree() (warnings int) {
	seen := make(map[string]bool)
	var walk func(e *Element, depth int)
	walk = func(e *Element, depth int) {
		if depth > debugMaxTreeDepth {
			d.log.Warn("element tree too deep", zap.String("tag", e.Tag), zap.Int("depth", depth))
			warnings++
		}
		if e.ID != "" {
			if seen[e.ID] {
				d.log.Warn("duplicate element id", zap.String("id", e.ID))
				warnings++
			}
			seen[e.ID] = true
		}
		for _, c := range e.children {
			walk(c, depth+1)
		}
	}
	walk(d.body, 1)
	return warnings
}
