// Package debugsrv exposes frame counters over HTTP for watching a running
// page: Prometheus metrics on /metrics and a liveness check on /healthz.
package debugsrv

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/phanxgames/offgrid"
)

const namespace = "offgrid"

// Metrics mirrors offgrid.FrameStats into Prometheus collectors. Observe is
// called from the frame loop; scrapes happen on the HTTP goroutines.
type Metrics struct {
	frames     prometheus.Counter
	tweens     prometheus.Gauge
	triggers   prometheus.Gauge
	listeners  prometheus.Gauge
	elements   prometheus.Gauge
	commands   prometheus.Gauge
	updateTime prometheus.Histogram
	drawTime   prometheus.Histogram
	reloads    prometheus.Counter

	lastFrame atomic.Uint64
	lastSeen  atomic.Int64 // unix nanos
}

// NewMetrics registers the collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	frameBuckets := []float64{.0005, .001, .002, .004, .008, .016, .033, .066}
	return &Metrics{
		frames: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_total",
			Help:      "Frames advanced.",
		}),
		tweens: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_tweens",
			Help:      "Tweens waiting or running.",
		}),
		triggers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_triggers",
			Help:      "Registered scroll triggers.",
		}),
		listeners: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "event_listeners",
			Help:      "Registered pointer and scroll listeners.",
		}),
		elements: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "elements",
			Help:      "Elements in the page tree.",
		}),
		commands: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "render_commands",
			Help:      "Render commands emitted by the last draw.",
		}),
		updateTime: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "update_seconds",
			Help:      "Time spent in Advance.",
			Buckets:   frameBuckets,
		}),
		drawTime: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "draw_seconds",
			Help:      "Time spent in Draw.",
			Buckets:   frameBuckets,
		}),
		reloads: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "config_reloads_total",
			Help:      "Effect tuning reloads applied.",
		}),
	}
}

// Observe records one frame's counters.
func (m *Metrics) Observe(s offgrid.FrameStats) {
	m.frames.Inc()
	m.tweens.Set(float64(s.Tweens))
	m.triggers.Set(float64(s.Triggers))
	m.listeners.Set(float64(s.Listeners))
	m.elements.Set(float64(s.Elements))
	m.commands.Set(float64(s.Commands))
	m.updateTime.Observe(s.UpdateTime.Seconds())
	if s.DrawTime > 0 {
		m.drawTime.Observe(s.DrawTime.Seconds())
	}
	m.lastFrame.Store(s.Frame)
	m.lastSeen.Store(time.Now().UnixNano())
}

// Reloaded counts an applied config reload.
func (m *Metrics) Reloaded() { m.reloads.Inc() }

// LastFrame returns the last observed frame number and when it was seen.
// The time is zero before the first Observe.
func (m *Metrics) LastFrame() (uint64, time.Time) {
	ns := m.lastSeen.Load()
	if ns == 0 {
		return 0, time.Time{}
	}
	return m.lastFrame.Load(), time.Unix(0, ns)
}
