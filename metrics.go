package tickemit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects emitter activity.
// A nil *Metrics records nothing.
type Metrics struct {
	ticks    prometheus.Counter
	skips    prometheus.Counter
	passes   prometheus.Counter
	handlers *prometheus.CounterVec
}

// NewMetrics creates the emitter collectors and registers them with reg.
// If reg == nil then prometheus.DefaultRegisterer is used.
// Panics if the collectors are already registered with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		ticks: f.NewCounter(prometheus.CounterOpts{
			Namespace: "tickemit",
			Name:      "ticks_total",
			Help:      "Number of ticks that advanced the virtual clock",
		}),
		skips: f.NewCounter(prometheus.CounterOpts{
			Namespace: "tickemit",
			Name:      "skipped_ticks_total",
			Help:      "Number of ticks ignored while paused",
		}),
		passes: f.NewCounter(prometheus.CounterOpts{
			Namespace: "tickemit",
			Name:      "dispatch_passes_total",
			Help:      "Number of dispatch passes",
		}),
		handlers: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tickemit",
			Name:      "handler_calls_total",
			Help:      "Number of handler invocations by registration kind",
		}, []string{"kind"}),
	}
}

func (m *Metrics) tick() {
	if m != nil {
		m.ticks.Inc()
	}
}

func (m *Metrics) skipped() {
	if m != nil {
		m.skips.Inc()
	}
}

func (m *Metrics) dispatch() {
	if m != nil {
		m.passes.Inc()
	}
}

func (m *Metrics) call(k Kind) {
	if m != nil {
		m.handlers.WithLabelValues(k.String()).Inc()
	}
}
