// Package metrics exposes sequencer activity in Prometheus format.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sweeney/led-sequencer/internal/logic"
)

const namespace = "led_sequencer"

// Metrics holds the collectors fed from sequencer events.
type Metrics struct {
	registry *prometheus.Registry
	events   *prometheus.CounterVec
	state    prometheus.Gauge
	leds     prometheus.Gauge
}

// New creates Metrics registered on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Sequencer events by type.",
		}, []string{"type"}),
		state: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "state",
			Help:      "Current sequence state (0=OFF 1=ALL_ON 2=TWO_ON 3=ONE_ON).",
		}),
		leds: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "leds_lit",
			Help:      "Number of LEDs currently lit.",
		}),
	}
	m.registry.MustRegister(m.events, m.state, m.leds)

	// Pre-create every label so series exist before the first press.
	for _, t := range []logic.EventType{logic.EventStart, logic.EventStep, logic.EventComplete, logic.EventPressDropped} {
		m.events.WithLabelValues(string(t))
	}
	return m
}

// Observe records a sequencer event.
func (m *Metrics) Observe(ev logic.Event) {
	m.events.WithLabelValues(string(ev.Type)).Inc()
	if ev.Type == logic.EventPressDropped {
		return
	}
	m.state.Set(float64(ev.State))
	m.leds.Set(float64(ev.Pattern.Count()))
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics over HTTP.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
