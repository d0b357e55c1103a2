// Package observability exposes tracker activity as Prometheus metrics.
package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmdmdm-nz/connmon/internal/connectivity"
)

// TrackerCollector implements connectivity.Recorder on top of Prometheus
// metrics. A nil collector is valid and records nothing.
type TrackerCollector struct {
	gatherer prometheus.Gatherer

	Connected      prometheus.Gauge
	Classification *prometheus.GaugeVec
	Transitions    *prometheus.CounterVec
	Notifications  *prometheus.CounterVec
	Suppressed     *prometheus.CounterVec
	Listeners      prometheus.Gauge
}

var _ connectivity.Recorder = (*TrackerCollector)(nil)

// NewTrackerCollector registers the tracker metrics against reg, defaulting
// to the global Prometheus registry when nil.
func NewTrackerCollector(reg prometheus.Registerer) (*TrackerCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	connected, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "connmon_connected",
		Help: "1 when the active network is connected, 0 otherwise.",
	}), "connmon_connected")
	if err != nil {
		return nil, err
	}

	classification, err := registerGaugeVec(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "connmon_classification",
		Help: "Current connectivity classification, one-hot by label.",
	}, []string{"classification"}), "connmon_classification")
	if err != nil {
		return nil, err
	}

	transitions, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "connmon_transitions_total",
		Help: "Classification changes, labeled by previous and new classification.",
	}, []string{"from", "to"}), "connmon_transitions_total")
	if err != nil {
		return nil, err
	}

	notifications, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "connmon_notifications_total",
		Help: "Listener notification rounds fired, labeled by direction.",
	}, []string{"direction"}), "connmon_notifications_total")
	if err != nil {
		return nil, err
	}

	suppressed, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "connmon_notifications_suppressed_total",
		Help: "Listener notification rounds dropped by the debounce window, labeled by direction.",
	}, []string{"direction"}), "connmon_notifications_suppressed_total")
	if err != nil {
		return nil, err
	}

	listeners, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "connmon_listeners",
		Help: "Registered connectivity listeners.",
	}), "connmon_listeners")
	if err != nil {
		return nil, err
	}

	c := &TrackerCollector{
		gatherer:       gatherer,
		Connected:      connected,
		Classification: classification,
		Transitions:    transitions,
		Notifications:  notifications,
		Suppressed:     suppressed,
		Listeners:      listeners,
	}
	c.setClassification(connectivity.Uninitialized)
	return c, nil
}

func (c *TrackerCollector) ObserveClassification(from, to connectivity.Classification) {
	if c == nil {
		return
	}
	if c.Transitions != nil {
		c.Transitions.WithLabelValues(from.String(), to.String()).Inc()
	}
	c.setClassification(to)
}

func (c *TrackerCollector) ObserveNotification(d connectivity.Direction) {
	if c == nil || c.Notifications == nil {
		return
	}
	c.Notifications.WithLabelValues(d.String()).Inc()
}

func (c *TrackerCollector) ObserveSuppressed(d connectivity.Direction) {
	if c == nil || c.Suppressed == nil {
		return
	}
	c.Suppressed.WithLabelValues(d.String()).Inc()
}

func (c *TrackerCollector) SetListeners(n int) {
	if c == nil || c.Listeners == nil {
		return
	}
	c.Listeners.Set(float64(n))
}

func (c *TrackerCollector) setClassification(to connectivity.Classification) {
	if c.Connected != nil {
		if to.Connected() {
			c.Connected.Set(1)
		} else {
			c.Connected.Set(0)
		}
	}
	if c.Classification != nil {
		for _, value := range connectivity.Classifications() {
			v := 0.0
			if value == to {
				v = 1
			}
			c.Classification.WithLabelValues(value.String()).Set(v)
		}
	}
}

// Handler exposes a ready-to-use /metrics handler.
func (c *TrackerCollector) Handler() http.Handler {
	gatherer := prometheus.DefaultGatherer
	if c != nil && c.gatherer != nil {
		gatherer = c.gatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGaugeVec(reg prometheus.Registerer, vec *prometheus.GaugeVec, name string) (*prometheus.GaugeVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.GaugeVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
