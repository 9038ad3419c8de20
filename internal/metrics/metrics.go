package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the server's Prometheus collectors. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	actionsApplied    *prometheus.CounterVec
	actionsRejected   *prometheus.CounterVec
	handsCompleted    prometheus.Counter
	roomsAborted      prometheus.Counter
	activeRooms       prometheus.Gauge
	droppedDeliveries *prometheus.CounterVec
}

// New creates a Metrics registered on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		actionsApplied: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tarot_actions_applied_total",
			Help: "Total number of actions accepted by the engine",
		}, []string{"type"}),
		actionsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tarot_actions_rejected_total",
			Help: "Total number of actions rejected by the engine",
		}, []string{"type", "code"}),
		handsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "tarot_hands_completed_total",
			Help: "Total number of hands played to completion",
		}),
		roomsAborted: factory.NewCounter(prometheus.CounterOpts{
			Name: "tarot_rooms_aborted_total",
			Help: "Total number of rooms stopped by an engine invariant violation",
		}),
		activeRooms: factory.NewGauge(prometheus.GaugeOpts{
			Name: "tarot_active_rooms",
			Help: "Number of rooms with a running actor",
		}),
		droppedDeliveries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tarot_deliveries_dropped_total",
			Help: "Total number of deliveries dropped for slow subscribers",
		}, []string{"transport"}),
	}
}

func (m *Metrics) ActionApplied(actionType string) {
	if m == nil {
		return
	}
	m.actionsApplied.WithLabelValues(actionType).Inc()
}

func (m *Metrics) ActionRejected(actionType, code string) {
	if m == nil {
		return
	}
	m.actionsRejected.WithLabelValues(actionType, code).Inc()
}

func (m *Metrics) HandCompleted() {
	if m == nil {
		return
	}
	m.handsCompleted.Inc()
}

func (m *Metrics) RoomAborted() {
	if m == nil {
		return
	}
	m.roomsAborted.Inc()
}

func (m *Metrics) SetActiveRooms(count int) {
	if m == nil {
		return
	}
	m.activeRooms.Set(float64(count))
}

func (m *Metrics) DeliveryDropped(transport string) {
	if m == nil {
		return
	}
	m.droppedDeliveries.WithLabelValues(transport).Inc()
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
