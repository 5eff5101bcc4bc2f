package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	CitaTransitions  *prometheus.CounterVec
	SlotConflicts    prometheus.Counter
	UsuariosCreated  prometheus.Counter
	ClinicasCreated  prometheus.Counter
	NotificationFail prometheus.Counter

	gatherer prometheus.Gatherer
}

// NewCollector registers every metric on reg.
func NewCollector(namespace string, reg *prometheus.Registry) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, path, and status code.",
		}, []string{"method", "path", "status"}),

		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency distribution.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"method", "path"}),

		CitaTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "citas",
			Name:      "transitions_total",
			Help:      "Cita lifecycle transitions by target state.",
		}, []string{"estado"}),

		SlotConflicts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "citas",
			Name:      "slot_conflicts_total",
			Help:      "Bookings or reschedules rejected because the slot was taken.",
		}),

		UsuariosCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cuentas",
			Name:      "usuarios_created_total",
			Help:      "Accounts created by registration.",
		}),

		ClinicasCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cuentas",
			Name:      "clinicas_created_total",
			Help:      "Clinics materialized when the CLINICA role is granted.",
		}),

		NotificationFail: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notificaciones",
			Name:      "failures_total",
			Help:      "Confirmation e-mails that could not be sent.",
		}),

		gatherer: reg,
	}
}

// Handler serves the metrics registered on this collector.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}
