package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	ResultOK        = "ok"
	ResultError     = "error"
	ResultStale     = "stale"
	ResultDiscarded = "discarded"
)

// Metrics holds the collectors of one process. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry  *prometheus.Registry
	fetches   *prometheus.CounterVec
	mutations *prometheus.CounterVec
	newItems  *prometheus.CounterVec
	unread    *prometheus.GaugeVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "notifysync",
			Name:      "fetches_total",
			Help:      "Snapshot fetches by source and result.",
		}, []string{"source", "result"}),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "notifysync",
			Name:      "mutations_total",
			Help:      "Remote mutations by source, operation and result.",
		}, []string{"source", "op", "result"}),
		newItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "notifysync",
			Name:      "new_notifications_total",
			Help:      "Notifications observed unread for the first time.",
		}, []string{"source"}),
		unread: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "notifysync",
			Name:      "unread_notifications",
			Help:      "Unread count currently published per source.",
		}, []string{"source"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.fetches,
		m.mutations,
		m.newItems,
		m.unread,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ObserveFetch(source, result string) {
	if m == nil {
		return
	}
	m.fetches.WithLabelValues(source, result).Inc()
}

func (m *Metrics) ObserveMutation(source, op, result string) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(source, op, result).Inc()
}

func (m *Metrics) AddNewItems(source string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.newItems.WithLabelValues(source).Add(float64(n))
}

func (m *Metrics) SetUnread(source string, n int) {
	if m == nil {
		return
	}
	m.unread.WithLabelValues(source).Set(float64(n))
}
