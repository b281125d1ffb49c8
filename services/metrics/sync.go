package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/trezcool/nabha/offline"
)

const namespace = "nabha"

// SyncMetrics exports the offline coordinator's activity.
type SyncMetrics struct {
	registry *prometheus.Registry

	saves    *prometheus.CounterVec
	replayed *prometheus.CounterVec
	drains   *prometheus.CounterVec
	online   prometheus.Gauge
}

var _ offline.Metrics = (*SyncMetrics)(nil)

func NewSyncMetrics() *SyncMetrics {
	m := &SyncMetrics{
		registry: prometheus.NewRegistry(),
		saves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "saves_total",
			Help:      "Writes handled by the coordinator, by entry type and delivery.",
		}, []string{"type", "delivery"}),
		replayed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "replayed_total",
			Help:      "Queued entries delivered during drains, by entry type.",
		}, []string{"type"}),
		drains: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "drains_total",
			Help:      "Finished drains, by result.",
		}, []string{"result"}),
		online: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "online",
			Help:      "1 while the host reports the API reachable.",
		}),
	}
	m.registry.MustRegister(m.saves, m.replayed, m.drains, m.online,
		collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return m
}

func (m *SyncMetrics) Saved(typ offline.EntryType, d offline.Delivery) {
	m.saves.WithLabelValues(string(typ), d.String()).Inc()
}

func (m *SyncMetrics) Replayed(typ offline.EntryType) {
	m.replayed.WithLabelValues(string(typ)).Inc()
}

func (m *SyncMetrics) DrainFinished(_ int, err error) {
	result := "ok"
	if err != nil {
		result = "aborted"
	}
	m.drains.WithLabelValues(result).Inc()
}

// SetOnline mirrors the monitor state.
func (m *SyncMetrics) SetOnline(online bool) {
	if online {
		m.online.Set(1)
	} else {
		m.online.Set(0)
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *SyncMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
