// Package metrics owns the Prometheus registry exposed on /metrics.
package metrics

import (
	"database/sql"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "taskflow"

// Registry holds every collector the server reports.
var Registry = prometheus.NewRegistry()

var (
	NotificationsDispatched = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "notifications",
		Name:      "dispatched_total",
		Help:      "Notifications persisted by the dispatcher, by type.",
	}, []string{"type"})

	DispatchFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "notifications",
		Name:      "dispatch_failures_total",
		Help:      "Notification intents that failed, by stage (persist, publish).",
	}, []string{"stage"})

	LiveDeliveries = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "live",
		Name:      "deliveries_total",
		Help:      "Notifications pushed onto a live connection.",
	})

	LiveDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "live",
		Name:      "dropped_total",
		Help:      "Live pushes dropped because the connection buffer was full.",
	})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		NotificationsDispatched,
		DispatchFailures,
		LiveDeliveries,
		LiveDropped,
	)
}

// RegisterLiveClients exposes the number of open live connections. count is
// called on every scrape.
func RegisterLiveClients(count func() int) error {
	return Registry.Register(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "live",
		Name:      "clients",
		Help:      "Open live notification connections.",
	}, func() float64 { return float64(count()) }))
}

// RegisterDB exposes connection pool statistics for db.
func RegisterDB(db *sql.DB, name string) error {
	return Registry.Register(collectors.NewDBStatsCollector(db, name))
}
