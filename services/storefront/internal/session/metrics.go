package session

import "github.com/prometheus/client_golang/prometheus"

var (
	persistenceWriteErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_persistence_write_errors_total",
			Help: "Failed writes of visitor collections; in-memory state stays authoritative",
		},
		[]string{"key"},
	)

	cartMutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_session_mutations_total",
			Help: "Applied session mutations by operation",
		},
		[]string{"operation"},
	)

	activeSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "storefront_active_sessions",
			Help: "Visitor engines currently held in memory",
		},
	)
)

func init() {
	prometheus.MustRegister(persistenceWriteErrors, cartMutations, activeSessions)
}
