package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the synchronization engine.
type Metrics struct {
	// --- Scan cycles ---
	ScansTotal   prometheus.Counter
	ScanErrors   prometheus.Counter
	ScanDuration prometheus.Histogram

	// --- Cache ---
	AccountsTracked     prometheus.Gauge
	AccountsEvicted     prometheus.Counter
	StaleUpdatesDropped prometheus.Counter
	DecodeErrors        prometheus.Counter

	// --- Push path ---
	NotificationsReceived *prometheus.CounterVec
	UpdatesApplied        prometheus.Counter

	// --- Snapshot building ---
	BookBuilds prometheus.Counter
	BookOrders prometheus.Histogram
}

// NewMetrics creates and registers all metrics against the given registerer.
// Tests pass a fresh prometheus.NewRegistry so parallel test instances do not
// collide on registration.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	scanBuckets := []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0}

	return &Metrics{
		ScansTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "mirror_scans_total",
			Help: "Full-scan refresh cycles completed",
		}),
		ScanErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "mirror_scan_errors_total",
			Help: "Refresh cycles aborted by transport failure",
		}),
		ScanDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "mirror_scan_duration_seconds",
			Help:    "Full-scan refresh cycle duration",
			Buckets: scanBuckets,
		}),

		AccountsTracked: factory.NewGauge(prometheus.GaugeOpts{
			Name: "mirror_accounts_tracked",
			Help: "Accounts currently held in the state cache",
		}),
		AccountsEvicted: factory.NewCounter(prometheus.CounterOpts{
			Name: "mirror_accounts_evicted_total",
			Help: "Cache entries evicted (absent from scan or no open orders)",
		}),
		StaleUpdatesDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "mirror_stale_updates_dropped_total",
			Help: "Updates ignored because the cached slot was newer or equal",
		}),
		DecodeErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "mirror_decode_errors_total",
			Help: "Account payloads that failed to decode",
		}),

		NotificationsReceived: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mirror_notifications_received_total",
			Help: "Change notifications received on the push path",
		}, []string{"kind"}),
		UpdatesApplied: factory.NewCounter(prometheus.CounterOpts{
			Name: "mirror_updates_applied_total",
			Help: "Incremental account updates applied to the cache",
		}),

		BookBuilds: factory.NewCounter(prometheus.CounterOpts{
			Name: "mirror_book_builds_total",
			Help: "Order book snapshots built from the cache",
		}),
		BookOrders: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "mirror_book_orders",
			Help:    "Resting orders per built book",
			Buckets: []float64{0, 10, 50, 100, 500, 1000, 5000, 10000},
		}),
	}
}
