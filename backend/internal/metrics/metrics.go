package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	FeedRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chirp_feed_requests_total",
		Help: "Feed queries by mode",
	}, []string{"mode"})
	LedgerOperations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chirp_ledger_operations_total",
		Help: "Follow/like ledger calls by operation and whether state changed",
	}, []string{"operation", "changed"})
	NotificationsCreated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chirp_notifications_created_total",
		Help: "Notifications written by kind",
	}, []string{"kind"})
	FanOutFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chirp_fanout_failures_total",
		Help: "Notification fan-out failures by kind",
	}, []string{"kind"})
	TrendingCacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chirp_trending_cache_lookups_total",
		Help: "Trending cache lookups by result",
	}, []string{"result"})
	StoreDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "chirp_store_duration_seconds",
		Help:    "Graph store call duration",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
)

func init() {
	prometheus.MustRegister(FeedRequests, LedgerOperations, NotificationsCreated,
		FanOutFailures, TrendingCacheLookups, StoreDuration)
}

// Handler exposes the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}

// IncLedger records a ledger call
func IncLedger(operation string, changed bool) {
	label := "false"
	if changed {
		label = "true"
	}
	LedgerOperations.WithLabelValues(operation, label).Inc()
}

// AddNotifications records n created notifications of a kind
func AddNotifications(kind string, n int) {
	if n > 0 {
		NotificationsCreated.WithLabelValues(kind).Add(float64(n))
	}
}

// IncFanOutFailure records a failed fan-out
func IncFanOutFailure(kind string) { FanOutFailures.WithLabelValues(kind).Inc() }
