package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	entryChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "salonsked",
			Name:      "entry_changes_total",
			Help:      "Count of schedule entries changed by operation and kind.",
		},
		[]string{"op", "kind"},
	)

	storeErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "salonsked",
			Name:      "store_errors_total",
			Help:      "Count of failed record store operations.",
		},
		[]string{"op"},
	)

	malformedEntries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "salonsked",
			Name:      "malformed_entries_total",
			Help:      "Count of entries skipped because of unusable time fields.",
		},
		[]string{"stage"},
	)

	coverageRejections = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "salonsked",
			Name:      "coverage_rejections_total",
			Help:      "Count of bookings rejected because the slot was already covered.",
		},
	)

	slotGeneration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "salonsked",
			Name:      "slot_generation_seconds",
			Help:      "Time to build a day view.",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1},
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "salonsked",
			Name:      "http_requests_total",
			Help:      "Count of API requests by endpoint.",
		},
		[]string{"endpoint"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(entryChanges, storeErrors, malformedEntries,
			coverageRejections, slotGeneration, httpRequests)
	})
}

func IncEntryChange(op, kind string) {
	entryChanges.WithLabelValues(op, kind).Inc()
}

func IncStoreError(op string) {
	storeErrors.WithLabelValues(op).Inc()
}

func IncMalformedEntry(stage string) {
	malformedEntries.WithLabelValues(stage).Inc()
}

func IncCoverageRejection() {
	coverageRejections.Inc()
}

func ObserveSlotGeneration(seconds float64) {
	slotGeneration.Observe(seconds)
}

func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}
