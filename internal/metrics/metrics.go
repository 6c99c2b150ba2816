package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spacehub-dev/operating-schedule/backend/internal/domain"
)

const namespace = "operating_schedule"

var (
	once sync.Once

	verdicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verdicts_total",
			Help:      "Count of availability verdicts by deciding layer and outcome.",
		},
		[]string{"basis", "open"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests by route pattern and status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "closure_cache_lookups_total",
			Help:      "Count of closure cache lookups by result.",
		},
		[]string{"result"},
	)

	eventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Count of change events handed to the broker by routing key and outcome.",
		},
		[]string{"routing_key", "outcome"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(verdicts, httpDuration, cacheLookups, eventsPublished)
	})
}

func ObserveHTTP(method, route string, status int, d time.Duration) {
	httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

func IncCacheHit() {
	cacheLookups.WithLabelValues("hit").Inc()
}

func IncCacheMiss() {
	cacheLookups.WithLabelValues("miss").Inc()
}

func IncEventPublished(routingKey string, ok bool) {
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	eventsPublished.WithLabelValues(routingKey, outcome).Inc()
}

// VerdictObserver counts resolver verdicts.
type VerdictObserver struct{}

func (VerdictObserver) ObserveVerdict(v domain.Verdict) {
	verdicts.WithLabelValues(string(v.Basis), strconv.FormatBool(v.Open)).Inc()
}
