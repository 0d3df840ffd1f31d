package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// ingestion pipeline.
type Metrics struct {
	ArticlesFetched *prometheus.CounterVec // label: source
	FetchErrors     *prometheus.CounterVec // label: source
	ArticlesUnsafe  prometheus.Counter
	ArticlesStored  prometheus.Gauge

	AlertsCreated   prometheus.Counter
	AlertsDuplicate prometheus.Counter
	ResolverTier    *prometheus.CounterVec // label: tier={exact,entity,region,context,default}

	IngestDuration prometheus.Histogram
	IngestRunning  prometheus.Gauge

	// Entity-recognition collaborator metrics.
	NERRequests *prometheus.CounterVec // labels: outcome={success,error,empty}
	NERCache    *prometheus.CounterVec // labels: result={hit,miss}
	NERDuration prometheus.Histogram

	// Optional Kafka alert fan-out.
	AlertsPublished prometheus.Counter
	PublishErrors   prometheus.Counter
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.ArticlesFetched,
		m.FetchErrors,
		m.ArticlesUnsafe,
		m.ArticlesStored,
		m.AlertsCreated,
		m.AlertsDuplicate,
		m.ResolverTier,
		m.IngestDuration,
		m.IngestRunning,
		m.NERRequests,
		m.NERCache,
		m.NERDuration,
		m.AlertsPublished,
		m.PublishErrors,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		ArticlesFetched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "news_etl",
			Name:      "articles_fetched_total",
			Help:      "Articles fetched per news source.",
		}, []string{"source"}),
		FetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "news_etl",
			Name:      "fetch_errors_total",
			Help:      "Failed fetch attempts per news source.",
		}, []string{"source"}),
		ArticlesUnsafe: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "news_etl",
			Name:      "articles_unsafe_total",
			Help:      "Articles classified unsafe by the threat scorer.",
		}),
		ArticlesStored: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "news_etl",
			Name:      "articles_stored",
			Help:      "Articles currently held in the rolling store.",
		}),
		AlertsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "news_etl",
			Name:      "alerts_created_total",
			Help:      "Alerts admitted to the alert store.",
		}),
		AlertsDuplicate: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "news_etl",
			Name:      "alerts_duplicate_total",
			Help:      "Alerts discarded because an identical description was already stored.",
		}),
		ResolverTier: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "news_etl",
			Name:      "resolver_tier_total",
			Help:      "Location resolutions by the tier that produced them.",
		}, []string{"tier"}),
		IngestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "news_etl",
			Name:      "ingest_duration_seconds",
			Help:      "Duration of a complete fetch-score-store cycle.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		IngestRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "news_etl",
			Name:      "ingest_running",
			Help:      "1 while an ingestion cycle is active, 0 otherwise.",
		}),
		NERRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "news_etl",
			Name:      "ner_requests_total",
			Help:      "Entity-recognition requests by outcome.",
		}, []string{"outcome"}),
		NERCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "news_etl",
			Name:      "ner_cache_total",
			Help:      "Entity-recognition cache lookups by result.",
		}, []string{"result"}),
		NERDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "news_etl",
			Name:      "ner_duration_seconds",
			Help:      "Entity-recognition request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		AlertsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "news_etl",
			Name:      "alerts_published_total",
			Help:      "Alerts produced to the Kafka sink topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "news_etl",
			Name:      "publish_errors_total",
			Help:      "Failed Kafka publish attempts.",
		}),
	}
}
