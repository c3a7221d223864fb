package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"bankbot/internal/corpus"
)

// Metrics holds all custom Prometheus metrics for the application
type Metrics struct {
	// Chat turns by resolved intent and the tier that matched them
	ChatTurns *prometheus.CounterVec

	// Chat turn latency histogram
	ChatTurnLatency prometheus.Histogram

	// Corpus growth from learning and admin appends
	CorpusAppends prometheus.Counter
}

var globalMetrics *Metrics

// InitMetrics initializes the Prometheus metrics. Call once at startup.
func InitMetrics(store *corpus.Store) *Metrics {
	metrics := &Metrics{
		ChatTurns: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "bankbot_chat_turns_total",
			Help: "Total number of chat turns by intent and match tier",
		}, []string{"intent", "tier"}),

		ChatTurnLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "bankbot_chat_turn_duration_seconds",
			Help:    "Chat turn processing latency in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),

		CorpusAppends: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bankbot_corpus_appends_total",
			Help: "Total number of rows appended to the corpus",
		}),
	}

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "bankbot_corpus_rows",
		Help: "Current number of corpus rows",
	}, func() float64 {
		return float64(store.Len())
	})

	globalMetrics = metrics
	return metrics
}

// GetMetrics returns the global metrics instance, nil before InitMetrics.
func GetMetrics() *Metrics {
	return globalMetrics
}
