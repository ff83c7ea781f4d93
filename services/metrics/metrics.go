package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/neurolearn/neuro/core/sentiment"
)

var (
	// Capture cycles by outcome
	CyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "neuro",
			Subsystem: "capture",
			Name:      "cycles_total",
			Help:      "Total number of settled capture cycles",
		},
		[]string{"outcome"},
	)

	// Classification request duration
	ClassifyDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "neuro",
			Subsystem: "capture",
			Name:      "classify_duration_seconds",
			Help:      "Classification request duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
	)

	// Camera acquisition failures
	DeviceFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "neuro",
			Subsystem: "capture",
			Name:      "device_failures_total",
			Help:      "Total number of failed camera acquisitions",
		},
	)

	// Decks served by source (gemini | fallback)
	DecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "neuro",
			Subsystem: "flashcards",
			Name:      "decks_total",
			Help:      "Total number of decks served",
		},
		[]string{"source", "sentiment"},
	)
)

// Recorder feeds the capture loop outcomes to Prometheus.
type Recorder struct{}

var _ sentiment.Recorder = Recorder{}

func (Recorder) CycleSettled(outcome sentiment.Outcome, classifyDuration time.Duration) {
	CyclesTotal.WithLabelValues(string(outcome)).Inc()
	if classifyDuration > 0 {
		ClassifyDuration.Observe(classifyDuration.Seconds())
	}
}

func (Recorder) DeviceFailed() {
	DeviceFailuresTotal.Inc()
}

func DeckServed(source, bucket string) {
	DecksTotal.WithLabelValues(source, bucket).Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
