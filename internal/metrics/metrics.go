package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	providerReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "answerpipe",
			Name:      "provider_requests_total",
			Help:      "Total provider requests by provider, model and result",
		},
		[]string{"provider", "model", "result"},
	)

	providerLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "answerpipe",
			Name:      "provider_request_duration_seconds",
			Help:      "Duration of provider requests by provider and model",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"provider", "model"},
	)

	requestsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "answerpipe",
			Name:      "requests_processed_total",
			Help:      "Pipeline requests by kind (initial, debug) and result",
		},
		[]string{"kind", "result"},
	)

	retriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "answerpipe",
			Name:      "retries_total",
			Help:      "Total number of dispatch retries",
		},
	)

	fallbackEscalations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "answerpipe",
			Name:      "fallback_escalations_total",
			Help:      "One-shot escalations to the text-only model after a 429",
		},
	)

	parsedSolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "answerpipe",
			Name:      "parsed_solutions_total",
			Help:      "Parsed solutions by detected question type",
		},
		[]string{"type"},
	)

	ocrExtractions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "answerpipe",
			Name:      "ocr_extractions_total",
			Help:      "OCR extraction runs by result (ok, empty)",
		},
		[]string{"result"},
	)
)

// Init registers collectors.
func Init() {
	prometheus.MustRegister(providerReqs, providerLatency, requestsProcessed, retriesTotal, fallbackEscalations, parsedSolutions, ocrExtractions)
}

// Handler returns the http.Handler for /metrics
func Handler() http.Handler { return promhttp.Handler() }

func ObserveProvider(provider, model, result string, dur time.Duration) {
	providerReqs.WithLabelValues(provider, model, result).Inc()
	providerLatency.WithLabelValues(provider, model).Observe(dur.Seconds())
}

func IncProcessed(kind, result string) { requestsProcessed.WithLabelValues(kind, result).Inc() }
func IncRetry()                        { retriesTotal.Inc() }
func IncFallback()                     { fallbackEscalations.Inc() }
func IncParsed(questionType string)    { parsedSolutions.WithLabelValues(questionType).Inc() }
func IncOCR(result string)             { ocrExtractions.WithLabelValues(result).Inc() }
