// Package metrics exposes Prometheus counters and histograms for the
// HTTP layer and the summarization pipeline.
//
// Every method is safe to call on a nil *Metrics, so tests and tools can
// skip instrumentation entirely.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Upload outcomes recorded by RecordUpload.
const (
	OutcomeSummarized       = "summarized"
	OutcomeInsufficientText = "insufficient_text"
	OutcomeSummaryFailed    = "summary_failed"
	OutcomeExtractionFailed = "extraction_failed"
	OutcomeExtracted        = "extracted"
)

// Metrics owns a private registry so tests can create as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	uploadsTotal    *prometheus.CounterVec
	summariesTotal  *prometheus.CounterVec
	summaryDuration *prometheus.HistogramVec
	extractedChars  prometheus.Histogram
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pdfsum",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		}, []string{"method", "path", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pdfsum",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		uploadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pdfsum",
			Name:      "uploads_total",
			Help:      "Processed PDF uploads by outcome.",
		}, []string{"outcome"}),
		summariesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pdfsum",
			Name:      "summaries_total",
			Help:      "Summarization calls by provider and result.",
		}, []string{"provider", "result"}),
		summaryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pdfsum",
			Name:      "summary_duration_seconds",
			Help:      "Latency of the summarization call.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		}, []string{"provider"}),
		extractedChars: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "pdfsum",
			Name:      "extracted_chars",
			Help:      "Characters of text extracted per PDF.",
			Buckets:   prometheus.ExponentialBuckets(100, 4, 8),
		}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestTotal,
		m.requestDuration,
		m.uploadsTotal,
		m.summariesTotal,
		m.summaryDuration,
		m.extractedChars,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request count and latency per route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		// FullPath is the route template ("/api/v1/summaries"), which keeps label cardinality bounded.
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.requestTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// RecordUpload counts one processed upload.
func (m *Metrics) RecordUpload(outcome string) {
	if m == nil {
		return
	}
	m.uploadsTotal.WithLabelValues(outcome).Inc()
}

// RecordExtraction observes the size of an extracted text.
func (m *Metrics) RecordExtraction(chars int) {
	if m == nil {
		return
	}
	m.extractedChars.Observe(float64(chars))
}

// RecordSummary counts one summarization call and its latency.
func (m *Metrics) RecordSummary(provider string, ok bool, d time.Duration) {
	if m == nil {
		return
	}
	result := "success"
	if !ok {
		result = "error"
	}
	m.summariesTotal.WithLabelValues(provider, result).Inc()
	m.summaryDuration.WithLabelValues(provider).Observe(d.Seconds())
}
