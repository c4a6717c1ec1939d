// Package metrics defines the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Chat
	ChatRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_requests_total",
		Help: "Total chat requests",
	}, []string{"status"})

	ChatErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_errors_total",
		Help: "Total number of chat errors",
	}, []string{"error_type"})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "active_sessions",
		Help: "Current active sessions",
	})

	MessageLength = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "message_length_chars",
		Help:    "Distribution of user message lengths",
		Buckets: []float64{10, 50, 100, 500, 1000, 5000, 10000},
	})

	CompletionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "llm_api_duration_seconds",
		Help:    "LLM completion latency",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
	})

	// Uploads
	FileUploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "file_uploads_total",
		Help: "Total file uploads",
	}, []string{"file_type"})

	FileUploadSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "file_upload_size_bytes",
		Help:    "Uploaded file size",
		Buckets: []float64{1 << 10, 10 << 10, 100 << 10, 1 << 20, 10 << 20, 100 << 20},
	}, []string{"file_type"})

	CSVRowsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "csv_rows_processed_total",
		Help: "Total CSV rows processed",
	})

	DocumentChars = promauto.NewCounter(prometheus.CounterOpts{
		Name: "document_chars_processed_total",
		Help: "Total characters extracted from documents",
	})

	// HTTP
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "endpoint", "status_code"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "http_request_duration_seconds",
		Help: "HTTP request duration",
	}, []string{"method", "endpoint"})
)
