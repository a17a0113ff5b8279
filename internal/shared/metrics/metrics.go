package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "media"

// UploadMetrics exports upload outcomes to Prometheus.
type UploadMetrics struct {
	uploads  *prometheus.CounterVec
	duration *prometheus.HistogramVec
	bytes    *prometheus.CounterVec
}

// NewUploadMetrics registers the upload collectors on reg, reusing collectors
// that are already registered. A nil reg uses the default registerer.
func NewUploadMetrics(reg prometheus.Registerer) (*UploadMetrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	uploads, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "uploads_total",
		Help:      "Uploads by backend and terminal outcome.",
	}, []string{"backend", "outcome"}))
	if err != nil {
		return nil, fmt.Errorf("register uploads counter: %w", err)
	}
	duration, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upload_duration_seconds",
		Help:      "Time from request to terminal outcome.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"backend"}))
	if err != nil {
		return nil, fmt.Errorf("register upload histogram: %w", err)
	}
	uploaded, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "uploaded_bytes_total",
		Help:      "Bytes of successfully stored uploads.",
	}, []string{"backend"}))
	if err != nil {
		return nil, fmt.Errorf("register uploaded bytes counter: %w", err)
	}
	return &UploadMetrics{uploads: uploads, duration: duration, bytes: uploaded}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordUpload tracks one terminal outcome.
func (m *UploadMetrics) RecordUpload(backend, outcome string, duration time.Duration, sizeBytes int64) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(backend, outcome).Inc()
	m.duration.WithLabelValues(backend).Observe(duration.Seconds())
	if sizeBytes > 0 {
		m.bytes.WithLabelValues(backend).Add(float64(sizeBytes))
	}
}

// Handler exposes g in Prometheus text format. A nil g uses the default
// gatherer.
func Handler(g prometheus.Gatherer) gin.HandlerFunc {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	h := promhttp.HandlerFor(g, promhttp.HandlerOpts{})
	return gin.WrapH(h)
}
