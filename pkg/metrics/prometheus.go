package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//Manager owns every collector. A nil *Manager is valid and records nothing,
//which keeps call sites free of nil checks in tests and the CLI.
type Manager struct {
	namespace string
	buckets   []float64
	registry  *prometheus.Registry

	framesProcessed   prometheus.Counter
	framesNoDetection prometheus.Counter
	inferenceFailures prometheus.Counter
	videosProcessed   *prometheus.CounterVec
	processingSeconds prometheus.Histogram
	inferenceSeconds  prometheus.Histogram

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

//Option configures a Manager.
type Option func(*Manager)

//WithNamespace sets the metric namespace (default "soccer_coach").
func WithNamespace(ns string) Option {
	return func(m *Manager) {
		if ns != "" {
			m.namespace = ns
		}
	}
}

//WithRegistry registers collectors on r instead of a fresh registry.
func WithRegistry(r *prometheus.Registry) Option {
	return func(m *Manager) {
		if r != nil {
			m.registry = r
		}
	}
}

//WithProcessingBuckets sets the buckets of the video processing histogram, in seconds.
func WithProcessingBuckets(b []float64) Option {
	return func(m *Manager) {
		if len(b) > 0 {
			m.buckets = b
		}
	}
}

//NewManager creates and registers all collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "soccer_coach",
		buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}

	auto := promauto.With(m.registry)

	m.framesProcessed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "pipeline",
		Name:      "frames_processed_total",
		Help:      "Frames decoded, annotated and written",
	})
	m.framesNoDetection = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "pipeline",
		Name:      "frames_without_detection_total",
		Help:      "Frames on which no pose was detected",
	})
	m.inferenceFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "pipeline",
		Name:      "inference_failures_total",
		Help:      "Frames whose pose inference failed and were treated as no detection",
	})
	m.videosProcessed = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "pipeline",
		Name:      "videos_processed_total",
		Help:      "Processed videos by mode and outcome",
	}, []string{"mode", "outcome"})
	m.processingSeconds = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "pipeline",
		Name:      "video_processing_seconds",
		Help:      "Wall time spent processing one video",
		Buckets:   m.buckets,
	})
	m.inferenceSeconds = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "pipeline",
		Name:      "inference_seconds",
		Help:      "Time spent in pose inference per frame",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route, method and status code",
	}, []string{"route", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request duration by route and method",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})

	return m
}

//Registry returns the registry the collectors live on, for the /metrics handler.
func (m *Manager) Registry() *prometheus.Registry {
	if m == nil {
		return prometheus.NewRegistry()
	}
	return m.registry
}

func (m *Manager) FrameProcessed() {
	if m == nil {
		return
	}
	m.framesProcessed.Inc()
}

func (m *Manager) FrameWithoutDetection() {
	if m == nil {
		return
	}
	m.framesNoDetection.Inc()
}

func (m *Manager) InferenceFailed() {
	if m == nil {
		return
	}
	m.inferenceFailures.Inc()
}

//ObserveInference records the duration of one Source.Infer call.
func (m *Manager) ObserveInference(d time.Duration) {
	if m == nil {
		return
	}
	m.inferenceSeconds.Observe(d.Seconds())
}

//VideoProcessed records the outcome of one pipeline run.
func (m *Manager) VideoProcessed(mode, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.videosProcessed.WithLabelValues(mode, outcome).Inc()
	m.processingSeconds.Observe(d.Seconds())
}

//HTTPRequest records one served request.
func (m *Manager) HTTPRequest(route, method, statusCode string, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(route, method).Observe(d.Seconds())
}
