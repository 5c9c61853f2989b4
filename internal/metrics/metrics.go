package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FramesCaptured = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "emotion_worker_frames_captured_total",
			Help: "Total number of frames read from the camera",
		},
	)

	FramesDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "emotion_worker_frames_dropped_total",
			Help: "Frames that could not be delivered, by stage",
		},
		[]string{"stage"},
	)

	AnalysisRuns = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "emotion_worker_analysis_runs_total",
			Help: "Total number of analyzer invocations",
		},
	)

	AnalysisFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "emotion_worker_analysis_failures_total",
			Help: "Analyzer invocations that failed and were treated as empty",
		},
	)

	AnalysisLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "emotion_worker_analysis_latency_seconds",
			Help:    "Analyzer latency in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
	)

	DetectionsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "emotion_worker_detections_recorded_total",
			Help: "Detection events written to history, by emotion",
		},
		[]string{"emotion"},
	)

	PipelineRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "emotion_worker_pipeline_running",
			Help: "1 while the capture pipeline is running",
		},
	)

	StreamViewers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "emotion_worker_stream_viewers",
			Help: "Number of connected video feed viewers",
		},
	)

	RequestCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "emotion_worker_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "emotion_worker_http_request_duration_seconds",
			Help: "HTTP request duration in seconds",
		},
		[]string{"method", "endpoint"},
	)
)
