// Package metrics implements the per-pipeline counters, histograms and
// gauges exposed over /metrics. Mirrors the shape of
// internal/remote/desktop's StreamMetrics accumulator (an always-present
// struct with Record* methods and a Snapshot), but backed for real by
// github.com/prometheus/client_golang instead of a hand-rolled counter
// struct, since every metric here carries a pipeline-name label and
// Prometheus vectors are the idiomatic way to model that.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Stage names for the per-stage processing-time histogram.
const (
	StageColorCorrection = "color_correction"
	StageDitherEncode    = "dither_encode"
	StageDiff            = "diff"
	StagePacketPack      = "packet_pack"
	StageSend            = "send"
	StageFullFrame       = "full_frame"
)

// Registry owns the label-vectored collectors shared across all pipelines
// in the process, registered once against a prometheus.Registerer.
type Registry struct {
	framesGenerated  *prometheus.CounterVec
	framesProcessed  *prometheus.CounterVec
	connectionErrors *prometheus.CounterVec
	reconnections    *prometheus.CounterVec

	stageDuration          *prometheus.HistogramVec
	packetSizeBytes        *prometheus.HistogramVec
	chunksPerFrame         *prometheus.HistogramVec
	queueSize              *prometheus.HistogramVec
	dirtyRectsSendDuration *prometheus.HistogramVec

	currentDynamicThreshold *prometheus.GaugeVec
	consumerCalculatedFPS   *prometheus.GaugeVec
}

// NewRegistry builds and registers every collector against reg.
func NewRegistry(reg prometheus.Registerer) *Registry {
	r := &Registry{
		framesGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "framing_frames_generated_total",
			Help: "Frames produced by the ImageSource.",
		}, []string{"pipeline"}),
		framesProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "framing_frames_processed_total",
			Help: "Frames popped and processed by the Consumer.",
		}, []string{"pipeline"}),
		connectionErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "framing_connection_errors_total",
			Help: "Socket errors that ended a session.",
		}, []string{"pipeline"}),
		reconnections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "framing_reconnections_total",
			Help: "Client (re)connections accepted.",
		}, []string{"pipeline"}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "framing_stage_duration_seconds",
			Help:    "Per-stage processing time.",
			Buckets: prometheus.DefBuckets,
		}, []string{"pipeline", "stage"}),
		packetSizeBytes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "framing_packet_size_bytes",
			Help:    "Size of each wire packet (header + payload).",
			Buckets: prometheus.ExponentialBuckets(16, 2, 14),
		}, []string{"pipeline"}),
		chunksPerFrame: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "framing_chunks_per_frame",
			Help:    "Number of wire chunks a single frame was split into.",
			Buckets: prometheus.LinearBuckets(1, 1, 10),
		}, []string{"pipeline"}),
		queueSize: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "framing_queue_size",
			Help:    "Observed frame queue depth.",
			Buckets: prometheus.LinearBuckets(0, 1, 10),
		}, []string{"pipeline"}),
		dirtyRectsSendDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "framing_dirty_rects_send_duration_seconds",
			Help:    "Wall time to send every chunk of one dirty rect.",
			Buckets: prometheus.DefBuckets,
		}, []string{"pipeline"}),
		currentDynamicThreshold: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "framing_current_dynamic_threshold",
			Help: "Current adaptive dirty-pixel threshold.",
		}, []string{"pipeline"}),
		consumerCalculatedFPS: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "framing_consumer_calculated_fps",
			Help: "Consumer's moving-average FPS.",
		}, []string{"pipeline"}),
	}

	reg.MustRegister(
		r.framesGenerated, r.framesProcessed, r.connectionErrors, r.reconnections,
		r.stageDuration, r.packetSizeBytes, r.chunksPerFrame, r.queueSize, r.dirtyRectsSendDuration,
		r.currentDynamicThreshold, r.consumerCalculatedFPS,
	)
	return r
}

// Set is a Registry's collectors pre-bound to one pipeline's label value.
type Set struct {
	pipeline string
	reg      *Registry
}

// ForPipeline returns a Set bound to the given pipeline name.
func (r *Registry) ForPipeline(name string) *Set {
	return &Set{pipeline: name, reg: r}
}

func (s *Set) FrameGenerated()  { s.reg.framesGenerated.WithLabelValues(s.pipeline).Inc() }
func (s *Set) FrameProcessed()  { s.reg.framesProcessed.WithLabelValues(s.pipeline).Inc() }
func (s *Set) ConnectionError() { s.reg.connectionErrors.WithLabelValues(s.pipeline).Inc() }
func (s *Set) Reconnection()    { s.reg.reconnections.WithLabelValues(s.pipeline).Inc() }

// StageDuration records seconds spent in one named processing stage.
func (s *Set) StageDuration(stage string, seconds float64) {
	s.reg.stageDuration.WithLabelValues(s.pipeline, stage).Observe(seconds)
}

func (s *Set) PacketSize(bytes int) {
	s.reg.packetSizeBytes.WithLabelValues(s.pipeline).Observe(float64(bytes))
}

func (s *Set) ChunksPerFrame(n int) {
	s.reg.chunksPerFrame.WithLabelValues(s.pipeline).Observe(float64(n))
}

func (s *Set) QueueSize(depth int) {
	s.reg.queueSize.WithLabelValues(s.pipeline).Observe(float64(depth))
}

func (s *Set) DirtyRectSendDuration(seconds float64) {
	s.reg.dirtyRectsSendDuration.WithLabelValues(s.pipeline).Observe(seconds)
}

func (s *Set) SetThreshold(t int) {
	s.reg.currentDynamicThreshold.WithLabelValues(s.pipeline).Set(float64(t))
}

func (s *Set) SetFPS(fps float64) {
	s.reg.consumerCalculatedFPS.WithLabelValues(s.pipeline).Set(fps)
}
