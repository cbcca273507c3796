// Package pipeline wires together the ImageSource, frame queue, adaptive
// controller and wire protocol into the per-pipeline streaming engine:
// Session (one connected client), Producer and Consumer (the two worker
// goroutines of a session), and Manager (the listening socket that spins
// sessions up and down). Mirrors the shape of
// agent/internal/remote/desktop: Session/SessionManager's
// sync.Once-guarded Stop/cleanup, session_stream.go's wg.Add-per-goroutine
// fan-out, and stream_metrics.go's accumulator shape (replaced here with
// internal/metrics's Prometheus-backed Set).
package pipeline

import (
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/tftframe/framing-server/internal/adaptive"
	"github.com/tftframe/framing-server/internal/config"
	"github.com/tftframe/framing-server/internal/framequeue"
	"github.com/tftframe/framing-server/internal/imaging"
	"github.com/tftframe/framing-server/internal/imagesource"
	"github.com/tftframe/framing-server/internal/logging"
	"github.com/tftframe/framing-server/internal/metrics"
	"github.com/tftframe/framing-server/internal/workerpool"
)

// Session holds the state and goroutines associated with one connected
// client, from accept until teardown.
type Session struct {
	cfg     config.PipelineConfig
	conn    net.Conn
	source  imagesource.Source
	queue   *framequeue.Queue
	controller *adaptive.Controller
	pool    *workerpool.Pool
	metrics *metrics.Set
	log     *slog.Logger

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	prevMu sync.Mutex
	prev   imaging.Image
}

func newSession(cfg config.PipelineConfig, conn net.Conn, source imagesource.Source, pool *workerpool.Pool, metricsSet *metrics.Set) *Session {
	controller := adaptive.New(adaptive.Config{
		TargetFPS:         cfg.TargetFPS,
		HistorySize:       cfg.FPSHistorySize,
		HysteresisFactor:  cfg.FPSHysteresisFactor,
		MinThreshold:      cfg.MinDiffThreshold,
		MaxThreshold:      cfg.MaxDiffThreshold,
		ThresholdStepUp:   cfg.ThresholdStepUp,
		ThresholdStepDown: cfg.ThresholdStepDown,
	})
	return &Session{
		cfg:        cfg,
		conn:       conn,
		source:     source,
		queue:      framequeue.New(cfg.QueueCapacity),
		controller: controller,
		pool:       pool,
		metrics:    metricsSet,
		log:        logging.L("pipeline.session").With(logging.KeyPipeline, cfg.Name),
		stop:       make(chan struct{}),
	}
}

// run starts the Producer and Consumer and blocks until both have exited,
// which happens exactly when the session's stop signal fires — from a
// Consumer socket error, a Producer-fatal source, or an externally
// requested drain (Manager on global shutdown).
func (s *Session) run() {
	s.log.Info("session starting")
	setNoDelay(s.conn)

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		runProducer(s)
	}()
	go func() {
		defer s.wg.Done()
		runConsumer(s)
	}()

	s.wg.Wait()
	s.teardown()
	s.log.Info("session ended")
}

// drain requests the session stop and waits (bounded by timeout) for both
// worker goroutines to exit — used by the Manager on global shutdown.
func (s *Session) drain(timeout time.Duration) {
	s.signalStop()
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		s.log.Warn("session drain timed out, abandoning worker goroutines")
	}
}

func (s *Session) signalStop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *Session) teardown() {
	s.source.Shutdown()
	s.queue.Drain()
	_ = s.conn.Close()
}

func (s *Session) getPrev() imaging.Image {
	s.prevMu.Lock()
	defer s.prevMu.Unlock()
	return s.prev
}

func (s *Session) setPrev(img imaging.Image) {
	s.prevMu.Lock()
	s.prev = img
	s.prevMu.Unlock()
}

func (s *Session) recordFrameTime(d time.Duration) {
	s.controller.RecordFrame(d.Seconds())
	s.metrics.SetThreshold(s.controller.Threshold())
	s.metrics.SetFPS(s.controller.FPS())
}
