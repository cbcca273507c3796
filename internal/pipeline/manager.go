package pipeline

import (
	"context"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/tftframe/framing-server/internal/config"
	"github.com/tftframe/framing-server/internal/logging"
	"github.com/tftframe/framing-server/internal/metrics"
	"github.com/tftframe/framing-server/internal/sources"
	"github.com/tftframe/framing-server/internal/workerpool"
)

const acceptPollInterval = 1 * time.Second
const drainTimeout = 5 * time.Second

// Manager owns a pipeline's listening socket: accept one client, run a
// Session to completion, loop, until global shutdown. Exactly one client
// is connected per pipeline at any time.
type Manager struct {
	cfg     config.PipelineConfig
	metrics *metrics.Set
	log     *slog.Logger
	pool    *workerpool.Pool
}

// NewManager builds a Manager for one pipeline configuration.
func NewManager(cfg config.PipelineConfig, metricsSet *metrics.Set) *Manager {
	return &Manager{
		cfg:     cfg,
		metrics: metricsSet,
		log:     logging.L("pipeline.manager").With(logging.KeyPipeline, cfg.Name),
		pool:    workerpool.New(4, 32),
	}
}

// Run binds the listening socket and accepts clients until stop is closed.
// Returns a BindFailure-wrapping error if the port could not be bound; the
// caller (cmd/framing-server) treats that as this pipeline failing to
// start without aborting the rest of the process.
func (m *Manager) Run(stop <-chan struct{}) error {
	lc := net.ListenConfig{Control: listenControl}
	ln, err := lc.Listen(context.Background(), "tcp", net.JoinHostPort("", strconv.Itoa(m.cfg.ListenPort)))
	if err != nil {
		return &BindFailure{Port: m.cfg.ListenPort, Err: err}
	}
	defer ln.Close()

	m.log.Info("pipeline listening", "port", m.cfg.ListenPort)

	tcpLn, _ := ln.(*net.TCPListener)

	for {
		select {
		case <-stop:
			m.log.Info("pipeline shutting down")
			m.pool.StopAccepting()
			ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
			m.pool.Drain(ctx)
			cancel()
			return nil
		default:
		}

		if tcpLn != nil {
			_ = tcpLn.SetDeadline(time.Now().Add(acceptPollInterval))
		}
		conn, err := ln.Accept()
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			select {
			case <-stop:
				return nil
			default:
				m.log.Warn("accept failed", "error", err)
				continue
			}
		}

		m.metrics.Reconnection()
		m.runSession(conn, stop)
	}
}

func (m *Manager) runSession(conn net.Conn, globalStop <-chan struct{}) {
	src, err := sources.New(m.cfg)
	if err != nil {
		m.log.Error("failed to construct image source", "error", err)
		_ = conn.Close()
		return
	}

	session := newSession(m.cfg, conn, src, m.pool, m.metrics)

	done := make(chan struct{})
	go func() {
		session.run()
		close(done)
	}()

	select {
	case <-done:
	case <-globalStop:
		session.drain(drainTimeout)
		select {
		case <-done:
		case <-time.After(drainTimeout):
		}
	}
}

// BindFailure reports that a pipeline's listening port could not be
// bound. That pipeline does not run; other pipelines continue.
type BindFailure struct {
	Port int
	Err  error
}

func (e *BindFailure) Error() string {
	return "bind failure on port " + strconv.Itoa(e.Port) + ": " + e.Err.Error()
}

func (e *BindFailure) Unwrap() error { return e.Err }
