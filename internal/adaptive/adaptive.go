// Package adaptive implements a closed-loop FPS-targeted dirty-pixel
// threshold controller. It is a deadband proportional controller on a
// single scalar, not a PID, following the same mutex-protected-state,
// clamp-to-bounds, log-the-transition shape used elsewhere for adaptive
// bitrate/FPS control.
package adaptive

import (
	"log/slog"
	"sync"

	"github.com/tftframe/framing-server/internal/logging"
)

var log = logging.L("adaptive")

// Config bundles the controller's tunables.
type Config struct {
	TargetFPS         float64
	HistorySize       int
	HysteresisFactor  float64
	MinThreshold      int
	MaxThreshold      int
	ThresholdStepUp   int
	ThresholdStepDown int
}

// Controller tracks recent per-frame processing durations and adjusts a
// dynamic diff threshold to hold the Consumer near TargetFPS.
type Controller struct {
	cfg Config

	mu        sync.Mutex
	history   []float64 // seconds, ring buffer of length cfg.HistorySize
	next      int
	filled    int
	threshold int
	lastFPS   float64
}

// New creates a Controller with the threshold reset to MinThreshold, the
// starting point for every new session.
func New(cfg Config) *Controller {
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = 10
	}
	return &Controller{
		cfg:       cfg,
		history:   make([]float64, cfg.HistorySize),
		threshold: clamp(cfg.MinThreshold, cfg.MinThreshold, cfg.MaxThreshold),
	}
}

// Reset clears the frame-time history and resets the threshold to the
// minimum, without discarding the configured bounds.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = make([]float64, len(c.history))
	c.next = 0
	c.filled = 0
	c.threshold = clamp(c.cfg.MinThreshold, c.cfg.MinThreshold, c.cfg.MaxThreshold)
	c.lastFPS = 0
}

// Threshold returns the current dynamic threshold, always in
// [MinThreshold, MaxThreshold].
func (c *Controller) Threshold() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.threshold
}

// SetThreshold forces the current threshold, clamped to configured bounds.
func (c *Controller) SetThreshold(t int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.threshold = clamp(t, c.cfg.MinThreshold, c.cfg.MaxThreshold)
}

// FPS returns the most recently computed moving-average FPS (0 until the
// history fills).
func (c *Controller) FPS() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastFPS
}

// RecordFrame appends one frame's processing duration (seconds) and, once
// the history window is full, recomputes the moving-average FPS and steps
// the threshold toward TargetFPS.
func (c *Controller) RecordFrame(elapsedSeconds float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.history[c.next] = elapsedSeconds
	c.next = (c.next + 1) % len(c.history)
	if c.filled < len(c.history) {
		c.filled++
	}
	if c.filled < len(c.history) {
		return
	}

	var sum float64
	for _, v := range c.history {
		sum += v
	}
	avg := sum / float64(len(c.history))

	fps := 0.0
	if avg > 0 {
		fps = 1.0 / avg
	}
	c.lastFPS = fps

	band := c.cfg.TargetFPS * c.cfg.HysteresisFactor
	prev := c.threshold

	switch {
	case fps < c.cfg.TargetFPS-band:
		c.threshold = clamp(c.threshold+c.cfg.ThresholdStepUp, c.cfg.MinThreshold, c.cfg.MaxThreshold)
	case fps > c.cfg.TargetFPS+band:
		c.threshold = clamp(c.threshold-c.cfg.ThresholdStepDown, c.cfg.MinThreshold, c.cfg.MaxThreshold)
	}

	if c.threshold != prev {
		log.Debug("adaptive threshold adjustment",
			slog.Float64("fps", fps),
			slog.Int("prevThreshold", prev),
			slog.Int("threshold", c.threshold),
		)
	}
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
