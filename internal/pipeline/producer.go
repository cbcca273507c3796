package pipeline

import (
	"errors"
	"time"

	"github.com/tftframe/framing-server/internal/imaging"
	"github.com/tftframe/framing-server/internal/imagesource"
)

const sourceBackoff = 500 * time.Millisecond
const queueFullPauseCheck = 10 * time.Millisecond

// runProducer renders frames from the session's ImageSource at the
// configured cadence and enqueues them for the Consumer, until the
// session's stop signal fires or the source fails fatally.
func runProducer(s *Session) {
	w, h := s.source.Resolution()
	target := s.cfg.ProducerTargetInterval()

	for {
		select {
		case <-s.stop:
			return
		default:
		}

		iterStart := time.Now()

		if s.queue.Depth() >= s.cfg.ProducerLowWaterMark {
			select {
			case <-time.After(queueFullPauseCheck):
			case <-s.stop:
				return
			}
			continue
		}

		canvas := imaging.New(w, h)
		if err := s.source.Render(&canvas); err != nil {
			if errors.Is(err, imagesource.ErrSourceFatal) {
				s.log.Error("source failed fatally, ending session", "error", err)
				s.signalStop()
				return
			}
			s.log.Warn("source temporarily unavailable, backing off", "error", err)
			select {
			case <-time.After(sourceBackoff):
			case <-s.stop:
				return
			}
			continue
		}

		s.metrics.FrameGenerated()
		if !s.queue.Put(canvas) {
			s.log.Debug("frame queue full, dropping frame")
		}

		elapsed := time.Since(iterStart)
		if elapsed < target {
			select {
			case <-time.After(target - elapsed):
			case <-s.stop:
				return
			}
		}
	}
}
