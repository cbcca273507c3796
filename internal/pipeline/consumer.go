package pipeline

import (
	"net"
	"time"

	"github.com/tftframe/framing-server/internal/diffrect"
	"github.com/tftframe/framing-server/internal/imaging"
	"github.com/tftframe/framing-server/internal/metrics"
	"github.com/tftframe/framing-server/internal/protocol"
)

// runConsumer pops raw frames, resizes and diffs each one, and streams the
// dirty region to the client socket, until the session stop signal fires or a socket error
// ends the session.
func runConsumer(s *Session) {
	for {
		select {
		case <-s.stop:
			return
		default:
		}

		raw, ok := s.queue.Get(s.stop)
		if !ok {
			continue
		}

		s.metrics.QueueSize(s.queue.Depth())
		if err := processFrame(s, raw); err != nil {
			s.log.Error("frame send failed, ending session", "error", err)
			s.metrics.ConnectionError()
			s.signalStop()
			return
		}
	}
}

func processFrame(s *Session, raw imaging.Image) error {
	frameStart := time.Now()

	diffStart := time.Now()
	resized := imaging.Resize(raw, s.cfg.TargetWidth, s.cfg.TargetHeight)
	prev := s.getPrev()
	threshold := s.controller.Threshold()
	rect, changed := diffrect.Detect(prev, resized, threshold)
	s.metrics.StageDuration(metrics.StageDiff, time.Since(diffStart).Seconds())

	if !changed {
		s.setPrev(resized)
		s.recordFrameTime(time.Since(frameStart))
		s.metrics.FrameProcessed()
		return nil
	}

	bands, err := protocol.SplitIntoBands(rect, s.cfg.MaxChunkPayloadBytes)
	if err != nil {
		s.log.Error("dirty rect un-sendable at this width, skipping", "error", err, "rect", rect)
		s.setPrev(resized)
		s.recordFrameTime(time.Since(frameStart))
		s.metrics.FrameProcessed()
		return nil
	}

	dirtySub, err := resized.SubImage(rect.X, rect.Y, rect.W, rect.H)
	if err != nil {
		return err
	}

	ccStart := time.Now()
	corrected := imaging.New(rect.W, rect.H)
	s.pool.Run(len(bands), func(i int) {
		band := bands[i]
		localY := band.Y - rect.Y
		bandSrc, subErr := dirtySub.SubImage(0, localY, band.W, band.H)
		if subErr != nil {
			s.log.Error("band sub-image failed", "error", subErr)
			return
		}
		imaging.ColorCorrectInto(corrected, localY, bandSrc, s.cfg.Gamma, imaging.WhiteBalance(s.cfg.WBScale))
	})
	s.metrics.StageDuration(metrics.StageColorCorrection, time.Since(ccStart).Seconds())

	ditherStart := time.Now()
	packed := imaging.DitherToRGB565(corrected)
	s.metrics.StageDuration(metrics.StageDitherEncode, time.Since(ditherStart).Seconds())

	sendStart := time.Now()
	rowBytes := rect.W * 2
	for _, band := range bands {
		localStartRow := band.Y - rect.Y
		data := packed[localStartRow*rowBytes : (localStartRow+band.H)*rowBytes]

		packStart := time.Now()
		pkt, err := protocol.NewPacket(band.X, band.Y, band.W, band.H, data)
		s.metrics.StageDuration(metrics.StagePacketPack, time.Since(packStart).Seconds())
		if err != nil {
			return err
		}

		_ = s.conn.SetWriteDeadline(time.Now().Add(s.cfg.SocketTimeout()))
		writeStart := time.Now()
		n, err := pkt.WriteTo(s.conn)
		s.metrics.StageDuration(metrics.StageSend, time.Since(writeStart).Seconds())
		if err != nil {
			return err
		}
		s.metrics.PacketSize(int(n))
	}
	s.metrics.DirtyRectSendDuration(time.Since(sendStart).Seconds())
	s.metrics.ChunksPerFrame(len(bands))

	s.setPrev(resized)
	total := time.Since(frameStart)
	if rect == (diffrect.Rect{X: 0, Y: 0, W: resized.Width, H: resized.Height}) {
		s.metrics.StageDuration(metrics.StageFullFrame, total.Seconds())
	}
	s.recordFrameTime(total)
	s.metrics.FrameProcessed()
	return nil
}

// setNoDelay applies TCP_NODELAY to an accepted connection: per-packet
// latency matters more than aggregate throughput at these chunk sizes.
func setNoDelay(conn net.Conn) {
	if tcp, ok := conn.(*net.TCPConn); ok {
		_ = tcp.SetNoDelay(true)
	}
}
