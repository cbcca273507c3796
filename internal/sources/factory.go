package sources

import (
	"fmt"
	"time"

	"github.com/tftframe/framing-server/internal/config"
	"github.com/tftframe/framing-server/internal/imagesource"
)

// New builds the imagesource.Source named by p.Source, sized to
// p.TargetWidth x p.TargetHeight.
func New(p config.PipelineConfig) (imagesource.Source, error) {
	switch p.Source {
	case config.SourceMock:
		return NewMock(p.TargetWidth, p.TargetHeight), nil
	case config.SourceCPUMonitor:
		interval := time.Duration(p.CPUMonitorInterval) * time.Millisecond
		return NewCPUMonitor(p.TargetWidth, p.TargetHeight, p.CPUMonitorHistoryLength, interval), nil
	case config.SourceMetricsDashboard:
		return NewPrometheusDashboard(p.PrometheusURL, p.PrometheusQuery, p.TargetWidth, p.TargetHeight)
	case config.SourceScreenRegion:
		return NewScreenRegion(0, 0, p.TargetWidth, p.TargetHeight), nil
	case config.SourceWindowTitle:
		return NewWindowTitle(p.WindowTitleMatch, p.TargetWidth, p.TargetHeight), nil
	default:
		return nil, fmt.Errorf("sources: unknown source %q", p.Source)
	}
}
