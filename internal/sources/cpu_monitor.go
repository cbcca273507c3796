package sources

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/tftframe/framing-server/internal/imaging"
	"github.com/tftframe/framing-server/internal/logging"
)

var cpuLog = logging.L("sources.cpu_monitor")

// CPUMonitor samples host CPU and memory usage on its own interval and
// renders a scrolling line chart plus a text readout, grounded on
// original_source/cpu_monitor_generator.py's history buffer and layout.
type CPUMonitor struct {
	width, height int
	interval      time.Duration
	historyLen    int

	mu      sync.Mutex
	history []float64
	memPct  float64
	stop    chan struct{}
	once    sync.Once
}

// NewCPUMonitor starts a background sampling goroutine immediately;
// Shutdown must be called to stop it.
func NewCPUMonitor(width, height, historyLen int, interval time.Duration) *CPUMonitor {
	if historyLen < 1 {
		historyLen = 60
	}
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	c := &CPUMonitor{
		width:      width,
		height:     height,
		interval:   interval,
		historyLen: historyLen,
		stop:       make(chan struct{}),
	}
	go c.sampleLoop()
	return c
}

func (c *CPUMonitor) sampleLoop() {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.sampleOnce()
		case <-c.stop:
			return
		}
	}
}

func (c *CPUMonitor) sampleOnce() {
	pcts, err := cpu.Percent(0, false)
	if err != nil || len(pcts) == 0 {
		cpuLog.Warn("cpu sample failed", "error", err)
		return
	}
	vm, err := mem.VirtualMemory()
	memPct := 0.0
	if err == nil && vm != nil {
		memPct = vm.UsedPercent
	}

	c.mu.Lock()
	c.history = append(c.history, pcts[0])
	if len(c.history) > c.historyLen {
		c.history = c.history[len(c.history)-c.historyLen:]
	}
	c.memPct = memPct
	c.mu.Unlock()
}

func (c *CPUMonitor) Resolution() (int, int) { return c.width, c.height }

func (c *CPUMonitor) Render(canvas *imaging.Image) error {
	c.mu.Lock()
	history := append([]float64(nil), c.history...)
	memPct := c.memPct
	c.mu.Unlock()

	rgba := image.NewRGBA(image.Rect(0, 0, c.width, c.height))
	draw.Draw(rgba, rgba.Bounds(), &image.Uniform{C: color.RGBA{10, 10, 20, 255}}, image.Point{}, draw.Src)

	chartTop := 24
	chartHeight := c.height - chartTop - 8
	if chartHeight < 1 {
		chartHeight = 1
	}
	axisColor := color.RGBA{60, 60, 80, 255}
	for gy := 0; gy <= 4; gy++ {
		y := chartTop + gy*chartHeight/4
		for x := 8; x < c.width-8; x++ {
			rgba.Set(x, y, axisColor)
		}
	}

	lineColor := color.RGBA{80, 220, 120, 255}
	if n := len(history); n > 1 {
		plotWidth := c.width - 16
		for i := 1; i < n; i++ {
			x0 := 8 + (i-1)*plotWidth/(n-1)
			x1 := 8 + i*plotWidth/(n-1)
			y0 := chartTop + chartHeight - int(history[i-1]/100*float64(chartHeight))
			y1 := chartTop + chartHeight - int(history[i]/100*float64(chartHeight))
			drawLine(rgba, x0, y0, x1, y1, lineColor)
		}
	}

	var latest float64
	if n := len(history); n > 0 {
		latest = history[n-1]
	}
	drawText(rgba, 8, 14, formatPercentLine("CPU", latest, "MEM", memPct), color.RGBA{230, 230, 230, 255})

	*canvas = imaging.FromRGBA(rgba)
	return nil
}

func (c *CPUMonitor) Shutdown() {
	c.once.Do(func() { close(c.stop) })
}

func drawLine(dst draw.Image, x0, y0, x1, y1 int, col color.Color) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		dst.Set(x0, y0, col)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func formatPercentLine(aLabel string, a float64, bLabel string, b float64) string {
	return fmt.Sprintf("%s %.1f%%  %s %.1f%%", aLabel, a, bLabel, b)
}
