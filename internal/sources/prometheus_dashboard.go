package sources

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"
	"time"

	promapi "github.com/prometheus/client_golang/api"
	promv1 "github.com/prometheus/client_golang/api/prometheus/v1"
	"github.com/prometheus/common/model"

	"github.com/tftframe/framing-server/internal/imaging"
	"github.com/tftframe/framing-server/internal/imagesource"
	"github.com/tftframe/framing-server/internal/logging"
)

var promLog = logging.L("sources.metrics_dashboard")

// PrometheusDashboard queries a Prometheus server on every Render call and
// draws a single-series readout, grounded on
// original_source/prometheus_monitor_generator.py's neon-on-dark layout.
// On a query failure it redraws the last good value marked "stale",
// holding the last good frame on an API error rather than tearing down the
// whole monitor; it returns imagesource.ErrSourceUnavailable only when no
// query has succeeded yet.
type PrometheusDashboard struct {
	width, height int
	query         string
	client        promv1.API

	mu       sync.Mutex
	lastGood float64
	haveGood bool
}

// NewPrometheusDashboard builds a client against serverURL. An error here
// means the URL itself is malformed (config error), not a connectivity
// problem — connectivity failures surface per-Render as ErrSourceUnavailable.
func NewPrometheusDashboard(serverURL, query string, width, height int) (*PrometheusDashboard, error) {
	client, err := promapi.NewClient(promapi.Config{Address: serverURL})
	if err != nil {
		return nil, err
	}
	return &PrometheusDashboard{
		width:  width,
		height: height,
		query:  query,
		client: promv1.NewAPI(client),
	}, nil
}

func (p *PrometheusDashboard) Resolution() (int, int) { return p.width, p.height }

func (p *PrometheusDashboard) Shutdown() {}

func (p *PrometheusDashboard) Render(canvas *imaging.Image) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	value, _, err := p.client.Query(ctx, p.query, time.Now())
	if err != nil {
		promLog.Warn("prometheus query failed", "error", err)
		return p.renderLastGoodOrFail(canvas)
	}

	v, ok := extractScalar(value)
	if !ok {
		promLog.Warn("prometheus query returned no vector samples")
		return p.renderLastGoodOrFail(canvas)
	}

	p.mu.Lock()
	p.lastGood = v
	p.haveGood = true
	p.mu.Unlock()

	p.draw(canvas, v, false)
	return nil
}

func (p *PrometheusDashboard) renderLastGoodOrFail(canvas *imaging.Image) error {
	p.mu.Lock()
	v, ok := p.lastGood, p.haveGood
	p.mu.Unlock()
	if !ok {
		return imagesource.ErrSourceUnavailable
	}
	p.draw(canvas, v, true)
	return nil
}

func extractScalar(value model.Value) (float64, bool) {
	switch v := value.(type) {
	case model.Vector:
		if len(v) == 0 {
			return 0, false
		}
		return float64(v[0].Value), true
	case *model.Scalar:
		return float64(v.Value), true
	default:
		return 0, false
	}
}

func (p *PrometheusDashboard) draw(canvas *imaging.Image, v float64, stale bool) {
	rgba := image.NewRGBA(image.Rect(0, 0, p.width, p.height))
	draw.Draw(rgba, rgba.Bounds(), &image.Uniform{C: color.RGBA{10, 10, 20, 255}}, image.Point{}, draw.Src)

	valueColor := color.RGBA{0, 255, 255, 255}
	if stale {
		valueColor = color.RGBA{255, 100, 0, 255}
	}

	drawText(rgba, 16, 24, p.query, color.RGBA{220, 220, 220, 255})
	drawText(rgba, 16, p.height/2, formatValue(v), valueColor)
	if stale {
		drawText(rgba, 16, p.height-16, "stale", valueColor)
	}

	*canvas = imaging.FromRGBA(rgba)
}

func formatValue(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
