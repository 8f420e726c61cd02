// Package render draws the two-panel analysis image: the velocity trace with
// event markers on top and the spectrogram heat map below.
package render

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"seismicview/domain/seismic"
	"seismicview/internal/analysis"
	"seismicview/internal/errors"
	"seismicview/internal/logging"
)

// Config controls the output geometry.
type Config struct {
	Width          int
	Height         int
	MaxTracePoints int // traces longer than this are min/max decimated
}

// DefaultConfig returns a 1000x800 image with traces decimated above 4000 points
func DefaultConfig() Config {
	return Config{
		Width:          1000,
		Height:         800,
		MaxTracePoints: 4000,
	}
}

var (
	white          = color.RGBA{255, 255, 255, 255}
	black          = color.RGBA{0, 0, 0, 255}
	gridGrey       = color.RGBA{200, 200, 200, 255}
	traceBlue      = color.RGBA{31, 119, 180, 255}
	thresholdColor = color.RGBA{255, 127, 14, 255}
	markerRed      = color.RGBA{255, 0, 0, 255}
	markerGreen    = color.RGBA{0, 128, 0, 255}
)

func markerColor(kind seismic.MarkerKind) color.RGBA {
	if kind == seismic.MarkerOn {
		return markerRed
	}
	return markerGreen
}

// Renderer turns an analysis result into a PNG.
type Renderer struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a renderer. Zero-valued config fields fall back to DefaultConfig.
func New(cfg Config, logger *slog.Logger) *Renderer {
	def := DefaultConfig()
	if cfg.Width <= 0 {
		cfg.Width = def.Width
	}
	if cfg.Height <= 0 {
		cfg.Height = def.Height
	}
	if cfg.MaxTracePoints <= 0 {
		cfg.MaxTracePoints = def.MaxTracePoints
	}
	return &Renderer{cfg: cfg, logger: logging.Component(logger, "render")}
}

// Render writes the PNG for res to w.
func (r *Renderer) Render(ctx context.Context, w io.Writer, res *analysis.Result) error {
	img, err := r.Draw(ctx, res)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return errors.RenderError("failed to encode png", err)
	}
	return nil
}

// Draw composes both panels into a single image without encoding it.
func (r *Renderer) Draw(ctx context.Context, res *analysis.Result) (*image.RGBA, error) {
	if res == nil || res.Spectrogram == nil {
		return nil, errors.RenderError("nothing to render", nil)
	}
	start := time.Now()

	topHeight := r.cfg.Height / 2
	topRect := image.Rect(0, 0, r.cfg.Width, topHeight)
	bottomRect := image.Rect(0, topHeight, r.cfg.Width, r.cfg.Height)

	canvas := image.NewRGBA(image.Rect(0, 0, r.cfg.Width, r.cfg.Height))
	fillRect(canvas, canvas.Bounds(), white)

	var trace image.Image
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		img, err := r.drawTrace(res, topRect.Dx(), topRect.Dy())
		if err != nil {
			return errors.RenderError("failed to draw velocity panel", err)
		}
		trace = img
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		// the bottom panel only touches its own sub-rectangle
		panel := canvas.SubImage(bottomRect).(*image.RGBA)
		drawSpectrogram(panel, newSpectrogramLayout(bottomRect, res.Spectrogram), res)
		return nil
	})
	if err := g.Wait(); err != nil {
		if errors.IsAppError(err) {
			return nil, err
		}
		return nil, errors.RenderError("rendering cancelled", err)
	}

	draw.Draw(canvas, topRect, trace, trace.Bounds().Min, draw.Src)
	drawLegend(canvas, image.Pt(topRect.Min.X+110, topRect.Min.Y+30))

	r.logger.Debug("image rendered",
		slog.Int("width", r.cfg.Width),
		slog.Int("height", r.cfg.Height),
		slog.Int("markers", len(res.Markers)),
		slog.Duration("elapsed", time.Since(start)),
	)
	return canvas, nil
}

type legendEntry struct {
	label  string
	col    color.RGBA
	dashed bool
}

var legendEntries = []legendEntry{
	{"Velocity (m/s)", traceBlue, false},
	{"Threshold", thresholdColor, false},
	{"Threshold (reference)", markerGreen, true},
	{"Event on", markerRed, false},
	{"Event off", markerGreen, false},
}

// drawLegend places the trace legend with its top-left corner at at.
func drawLegend(dst draw.Image, at image.Point) {
	const (
		swatch  = 24
		lineGap = 16
		pad     = 6
	)
	width := 0
	for _, e := range legendEntries {
		if w := textWidth(e.label); w > width {
			width = w
		}
	}
	box := image.Rect(at.X, at.Y, at.X+pad*3+swatch+width, at.Y+pad*2+lineGap*len(legendEntries))
	fillRect(dst, box, white)
	strokeRect(dst, box, gridGrey)

	for i, e := range legendEntries {
		y := box.Min.Y + pad + lineGap*i + lineGap/2
		x0 := box.Min.X + pad
		for x := x0; x < x0+swatch; x++ {
			if e.dashed && (x-x0)%8 >= 5 {
				continue
			}
			dst.Set(x, y, e.col)
			dst.Set(x, y+1, e.col)
		}
		drawText(dst, e.label, x0+swatch+pad, y+textAscent()/2, alignLeft, black)
	}
}
