package analysis

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"seismicview/domain/seismic"
	"seismicview/internal/errors"
	"seismicview/internal/logging"
)

// Result is everything the renderer needs for one recording.
type Result struct {
	Series      seismic.Series
	Envelope    Envelope
	Markers     []seismic.Marker
	Spectrogram *Spectrogram
}

// SampleRate returns the sampling rate the spectrogram was computed with
func (r *Result) SampleRate() float64 {
	return r.Series.SampleRate()
}

// Analyzer runs envelope building, event scanning and the spectrogram.
type Analyzer struct {
	params Params
	logger *slog.Logger
}

// NewAnalyzer creates an analyzer with the calibrated default constants
func NewAnalyzer(logger *slog.Logger) *Analyzer {
	return NewAnalyzerWithParams(DefaultParams(), logger)
}

// NewAnalyzerWithParams creates an analyzer with explicit constants
func NewAnalyzerWithParams(params Params, logger *slog.Logger) *Analyzer {
	return &Analyzer{
		params: params,
		logger: logging.Component(logger, "analysis"),
	}
}

// Analyze validates series and computes the detection result. The event
// scan and the spectrogram run concurrently.
func (a *Analyzer) Analyze(ctx context.Context, series seismic.Series) (*Result, error) {
	start := time.Now()

	if err := series.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid series")
	}

	env, err := BuildEnvelope(series.Velocity, a.params)
	if err != nil {
		return nil, err
	}

	result := &Result{Series: series, Envelope: env}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		result.Markers = Scan(series.Time, env, a.params)
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		spec, err := ComputeSpectrogram(series.Velocity, series.SampleRate())
		if err != nil {
			return errors.Wrap(err, "compute spectrogram")
		}
		result.Spectrogram = spec
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	a.logger.Debug("analysis complete",
		slog.Int("samples", series.Len()),
		slog.Float64("sample_rate", series.SampleRate()),
		slog.Float64("threshold", env.Threshold),
		slog.Int("markers", len(result.Markers)),
		slog.Int("segments", len(result.Spectrogram.Times)),
		slog.Duration("elapsed", time.Since(start)),
	)
	return result, nil
}
