package ports

import (
	"context"
	"io"

	"seismicview/domain/seismic"
	"seismicview/internal/analysis"
)

// SeriesAnalyzer computes markers and the spectrogram for a recording
type SeriesAnalyzer interface {
	Analyze(ctx context.Context, series seismic.Series) (*analysis.Result, error)
}

// ImageRenderer draws an analysis result as an image
type ImageRenderer interface {
	Render(ctx context.Context, w io.Writer, res *analysis.Result) error
}
