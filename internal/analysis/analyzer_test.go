package analysis

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seismicview/domain/seismic"
	"seismicview/internal/errors"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAnalyze(t *testing.T) {
	v := make([]float64, 1430)
	for i := 100; i < 200; i++ {
		v[i] = 1
	}
	series := seismic.Series{Time: indexTimes(len(v), 0.5), Velocity: v}

	result, err := NewAnalyzer(quietLogger()).Analyze(context.Background(), series)
	require.NoError(t, err)

	assert.Equal(t, 2.0, result.SampleRate())
	assert.Len(t, result.Envelope.Values, len(v))
	require.Len(t, result.Markers, 2)
	assert.Equal(t, seismic.MarkerOn, result.Markers[0].Kind)
	assert.Equal(t, seismic.MarkerOff, result.Markers[1].Kind)
	require.NotNil(t, result.Spectrogram)
	assert.NotEmpty(t, result.Spectrogram.Times)
}

func TestAnalyzeRejectsInvalidSeries(t *testing.T) {
	a := NewAnalyzer(quietLogger())

	_, err := a.Analyze(context.Background(), seismic.Series{Time: []float64{0}, Velocity: []float64{1}})
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	_, err = a.Analyze(context.Background(), seismic.Series{Time: []float64{0, 0, 1}, Velocity: []float64{1, 2, 3}})
	require.Error(t, err)
	assert.Equal(t, errors.CodeDegenerateSampling, errors.GetCode(err))
}

func TestAnalyzeHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	series := seismic.Series{Time: indexTimes(500, 1), Velocity: make([]float64, 500)}
	_, err := NewAnalyzer(quietLogger()).Analyze(ctx, series)
	assert.ErrorIs(t, err, context.Canceled)
}
