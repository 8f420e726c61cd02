package seismic

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"seismicview/internal/errors"
)

func TestSeriesSampling(t *testing.T) {
	s := Series{Time: []float64{0, 0.25, 0.5, 0.75}, Velocity: []float64{1, 2, 3, 4}}

	assert.Equal(t, 4, s.Len())
	assert.Equal(t, 0.25, s.Interval())
	assert.Equal(t, 4.0, s.SampleRate())
	assert.Equal(t, 0.75, s.Duration())
	assert.NoError(t, s.Validate())
}

func TestSeriesValidate(t *testing.T) {
	tests := []struct {
		name   string
		series Series
		code   string
	}{
		{"single sample", Series{Time: []float64{0}, Velocity: []float64{1}}, errors.CodeInvalidInput},
		{"length mismatch", Series{Time: []float64{0, 1}, Velocity: []float64{1}}, errors.CodeInvalidInput},
		{"nan velocity", Series{Time: []float64{0, 1}, Velocity: []float64{1, math.NaN()}}, errors.CodeInvalidInput},
		{"repeated timestamp", Series{Time: []float64{1, 1, 2}, Velocity: []float64{0, 0, 0}}, errors.CodeDegenerateSampling},
		{"descending time", Series{Time: []float64{2, 1}, Velocity: []float64{0, 0}}, errors.CodeDegenerateSampling},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.series.Validate()
			assert.Error(t, err)
			assert.Equal(t, tt.code, errors.GetCode(err))
		})
	}
}

func TestSampleRateOfShortSeries(t *testing.T) {
	assert.Zero(t, Series{Time: []float64{3}, Velocity: []float64{0}}.SampleRate())
}
