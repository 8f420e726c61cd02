// Package analysis detects sustained high-amplitude events in a velocity
// recording and computes its spectrogram.
package analysis

import (
	"math"

	"github.com/montanaflynn/stats"

	"seismicview/internal/errors"
)

// Params holds the detector constants. They were calibrated empirically and
// are kept exactly; DefaultParams is what the service runs with.
type Params struct {
	MeanScale        float64 // raw mean multiplier before the two divisions below
	ThresholdDivisor float64
	OffsetDivisor    float64
	OnWindowDivisor  int     // on lookahead = len(series) / OnWindowDivisor
	OffWindow        int     // off lookahead in samples
	OnFraction       float64 // share of the on lookahead that must reach the threshold
}

// DefaultParams returns the calibrated detector constants.
func DefaultParams() Params {
	return Params{
		MeanScale:        10,
		ThresholdDivisor: 1.5,
		OffsetDivisor:    5,
		OnWindowDivisor:  143,
		OffWindow:        3000,
		OnFraction:       0.65,
	}
}

// OnWindow returns the on lookahead length for a series of n samples.
func (p Params) OnWindow(n int) int {
	if p.OnWindowDivisor <= 0 {
		return 0
	}
	return n / p.OnWindowDivisor
}

// Envelope is the offset absolute amplitude of a velocity trace together
// with the threshold it is compared against.
type Envelope struct {
	RawMean   float64   // mean(|v|)
	Threshold float64   // RawMean * MeanScale / ThresholdDivisor
	Offset    float64   // RawMean * MeanScale / OffsetDivisor
	Values    []float64 // |v[i]| - Offset
}

// BuildEnvelope computes the envelope and threshold of velocity.
func BuildEnvelope(velocity []float64, p Params) (Envelope, error) {
	abs := make(stats.Float64Data, len(velocity))
	for i, v := range velocity {
		abs[i] = math.Abs(v)
	}

	rawMean, err := stats.Mean(abs)
	if err != nil {
		return Envelope{}, errors.Wrap(errors.InvalidInput("velocity column is empty"), "build envelope")
	}

	scaled := rawMean * p.MeanScale
	env := Envelope{
		RawMean:   rawMean,
		Threshold: scaled / p.ThresholdDivisor,
		Offset:    scaled / p.OffsetDivisor,
		Values:    make([]float64, len(abs)),
	}
	for i, a := range abs {
		env.Values[i] = a - env.Offset
	}
	return env, nil
}
