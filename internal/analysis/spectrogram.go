package analysis

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"seismicview/internal/errors"
)

const (
	segmentLength = 256
	tukeyAlpha    = 0.25
)

// Spectrogram is a one-sided power spectral density over time.
type Spectrogram struct {
	Frequencies []float64   // Hz, bin k = k*fs/nperseg
	Times       []float64   // seconds, segment centres
	Power       [][]float64 // [frequency][time], (m/s)^2/Hz
	SegmentLen  int
	Overlap     int
}

// ComputeSpectrogram splits v into Tukey-windowed segments of 256 samples
// (fewer when v is shorter) overlapping by an eighth, removes each segment's
// mean and returns the density-scaled one-sided power of each segment.
func ComputeSpectrogram(v []float64, fs float64) (*Spectrogram, error) {
	if fs <= 0 || math.IsNaN(fs) || math.IsInf(fs, 0) {
		return nil, errors.DegenerateSampling(fmt.Sprintf("sampling rate must be positive and finite, got %g", fs))
	}
	n := len(v)
	if n == 0 {
		return nil, errors.InvalidInput("cannot compute spectrogram of an empty series")
	}

	nperseg := min(segmentLength, n)
	noverlap := nperseg / 8
	step := nperseg - noverlap
	nseg := (n - noverlap) / step

	win := tukey(nperseg)
	energy := floats.Dot(win, win)
	if energy == 0 {
		return nil, errors.InvalidInput(fmt.Sprintf("window of %d samples has no energy", nperseg))
	}
	scale := 1 / (fs * energy)

	nfreq := nperseg/2 + 1
	spec := &Spectrogram{
		Frequencies: make([]float64, nfreq),
		Times:       make([]float64, nseg),
		Power:       make([][]float64, nfreq),
		SegmentLen:  nperseg,
		Overlap:     noverlap,
	}
	for k := range spec.Frequencies {
		spec.Frequencies[k] = float64(k) * fs / float64(nperseg)
		spec.Power[k] = make([]float64, nseg)
	}

	fft := fourier.NewFFT(nperseg)
	seg := make([]float64, nperseg)
	coeffs := make([]complex128, nfreq)
	for s := 0; s < nseg; s++ {
		start := s * step
		copy(seg, v[start:start+nperseg])

		mean := stat.Mean(seg, nil)
		for i := range seg {
			seg[i] = (seg[i] - mean) * win[i]
		}

		coeffs = fft.Coefficients(coeffs, seg)
		for k, c := range coeffs {
			p := math.Pow(cmplx.Abs(c), 2) * scale
			// Fold the negative frequencies in; DC and an even-length
			// Nyquist bin have no mirror.
			if k > 0 && !(nperseg%2 == 0 && k == nfreq-1) {
				p *= 2
			}
			spec.Power[k][s] = p
		}
		spec.Times[s] = (float64(start) + float64(nperseg)/2) / fs
	}

	return spec, nil
}

// LogPower returns log10 of the power matrix. Zero bins are floored at the
// smallest positive power so the result stays finite.
func (s *Spectrogram) LogPower() [][]float64 {
	floor := math.Inf(1)
	for _, row := range s.Power {
		for _, p := range row {
			if p > 0 && p < floor {
				floor = p
			}
		}
	}
	if math.IsInf(floor, 1) {
		floor = math.SmallestNonzeroFloat64
	}

	out := make([][]float64, len(s.Power))
	for k, row := range s.Power {
		out[k] = make([]float64, len(row))
		for j, p := range row {
			out[k][j] = math.Log10(math.Max(p, floor))
		}
	}
	return out
}

// PeakFrequency returns the frequency holding the most total power.
func (s *Spectrogram) PeakFrequency() float64 {
	best, bestSum := 0, math.Inf(-1)
	for k, row := range s.Power {
		if sum := floats.Sum(row); sum > bestSum {
			best, bestSum = k, sum
		}
	}
	if len(s.Frequencies) == 0 {
		return 0
	}
	return s.Frequencies[best]
}

// tukey returns the periodic Tukey window of length n: the symmetric
// window of length n+1 with its last tap dropped.
func tukey(n int) []float64 {
	coeffs := make([]float64, n+1)
	for i := range coeffs {
		coeffs[i] = 1
	}
	if n < 2 {
		return coeffs[:n]
	}
	return window.Tukey{Alpha: tukeyAlpha}.Transform(coeffs)[:n]
}
