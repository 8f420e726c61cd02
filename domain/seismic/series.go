// Package seismic holds the value types shared by ingestion, analysis and
// rendering of seismic velocity recordings.
package seismic

import (
	"fmt"
	"math"

	"seismicview/internal/errors"
)

// Column headers required in uploaded recordings. Matching is exact.
const (
	TimeColumn     = "time_rel(sec)"
	VelocityColumn = "velocity(m/s)"
)

// Series is a uniformly sampled velocity recording.
type Series struct {
	Time     []float64 // seconds relative to the recording start
	Velocity []float64 // m/s
}

// Len returns the number of samples
func (s Series) Len() int {
	return len(s.Time)
}

// Interval returns the sampling interval derived from the first two samples
func (s Series) Interval() float64 {
	if len(s.Time) < 2 {
		return 0
	}
	return s.Time[1] - s.Time[0]
}

// SampleRate returns 1 / Interval
func (s Series) SampleRate() float64 {
	dt := s.Interval()
	if dt == 0 {
		return 0
	}
	return 1 / dt
}

// Duration returns the span between the first and last sample
func (s Series) Duration() float64 {
	if len(s.Time) == 0 {
		return 0
	}
	return s.Time[len(s.Time)-1] - s.Time[0]
}

// Validate checks the invariants analysis relies on.
func (s Series) Validate() error {
	if len(s.Time) != len(s.Velocity) {
		return errors.InvalidInput(fmt.Sprintf("time and velocity columns differ in length (%d vs %d)", len(s.Time), len(s.Velocity)))
	}
	if len(s.Time) < 2 {
		return errors.InvalidInput(fmt.Sprintf("at least 2 samples are required, got %d", len(s.Time)))
	}
	for i := range s.Time {
		if !isFinite(s.Time[i]) || !isFinite(s.Velocity[i]) {
			return errors.InvalidInput(fmt.Sprintf("non-finite value at row %d", i+1))
		}
	}
	if dt := s.Interval(); dt <= 0 {
		return errors.DegenerateSampling(fmt.Sprintf("sampling interval must be positive, got %g", dt))
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// MarkerKind distinguishes the start and the end of an event
type MarkerKind string

const (
	MarkerOn  MarkerKind = "on"
	MarkerOff MarkerKind = "off"
)

// Marker is a detected event boundary.
type Marker struct {
	Index int        `json:"index"`
	Time  float64    `json:"time"`
	Kind  MarkerKind `json:"kind"`
}

// Upload describes a stored input file. Filename is the name the client
// sent and is never used to build a path.
type Upload struct {
	ID          string `json:"id"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	Path        string `json:"-"`
}
