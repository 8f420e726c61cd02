package analysis

import (
	"seismicview/domain/seismic"
)

type scanState int

const (
	waitingForOn scanState = iota
	waitingForOff
)

// Scan walks the envelope once and returns the on/off event boundaries.
//
// While waiting for an event, a sample at or above the threshold opens one
// when at least OnFraction of the next OnWindow samples (starting with it)
// are also at or above the threshold. While inside an event, a sample at or
// below the threshold closes it when every one of the next OffWindow samples
// is at or below the threshold. Lookahead windows are cut at the end of the
// series; an empty on window never opens an event. An event still open when
// the series ends is left unterminated.
func Scan(times []float64, env Envelope, p Params) []seismic.Marker {
	values := env.Values
	n := len(values)
	if len(times) < n {
		n = len(times)
	}
	thr := env.Threshold
	onWindow := p.OnWindow(len(values))

	// Prefix counts make every window check O(1).
	atOrAbove := make([]int, n+1)
	atOrBelow := make([]int, n+1)
	for i := 0; i < n; i++ {
		atOrAbove[i+1] = atOrAbove[i]
		atOrBelow[i+1] = atOrBelow[i]
		if values[i] >= thr {
			atOrAbove[i+1]++
		}
		if values[i] <= thr {
			atOrBelow[i+1]++
		}
	}

	var markers []seismic.Marker
	state := waitingForOn
	for i := 0; i < n; i++ {
		switch state {
		case waitingForOn:
			if values[i] < thr {
				continue
			}
			end := min(i+onWindow, n)
			size := end - i
			if size <= 0 {
				continue
			}
			if float64(atOrAbove[end]-atOrAbove[i])/float64(size) >= p.OnFraction {
				markers = append(markers, seismic.Marker{Index: i, Time: times[i], Kind: seismic.MarkerOn})
				state = waitingForOff
			}
		case waitingForOff:
			if values[i] > thr {
				continue
			}
			end := min(i+max(p.OffWindow, 0), n)
			if atOrBelow[end]-atOrBelow[i] == end-i {
				markers = append(markers, seismic.Marker{Index: i, Time: times[i], Kind: seismic.MarkerOff})
				state = waitingForOn
			}
		}
	}
	return markers
}
