package ddr

import "sort"

// Placement is the outcome of the tuner auto-placement algorithm for one
// DDR: whether it fits within the tuner's current span given its peers.
type Placement struct {
	CenterHz float64
	Fits     map[float64]bool
}

// PlaceCenter runs spec.md §4.5's auto-placement rule: repeatedly drop
// whichever end of the sorted frequency set is farthest from the rest
// until the remaining span fits samplerate-25kHz, center on the survivors,
// then nudge the center away from DC if any survivor lands within
// ±12.5kHz of it. Frequencies that get dropped are reported unfit but stay
// in the returned Fits map (spec.md: "DDRs that do not fit ... remain
// registered so that re-tuning may revive them").
func PlaceCenter(freqsHz []float64, sampleRateHz float64) Placement {
	fits := make(map[float64]bool, len(freqsHz))
	for _, f := range freqsHz {
		fits[f] = true
	}
	if len(freqsHz) == 0 {
		return Placement{CenterHz: 0, Fits: fits}
	}

	sorted := append([]float64(nil), freqsHz...)
	sort.Float64s(sorted)

	maxSpan := sampleRateHz - 25000
	for len(sorted) > 1 && sorted[len(sorted)-1]-sorted[0] > maxSpan {
		lo, hi := sorted[0], sorted[len(sorted)-1]
		mid := 0.0
		for _, f := range sorted {
			mid += f
		}
		mid /= float64(len(sorted))
		// Drop whichever endpoint is farther from the midpoint of the
		// remaining set (a proxy for "farthest from the rest").
		if (mid - lo) >= (hi - mid) {
			fits[lo] = false
			sorted = sorted[1:]
		} else {
			fits[hi] = false
			sorted = sorted[:len(sorted)-1]
		}
	}

	center := (sorted[0] + sorted[len(sorted)-1]) / 2

	// Each survivor within ±12.5kHz of the center pushes the center to
	// exactly 12.5kHz on its far side.
	for _, f := range sorted {
		if abs(f-center) < 12500 {
			if f >= center {
				center = f - 12500
			} else {
				center = f + 12500
			}
		}
	}

	for _, f := range sorted {
		half := sampleRateHz/2 - 12500
		if abs(f-center) > half {
			fits[f] = false
		}
	}

	return Placement{CenterHz: center, Fits: fits}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
