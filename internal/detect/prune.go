package detect

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// PrunePeaks removes spurious title-bar peaks caused by the fully visible
// card at the bottom of a fanned column, which produces extra bright bands
// below its real title bar.
//
// The typical inter-peak gap is estimated as the median of the gaps at or
// below their 75th percentile, which trims the one oversized gap in front
// of the bottom-card artifact out of the statistic. Peaks are then walked
// in order, always keeping the first: a gap from the previous kept peak
// beyond stopFactor times the typical gap ends the column outright, while
// a gap below mergeFactor times it drops that peak as a near-duplicate and
// keeps scanning. The walk compresses or stops; it never resumes past a
// stop.
func PrunePeaks(peaks []int, stopFactor, mergeFactor float64) []int {
	if len(peaks) < 3 {
		return peaks
	}

	gaps := make([]float64, len(peaks)-1)
	for i := 1; i < len(peaks); i++ {
		gaps[i-1] = float64(peaks[i] - peaks[i-1])
	}

	typical := typicalGap(gaps)

	kept := []int{peaks[0]}
	prev := peaks[0]
	for _, p := range peaks[1:] {
		gap := float64(p - prev)
		if gap > typical*stopFactor {
			break // bottom-card artifact, everything below is noise
		}
		if gap < typical*mergeFactor {
			continue
		}
		kept = append(kept, p)
		prev = p
	}
	return kept
}

// typicalGap returns the median of the gaps at or below their 75th
// percentile. Falls back to the plain median when the trim removes
// everything.
func typicalGap(gaps []float64) float64 {
	sorted := make([]float64, len(gaps))
	copy(sorted, gaps)
	sort.Float64s(sorted)

	q75 := stat.Quantile(0.75, stat.Empirical, sorted, nil)

	var core []float64
	for _, g := range sorted {
		if g <= q75 {
			core = append(core, g)
		}
	}
	if len(core) == 0 {
		core = sorted
	}
	return stat.Quantile(0.5, stat.Empirical, core, nil)
}
