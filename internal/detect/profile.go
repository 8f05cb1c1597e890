package detect

import (
	"sort"

	"gocv.io/x/gocv"
)

// ColumnProfile returns the mean intensity of each image column.
// The input must be a single-channel 8-bit Mat.
func ColumnProfile(gray gocv.Mat) []float64 {
	rows, cols := gray.Rows(), gray.Cols()
	profile := make([]float64, cols)
	if rows == 0 || cols == 0 {
		return profile
	}
	for x := 0; x < cols; x++ {
		var sum int
		for y := 0; y < rows; y++ {
			sum += int(gray.GetUCharAt(y, x))
		}
		profile[x] = float64(sum) / float64(rows)
	}
	return profile
}

// RowProfile returns the mean intensity of each image row.
// The input must be a single-channel 8-bit Mat.
func RowProfile(gray gocv.Mat) []float64 {
	rows, cols := gray.Rows(), gray.Cols()
	profile := make([]float64, rows)
	if rows == 0 || cols == 0 {
		return profile
	}
	for y := 0; y < rows; y++ {
		var sum int
		for x := 0; x < cols; x++ {
			sum += int(gray.GetUCharAt(y, x))
		}
		profile[y] = float64(sum) / float64(cols)
	}
	return profile
}

// Smooth applies a centered moving average of the given window size.
// Windows are truncated at the profile edges.
func Smooth(profile []float64, window int) []float64 {
	n := len(profile)
	if window <= 1 || n == 0 {
		out := make([]float64, n)
		copy(out, profile)
		return out
	}

	out := make([]float64, n)
	half := window / 2
	for i := 0; i < n; i++ {
		lo := max(0, i-half)
		hi := min(n, i-half+window)
		var sum float64
		for j := lo; j < hi; j++ {
			sum += profile[j]
		}
		out[i] = sum / float64(hi-lo)
	}
	return out
}

// FindPeaks returns indices of local maxima with at least the given
// prominence, separated by at least minDistance samples. When two peaks
// fall within minDistance of each other the higher one wins. Indices are
// returned in ascending order. Plateaus report their middle sample.
func FindPeaks(profile []float64, prominence float64, minDistance int) []int {
	candidates := localMaxima(profile)

	// Prominence gate
	var prominent []int
	for _, idx := range candidates {
		if peakProminence(profile, idx) >= prominence {
			prominent = append(prominent, idx)
		}
	}

	if minDistance <= 1 || len(prominent) <= 1 {
		return prominent
	}

	// Distance gate: keep higher peaks first, suppress neighbors.
	order := make([]int, len(prominent))
	copy(order, prominent)
	sort.SliceStable(order, func(i, j int) bool {
		return profile[order[i]] > profile[order[j]]
	})

	suppressed := make(map[int]bool)
	var kept []int
	for _, idx := range order {
		if suppressed[idx] {
			continue
		}
		kept = append(kept, idx)
		for _, other := range prominent {
			if other != idx && abs(other-idx) < minDistance {
				suppressed[other] = true
			}
		}
	}

	sort.Ints(kept)
	return kept
}

// FindValleys returns indices of local minima, detected as peaks of the
// inverted profile. Card borders are dark, so column separators show up
// as valleys in the column-mean profile.
func FindValleys(profile []float64, prominence float64, minDistance int) []int {
	inverted := make([]float64, len(profile))
	for i, v := range profile {
		inverted[i] = 255.0 - v
	}
	return FindPeaks(inverted, prominence, minDistance)
}

// localMaxima returns the indices of strict local maxima. A plateau of
// equal values flanked by lower samples counts once, at its midpoint.
func localMaxima(profile []float64) []int {
	n := len(profile)
	var peaks []int
	i := 1
	for i < n-1 {
		if profile[i] <= profile[i-1] {
			i++
			continue
		}
		// Rising edge at i; extend over any plateau.
		j := i
		for j+1 < n && profile[j+1] == profile[i] {
			j++
		}
		if j+1 < n && profile[j+1] < profile[i] {
			peaks = append(peaks, (i+j)/2)
		}
		i = j + 1
	}
	return peaks
}

// peakProminence computes the prominence of the peak at idx: its height
// above the higher of the two bases, where each base is the lowest sample
// between the peak and the nearest strictly higher terrain (or the edge).
func peakProminence(profile []float64, idx int) float64 {
	h := profile[idx]

	leftBase := h
	for i := idx - 1; i >= 0; i-- {
		if profile[i] > h {
			break
		}
		if profile[i] < leftBase {
			leftBase = profile[i]
		}
	}

	rightBase := h
	for i := idx + 1; i < len(profile); i++ {
		if profile[i] > h {
			break
		}
		if profile[i] < rightBase {
			rightBase = profile[i]
		}
	}

	return h - max(leftBase, rightBase)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
