package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrunePeaks(t *testing.T) {
	const (
		stop  = 1.55
		merge = 0.55
	)

	t.Run("fewer than three peaks pass through", func(t *testing.T) {
		assert.Equal(t, []int{5}, PrunePeaks([]int{5}, stop, merge))
		assert.Equal(t, []int{5, 200}, PrunePeaks([]int{5, 200}, stop, merge))
		assert.Empty(t, PrunePeaks(nil, stop, merge))
	})

	t.Run("uniform spacing is kept whole", func(t *testing.T) {
		peaks := []int{0, 40, 80, 120, 160}
		assert.Equal(t, peaks, PrunePeaks(peaks, stop, merge))
	})

	t.Run("oversized gap ends the column", func(t *testing.T) {
		// Ten title bars spaced 40 apart, then the bottom card's artifact
		// band another 90 below. The 90 gap must not skew the typical-gap
		// estimate, and everything past it is dropped.
		peaks := make([]int, 0, 11)
		for i := 0; i < 10; i++ {
			peaks = append(peaks, i*40)
		}
		peaks = append(peaks, 9*40+90)

		got := PrunePeaks(peaks, stop, merge)
		assert.Equal(t, peaks[:10], got)
	})

	t.Run("near-duplicate peak is dropped and scanning continues", func(t *testing.T) {
		// The 100 sits only 20 past 80, under the merge cutoff; the gap to
		// 140 is then measured from 80, the last kept peak.
		peaks := []int{0, 40, 80, 100, 140}
		got := PrunePeaks(peaks, stop, merge)
		assert.Equal(t, []int{0, 40, 80, 140}, got)
	})

	t.Run("first peak is always kept", func(t *testing.T) {
		peaks := []int{0, 200, 240, 280, 320}
		got := PrunePeaks(peaks, stop, merge)
		assert.Equal(t, 0, got[0])
	})

	t.Run("input order is preserved", func(t *testing.T) {
		peaks := []int{10, 50, 90, 130, 170, 210}
		got := PrunePeaks(peaks, stop, merge)
		for i := 1; i < len(got); i++ {
			assert.Greater(t, got[i], got[i-1])
		}
	})
}

func TestTypicalGap(t *testing.T) {
	t.Run("trims gaps above the 75th percentile", func(t *testing.T) {
		gaps := []float64{40, 40, 40, 40, 40, 40, 40, 40, 40, 90}
		assert.InDelta(t, 40, typicalGap(gaps), 1e-9)
	})

	t.Run("uniform gaps", func(t *testing.T) {
		assert.InDelta(t, 40, typicalGap([]float64{40, 40, 40}), 1e-9)
	})
}
