package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gocv.io/x/gocv"
)

func TestColumnProfile(t *testing.T) {
	// 2 rows x 3 cols: column means are (10+30)/2, (20+40)/2, (0+255)/2.
	img := gocv.NewMatWithSize(2, 3, gocv.MatTypeCV8U)
	defer img.Close()
	img.SetUCharAt(0, 0, 10)
	img.SetUCharAt(1, 0, 30)
	img.SetUCharAt(0, 1, 20)
	img.SetUCharAt(1, 1, 40)
	img.SetUCharAt(0, 2, 0)
	img.SetUCharAt(1, 2, 255)

	got := ColumnProfile(img)
	assert.Equal(t, []float64{20, 30, 127.5}, got)
}

func TestRowProfile(t *testing.T) {
	img := gocv.NewMatWithSize(2, 2, gocv.MatTypeCV8U)
	defer img.Close()
	img.SetUCharAt(0, 0, 100)
	img.SetUCharAt(0, 1, 200)
	img.SetUCharAt(1, 0, 0)
	img.SetUCharAt(1, 1, 50)

	got := RowProfile(img)
	assert.Equal(t, []float64{150, 25}, got)
}

func TestSmooth(t *testing.T) {
	profile := []float64{0, 0, 10, 0, 0}

	t.Run("window one is a copy", func(t *testing.T) {
		got := Smooth(profile, 1)
		assert.Equal(t, profile, got)
	})

	t.Run("averages over the window", func(t *testing.T) {
		got := Smooth(profile, 3)
		// Edge windows are truncated.
		assert.InDeltaSlice(t, []float64{0, 10.0 / 3, 10.0 / 3, 10.0 / 3, 0}, got, 1e-9)
	})

	t.Run("does not mutate the input", func(t *testing.T) {
		in := []float64{1, 2, 3}
		Smooth(in, 3)
		assert.Equal(t, []float64{1, 2, 3}, in)
	})
}

func TestFindPeaks(t *testing.T) {
	t.Run("simple peak", func(t *testing.T) {
		profile := []float64{0, 5, 50, 5, 0}
		assert.Equal(t, []int{2}, FindPeaks(profile, 10, 1))
	})

	t.Run("prominence gate rejects shallow bumps", func(t *testing.T) {
		profile := []float64{40, 45, 40, 45, 100, 45, 40}
		got := FindPeaks(profile, 20, 1)
		assert.Equal(t, []int{4}, got)
	})

	t.Run("distance gate keeps the higher peak", func(t *testing.T) {
		profile := []float64{0, 80, 0, 100, 0}
		got := FindPeaks(profile, 10, 5)
		assert.Equal(t, []int{3}, got)
	})

	t.Run("plateau reports its midpoint", func(t *testing.T) {
		profile := []float64{0, 50, 50, 50, 0}
		got := FindPeaks(profile, 10, 1)
		assert.Equal(t, []int{2}, got)
	})

	t.Run("results are ascending", func(t *testing.T) {
		profile := []float64{0, 90, 0, 0, 0, 0, 100, 0, 0, 0, 0, 80, 0}
		got := FindPeaks(profile, 10, 3)
		assert.Equal(t, []int{1, 6, 11}, got)
	})

	t.Run("deterministic", func(t *testing.T) {
		profile := []float64{0, 60, 0, 70, 0, 60, 0, 70, 0}
		first := FindPeaks(profile, 10, 2)
		for i := 0; i < 10; i++ {
			assert.Equal(t, first, FindPeaks(profile, 10, 2))
		}
	})

	t.Run("empty and flat profiles", func(t *testing.T) {
		assert.Empty(t, FindPeaks(nil, 10, 1))
		assert.Empty(t, FindPeaks([]float64{5, 5, 5, 5}, 1, 1))
	})
}

func TestFindValleys(t *testing.T) {
	// A dark dip in a bright profile is a valley.
	profile := []float64{200, 200, 40, 200, 200}
	got := FindValleys(profile, 50, 1)
	assert.Equal(t, []int{2}, got)

	// Bright peaks are not valleys.
	assert.Empty(t, FindValleys([]float64{40, 40, 200, 40, 40}, 50, 1))
}
