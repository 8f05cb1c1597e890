package detect

// Params configures the column/row title-strip detector.
//
// The pruning and sizing constants are empirically tuned against real
// fanned-layout photographs. Treat them as tunables, not derived values.
type Params struct {
	// Column separator detection (valleys in the column-mean profile).
	ColValleyProminence  float64 // min prominence to count as a separator
	ColValleyMinDistance int     // min px between two separators
	ColSmoothWindow      int     // smoothing window for the column-mean profile

	// Column validation gates.
	ColMinMeanBrightness float64 // darker segments are playmat, not cards
	ColMinWidthPx        int     // a real card column is at least this wide
	ColMinPeaks          int     // a real card column has at least this many title bars

	// Title-bar peak detection (peaks in the row-mean profile).
	RowPeakProminence  float64
	RowPeakMinDistance int
	RowSmoothWindow    int

	// Peak pruning. The gap statistic trims gaps above their 75th
	// percentile before taking the median, so the one oversized gap in
	// front of the fully visible bottom card cannot skew it.
	GapStopFactor  float64 // gap > median*factor ends the column
	GapMergeFactor float64 // gap < median*factor drops a duplicate peak

	// Title strip geometry.
	TitleFraction float64 // strip height as fraction of the mean inter-peak gap
	TitleMinPx    int
	TitleMaxPx    int
	ColXPadding   int // trim left/right of each column before cropping
	PeakTopOffset int // px above the peak row where the strip starts

	// Overlap suppression.
	NMSIoUThreshold float64
}

// DefaultParams returns detection parameters tuned for fanned cube photos.
func DefaultParams() Params {
	return Params{
		ColValleyProminence:  12.0,
		ColValleyMinDistance: 120,
		ColSmoothWindow:      20,
		ColMinMeanBrightness: 60.0,
		ColMinWidthPx:        100,
		ColMinPeaks:          8,
		RowPeakProminence:    15.0,
		RowPeakMinDistance:   50,
		RowSmoothWindow:      8,
		GapStopFactor:        1.55,
		GapMergeFactor:       0.55,
		TitleFraction:        0.40,
		TitleMinPx:           22,
		TitleMaxPx:           80,
		ColXPadding:          4,
		PeakTopOffset:        8,
		NMSIoUThreshold:      0.40,
	}
}
