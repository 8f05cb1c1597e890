// Package detect locates card title-strip regions in photographs of
// fanned or stacked card columns.
//
// Cards are laid in columns, fanned vertically so only the title bar of
// each card is visible (the bottom card in each column is fully visible).
// The playmat background is dark and card borders are dark too, which
// makes contour detection useless for separating individual cards.
// Instead the detector works on 1-D intensity profiles:
//
//  1. Column separators: dark vertical valleys in the column-mean
//     intensity profile (black card borders create these valleys).
//  2. Column validation: a real card column must be wide enough, bright
//     enough, and produce enough title-bar peaks.
//  3. Title-bar rows: within each validated column strip, bright
//     horizontal peaks in the row-mean profile mark each card's title bar.
//  4. Title strips: one box per pruned peak.
//  5. Overlap suppression: drops duplicate boxes if a column produces
//     slightly too many peaks.
package detect

import (
	"gocv.io/x/gocv"

	"cube-tracker/pkg/geometry"
)

// RegionDetector locates candidate card regions in a photograph. The
// column/row profile detector here and the ORB feature matcher in
// internal/featurematch are alternative strategies for the same job,
// selected by configuration.
type RegionDetector interface {
	// DetectRegions returns title-strip boxes in image coordinates,
	// sorted left-to-right across columns, top-to-bottom within each.
	// Every box is clipped to the image and has positive area.
	DetectRegions(img gocv.Mat, imageName string) ([]geometry.RectInt, error)
}
