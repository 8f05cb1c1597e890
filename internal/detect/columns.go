package detect

import (
	"fmt"
	"image"
	"log/slog"
	"sort"

	"gocv.io/x/gocv"

	"cube-tracker/pkg/geometry"
)

// ColumnDetector finds card title strips via column/row intensity
// profile analysis. It holds no per-image state, so one detector may
// serve concurrent images when its sink tolerates that (NopSink does).
type ColumnDetector struct {
	params Params
	sink   DebugSink
}

// NewColumnDetector creates a detector with the given parameters. A nil
// sink disables debug dumps.
func NewColumnDetector(params Params, sink DebugSink) *ColumnDetector {
	if sink == nil {
		sink = NopSink{}
	}
	return &ColumnDetector{params: params, sink: sink}
}

// DetectRegions implements RegionDetector. Identical image bytes always
// produce an identical box list.
func (d *ColumnDetector) DetectRegions(img gocv.Mat, imageName string) ([]geometry.RectInt, error) {
	if img.Empty() {
		return nil, fmt.Errorf("empty image")
	}
	imgH, imgW := img.Rows(), img.Cols()

	d.sink.SaveImage("00_original", img)

	gray := gocv.NewMat()
	defer gray.Close()
	if img.Channels() == 1 {
		img.CopyTo(&gray)
	} else {
		gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)
	}
	d.sink.SaveImage("01_gray", gray)

	enhanced := d.enhance(gray)
	defer enhanced.Close()
	d.sink.SaveImage("02_enhanced", enhanced)

	// Step 1: column separators.
	colProfile := Smooth(ColumnProfile(enhanced), d.params.ColSmoothWindow)
	separators := FindValleys(colProfile, d.params.ColValleyProminence, d.params.ColValleyMinDistance)
	d.sink.SaveColumnProfile("03_col_profile", colProfile, separators)

	bounds := make([]int, 0, len(separators)+2)
	bounds = append(bounds, 0)
	bounds = append(bounds, separators...)
	bounds = append(bounds, imgW)
	slog.Info("column separators found", "image", imageName,
		"separators", len(separators), "segments", len(bounds)-1)

	// Steps 2+3: validate each segment, find title-bar peaks, build boxes.
	var all []geometry.RectInt
	fallbackTitleH := d.params.TitleMinPx

	for col := 0; col < len(bounds)-1; col++ {
		cx1, cx2 := bounds[col], bounds[col+1]
		if cx2-cx1 < d.params.ColMinWidthPx {
			slog.Debug("column skipped: too narrow", "col", col, "width", cx2-cx1)
			continue
		}

		x1 := cx1 + d.params.ColXPadding
		x2 := cx2 - d.params.ColXPadding
		strip := enhanced.Region(image.Rect(x1, 0, x2, imgH))

		// Brightness gate rejects dark playmat and decorative borders.
		brightness := strip.Mean().Val1
		if brightness < d.params.ColMinMeanBrightness {
			slog.Debug("column skipped: too dark", "col", col, "brightness", brightness)
			strip.Close()
			continue
		}

		rowProfile := Smooth(RowProfile(strip), d.params.RowSmoothWindow)
		strip.Close()

		peaks := FindPeaks(rowProfile, d.params.RowPeakProminence, d.params.RowPeakMinDistance)
		peaks = PrunePeaks(peaks, d.params.GapStopFactor, d.params.GapMergeFactor)
		d.sink.SaveRowProfile(fmt.Sprintf("04_col_%02d_row_profile", col), rowProfile, peaks)

		// Peak count gate rejects regions without enough card rows.
		if len(peaks) < d.params.ColMinPeaks {
			slog.Debug("column skipped: too few peaks", "col", col, "peaks", len(peaks))
			continue
		}
		slog.Debug("column accepted", "col", col, "x1", x1, "x2", x2, "cards", len(peaks))

		// Strip height from the mean inter-peak spacing, clamped.
		// Columns without enough peaks for a spacing estimate reuse the
		// most recent height from a prior column.
		th := fallbackTitleH
		if len(peaks) >= 2 {
			mean := float64(peaks[len(peaks)-1]-peaks[0]) / float64(len(peaks)-1)
			th = int(mean * d.params.TitleFraction)
			th = max(d.params.TitleMinPx, min(th, d.params.TitleMaxPx))
			fallbackTitleH = th
		}

		for _, py := range peaks {
			ty := max(0, py-d.params.PeakTopOffset)
			box := geometry.RectInt{X: x1, Y: ty, Width: x2 - x1, Height: th}.Clip(imgW, imgH)
			if !box.Empty() {
				all = append(all, box)
			}
		}
	}

	all = SuppressOverlaps(all, d.params.NMSIoUThreshold)

	// Reading order: left column first, top-to-bottom within each.
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].X != all[j].X {
			return all[i].X < all[j].X
		}
		return all[i].Y < all[j].Y
	})

	d.sink.SaveBoxes("05_all_title_boxes", img, all)
	slog.Info("detection finished", "image", imageName, "boxes", len(all))
	return all, nil
}

// enhance smooths sensor noise while keeping card borders sharp, then
// boosts local contrast so title bars stand out in the profiles.
func (d *ColumnDetector) enhance(gray gocv.Mat) gocv.Mat {
	bilateral := gocv.NewMat()
	defer bilateral.Close()
	gocv.BilateralFilter(gray, &bilateral, 9, 75, 75)

	clahe := gocv.NewCLAHEWithParams(3.0, image.Pt(8, 8))
	defer clahe.Close()

	enhanced := gocv.NewMat()
	clahe.Apply(bilateral, &enhanced)
	return enhanced
}
