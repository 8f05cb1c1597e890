package detect

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"

	"gocv.io/x/gocv"

	"cube-tracker/pkg/geometry"
)

// DebugSink receives labeled intermediate results from the detection
// pipeline. Implementations must tolerate being called with views into
// pipeline-owned Mats and must not retain them.
type DebugSink interface {
	SaveImage(label string, img gocv.Mat)
	SaveColumnProfile(label string, profile []float64, separators []int)
	SaveRowProfile(label string, profile []float64, peaks []int)
	SaveBoxes(label string, base gocv.Mat, boxes []geometry.RectInt)
}

// NopSink discards everything. It is the default in production.
type NopSink struct{}

func (NopSink) SaveImage(string, gocv.Mat)                  {}
func (NopSink) SaveColumnProfile(string, []float64, []int)  {}
func (NopSink) SaveRowProfile(string, []float64, []int)     {}
func (NopSink) SaveBoxes(string, gocv.Mat, []geometry.RectInt) {}

// DirSink writes each labeled stage as a JPEG under <base>/<stem>/.
type DirSink struct {
	root string
}

// NewDirSink creates the dump directory for one image.
func NewDirSink(baseDir, stem string) (*DirSink, error) {
	root := filepath.Join(baseDir, stem)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create debug dir: %w", err)
	}
	slog.Info("detection debug dumps enabled", "dir", root)
	return &DirSink{root: root}, nil
}

func (s *DirSink) SaveImage(label string, img gocv.Mat) {
	s.write(label, img)
}

// SaveColumnProfile plots the smoothed column-mean intensity curve with a
// red vertical line at each detected separator.
func (s *DirSink) SaveColumnProfile(label string, profile []float64, separators []int) {
	const plotH = 300
	w := len(profile)
	if w == 0 {
		return
	}
	plot := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(30, 30, 30, 0), plotH, w, gocv.MatTypeCV8UC3)
	defer plot.Close()

	curve := color.RGBA{R: 200, G: 200, B: 200, A: 255}
	for x := 0; x < w-1; x++ {
		y1 := plotH - int(profile[x]/255*(plotH-10)) - 5
		y2 := plotH - int(profile[x+1]/255*(plotH-10)) - 5
		gocv.Line(&plot, image.Pt(x, y1), image.Pt(x+1, y2), curve, 1)
	}
	sep := color.RGBA{R: 255, A: 255}
	for _, sx := range separators {
		gocv.Line(&plot, image.Pt(sx, 0), image.Pt(sx, plotH), sep, 2)
		gocv.PutText(&plot, fmt.Sprintf("%d", sx), image.Pt(sx+2, 20),
			gocv.FontHersheySimplex, 0.4, sep, 1)
	}
	s.write(label, plot)
}

// SaveRowProfile plots the row-mean intensity curve sideways with a green
// horizontal line at each detected title-bar peak.
func (s *DirSink) SaveRowProfile(label string, profile []float64, peaks []int) {
	const plotW = 300
	h := len(profile)
	if h == 0 {
		return
	}
	plot := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(30, 30, 30, 0), h, plotW, gocv.MatTypeCV8UC3)
	defer plot.Close()

	curve := color.RGBA{R: 200, G: 200, B: 200, A: 255}
	for y := 0; y < h-1; y++ {
		x1 := int(profile[y]/255*(plotW-10)) + 5
		x2 := int(profile[y+1]/255*(plotW-10)) + 5
		gocv.Line(&plot, image.Pt(x1, y), image.Pt(x2, y+1), curve, 1)
	}
	peak := color.RGBA{R: 50, G: 255, B: 50, A: 255}
	for _, py := range peaks {
		gocv.Line(&plot, image.Pt(0, py), image.Pt(plotW, py), peak, 1)
		gocv.PutText(&plot, fmt.Sprintf("%d", py), image.Pt(5, max(10, py-2)),
			gocv.FontHersheySimplex, 0.35, peak, 1)
	}
	s.write(label, plot)
}

// SaveBoxes draws numbered boxes onto a copy of the base image.
func (s *DirSink) SaveBoxes(label string, base gocv.Mat, boxes []geometry.RectInt) {
	canvas := base.Clone()
	defer canvas.Close()

	green := color.RGBA{R: 50, G: 255, B: 50, A: 255}
	for i, b := range boxes {
		gocv.Rectangle(&canvas, image.Rect(b.X, b.Y, b.Right(), b.Bottom()), green, 2)
		gocv.PutText(&canvas, fmt.Sprintf("%d", i), image.Pt(b.X+3, b.Bottom()-3),
			gocv.FontHersheySimplex, 0.45, green, 1)
	}
	s.write(label, canvas)
}

func (s *DirSink) write(label string, img gocv.Mat) {
	out := img
	var converted gocv.Mat
	if img.Channels() == 1 {
		converted = gocv.NewMat()
		gocv.CvtColor(img, &converted, gocv.ColorGrayToBGR)
		defer converted.Close()
		out = converted
	}
	dest := filepath.Join(s.root, label+".jpg")
	if ok := gocv.IMWriteWithParams(dest, out, []int{gocv.IMWriteJpegQuality, 93}); !ok {
		slog.Warn("failed to write debug image", "path", dest)
	}
}
