// Command scantest runs title-strip detection on a cube photo and prints
// the results, optionally with OCR and catalog matching.
package main

import (
	"flag"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"gocv.io/x/gocv"
	_ "golang.org/x/image/tiff"

	"cube-tracker/internal/catalog"
	"cube-tracker/internal/detect"
	"cube-tracker/internal/ocr"
)

func main() {
	imagePath := flag.String("image", "", "Path to cube photo (TIFF, PNG, or JPEG)")
	debugDir := flag.String("debug-dir", "", "Directory for detection stage dumps")
	runOCR := flag.Bool("ocr", false, "Run OCR on each detected title strip")
	cardDBDir := flag.String("card-db", "", "Catalog directory for fuzzy matching (implies -ocr)")
	threshold := flag.Int("threshold", 70, "Fuzzy-match cutoff, 0-100")
	flag.Parse()

	if *imagePath == "" {
		fmt.Println("Usage: scantest -image <path> [-debug-dir <dir>] [-ocr] [-card-db <dir>] [-threshold 70]")
		os.Exit(1)
	}

	// Decode once with the image package to validate the file and report
	// its format; detection itself works on the OpenCV decode below.
	f, err := os.Open(*imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open image: %v\n", err)
		os.Exit(1)
	}
	decoded, format, err := image.Decode(f)
	f.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to decode image: %v\n", err)
		os.Exit(1)
	}
	bounds := decoded.Bounds()
	fmt.Printf("Loaded %s image: %dx%d pixels\n", format, bounds.Dx(), bounds.Dy())

	img := gocv.IMRead(*imagePath, gocv.IMReadColor)
	if img.Empty() {
		fmt.Fprintf(os.Stderr, "OpenCV could not read %s\n", *imagePath)
		os.Exit(1)
	}
	defer img.Close()

	params := detect.DefaultParams()
	fmt.Printf("\nDetection parameters:\n")
	fmt.Printf("  Column valleys: prominence %.0f, min distance %d px, smoothing %d\n",
		params.ColValleyProminence, params.ColValleyMinDistance, params.ColSmoothWindow)
	fmt.Printf("  Column gates: width >= %d px, brightness >= %.0f, peaks >= %d\n",
		params.ColMinWidthPx, params.ColMinMeanBrightness, params.ColMinPeaks)
	fmt.Printf("  Row peaks: prominence %.0f, min distance %d px, smoothing %d\n",
		params.RowPeakProminence, params.RowPeakMinDistance, params.RowSmoothWindow)
	fmt.Printf("  Gap pruning: stop > %.2fx, merge < %.2fx typical gap\n",
		params.GapStopFactor, params.GapMergeFactor)
	fmt.Printf("  Title height: %.2f of spacing, clamped %d-%d px\n",
		params.TitleFraction, params.TitleMinPx, params.TitleMaxPx)
	fmt.Printf("  Overlap suppression: IoU >= %.2f\n", params.NMSIoUThreshold)

	var sink detect.DebugSink
	if *debugDir != "" {
		stem := strings.TrimSuffix(filepath.Base(*imagePath), filepath.Ext(*imagePath))
		s, err := detect.NewDirSink(*debugDir, stem)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create debug dir: %v\n", err)
			os.Exit(1)
		}
		sink = s
	}

	detector := detect.NewColumnDetector(params, sink)

	fmt.Printf("\nDetecting title strips...\n")
	boxes, err := detector.DetectRegions(img, filepath.Base(*imagePath))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Detection failed: %v\n", err)
		os.Exit(1)
	}

	var engine *ocr.Engine
	if *runOCR || *cardDBDir != "" {
		engine, err = ocr.NewEngine()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize OCR: %v\n", err)
			os.Exit(1)
		}
		defer engine.Close()
	}

	var cat *catalog.Catalog
	if *cardDBDir != "" {
		cat = catalog.New(*cardDBDir)
		fmt.Printf("Catalog: %d names loaded from %s\n", cat.Len(), *cardDBDir)
	}

	fmt.Printf("\nDetected %d title strips:\n", len(boxes))
	fmt.Printf("%-4s %6s %6s %6s %6s  %-24s %-24s %6s\n",
		"#", "X", "Y", "W", "H", "OCR", "Match", "Score")

	for i, b := range boxes {
		rawText, matchName, score := "", "", 0.0
		if engine != nil {
			region := img.Region(image.Rect(b.X, b.Y, b.Right(), b.Bottom()))
			strip := region.Clone()
			region.Close()
			rawText = engine.ReadText(strip)
			strip.Close()

			if cat != nil && rawText != "" {
				if m, ok := cat.FuzzyMatch(rawText, *threshold); ok {
					matchName, score = m.Name, m.Score
				}
			}
		}
		fmt.Printf("%-4d %6d %6d %6d %6d  %-24s %-24s %6.3f\n",
			i, b.X, b.Y, b.Width, b.Height, clipCol(rawText), clipCol(matchName), score)
	}

	fmt.Printf("\nTotal: %d title strips detected\n", len(boxes))
}

func clipCol(s string) string {
	if len(s) > 24 {
		return s[:21] + "..."
	}
	return s
}
