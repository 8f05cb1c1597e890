// Package checkin orchestrates the cube check-in pipeline: detect title
// strips, extract and resolve card names, and build persistable card
// records with annotated previews.
package checkin

import (
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"path/filepath"

	"gocv.io/x/gocv"

	"cube-tracker/internal/catalog"
	"cube-tracker/internal/detect"
	"cube-tracker/internal/ocr"
	"cube-tracker/internal/store"
	"cube-tracker/pkg/geometry"
)

// ErrUnreadableImage is returned when the uploaded file cannot be decoded.
// It is fatal for that upload; there are no partial results.
var ErrUnreadableImage = errors.New("could not read image")

// Regions smaller than this carry no usable title text and are silently
// dropped rather than reported as failed candidates.
const (
	minRegionWidth  = 10
	minRegionHeight = 5
)

const thumbnailMaxSize = 120

// Annotation colors keyed to resolution state.
var (
	colorConfirmed  = color.RGBA{R: 34, G: 197, B: 94, A: 255}
	colorRecognized = color.RGBA{R: 251, G: 191, B: 36, A: 255}
	colorUnresolved = color.RGBA{R: 239, G: 68, B: 68, A: 255}
)

// Service runs the detection-and-recognition pipeline for one cube
// check-in. It holds no per-image state, so a single Service may process
// uploads concurrently; the OCR engine serializes itself.
type Service struct {
	detector       detect.RegionDetector
	engine         *ocr.Engine
	catalog        *catalog.Catalog
	fuzzyThreshold int
}

// New assembles the pipeline. The fuzzy threshold is on the 0-100 scale.
func New(detector detect.RegionDetector, engine *ocr.Engine, cat *catalog.Catalog, fuzzyThreshold int) *Service {
	return &Service{
		detector:       detector,
		engine:         engine,
		catalog:        cat,
		fuzzyThreshold: fuzzyThreshold,
	}
}

// ProcessImage runs the full pipeline on one uploaded photo and returns
// the detected cards, not yet persisted. An unreadable image is an error;
// zero detections is a successful empty list.
func (s *Service) ProcessImage(path string, cube *store.Cube) ([]store.Card, error) {
	img := gocv.IMRead(path, gocv.IMReadColor)
	if img.Empty() {
		return nil, fmt.Errorf("%w: %s", ErrUnreadableImage, path)
	}
	defer img.Close()

	boxes, err := s.detector.DetectRegions(img, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("region detection failed: %w", err)
	}
	slog.Info("detected card regions", "cube", cube.ID, "image", path, "regions", len(boxes))

	cards := make([]store.Card, 0, len(boxes))
	for _, box := range boxes {
		card, ok := s.processRegion(img, box, cube.ID)
		if ok {
			cards = append(cards, card)
		}
	}

	matched := 0
	for i := range cards {
		if cards[i].RecognizedName != nil {
			matched++
		}
	}
	slog.Info("processed cards", "cube", cube.ID, "cards", len(cards), "matched", matched)
	return cards, nil
}

// AnalyzeRegion runs text extraction and name resolution on a single
// caller-supplied region, bypassing detection.
func (s *Service) AnalyzeRegion(path string, bbox geometry.RectInt, cube *store.Cube) (*store.Card, error) {
	img := gocv.IMRead(path, gocv.IMReadColor)
	if img.Empty() {
		return nil, fmt.Errorf("%w: %s", ErrUnreadableImage, path)
	}
	defer img.Close()

	card, ok := s.processRegion(img, bbox, cube.ID)
	if !ok {
		return nil, fmt.Errorf("region %dx%d at (%d,%d) is too small to analyze",
			bbox.Width, bbox.Height, bbox.X, bbox.Y)
	}
	return &card, nil
}

// processRegion crops one title strip, runs OCR and fuzzy matching, and
// assembles a card record. A recognition miss still yields a card (raw
// text kept, name nil, confidence 0) for human review; only degenerate
// regions report ok=false.
func (s *Service) processRegion(img gocv.Mat, bbox geometry.RectInt, cubeID uint) (store.Card, bool) {
	clipped := bbox.Clip(img.Cols(), img.Rows())
	if clipped.Width < minRegionWidth || clipped.Height < minRegionHeight {
		return store.Card{}, false
	}

	region := img.Region(image.Rect(clipped.X, clipped.Y, clipped.Right(), clipped.Bottom()))
	strip := region.Clone()
	region.Close()
	defer strip.Close()

	rawText := s.engine.ReadText(strip)

	var recognized *string
	var score float64
	if rawText != "" {
		if m, ok := s.catalog.FuzzyMatch(rawText, s.fuzzyThreshold); ok {
			recognized = &m.Name
			score = m.Score
		}
	}

	card := store.Card{
		CubeID:          cubeID,
		RawOCRText:      rawText,
		RecognizedName:  recognized,
		MatchScore:      score,
		Status:          store.CardDetected,
		BBoxX:           clipped.X,
		BBoxY:           clipped.Y,
		BBoxWidth:       clipped.Width,
		BBoxHeight:      clipped.Height,
		ThumbnailBase64: thumbnailBase64(strip),
	}
	card.SetPolygon(clipped.Corners())
	return card, true
}

// RenderAnnotatedImage draws each card's box and best available name onto
// a copy of the source photo and writes it to outputPath. Green marks
// confirmed names, amber recognized-unconfirmed, red unresolved. Pure
// rendering side effect; no card is mutated. Returns false on any failure.
func (s *Service) RenderAnnotatedImage(path string, cards []store.Card, outputPath string) bool {
	img := gocv.IMRead(path, gocv.IMReadColor)
	if img.Empty() {
		slog.Error("annotation source unreadable", "path", path)
		return false
	}
	defer img.Close()

	for i := range cards {
		card := &cards[i]
		box := card.BBox()

		var c color.RGBA
		switch {
		case card.ConfirmedName != nil && *card.ConfirmedName != "":
			c = colorConfirmed
		case card.RecognizedName != nil && *card.RecognizedName != "":
			c = colorRecognized
		default:
			c = colorUnresolved
		}

		gocv.Rectangle(&img, image.Rect(box.X, box.Y, box.Right(), box.Bottom()), c, 2)
		drawLabel(&img, card.DisplayName(), box, c)
	}

	if ok := gocv.IMWriteWithParams(outputPath, img, []int{gocv.IMWriteJpegQuality, 90}); !ok {
		slog.Error("failed to write annotated image", "path", outputPath)
		return false
	}
	return true
}

// drawLabel paints a filled name tag just above the box.
func drawLabel(img *gocv.Mat, name string, box geometry.RectInt, c color.RGBA) {
	const (
		font      = gocv.FontHersheySimplex
		fontScale = 0.55
		thickness = 1
	)
	size := gocv.GetTextSize(name, font, fontScale, thickness)
	labelY := max(0, box.Y-4)

	gocv.Rectangle(img,
		image.Rect(box.X, labelY-size.Y-6, box.X+size.X+6, labelY+2), c, -1)

	textColor := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	if c == colorRecognized {
		// Dark text reads better on the amber tag.
		textColor = color.RGBA{R: 30, G: 30, B: 30, A: 255}
	}
	gocv.PutText(img, name, image.Pt(box.X+3, labelY-4), font, fontScale, textColor, thickness)
}

// UpdateCardName applies an operator-confirmed name. The caller persists.
func (s *Service) UpdateCardName(card *store.Card, confirmedName string) {
	card.ConfirmedName = &confirmedName
	card.Status = store.CardConfirmed
}

// FinalizeCube marks the cube checked in and fixes its card counts.
func (s *Service) FinalizeCube(cube *store.Cube, cards []store.Card) {
	cube.Status = store.CubeCheckedIn
	cube.TotalCards = len(cards)
	confirmed := 0
	for i := range cards {
		if cards[i].ConfirmedName != nil && *cards[i].ConfirmedName != "" {
			confirmed++
		}
	}
	cube.CardsConfirmed = confirmed
}

// thumbnailBase64 encodes a small JPEG preview of the strip for transport.
func thumbnailBase64(img gocv.Mat) string {
	h, w := img.Rows(), img.Cols()
	if h == 0 || w == 0 {
		return ""
	}

	scale := min(float64(thumbnailMaxSize)/float64(w), float64(thumbnailMaxSize)/float64(h), 1.0)
	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(img, &resized,
		image.Pt(max(1, int(float64(w)*scale)), max(1, int(float64(h)*scale))),
		0, 0, gocv.InterpolationArea)

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, resized, []int{gocv.IMWriteJpegQuality, 75})
	if err != nil {
		slog.Debug("thumbnail encode failed", "error", err)
		return ""
	}
	defer buf.Close()
	return base64.StdEncoding.EncodeToString(buf.GetBytes())
}
