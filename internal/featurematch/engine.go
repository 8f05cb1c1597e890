// Package featurematch locates cards by ORB feature matching against
// individually registered reference photos. It is the legacy,
// rotation-invariant alternative to the column/row profile detector and
// suits photos of loose, fully visible cards rather than fanned stacks.
package featurematch

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gocv.io/x/gocv"

	"cube-tracker/internal/detect"
	"cube-tracker/pkg/geometry"
)

// Options configures feature matching.
type Options struct {
	RatioTestThreshold float64 // Lowe's ratio test cutoff
	MinMatches         int     // good matches required to accept a card
	MinCardArea        int     // reject matched regions smaller than this
	MaxCardArea        int     // reject matched regions larger than this
	NMSIoUThreshold    float64 // overlap suppression across references
}

// DefaultOptions returns matching options tuned for phone photos of cards.
func DefaultOptions() Options {
	return Options{
		RatioTestThreshold: 0.75,
		MinMatches:         15,
		MinCardArea:        5000,
		MaxCardArea:        300000,
		NMSIoUThreshold:    0.40,
	}
}

// reference is one registered card: its name and ORB descriptors.
type reference struct {
	name        string
	descriptors gocv.Mat
}

// Engine matches scene photos against registered reference cards. The
// underlying ORB detector and matcher are not reentrant, so calls are
// serialized; one Engine can be shared across concurrent pipeline runs.
type Engine struct {
	mu      sync.Mutex
	orb     gocv.ORB
	matcher gocv.BFMatcher
	opts    Options
	refs    []reference
}

// NewEngine creates an empty feature-matching engine.
func NewEngine(opts Options) *Engine {
	return &Engine{
		orb:     gocv.NewORB(),
		matcher: gocv.NewBFMatcherWithParams(gocv.NormHamming, false),
		opts:    opts,
	}
}

// Close releases the detector, matcher and all registered descriptors.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.refs {
		e.refs[i].descriptors.Close()
	}
	e.refs = nil
	e.orb.Close()
	e.matcher.Close()
}

// Register extracts features from an upright reference photo of one card.
func (e *Engine) Register(imagePath, cardName string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	img := gocv.IMRead(imagePath, gocv.IMReadGrayScale)
	if img.Empty() {
		return fmt.Errorf("could not read reference image: %s", imagePath)
	}
	defer img.Close()

	_, desc := e.orb.DetectAndCompute(img, gocv.NewMat())
	if desc.Empty() {
		desc.Close()
		return fmt.Errorf("no features detected in %s", imagePath)
	}

	e.refs = append(e.refs, reference{name: cardName, descriptors: desc})
	return nil
}

// RegisterDir registers every image in a directory, using the file stem
// as the card name. Unreadable files are logged and skipped.
func (e *Engine) RegisterDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("could not read reference dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		if err := e.Register(filepath.Join(dir, entry.Name()), name); err != nil {
			slog.Warn("skipping reference card", "file", entry.Name(), "error", err)
		}
	}
	slog.Info("reference cards registered", "dir", dir, "cards", len(e.refs))
	return nil
}

// DetectRegions implements detect.RegionDetector. For each registered
// reference it collects the scene keypoints that survive Lowe's ratio
// test; enough survivors mark a present card, and their bounding box
// becomes the region. Area gates drop spurious clusters, then overlap
// suppression resolves references that landed on the same card.
func (e *Engine) DetectRegions(img gocv.Mat, imageName string) ([]geometry.RectInt, error) {
	if img.Empty() {
		return nil, fmt.Errorf("empty image")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	gray := gocv.NewMat()
	defer gray.Close()
	if img.Channels() == 1 {
		img.CopyTo(&gray)
	} else {
		gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)
	}

	sceneKP, sceneDesc := e.orb.DetectAndCompute(gray, gocv.NewMat())
	defer sceneDesc.Close()
	if sceneDesc.Empty() {
		return nil, nil
	}

	var boxes []geometry.RectInt
	for _, ref := range e.refs {
		matches := e.matcher.KnnMatch(ref.descriptors, sceneDesc, 2)

		var matchedPoints []gocv.KeyPoint
		for _, pair := range matches {
			if len(pair) < 2 {
				continue
			}
			if pair[0].Distance < e.opts.RatioTestThreshold*pair[1].Distance {
				matchedPoints = append(matchedPoints, sceneKP[pair[0].TrainIdx])
			}
		}
		if len(matchedPoints) < e.opts.MinMatches {
			continue
		}

		box := keypointBounds(matchedPoints).Clip(img.Cols(), img.Rows())
		area := box.Area()
		if area < e.opts.MinCardArea || area > e.opts.MaxCardArea {
			slog.Debug("matched region rejected by area gate",
				"card", ref.name, "area", area, "matches", len(matchedPoints))
			continue
		}
		boxes = append(boxes, box)
	}

	boxes = detect.SuppressOverlaps(boxes, e.opts.NMSIoUThreshold)
	slog.Info("feature matching finished", "image", imageName, "boxes", len(boxes))
	return boxes, nil
}

// keypointBounds returns the axis-aligned bounding box of the keypoints.
func keypointBounds(points []gocv.KeyPoint) geometry.RectInt {
	if len(points) == 0 {
		return geometry.RectInt{}
	}
	minX, minY := points[0].X, points[0].Y
	maxX, maxY := minX, minY
	for _, p := range points[1:] {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	return geometry.RectInt{
		X:      int(minX),
		Y:      int(minY),
		Width:  int(maxX-minX) + 1,
		Height: int(maxY-minY) + 1,
	}
}
