// Package ocr extracts printed card names from title-strip crops using
// Tesseract.
package ocr

import (
	"fmt"
	"image"
	"log/slog"
	"regexp"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"
	"gocv.io/x/gocv"
)

// CardNameChars is the character set for card title OCR. Card names are
// letters plus a handful of punctuation; numbers and symbols in a result
// are always recognition noise.
const CardNameChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz',- "

// Crops below this size carry too little signal for Tesseract to produce
// anything but noise.
const (
	minCropHeight = 30
	minCropWidth  = 60
)

// targetHeight is the strip height Tesseract works best at; smaller crops
// are upscaled to it before binarization.
const targetHeight = 60

var noiseChars = regexp.MustCompile(`[^A-Za-z ',\-]`)

// Engine performs single-line OCR on title-strip crops. The underlying
// Tesseract client is not reentrant, so calls are serialized; one Engine
// can be shared across concurrent pipeline runs.
type Engine struct {
	mu     sync.Mutex
	client *gosseract.Client
}

// NewEngine creates an OCR engine configured for single text lines.
func NewEngine() (*Engine, error) {
	client := gosseract.NewClient()

	if err := client.SetLanguage("eng"); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set OCR language: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_LINE); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	if err := client.SetWhitelist(CardNameChars); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set character whitelist: %w", err)
	}

	return &Engine{client: client}, nil
}

// Close releases OCR resources.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.client != nil {
		err := e.client.Close()
		e.client = nil
		return err
	}
	return nil
}

// ReadText runs OCR on a title-strip crop and returns the cleaned text.
// Degenerate or unusable crops yield an empty string, never an error:
// a miss is represented by absence of text, not by failure.
func (e *Engine) ReadText(crop gocv.Mat) string {
	if crop.Empty() || crop.Rows() < minCropHeight || crop.Cols() < minCropWidth {
		return ""
	}

	processed := Preprocess(crop)
	defer processed.Close()
	if processed.Empty() {
		return ""
	}

	buf, err := gocv.IMEncode(gocv.PNGFileExt, processed)
	if err != nil {
		slog.Debug("OCR crop encode failed", "error", err)
		return ""
	}
	defer buf.Close()

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.client == nil {
		return ""
	}
	if err := e.client.SetImageFromBytes(buf.GetBytes()); err != nil {
		slog.Debug("OCR set image failed", "error", err)
		return ""
	}
	text, err := e.client.Text()
	if err != nil {
		slog.Debug("OCR failed", "error", err)
		return ""
	}

	return Clean(text)
}

// Preprocess prepares a title-strip crop for Tesseract: upscale small
// strips, flatten to one brightness channel, boost local contrast, denoise,
// then binarize against a local neighborhood mean so uneven photograph
// lighting does not shift the text/background split across the frame.
func Preprocess(crop gocv.Mat) gocv.Mat {
	if crop.Empty() {
		return gocv.NewMat()
	}

	scaled := gocv.NewMat()
	defer scaled.Close()
	if h := crop.Rows(); h < targetHeight {
		scale := float64(targetHeight) / float64(h)
		w := max(1, int(float64(crop.Cols())*scale))
		gocv.Resize(crop, &scaled, image.Pt(w, targetHeight), 0, 0, gocv.InterpolationCubic)
	} else {
		crop.CopyTo(&scaled)
	}

	gray := gocv.NewMat()
	defer gray.Close()
	if scaled.Channels() == 1 {
		scaled.CopyTo(&gray)
	} else {
		gocv.CvtColor(scaled, &gray, gocv.ColorBGRToGray)
	}

	clahe := gocv.NewCLAHEWithParams(3.0, image.Pt(8, 8))
	defer clahe.Close()
	enhanced := gocv.NewMat()
	defer enhanced.Close()
	clahe.Apply(gray, &enhanced)

	denoised := gocv.NewMat()
	defer denoised.Close()
	gocv.FastNlMeansDenoisingWithParams(enhanced, &denoised, 10, 7, 21)

	binary := gocv.NewMat()
	defer binary.Close()
	gocv.AdaptiveThreshold(denoised, &binary, 255,
		gocv.AdaptiveThresholdGaussian, gocv.ThresholdBinary, 15, 8)

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(2, 2))
	defer kernel.Close()
	closed := gocv.NewMat()
	gocv.MorphologyEx(binary, &closed, gocv.MorphClose, kernel)

	return closed
}

// Clean strips OCR noise: characters outside the permitted set are
// removed, runs of whitespace collapse to one space, and the result is
// trimmed.
func Clean(text string) string {
	text = noiseChars.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(text), " ")
}
