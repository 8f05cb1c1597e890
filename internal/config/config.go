// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Detector selection values.
const (
	DetectorColumns  = "columns"  // column/row profile analysis (default)
	DetectorFeatures = "features" // legacy ORB feature matching
)

// Config holds everything the server needs, with development defaults.
type Config struct {
	Addr        string // HTTP listen address
	DatabaseURL string // postgres URL, or a sqlite path

	UploadDir    string // original uploads
	AnnotatedDir string // rendered annotated previews
	CardDBDir    string // card-name catalog sources (*.json, *.txt)
	ReferenceDir string // registered reference photos for the features detector
	DebugDir     string // detection stage dumps; empty disables them

	Detector       string // DetectorColumns or DetectorFeatures
	FuzzyThreshold int    // fuzzy-match cutoff on the 0-100 scale

	// Area gates used by the features detector only; the column/row
	// detector ignores them (kept for compatibility with older deploys).
	MinCardArea int
	MaxCardArea int

	MaxUploadBytes int64
}

// Load reads configuration from environment variables, falling back to
// development defaults.
func Load() Config {
	return Config{
		Addr:           getenv("ADDR", ":8080"),
		DatabaseURL:    getenv("DATABASE_URL", "cube_tracker.db"),
		UploadDir:      getenv("UPLOAD_DIR", "data/uploads"),
		AnnotatedDir:   getenv("ANNOTATED_DIR", "data/annotated"),
		CardDBDir:      getenv("CARD_DB_DIR", "data/cards"),
		ReferenceDir:   getenv("REFERENCE_DIR", "data/references"),
		DebugDir:       os.Getenv("CHECKIN_DEBUG_DIR"),
		Detector:       getenv("DETECTOR", DetectorColumns),
		FuzzyThreshold: getenvInt("FUZZY_MATCH_THRESHOLD", 70),
		MinCardArea:    getenvInt("MIN_CARD_AREA", 5000),
		MaxCardArea:    getenvInt("MAX_CARD_AREA", 300000),
		MaxUploadBytes: int64(getenvInt("MAX_UPLOAD_BYTES", 16*1024*1024)),
	}
}

// EnsureDirs creates the data directories the service writes to.
func (c Config) EnsureDirs() error {
	for _, dir := range []string{c.UploadDir, c.AnnotatedDir, c.CardDBDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
