package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "cube_tracker.db", cfg.DatabaseURL)
	assert.Equal(t, DetectorColumns, cfg.Detector)
	assert.Equal(t, 70, cfg.FuzzyThreshold)
	assert.Equal(t, int64(16*1024*1024), cfg.MaxUploadBytes)
	assert.Empty(t, cfg.DebugDir)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("ADDR", ":9999")
	t.Setenv("DETECTOR", DetectorFeatures)
	t.Setenv("FUZZY_MATCH_THRESHOLD", "85")
	t.Setenv("CHECKIN_DEBUG_DIR", "/tmp/debug")

	cfg := Load()
	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, DetectorFeatures, cfg.Detector)
	assert.Equal(t, 85, cfg.FuzzyThreshold)
	assert.Equal(t, "/tmp/debug", cfg.DebugDir)
}

func TestLoadBadIntFallsBack(t *testing.T) {
	t.Setenv("FUZZY_MATCH_THRESHOLD", "not-a-number")
	cfg := Load()
	assert.Equal(t, 70, cfg.FuzzyThreshold)
}

func TestEnsureDirs(t *testing.T) {
	base := t.TempDir()
	cfg := Config{
		UploadDir:    filepath.Join(base, "uploads"),
		AnnotatedDir: filepath.Join(base, "annotated"),
		CardDBDir:    filepath.Join(base, "cards"),
	}
	require.NoError(t, cfg.EnsureDirs())

	assert.DirExists(t, cfg.UploadDir)
	assert.DirExists(t, cfg.AnnotatedDir)
	assert.DirExists(t, cfg.CardDBDir)
}
