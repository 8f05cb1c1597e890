package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestCatalogLoading(t *testing.T) {
	t.Run("merges json and text sources", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "names.json", `["Lightning Bolt", "Counterspell"]`)
		writeFile(t, dir, "extra.txt", "Giant Growth\n\n# a comment\nDark Ritual\n")

		c := New(dir)
		assert.Equal(t, []string{"Counterspell", "Dark Ritual", "Giant Growth", "Lightning Bolt"}, c.Names())
		assert.True(t, c.Loaded())
	})

	t.Run("object lists and bulk files", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "objects.json", `[{"name": "Brainstorm"}, {"name": "Ponder"}]`)
		writeFile(t, dir, "bulk.json", `{"data": [{"name": "Opt"}]}`)

		c := New(dir)
		assert.Equal(t, []string{"Brainstorm", "Opt", "Ponder"}, c.Names())
	})

	t.Run("split faces keep the front and dedupe across sources", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "a.json", `["Delver of Secrets // Insectile Aberration"]`)
		writeFile(t, dir, "b.txt", "Delver of Secrets\n")

		c := New(dir)
		assert.Equal(t, []string{"Delver of Secrets"}, c.Names())
	})

	t.Run("unparseable source is skipped, not fatal", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "bad.json", `{not json`)
		writeFile(t, dir, "good.txt", "Counterspell\n")

		c := New(dir)
		assert.Equal(t, []string{"Counterspell"}, c.Names())
	})

	t.Run("missing directory yields an empty catalog", func(t *testing.T) {
		c := New(filepath.Join(t.TempDir(), "nope"))
		assert.Zero(t, c.Len())
		assert.True(t, c.Loaded())
	})
}

func TestFuzzyMatch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "names.txt", "Lightning Bolt\nCounterspell\nGiant Growth\n")
	c := New(dir)

	t.Run("exact match scores one", func(t *testing.T) {
		m, ok := c.FuzzyMatch("Lightning Bolt", 70)
		require.True(t, ok)
		assert.Equal(t, "Lightning Bolt", m.Name)
		assert.InDelta(t, 1.0, m.Score, 1e-9)
	})

	t.Run("noisy OCR text resolves", func(t *testing.T) {
		m, ok := c.FuzzyMatch("Lightnng Bot", 70)
		require.True(t, ok)
		assert.Equal(t, "Lightning Bolt", m.Name)
		assert.GreaterOrEqual(t, m.Score, 0.70)
	})

	t.Run("threshold enforced", func(t *testing.T) {
		_, ok := c.FuzzyMatch("zzzzqqqq", 70)
		assert.False(t, ok)
	})

	t.Run("empty query never matches", func(t *testing.T) {
		_, ok := c.FuzzyMatch("", 0)
		assert.False(t, ok)
	})

	t.Run("empty catalog never matches", func(t *testing.T) {
		empty := New(t.TempDir())
		_, ok := empty.FuzzyMatch("Lightning Bolt", 0)
		assert.False(t, ok)
	})
}

func TestSearch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "names.txt", "Lightning Bolt\nLightning Strike\nCounterspell\nGiant Growth\n")
	c := New(dir)

	t.Run("ranked by similarity", func(t *testing.T) {
		got := c.Search("Lightning Bolt", 2)
		require.Len(t, got, 2)
		assert.Equal(t, "Lightning Bolt", got[0])
	})

	t.Run("limit caps the result", func(t *testing.T) {
		assert.Len(t, c.Search("Lightning", 3), 3)
		assert.Len(t, c.Search("Lightning", 100), c.Len())
	})

	t.Run("empty query returns nothing", func(t *testing.T) {
		assert.Nil(t, c.Search("", 10))
	})
}
