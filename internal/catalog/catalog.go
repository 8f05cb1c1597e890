// Package catalog resolves noisy OCR output against a set of known
// canonical card names.
package catalog

import (
	"encoding/json"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

// Catalog holds the deduplicated set of known card names. Loading happens
// once, on first use; after that the name set is immutable and safe for
// concurrent readers without locking.
type Catalog struct {
	dir    string
	once   sync.Once
	names  []string
	loaded bool
}

// Match is a resolved card name with a normalized confidence in [0,1].
type Match struct {
	Name  string
	Score float64
}

// New creates a catalog backed by a directory of name lists. Nothing is
// read until the first lookup.
func New(dir string) *Catalog {
	return &Catalog{dir: dir}
}

// Loaded reports whether the load has completed (regardless of how many
// sources succeeded).
func (c *Catalog) Loaded() bool {
	return c.loaded
}

// Names returns the sorted, deduplicated card names, loading on first use.
func (c *Catalog) Names() []string {
	c.ensureLoaded()
	return c.names
}

// Len returns the number of catalog entries.
func (c *Catalog) Len() int {
	c.ensureLoaded()
	return len(c.names)
}

// FuzzyMatch finds the catalog entry most similar to the query using a
// weighted-ratio score. The threshold is on the 0-100 scale; the returned
// confidence is normalized to [0,1]. An empty query, an empty catalog, or
// a best score below the threshold all report no match.
func (c *Catalog) FuzzyMatch(query string, threshold int) (Match, bool) {
	c.ensureLoaded()
	if query == "" || len(c.names) == 0 {
		return Match{}, false
	}

	bestIdx, bestScore := -1, -1
	for i, name := range c.names {
		if score := fuzzy.WRatio(query, name); score > bestScore {
			bestIdx, bestScore = i, score
		}
	}

	if bestScore < threshold {
		return Match{}, false
	}
	return Match{
		Name:  c.names[bestIdx],
		Score: math.Round(float64(bestScore)*10) / 1000,
	}, true
}

// Search returns up to limit catalog names ranked by descending similarity
// to the query, with no threshold cutoff. Intended for autocomplete.
func (c *Catalog) Search(query string, limit int) []string {
	c.ensureLoaded()
	if query == "" || len(c.names) == 0 || limit <= 0 {
		return nil
	}

	type scored struct {
		name  string
		score int
	}
	ranked := make([]scored, len(c.names))
	for i, name := range c.names {
		ranked[i] = scored{name: name, score: fuzzy.WRatio(query, name)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	if limit > len(ranked) {
		limit = len(ranked)
	}
	out := make([]string, limit)
	for i := 0; i < limit; i++ {
		out[i] = ranked[i].name
	}
	return out
}

// ensureLoaded performs the one-time catalog build. Concurrent callers
// block on the same load; none triggers a second build.
func (c *Catalog) ensureLoaded() {
	c.once.Do(func() {
		c.names = loadDir(c.dir)
		c.loaded = true
		slog.Info("card catalog loaded", "dir", c.dir, "names", len(c.names))
	})
}

// loadDir merges every name list in the directory into one deduplicated,
// sorted set. A source that fails to parse is logged and skipped; an
// entirely empty result is legal and simply degrades matching to
// always-miss.
func loadDir(dir string) []string {
	set := make(map[string]struct{})

	jsonFiles, _ := filepath.Glob(filepath.Join(dir, "*.json"))
	for _, path := range jsonFiles {
		if err := loadJSON(path, set); err != nil {
			slog.Warn("skipping catalog source", "path", path, "error", err)
		}
	}

	txtFiles, _ := filepath.Glob(filepath.Join(dir, "*.txt"))
	for _, path := range txtFiles {
		if err := loadText(path, set); err != nil {
			slog.Warn("skipping catalog source", "path", path, "error", err)
		}
	}

	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// loadJSON accepts a list of strings, a list of objects with a "name"
// field, or a Scryfall-style bulk file {"data": [...]}.
func loadJSON(path string, set map[string]struct{}) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return err
	}

	switch v := data.(type) {
	case []any:
		addEntries(v, set)
	case map[string]any:
		if list, ok := v["data"].([]any); ok {
			addEntries(list, set)
		}
	}
	return nil
}

func addEntries(items []any, set map[string]struct{}) {
	for _, item := range items {
		switch e := item.(type) {
		case string:
			addName(e, set)
		case map[string]any:
			if name, ok := e["name"].(string); ok {
				addName(name, set)
			}
		}
	}
}

// addName records one catalog entry. Multi-faced card names ("Front //
// Back") keep only the first face.
func addName(name string, set map[string]struct{}) {
	name, _, _ = strings.Cut(name, " // ")
	name = strings.TrimSpace(name)
	if name != "" {
		set[name] = struct{}{}
	}
}

// loadText reads one name per line, ignoring blank lines and # comments.
func loadText(path string, set map[string]struct{}) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		addName(line, set)
	}
	return nil
}
