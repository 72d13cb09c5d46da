// Package allowlist holds the permitted vehicle models and colors.
// The sets are read once at startup; picking up a changed file needs a restart.
package allowlist

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
)

// Set is an immutable collection of exact, case-sensitive entries.
type Set struct {
	entries map[string]struct{}
}

// Contains reports whether s is an entry of the set.
func (s *Set) Contains(v string) bool {
	_, ok := s.entries[v]
	return ok
}

// Len returns the number of distinct entries.
func (s *Set) Len() int { return len(s.entries) }

// Sorted returns a sorted copy of the entries.
func (s *Set) Sorted() []string {
	out := make([]string, 0, len(s.entries))
	for e := range s.entries {
		out = append(out, e)
	}
	slices.Sort(out)
	return out
}

// ErrEmpty is returned for a source that holds no entries.
var ErrEmpty = errors.New("allowlist: source has no entries")

// Parse reads one entry per line. Surrounding whitespace is trimmed and blank
// lines are skipped.
func Parse(r io.Reader) (*Set, error) {
	entries := make(map[string]struct{})
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		entries[line] = struct{}{}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("allowlist: read: %w", err)
	}
	if len(entries) == 0 {
		return nil, ErrEmpty
	}
	return &Set{entries: entries}, nil
}

// ParseFile is Parse over the file at path.
func ParseFile(path string) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("allowlist: %w", err)
	}
	defer f.Close()

	set, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return set, nil
}

// Store is the pair of vehicle allow-lists. It is read-only and safe for
// concurrent use.
type Store struct {
	models *Set
	colors *Set
}

// New builds a Store from already parsed sets.
func New(models, colors *Set) *Store {
	return &Store{models: models, colors: colors}
}

// Load reads both allow-list files. Any error must stop the process from serving.
func Load(modelsPath, colorsPath string) (*Store, error) {
	models, err := ParseFile(modelsPath)
	if err != nil {
		return nil, fmt.Errorf("car models: %w", err)
	}
	colors, err := ParseFile(colorsPath)
	if err != nil {
		return nil, fmt.Errorf("car colors: %w", err)
	}
	return New(models, colors), nil
}

// ContainsModel reports whether model is permitted.
func (s *Store) ContainsModel(model string) bool { return s.models.Contains(model) }

// ContainsColor reports whether color is permitted.
func (s *Store) ContainsColor(color string) bool { return s.colors.Contains(color) }

// Models returns the permitted models, sorted.
func (s *Store) Models() []string { return s.models.Sorted() }

// Colors returns the permitted colors, sorted.
func (s *Store) Colors() []string { return s.colors.Sorted() }
