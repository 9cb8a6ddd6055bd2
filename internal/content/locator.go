package content

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/monsterbox/backend/internal/vntext"
)

// Locator maps normalized document names to source file paths. It is built
// by scanning the content root once at startup and never changes afterwards.
type Locator struct {
	index map[string]string
	keys  []string
	log   *logrus.Entry
}

// NewLocator recursively scans rootDir and registers every regular file with
// the given extension under its normalized base name.
func NewLocator(rootDir, ext string, log *logrus.Entry) (*Locator, error) {
	l := &Locator{
		index: make(map[string]string),
		log:   log,
	}

	log.Infof("Building file index from: %s", rootDir)

	err := filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ext) {
			return nil
		}
		baseName := strings.TrimSuffix(d.Name(), ext)
		l.index[vntext.NormalizeName(baseName)] = path
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan content directory: %w", err)
	}

	// Fallback matching walks the keys in a fixed order: shortest first,
	// then lexicographic. Map iteration order would make multi-match
	// resolution differ between runs.
	l.keys = make([]string, 0, len(l.index))
	for key := range l.index {
		l.keys = append(l.keys, key)
	}
	sort.Slice(l.keys, func(i, j int) bool {
		if len(l.keys[i]) != len(l.keys[j]) {
			return len(l.keys[i]) < len(l.keys[j])
		}
		return l.keys[i] < l.keys[j]
	})

	log.Infof("Indexed %d documents", len(l.index))
	return l, nil
}

// Find resolves a slug to a source file path. Resolution order: exact
// normalized-slug match, exact normalized-title match, then the first key
// related to the slug by a substring in either direction.
func (l *Locator) Find(slug, altTitle string) (string, bool) {
	normalized := vntext.NormalizeName(slug)
	if path, ok := l.index[normalized]; ok {
		return path, true
	}

	if altTitle != "" {
		if path, ok := l.index[vntext.NormalizeName(altTitle)]; ok {
			return path, true
		}
	}

	if normalized != "" {
		for _, key := range l.keys {
			if strings.Contains(key, normalized) || strings.Contains(normalized, key) {
				return l.index[key], true
			}
		}
	}

	return "", false
}

// Size returns the number of indexed documents.
func (l *Locator) Size() int {
	return len(l.index)
}
