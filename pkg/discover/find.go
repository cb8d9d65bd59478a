package discover

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/chemflow/orcakit/pkg/orca"
)

// ErrNotDirectory is returned when the search root is not a directory.
var ErrNotDirectory = fmt.Errorf("%w: not a directory", orca.ErrConfiguration)

// Find returns the regular files under root matching cfg, sorted, as paths
// joined onto root.
func Find(root string, cfg Config) ([]string, error) {
	m, err := New(cfg)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: folder %s does not exist", orca.ErrConfiguration, root)
		}
		return nil, fmt.Errorf("stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, root)
	}

	fsys := os.DirFS(root)
	seen := make(map[string]struct{})
	var rels []string
	for _, pattern := range m.includes {
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, &PatternError{Pattern: pattern, Err: err}
		}
		for _, rel := range matches {
			if _, dup := seen[rel]; dup || !m.Match(rel) {
				continue
			}
			seen[rel] = struct{}{}
			rels = append(rels, rel)
		}
	}

	sort.Strings(rels)
	paths := make([]string, len(rels))
	for i, rel := range rels {
		paths[i] = filepath.Join(root, filepath.FromSlash(rel))
	}
	return paths, nil
}

// FindPattern is Find with a single include pattern; empty means
// DefaultPattern.
func FindPattern(root, pattern string) ([]string, error) {
	if strings.TrimSpace(pattern) == "" {
		pattern = DefaultPattern
	}
	return Find(root, Config{Includes: []string{pattern}})
}

// OutputPath returns <outDir>/<stem><ext>, or the geometry's own directory
// when outDir is empty.
func OutputPath(geomPath, outDir, ext string) string {
	base := filepath.Base(geomPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	dir := outDir
	if dir == "" {
		dir = filepath.Dir(geomPath)
	}
	return filepath.Join(dir, stem+ext)
}
