// Package geoprep holds the directory plumbing shared by the batch utilities:
// listing inputs by extension, preparing output directories and running a
// bounded pool of per-file workers.
package geoprep

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ListFiles returns the regular files directly inside dir whose extension
// matches one of exts (case insensitive), sorted by name. A path to a single
// file is returned as-is when it matches.
func ListFiles(dir string, exts ...string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("[os.Stat] in pkg [geoprep] encountered: %w", err)
	}

	if !info.IsDir() {
		if HasExt(dir, exts...) {
			return []string{dir}, nil
		}
		return nil, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("[os.ReadDir] in pkg [geoprep] encountered: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if HasExt(entry.Name(), exts...) {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)

	return files, nil
}

// HasExt reports whether name ends in one of exts, ignoring case.
// An empty exts matches everything.
func HasExt(name string, exts ...string) bool {
	if len(exts) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range exts {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}

// EnsureDir creates dir and its parents when missing.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("[os.MkdirAll] in pkg [geoprep] encountered: %w", err)
	}
	return nil
}

// OutputPath joins the base name of input onto outDir, with an optional prefix.
func OutputPath(outDir, input, prefix string) string {
	return filepath.Join(outDir, prefix+filepath.Base(input))
}
