// Package fsutil provides the small set of filesystem helpers shared by the
// raw dataset adapters: source-directory validation, glob resolution for
// generations that embed free-form timestamps in filenames, and image-file
// listing for generations that discover their grid from the directory
// contents.
package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// IsDir reports whether path exists and is a directory.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// Exists reports whether path exists.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ValidateSourceDir returns an error if source does not point to an
// existing directory. Every adapter calls this before touching metadata.
func ValidateSourceDir(source string) error {
	if !IsDir(source) {
		return fmt.Errorf("%s does not point to an existing directory", source)
	}
	return nil
}

// FirstMatch returns the lexicographically first path matching the glob
// pattern. ok is false when nothing matches.
func FirstMatch(pattern string) (match string, ok bool, err error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return "", false, fmt.Errorf("bad glob pattern %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		return "", false, nil
	}
	sort.Strings(matches)
	return matches[0], true, nil
}

// Matches returns every path matching the glob pattern, sorted.
func Matches(pattern string) ([]string, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("bad glob pattern %q: %w", pattern, err)
	}
	sort.Strings(matches)
	return matches, nil
}

// ListFilesWithExt returns the names (not paths) of plain files directly
// under dir whose name ends with one of the given extensions. Extensions
// are matched case-sensitively, as written by the instrument software.
func ListFilesWithExt(dir string, exts ...string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		for _, ext := range exts {
			if strings.HasSuffix(e.Name(), ext) {
				names = append(names, e.Name())
				break
			}
		}
	}
	sort.Strings(names)
	return names, nil
}
