// Package manifest walks an input path and emits the ordered list of
// entries to archive, applying include/exclude glob filters against
// archive-relative paths.
package manifest

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"swissarchive/driver"
	L "swissarchive/logger"
)

// Build enumerates every regular file and symlink under root in walk
// order. Directories are skipped; symlinks become entries without
// being followed into. Archive-relative paths strip root itself when
// root is a directory, or root's parent when root is a single file.
//
// A nil include list matches every file; a non-nil empty include list
// matches none. Include globs are OR'ed; any matching exclude glob
// then removes the file. Globs are matched against the forward-slash
// archive-relative path, never the source path. The output follows
// walk order; callers needing a deterministic order must sort.
func Build(root string, includes []string, excludes []string) ([]driver.Entry, error) {
	if err := validatePatterns(includes); err != nil {
		return nil, fmt.Errorf("include globs: %w", err)
	}
	if err := validatePatterns(excludes); err != nil {
		return nil, fmt.Errorf("exclude globs: %w", err)
	}

	info, err := os.Lstat(root)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", root, err)
	}
	base := root
	if !info.IsDir() {
		base = filepath.Dir(root)
	}

	var entries []driver.Entry
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return fmt.Errorf("walking %s: %w", path, walkErr)
		}
		if d.IsDir() {
			return nil
		}
		// sockets, devices and FIFOs have no archive representation
		if !d.Type().IsRegular() && d.Type()&fs.ModeSymlink == 0 {
			L.Warn(fmt.Sprintf("manifest: skipping special file type: %s (mode: %s)", path, d.Type().String()))
			return nil
		}
		relPath, err := filepath.Rel(base, path)
		if err != nil {
			return fmt.Errorf("relativizing %s: %w", path, err)
		}
		archivePath := filepath.ToSlash(relPath)
		if !selected(archivePath, includes, excludes) {
			return nil
		}
		entries = append(entries, driver.Entry{
			ArchivePath: archivePath,
			FilePath:    path,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func validatePatterns(patterns []string) error {
	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid glob pattern %q", pattern)
		}
	}
	return nil
}

func selected(archivePath string, includes []string, excludes []string) bool {
	if includes != nil {
		matched := false
		for _, pattern := range includes {
			if ok, _ := doublestar.Match(pattern, archivePath); ok {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	for _, pattern := range excludes {
		if ok, _ := doublestar.Match(pattern, archivePath); ok {
			return false
		}
	}
	return true
}
