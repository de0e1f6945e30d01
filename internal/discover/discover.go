// Package discover walks a source tree and collects analyzable files in a
// deterministic depth-first order.
package discover

import (
	"io/fs"
	"path/filepath"
	"strings"

	"callflow/internal/logging"
)

// File is one discovered source file.
type File struct {
	// AbsPath is the absolute path on disk.
	AbsPath string
	// RelPath is the root-relative path with forward slashes.
	RelPath string
}

// Walker discovers source files under a root directory.
type Walker struct {
	extensions map[string]struct{}
	ignoreDirs map[string]struct{}
	logger     *logging.Logger
}

// NewWalker creates a walker for the given extensions and ignored directories.
func NewWalker(extensions, ignoreDirs []string, logger *logging.Logger) *Walker {
	w := &Walker{
		extensions: make(map[string]struct{}, len(extensions)),
		ignoreDirs: make(map[string]struct{}, len(ignoreDirs)),
		logger:     logger,
	}
	for _, ext := range extensions {
		w.extensions[strings.ToLower(ext)] = struct{}{}
	}
	for _, dir := range ignoreDirs {
		w.ignoreDirs[dir] = struct{}{}
	}
	return w
}

// Discover returns all matching files under root in walk order.
// Unreadable entries are skipped silently; traversal continues into siblings.
func (w *Walker) Discover(root string) ([]File, error) {
	var files []File

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Permission or I/O error: skip the offending subtree.
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path == root {
				return nil
			}
			if w.skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if _, ok := w.extensions[ext]; !ok {
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}

		files = append(files, File{
			AbsPath: path,
			RelPath: filepath.ToSlash(rel),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	if w.logger != nil {
		w.logger.Debug("Discovery completed", map[string]interface{}{
			"root":  root,
			"files": len(files),
		})
	}

	return files, nil
}

// skipDir reports whether a directory should be excluded from traversal.
// Dot-directories and configured ignore directories are skipped.
func (w *Walker) skipDir(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	_, ok := w.ignoreDirs[name]
	return ok
}
