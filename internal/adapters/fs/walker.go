// Package fs provides file system adapters for resolving, walking and hashing files.
package fs

import (
	"io/fs"
	"iter"
	"path/filepath"
)

// Walker provides file walking functionality.
type Walker struct{}

// NewWalker creates a new Walker.
func NewWalker() *Walker {
	return &Walker{}
}

// WalkFiles yields every file under root, skipping VCS metadata and any
// directory for which skip returns true. Paths are rooted at root.
func (w *Walker) WalkFiles(root string, skip func(path string) bool) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if d.IsDir() {
				if path != root && w.shouldSkipDir(d.Name(), path, skip) {
					return filepath.SkipDir
				}
				return nil
			}

			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

func (w *Walker) shouldSkipDir(name, path string, skip func(string) bool) bool {
	switch name {
	case ".git", ".jj", ".hg", ".svn":
		return true
	}
	return skip != nil && skip(path)
}
