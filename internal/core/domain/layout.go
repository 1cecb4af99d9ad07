package domain

import (
	"path/filepath"
	"time"
)

const (
	// StitchDirName is the name of the internal workspace directory.
	StitchDirName = ".stitch"

	// CacheDirName is the name of the remote content cache directory.
	CacheDirName = "cache"

	// ConfigFileName is the name of the project configuration file.
	ConfigFileName = "stitch.yaml"

	// CacheIgnoreFileName is the marker that keeps the cache out of version control.
	CacheIgnoreFileName = ".gitignore"

	// DefaultDocsDir is the documents root used when the config names none.
	DefaultDocsDir = "docs"

	// DefaultOutDir is the output directory used when the config names none.
	DefaultOutDir = "build/docs"

	// DefaultOpeningTag opens a directive.
	DefaultOpeningTag = "{%"

	// DefaultClosingTag closes a directive.
	DefaultClosingTag = "%}"

	// DefaultMaxDepth bounds include nesting.
	DefaultMaxDepth = 64

	// DefaultFetchTimeout bounds a single remote fetch.
	DefaultFetchTimeout = 30 * time.Second

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// DefaultDocumentPatterns select the files expanded by render and watch.
// Other files under the documents root are copied unchanged.
var DefaultDocumentPatterns = []string{"**/*.md", "**/*.markdown"}

// DefaultCachePath returns the default path for the remote content cache.
// It joins .stitch and cache.
func DefaultCachePath() string {
	return filepath.Join(StitchDirName, CacheDirName)
}
