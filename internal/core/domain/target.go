package domain

import (
	"strings"
	"time"
)

// FileDescriptor describes one local file matched by an include target.
type FileDescriptor struct {
	Path  string
	Size  int64
	Mtime time.Time
	Ctime time.Time
	Atime time.Time
}

// ResolvedTarget is either an ordered list of local files or a single URL.
type ResolvedTarget struct {
	Files []FileDescriptor
	URL   string
}

// IsRemote reports whether the target is a URL.
func (t ResolvedTarget) IsRemote() bool {
	return t.URL != ""
}

// ResolveRequest carries everything the path resolver needs for one target.
type ResolveRequest struct {
	Target string
	// Includer is the absolute path or URL of the document holding the directive.
	Includer string
	DocsRoot string
	// Exclude holds the directive's own exclude pattern followed by global ones.
	Exclude []string
	Order   Order
}

// IsURL reports whether s starts with a scheme://.
func IsURL(s string) bool {
	scheme, _, ok := strings.Cut(s, "://")
	if !ok || scheme == "" {
		return false
	}
	for i, r := range scheme {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && (r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.'):
		default:
			return false
		}
	}
	return true
}
