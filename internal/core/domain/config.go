package domain

import (
	"path/filepath"
	"time"
)

// Config is the resolved project configuration. All paths are absolute.
type Config struct {
	// Root is the directory holding the config file, or the working directory.
	Root         string
	DocsDir      string
	OutDir       string
	OpeningTag   string
	ClosingTag   string
	Registry     Registry
	Defaults     Options
	Exclude      []string
	CacheDir     string
	CacheTTL     time.Duration
	FetchTimeout time.Duration
	MaxDepth     int
	Jobs         int
}

// DefaultConfig returns the configuration used when no config file exists.
func DefaultConfig(root string) *Config {
	return &Config{
		Root:         root,
		DocsDir:      filepath.Join(root, DefaultDocsDir),
		OutDir:       filepath.Join(root, DefaultOutDir),
		OpeningTag:   DefaultOpeningTag,
		ClosingTag:   DefaultClosingTag,
		Registry:     DefaultRegistry(),
		Defaults:     DefaultOptions(),
		CacheDir:     filepath.Join(root, DefaultCachePath()),
		FetchTimeout: DefaultFetchTimeout,
		MaxDepth:     DefaultMaxDepth,
	}
}
