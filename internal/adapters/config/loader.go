// Package config provides the configuration loader for stitch.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/bmatcuk/doublestar/v4"
	"go.trai.ch/stitch/internal/core/domain"
	"go.trai.ch/stitch/internal/core/ports"
	"go.trai.ch/stitch/internal/engine/args"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.ConfigLoader = (*Loader)(nil)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load reads the configuration at path, or the nearest stitch.yaml found by
// walking up from cwd when path is empty. Without a config file the built-in
// defaults rooted at cwd are returned.
func (l *Loader) Load(cwd, path string) (*domain.Config, error) {
	if path != "" {
		if !filepath.IsAbs(path) {
			path = filepath.Join(cwd, path)
		}
		return l.loadFile(filepath.Clean(path))
	}

	found, ok := findConfiguration(cwd)
	if !ok {
		return domain.DefaultConfig(filepath.Clean(cwd)), nil
	}
	return l.loadFile(found)
}

func findConfiguration(cwd string) (string, bool) {
	currentDir := filepath.Clean(cwd)
	for {
		candidate := filepath.Join(currentDir, domain.ConfigFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return "", false
		}
		currentDir = parentDir
	}
}

func (l *Loader) loadFile(configPath string) (*domain.Config, error) {
	var file Stitchfile
	if err := readAndUnmarshalYAML(configPath, &file); err != nil {
		return nil, zerr.With(err, "path", configPath)
	}

	cfg, err := l.build(filepath.Dir(configPath), &file)
	if err != nil {
		return nil, zerr.With(err, "path", configPath)
	}
	return cfg, nil
}

func (l *Loader) build(root string, file *Stitchfile) (*domain.Config, error) {
	cfg := domain.DefaultConfig(root)

	if file.DocsDir != "" {
		cfg.DocsDir = resolvePath(root, file.DocsDir)
	}
	if file.OutDir != "" {
		cfg.OutDir = resolvePath(root, file.OutDir)
	}
	if file.OpeningTag != "" {
		cfg.OpeningTag = file.OpeningTag
	}
	if file.ClosingTag != "" {
		cfg.ClosingTag = file.ClosingTag
	}
	if file.Cache.Dir != "" {
		cfg.CacheDir = resolvePath(root, file.Cache.Dir)
	}
	if file.Cache.TTL != nil {
		cfg.CacheTTL = durationOf(file.Cache.TTL)
	}
	if file.FetchTimeout != nil {
		cfg.FetchTimeout = durationOf(file.FetchTimeout)
	}
	if file.MaxDepth != nil {
		cfg.MaxDepth = *file.MaxDepth
	}
	if file.Jobs != nil {
		cfg.Jobs = *file.Jobs
	}
	cfg.Exclude = slices.Clone(file.Exclude)

	registry, err := renameDirectives(cfg.Registry, file.Directives)
	if err != nil {
		return nil, err
	}
	cfg.Registry = registry

	defaults, err := parseDefaults(file.Defaults)
	if err != nil {
		return nil, err
	}
	cfg.Defaults = cfg.Defaults.Merge(defaults)

	if err := validate(cfg); err != nil {
		return nil, err
	}

	if file.Cache.Dir != "" && cfg.CacheTTL == 0 {
		l.Logger.Warn(fmt.Sprintf("'cache.dir' in %s has no effect while 'cache.ttl' is 0", domain.ConfigFileName))
	}
	return cfg, nil
}

func renameDirectives(registry domain.Registry, renames map[string]string) (domain.Registry, error) {
	defaults := domain.DefaultRegistry()
	for _, from := range slices.Sorted(maps.Keys(renames)) {
		to := renames[from]
		kind, ok := defaults.Lookup(from)
		if !ok {
			return nil, zerr.With(zerr.Wrap(domain.ErrConfigInvalid, "unknown directive"), "directive", from)
		}
		if to == "" || strings.IndexFunc(to, unicode.IsSpace) >= 0 {
			return nil, zerr.With(zerr.Wrap(domain.ErrConfigInvalid, "directive names must be non-empty words"), "directive", from)
		}
		if existing, taken := registry.Lookup(to); taken && existing != kind {
			return nil, zerr.With(zerr.Wrap(domain.ErrConfigInvalid, "directive name already in use"), "directive", to)
		}
		registry = registry.Rename(kind, to)
	}
	return registry, nil
}

func parseDefaults(values map[string]Scalar) (domain.Options, error) {
	var opts domain.Options
	for _, name := range slices.Sorted(maps.Keys(values)) {
		if err := args.Set(&opts, domain.KindMarkdown, name, string(values[name])); err != nil {
			return domain.Options{}, zerr.Wrap(err, domain.ErrConfigInvalid.Error())
		}
	}
	return opts, nil
}

func validate(cfg *domain.Config) error {
	if cfg.OpeningTag == cfg.ClosingTag {
		return zerr.With(zerr.Wrap(domain.ErrConfigInvalid, "opening and closing tags must differ"), "tag", cfg.OpeningTag)
	}
	if cfg.MaxDepth < 1 {
		return zerr.With(zerr.Wrap(domain.ErrConfigInvalid, "max_depth must be at least 1"), "max_depth", cfg.MaxDepth)
	}
	if cfg.Jobs < 0 {
		return zerr.With(zerr.Wrap(domain.ErrConfigInvalid, "jobs must not be negative"), "jobs", cfg.Jobs)
	}
	if cfg.CacheTTL < 0 {
		return zerr.With(zerr.Wrap(domain.ErrConfigInvalid, "cache.ttl must not be negative"), "ttl", cfg.CacheTTL.String())
	}
	if cfg.FetchTimeout <= 0 {
		return zerr.With(zerr.Wrap(domain.ErrConfigInvalid, "fetch_timeout must be positive"), "fetch_timeout", cfg.FetchTimeout.String())
	}
	for _, pattern := range cfg.Exclude {
		if !doublestar.ValidatePattern(filepath.ToSlash(pattern)) {
			return zerr.With(zerr.Wrap(domain.ErrConfigInvalid, "invalid exclude pattern"), "pattern", pattern)
		}
	}
	return nil
}

// resolvePath makes configured paths absolute relative to the config file.
func resolvePath(root, configured string) string {
	if filepath.IsAbs(configured) {
		return filepath.Clean(configured)
	}
	return filepath.Clean(filepath.Join(root, configured))
}

func durationOf(d *Duration) time.Duration {
	return time.Duration(*d)
}

// readAndUnmarshalYAML reads a YAML file and strictly decodes it into target.
func readAndUnmarshalYAML[T any](configPath string, target *T) error {
	// #nosec G304 -- configPath is chosen by the user or found by discovery
	data, err := os.ReadFile(configPath)
	if err != nil {
		return zerr.Wrap(domain.ErrConfigReadFailed, err.Error())
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(target); err != nil && !errors.Is(err, io.EOF) {
		return zerr.Wrap(domain.ErrConfigParseFailed, err.Error())
	}
	return nil
}
