package fs

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.trai.ch/stitch/internal/core/domain"
	"go.trai.ch/stitch/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.PathResolver = (*Resolver)(nil)

// Resolver turns include targets into ordered file sets using doublestar globs.
type Resolver struct {
	walker *Walker
}

// NewResolver creates a new Resolver.
func NewResolver(walker *Walker) *Resolver {
	return &Resolver{walker: walker}
}

// Resolve classifies the target and returns the matching files or URL.
func (r *Resolver) Resolve(ctx context.Context, req domain.ResolveRequest) (domain.ResolvedTarget, error) {
	if err := ctx.Err(); err != nil {
		return domain.ResolvedTarget{}, err
	}

	if domain.IsURL(req.Target) {
		return domain.ResolvedTarget{URL: req.Target}, nil
	}
	if domain.IsURL(req.Includer) && isRelative(req.Target) {
		return r.resolveAgainstURL(req)
	}

	pattern, err := localPath(req.Target, req.Includer, req.DocsRoot)
	if err != nil {
		return domain.ResolvedTarget{}, err
	}
	excludes, err := excludePatterns(req.Exclude, req.Includer, req.DocsRoot)
	if err != nil {
		return domain.ResolvedTarget{}, err
	}

	var candidates []string
	if info, statErr := os.Stat(pattern); statErr == nil && info.Mode().IsRegular() {
		candidates = []string{pattern}
	} else if hasMeta(req.Target) {
		matches, globErr := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if globErr != nil {
			return domain.ResolvedTarget{}, zerr.With(
				zerr.Wrap(domain.ErrResolution, "invalid glob pattern"), "target", req.Target)
		}
		includer := filepath.Clean(req.Includer)
		for _, m := range matches {
			if m != includer {
				candidates = append(candidates, m)
			}
		}
	} else {
		return domain.ResolvedTarget{}, zerr.With(
			zerr.Wrap(domain.ErrResolution, "file not found"), "path", pattern)
	}

	kept := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if !excluded(c, excludes) {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		return domain.ResolvedTarget{}, zerr.With(
			zerr.Wrap(domain.ErrResolution, "no files found including "+req.Target), "pattern", pattern)
	}

	files, err := describe(kept)
	if err != nil {
		return domain.ResolvedTarget{}, err
	}
	sortFiles(files, req.Order)
	return domain.ResolvedTarget{Files: files}, nil
}

func (r *Resolver) resolveAgainstURL(req domain.ResolveRequest) (domain.ResolvedTarget, error) {
	base, err := url.Parse(req.Includer)
	if err != nil {
		return domain.ResolvedTarget{}, zerr.With(zerr.Wrap(domain.ErrResolution, err.Error()), "includer", req.Includer)
	}
	ref, err := url.Parse(req.Target)
	if err != nil {
		return domain.ResolvedTarget{}, zerr.With(zerr.Wrap(domain.ErrResolution, err.Error()), "target", req.Target)
	}
	return domain.ResolvedTarget{URL: base.ResolveReference(ref).String()}, nil
}

// Documents lists the files under root whose root-relative path matches one
// of patterns and none of exclude, in lexical order.
func (r *Resolver) Documents(root string, patterns, exclude []string) ([]string, error) {
	for _, p := range append(append([]string(nil), patterns...), exclude...) {
		if !doublestar.ValidatePattern(p) {
			return nil, zerr.With(zerr.Wrap(domain.ErrValidation, "invalid glob pattern"), "pattern", p)
		}
	}

	skipDir := func(path string) bool {
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return false
		}
		return matchAny(exclude, filepath.ToSlash(rel))
	}

	var docs []string
	for path := range r.walker.WalkFiles(root, skipDir) {
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to relativize path"), "path", path)
		}
		rel = filepath.ToSlash(rel)
		if matchAny(patterns, rel) && !matchAny(exclude, rel) {
			docs = append(docs, path)
		}
	}
	return docs, nil
}

func matchAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
	}
	return false
}

// localPath anchors a local target: absolute paths stay, ./ and ../ paths
// follow the includer and everything else hangs off the documents root.
func localPath(target, includer, docsRoot string) (string, error) {
	switch {
	case filepath.IsAbs(target) || strings.HasPrefix(target, "/"):
		return filepath.Clean(target), nil
	case isRelative(target):
		if includer == "" {
			return "", zerr.With(
				zerr.Wrap(domain.ErrResolution, "relative path used without an includer path"), "target", target)
		}
		return filepath.Join(filepath.Dir(includer), target), nil
	default:
		return filepath.Join(docsRoot, target), nil
	}
}

func excludePatterns(patterns []string, includer, docsRoot string) ([]string, error) {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if domain.IsURL(includer) && isRelative(p) {
			continue
		}
		abs, err := localPath(p, includer, docsRoot)
		if err != nil {
			return nil, err
		}
		abs = filepath.ToSlash(abs)
		if !doublestar.ValidatePattern(abs) {
			return nil, zerr.With(zerr.Wrap(domain.ErrValidation, "invalid exclude pattern"), "exclude", p)
		}
		out = append(out, abs)
	}
	return out, nil
}

// excluded reports whether path or one of its parent directories matches an
// exclude pattern.
func excluded(path string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}
	p := filepath.ToSlash(path)
	for {
		if matchAny(patterns, p) {
			return true
		}
		parent := strings.TrimSuffix(p[:strings.LastIndex(p, "/")+1], "/")
		if parent == "" || parent == p {
			return false
		}
		p = parent
	}
}

func isRelative(target string) bool {
	return strings.HasPrefix(target, "./") || strings.HasPrefix(target, "../") ||
		strings.HasPrefix(target, `.\`) || strings.HasPrefix(target, `..\`)
}

func hasMeta(target string) bool {
	return strings.ContainsAny(target, "*?[{")
}
