// Package expander expands include directives recursively.
package expander

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"go.trai.ch/stitch/internal/core/domain"
	"go.trai.ch/stitch/internal/core/ports"
	"go.trai.ch/stitch/internal/engine/args"
	"go.trai.ch/stitch/internal/engine/scanner"
	"go.trai.ch/stitch/internal/engine/transform"
	"go.trai.ch/zerr"
)

// Config holds the settings shared by every expansion.
type Config struct {
	OpeningTag string
	ClosingTag string
	Registry   domain.Registry
	// Defaults are overlaid on the built-in option defaults.
	Defaults domain.Options
	DocsRoot string
	// Exclude holds patterns no directive may include.
	Exclude  []string
	MaxDepth int
}

// ConfigFrom derives the expander settings from the project configuration.
func ConfigFrom(cfg *domain.Config) Config {
	return Config{
		OpeningTag: cfg.OpeningTag,
		ClosingTag: cfg.ClosingTag,
		Registry:   cfg.Registry,
		Defaults:   cfg.Defaults,
		DocsRoot:   cfg.DocsDir,
		Exclude:    cfg.Exclude,
		MaxDepth:   cfg.MaxDepth,
	}
}

// Result is the outcome of expanding one document.
type Result struct {
	Text string
	// Includes lists every local file read while expanding, in first-read order.
	Includes []string
}

// Expander replaces include directives with the content they point at.
type Expander struct {
	cfg      Config
	defaults domain.Options
	scanner  *scanner.Scanner
	resolver ports.PathResolver
	fetcher  ports.ContentFetcher
	logger   ports.Logger
	tracer   ports.Tracer
}

// Option configures an Expander.
type Option func(*Expander)

// WithTracer records a span per document and per include.
func WithTracer(t ports.Tracer) Option {
	return func(e *Expander) {
		e.tracer = t
	}
}

// New creates an Expander.
func New(
	cfg Config,
	resolver ports.PathResolver,
	fetcher ports.ContentFetcher,
	logger ports.Logger,
	opts ...Option,
) *Expander {
	if cfg.OpeningTag == "" {
		cfg.OpeningTag = domain.DefaultOpeningTag
	}
	if cfg.ClosingTag == "" {
		cfg.ClosingTag = domain.DefaultClosingTag
	}
	if cfg.Registry == nil {
		cfg.Registry = domain.DefaultRegistry()
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = domain.DefaultMaxDepth
	}

	e := &Expander{
		cfg:      cfg,
		defaults: domain.DefaultOptions().Merge(cfg.Defaults),
		scanner:  scanner.New(cfg.OpeningTag, cfg.ClosingTag, cfg.Registry),
		resolver: resolver,
		fetcher:  fetcher,
		logger:   logger,
		tracer:   noopTracer{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Expand returns text with every directive replaced. sourcePath is the
// document's own path, used to resolve relative targets and detect cycles.
func (e *Expander) Expand(ctx context.Context, text, sourcePath string) (string, error) {
	res, err := e.ExpandDocument(ctx, text, sourcePath)
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

// ExpandDocument is Expand that also reports which files were included.
func (e *Expander) ExpandDocument(ctx context.Context, text, sourcePath string) (Result, error) {
	ctx, span := e.tracer.Start(ctx, "expand")
	defer span.End()

	id := sourcePath
	if id != "" && !domain.IsURL(id) {
		if abs, err := filepath.Abs(id); err == nil {
			id = abs
		}
	}
	span.SetAttribute("document", e.display(id))

	ec := newExpansionContext(e.cfg.MaxDepth, e.display)
	if id != "" {
		if err := ec.push(id); err != nil {
			span.RecordError(err)
			return Result{}, err
		}
	}

	out, err := e.expandBuffer(ctx, ec, text, id)
	if err != nil {
		span.RecordError(err)
		return Result{}, err
	}
	return Result{Text: out, Includes: ec.includes}, nil
}

func (e *Expander) expandBuffer(ctx context.Context, ec *expansionContext, text, includer string) (string, error) {
	var out strings.Builder
	last := 0
	for m := range e.scanner.All(text) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		out.WriteString(text[last:m.Start])

		rendered, err := e.expandDirective(ctx, ec, text, m, includer)
		if err != nil {
			return "", e.locate(err, includer, m)
		}
		out.WriteString(rendered)
		last = m.End
	}
	if last == 0 {
		return text, nil
	}
	out.WriteString(text[last:])
	return out.String(), nil
}

func (e *Expander) expandDirective(
	ctx context.Context,
	ec *expansionContext,
	text string,
	m scanner.Match,
	includer string,
) (string, error) {
	target, given, err := args.Parse(m.Args, m.Kind)
	if err != nil {
		return "", err
	}
	opts := e.defaults.Merge(given)

	exclude := make([]string, 0, len(e.cfg.Exclude)+1)
	if opts.Exclude != "" {
		exclude = append(exclude, opts.Exclude)
	}
	exclude = append(exclude, e.cfg.Exclude...)

	resolved, err := e.resolver.Resolve(ctx, domain.ResolveRequest{
		Target:   target,
		Includer: includer,
		DocsRoot: e.cfg.DocsRoot,
		Exclude:  exclude,
		Order:    opts.Order,
	})
	if err != nil {
		return "", err
	}

	inc := include{
		match:    m,
		target:   target,
		opts:     opts,
		includer: includer,
		indent:   transform.IncluderIndent(text, m.Start),
	}

	if resolved.IsRemote() {
		if given.Has(domain.OptOrder) {
			e.logger.Warn(fmt.Sprintf("order is ignored for URL %s in %s directive at %s",
				resolved.URL, m.Name, e.location(includer, m)))
		}
		piece, res, err := e.includeOne(ctx, ec, inc, resolved.URL, true)
		if err != nil {
			return "", err
		}
		e.warnMissingDelimiters(inc, res, []string{resolved.URL})
		return piece, nil
	}

	var out strings.Builder
	missing := transform.SliceResult{StartMissing: true, EndMissing: true}
	paths := make([]string, 0, len(resolved.Files))
	for i, f := range resolved.Files {
		piece, res, err := e.includeOne(ctx, ec, inc, f.Path, false)
		if err != nil {
			return "", err
		}
		missing.StartMissing = missing.StartMissing && res.StartMissing
		missing.EndMissing = missing.EndMissing && res.EndMissing
		paths = append(paths, f.Path)

		if i > 0 && piece != "" {
			out.WriteString(inc.indent)
		}
		out.WriteString(piece)
	}
	e.warnMissingDelimiters(inc, missing, paths)
	return out.String(), nil
}

type include struct {
	match    scanner.Match
	target   string
	opts     domain.Options
	includer string
	indent   string
}

func (e *Expander) includeOne(
	ctx context.Context,
	ec *expansionContext,
	inc include,
	id string,
	remote bool,
) (string, transform.SliceResult, error) {
	ctx, span := e.tracer.Start(ctx, "include")
	defer span.End()
	span.SetAttribute("include.target", e.display(id))
	span.SetAttribute("include.depth", ec.depth())

	var res transform.SliceResult
	if err := ec.push(id); err != nil {
		span.RecordError(err)
		return "", res, err
	}
	defer ec.pop()

	var content string
	var err error
	if remote {
		content, err = e.fetcher.FetchURL(ctx, id, inc.opts.Encoding)
	} else {
		ec.track(id)
		content, err = e.fetcher.ReadFile(ctx, id, inc.opts.Encoding)
	}
	if err != nil {
		span.RecordError(err)
		return "", res, err
	}

	content, res = transform.Slice(content, inc.opts.Start, inc.opts.End)

	if inc.opts.Recursive {
		content, err = e.expandBuffer(ctx, ec, content, id)
		if err != nil {
			span.RecordError(err)
			return "", res, err
		}
	}

	p := transform.Params{
		Kind:    inc.match.Kind,
		Options: inc.opts,
		Target:  inc.target,
		Indent:  inc.indent,
	}
	if !remote && inc.includer != "" && !domain.IsURL(inc.includer) {
		p.SourceDir = filepath.ToSlash(filepath.Dir(id))
		p.IncluderDir = filepath.ToSlash(filepath.Dir(inc.includer))
	}
	return transform.Apply(content, p), res, nil
}

func (e *Expander) warnMissingDelimiters(inc include, missing transform.SliceResult, sources []string) {
	if len(sources) == 0 {
		return
	}
	shown := make([]string, len(sources))
	for i, s := range sources {
		shown[i] = e.display(s)
	}
	where := e.location(inc.includer, inc.match)

	if inc.opts.Start != "" && missing.StartMissing {
		e.logger.Warn(fmt.Sprintf("delimiter start %q of %s directive at %s not found in %s",
			inc.opts.Start, inc.match.Name, where, strings.Join(shown, ", ")))
	}
	if inc.opts.End != "" && missing.EndMissing {
		e.logger.Warn(fmt.Sprintf("delimiter end %q of %s directive at %s not found in %s",
			inc.opts.End, inc.match.Name, where, strings.Join(shown, ", ")))
	}
}

func (e *Expander) locate(err error, includer string, m scanner.Match) error {
	wrapped := zerr.Wrap(err, fmt.Sprintf("%s directive at %s", m.Name, e.location(includer, m)))
	wrapped = zerr.With(wrapped, "file", includer)
	wrapped = zerr.With(wrapped, "line", m.Line)
	return zerr.With(wrapped, "offset", m.Start)
}

func (e *Expander) location(includer string, m scanner.Match) string {
	name := e.display(includer)
	if name == "" {
		name = "<input>"
	}
	return fmt.Sprintf("%s:%d", name, m.Line)
}

// display shortens a path to be relative to the documents root when possible.
func (e *Expander) display(id string) string {
	if id == "" || domain.IsURL(id) || e.cfg.DocsRoot == "" {
		return id
	}
	rel, err := filepath.Rel(e.cfg.DocsRoot, id)
	if err != nil || strings.HasPrefix(rel, "..") {
		return id
	}
	return filepath.ToSlash(rel)
}
