// Package app implements the application layer for stitch.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"

	"go.trai.ch/stitch/internal/adapters/cache"     //nolint:depguard // Wired in app layer
	"go.trai.ch/stitch/internal/adapters/fetch"     //nolint:depguard // Wired in app layer
	"go.trai.ch/stitch/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/stitch/internal/adapters/watcher"   //nolint:depguard // Wired in app layer
	"go.trai.ch/stitch/internal/core/domain"
	"go.trai.ch/stitch/internal/core/ports"
	"go.trai.ch/stitch/internal/engine/expander"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	logger       ports.Logger
	resolver     ports.PathResolver
	hasher       ports.Hasher
	tracer       ports.Tracer
	recorder     *telemetry.Recorder
	openCache    cache.Opener
	newFetcher   fetch.Factory
	newWatcher   watcher.Factory

	workDir  string
	stdin    io.Reader
	debounce time.Duration
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	log ports.Logger,
	resolver ports.PathResolver,
	hasher ports.Hasher,
	tracer ports.Tracer,
	recorder *telemetry.Recorder,
	openCache cache.Opener,
	newFetcher fetch.Factory,
	newWatcher watcher.Factory,
) *App {
	return &App{
		configLoader: loader,
		logger:       log,
		resolver:     resolver,
		hasher:       hasher,
		tracer:       tracer,
		recorder:     recorder,
		openCache:    openCache,
		newFetcher:   newFetcher,
		newWatcher:   newWatcher,
		stdin:        os.Stdin,
		debounce:     watcher.DefaultDebounceWindow,
	}
}

// WithWorkDir sets the directory config discovery and relative paths start from.
// It defaults to the process working directory.
func (a *App) WithWorkDir(dir string) *App {
	a.workDir = dir
	return a
}

// WithStdin replaces the reader expand uses when no input file is given.
func (a *App) WithStdin(r io.Reader) *App {
	a.stdin = r
	return a
}

// WithDebounce sets how long watch waits for changes to settle.
func (a *App) WithDebounce(d time.Duration) *App {
	a.debounce = d
	return a
}

// Settings are the command-line overrides applied on top of the config file.
type Settings struct {
	ConfigPath string
	DocsDir    string
	OutDir     string
	Jobs       int
	// CacheTTL overrides the configured cache TTL when not nil.
	CacheTTL *time.Duration
}

// RenderOptions configuration for the Render method.
type RenderOptions struct {
	Settings
	// Timings is the number of slowest documents to report. Zero disables it.
	Timings int
}

// Report summarizes one render pass.
type Report struct {
	Expanded  int
	Copied    int
	Unchanged int
	Failed    int
	Timings   []telemetry.Timing
}

// ExpandOptions configuration for the Expand method.
type ExpandOptions struct {
	Settings
	// Input is the document to expand. Empty or "-" reads Stdin.
	Input string
	// Stdin replaces the reader set with WithStdin when not nil.
	Stdin  io.Reader
	Output io.Writer
}

// session is the state derived from one configuration load.
type session struct {
	cfg      *domain.Config
	store    ports.CacheStore
	expander *expander.Expander
	deps     *dependencies
}

func (a *App) cwd() (string, error) {
	if a.workDir != "" {
		return a.workDir, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", zerr.Wrap(err, "failed to determine working directory")
	}
	return wd, nil
}

func (a *App) loadConfig(settings Settings) (*domain.Config, error) {
	cwd, err := a.cwd()
	if err != nil {
		return nil, err
	}

	cfg, err := a.configLoader.Load(cwd, settings.ConfigPath)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}

	if settings.DocsDir != "" {
		cfg.DocsDir = absFrom(cwd, settings.DocsDir)
	}
	if settings.OutDir != "" {
		cfg.OutDir = absFrom(cwd, settings.OutDir)
	}
	if settings.Jobs > 0 {
		cfg.Jobs = settings.Jobs
	}
	if settings.CacheTTL != nil {
		cfg.CacheTTL = *settings.CacheTTL
	}
	if cfg.Jobs <= 0 {
		cfg.Jobs = runtime.NumCPU()
	}
	if cfg.OutDir == cfg.DocsDir {
		return nil, zerr.With(zerr.Wrap(domain.ErrConfigInvalid, "output directory must differ from the documents directory"),
			"out_dir", cfg.OutDir)
	}
	return cfg, nil
}

func (a *App) open(settings Settings) (*session, error) {
	cfg, err := a.loadConfig(settings)
	if err != nil {
		return nil, err
	}

	store, err := a.openCache(cfg.CacheDir, cfg.CacheTTL)
	if err != nil {
		a.logger.Warn("remote includes will not be cached: " + err.Error())
		store = nil
	}
	if store != nil && cfg.CacheTTL > 0 {
		if _, err := store.Clean(); err != nil {
			a.logger.Warn("failed to clean expired cache entries: " + err.Error())
		}
	}

	fetcher := a.newFetcher(store, cfg.FetchTimeout)
	exp := expander.New(expander.ConfigFrom(cfg), a.resolver, fetcher, a.logger, expander.WithTracer(a.tracer))

	return &session{
		cfg:      cfg,
		store:    store,
		expander: exp,
		deps:     newDependencies(),
	}, nil
}

func (s *session) close() {
	if s.store != nil {
		_ = s.store.Close()
	}
}

// Render expands every document under the documents root into the output
// directory and copies the remaining files unchanged.
func (a *App) Render(ctx context.Context, opts RenderOptions) (*Report, error) {
	s, err := a.open(opts.Settings)
	if err != nil {
		return nil, err
	}
	defer s.close()

	if a.recorder != nil {
		a.recorder.Reset()
	}
	report, err := a.render(ctx, s, nil)
	if report != nil && opts.Timings > 0 && a.recorder != nil {
		report.Timings = a.recorder.Slowest(opts.Timings)
	}
	return report, err
}

// render processes the files under the documents root. When only is not nil
// it restricts the pass to those paths.
func (a *App) render(ctx context.Context, s *session, only map[string]struct{}) (*Report, error) {
	cfg := s.cfg
	if info, err := os.Stat(cfg.DocsDir); err != nil || !info.IsDir() {
		return nil, zerr.With(zerr.Wrap(domain.ErrDocsDirNotFound, cfg.DocsDir), "docs_dir", cfg.DocsDir)
	}

	skip := outputExclude(cfg)
	files, err := a.resolver.Documents(cfg.DocsDir, []string{"**"}, skip)
	if err != nil {
		return nil, err
	}
	docs, err := a.resolver.Documents(cfg.DocsDir, domain.DefaultDocumentPatterns, append(skip, cfg.Exclude...))
	if err != nil {
		return nil, err
	}
	isDoc := make(map[string]struct{}, len(docs))
	for _, d := range docs {
		isDoc[d] = struct{}{}
	}

	var (
		mu     sync.Mutex
		report Report
	)
	scheduled := 0
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Jobs)
	for _, path := range files {
		if only != nil {
			if _, ok := only[path]; !ok {
				continue
			}
		}
		scheduled++
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			var (
				written bool
				err     error
			)
			_, doc := isDoc[path]
			if doc {
				written, err = a.renderDocument(gctx, s, path)
			} else {
				written, err = a.copyFile(cfg, path)
			}
			if err != nil && gctx.Err() != nil {
				return gctx.Err()
			}

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				report.Failed++
				a.logger.Error(err)
			case !written:
				report.Unchanged++
			case doc:
				report.Expanded++
			default:
				report.Copied++
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if report.Failed > 0 {
		err := zerr.Wrap(domain.ErrExpansionFailed, fmt.Sprintf("%d of %d files failed", report.Failed, scheduled))
		return &report, zerr.With(err, "failed", report.Failed)
	}
	return &report, nil
}

func (a *App) renderDocument(ctx context.Context, s *session, path string) (bool, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from walking the docs dir
	if err != nil {
		return false, zerr.With(zerr.Wrap(domain.ErrReadFailed, err.Error()), "path", path)
	}
	text, err := domain.DecodeText(data, "utf-8")
	if err != nil {
		return false, zerr.With(err, "path", path)
	}

	res, err := s.expander.ExpandDocument(ctx, text, path)
	if err != nil {
		return false, err
	}
	s.deps.set(path, res.Includes)

	return a.writeIfChanged(outputPath(s.cfg, path), []byte(res.Text))
}

func (a *App) copyFile(cfg *domain.Config, path string) (bool, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from walking the docs dir
	if err != nil {
		return false, zerr.With(zerr.Wrap(domain.ErrReadFailed, err.Error()), "path", path)
	}
	return a.writeIfChanged(outputPath(cfg, path), data)
}

// writeIfChanged writes data to dest unless dest already holds the same bytes.
func (a *App) writeIfChanged(dest string, data []byte) (bool, error) {
	if current, err := a.hasher.HashFile(dest); err == nil && current == a.hasher.HashBytes(data) {
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(dest), domain.DirPerm); err != nil {
		return false, zerr.With(zerr.Wrap(domain.ErrWriteFailed, err.Error()), "path", dest)
	}
	if err := os.WriteFile(dest, data, domain.FilePerm); err != nil {
		return false, zerr.With(zerr.Wrap(domain.ErrWriteFailed, err.Error()), "path", dest)
	}
	return true, nil
}

// Expand expands a single document, or stdin, to opts.Output.
func (a *App) Expand(ctx context.Context, opts ExpandOptions) error {
	s, err := a.open(opts.Settings)
	if err != nil {
		return err
	}
	defer s.close()

	stdin := opts.Stdin
	if stdin == nil {
		stdin = a.stdin
	}
	text, source, err := a.readInput(opts.Input, stdin)
	if err != nil {
		return err
	}

	out, err := s.expander.Expand(ctx, text, source)
	if err != nil {
		return err
	}

	if _, err := io.WriteString(opts.Output, out); err != nil {
		return zerr.Wrap(domain.ErrWriteFailed, err.Error())
	}
	return nil
}

func (a *App) readInput(input string, stdin io.Reader) (text, source string, err error) {
	var data []byte
	if input == "" || input == "-" {
		if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) { //nolint:gosec // fd fits in int
			return "", "", zerr.Wrap(domain.ErrNoInput, "pass a file or pipe a document on stdin")
		}
		data, err = io.ReadAll(stdin)
		if err != nil {
			return "", "", zerr.With(zerr.Wrap(domain.ErrReadFailed, err.Error()), "path", "<stdin>")
		}
	} else {
		cwd, cwdErr := a.cwd()
		if cwdErr != nil {
			return "", "", cwdErr
		}
		source = absFrom(cwd, input)
		data, err = os.ReadFile(source) //nolint:gosec // path is provided by user
		if err != nil {
			return "", "", zerr.With(zerr.Wrap(domain.ErrReadFailed, err.Error()), "path", source)
		}
	}

	text, err = domain.DecodeText(data, "utf-8")
	if err != nil {
		return "", "", zerr.With(err, "path", input)
	}
	return text, source, nil
}

// WatchOptions configuration for the Watch method.
type WatchOptions struct {
	Settings
	// OnRender is called after the initial render and after every rebuild.
	OnRender func(*Report, error)
}

// Watch renders the documents root, then re-renders affected documents
// whenever a document or one of its includes changes. It returns nil once
// ctx is done.
func (a *App) Watch(ctx context.Context, opts WatchOptions) error {
	s, err := a.open(opts.Settings)
	if err != nil {
		return err
	}
	defer s.close()

	notify := opts.OnRender
	if notify == nil {
		notify = func(*Report, error) {}
	}

	report, err := a.render(ctx, s, nil)
	if err != nil && !errors.Is(err, domain.ErrExpansionFailed) {
		return err
	}
	notify(report, err)

	w, err := a.newWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = w.Stop() }()

	cfg := s.cfg
	if err := w.Start(ctx, cfg.DocsDir, s.deps.external(cfg.DocsDir)); err != nil {
		return err
	}

	batches := make(chan []string)
	debouncer := watcher.NewDebouncer(a.debounce, func(paths []string) {
		select {
		case batches <- paths:
		case <-ctx.Done():
		}
	})
	defer debouncer.Stop()

	nestedOut := outputExclude(cfg) != nil
	go func() {
		for event := range w.Events() {
			if nestedOut && within(cfg.OutDir, event.Path) {
				continue
			}
			debouncer.Add(event.Path)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case paths := <-batches:
			report, err := a.rebuild(ctx, s, paths)
			if ctx.Err() != nil {
				return nil
			}
			notify(report, err)

			if err := w.Track(s.deps.external(cfg.DocsDir)); err != nil {
				a.logger.Warn("failed to watch included files: " + err.Error())
			}
		}
	}
}

// rebuild renders the documents affected by the changed paths, or everything
// when a change cannot be attributed.
func (a *App) rebuild(ctx context.Context, s *session, changed []string) (*Report, error) {
	only, full := s.deps.affected(changed)
	if full {
		only = nil
	}
	return a.render(ctx, s, only)
}

// CacheCleanOptions configuration for the CleanCache method.
type CacheCleanOptions struct {
	Settings
	// All removes every entry instead of only expired ones.
	All bool
}

// CleanCache removes cached remote content and reports how many entries went.
func (a *App) CleanCache(_ context.Context, opts CacheCleanOptions) (int, error) {
	cfg, err := a.loadConfig(opts.Settings)
	if err != nil {
		return 0, err
	}

	ttl := cfg.CacheTTL
	if opts.All {
		ttl = 0
	}
	store, err := a.openCache(cfg.CacheDir, ttl)
	if err != nil {
		return 0, err
	}
	defer func() { _ = store.Close() }()

	removed, err := store.Clean()
	if err != nil {
		return removed, zerr.Wrap(err, "failed to clean cache")
	}
	return removed, nil
}

func absFrom(cwd, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(cwd, path)
}

func outputPath(cfg *domain.Config, path string) string {
	rel, err := filepath.Rel(cfg.DocsDir, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	return filepath.Join(cfg.OutDir, rel)
}

// outputExclude keeps an output directory nested in the documents root out of
// the walk.
func outputExclude(cfg *domain.Config) []string {
	rel, err := filepath.Rel(cfg.DocsDir, cfg.OutDir)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil
	}
	return []string{filepath.ToSlash(rel) + "/**"}
}

// dependencies tracks which local files each document included in its last
// successful expansion.
type dependencies struct {
	mu       sync.Mutex
	includes map[string][]string
}

func newDependencies() *dependencies {
	return &dependencies{includes: make(map[string][]string)}
}

func (d *dependencies) set(doc string, includes []string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.includes[doc] = slices.Clone(includes)
}

// affected returns the documents to re-render for the changed paths. full is
// true when a path is not a known document or include, which needs a full pass.
func (d *dependencies) affected(changed []string) (docs map[string]struct{}, full bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	docs = make(map[string]struct{})
	for _, p := range changed {
		found := false
		for doc, includes := range d.includes {
			if doc == p || slices.Contains(includes, p) {
				docs[doc] = struct{}{}
				found = true
			}
		}
		if !found {
			return nil, true
		}
	}
	return docs, false
}

// external lists included files that live outside root.
func (d *dependencies) external(root string) []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	seen := make(map[string]struct{})
	var out []string
	for _, includes := range d.includes {
		for _, p := range includes {
			if within(root, p) {
				continue
			}
			if _, ok := seen[p]; !ok {
				seen[p] = struct{}{}
				out = append(out, p)
			}
		}
	}
	slices.Sort(out)
	return out
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
