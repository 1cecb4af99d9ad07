package expander_test

import (
	"context"
	"errors"
	"maps"
	"path"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/stitch/internal/core/domain"
	"go.trai.ch/stitch/internal/core/ports"
	"go.trai.ch/stitch/internal/core/ports/mocks"
	"go.trai.ch/stitch/internal/engine/expander"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

const docsRoot = "/docs"

// fixture serves an in-memory documents tree through the resolver and
// fetcher mocks. Targets are either literal paths relative to the docs root
// or a "*" suffix matching every file with that prefix, in name order.
type fixture struct {
	files    map[string]string
	resolver *mocks.MockPathResolver
	fetcher  *mocks.MockContentFetcher
	logger   *mocks.MockLogger
	requests []domain.ResolveRequest
}

func newFixture(t *testing.T, files map[string]string) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &fixture{
		files:    files,
		resolver: mocks.NewMockPathResolver(ctrl),
		fetcher:  mocks.NewMockContentFetcher(ctrl),
		logger:   mocks.NewMockLogger(ctrl),
	}

	f.resolver.EXPECT().Resolve(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req domain.ResolveRequest) (domain.ResolvedTarget, error) {
			f.requests = append(f.requests, req)
			if domain.IsURL(req.Target) {
				return domain.ResolvedTarget{URL: req.Target}, nil
			}
			var out domain.ResolvedTarget
			if prefix, ok := strings.CutSuffix(req.Target, "*"); ok {
				for _, name := range sortedKeys(f.files) {
					if strings.HasPrefix(name, path.Join(docsRoot, prefix)) && name != req.Includer {
						out.Files = append(out.Files, domain.FileDescriptor{Path: name})
					}
				}
			} else if p := path.Join(docsRoot, req.Target); f.files[p] != "" || hasKey(f.files, p) {
				out.Files = append(out.Files, domain.FileDescriptor{Path: p})
			}
			if len(out.Files) == 0 {
				return out, zerr.Wrap(domain.ErrResolution, "file not found")
			}
			return out, nil
		}).AnyTimes()

	f.fetcher.EXPECT().ReadFile(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, p, _ string) (string, error) {
			return f.files[p], nil
		}).AnyTimes()

	return f
}

func (f *fixture) expander(cfg expander.Config) *expander.Expander {
	if cfg.DocsRoot == "" {
		cfg.DocsRoot = docsRoot
	}
	return expander.New(cfg, f.resolver, f.fetcher, f.logger)
}

func hasKey(m map[string]string, k string) bool {
	_, ok := m[k]
	return ok
}

func sortedKeys(m map[string]string) []string {
	return slices.Sorted(maps.Keys(m))
}

func TestExpand(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		input string
		want  string
	}{
		{
			name:  "no directives",
			input: "# Title\n\nplain text\n",
			want:  "# Title\n\nplain text\n",
		},
		{
			name:  "markdown include keeps trailing newline",
			files: map[string]string{"/docs/a.md": "hello\n"},
			input: "before\n{% include-markdown \"a.md\" %}\nafter\n",
			want:  "before\nhello\n\nafter\n",
		},
		{
			name:  "trailing newlines removed",
			files: map[string]string{"/docs/a.md": "hello\n\n"},
			input: "[{% include \"a.md\" trailing-newlines=false %}]",
			want:  "[hello]",
		},
		{
			name:  "start and end delimiters",
			files: map[string]string{"/docs/a.md": "skip<!--s-->keep<!--e-->skip"},
			input: "{% include \"a.md\" start=\"<!--s-->\" end=\"<!--e-->\" %}",
			want:  "keep",
		},
		{
			name:  "includer indentation",
			files: map[string]string{"/docs/a.md": "one\ntwo\n"},
			input: "- {% include \"a.md\" %}",
			want:  "- one\n  two\n",
		},
		{
			name:  "indentation disabled",
			files: map[string]string{"/docs/a.md": "one\ntwo\n"},
			input: "- {% include \"a.md\" preserve-includer-indent=false %}",
			want:  "- one\ntwo\n",
		},
		{
			name:  "dedent then indent",
			files: map[string]string{"/docs/a.md": "    one\n      two\n"},
			input: "  {% include \"a.md\" dedent=true %}",
			want:  "  one\n    two\n",
		},
		{
			name:  "heading offset",
			files: map[string]string{"/docs/a.md": "# Top\n## Sub\n"},
			input: "{% include-markdown \"a.md\" heading-offset=1 %}",
			want:  "## Top\n### Sub\n",
		},
		{
			name:  "comments",
			files: map[string]string{"/docs/a.md": "body\n"},
			input: "{% include-markdown \"a.md\" comments=true %}",
			want:  "<!-- BEGIN INCLUDE a.md -->\nbody\n\n<!-- END INCLUDE -->",
		},
		{
			name:  "relative links rewritten",
			files: map[string]string{"/docs/sub/a.md": "[img](pic.png)\n"},
			input: "{% include-markdown \"sub/a.md\" %}",
			want:  "[img](sub/pic.png)\n",
		},
		{
			name:  "verbatim include does not rewrite links",
			files: map[string]string{"/docs/sub/a.md": "[img](pic.png)\n"},
			input: "{% include \"sub/a.md\" %}",
			want:  "[img](pic.png)\n",
		},
		{
			name: "multiple files share the indentation",
			files: map[string]string{
				"/docs/parts/a.md": "one\n",
				"/docs/parts/b.md": "two\n",
			},
			input: "- {% include \"parts/*\" %}",
			want:  "- one\n  two\n",
		},
		{
			name: "every matched file starts at the indentation",
			files: map[string]string{
				"/docs/parts/a.md": "one\ntwo\n",
				"/docs/parts/b.md": "three\n",
			},
			input: "- {% include \"parts/*\" preserve-includer-indent=false %}",
			want:  "- one\ntwo\n  three\n",
		},
		{
			name: "nested includes expand recursively",
			files: map[string]string{
				"/docs/a.md": "A{% include \"b.md\" %}",
				"/docs/b.md": "B",
			},
			input: "{% include \"a.md\" %}",
			want:  "AB",
		},
		{
			name: "recursive false keeps nested directives",
			files: map[string]string{
				"/docs/a.md": "A{% include \"b.md\" %}",
			},
			input: "{% include \"a.md\" recursive=false %}",
			want:  "A{% include \"b.md\" %}",
		},
		{
			name:  "unregistered tags are left alone",
			input: "{% raw %}{{ x }}{% endraw %}",
			want:  "{% raw %}{{ x }}{% endraw %}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.files)
			got, err := f.expander(expander.Config{}).Expand(context.Background(), tt.input, "/docs/index.md")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExpand_Idempotent(t *testing.T) {
	f := newFixture(t, map[string]string{"/docs/a.md": "plain\n"})
	e := f.expander(expander.Config{})

	once, err := e.Expand(context.Background(), "x {% include \"a.md\" %}", "/docs/index.md")
	require.NoError(t, err)
	twice, err := e.Expand(context.Background(), once, "/docs/index.md")
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

func TestExpand_ResolveRequest(t *testing.T) {
	f := newFixture(t, map[string]string{"/docs/a.md": ""})
	e := f.expander(expander.Config{Exclude: []string{"drafts/**"}})

	_, err := e.Expand(context.Background(), "{% include \"a.md\" exclude=\"*.tmp\" order=\"-size\" %}", "/docs/index.md")
	require.NoError(t, err)

	require.Len(t, f.requests, 1)
	req := f.requests[0]
	assert.Equal(t, "a.md", req.Target)
	assert.Equal(t, "/docs/index.md", req.Includer)
	assert.Equal(t, docsRoot, req.DocsRoot)
	assert.Equal(t, []string{"*.tmp", "drafts/**"}, req.Exclude)
	assert.Equal(t, domain.OrderSize, req.Order.Type)
	assert.True(t, req.Order.Descending)
}

func TestExpand_ConfigDefaults(t *testing.T) {
	f := newFixture(t, map[string]string{"/docs/a.md": "body\n"})
	defaults := domain.Options{Comments: true, Set: domain.OptComments}
	e := f.expander(expander.Config{Defaults: defaults})

	got, err := e.Expand(context.Background(), "{% include-markdown \"a.md\" %}", "/docs/index.md")
	require.NoError(t, err)
	assert.Equal(t, "<!-- BEGIN INCLUDE a.md -->\nbody\n\n<!-- END INCLUDE -->", got)

	got, err = e.Expand(context.Background(), "{% include-markdown \"a.md\" comments=false %}", "/docs/index.md")
	require.NoError(t, err)
	assert.Equal(t, "body\n", got)
}

func TestExpand_CustomTagsAndNames(t *testing.T) {
	f := newFixture(t, map[string]string{"/docs/a.md": "A"})
	e := f.expander(expander.Config{
		OpeningTag: "<<",
		ClosingTag: ">>",
		Registry:   domain.DefaultRegistry().Rename(domain.KindVerbatim, "embed"),
	})

	got, err := e.Expand(context.Background(), "<< embed \"a.md\" >> {% include \"a.md\" %}", "/docs/index.md")
	require.NoError(t, err)
	assert.Equal(t, "A {% include \"a.md\" %}", got)
}

func TestExpandDocument_TracksIncludes(t *testing.T) {
	f := newFixture(t, map[string]string{
		"/docs/a.md": "{% include \"b.md\" %}{% include \"b.md\" %}",
		"/docs/b.md": "B",
	})

	res, err := f.expander(expander.Config{}).ExpandDocument(context.Background(), "{% include \"a.md\" %}", "/docs/index.md")
	require.NoError(t, err)
	assert.Equal(t, "BB", res.Text)
	assert.Equal(t, []string{"/docs/a.md", "/docs/b.md"}, res.Includes)
}

func TestExpand_CircularInclude(t *testing.T) {
	f := newFixture(t, map[string]string{
		"/docs/a.md": "{% include \"b.md\" %}",
		"/docs/b.md": "{% include \"a.md\" %}",
	})

	_, err := f.expander(expander.Config{}).Expand(context.Background(), "{% include \"a.md\" %}", "/docs/index.md")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrCircularInclude))
	assert.Contains(t, err.Error(), "index.md -> a.md -> b.md -> a.md")
}

func TestExpand_SelfInclude(t *testing.T) {
	f := newFixture(t, map[string]string{"/docs/index.md": "x"})

	_, err := f.expander(expander.Config{}).Expand(context.Background(), "{% include \"index.md\" %}", "/docs/index.md")
	assert.ErrorIs(t, err, domain.ErrCircularInclude)
}

func TestExpand_NestingTooDeep(t *testing.T) {
	f := newFixture(t, map[string]string{
		"/docs/a.md": "{% include \"b.md\" %}",
		"/docs/b.md": "B",
	})

	_, err := f.expander(expander.Config{MaxDepth: 2}).Expand(context.Background(), "{% include \"a.md\" %}", "/docs/index.md")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNestingTooDeep)

	got, err := f.expander(expander.Config{MaxDepth: 3}).Expand(context.Background(), "{% include \"a.md\" %}", "/docs/index.md")
	require.NoError(t, err)
	assert.Equal(t, "B", got)
}

func TestExpand_ErrorsCarryLocation(t *testing.T) {
	f := newFixture(t, nil)
	e := f.expander(expander.Config{})

	_, err := e.Expand(context.Background(), "line one\n{% include \"a.md\" heading-offset=1 %}", "/docs/index.md")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnknownOption)
	assert.Contains(t, err.Error(), "include directive at index.md:2")

	var zErr *zerr.Error
	require.ErrorAs(t, err, &zErr)
	meta := zErr.Metadata()
	assert.Equal(t, 2, meta["line"])
	assert.Equal(t, "/docs/index.md", meta["file"])
	assert.Equal(t, 9, meta["offset"])
}

func TestExpand_ErrorsInsideIncludedFiles(t *testing.T) {
	f := newFixture(t, map[string]string{"/docs/a.md": "\n\n{% include \"missing.md\" %}"})

	_, err := f.expander(expander.Config{}).Expand(context.Background(), "{% include \"a.md\" %}", "/docs/index.md")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrResolution)
	assert.Contains(t, err.Error(), "include directive at index.md:1")
	assert.Contains(t, err.Error(), "include directive at a.md:3")
}

func TestExpand_InputWithoutPath(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.expander(expander.Config{}).Expand(context.Background(), "{% include %}", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrParse)
	assert.Contains(t, err.Error(), "<input>:1")
}

func TestExpand_MissingDelimitersWarnOnce(t *testing.T) {
	f := newFixture(t, map[string]string{
		"/docs/parts/a.md": "one",
		"/docs/parts/b.md": "two",
	})
	f.logger.EXPECT().Warn(gomock.Any()).Do(func(msg string) {
		assert.Contains(t, msg, `delimiter start "<!--s-->"`)
		assert.Contains(t, msg, "parts/a.md, parts/b.md")
	}).Times(1)

	got, err := f.expander(expander.Config{}).Expand(context.Background(), "{% include \"parts/*\" start=\"<!--s-->\" %}", "/docs/index.md")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestExpand_DelimiterFoundInOneFileDoesNotWarn(t *testing.T) {
	f := newFixture(t, map[string]string{
		"/docs/parts/a.md": "one",
		"/docs/parts/b.md": "<!--s-->two",
	})

	got, err := f.expander(expander.Config{}).Expand(context.Background(), "{% include \"parts/*\" start=\"<!--s-->\" %}", "/docs/index.md")
	require.NoError(t, err)
	assert.Equal(t, "two", got)
}

func TestExpand_URLTargets(t *testing.T) {
	const url = "https://example.com/README.md"
	f := newFixture(t, nil)
	f.fetcher.EXPECT().FetchURL(gomock.Any(), url, "utf-8").Return("remote [link](docs/x.md)\n", nil).Times(2)
	f.logger.EXPECT().Warn(gomock.Any()).Do(func(msg string) {
		assert.Contains(t, msg, "order is ignored for URL "+url)
	}).Times(1)

	e := f.expander(expander.Config{})
	got, err := e.Expand(context.Background(), "{% include-markdown \""+url+"\" %}", "/docs/index.md")
	require.NoError(t, err)
	assert.Equal(t, "remote [link](docs/x.md)\n", got)

	_, err = e.Expand(context.Background(), "{% include-markdown \""+url+"\" order=\"size\" %}", "/docs/index.md")
	require.NoError(t, err)
}

func TestExpand_FetchError(t *testing.T) {
	const url = "https://example.com/gone.md"
	f := newFixture(t, nil)
	f.fetcher.EXPECT().FetchURL(gomock.Any(), url, "utf-8").
		Return("", zerr.With(zerr.Wrap(domain.ErrFetch, "unexpected status"), "status", 404))

	_, err := f.expander(expander.Config{}).Expand(context.Background(), "{% include \""+url+"\" %}", "/docs/index.md")
	assert.ErrorIs(t, err, domain.ErrFetch)
}

func TestExpand_ContextCanceled(t *testing.T) {
	f := newFixture(t, map[string]string{"/docs/a.md": "A"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.expander(expander.Config{}).Expand(ctx, "{% include \"a.md\" %}", "/docs/index.md")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExpand_RecordsSpans(t *testing.T) {
	ctrl := gomock.NewController(t)
	f := newFixture(t, map[string]string{"/docs/a.md": "A"})
	tracer := mocks.NewMockTracer(ctrl)
	span := mocks.NewMockSpan(ctrl)

	tracer.EXPECT().Start(gomock.Any(), "expand").DoAndReturn(
		func(ctx context.Context, _ string) (context.Context, ports.Span) {
			return ctx, span
		}).Times(1)
	tracer.EXPECT().Start(gomock.Any(), "include").DoAndReturn(
		func(ctx context.Context, _ string) (context.Context, ports.Span) {
			return ctx, span
		}).Times(1)
	span.EXPECT().SetAttribute("document", "index.md")
	span.EXPECT().SetAttribute("include.target", "a.md")
	span.EXPECT().SetAttribute("include.depth", 1)
	span.EXPECT().End().Times(2)

	e := expander.New(expander.Config{DocsRoot: docsRoot}, f.resolver, f.fetcher, f.logger, expander.WithTracer(tracer))
	got, err := e.Expand(context.Background(), "{% include \"a.md\" %}", "/docs/index.md")
	require.NoError(t, err)
	assert.Equal(t, "A", got)
}
