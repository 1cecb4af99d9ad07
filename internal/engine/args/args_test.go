package args_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/stitch/internal/core/domain"
	"go.trai.ch/stitch/internal/engine/args"
)

func TestParse_Target(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "double quoted", body: ` "docs/a.md" `, want: "docs/a.md"},
		{name: "single quoted", body: ` 'docs/a.md'`, want: "docs/a.md"},
		{name: "bare", body: ` docs/a.md`, want: "docs/a.md"},
		{name: "quoted with spaces", body: ` "my file.md"`, want: "my file.md"},
		{name: "escaped quote", body: ` "say \"hi\".md"`, want: `say "hi".md`},
		{name: "other quote kept", body: ` "it's.md"`, want: "it's.md"},
		{name: "escaped backslash", body: ` 'a\\b'`, want: `a\b`},
		{name: "glob", body: ` "**/*.md"`, want: "**/*.md"},
		{name: "url", body: ` "https://example.com/README.md"`, want: "https://example.com/README.md"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, opts, err := args.Parse(tt.body, domain.KindMarkdown)
			require.NoError(t, err)
			assert.Equal(t, tt.want, target)
			assert.Zero(t, opts.Set)
		})
	}
}

func TestParse_Options(t *testing.T) {
	body := ` "a.md" start="<!--start-->" end='<!--end-->' dedent=true
		preserve_includer_indent=false trailing_newlines=false comments=true
		rewrite_relative_urls=false heading_offset=-2 exclude="drafts/*"
		recursive=false order="-natural-name" encoding="latin1"`

	target, opts, err := args.Parse(body, domain.KindMarkdown)
	require.NoError(t, err)

	assert.Equal(t, "a.md", target)
	assert.Equal(t, "<!--start-->", opts.Start)
	assert.Equal(t, "<!--end-->", opts.End)
	assert.True(t, opts.Dedent)
	assert.False(t, opts.PreserveIncluderIndent)
	assert.False(t, opts.TrailingNewlines)
	assert.True(t, opts.Comments)
	assert.False(t, opts.RewriteRelativeURLs)
	assert.Equal(t, -2, opts.HeadingOffset)
	assert.Equal(t, "drafts/*", opts.Exclude)
	assert.False(t, opts.Recursive)
	assert.Equal(t, domain.Order{Type: domain.OrderNatural, Subject: domain.SubjectName, Descending: true}, opts.Order)
	assert.Equal(t, "latin1", opts.Encoding)

	for _, opt := range []domain.Option{
		domain.OptStart, domain.OptEnd, domain.OptDedent, domain.OptPreserveIncluderIndent,
		domain.OptTrailingNewlines, domain.OptComments, domain.OptRewriteRelativeURLs,
		domain.OptHeadingOffset, domain.OptExclude, domain.OptRecursive, domain.OptOrder,
		domain.OptEncoding,
	} {
		assert.True(t, opts.Has(opt), opt.String())
	}
}

func TestParse_HyphenatedAlias(t *testing.T) {
	_, opts, err := args.Parse(` "a.md" preserve-includer-indent=false heading-offset=+1`, domain.KindMarkdown)
	require.NoError(t, err)
	assert.False(t, opts.PreserveIncluderIndent)
	assert.Equal(t, 1, opts.HeadingOffset)
}

func TestParse_EscapesInStringOptions(t *testing.T) {
	_, opts, err := args.Parse(` "a.md" start="line1\nline2\ttab" end="\q\\"`, domain.KindVerbatim)
	require.NoError(t, err)
	assert.Equal(t, "line1\nline2\ttab", opts.Start)
	assert.Equal(t, `\q\`, opts.End)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		kind    domain.Kind
		wantErr error
	}{
		{name: "empty body", body: "   ", kind: domain.KindMarkdown, wantErr: domain.ErrParse},
		{name: "empty quoted target", body: ` ""`, kind: domain.KindMarkdown, wantErr: domain.ErrParse},
		{name: "unterminated target", body: ` "a.md`, kind: domain.KindMarkdown, wantErr: domain.ErrParse},
		{name: "unterminated value", body: ` "a.md" start="x`, kind: domain.KindMarkdown, wantErr: domain.ErrParse},
		{name: "missing equals", body: ` "a.md" dedent`, kind: domain.KindMarkdown, wantErr: domain.ErrParse},
		{name: "missing name", body: ` "a.md" =true`, kind: domain.KindMarkdown, wantErr: domain.ErrParse},
		{name: "duplicate key", body: ` "a.md" dedent=true dedent=false`, kind: domain.KindMarkdown, wantErr: domain.ErrParse},
		{name: "duplicate through alias", body: ` "a.md" heading_offset=1 heading-offset=2`, kind: domain.KindMarkdown, wantErr: domain.ErrParse},
		{name: "unknown key", body: ` "a.md" colour=red`, kind: domain.KindMarkdown, wantErr: domain.ErrUnknownOption},
		{name: "markdown option on verbatim", body: ` "a.md" heading_offset=1`, kind: domain.KindVerbatim, wantErr: domain.ErrUnknownOption},
		{name: "comments on verbatim", body: ` "a.md" comments=true`, kind: domain.KindVerbatim, wantErr: domain.ErrUnknownOption},
		{name: "bad boolean", body: ` "a.md" dedent=yes`, kind: domain.KindMarkdown, wantErr: domain.ErrValidation},
		{name: "capitalized boolean", body: ` "a.md" dedent=True`, kind: domain.KindMarkdown, wantErr: domain.ErrValidation},
		{name: "bad integer", body: ` "a.md" heading_offset=two`, kind: domain.KindMarkdown, wantErr: domain.ErrValidation},
		{name: "bad order", body: ` "a.md" order=shuffled`, kind: domain.KindMarkdown, wantErr: domain.ErrValidation},
		{name: "unknown encoding", body: ` "a.md" encoding="klingon-8"`, kind: domain.KindMarkdown, wantErr: domain.ErrValidation},
		{name: "empty start", body: ` "a.md" start=""`, kind: domain.KindMarkdown, wantErr: domain.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := args.Parse(tt.body, tt.kind)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestUnescape(t *testing.T) {
	tests := map[string]string{
		`plain`:       "plain",
		`a\nb`:        "a\nb",
		`a\tb\rc`:     "a\tb\rc",
		`\"q\"`:       `"q"`,
		`\'q\'`:       `'q'`,
		`back\\slash`: `back\slash`,
		`\d+`:         `\d+`,
		`trailing\`:   `trailing\`,
	}
	for in, want := range tests {
		assert.Equal(t, want, args.Unescape(in), in)
	}
}

func TestSet(t *testing.T) {
	var opts domain.Options
	require.NoError(t, args.Set(&opts, domain.KindMarkdown, "heading-offset", "2"))
	require.NoError(t, args.Set(&opts, domain.KindMarkdown, "comments", "true"))
	assert.Equal(t, 2, opts.HeadingOffset)
	assert.True(t, opts.Comments)
	assert.True(t, opts.Has(domain.OptHeadingOffset|domain.OptComments))
	assert.False(t, opts.Has(domain.OptDedent))

	err := args.Set(&opts, domain.KindVerbatim, "comments", "true")
	assert.ErrorIs(t, err, domain.ErrUnknownOption)

	err = args.Set(&opts, domain.KindMarkdown, "dedent", "yes")
	assert.ErrorIs(t, err, domain.ErrValidation)
}
