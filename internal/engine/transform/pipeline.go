package transform

import (
	"go.trai.ch/stitch/internal/core/domain"
)

// Params describes one included file for Apply.
type Params struct {
	Kind    domain.Kind
	Options domain.Options
	// Target is the directive target as written, used in comment markers.
	Target string
	// SourceDir is the slash-separated directory of the included file.
	// Empty for remote content, which disables relative URL rewriting.
	SourceDir   string
	IncluderDir string
	// Indent is the includer's indentation in front of the directive.
	Indent string
}

// Apply runs the stages that follow slicing and nested expansion:
// dedent, heading offset, relative URL rewrite, indent, trailing newlines
// and comment markers.
func Apply(text string, p Params) string {
	opts := p.Options
	markdown := p.Kind == domain.KindMarkdown

	if opts.Dedent {
		text = Dedent(text)
	}
	if markdown && opts.HeadingOffset != 0 {
		text = OffsetHeadings(text, opts.HeadingOffset)
	}
	if markdown && opts.RewriteRelativeURLs && p.SourceDir != "" && p.IncluderDir != "" {
		text = RewriteRelativeURLs(text, p.SourceDir, p.IncluderDir)
	}

	indent := ""
	if opts.PreserveIncluderIndent {
		indent = p.Indent
		text = Indent(text, indent)
	}
	if !opts.TrailingNewlines {
		text = TrimTrailingNewlines(text)
	}

	if markdown && opts.Comments {
		sep := "\n"
		if !opts.TrailingNewlines {
			sep = ""
		}
		text = WrapComments(text, p.Target, opts.Start, opts.End, sep, indent)
	}
	return text
}
