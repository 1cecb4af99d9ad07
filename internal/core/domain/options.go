package domain

import (
	"strings"
)

// Option identifies one directive option. Values are bit flags so a set of
// options fits in a single Option.
type Option uint16

// Recognized options.
const (
	OptStart Option = 1 << iota
	OptEnd
	OptPreserveIncluderIndent
	OptDedent
	OptTrailingNewlines
	OptComments
	OptRewriteRelativeURLs
	OptHeadingOffset
	OptExclude
	OptRecursive
	OptOrder
	OptEncoding
)

const (
	verbatimOptions = OptStart | OptEnd | OptPreserveIncluderIndent | OptDedent |
		OptTrailingNewlines | OptExclude | OptRecursive | OptOrder | OptEncoding
	markdownOptions = verbatimOptions | OptComments | OptRewriteRelativeURLs | OptHeadingOffset
)

var optionNames = map[Option]string{
	OptStart:                  "start",
	OptEnd:                    "end",
	OptPreserveIncluderIndent: "preserve_includer_indent",
	OptDedent:                 "dedent",
	OptTrailingNewlines:       "trailing_newlines",
	OptComments:               "comments",
	OptRewriteRelativeURLs:    "rewrite_relative_urls",
	OptHeadingOffset:          "heading_offset",
	OptExclude:                "exclude",
	OptRecursive:              "recursive",
	OptOrder:                  "order",
	OptEncoding:               "encoding",
}

var optionsByName = func() map[string]Option {
	m := make(map[string]Option, len(optionNames))
	for opt, name := range optionNames {
		m[name] = opt
	}
	return m
}()

func (o Option) String() string {
	if name, ok := optionNames[o]; ok {
		return name
	}
	return "unknown"
}

// LookupOption resolves an option name. The hyphenated spelling of a name is
// accepted as an alias.
func LookupOption(name string) (Option, bool) {
	opt, ok := optionsByName[strings.ReplaceAll(name, "-", "_")]
	return opt, ok
}

// Accepts reports whether directives of this kind recognize opt.
func (k Kind) Accepts(opt Option) bool {
	switch k {
	case KindMarkdown:
		return markdownOptions&opt == opt
	case KindVerbatim:
		return verbatimOptions&opt == opt
	default:
		return false
	}
}

// Options holds typed directive option values. Set records which options were
// given explicitly so that layered defaults can be merged.
type Options struct {
	Start                  string
	End                    string
	PreserveIncluderIndent bool
	Dedent                 bool
	TrailingNewlines       bool
	Comments               bool
	RewriteRelativeURLs    bool
	HeadingOffset          int
	Exclude                string
	Recursive              bool
	Order                  Order
	Encoding               string

	Set Option
}

// DefaultOptions returns the built-in option defaults.
func DefaultOptions() Options {
	return Options{
		PreserveIncluderIndent: true,
		TrailingNewlines:       true,
		Comments:               false,
		RewriteRelativeURLs:    true,
		Recursive:              true,
		Order:                  DefaultOrder(),
		Encoding:               "utf-8",
	}
}

// Has reports whether opt was set explicitly.
func (o Options) Has(opt Option) bool {
	return o.Set&opt != 0
}

// Merge returns o overlaid with every option explicitly set in over.
func (o Options) Merge(over Options) Options {
	out := o
	if over.Has(OptStart) {
		out.Start = over.Start
	}
	if over.Has(OptEnd) {
		out.End = over.End
	}
	if over.Has(OptPreserveIncluderIndent) {
		out.PreserveIncluderIndent = over.PreserveIncluderIndent
	}
	if over.Has(OptDedent) {
		out.Dedent = over.Dedent
	}
	if over.Has(OptTrailingNewlines) {
		out.TrailingNewlines = over.TrailingNewlines
	}
	if over.Has(OptComments) {
		out.Comments = over.Comments
	}
	if over.Has(OptRewriteRelativeURLs) {
		out.RewriteRelativeURLs = over.RewriteRelativeURLs
	}
	if over.Has(OptHeadingOffset) {
		out.HeadingOffset = over.HeadingOffset
	}
	if over.Has(OptExclude) {
		out.Exclude = over.Exclude
	}
	if over.Has(OptRecursive) {
		out.Recursive = over.Recursive
	}
	if over.Has(OptOrder) {
		out.Order = over.Order
	}
	if over.Has(OptEncoding) {
		out.Encoding = over.Encoding
	}
	out.Set |= over.Set
	return out
}
