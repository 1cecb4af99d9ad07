package transform

import (
	"strings"
	"unicode"
)

// Indent prefixes every line after the first with indent. The first line
// already follows the includer's own indentation in the output.
func Indent(text, indent string) string {
	if indent == "" || text == "" {
		return text
	}

	lines := strings.SplitAfter(text, "\n")
	var b strings.Builder
	b.Grow(len(text) + len(indent)*len(lines))
	for i, line := range lines {
		if line == "" {
			continue
		}
		if i > 0 {
			b.WriteString(indent)
		}
		b.WriteString(line)
	}
	return b.String()
}

// IncluderIndent returns the text between the start of the line and the
// directive at pos, with every non-whitespace rune replaced by a space.
func IncluderIndent(text string, pos int) string {
	lineStart := strings.LastIndexByte(text[:pos], '\n') + 1
	prefix := text[lineStart:pos]
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, prefix)
}
