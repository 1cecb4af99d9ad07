package transform

import (
	"html"
	"strings"
)

// WrapComments surrounds text with BEGIN/END INCLUDE HTML comments naming the
// target and any delimiters. sep separates the markers from the content and
// indent is repeated after each separator.
func WrapComments(text, target, start, end, sep, indent string) string {
	var b strings.Builder
	b.WriteString("<!-- BEGIN INCLUDE ")
	b.WriteString(html.EscapeString(target))
	b.WriteByte(' ')
	if start != "" || end != "" {
		b.WriteString("'" + html.EscapeString(start) + "' ")
		b.WriteString("'" + html.EscapeString(end) + "' ")
	}
	b.WriteString("-->")
	writeSep(&b, sep, indent)
	b.WriteString(text)
	writeSep(&b, sep, indent)
	b.WriteString("<!-- END INCLUDE -->")
	return b.String()
}

func writeSep(b *strings.Builder, sep, indent string) {
	if sep == "" {
		return
	}
	b.WriteString(sep)
	b.WriteString(indent)
}
