package transform

import "strings"

// Dedent removes the longest common leading whitespace from every non-blank
// line. Lines holding only whitespace are emptied.
func Dedent(text string) string {
	lines := strings.SplitAfter(text, "\n")

	margin := ""
	first := true
	for _, line := range lines {
		content := strings.TrimRight(line, "\r\n")
		trimmed := strings.TrimLeft(content, " \t")
		if trimmed == "" {
			continue
		}
		indent := content[:len(content)-len(trimmed)]
		if first {
			margin = indent
			first = false
			continue
		}
		margin = commonPrefix(margin, indent)
		if margin == "" {
			break
		}
	}

	var b strings.Builder
	b.Grow(len(text))
	for _, line := range lines {
		content := strings.TrimRight(line, "\r\n")
		eol := line[len(content):]
		if strings.TrimLeft(content, " \t") == "" {
			b.WriteString(eol)
			continue
		}
		b.WriteString(strings.TrimPrefix(content, margin))
		b.WriteString(eol)
	}
	return b.String()
}

func commonPrefix(a, b string) string {
	n := min(len(a), len(b))
	for i := range n {
		if a[i] != b[i] {
			return a[:i]
		}
	}
	return a[:n]
}
