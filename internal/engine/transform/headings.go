package transform

import (
	"strings"
)

// OffsetHeadings shifts the level of every ATX heading by offset. A heading
// whose level drops to zero or below becomes plain text. Lines inside fenced
// code blocks are left untouched.
func OffsetHeadings(text string, offset int) string {
	if offset == 0 {
		return text
	}
	return eachLineOutsideFences(text, func(line string) string {
		return offsetHeading(line, offset)
	})
}

func offsetHeading(line string, offset int) string {
	hashes := len(line) - len(strings.TrimLeft(line, "#"))
	if hashes == 0 {
		return line
	}

	rest := line[hashes:]
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' && rest[0] != '\n' && rest[0] != '\r' {
		return line
	}

	n := hashes + offset
	if n <= 0 {
		if rest != "" && (rest[0] == ' ' || rest[0] == '\t') {
			rest = rest[1:]
		}
		return rest
	}
	return strings.Repeat("#", n) + rest
}

// eachLineOutsideFences applies fn to every line that is not part of a fenced
// code block. Lines passed to fn keep their line terminator.
func eachLineOutsideFences(text string, fn func(string) string) string {
	var b strings.Builder
	b.Grow(len(text))

	fence := ""
	for _, line := range strings.SplitAfter(text, "\n") {
		stripped := strings.TrimLeft(line, " \t")
		switch {
		case fence != "":
			if strings.HasPrefix(stripped, fence) {
				fence = ""
			}
			b.WriteString(line)
		case strings.HasPrefix(stripped, "```") || strings.HasPrefix(stripped, "~~~"):
			fence = stripped[:3]
			b.WriteString(line)
		default:
			b.WriteString(fn(line))
		}
	}
	return b.String()
}
