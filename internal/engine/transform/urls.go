package transform

import (
	"path"
	"regexp"
	"strings"
)

var (
	// [text](href "title"), including one level of nested brackets in the text.
	linkRe = regexp.MustCompile(`\[((?:[^\[\]]+(?:\[[^\[\]]+\][^\[\]]*)*)?)\]\(\s*<?([^\s<>()]*)>?\s*(?:"[^"]*"|'[^']*')?\s*\)`)
	// ![alt](src "title")
	imageRe = regexp.MustCompile(`!\[([^\]]*)\]\([ \t]*<?([^\s<>()]+)>?[ \t]*(?:(?:"[^"]*"|'[^']*')[ \t]*)?\)`)
	// [id]: url "title"
	linkDefRe = regexp.MustCompile(`(?m)^[ ]{0,4}\[([^\]]+)\]:[ \t]*\n?[ \t]*<?([^\s<>]+)>?`)
)

// RewriteRelativeURLs rewrites relative link, image and link definition
// targets written for a file in srcDir so they resolve from dstDir. Code
// blocks are left untouched. Directories use forward slashes.
func RewriteRelativeURLs(text, srcDir, dstDir string) string {
	if srcDir == dstDir {
		return text
	}
	rewrite := func(href string) string {
		return rewriteURL(href, srcDir, dstDir)
	}
	return eachParagraphOutsideCode(text, func(p string) string {
		p = replaceGroup(p, linkRe, 2, rewrite, func(s string, start int) bool {
			return start > 0 && s[start-1] == '!'
		})
		p = replaceGroup(p, imageRe, 2, rewrite, nil)
		return replaceGroup(p, linkDefRe, 2, rewrite, nil)
	})
}

func rewriteURL(href, srcDir, dstDir string) string {
	if href == "" || strings.HasPrefix(href, "/") || strings.HasPrefix(href, "#") {
		return href
	}

	target, suffix := href, ""
	if i := strings.IndexAny(href, "?#"); i >= 0 {
		target, suffix = href[:i], href[i:]
	}
	if target == "" || strings.Contains(target, ":") {
		return href
	}

	rel := relPath(path.Join(srcDir, target), dstDir)
	if strings.HasSuffix(target, "/") && !strings.HasSuffix(rel, "/") {
		rel += "/"
	}
	return rel + suffix
}

// relPath returns target relative to base. Both are slash-separated and clean.
func relPath(target, base string) string {
	if base == "." {
		base = ""
	}
	targetParts := splitPath(target)
	baseParts := splitPath(base)

	i := 0
	for i < len(targetParts) && i < len(baseParts) && targetParts[i] == baseParts[i] {
		i++
	}

	parts := make([]string, 0, len(baseParts)-i+len(targetParts)-i)
	for range baseParts[i:] {
		parts = append(parts, "..")
	}
	parts = append(parts, targetParts[i:]...)
	if len(parts) == 0 {
		return "."
	}
	return strings.Join(parts, "/")
}

func splitPath(p string) []string {
	p = strings.Trim(path.Clean(p), "/")
	if p == "" || p == "." {
		return nil
	}
	return strings.Split(p, "/")
}

func replaceGroup(s string, re *regexp.Regexp, group int, fn func(string) string, skip func(string, int) bool) string {
	matches := re.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	last := 0
	for _, m := range matches {
		if skip != nil && skip(s, m[0]) {
			continue
		}
		gs, ge := m[2*group], m[2*group+1]
		if gs < 0 {
			continue
		}
		b.WriteString(s[last:gs])
		b.WriteString(fn(s[gs:ge]))
		last = ge
	}
	b.WriteString(s[last:])
	return b.String()
}

// eachParagraphOutsideCode applies fn to runs of lines that are neither in a
// fenced code block nor in an indented code block.
func eachParagraphOutsideCode(text string, fn func(string) string) string {
	var out, para strings.Builder
	flush := func() {
		if para.Len() > 0 {
			out.WriteString(fn(para.String()))
			para.Reset()
		}
	}

	fence := ""
	prevBlank := true
	inIndented := false
	for _, line := range strings.SplitAfter(text, "\n") {
		if line == "" {
			continue
		}
		stripped := strings.TrimLeft(line, " \t")
		blank := strings.TrimSpace(line) == ""

		switch {
		case fence != "":
			out.WriteString(line)
			if strings.HasPrefix(stripped, fence) {
				fence = ""
			}
		case strings.HasPrefix(stripped, "```") || strings.HasPrefix(stripped, "~~~"):
			flush()
			fence = stripped[:3]
			out.WriteString(line)
		case !blank && isIndentedCode(line) && (prevBlank || inIndented):
			flush()
			inIndented = true
			out.WriteString(line)
		case blank && inIndented:
			out.WriteString(line)
		default:
			inIndented = false
			para.WriteString(line)
		}
		prevBlank = blank
	}
	flush()
	return out.String()
}

func isIndentedCode(line string) bool {
	return strings.HasPrefix(line, "    ") || strings.HasPrefix(line, "\t")
}
