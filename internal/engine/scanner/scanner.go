// Package scanner locates include directives in a text buffer.
package scanner

import (
	"iter"
	"strings"
	"unicode"

	"go.trai.ch/stitch/internal/core/domain"
)

// Match is one directive tag found in a buffer.
type Match struct {
	Kind domain.Kind
	Name string
	// Start and End delimit the whole tag, opening and closing tags included.
	Start int
	End   int
	// Args is the tag body after the directive name.
	Args string
	// Line is the 1-based line on which the tag opens.
	Line int
}

// Scanner finds directive tags delimited by an opening and closing tag.
type Scanner struct {
	open     string
	close    string
	registry domain.Registry
}

// New creates a Scanner for the given tags and directive registry.
func New(open, closeTag string, registry domain.Registry) *Scanner {
	return &Scanner{
		open:     open,
		close:    closeTag,
		registry: registry,
	}
}

// Next returns the first directive whose tag opens at or after from.
// Tags whose first word is not a registered directive are skipped.
func (s *Scanner) Next(text string, from int) (Match, bool) {
	if s.open == "" || s.close == "" {
		return Match{}, false
	}

	for from < len(text) {
		i := strings.Index(text[from:], s.open)
		if i < 0 {
			return Match{}, false
		}
		start := from + i
		bodyStart := start + len(s.open)

		j := strings.Index(text[bodyStart:], s.close)
		if j < 0 {
			return Match{}, false
		}
		body := text[bodyStart : bodyStart+j]

		name, rest := splitName(body)
		kind, ok := s.registry.Lookup(name)
		if !ok {
			from = bodyStart
			continue
		}

		return Match{
			Kind:  kind,
			Name:  name,
			Start: start,
			End:   bodyStart + j + len(s.close),
			Args:  rest,
			Line:  1 + strings.Count(text[:start], "\n"),
		}, true
	}

	return Match{}, false
}

// All yields every directive in text in order of appearance.
// Each range over the returned sequence rescans text from the beginning.
func (s *Scanner) All(text string) iter.Seq[Match] {
	return func(yield func(Match) bool) {
		from := 0
		for {
			m, ok := s.Next(text, from)
			if !ok || !yield(m) {
				return
			}
			from = m.End
		}
	}
}

func splitName(body string) (name, rest string) {
	body = strings.TrimLeftFunc(body, unicode.IsSpace)
	end := strings.IndexFunc(body, unicode.IsSpace)
	if end < 0 {
		return body, ""
	}
	return body[:end], body[end:]
}
