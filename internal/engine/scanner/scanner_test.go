package scanner_test

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/stitch/internal/core/domain"
	"go.trai.ch/stitch/internal/engine/scanner"
)

func newScanner() *scanner.Scanner {
	return scanner.New(domain.DefaultOpeningTag, domain.DefaultClosingTag, domain.DefaultRegistry())
}

func TestScanner_Next(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantOK   bool
		wantKind domain.Kind
		wantName string
		wantArgs string
		wantLine int
		wantTag  string
	}{
		{
			name:     "markdown directive",
			text:     "intro\n{% include-markdown \"a.md\" dedent=true %}\n",
			wantOK:   true,
			wantKind: domain.KindMarkdown,
			wantName: "include-markdown",
			wantArgs: ` "a.md" dedent=true `,
			wantLine: 2,
			wantTag:  `{% include-markdown "a.md" dedent=true %}`,
		},
		{
			name:     "verbatim directive",
			text:     `{%include 'code.py'%}`,
			wantOK:   true,
			wantKind: domain.KindVerbatim,
			wantName: "include",
			wantArgs: ` 'code.py'`,
			wantLine: 1,
			wantTag:  `{%include 'code.py'%}`,
		},
		{
			name: "no tags",
			text: "plain text",
		},
		{
			name: "open tag without close tag",
			text: "{% include \"a.md\"",
		},
		{
			name: "unknown directive is left alone",
			text: "{% raw %}{{ x }}{% endraw %}",
		},
		{
			name:     "unknown directive does not hide a later one",
			text:     "{% if x %}\n\n{% include \"b.md\" %}",
			wantOK:   true,
			wantKind: domain.KindVerbatim,
			wantName: "include",
			wantArgs: ` "b.md" `,
			wantLine: 3,
			wantTag:  `{% include "b.md" %}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := newScanner().Next(tt.text, 0)
			require.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				return
			}
			assert.Equal(t, tt.wantKind, m.Kind)
			assert.Equal(t, tt.wantName, m.Name)
			assert.Equal(t, tt.wantArgs, m.Args)
			assert.Equal(t, tt.wantLine, m.Line)
			assert.Equal(t, tt.wantTag, tt.text[m.Start:m.End])
		})
	}
}

func TestScanner_FirstCloseTagWins(t *testing.T) {
	text := `{% include "a.md" %} tail %}`
	m, ok := newScanner().Next(text, 0)
	require.True(t, ok)
	assert.Equal(t, `{% include "a.md" %}`, text[m.Start:m.End])
}

func TestScanner_All(t *testing.T) {
	text := "{% include \"a\" %}\n{% other %}\n{% include-markdown \"b\" %}\n"
	s := newScanner()

	var names []string
	for m := range s.All(text) {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"include", "include-markdown"}, names)

	// Ranging again restarts from the beginning.
	again := slices.Collect(s.All(text))
	require.Len(t, again, 2)
	assert.Equal(t, 3, again[1].Line)
}

func TestScanner_All_StopsEarly(t *testing.T) {
	text := `{% include "a" %}{% include "b" %}{% include "c" %}`
	count := 0
	for range newScanner().All(text) {
		count++
		if count == 2 {
			break
		}
	}
	assert.Equal(t, 2, count)
}

func TestScanner_CustomTagsAndNames(t *testing.T) {
	registry := domain.DefaultRegistry().Rename(domain.KindMarkdown, "embed")
	s := scanner.New("<<", ">>", registry)

	text := `<< include-markdown "a.md" >> << embed "b.md" >>`
	matches := slices.Collect(s.All(text))
	require.Len(t, matches, 1)
	assert.Equal(t, "embed", matches[0].Name)
	assert.Equal(t, domain.KindMarkdown, matches[0].Kind)
}

func TestScanner_EmptyTags(t *testing.T) {
	s := scanner.New("", "", domain.DefaultRegistry())
	_, ok := s.Next("anything", 0)
	assert.False(t, ok)
}
