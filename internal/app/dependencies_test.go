package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/stitch/internal/core/domain"
)

func TestDependencies(t *testing.T) {
	t.Parallel()

	deps := newDependencies()
	deps.set("/docs/index.md", []string{"/docs/part.md", "/shared/a.md"})
	deps.set("/docs/guide.md", []string{"/shared/a.md", "/shared/b.md"})

	docs, full := deps.affected([]string{"/shared/a.md"})
	assert.False(t, full)
	assert.Equal(t, map[string]struct{}{"/docs/index.md": {}, "/docs/guide.md": {}}, docs)

	docs, full = deps.affected([]string{"/docs/guide.md"})
	assert.False(t, full)
	assert.Equal(t, map[string]struct{}{"/docs/guide.md": {}}, docs)

	_, full = deps.affected([]string{"/docs/part.md", "/docs/new.md"})
	assert.True(t, full)

	assert.Equal(t, []string{"/shared/a.md", "/shared/b.md"}, deps.external("/docs"))
}

func TestOutputExclude(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		out  string
		want []string
	}{
		{name: "nested", out: "/p/docs/site", want: []string{"site/**"}},
		{name: "sibling", out: "/p/build", want: nil},
		{name: "parent", out: "/p", want: nil},
		{name: "same", out: "/p/docs", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := &domain.Config{DocsDir: "/p/docs", OutDir: tt.out}
			assert.Equal(t, tt.want, outputExclude(cfg))
		})
	}
}
