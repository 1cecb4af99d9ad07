package expander

import (
	"strings"

	"go.trai.ch/stitch/internal/core/domain"
	"go.trai.ch/zerr"
)

// expansionContext is the state of one top-level Expand call.
type expansionContext struct {
	maxDepth int
	display  func(string) string

	// inProgress is the chain of files and URLs currently being expanded,
	// outermost first. index mirrors it for constant-time membership tests.
	inProgress []string
	index      map[string]struct{}

	includes []string
	seen     map[string]struct{}
}

func newExpansionContext(maxDepth int, display func(string) string) *expansionContext {
	return &expansionContext{
		maxDepth: maxDepth,
		display:  display,
		index:    make(map[string]struct{}),
		seen:     make(map[string]struct{}),
	}
}

func (c *expansionContext) push(id string) error {
	if _, ok := c.index[id]; ok {
		chain := make([]string, 0, len(c.inProgress)+1)
		for _, p := range c.inProgress {
			chain = append(chain, c.display(p))
		}
		chain = append(chain, c.display(id))
		return zerr.With(
			zerr.Wrap(domain.ErrCircularInclude, strings.Join(chain, " -> ")),
			"chain", chain,
		)
	}
	if c.maxDepth > 0 && len(c.inProgress) >= c.maxDepth {
		return zerr.With(zerr.Wrap(domain.ErrNestingTooDeep, c.display(id)), "max_depth", c.maxDepth)
	}
	c.inProgress = append(c.inProgress, id)
	c.index[id] = struct{}{}
	return nil
}

func (c *expansionContext) pop() {
	n := len(c.inProgress) - 1
	delete(c.index, c.inProgress[n])
	c.inProgress = c.inProgress[:n]
}

func (c *expansionContext) depth() int {
	return len(c.inProgress)
}

// track records a local file read during expansion.
func (c *expansionContext) track(path string) {
	if _, ok := c.seen[path]; ok {
		return
	}
	c.seen[path] = struct{}{}
	c.includes = append(c.includes, path)
}
