package domain

import (
	"maps"
	"slices"
)

// Kind is the closed set of directive kinds.
type Kind uint8

const (
	// KindMarkdown splices content as Markdown and enables the Markdown-only transforms.
	KindMarkdown Kind = iota + 1
	// KindVerbatim splices content as-is apart from slicing, dedent, indent and newlines.
	KindVerbatim
)

// Default directive names.
const (
	DirectiveIncludeMarkdown = "include-markdown"
	DirectiveInclude         = "include"
)

func (k Kind) String() string {
	switch k {
	case KindMarkdown:
		return "markdown"
	case KindVerbatim:
		return "verbatim"
	default:
		return "unknown"
	}
}

// Registry maps directive names to kinds.
type Registry map[string]Kind

// DefaultRegistry returns the registry with the built-in directive names.
func DefaultRegistry() Registry {
	return Registry{
		DirectiveIncludeMarkdown: KindMarkdown,
		DirectiveInclude:         KindVerbatim,
	}
}

// Lookup returns the kind registered for name.
func (r Registry) Lookup(name string) (Kind, bool) {
	k, ok := r[name]
	return k, ok
}

// Rename returns a copy of the registry where the directive of the given kind
// answers to newName instead of its previous names.
func (r Registry) Rename(kind Kind, newName string) Registry {
	out := make(Registry, len(r))
	for name, k := range r {
		if k != kind {
			out[name] = k
		}
	}
	out[newName] = kind
	return out
}

// Names returns the registered names in sorted order.
func (r Registry) Names() []string {
	return slices.Sorted(maps.Keys(r))
}

// Invocation is one parsed directive occurrence in a source buffer.
type Invocation struct {
	Kind    Kind
	Name    string
	Start   int
	End     int
	Line    int
	Target  string
	Options Options
}
