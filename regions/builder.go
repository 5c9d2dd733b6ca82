package regions

import (
	"slices"

	"github.com/hupe1980/symgraph/maskedset"
)

// Builder collects declared names before an Index is created.
type Builder struct {
	kinds map[string]Kind
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{kinds: make(map[string]Kind)}
}

// Declare registers name with kind. Declaring a name again overwrites its kind.
func (b *Builder) Declare(name string, kind Kind) *Builder {
	b.kinds[name] = kind
	return b
}

// Len returns the number of distinct declared names.
func (b *Builder) Len() int { return len(b.kinds) }

// Build creates an Index over the declared names with all offsets unset.
func (b *Builder) Build(policy EndPolicy) *Index {
	names := make([]string, 0, len(b.kinds))
	for name := range b.kinds {
		names = append(names, name)
	}
	slices.Sort(names)

	kinds := make([]Kind, len(names))
	for i, name := range names {
		kinds[i] = b.kinds[name]
	}
	return newIndex(&table{names: maskedset.Names(names), kinds: kinds}, policy)
}
