package symgraph

import "github.com/hupe1980/symgraph/regions"

// ConstructKind discriminates the constructs a parser can report.
type ConstructKind uint8

const (
	// ConstructDeclaration is a named declaration such as a rule.
	ConstructDeclaration ConstructKind = iota
	// ConstructReference is a use of a declared name.
	ConstructReference
	// ConstructBlock is a labeled block nested in a declaration.
	ConstructBlock
)

func (k ConstructKind) String() string {
	switch k {
	case ConstructDeclaration:
		return "declaration"
	case ConstructReference:
		return "reference"
	case ConstructBlock:
		return "block"
	default:
		return "unknown"
	}
}

// Construct is one fact reported by a parser. It is implemented only by
// Declaration, Reference and Block.
type Construct interface {
	ConstructKind() ConstructKind
	sealed()
}

// Declaration declares Name over [Start, End). NameStart is the offset of
// the name token, or -1 if the declaration has no name token in the source.
type Declaration struct {
	Name      string       `json:"name" yaml:"name"`
	Kind      regions.Kind `json:"kind" yaml:"kind"`
	Start     int          `json:"start" yaml:"start"`
	End       int          `json:"end" yaml:"end"`
	NameStart int          `json:"name_start" yaml:"name_start"`
}

// Reference is a use of Name at [Start, End).
type Reference struct {
	Name  string `json:"name" yaml:"name"`
	Start int    `json:"start" yaml:"start"`
	End   int    `json:"end" yaml:"end"`
}

// Block is a labeled block nested inside a declaration. It is indexed as a
// LabeledAlternative declaration without a name token.
type Block struct {
	Name  string `json:"name" yaml:"name"`
	Start int    `json:"start" yaml:"start"`
	End   int    `json:"end" yaml:"end"`
}

func (Declaration) ConstructKind() ConstructKind { return ConstructDeclaration }
func (Reference) ConstructKind() ConstructKind   { return ConstructReference }
func (Block) ConstructKind() ConstructKind       { return ConstructBlock }

func (Declaration) sealed() {}
func (Reference) sealed()   {}
func (Block) sealed()       {}

// nameFuncs extracts the name of each construct kind.
var nameFuncs = [...]func(Construct) string{
	ConstructDeclaration: func(c Construct) string { return c.(Declaration).Name },
	ConstructReference:   func(c Construct) string { return c.(Reference).Name },
	ConstructBlock:       func(c Construct) string { return c.(Block).Name },
}

// NameOf returns the name carried by c.
func NameOf(c Construct) string {
	return nameFuncs[c.ConstructKind()](c)
}
