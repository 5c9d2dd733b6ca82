package regions

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by write operations on an undeclared or removed name.
	ErrNotFound = errors.New("name not found")
	// ErrInvalidBounds is returned for empty or inverted spans.
	ErrInvalidBounds = errors.New("invalid bounds")
	// ErrOrderingViolation is returned when references are not added in source order.
	ErrOrderingViolation = errors.New("ordering violation")
)

// Unset marks offsets that have not been assigned yet.
const Unset = -1

// Kind classifies a declaration.
type Kind uint8

const (
	// Fragment is a lexer fragment rule.
	Fragment Kind = iota
	// Terminal is a token rule.
	Terminal
	// Production is a parser rule.
	Production
	// LabeledAlternative is a labeled alternative inside a parser rule.
	LabeledAlternative
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case Fragment:
		return "fragment"
	case Terminal:
		return "terminal"
	case Production:
		return "production"
	case LabeledAlternative:
		return "labeled-alternative"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ParseKind maps the result of Kind.String back to a Kind.
func ParseKind(s string) (Kind, error) {
	for k := Fragment; k <= LabeledAlternative; k++ {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown kind %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if k > LabeledAlternative {
		return nil, fmt.Errorf("unknown kind %d", uint8(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	v, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// EndPolicy selects how region ends are stored.
type EndPolicy uint8

const (
	// NameLengthEnds derives each end as start + len(name). Used for
	// indexes over name tokens.
	NameLengthEnds EndPolicy = iota
	// ExplicitEnds stores an end per region.
	ExplicitEnds
)

// String returns the name of the policy.
func (p EndPolicy) String() string {
	switch p {
	case NameLengthEnds:
		return "name-length"
	case ExplicitEnds:
		return "explicit"
	default:
		return fmt.Sprintf("policy(%d)", uint8(p))
	}
}

// Region is a named half-open span [Start, End) of source text.
type Region struct {
	Name  string
	Kind  Kind
	Start int
	End   int
	// Index is the stable storage slot of the region.
	Index int
}

// IsSet reports whether offsets have been assigned.
func (r Region) IsSet() bool { return r.Start != Unset }

// Contains reports whether pos lies inside the region.
func (r Region) Contains(pos int) bool {
	return r.IsSet() && r.Start <= pos && pos < r.End
}

// Len returns the length of the span, or 0 if unset.
func (r Region) Len() int {
	if !r.IsSet() {
		return 0
	}
	return r.End - r.Start
}

func (r Region) String() string {
	if !r.IsSet() {
		return fmt.Sprintf("%s(%s)[unset]", r.Name, r.Kind)
	}
	return fmt.Sprintf("%s(%s)[%d,%d)", r.Name, r.Kind, r.Start, r.End)
}
