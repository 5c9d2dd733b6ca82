package symgraph

import (
	"errors"
	"fmt"

	"github.com/hupe1980/symgraph/blobstore"
	"github.com/hupe1980/symgraph/persistence"
	"github.com/hupe1980/symgraph/regions"
)

var (
	// ErrNotFound is returned for unknown names and missing snapshots.
	ErrNotFound = errors.New("not found")
	// ErrInvalidBounds is returned for empty or inverted spans.
	ErrInvalidBounds = errors.New("invalid bounds")
	// ErrOrderingViolation is returned when references to one name are not
	// reported in source order.
	ErrOrderingViolation = errors.New("ordering violation")
	// ErrDuplicateName is returned when a name is declared twice.
	ErrDuplicateName = errors.New("duplicate name")
	// ErrInvalidName is returned for empty names and reserved snapshot
	// names.
	ErrInvalidName = errors.New("invalid name")
	// ErrMissingKind is returned for document declarations without a kind.
	ErrMissingKind = errors.New("missing kind")
	// ErrFrozen is returned when a Builder is used after Freeze.
	ErrFrozen = errors.New("builder is frozen")
	// ErrUnsupportedVersion is returned when a snapshot was written by an
	// incompatible format version.
	ErrUnsupportedVersion = errors.New("unsupported format version")
	// ErrCorrupt is returned when a snapshot fails validation.
	ErrCorrupt = errors.New("corrupt snapshot")
)

// NameError reports a problem with one declared or referenced name.
//
// errors.Is matches both the classifying sentinel (e.g. ErrDuplicateName)
// and the underlying cause.
type NameError struct {
	Name  string
	Kind  error
	cause error
}

func (e *NameError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%v: %q: %v", e.Kind, e.Name, e.cause)
	}
	return fmt.Sprintf("%v: %q", e.Kind, e.Name)
}

func (e *NameError) Unwrap() []error {
	if e.cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.cause}
}

// OrderingError reports a reference that starts before the previous
// reference to the same name ends.
type OrderingError struct {
	Name    string
	Start   int
	PrevEnd int
	cause   error
}

func (e *OrderingError) Error() string {
	return fmt.Sprintf("ordering violation: reference to %q at %d precedes previous occurrence ending at %d",
		e.Name, e.Start, e.PrevEnd)
}

func (e *OrderingError) Unwrap() []error {
	if e.cause == nil {
		return []error{ErrOrderingViolation}
	}
	return []error{ErrOrderingViolation, e.cause}
}

func translateError(err error) error {
	if err == nil {
		return nil
	}

	var ne *NameError
	var oe *OrderingError
	if errors.As(err, &ne) || errors.As(err, &oe) {
		return err
	}

	switch {
	case errors.Is(err, regions.ErrNotFound), errors.Is(err, blobstore.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, regions.ErrInvalidBounds):
		return fmt.Errorf("%w: %w", ErrInvalidBounds, err)
	case errors.Is(err, regions.ErrOrderingViolation):
		return fmt.Errorf("%w: %w", ErrOrderingViolation, err)
	case errors.Is(err, persistence.ErrUnsupportedVersion):
		return fmt.Errorf("%w: %w", ErrUnsupportedVersion, err)
	case errors.Is(err, persistence.ErrCorrupt),
		errors.Is(err, persistence.ErrInvalidMagic),
		persistence.IsChecksumMismatch(err):
		return fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	return err
}
