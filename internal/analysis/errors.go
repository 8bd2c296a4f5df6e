package analysis

import (
	"errors"
	"fmt"
)

var (
	// ErrLayoutInvalid means the identifier column or the data start row could not be determined.
	ErrLayoutInvalid = errors.New("layout invalid")
	// ErrBadSample means a measurement cell could not be read as a number.
	ErrBadSample = errors.New("bad sample")
)

// SampleError reports the entity and column whose measurement could not be coerced.
type SampleError struct {
	Entity string
	Column string
	Value  string
	Reason string
}

func (e *SampleError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("bad sample for %s: %s", e.Entity, e.Reason)
	}
	return fmt.Sprintf("bad sample for %s in column %q (value %q): %s", e.Entity, e.Column, e.Value, e.Reason)
}

// Unwrap lets errors.Is(err, ErrBadSample) match.
func (e *SampleError) Unwrap() error { return ErrBadSample }
