package status

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is returned when a status transition is not in the
// aggregate's transition graph.
var ErrInvalidTransition = errors.New("invalid state transition")

// InvalidTransitionError carries the attempted edge for diagnostics.
type InvalidTransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s: invalid state transition %s -> %s", e.Entity, e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// NewInvalidTransition builds an InvalidTransitionError for the given edge.
func NewInvalidTransition(entity string, from, to fmt.Stringer) error {
	return &InvalidTransitionError{Entity: entity, From: from.String(), To: to.String()}
}
