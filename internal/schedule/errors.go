package schedule

import (
	"errors"
	"fmt"
)

var (
	// ErrSlotCovered is returned when a booking targets a label already
	// covered by one of the technician's entries.
	ErrSlotCovered = errors.New("slot is already covered")
	// ErrBusy is returned while the same action on the same entry is in flight.
	ErrBusy = errors.New("action already in progress")
)

// ValidationError reports bad caller input. No store call is made when it
// is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
