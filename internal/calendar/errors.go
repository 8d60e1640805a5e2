package calendar

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRange reports a bad domain or selection: a missing bound, an
	// empty domain, an endpoint outside the domain, or a start after the end.
	// Callers must fix their input; the model keeps its previous state.
	ErrInvalidRange = errors.New("invalid range")

	// ErrIllegalState reports a request for grid data before Initialize has
	// produced at least one month.
	ErrIllegalState = errors.New("illegal state")
)

func invalidRange(format string, args ...any) error {
	return fmt.Errorf("calendar: "+format+": %w", append(args, ErrInvalidRange)...)
}
