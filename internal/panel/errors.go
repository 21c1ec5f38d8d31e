package panel

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTransition is returned for a lifecycle or control call made
	// from a state that forbids it. No hardware is touched.
	ErrInvalidTransition = errors.New("panel: invalid state transition")

	// ErrCapabilityUnsupported means the panel did not expose the requested
	// information.
	ErrCapabilityUnsupported = errors.New("panel: capability unsupported")

	// ErrBrightnessRange is returned for a level outside the descriptor.
	ErrBrightnessRange = errors.New("panel: brightness out of range")
)

func invalidTransition(op string, s State) error {
	return fmt.Errorf("%w: %s in state %s", ErrInvalidTransition, op, s)
}
