package power

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/gpio"
)

// ErrNotHeld is returned by Release on a line nobody acquired.
var ErrNotHeld = errors.New("power: shared line released more often than acquired")

// SharedLine is a reference-counted enable line. Only the 0->1 and 1->0
// count transitions drive the pin. A line found asserted at startup (left on
// by the bootloader, for example) counts as held with a zero count until
// its first full acquire/release cycle.
//
// SharedLine is not safe for concurrent use; its consumers are serialized by
// the caller.
type SharedLine struct {
	name     string
	out      Line
	count    int
	asserted bool
}

// NewSharedLine wraps out. asserted is the level the line had when it was
// found, before this process touched it.
func NewSharedLine(name string, out Line, asserted bool) *SharedLine {
	return &SharedLine{name: name, out: out, asserted: asserted}
}

func (s *SharedLine) Name() string { return s.name }

// Held reports whether the line is currently asserted.
func (s *SharedLine) Held() bool { return s.asserted }

// Count returns the number of outstanding acquisitions.
func (s *SharedLine) Count() int { return s.count }

// Acquire takes a reference and returns the count before it.
func (s *SharedLine) Acquire() (int, error) {
	prev := s.count
	if prev == 0 && !s.asserted {
		if err := s.out.Out(gpio.High); err != nil {
			return prev, &Error{Rail: s.name, Op: "enable", Err: err}
		}
		s.asserted = true
	}
	s.count++
	return prev, nil
}

// Release drops a reference and returns the count before it. Dropping the
// last reference deasserts the line.
func (s *SharedLine) Release() (int, error) {
	prev := s.count
	if prev == 0 {
		return prev, fmt.Errorf("%w: %s", ErrNotHeld, s.name)
	}
	if prev == 1 {
		if err := s.out.Out(gpio.Low); err != nil {
			return prev, &Error{Rail: s.name, Op: "disable", Err: err}
		}
		s.asserted = false
	}
	s.count--
	return prev, nil
}
