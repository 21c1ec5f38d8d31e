// Package power sequences the supplies of a display panel: the logic
// interface rail, the analog bias rails and an enable line that may be
// shared with another consumer such as the backlight.
package power

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

// Line is a GPIO output. periph's gpio.PinOut satisfies it.
type Line interface {
	Out(l gpio.Level) error
}

// Regulator is a switchable supply.
type Regulator interface {
	Name() string
	Enable() error
	Disable() error
	IsEnabled() bool
	SetVoltage(min, max physic.ElectricPotential) error
}

// Error reports a failed rail operation.
type Error struct {
	Rail string
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("power: %s %s: %v", e.Op, e.Rail, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
