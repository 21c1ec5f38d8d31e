// Package regulator implements the supplies the power sequencer drives: a
// GPIO-switched fixed rail and the TPS65132 dual-output bias converter.
package regulator

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"

	"panelctl/internal/power"
)

// ErrVoltageRange is returned when no output setting fits the request.
var ErrVoltageRange = errors.New("regulator: voltage out of range")

// Switched is a fixed-voltage rail behind a load switch or LDO enable pin.
type Switched struct {
	name string
	en   power.Line
	uv   physic.ElectricPotential
	on   bool
}

// NewSwitched returns a rail named name at fixed voltage v, enabled by
// driving en high.
func NewSwitched(name string, en power.Line, v physic.ElectricPotential) *Switched {
	return &Switched{name: name, en: en, uv: v}
}

func (s *Switched) Name() string { return s.name }

func (s *Switched) Enable() error {
	if err := s.en.Out(gpio.High); err != nil {
		return err
	}
	s.on = true
	return nil
}

func (s *Switched) Disable() error {
	if err := s.en.Out(gpio.Low); err != nil {
		return err
	}
	s.on = false
	return nil
}

func (s *Switched) IsEnabled() bool { return s.on }

// SetVoltage succeeds only when the fixed voltage lies in [min, max].
func (s *Switched) SetVoltage(min, max physic.ElectricPotential) error {
	if s.uv < min || s.uv > max {
		return fmt.Errorf("%w: %s is fixed at %s", ErrVoltageRange, s.name, s.uv)
	}
	return nil
}
