package power

import (
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"

	appLog "panelctl/internal/log"
)

// Bias is an analog bias rail and the voltage it must be programmed to.
type Bias struct {
	Reg    Regulator
	Target physic.ElectricPotential
	// OffSettle is waited after this rail is disabled during power-off.
	OffSettle time.Duration
}

// Rails is the full supply set of one panel. Interface is mandatory; Bias,
// Shared and Reset may be empty.
type Rails struct {
	Interface Regulator
	Bias      []Bias
	// Shared must be asserted while bias voltages are programmed; the bias
	// converter's control bus is powered from it.
	Shared *SharedLine
	// Reset is driven low first on power-off.
	Reset Line
}

// Timing holds the settle delays of the power-on path.
type Timing struct {
	InterfaceSettle time.Duration
	SharedSettle    time.Duration
	BiasSettle      time.Duration
	// VoltageMargin is the offset of the first of the two voltage writes.
	VoltageMargin physic.ElectricPotential
}

// DefaultTiming matches the TDDI panels this controller drives.
var DefaultTiming = Timing{
	InterfaceSettle: 2 * time.Millisecond,
	SharedSettle:    2 * time.Millisecond,
	BiasSettle:      1 * time.Millisecond,
	VoltageMargin:   100 * physic.MilliVolt,
}

// Report describes how a power-on went beyond success or failure.
type Report struct {
	// SharedWasHeld records whether another consumer held the shared line.
	SharedWasHeld bool
	// VoltageFaults lists bias rails left at their default voltage.
	VoltageFaults []error
}

// Sequencer switches Rails on and off in the fixed order the panel needs.
// It never rolls back a partial power-on: removing supplies mid-sequence
// can glitch the panel's analog circuitry.
type Sequencer struct {
	rails  Rails
	timing Timing

	Sleep func(time.Duration)
}

// NewSequencer returns a Sequencer using DefaultTiming and time.Sleep.
func NewSequencer(r Rails) *Sequencer {
	return &Sequencer{rails: r, timing: DefaultTiming, Sleep: time.Sleep}
}

// SetTiming overrides the power-on settle delays.
func (s *Sequencer) SetTiming(t Timing) { s.timing = t }

// Rails returns the rail set.
func (s *Sequencer) Rails() Rails { return s.rails }

// PowerOn brings the rails up. An enable failure aborts immediately; a
// voltage failure is recorded in the report and the sequence continues,
// since the panel still lights at the converter's default voltage.
func (s *Sequencer) PowerOn() (Report, error) {
	var rep Report
	r := s.rails

	iface := r.Interface.Name()
	if err := r.Interface.Enable(); err != nil {
		return rep, &Error{Rail: iface, Op: "enable", Err: err}
	}
	appLog.Debug("power: rail enabled", "rail", iface)
	s.Sleep(s.timing.InterfaceSettle)

	acquired := false
	if r.Shared != nil {
		rep.SharedWasHeld = r.Shared.Held()
		if !rep.SharedWasHeld {
			if _, err := r.Shared.Acquire(); err != nil {
				return rep, err
			}
			acquired = true
			appLog.Debug("power: shared line acquired", "line", r.Shared.Name())
			s.Sleep(s.timing.SharedSettle)
		}
	}

	for _, b := range r.Bias {
		name := b.Reg.Name()
		if err := b.Reg.Enable(); err != nil {
			return rep, &Error{Rail: name, Op: "enable", Err: err}
		}
		appLog.Debug("power: rail enabled", "rail", name)

		if err := s.setVoltage(b); err != nil {
			rep.VoltageFaults = append(rep.VoltageFaults, err)
			appLog.Error("power: set voltage failed, rail stays at default", err,
				"rail", name, "target", b.Target.String())
		}
		s.Sleep(s.timing.BiasSettle)
	}

	if acquired {
		// Hand the line back so its next owner sees a zero count.
		if _, err := r.Shared.Release(); err != nil {
			appLog.Error("power: shared line release failed", err, "line", r.Shared.Name())
		} else {
			appLog.Debug("power: shared line released", "line", r.Shared.Name())
		}
	}
	return rep, nil
}

// setVoltage programs target-margin and then target. Regulator frameworks
// skip a set equal to the last requested range even when the hardware was
// reset by the enable, so the first write forces the second through.
func (s *Sequencer) setVoltage(b Bias) error {
	if b.Target == 0 {
		return nil
	}
	low := b.Target - s.timing.VoltageMargin
	if err := b.Reg.SetVoltage(low, low); err != nil {
		return &Error{Rail: b.Reg.Name(), Op: "set voltage", Err: err}
	}
	if err := b.Reg.SetVoltage(b.Target, b.Target); err != nil {
		return &Error{Rail: b.Reg.Name(), Op: "set voltage", Err: err}
	}
	return nil
}

// PowerOff drops reset, then the bias rails in reverse order, then the
// interface rail. The shared line is left to its other consumers. The
// first failure is returned.
func (s *Sequencer) PowerOff() error {
	r := s.rails
	if r.Reset != nil {
		if err := r.Reset.Out(gpio.Low); err != nil {
			return &Error{Rail: "reset", Op: "drive low", Err: err}
		}
	}
	for i := len(r.Bias) - 1; i >= 0; i-- {
		b := r.Bias[i]
		if err := b.Reg.Disable(); err != nil {
			return &Error{Rail: b.Reg.Name(), Op: "disable", Err: err}
		}
		appLog.Debug("power: rail disabled", "rail", b.Reg.Name())
		s.Sleep(b.OffSettle)
	}
	if err := r.Interface.Disable(); err != nil {
		return &Error{Rail: r.Interface.Name(), Op: "disable", Err: err}
	}
	appLog.Debug("power: rail disabled", "rail", r.Interface.Name())
	return nil
}
