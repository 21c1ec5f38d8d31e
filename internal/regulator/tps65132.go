package regulator

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"

	"panelctl/internal/power"
)

// TPS65132 register map and output range. Both outputs cover 4.0V..6.0V in
// 100mV steps; the negative output is programmed by magnitude.
const (
	TPS65132Addr uint16 = 0x3E

	tpsRegVPOS byte = 0x00
	tpsRegVNEG byte = 0x01

	tpsMin  = 4000 * physic.MilliVolt
	tpsStep = 100 * physic.MilliVolt
	tpsMax  = 6000 * physic.MilliVolt
)

// TPS65132 is a dual-output LCD bias converter. The outputs are switched by
// their ENP/ENN pins and programmed over I2C; the I2C block is only
// reachable while the converter's logic supply is up.
type TPS65132 struct {
	dev *i2c.Dev
	Pos *Output
	Neg *Output
}

// NewTPS65132 binds a converter at addr on bus with enp and enn as the
// output enable pins.
func NewTPS65132(bus i2c.Bus, addr uint16, posName, negName string, enp, enn power.Line) *TPS65132 {
	c := &TPS65132{dev: &i2c.Dev{Bus: bus, Addr: addr}}
	c.Pos = &Output{chip: c, name: posName, reg: tpsRegVPOS, en: enp}
	c.Neg = &Output{chip: c, name: negName, reg: tpsRegVNEG, en: enn}
	return c
}

// Output is one rail of a TPS65132.
//
// Like the Linux regulator core, an Output remembers the last requested
// range and skips a request for the same range. Enabling the output reloads
// the chip's register default without touching that memory, so a caller
// that needs a specific voltage after enable must move off and back onto
// the target.
type Output struct {
	chip *TPS65132
	name string
	reg  byte
	en   power.Line
	on   bool

	haveRange bool
	min, max  physic.ElectricPotential
}

func (o *Output) Name() string { return o.name }

func (o *Output) Enable() error {
	if err := o.en.Out(gpio.High); err != nil {
		return err
	}
	o.on = true
	return nil
}

func (o *Output) Disable() error {
	if err := o.en.Out(gpio.Low); err != nil {
		return err
	}
	o.on = false
	return nil
}

func (o *Output) IsEnabled() bool { return o.on }

func (o *Output) SetVoltage(min, max physic.ElectricPotential) error {
	if o.haveRange && o.min == min && o.max == max {
		return nil
	}
	code, err := tpsCode(min, max)
	if err != nil {
		return fmt.Errorf("%s: %w", o.name, err)
	}
	if err := o.chip.dev.Tx([]byte{o.reg, code}, nil); err != nil {
		return fmt.Errorf("%s: write 0x%02X: %w", o.name, o.reg, err)
	}
	o.haveRange, o.min, o.max = true, min, max
	return nil
}

// tpsCode picks the lowest setting inside [min, max].
func tpsCode(min, max physic.ElectricPotential) (byte, error) {
	if min > max || max < tpsMin || min > tpsMax {
		return 0, fmt.Errorf("%w: [%s, %s]", ErrVoltageRange, min, max)
	}
	v := min
	if v < tpsMin {
		v = tpsMin
	}
	steps := (v - tpsMin + tpsStep - 1) / tpsStep
	if tpsMin+steps*tpsStep > max {
		return 0, fmt.Errorf("%w: [%s, %s]", ErrVoltageRange, min, max)
	}
	return byte(steps), nil
}
