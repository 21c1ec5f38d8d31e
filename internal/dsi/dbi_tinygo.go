//go:build tinygo

package dsi

import (
	"machine"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"tinygo.org/x/drivers"
)

// NewDBIFromMachine builds a DBI transport on a microcontroller bench rig from
// a tinygo SPI bus and D/C pin. The pin is configured as an output.
func NewDBIFromMachine(bus drivers.SPI, dc machine.Pin, opts ...DBIOption) *DBI {
	return NewDBI(&tinySPI{bus: bus}, NewMachinePin(dc, gpio.Low), opts...)
}

// MachinePin is a tinygo output pin usable as a D/C, CS, reset or rail
// enable line.
type MachinePin machine.Pin

// NewMachinePin configures p as an output at level l.
func NewMachinePin(p machine.Pin, l gpio.Level) MachinePin {
	p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	p.Set(bool(l))
	return MachinePin(p)
}

func (p MachinePin) Out(l gpio.Level) error {
	machine.Pin(p).Set(bool(l))
	return nil
}

// Read reports the pin's current level.
func (p MachinePin) Read() gpio.Level {
	return gpio.Level(machine.Pin(p).Get())
}

// tinySPI presents a tinygo SPI bus as a periph conn.Conn.
type tinySPI struct {
	bus drivers.SPI
}

func (s *tinySPI) String() string { return "tinygo-spi" }

func (s *tinySPI) Tx(w, r []byte) error { return s.bus.Tx(w, r) }

func (s *tinySPI) Duplex() conn.Duplex { return conn.Full }
