// Package sim provides an in-memory panel controller and supplies so the
// lifecycle can run without hardware.
package sim

import (
	"errors"
	"fmt"
	"sync"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"

	"panelctl/internal/dsi"
)

var (
	// ErrNoPower is returned for bus traffic while the interface rail is off.
	ErrNoPower = errors.New("sim: controller not powered")
	// ErrInjected is the failure produced by FailWriteAt and FailRead.
	ErrInjected = errors.New("sim: injected failure")
)

// SerialPage is where the controller exposes its serial number.
const SerialPage byte = 0x22

// Write is one logged register write.
type Write struct {
	Page byte
	Op   byte
	Data []byte
}

func (w Write) String() string { return fmt.Sprintf("[%02X] %02X % X", w.Page, w.Op, w.Data) }

// Panel emulates a Novatek-style TDDI controller: page register, sleep and
// display state, ID registers and a serial number page.
type Panel struct {
	mu sync.Mutex

	// ID is returned by DCS ID1..ID3.
	ID [3]byte
	// Serial is readable one byte per register on SerialPage.
	Serial []byte
	// Powered gates all bus traffic; nil means always powered. Controller
	// registers reset when power is found removed.
	Powered func() bool

	// FailWriteAt fails the write with this index in the log; -1 disables.
	FailWriteAt int
	// FailRead fails every read when set.
	FailRead bool

	page      byte
	sleeping  bool
	displayOn bool
	lanes     int
	regs      map[[2]byte][]byte
	writes    []Write
	wasOn     bool
}

// NewPanel returns a controller reporting id and serial.
func NewPanel(id [3]byte, serial string) *Panel {
	p := &Panel{ID: id, Serial: []byte(serial), FailWriteAt: -1}
	p.resetLocked()
	return p
}

func (p *Panel) resetLocked() {
	p.page = dsi.PageCMD1
	p.sleeping = true
	p.displayOn = false
	p.regs = map[[2]byte][]byte{}
}

func (p *Panel) powerLocked() error {
	on := p.Powered == nil || p.Powered()
	if !on {
		if p.wasOn {
			p.resetLocked()
		}
		p.wasOn = false
		return ErrNoPower
	}
	p.wasOn = true
	return nil
}

func (p *Panel) WriteRegister(op byte, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.powerLocked(); err != nil {
		return err
	}
	idx := len(p.writes)
	p.writes = append(p.writes, Write{Page: p.page, Op: op, Data: append([]byte(nil), data...)})
	if idx == p.FailWriteAt {
		return ErrInjected
	}

	switch op {
	case dsi.PageSelect:
		if len(data) != 1 {
			return fmt.Errorf("sim: page select with %d bytes", len(data))
		}
		p.page = data[0]
	case dsi.DCSExitSleepMode:
		p.sleeping = false
	case dsi.DCSEnterSleepMode:
		p.sleeping = true
	case dsi.DCSSetDisplayOn:
		p.displayOn = true
	case dsi.DCSSetDisplayOff:
		p.displayOn = false
	default:
		p.regs[[2]byte{p.page, op}] = append([]byte(nil), data...)
	}
	return nil
}

func (p *Panel) ReadRegister(addr byte, n int) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.powerLocked(); err != nil {
		return nil, err
	}
	if p.FailRead {
		return nil, ErrInjected
	}
	out := make([]byte, n)
	switch {
	case p.page == dsi.PageCMD1 && addr >= dsi.DCSGetID1 && addr <= dsi.DCSGetID3:
		out[0] = p.ID[addr-dsi.DCSGetID1]
	case p.page == SerialPage:
		if int(addr) >= len(p.Serial) {
			// past the end of the fuse area the controller stops answering
			return nil, nil
		}
		out[0] = p.Serial[addr]
	default:
		copy(out, p.regs[[2]byte{p.page, addr}])
	}
	return out, nil
}

func (p *Panel) SelectLanes(n int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n < 1 || n > 4 {
		return fmt.Errorf("sim: %d lanes", n)
	}
	p.lanes = n
	return nil
}

// Writes returns a copy of the write log.
func (p *Panel) Writes() []Write {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Write(nil), p.writes...)
}

// Register returns the last payload written to reg on page.
func (p *Panel) Register(page, reg byte) []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]byte(nil), p.regs[[2]byte{page, reg}]...)
}

// Displaying reports whether the controller is out of sleep with the
// display on.
func (p *Panel) Displaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.sleeping && p.displayOn
}

func (p *Panel) Page() byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.page
}

// Line is a GPIO output that remembers its level and every edge.
type Line struct {
	mu    sync.Mutex
	name  string
	level gpio.Level
	edges []gpio.Level
	// Err, when set, fails every Out.
	Err error
}

func NewLine(name string, initial gpio.Level) *Line {
	return &Line{name: name, level: initial}
}

func (l *Line) String() string { return l.name }

func (l *Line) Out(v gpio.Level) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Err != nil {
		return l.Err
	}
	l.level = v
	l.edges = append(l.edges, v)
	return nil
}

// Read returns the current level.
func (l *Line) Read() gpio.Level {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// Edges returns every level driven so far.
func (l *Line) Edges() []gpio.Level {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]gpio.Level(nil), l.edges...)
}

// Regulator is an adjustable supply between Min and Max.
type Regulator struct {
	mu      sync.Mutex
	name    string
	Min     physic.ElectricPotential
	Max     physic.ElectricPotential
	on      bool
	voltage physic.ElectricPotential

	// EnableErr and VoltageErr, when set, fail the matching call.
	EnableErr  error
	VoltageErr error
}

func NewRegulator(name string, min, max physic.ElectricPotential) *Regulator {
	return &Regulator{name: name, Min: min, Max: max, voltage: min}
}

func (r *Regulator) Name() string { return r.name }

func (r *Regulator) Enable() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.EnableErr != nil {
		return r.EnableErr
	}
	r.on = true
	return nil
}

func (r *Regulator) Disable() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.on = false
	return nil
}

func (r *Regulator) IsEnabled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.on
}

func (r *Regulator) SetVoltage(min, max physic.ElectricPotential) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.VoltageErr != nil {
		return r.VoltageErr
	}
	if max < r.Min || min > r.Max {
		return fmt.Errorf("sim: %s cannot reach %s..%s", r.name, min, max)
	}
	v := min
	if v < r.Min {
		v = r.Min
	}
	r.voltage = v
	return nil
}

// Voltage returns the programmed output voltage.
func (r *Regulator) Voltage() physic.ElectricPotential {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.voltage
}
