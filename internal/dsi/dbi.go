package dsi

import (
	"fmt"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
)

// Pin is the output side of a GPIO line. periph's gpio.PinOut satisfies it.
type Pin interface {
	Out(l gpio.Level) error
}

// DBI drives a command-mode controller over a 4-wire serial link: an SPI
// connection plus a data/command select line.
//
// Without a CS pin, chip select belongs to the SPI port and is released
// between the opcode and payload transfers. The controller samples D/C on
// each byte's last bit and keeps the pending command across a CS rise, so
// writes still land. With WithCS the line is held low across both phases
// and the port should be connected with spi.NoCS.
type DBI struct {
	conn conn.Conn
	dc   Pin
	cs   Pin
	buf  []byte
}

// NewDBI returns a DBI transport over c with dc as the D/C line.
func NewDBI(c conn.Conn, dc Pin, opts ...DBIOption) *DBI {
	d := &DBI{conn: c, dc: dc, buf: make([]byte, 1)}
	for _, o := range opts {
		o(d)
	}
	return d
}

// DBIOption configures a DBI transport.
type DBIOption func(*DBI)

// WithCS drives chip select from cs, held low for a whole register access.
func WithCS(cs Pin) DBIOption {
	return func(d *DBI) { d.cs = cs }
}

func (d *DBI) String() string {
	return fmt.Sprintf("dbi(%s)", d.conn)
}

// WriteRegister sends op with D/C low then data with D/C high.
func (d *DBI) WriteRegister(op byte, data []byte) (err error) {
	if err := d.selectChip(); err != nil {
		return err
	}
	defer d.releaseChip(&err)
	if err := d.command(op); err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	if err := d.dc.Out(gpio.High); err != nil {
		return fmt.Errorf("dbi: dc high: %w", err)
	}
	return d.conn.Tx(data, nil)
}

// ReadRegister sends addr then clocks in n bytes. The controller ignores the
// dummy bytes shifted out while it answers.
func (d *DBI) ReadRegister(addr byte, n int) (_ []byte, err error) {
	if n <= 0 {
		return nil, fmt.Errorf("dbi: invalid read length %d", n)
	}
	if err := d.selectChip(); err != nil {
		return nil, err
	}
	defer d.releaseChip(&err)
	if err := d.command(addr); err != nil {
		return nil, err
	}
	if err := d.dc.Out(gpio.High); err != nil {
		return nil, fmt.Errorf("dbi: dc high: %w", err)
	}
	tx := make([]byte, n)
	rx := make([]byte, n)
	if err := d.conn.Tx(tx, rx); err != nil {
		return nil, err
	}
	return rx, nil
}

// SelectLanes is a no-op: a DBI link has one data line.
func (d *DBI) SelectLanes(int) error { return nil }

func (d *DBI) command(op byte) error {
	if err := d.dc.Out(gpio.Low); err != nil {
		return fmt.Errorf("dbi: dc low: %w", err)
	}
	d.buf[0] = op
	return d.conn.Tx(d.buf, nil)
}

func (d *DBI) selectChip() error {
	if d.cs == nil {
		return nil
	}
	if err := d.cs.Out(gpio.Low); err != nil {
		return fmt.Errorf("dbi: cs low: %w", err)
	}
	return nil
}

// releaseChip raises CS and reports its failure only if the transfer itself
// succeeded.
func (d *DBI) releaseChip(err *error) {
	if d.cs == nil {
		return
	}
	if e := d.cs.Out(gpio.High); e != nil && *err == nil {
		*err = fmt.Errorf("dbi: cs high: %w", e)
	}
}
