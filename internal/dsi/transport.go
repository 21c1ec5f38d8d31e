package dsi

import "fmt"

// Transport moves register writes and reads over the display link. Opcode
// and payload of one write always go out as a single transaction.
type Transport interface {
	WriteRegister(op byte, data []byte) error
	ReadRegister(addr byte, n int) ([]byte, error)
	SelectLanes(n int) error
}

// IoError reports a failed transport operation.
type IoError struct {
	Op  string // "write", "read" or "lanes"
	Reg byte
	Err error
}

func (e *IoError) Error() string {
	if e.Op == "lanes" {
		return fmt.Sprintf("dsi: select lanes: %v", e.Err)
	}
	return fmt.Sprintf("dsi: %s 0x%02X: %v", e.Op, e.Reg, e.Err)
}

func (e *IoError) Unwrap() error { return e.Err }

// Write issues a single register write and wraps failures as IoError.
func Write(t Transport, op byte, data ...byte) error {
	if err := t.WriteRegister(op, data); err != nil {
		return &IoError{Op: "write", Reg: op, Err: err}
	}
	return nil
}

// Read issues a register read and wraps failures as IoError. The returned
// slice may be shorter than n; callers decide whether that is an error.
func Read(t Transport, addr byte, n int) ([]byte, error) {
	b, err := t.ReadRegister(addr, n)
	if err != nil {
		return b, &IoError{Op: "read", Reg: addr, Err: err}
	}
	return b, nil
}
