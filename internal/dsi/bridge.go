//go:build !tinygo

package dsi

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/tarm/serial"
)

// Bridge frame layout: sync, length (command/status byte + payload), command
// or status, payload, CRC16 big-endian over length..payload.
const (
	frameSync byte = 0x7E

	bridgeWrite byte = 0x01
	bridgeRead  byte = 0x02
	bridgeLanes byte = 0x03

	bridgeStatusOK byte = 0x00

	maxFramePayload = 250
)

var (
	ErrBridgeCRC    = errors.New("bridge: crc mismatch")
	ErrBridgeSync   = errors.New("bridge: lost frame sync")
	ErrBridgeStatus = errors.New("bridge: device reported failure")
)

// Port is the byte stream to the bridge MCU.
type Port interface {
	io.ReadWriter
}

// BridgeConfig describes the serial link to the bridge.
type BridgeConfig struct {
	Device string
	Baud   int
	// ReadTimeout bounds each reply. Zero blocks.
	ReadTimeout time.Duration
}

// Bridge forwards register traffic to a USB/UART attached bring-up board
// that owns the physical DSI host. Every request is answered by exactly one
// reply frame.
type Bridge struct {
	port   Port
	closer io.Closer
}

// OpenBridge opens the serial device named in cfg.
func OpenBridge(cfg BridgeConfig) (*Bridge, error) {
	if cfg.Device == "" {
		return nil, errors.New("bridge: serial device is empty")
	}
	if cfg.Baud == 0 {
		cfg.Baud = 115200
	}
	p, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Device,
		Baud:        cfg.Baud,
		ReadTimeout: cfg.ReadTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("bridge: open %s: %w", cfg.Device, err)
	}
	return &Bridge{port: p, closer: p}, nil
}

// NewBridge wraps an already open port.
func NewBridge(p Port) *Bridge {
	b := &Bridge{port: p}
	if c, ok := p.(io.Closer); ok {
		b.closer = c
	}
	return b
}

func (b *Bridge) Close() error {
	if b.closer != nil {
		return b.closer.Close()
	}
	return nil
}

func (b *Bridge) WriteRegister(op byte, data []byte) error {
	payload := make([]byte, 0, len(data)+1)
	payload = append(payload, op)
	payload = append(payload, data...)
	_, err := b.roundTrip(bridgeWrite, payload)
	return err
}

func (b *Bridge) ReadRegister(addr byte, n int) ([]byte, error) {
	if n <= 0 || n > maxFramePayload {
		return nil, fmt.Errorf("bridge: invalid read length %d", n)
	}
	return b.roundTrip(bridgeRead, []byte{addr, byte(n)})
}

func (b *Bridge) SelectLanes(n int) error {
	if n < 1 || n > 4 {
		return fmt.Errorf("bridge: invalid lane count %d", n)
	}
	_, err := b.roundTrip(bridgeLanes, []byte{byte(n)})
	return err
}

func (b *Bridge) roundTrip(cmd byte, payload []byte) ([]byte, error) {
	frame, err := encodeFrame(cmd, payload)
	if err != nil {
		return nil, err
	}
	if _, err := b.port.Write(frame); err != nil {
		return nil, fmt.Errorf("bridge: write frame: %w", err)
	}
	status, data, err := readFrame(b.port)
	if err != nil {
		return nil, err
	}
	if status != bridgeStatusOK {
		return nil, fmt.Errorf("%w (status 0x%02X)", ErrBridgeStatus, status)
	}
	return data, nil
}

func encodeFrame(kind byte, payload []byte) ([]byte, error) {
	if len(payload) > maxFramePayload {
		return nil, fmt.Errorf("bridge: payload too long (%d bytes)", len(payload))
	}
	frame := make([]byte, 0, len(payload)+5)
	frame = append(frame, frameSync, byte(len(payload)+1), kind)
	frame = append(frame, payload...)
	crc := crc16(frame[1:])
	return append(frame, byte(crc>>8), byte(crc)), nil
}

// readFrame reads one frame and returns its status/command byte and body.
func readFrame(r io.Reader) (byte, []byte, error) {
	hdr := make([]byte, 2)
	if _, err := io.ReadFull(r, hdr); err != nil {
		return 0, nil, fmt.Errorf("bridge: read header: %w", err)
	}
	if hdr[0] != frameSync {
		return 0, nil, fmt.Errorf("%w: got 0x%02X", ErrBridgeSync, hdr[0])
	}
	n := int(hdr[1])
	if n == 0 {
		return 0, nil, fmt.Errorf("%w: empty frame", ErrBridgeSync)
	}
	rest := make([]byte, n+2)
	if _, err := io.ReadFull(r, rest); err != nil {
		return 0, nil, fmt.Errorf("bridge: read body: %w", err)
	}
	body, sum := rest[:n], rest[n:]
	want := crc16(append([]byte{hdr[1]}, body...))
	if got := uint16(sum[0])<<8 | uint16(sum[1]); got != want {
		return 0, nil, fmt.Errorf("%w: got 0x%04X want 0x%04X", ErrBridgeCRC, got, want)
	}
	return body[0], body[1:], nil
}
