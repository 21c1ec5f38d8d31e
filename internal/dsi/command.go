// Package dsi holds the command-table playback engine and the byte
// transports that carry DCS and vendor register writes to a command-mode
// panel controller.
package dsi

import (
	"fmt"
	"time"
)

// MIPI DCS opcodes used by the panel drivers.
const (
	DCSEnterSleepMode       byte = 0x10
	DCSExitSleepMode        byte = 0x11
	DCSSetDisplayOff        byte = 0x28
	DCSSetDisplayOn         byte = 0x29
	DCSSetDisplayBrightness byte = 0x51
	DCSWriteControlDisplay  byte = 0x53
	DCSWritePowerSave       byte = 0x55
	DCSGetID1               byte = 0xDA
	DCSGetID2               byte = 0xDB
	DCSGetID3               byte = 0xDC
)

// Novatek vendor command set: 0xFF selects the register page (CMD1 is 0x10,
// CMD2 pages are 0x20..0x2A, CMD3 pages 0xE0/0xF0) and writing 0x01 to 0xFB
// stops the page from reloading its defaults from MTP.
const (
	PageSelect byte = 0xFF
	PageReload byte = 0xFB
	PageCMD1   byte = 0x10
)

// Command is one entry of a table: an opcode, its payload and an optional
// delay that must elapse after the write before the next entry is sent.
// A zero Delay makes it a plain write.
type Command struct {
	Op    byte
	Data  []byte
	Delay time.Duration
}

// Seq returns a plain register write.
func Seq(op byte, data ...byte) Command {
	return Command{Op: op, Data: data}
}

// SeqDelay returns a write followed by a delay of ms milliseconds.
func SeqDelay(ms int, op byte, data ...byte) Command {
	return Command{Op: op, Data: data, Delay: time.Duration(ms) * time.Millisecond}
}

// Delayed reports whether the entry carries a post-write delay.
func (c Command) Delayed() bool { return c.Delay > 0 }

func (c Command) String() string {
	if c.Delayed() {
		return fmt.Sprintf("0x%02X % X (+%s)", c.Op, c.Data, c.Delay)
	}
	return fmt.Sprintf("0x%02X % X", c.Op, c.Data)
}

// Table is an ordered command set. Entries depend on the page selected by
// earlier entries, so the order is never changed.
type Table struct {
	Name     string
	Commands []Command
}

// Len returns the number of writes the table issues.
func (t Table) Len() int { return len(t.Commands) }

// SelectPage returns the two writes that switch the controller to page and
// latch it.
func SelectPage(page byte) []Command {
	return []Command{Seq(PageSelect, page), Seq(PageReload, 0x01)}
}
