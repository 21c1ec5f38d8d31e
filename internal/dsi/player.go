package dsi

import (
	"fmt"
	"time"

	appLog "panelctl/internal/log"
)

// Player plays command tables against a transport.
type Player struct {
	t Transport

	// Sleep waits out entry delays. These are coarse sleeps, not deadlines.
	Sleep func(time.Duration)
}

// NewPlayer returns a Player that sleeps with time.Sleep.
func NewPlayer(t Transport) *Player {
	return &Player{t: t, Sleep: time.Sleep}
}

// Play writes every entry of tbl in order. The first failed write stops
// playback and is returned; entries already sent are not undone, so the
// controller may be left on whatever page they selected.
func (p *Player) Play(tbl Table) error {
	appLog.Debug("dsi: play table", "table", tbl.Name, "len", tbl.Len())
	for i, c := range tbl.Commands {
		if err := p.t.WriteRegister(c.Op, c.Data); err != nil {
			return fmt.Errorf("dsi: table %s entry %d: %w", tbl.Name, i,
				&IoError{Op: "write", Reg: c.Op, Err: err})
		}
		if c.Delayed() {
			p.Sleep(c.Delay)
		}
	}
	return nil
}
