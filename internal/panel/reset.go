package panel

import (
	"time"

	"periph.io/x/conn/v3/gpio"

	"panelctl/internal/power"
)

type resetEdge struct {
	level gpio.Level
	hold  time.Duration
}

// Reset runs the reset pulse: high, low, high with the hold times in Timing.
// A panel woken from blank first gets a low hold to clear a stale level.
// The controller latches its command interface only if every hold meets its
// minimum.
func (p *Panel) Reset(fromBlank bool) error {
	t := p.timing
	seq := make([]resetEdge, 0, 4)
	if fromBlank {
		seq = append(seq, resetEdge{gpio.Low, t.ResetPre})
	}
	seq = append(seq,
		resetEdge{gpio.High, t.ResetActive},
		resetEdge{gpio.Low, t.ResetRelease},
		resetEdge{gpio.High, t.ResetHold},
	)
	for _, e := range seq {
		if err := p.reset.Out(e.level); err != nil {
			return &power.Error{Rail: "reset", Op: "drive " + e.level.String(), Err: err}
		}
		p.sleep(e.hold)
	}
	return nil
}
