// Package board assembles a panel.Panel and its supplies from a
// configuration, either on real hardware through periph.io or on the
// simulated backend.
package board

import (
	"errors"
	"fmt"
	"io"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"

	"panelctl/internal/config"
	"panelctl/internal/dsi"
	appLog "panelctl/internal/log"
	"panelctl/internal/model"
	"panelctl/internal/panel"
	"panelctl/internal/power"
	"panelctl/internal/sim"
)

// SimID is what the simulated controller reports from ID1..ID3: a DVT1
// build, new enough to expose its serial number.
var SimID = [3]byte{0x00, 0x50, 0x00}

// SimSerial is the simulated controller's serial number.
const SimSerial = "SIMPPA957DB2D000000000000000000000001"

// Board is a wired panel.
type Board struct {
	Def   *model.Definition
	Panel *panel.Panel
	// Backlight is the line shared between the bias converter's control
	// bus and the backlight, nil for models without one.
	Backlight *power.SharedLine
	// Sim is set on the simulated backend.
	Sim *sim.Panel

	closers []io.Closer
}

// Open builds the board described by cfg.
func Open(cfg *config.Config) (*Board, error) {
	def, err := model.Lookup(cfg.Panel)
	if err != nil {
		return nil, err
	}
	if cfg.Transport.Kind == config.TransportSim {
		return openSim(def, cfg, gpio.Low)
	}
	return openPeriph(def, cfg)
}

// Close releases transports and buses. The panel itself is left as is.
func (b *Board) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	b.closers = nil
	return errors.Join(errs...)
}

// biasTargets maps the model's bias rails to the configured voltages.
func biasTargets(def *model.Definition, cfg *config.Config) map[string]physic.ElectricPotential {
	out := make(map[string]physic.ElectricPotential, len(def.Power.Bias))
	for _, r := range def.Power.Bias {
		out[r.Name] = physic.ElectricPotential(cfg.Bias.Microvolt[r.Name]) * physic.MicroVolt
	}
	return out
}

func assemble(b *Board, tr dsi.Transport, rails power.Rails, reset power.Line) (*Board, error) {
	p, err := panel.New(b.Def.Model, tr, power.NewSequencer(rails), reset)
	if err != nil {
		return nil, err
	}
	b.Panel = p
	b.Backlight = rails.Shared
	appLog.Info("board: panel ready", "model", b.Def.Compatible, "bias_rails", len(rails.Bias),
		"shared_line", rails.Shared != nil)
	return b, nil
}

func openSim(def *model.Definition, cfg *config.Config, sharedLevel gpio.Level) (*Board, error) {
	b := &Board{Def: def}
	vddi := sim.NewRegulator("vddi", 1800*physic.MilliVolt, 1800*physic.MilliVolt)
	reset := sim.NewLine("reset", gpio.Low)
	rails := power.Rails{Interface: vddi, Reset: reset}

	targets := biasTargets(def, cfg)
	for _, r := range def.Power.Bias {
		reg := sim.NewRegulator(r.Name, 4000*physic.MilliVolt, 6000*physic.MilliVolt)
		rails.Bias = append(rails.Bias, power.Bias{Reg: reg, Target: targets[r.Name], OffSettle: r.OffSettle})
	}
	if def.Power.Shared != "" {
		line := sim.NewLine(def.Power.Shared, sharedLevel)
		rails.Shared = power.NewSharedLine(def.Power.Shared, line, sharedLevel == gpio.High)
	}

	b.Sim = sim.NewPanel(SimID, SimSerial)
	b.Sim.Powered = vddi.IsEnabled
	appLog.Info("board: using simulated hardware", "model", def.Compatible)
	return assemble(b, b.Sim, rails, reset)
}

func requirePin(role, name string) error {
	if name == "" {
		return fmt.Errorf("board: gpio for %s is not configured", role)
	}
	return nil
}
