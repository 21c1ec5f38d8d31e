//go:build tinygo && rp2040

// Command panelctl-mcu drives a panel from a Raspberry Pi Pico on the bench.
// The DBI link runs on SPI0 and every supply is a load switch on a GPIO, so
// the bias rails come up at their fixed voltage. After power-on it sweeps
// brightness and steps through the CABC modes.
package main

import (
	"machine"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"

	"panelctl/internal/dsi"
	appLog "panelctl/internal/log"
	"panelctl/internal/model"
	"panelctl/internal/panel"
	"panelctl/internal/power"
	"panelctl/internal/regulator"
)

const compatible = model.CSOTCompatible

// Bench wiring.
var (
	pinSCK    = machine.GP2
	pinSDO    = machine.GP3
	pinSDI    = machine.GP4
	pinCS     = machine.GP5
	pinDC     = machine.GP6
	pinReset  = machine.GP7
	pinVDDI   = machine.GP8
	pinShared = machine.GP9
)

// biasPins are the load switches for each bias rail, by rail name.
var biasPins = map[string]machine.Pin{
	"avdd": machine.GP10,
	"avee": machine.GP11,
}

func main() {
	// Give the USB console time to enumerate.
	time.Sleep(2 * time.Second)
	appLog.SetLevel(appLog.LevelDebug)

	if err := machine.SPI0.Configure(machine.SPIConfig{
		Frequency: 10_000_000,
		SCK:       pinSCK,
		SDO:       pinSDO,
		SDI:       pinSDI,
		Mode:      0,
	}); err != nil {
		halt("spi configure failed", err)
	}

	def, err := model.Lookup(compatible)
	if err != nil {
		halt("unknown panel", err)
	}

	cs := dsi.NewMachinePin(pinCS, gpio.High)
	tr := dsi.NewDBIFromMachine(machine.SPI0, pinDC, dsi.WithCS(cs))

	reset := dsi.NewMachinePin(pinReset, gpio.Low)
	rails := power.Rails{
		Interface: regulator.NewSwitched("vddi", dsi.NewMachinePin(pinVDDI, gpio.Low), 1800*physic.MilliVolt),
		Reset:     reset,
	}
	for _, r := range def.Power.Bias {
		pin, ok := biasPins[r.Name]
		if !ok {
			halt("no load switch wired for "+r.Name, nil)
		}
		// A load switch has no voltage to program; a zero target skips it.
		reg := regulator.NewSwitched(r.Name, dsi.NewMachinePin(pin, gpio.Low), biasLevel(r.Output))
		rails.Bias = append(rails.Bias, power.Bias{Reg: reg, OffSettle: r.OffSettle})
	}
	if def.Power.Shared != "" {
		line := dsi.NewMachinePin(pinShared, gpio.Low)
		rails.Shared = power.NewSharedLine(def.Power.Shared, line, false)
	}

	p, err := panel.New(def.Model, tr, power.NewSequencer(rails), reset)
	if err != nil {
		halt("panel init failed", err)
	}
	if err := p.Prepare(); err != nil {
		halt("prepare failed", err)
	}
	if err := p.Enable(); err != nil {
		appLog.Error("enable failed", err)
		if err := p.Disable(); err == nil {
			_ = p.Unprepare()
		}
		halt("panel down", err)
	}
	st := p.Status()
	appLog.Info("panel up", "model", st.Model, "revision", st.Revision, "identity", st.Identity)

	d := p.Descriptor()
	modes := []panel.CabcMode{panel.CabcOff, panel.CabcUI, panel.CabcStill, panel.CabcMovie}
	for i := 0; ; i++ {
		mode := modes[i%len(modes)]
		if err := p.SetCabcMode(mode); err != nil {
			appLog.Error("set cabc failed", err, "mode", mode.String())
		}
		for level := d.LowerMinBrightness; level <= d.MaxBrightness; level += 256 {
			if err := p.SetBrightness(level); err != nil {
				appLog.Error("set brightness failed", err, "level", level)
			}
			time.Sleep(50 * time.Millisecond)
		}
		time.Sleep(time.Second)
	}
}

// biasLevel is the bench supply voltage behind each bias load switch.
func biasLevel(output string) physic.ElectricPotential {
	if output == "neg" {
		return -5500 * physic.MilliVolt
	}
	return 5500 * physic.MilliVolt
}

func halt(msg string, err error) {
	for {
		appLog.Error(msg, err)
		time.Sleep(5 * time.Second)
	}
}
