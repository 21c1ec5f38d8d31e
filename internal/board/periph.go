package board

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"panelctl/internal/config"
	"panelctl/internal/dsi"
	"panelctl/internal/model"
	"panelctl/internal/power"
	"panelctl/internal/regulator"
)

// vddiLevel is the nominal interface rail voltage.
const vddiLevel = 1800 * physic.MilliVolt

func pinByName(role, name string) (gpio.PinIO, error) {
	if err := requirePin(role, name); err != nil {
		return nil, err
	}
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("board: gpio %s for %s not found", name, role)
	}
	return p, nil
}

func openPeriph(def *model.Definition, cfg *config.Config) (_ *Board, err error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("board: periph host init failed: %w", err)
	}
	b := &Board{Def: def}
	defer func() {
		if err != nil {
			_ = b.Close()
		}
	}()

	reset, err := pinByName("reset", cfg.GPIO.Reset)
	if err != nil {
		return nil, err
	}
	vddiEn, err := pinByName("vddi", cfg.GPIO.VDDIEnable)
	if err != nil {
		return nil, err
	}
	rails := power.Rails{
		Interface: regulator.NewSwitched("vddi", vddiEn, vddiLevel),
		Reset:     reset,
	}

	if def.Power.Shared != "" {
		pin, err := pinByName(def.Power.Shared, cfg.GPIO.SharedEnable)
		if err != nil {
			return nil, err
		}
		// Only look at the line. Driving it here would blank a splash screen
		// the bootloader left up with the backlight on.
		held := pin.Read() == gpio.High
		rails.Shared = power.NewSharedLine(def.Power.Shared, pin, held)
	}

	if len(def.Power.Bias) > 0 {
		bias, err := openBias(b, def, cfg)
		if err != nil {
			return nil, err
		}
		rails.Bias = bias
	}

	tr, err := openTransport(b, cfg)
	if err != nil {
		return nil, err
	}
	return assemble(b, tr, rails, reset)
}

func openBias(b *Board, def *model.Definition, cfg *config.Config) ([]power.Bias, error) {
	bus, err := i2creg.Open(cfg.Bias.Bus)
	if err != nil {
		return nil, fmt.Errorf("board: open i2c %q: %w", cfg.Bias.Bus, err)
	}
	b.closers = append(b.closers, bus)

	enp, err := pinByName("enp", cfg.Bias.ENP)
	if err != nil {
		return nil, err
	}
	enn, err := pinByName("enn", cfg.Bias.ENN)
	if err != nil {
		return nil, err
	}

	var posName, negName string
	for _, r := range def.Power.Bias {
		switch r.Output {
		case "pos":
			posName = r.Name
		case "neg":
			negName = r.Name
		}
	}
	tps := regulator.NewTPS65132(bus, cfg.Bias.Addr, posName, negName, enp, enn)

	targets := biasTargets(def, cfg)
	out := make([]power.Bias, 0, len(def.Power.Bias))
	for _, r := range def.Power.Bias {
		reg := tps.Pos
		if r.Output == "neg" {
			reg = tps.Neg
		}
		out = append(out, power.Bias{Reg: reg, Target: targets[r.Name], OffSettle: r.OffSettle})
	}
	return out, nil
}

func openTransport(b *Board, cfg *config.Config) (dsi.Transport, error) {
	tc := cfg.Transport
	switch tc.Kind {
	case config.TransportDBI:
		port, err := spireg.Open(tc.SPI)
		if err != nil {
			return nil, fmt.Errorf("board: open spi %q: %w", tc.SPI, err)
		}
		b.closers = append(b.closers, port)
		mode := spi.Mode0
		var opts []dsi.DBIOption
		if tc.CSGPIO != "" {
			cs, err := pinByName("cs", tc.CSGPIO)
			if err != nil {
				return nil, err
			}
			if err := cs.Out(gpio.High); err != nil {
				return nil, fmt.Errorf("board: cs idle: %w", err)
			}
			mode |= spi.NoCS
			opts = append(opts, dsi.WithCS(cs))
		}
		c, err := port.Connect(physic.Frequency(tc.SPIHz)*physic.Hertz, mode, 8)
		if err != nil {
			return nil, fmt.Errorf("board: connect spi: %w", err)
		}
		dc, err := pinByName("dc", tc.DCGPIO)
		if err != nil {
			return nil, err
		}
		return dsi.NewDBI(c, dc, opts...), nil

	case config.TransportBridge:
		br, err := dsi.OpenBridge(dsi.BridgeConfig{
			Device:      tc.Serial,
			Baud:        tc.Baud,
			ReadTimeout: time.Duration(tc.ReadTimeoutMS) * time.Millisecond,
		})
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, br)
		return br, nil
	}
	return nil, fmt.Errorf("board: unsupported transport %q", tc.Kind)
}
