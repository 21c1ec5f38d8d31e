package panel

import (
	"fmt"

	"panelctl/internal/dsi"
	appLog "panelctl/internal/log"
)

// SetDimming stores the dimming flag and rewrites the control display
// register. Backlight control and the backlight itself stay enabled; the
// dimming bit follows on.
func (p *Panel) SetDimming(on bool) error {
	if p.state != Enabled {
		return invalidTransition("set dimming", p.state)
	}
	p.dimming = on
	val := p.controlByte()
	appLog.Debug("panel: wrctrld", "value", fmt.Sprintf("0x%02X", val), "dimming", on)
	return dsi.Write(p.tr, dsi.DCSWriteControlDisplay, val)
}

func (p *Panel) controlByte() byte {
	val := CtrlBCTRL | CtrlBL
	if p.dimming {
		val |= CtrlDD
	}
	return val
}

// SetCabcMode writes the model's byte for mode to the power save register.
func (p *Panel) SetCabcMode(mode CabcMode) error {
	if p.state != Enabled {
		return invalidTransition("set cabc mode", p.state)
	}
	switch mode {
	case CabcOff, CabcUI, CabcStill, CabcMovie:
	default:
		mode = CabcOff
	}
	val := p.model.Policy.Cabc.Byte(mode)
	if err := dsi.Write(p.tr, dsi.DCSWritePowerSave, val); err != nil {
		return err
	}
	p.cabc = mode
	appLog.Debug("panel: cabc", "mode", mode.String(), "value", fmt.Sprintf("0x%02X", val))
	return nil
}

// SetBrightness writes a raw level as a big-endian 16 bit value. Zero turns
// the backlight output off; any other level must fall inside the
// descriptor's lower-min..max range.
func (p *Panel) SetBrightness(level int) error {
	if p.state != Enabled {
		return invalidTransition("set brightness", p.state)
	}
	d := p.model.Descriptor
	lo := d.LowerMinBrightness
	if lo == 0 {
		lo = d.MinBrightness
	}
	if level < 0 || level > d.MaxBrightness || (level != 0 && level < lo) {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrBrightnessRange, level, lo, d.MaxBrightness)
	}
	if err := dsi.Write(p.tr, dsi.DCSSetDisplayBrightness, byte(level>>8), byte(level)); err != nil {
		return err
	}
	p.brightness = level
	return nil
}
