// Package model holds the static definitions of the supported panels and
// looks them up by their device-tree compatible string.
package model

import (
	"fmt"
	"sort"
	"time"

	"panelctl/internal/dsi"
	"panelctl/internal/panel"
)

// BiasRail is one analog rail a model needs, in power-on order.
type BiasRail struct {
	Name string
	// Output is "pos" or "neg" on a dual-output bias regulator.
	Output string
	// OffSettle is waited after the rail is disabled.
	OffSettle time.Duration
}

// Power describes the rails a board has to provide for a model.
type Power struct {
	// Bias is empty for panels powered by the interface rail alone.
	Bias []BiasRail
	// Shared names the enable line shared with the backlight; empty if none.
	Shared string
}

// Definition is a model plus its board-level power needs.
type Definition struct {
	*panel.Model
	Power Power
}

var registry = map[string]*Definition{}

func register(d *Definition) {
	if _, dup := registry[d.Compatible]; dup {
		panic("model: duplicate compatible " + d.Compatible)
	}
	registry[d.Compatible] = d
}

// Lookup returns the definition registered for compatible.
func Lookup(compatible string) (*Definition, error) {
	d, ok := registry[compatible]
	if !ok {
		return nil, fmt.Errorf("model: unknown panel %q", compatible)
	}
	return d, nil
}

// Compatibles lists the registered compatible strings in sorted order.
func Compatibles() []string {
	out := make([]string, 0, len(registry))
	for c := range registry {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Both vendors ship the same 11" 1600x2560 glass and ID page layout.

var revisions = []panel.Revision{
	panel.RevProto1,
	panel.RevProto2,
	panel.RevEvt1,
	panel.RevEvt1_1,
	panel.RevEvt2,
	panel.RevDvt1,
	panel.RevPvt,
}

var serialLayout = panel.IdentityLayout{
	Select:  dsi.SelectPage(0x22),
	Restore: dsi.SelectPage(dsi.PageCMD1),
	Base:    0x00,
	Len:     37,
}

var brightness = panel.Brightness{
	Nits:       panel.Range{Min: 2, Max: 500},
	Level:      panel.Range{Min: 16, Max: 4095},
	Percentage: panel.Range{Min: 0, Max: 100},
}

// 1600x2560 @ 60
var mode = panel.Mode{
	Clock:        309246,
	HDisplay:     1600,
	HFrontPorch:  92,
	HSync:        66,
	HBackPorch:   92,
	VDisplay:     2560,
	VFrontPorch:  26,
	VSync:        4,
	VBackPorch:   196,
	WidthMM:      147,
	HeightMM:     236,
	BitsPerColor: 8,
}

func descriptor(init, off dsi.Table) *panel.Descriptor {
	return &panel.Descriptor{
		Lanes:              4,
		Brightness:         brightness,
		MinBrightness:      16,
		LowerMinBrightness: 4,
		MaxBrightness:      4095,
		DefaultBrightness:  1146,
		HDRFormats:         panel.HDRHDR10 | panel.HDRHLG,
		MaxLuminance:       5000000,
		MaxAvgLuminance:    1200000,
		MinLuminance:       5,
		Mode:               mode,
		Init:               init,
		Off:                off,
	}
}

// offTable reselects CMD1 and then sends display off and sleep in. Both
// vendors issue the same sequence.
func offTable(name string) dsi.Table {
	return dsi.Table{Name: name, Commands: []dsi.Command{
		dsi.Seq(dsi.PageSelect, dsi.PageCMD1),
		dsi.Seq(dsi.PageReload, 0x01),
		dsi.SeqDelay(20, dsi.DCSSetDisplayOff),
		dsi.SeqDelay(100, dsi.DCSEnterSleepMode),
	}}
}
