// Package panel is the lifecycle controller for one command-mode MIPI-DSI
// panel: power-up, reset, init table playback, revision and identity
// detection, steady-state control and teardown.
package panel

import "panelctl/internal/dsi"

// HDRFormat is a bit in Descriptor.HDRFormats.
type HDRFormat uint8

const (
	HDRNone        HDRFormat = 0
	HDRDolbyVision HDRFormat = 1 << 1
	HDRHDR10       HDRFormat = 1 << 2
	HDRHLG         HDRFormat = 1 << 3
)

// Range is an inclusive [Min, Max] pair on one brightness scale.
type Range struct {
	Min int
	Max int
}

func (r Range) span() int { return r.Max - r.Min }

// Brightness is one capability row: the same interval on three scales.
type Brightness struct {
	Nits       Range
	Level      Range
	Percentage Range
}

// Mode is the fixed video timing reported to the display pipeline. Clock is
// in kHz; the blanking fields are the front porch, sync and back porch.
type Mode struct {
	Clock        int
	HDisplay     int
	HFrontPorch  int
	HSync        int
	HBackPorch   int
	VDisplay     int
	VFrontPorch  int
	VSync        int
	VBackPorch   int
	WidthMM      int
	HeightMM     int
	BitsPerColor int
}

func (m Mode) HTotal() int { return m.HDisplay + m.HFrontPorch + m.HSync + m.HBackPorch }

func (m Mode) VTotal() int { return m.VDisplay + m.VFrontPorch + m.VSync + m.VBackPorch }

// RefreshHz is the nominal refresh rate, rounded to the nearest Hz.
func (m Mode) RefreshHz() int {
	total := m.HTotal() * m.VTotal()
	if total == 0 {
		return 0
	}
	return (m.Clock*1000 + total/2) / total
}

// Descriptor is everything fixed about a panel model. It is built once and
// shared read-only.
type Descriptor struct {
	Lanes int

	Brightness         Brightness
	MinBrightness      int
	LowerMinBrightness int
	MaxBrightness      int
	DefaultBrightness  int

	HDRFormats HDRFormat
	// Luminance limits in units of 0.0001 nits.
	MaxLuminance    int
	MaxAvgLuminance int
	MinLuminance    int

	Mode Mode

	Init dsi.Table
	Off  dsi.Table
}

// Supports reports whether f is in the HDR bitmask.
func (d *Descriptor) Supports(f HDRFormat) bool {
	return f != HDRNone && d.HDRFormats&f == f
}

// NitsForLevel maps a raw brightness level onto the nits scale.
func (d *Descriptor) NitsForLevel(level int) int {
	return scale(level, d.Brightness.Level, d.Brightness.Nits)
}

// PercentForLevel maps a raw brightness level onto the percentage scale.
func (d *Descriptor) PercentForLevel(level int) int {
	return scale(level, d.Brightness.Level, d.Brightness.Percentage)
}

func scale(v int, from, to Range) int {
	if v <= from.Min {
		return to.Min
	}
	if v >= from.Max || from.span() == 0 {
		return to.Max
	}
	return to.Min + ((v-from.Min)*to.span()+from.span()/2)/from.span()
}
