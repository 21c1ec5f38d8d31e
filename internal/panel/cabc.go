package panel

import (
	"fmt"
	"strings"
)

// CabcMode is a content-adaptive backlight control setting.
type CabcMode int

const (
	CabcOff CabcMode = iota
	CabcUI
	CabcStill
	CabcMovie
)

func (m CabcMode) String() string {
	switch m {
	case CabcUI:
		return "ui"
	case CabcStill:
		return "still"
	case CabcMovie:
		return "movie"
	default:
		return "off"
	}
}

// ParseCabcMode accepts the names String returns.
func ParseCabcMode(s string) (CabcMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off":
		return CabcOff, nil
	case "ui":
		return CabcUI, nil
	case "still":
		return CabcStill, nil
	case "movie":
		return CabcMovie, nil
	}
	return CabcOff, fmt.Errorf("panel: unknown cabc mode %q", s)
}

// CabcMap holds the vendor byte written to 0x55 for each mode.
type CabcMap struct {
	Off, UI, Still, Movie byte
}

// Byte returns the register value for m. Modes outside the closed set map to
// Off.
func (c CabcMap) Byte(m CabcMode) byte {
	switch m {
	case CabcUI:
		return c.UI
	case CabcStill:
		return c.Still
	case CabcMovie:
		return c.Movie
	default:
		return c.Off
	}
}
