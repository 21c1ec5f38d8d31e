package model

import (
	"time"

	"panelctl/internal/dsi"
	"panelctl/internal/panel"
)

// CSOTCompatible is the CSOT PPA957DB2-D.
const CSOTCompatible = "csot,ppa957db2d"

var csotInit = dsi.Table{Name: "ppa957db2d init", Commands: []dsi.Command{
	// CMD2 page 3
	dsi.Seq(0xFF, 0x23),
	dsi.Seq(0xFB, 0x01),
	// 12 bit PWM at 3kHz
	dsi.Seq(0x00, 0x80),
	dsi.Seq(0x08, 0x04),

	dsi.Seq(0xFF, 0x10),
	dsi.Seq(0xB9, 0x05),
	dsi.Seq(0xFF, 0x20),
	dsi.Seq(0xFB, 0x01),
	dsi.Seq(0x18, 0x40),
	dsi.Seq(0xFF, 0x10),
	dsi.Seq(0xB9, 0x02),
	dsi.Seq(0xFF, 0xF0),
	dsi.Seq(0xFB, 0x01),
	dsi.Seq(0x3A, 0x08),

	// CMD2 page 7, error flag detection
	dsi.Seq(0xFF, 0x27),
	dsi.Seq(0xFB, 0x01),
	dsi.Seq(0xD0, 0x31),
	dsi.Seq(0xD1, 0x84),
	dsi.Seq(0xD2, 0x30),
	dsi.Seq(0xDE, 0x03),
	dsi.Seq(0xDF, 0x02),

	// CMD2 page 6, OSC drift
	dsi.Seq(0xFF, 0x26),
	dsi.Seq(0xFB, 0x01),
	dsi.Seq(0x00, 0x81),
	dsi.Seq(0x01, 0xB0),

	// CMD2 page 2, OSC drift
	dsi.Seq(0xFF, 0x22),
	dsi.Seq(0xFB, 0x01),
	dsi.Seq(0x9F, 0x50),
	dsi.Seq(0xA0, 0x50),
	dsi.Seq(0xA5, 0x00),
	dsi.Seq(0xA6, 0x00),
	dsi.Seq(0xA7, 0x00),
	dsi.Seq(0xA9, 0x50),
	dsi.Seq(0xAA, 0x20),
	dsi.Seq(0xAB, 0x20),
	dsi.Seq(0xAD, 0x10),
	dsi.Seq(0xB0, 0xFF),
	dsi.Seq(0xB1, 0xFF),
	dsi.Seq(0xB2, 0xFF),
	dsi.Seq(0xB3, 0xFF),
	dsi.Seq(0xB8, 0x00),
	dsi.Seq(0xB9, 0x84),
	dsi.Seq(0xBA, 0x84),
	dsi.Seq(0xBB, 0x84),
	dsi.Seq(0xB4, 0xFF),
	dsi.Seq(0xB5, 0xFF),
	dsi.Seq(0xBE, 0x05),
	dsi.Seq(0xBF, 0x84),
	dsi.Seq(0xC5, 0x00),
	dsi.Seq(0xC6, 0x6A),
	dsi.Seq(0xC7, 0x00),
	dsi.Seq(0xCA, 0x08),
	dsi.Seq(0xCB, 0x6A),
	dsi.Seq(0xCE, 0x00),
	dsi.Seq(0xCF, 0x08),
	dsi.Seq(0xD0, 0x6A),
	dsi.Seq(0xD3, 0x08),
	dsi.Seq(0xD4, 0x6A),
	dsi.Seq(0xD7, 0x00),
	dsi.Seq(0xDC, 0x08),
	dsi.Seq(0xDD, 0x6A),
	dsi.Seq(0x6F, 0x01),
	dsi.Seq(0x70, 0x11),
	dsi.Seq(0x73, 0x01),
	dsi.Seq(0x74, 0x85),
	dsi.Seq(0xC0, 0x05),
	dsi.Seq(0xC1, 0x94),
	dsi.Seq(0xC2, 0x00),

	// CMD2 page A
	dsi.Seq(0xFF, 0x2A),
	dsi.Seq(0xFB, 0x01),
	dsi.Seq(0x9A, 0x02),

	// CMD1: write primary and secondary, full brightness, CABC off
	dsi.Seq(0xFF, 0x10),
	dsi.Seq(0xFB, 0x01),
	dsi.Seq(0xB9, 0x02),
	dsi.Seq(0x51, 0x0F, 0xFF),
	dsi.Seq(0x53, 0x24),
	dsi.Seq(0x55, 0x00),

	// CMD2 page 2, image enhancement
	dsi.Seq(0xFF, 0x22),
	dsi.Seq(0xFB, 0x01),
	dsi.Seq(0x1A, 0x00),
	dsi.Seq(0x68, 0x00),
	dsi.Seq(0xA2, 0x20),
	dsi.Seq(0x56, 0x77),
	dsi.Seq(0x58, 0x10),
	dsi.Seq(0x59, 0x1F),
	dsi.Seq(0x6A, 0x21),

	// CMD1
	dsi.Seq(0xFF, 0x10),
	dsi.Seq(0xFB, 0x01),
	// MIPI bypass RAM
	dsi.Seq(0xBB, 0x13),
	// VBP + VFP = 200 + 26
	dsi.Seq(0x3B, 0x03, 0xC8, 0x1A, 0x04, 0x04),
	// rotate 180
	dsi.Seq(0x36, 0x03),

	dsi.SeqDelay(120, dsi.DCSExitSleepMode),
	dsi.Seq(dsi.DCSSetDisplayOn),
}}

func init() {
	register(&Definition{
		Model: &panel.Model{
			Compatible: CSOTCompatible,
			Name:       "CSOT PPA957DB2-D",
			Descriptor: descriptor(csotInit, offTable("ppa957db2d off")),
			Policy: panel.Policy{
				Revisions:    revisions,
				IdentityFrom: panel.RevEvt2,
				Identity:     serialLayout,
				// movie mode also turns on image enhancement
				Cabc: panel.CabcMap{Off: 0x00, UI: 0x01, Still: 0x02, Movie: 0x83},
			},
		},
		// The TPS65132 is programmed over an i2c bus powered from BL_EN,
		// the same pin that enables the backlight.
		Power: Power{
			Bias: []BiasRail{
				{Name: "avdd", Output: "pos", OffSettle: 6 * time.Millisecond},
				{Name: "avee", Output: "neg", OffSettle: 1 * time.Millisecond},
			},
			Shared: "i2c-pwr",
		},
	})
}
