package model

import (
	"panelctl/internal/dsi"
	"panelctl/internal/panel"
)

// BOECompatible is the BOE TS110F5M-LG0.
const BOECompatible = "boe,ts110f5mlg0"

var boeInit = dsi.Table{Name: "ts110f5mlg0 init", Commands: []dsi.Command{
	// CMD2 page 0
	dsi.Seq(0xFF, 0x20),
	dsi.Seq(0xFB, 0x01),
	dsi.Seq(0x5A, 0x14),

	// CMD2 page 3: 12 bit PWM at 3kHz, APL threshold and compensation
	dsi.Seq(0xFF, 0x23),
	dsi.Seq(0xFB, 0x01),
	dsi.Seq(0x00, 0x80),
	dsi.Seq(0x08, 0x04),
	dsi.Seq(0x11, 0x02),
	dsi.Seq(0x12, 0x80),
	dsi.Seq(0x15, 0x83),
	dsi.Seq(0x16, 0x0C),

	// CMD2 page 5
	dsi.Seq(0xFF, 0x25),
	dsi.Seq(0xFB, 0x01),
	dsi.Seq(0x13, 0x02),
	dsi.Seq(0x14, 0x41),

	// CMD2 page 6
	dsi.Seq(0xFF, 0x26),
	dsi.Seq(0xFB, 0x01),
	dsi.Seq(0x01, 0xB0),
	dsi.Seq(0x02, 0x31),
	dsi.Seq(0x32, 0x9F),

	// CMD2 page 7
	dsi.Seq(0xFF, 0x27),
	dsi.Seq(0xFB, 0x01),
	dsi.Seq(0x5B, 0x02),

	// CMD2 page 4
	dsi.Seq(0xFF, 0x24),
	dsi.Seq(0xFB, 0x01),
	dsi.Seq(0xC2, 0xDA),

	// CMD1, secondary only
	dsi.Seq(0xFF, 0x10),
	dsi.Seq(0xFB, 0x01),
	dsi.Seq(0xB9, 0x05),

	dsi.Seq(0xFF, 0x24),
	dsi.Seq(0xFB, 0x01),
	dsi.Seq(0xC2, 0xDF),

	// CMD1, primary and secondary
	dsi.Seq(0xFF, 0x10),
	dsi.Seq(0xFB, 0x01),
	dsi.Seq(0xB9, 0x02),

	// CMD3 page A, VCOM driving ability
	dsi.Seq(0xFF, 0xE0),
	dsi.Seq(0xFB, 0x01),
	dsi.Seq(0x14, 0x60),
	dsi.Seq(0x16, 0xC0),

	// CMD3 page B, secondary OSC workaround
	dsi.Seq(0xFF, 0xF0),
	dsi.Seq(0xFB, 0x01),
	dsi.Seq(0x3A, 0x08),

	dsi.Seq(0xFF, 0x10),
	dsi.Seq(0xFB, 0x01),
	dsi.Seq(0xB9, 0x05),

	dsi.Seq(0xFF, 0x20),
	dsi.Seq(0xFB, 0x01),
	dsi.Seq(0x18, 0x40),

	// CMD1: full brightness, CABC off
	dsi.Seq(0xFF, 0x10),
	dsi.Seq(0xFB, 0x01),
	dsi.Seq(0xB9, 0x02),
	dsi.Seq(0x51, 0x0F, 0xFF),
	dsi.Seq(0x53, 0x24),
	dsi.Seq(0x55, 0x00),
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
			Compatible: BOECompatible,
			Name:       "BOE TS110F5M-LG0",
			Descriptor: descriptor(boeInit, offTable("ts110f5mlg0 off")),
			Policy: panel.Policy{
				Revisions:    revisions,
				IdentityFrom: panel.RevEvt2,
				Identity:     serialLayout,
				Cabc:         panel.CabcMap{Off: 0x00, UI: 0x01, Still: 0x02, Movie: 0x03},
			},
		},
	})
}
