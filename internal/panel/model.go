package panel

import "panelctl/internal/dsi"

// Placeholder is the identity reported when none could be read.
const Placeholder = "0"

// MaxIdentityLen bounds the identity buffer.
const MaxIdentityLen = 40

// Control display (0x53) bits.
const (
	CtrlBCTRL byte = 0x20
	CtrlDD    byte = 0x08
	CtrlBL    byte = 0x04
)

// IdentityLayout says where a model keeps its serial number.
type IdentityLayout struct {
	// Select switches to the page holding the serial registers.
	Select []dsi.Command
	// Restore switches back to the normal command page.
	Restore []dsi.Command
	// Base is the first serial register; Len registers follow it.
	Base byte
	Len  int
}

// Policy groups the small per-model behaviors the generic lifecycle needs.
type Policy struct {
	Revisions []Revision
	// IdentityFrom is the first revision able to report a serial number.
	IdentityFrom Revision
	Identity     IdentityLayout
	Cabc         CabcMap
}

// Model is a complete panel definition.
type Model struct {
	Compatible string
	Name       string
	Descriptor *Descriptor
	Policy     Policy
}
