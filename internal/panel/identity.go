package panel

import (
	"bytes"
	"errors"
	"fmt"

	"panelctl/internal/dsi"
	appLog "panelctl/internal/log"
)

// detect reads the ID words, decodes the revision and, when the build
// supports it, the serial identity. Failures here are logged only; the
// panel is already displaying.
func (p *Panel) detect() {
	p.detected = true
	raw, err := p.ReadRawID()
	if err != nil {
		appLog.Error("panel: read id failed, assuming latest revision", err, "model", p.model.Compatible)
		p.rawID, p.revision, p.identity = 0, RevLatest, Placeholder
		return
	}
	p.rawID = raw
	p.revision = DetectRevision(p.model.Policy.Revisions, raw)
	appLog.Info("panel: revision", "model", p.model.Compatible, "revision", p.revision.String(),
		"raw_id", fmt.Sprintf("0x%06X", raw))

	id, err := p.ReadIdentity(p.revision)
	if err != nil {
		appLog.Warn("panel: unable to read panel id", "model", p.model.Compatible, "err", err)
	}
	p.identity = id
}

// ReadRawID reads DCS ID1..ID3 into one word, ID1 in bits 16..23.
func (p *Panel) ReadRawID() (uint32, error) {
	var raw uint32
	for _, reg := range []byte{dsi.DCSGetID1, dsi.DCSGetID2, dsi.DCSGetID3} {
		b, err := dsi.Read(p.tr, reg, 1)
		if err != nil {
			return 0, err
		}
		if len(b) != 1 {
			return 0, &dsi.IoError{Op: "read", Reg: reg, Err: fmt.Errorf("got %d bytes", len(b))}
		}
		raw = raw<<8 | uint32(b[0])
	}
	return raw, nil
}

// ReadIdentity reads the serial number. Builds older than the model's
// IdentityFrom cannot report one; they get Placeholder and no error. The
// serial registers are read one byte at a time and the loop stops at the
// first read that does not return exactly one byte. Once the select
// sequence has been attempted the command page is restored, even when a
// select write failed. An incomplete read returns Placeholder and an error.
// The identity ends at the first nul byte.
func (p *Panel) ReadIdentity(rev Revision) (string, error) {
	pol := p.model.Policy
	if rev < pol.IdentityFrom {
		appLog.Info("panel: read id not supported", "model", p.model.Compatible, "revision", rev.String())
		return Placeholder, nil
	}
	layout := pol.Identity
	if layout.Len <= 0 || layout.Len >= MaxIdentityLen {
		return Placeholder, fmt.Errorf("%w: identity length %d", ErrCapabilityUnsupported, layout.Len)
	}

	var selectErr error
	for _, c := range layout.Select {
		if err := dsi.Write(p.tr, c.Op, c.Data...); err != nil {
			selectErr = err
			break
		}
	}

	buf := make([]byte, 0, layout.Len)
	var readErr error
	for i := 0; selectErr == nil && i < layout.Len; i++ {
		reg := layout.Base + byte(i)
		b, err := dsi.Read(p.tr, reg, 1)
		if err != nil {
			readErr = err
			break
		}
		if len(b) != 1 {
			readErr = fmt.Errorf("%w: register 0x%02X returned %d bytes", ErrCapabilityUnsupported, reg, len(b))
			break
		}
		buf = append(buf, b[0])
	}

	var restoreErr error
	for _, c := range layout.Restore {
		if err := dsi.Write(p.tr, c.Op, c.Data...); err != nil {
			restoreErr = err
			break
		}
	}

	if selectErr != nil || readErr != nil || restoreErr != nil {
		return Placeholder, errors.Join(selectErr, readErr, restoreErr)
	}
	if i := bytes.IndexByte(buf, 0); i >= 0 {
		buf = buf[:i]
	}
	return string(buf), nil
}
