package panel

import appLog "panelctl/internal/log"

// Revision is a hardware build, ordered from oldest to newest.
type Revision int

const (
	RevProto1 Revision = iota
	RevProto2
	RevEvt1
	RevEvt1_1
	RevEvt2
	RevDvt1
	RevPvt
	// RevLatest stands for any build newer than the model's table knows.
	RevLatest
)

var revisionNames = [...]string{"proto1", "proto2", "evt1", "evt1.1", "evt2", "dvt1", "pvt", "latest"}

func (r Revision) String() string {
	if r < 0 || int(r) >= len(revisionNames) {
		return "unknown"
	}
	return revisionNames[r]
}

// DetectRevision decodes raw, the ID1..ID3 words read from the panel. The
// build code is ID2 (bits 8..15); its high nibble indexes the model's
// revision table. Builds past the end of the table are treated as the
// newest known behavior.
func DetectRevision(table []Revision, raw uint32) Revision {
	build := byte(raw >> 8)
	idx := int(build >> 4)
	if idx >= len(table) {
		appLog.Warn("panel: unknown revision index, assuming latest", "index", idx, "raw", raw)
		return RevLatest
	}
	return table[idx]
}
