package panel

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"periph.io/x/conn/v3/gpio"

	"panelctl/internal/dsi"
	"panelctl/internal/power"
)

type write struct {
	op   byte
	data []byte
}

type fakeTransport struct {
	writes []write
	reads  []byte
	// read answers register reads; nil returns a single zero byte.
	read func(addr byte, n int) ([]byte, error)
	// failWrite makes the write with this index fail; -1 disables it.
	failWrite int
	lanes     int
}

func newTransport() *fakeTransport { return &fakeTransport{failWrite: -1} }

func (f *fakeTransport) WriteRegister(op byte, data []byte) error {
	if len(f.writes) == f.failWrite {
		f.writes = append(f.writes, write{op, data})
		return errors.New("nak")
	}
	f.writes = append(f.writes, write{op, append([]byte(nil), data...)})
	return nil
}

func (f *fakeTransport) ReadRegister(addr byte, n int) ([]byte, error) {
	f.reads = append(f.reads, addr)
	if f.read == nil {
		return make([]byte, n), nil
	}
	return f.read(addr, n)
}

func (f *fakeTransport) SelectLanes(n int) error {
	f.lanes = n
	return nil
}

type fakeSeq struct {
	on, off  int
	onErr    error
	offErr   error
	onReport power.Report
}

func (s *fakeSeq) PowerOn() (power.Report, error) {
	s.on++
	return s.onReport, s.onErr
}

func (s *fakeSeq) PowerOff() error {
	s.off++
	return s.offErr
}

type eventLine struct {
	events *[]string
	err    error
}

func (l eventLine) Out(v gpio.Level) error {
	if l.err != nil {
		return l.err
	}
	*l.events = append(*l.events, "reset "+v.String())
	return nil
}

func testModel() *Model {
	return &Model{
		Compatible: "test,panel",
		Name:       "test panel",
		Descriptor: &Descriptor{
			Lanes: 4,
			Brightness: Brightness{
				Nits:       Range{Min: 2, Max: 500},
				Level:      Range{Min: 16, Max: 4095},
				Percentage: Range{Min: 0, Max: 100},
			},
			MinBrightness:      16,
			LowerMinBrightness: 4,
			MaxBrightness:      4095,
			DefaultBrightness:  1146,
			HDRFormats:         HDRHDR10 | HDRHLG,
			Mode: Mode{
				Clock:    309246,
				HDisplay: 1600, HFrontPorch: 92, HSync: 66, HBackPorch: 92,
				VDisplay: 2560, VFrontPorch: 26, VSync: 4, VBackPorch: 196,
			},
			Init: dsi.Table{Name: "init", Commands: []dsi.Command{
				dsi.Seq(dsi.PageSelect, 0x20),
				dsi.Seq(dsi.PageReload, 0x01),
				dsi.Seq(0x18, 0x66),
				dsi.SeqDelay(120, dsi.DCSExitSleepMode),
				dsi.Seq(dsi.DCSSetDisplayOn),
			}},
			Off: dsi.Table{Name: "off", Commands: []dsi.Command{
				dsi.SeqDelay(20, dsi.DCSSetDisplayOff),
				dsi.SeqDelay(100, dsi.DCSEnterSleepMode),
			}},
		},
		Policy: Policy{
			Revisions:    []Revision{RevProto1, RevProto2, RevEvt1, RevEvt1_1, RevEvt2, RevDvt1, RevPvt},
			IdentityFrom: RevEvt2,
			Identity: IdentityLayout{
				Select:  dsi.SelectPage(0x22),
				Restore: dsi.SelectPage(dsi.PageCMD1),
				Base:    0x00,
				Len:     37,
			},
			Cabc: CabcMap{Off: 0x00, UI: 0x01, Still: 0x02, Movie: 0x83},
		},
	}
}

type rig struct {
	p      *Panel
	tr     *fakeTransport
	seq    *fakeSeq
	events []string
}

func newRig(t *testing.T) *rig {
	t.Helper()
	r := &rig{tr: newTransport(), seq: &fakeSeq{}}
	sleep := func(d time.Duration) { r.events = append(r.events, "sleep "+d.String()) }
	p, err := New(testModel(), r.tr, r.seq, eventLine{events: &r.events}, WithSleep(sleep))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	r.p = p
	return r
}

func (r *rig) enable(t *testing.T) {
	t.Helper()
	if err := r.p.Prepare(); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if err := r.p.Enable(); err != nil {
		t.Fatalf("Enable: %v", err)
	}
	r.tr.writes = nil
}

func TestDetectRevision(t *testing.T) {
	table := testModel().Policy.Revisions
	tests := []struct {
		raw  uint32
		want Revision
	}{
		{0x000000, RevProto1},
		{0x001000, RevProto2},
		{0xFF4FFF, RevEvt2},
		{0x006000, RevPvt},
		{0x007000, RevLatest},
		{0x00F000, RevLatest},
		// only ID2 carries the build code
		{0xF000F0, RevProto1},
	}
	for _, tc := range tests {
		t.Run(fmt.Sprintf("0x%06X", tc.raw), func(t *testing.T) {
			if got := DetectRevision(table, tc.raw); got != tc.want {
				t.Errorf("DetectRevision = %s, want %s", got, tc.want)
			}
		})
	}
	for idx := 0; idx < 16; idx++ {
		if got := DetectRevision(nil, uint32(idx)<<12); got != RevLatest {
			t.Errorf("empty table idx %d = %s, want latest", idx, got)
		}
	}
}

func TestReadIdentityBelowThreshold(t *testing.T) {
	r := newRig(t)
	r.tr.failWrite = 0
	r.tr.read = func(byte, int) ([]byte, error) { return nil, errors.New("bus down") }

	for _, rev := range []Revision{RevProto1, RevProto2, RevEvt1, RevEvt1_1} {
		id, err := r.p.ReadIdentity(rev)
		if err != nil {
			t.Errorf("%s: err = %v", rev, err)
		}
		if id != Placeholder {
			t.Errorf("%s: id = %q, want %q", rev, id, Placeholder)
		}
	}
	if len(r.tr.writes) != 0 || len(r.tr.reads) != 0 {
		t.Errorf("transport touched: %d writes, %d reads", len(r.tr.writes), len(r.tr.reads))
	}
}

func TestReadIdentityShortRead(t *testing.T) {
	for _, n := range []int{0, 1, 12, 36} {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			r := newRig(t)
			r.tr.read = func(addr byte, _ int) ([]byte, error) {
				if int(addr) >= n {
					return nil, errors.New("timeout")
				}
				return []byte{'A'}, nil
			}
			id, err := r.p.ReadIdentity(RevEvt2)
			if err == nil {
				t.Fatal("expected error")
			}
			if id != Placeholder {
				t.Errorf("id = %q, want placeholder", id)
			}
			if len(r.tr.reads) != n+1 {
				t.Errorf("reads = %d, want %d", len(r.tr.reads), n+1)
			}
			want := []write{{dsi.PageSelect, []byte{0x22}}, {dsi.PageReload, []byte{0x01}},
				{dsi.PageSelect, []byte{dsi.PageCMD1}}, {dsi.PageReload, []byte{0x01}}}
			if !reflect.DeepEqual(r.tr.writes, want) {
				t.Errorf("writes = %v, want %v", r.tr.writes, want)
			}
		})
	}
}

func TestReadIdentitySelectFailureRestoresPage(t *testing.T) {
	restore := []write{{dsi.PageSelect, []byte{dsi.PageCMD1}}, {dsi.PageReload, []byte{0x01}}}
	tests := []struct {
		name      string
		failWrite int
		selected  []write
	}{
		{"page", 0, []write{{dsi.PageSelect, []byte{0x22}}}},
		{"latch", 1, []write{{dsi.PageSelect, []byte{0x22}}, {dsi.PageReload, []byte{0x01}}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := newRig(t)
			r.tr.failWrite = tc.failWrite
			id, err := r.p.ReadIdentity(RevDvt1)
			var ioe *dsi.IoError
			if !errors.As(err, &ioe) {
				t.Fatalf("err = %v, want IoError", err)
			}
			if id != Placeholder {
				t.Errorf("id = %q, want placeholder", id)
			}
			if len(r.tr.reads) != 0 {
				t.Errorf("reads = %v, want none", r.tr.reads)
			}
			want := append(append([]write{}, tc.selected...), restore...)
			if !reflect.DeepEqual(r.tr.writes, want) {
				t.Errorf("writes = %v, want %v", r.tr.writes, want)
			}
		})
	}
}

func TestReadIdentityEndsAtNul(t *testing.T) {
	r := newRig(t)
	r.tr.read = func(addr byte, _ int) ([]byte, error) {
		if addr == 3 {
			return []byte{0}, nil
		}
		return []byte{'A' + addr%26}, nil
	}
	id, err := r.p.ReadIdentity(RevPvt)
	if err != nil {
		t.Fatalf("ReadIdentity: %v", err)
	}
	if id != "ABC" {
		t.Errorf("id = %q, want %q", id, "ABC")
	}
	if len(r.tr.reads) != 37 {
		t.Errorf("reads = %d, want 37", len(r.tr.reads))
	}
}

func TestReadIdentityWrongLength(t *testing.T) {
	r := newRig(t)
	r.tr.read = func(addr byte, _ int) ([]byte, error) {
		if addr == 3 {
			return []byte{'A', 'B'}, nil
		}
		return []byte{'A'}, nil
	}
	id, err := r.p.ReadIdentity(RevPvt)
	if !errors.Is(err, ErrCapabilityUnsupported) {
		t.Errorf("err = %v, want ErrCapabilityUnsupported", err)
	}
	if id != Placeholder {
		t.Errorf("id = %q", id)
	}
	if last := r.tr.writes[len(r.tr.writes)-2]; last.op != dsi.PageSelect || last.data[0] != dsi.PageCMD1 {
		t.Errorf("page not restored: %v", r.tr.writes)
	}
}

func TestReadIdentityFull(t *testing.T) {
	r := newRig(t)
	r.tr.read = func(addr byte, n int) ([]byte, error) {
		if n != 1 {
			t.Errorf("read of %d bytes", n)
		}
		return []byte{'A' + addr%26}, nil
	}
	id, err := r.p.ReadIdentity(RevLatest)
	if err != nil {
		t.Fatalf("ReadIdentity: %v", err)
	}
	if len(id) != 37 {
		t.Fatalf("len(id) = %d, want 37", len(id))
	}
	if !strings.HasPrefix(id, "ABCDEFGHIJKLMNOPQRSTUVWXYZABC") {
		t.Errorf("id = %q", id)
	}
	for i, a := range r.tr.reads {
		if int(a) != i {
			t.Fatalf("read %d addressed 0x%02X", i, a)
		}
	}
}

func TestSetDimmingDiffersByDimmingBit(t *testing.T) {
	r := newRig(t)
	r.enable(t)

	if err := r.p.SetDimming(true); err != nil {
		t.Fatal(err)
	}
	if err := r.p.SetDimming(false); err != nil {
		t.Fatal(err)
	}
	if len(r.tr.writes) != 2 {
		t.Fatalf("writes = %v", r.tr.writes)
	}
	on, off := r.tr.writes[0], r.tr.writes[1]
	if on.op != dsi.DCSWriteControlDisplay || off.op != dsi.DCSWriteControlDisplay {
		t.Fatalf("ops = 0x%02X 0x%02X", on.op, off.op)
	}
	if diff := on.data[0] ^ off.data[0]; diff != CtrlDD {
		t.Errorf("control bytes 0x%02X and 0x%02X differ by 0x%02X", on.data[0], off.data[0], diff)
	}
	if off.data[0] != CtrlBCTRL|CtrlBL {
		t.Errorf("base byte = 0x%02X", off.data[0])
	}
	if r.p.Dimming() {
		t.Error("dimming flag still set")
	}
}

func TestControlRequiresEnabled(t *testing.T) {
	r := newRig(t)
	calls := map[string]func() error{
		"dimming":    func() error { return r.p.SetDimming(true) },
		"cabc":       func() error { return r.p.SetCabcMode(CabcMovie) },
		"brightness": func() error { return r.p.SetBrightness(100) },
	}
	for name, call := range calls {
		if err := call(); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("%s from blank: err = %v", name, err)
		}
	}
	if err := r.p.Prepare(); err != nil {
		t.Fatal(err)
	}
	for name, call := range calls {
		if err := call(); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("%s from preparing: err = %v", name, err)
		}
	}
	if len(r.tr.writes) != 0 {
		t.Errorf("writes = %v, want none", r.tr.writes)
	}
	if r.p.Dimming() {
		t.Error("rejected SetDimming changed the flag")
	}
}

func TestSetCabcMode(t *testing.T) {
	r := newRig(t)
	r.enable(t)
	for _, tc := range []struct {
		mode CabcMode
		want byte
	}{{CabcUI, 0x01}, {CabcStill, 0x02}, {CabcMovie, 0x83}, {CabcOff, 0x00}} {
		r.tr.writes = nil
		if err := r.p.SetCabcMode(tc.mode); err != nil {
			t.Fatal(err)
		}
		want := []write{{dsi.DCSWritePowerSave, []byte{tc.want}}}
		if !reflect.DeepEqual(r.tr.writes, want) {
			t.Errorf("%s: writes = %v, want %v", tc.mode, r.tr.writes, want)
		}
	}
}

func TestSetBrightness(t *testing.T) {
	r := newRig(t)
	r.enable(t)
	tests := []struct {
		level int
		ok    bool
	}{{0, true}, {3, false}, {4, true}, {4095, true}, {4096, false}, {-1, false}}
	for _, tc := range tests {
		err := r.p.SetBrightness(tc.level)
		if tc.ok && err != nil {
			t.Errorf("level %d: %v", tc.level, err)
		}
		if !tc.ok && !errors.Is(err, ErrBrightnessRange) {
			t.Errorf("level %d: err = %v, want ErrBrightnessRange", tc.level, err)
		}
	}
	last := r.tr.writes[len(r.tr.writes)-1]
	if last.op != dsi.DCSSetDisplayBrightness || !reflect.DeepEqual(last.data, []byte{0x0F, 0xFF}) {
		t.Errorf("last write = %v", last)
	}
	if got := r.p.Status().Brightness; got != 4095 {
		t.Errorf("status brightness = %d", got)
	}
}

func TestResetPulse(t *testing.T) {
	cold := []string{
		"reset High", "sleep 1ms",
		"reset Low", "sleep 1ms",
		"reset High", "sleep 10ms",
	}
	tests := []struct {
		name      string
		fromBlank bool
		want      []string
	}{
		{"cold", false, cold},
		{"from blank", true, append([]string{"reset Low", "sleep 1ms"}, cold...)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := newRig(t)
			if err := r.p.Reset(tc.fromBlank); err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(r.events, tc.want) {
				t.Errorf("events = %v, want %v", r.events, tc.want)
			}
		})
	}
}

func TestLifecycleEndToEnd(t *testing.T) {
	r := newRig(t)
	m := r.p.Model()

	if err := r.p.Prepare(); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if r.p.State() != Preparing {
		t.Fatalf("state = %s", r.p.State())
	}
	if r.events[0] != "sleep 18.5ms" {
		t.Errorf("first event = %q, want stabilization", r.events[0])
	}
	if err := r.p.Enable(); err != nil {
		t.Fatalf("Enable: %v", err)
	}
	if r.tr.lanes != 4 {
		t.Errorf("lanes = %d", r.tr.lanes)
	}
	if st := r.p.Status(); st.State != "enabled" || st.Revision != "proto1" || st.Identity != Placeholder {
		t.Errorf("status = %+v", st)
	}
	if err := r.p.SetCabcMode(CabcMovie); err != nil {
		t.Fatalf("SetCabcMode: %v", err)
	}
	if err := r.p.Disable(); err != nil {
		t.Fatalf("Disable: %v", err)
	}
	if err := r.p.Unprepare(); err != nil {
		t.Fatalf("Unprepare: %v", err)
	}
	if r.p.State() != Blank {
		t.Errorf("state = %s, want blank", r.p.State())
	}
	want := m.Descriptor.Init.Len() + 1 + m.Descriptor.Off.Len()
	if len(r.tr.writes) != want {
		t.Errorf("writes = %d, want %d", len(r.tr.writes), want)
	}
	if r.seq.on != 1 || r.seq.off != 1 {
		t.Errorf("power on/off = %d/%d", r.seq.on, r.seq.off)
	}
}

func TestSecondCycleRedetectsAndPulsesLow(t *testing.T) {
	r := newRig(t)
	for i := 0; i < 2; i++ {
		r.events = nil
		r.tr.reads = nil
		if err := r.p.Prepare(); err != nil {
			t.Fatal(err)
		}
		if want := "reset High"; i == 0 && r.events[1] != want {
			t.Errorf("cycle 0 first edge = %q", r.events[1])
		}
		if want := "reset Low"; i == 1 && r.events[1] != want {
			t.Errorf("cycle 1 first edge = %q", r.events[1])
		}
		if err := r.p.Enable(); err != nil {
			t.Fatal(err)
		}
		if len(r.tr.reads) != 3 {
			t.Errorf("cycle %d: %d id reads, want 3", i, len(r.tr.reads))
		}
		if err := r.p.Disable(); err != nil {
			t.Fatal(err)
		}
		if err := r.p.Unprepare(); err != nil {
			t.Fatal(err)
		}
	}
}

func TestDetectReadsIdentityOnNewerBuilds(t *testing.T) {
	r := newRig(t)
	serial := "CSOT0123456789ABCDEFGHIJKLMNOPQRSTUVW"
	r.tr.read = func(addr byte, n int) ([]byte, error) {
		if addr == dsi.DCSGetID2 {
			return []byte{0x50}, nil
		}
		if addr >= dsi.DCSGetID1 {
			return []byte{0x00}, nil
		}
		return []byte{serial[addr]}, nil
	}
	r.enable(t)
	if r.p.Revision() != RevDvt1 {
		t.Errorf("revision = %s", r.p.Revision())
	}
	if r.p.Identity() != serial {
		t.Errorf("identity = %q", r.p.Identity())
	}
}

func TestDetectReadFailureAssumesLatest(t *testing.T) {
	r := newRig(t)
	r.tr.read = func(byte, int) ([]byte, error) { return nil, errors.New("no ack") }
	r.enable(t)
	if r.p.Revision() != RevLatest || r.p.Identity() != Placeholder {
		t.Errorf("revision %s identity %q", r.p.Revision(), r.p.Identity())
	}
	if len(r.tr.reads) != 1 {
		t.Errorf("reads = %d, want 1", len(r.tr.reads))
	}
}

func TestPrepareFailureReturnsToBlank(t *testing.T) {
	t.Run("power", func(t *testing.T) {
		r := newRig(t)
		r.seq.onErr = &power.Error{Rail: "vddi", Op: "enable", Err: errors.New("no supply")}
		err := r.p.Prepare()
		var pe *power.Error
		if !errors.As(err, &pe) {
			t.Fatalf("err = %v, want power.Error", err)
		}
		if r.p.State() != Blank {
			t.Errorf("state = %s", r.p.State())
		}
		if r.seq.off != 1 {
			t.Errorf("power off calls = %d, want 1", r.seq.off)
		}
	})
	t.Run("reset", func(t *testing.T) {
		r := newRig(t)
		seq := &fakeSeq{}
		p, err := New(testModel(), r.tr, seq, eventLine{err: errors.New("gpio busy")}, WithSleep(func(time.Duration) {}))
		if err != nil {
			t.Fatal(err)
		}
		if err := p.Prepare(); err == nil {
			t.Fatal("expected error")
		}
		if p.State() != Blank {
			t.Errorf("state = %s", p.State())
		}
		if seq.off != 1 {
			t.Errorf("power off calls = %d, want 1", seq.off)
		}
	})
}

func TestEnableFailureTearsDown(t *testing.T) {
	r := newRig(t)
	r.tr.failWrite = 2
	if err := r.p.Prepare(); err != nil {
		t.Fatal(err)
	}
	err := r.p.Enable()
	var ioe *dsi.IoError
	if !errors.As(err, &ioe) {
		t.Fatalf("err = %v, want IoError", err)
	}
	if r.p.State() != Initializing {
		t.Errorf("state = %s, want initializing", r.p.State())
	}
	if len(r.tr.writes) != 3 {
		t.Errorf("playback continued: %d writes", len(r.tr.writes))
	}
	if err := r.p.SetDimming(true); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("control after failed enable: %v", err)
	}
	if err := r.p.Disable(); err != nil {
		t.Fatal(err)
	}
	r.tr.failWrite = -1
	if err := r.p.Unprepare(); err != nil {
		t.Fatal(err)
	}
	if r.p.State() != Blank {
		t.Errorf("state = %s", r.p.State())
	}
}

func TestUnprepareOffTableFailureStillPowersDown(t *testing.T) {
	r := newRig(t)
	r.enable(t)
	r.tr.failWrite = 0
	if err := r.p.Disable(); err != nil {
		t.Fatal(err)
	}
	if err := r.p.Unprepare(); err == nil {
		t.Fatal("expected off table error")
	}
	if r.seq.off != 1 || r.p.State() != Blank {
		t.Errorf("off calls %d state %s", r.seq.off, r.p.State())
	}
}

func TestUnpreparePowerOffFailureIsRetryable(t *testing.T) {
	r := newRig(t)
	if err := r.p.Prepare(); err != nil {
		t.Fatal(err)
	}
	r.seq.offErr = errors.New("rail stuck")
	if err := r.p.Unprepare(); err == nil {
		t.Fatal("expected error")
	}
	if r.p.State() != Preparing {
		t.Errorf("state = %s, want preparing", r.p.State())
	}
	r.seq.offErr = nil
	if err := r.p.Unprepare(); err != nil {
		t.Fatal(err)
	}
	if len(r.tr.writes) != 0 {
		t.Errorf("off table sent for a never enabled panel: %v", r.tr.writes)
	}
}

func TestInvalidLifecycleTransitions(t *testing.T) {
	r := newRig(t)
	for name, call := range map[string]func() error{
		"enable":    r.p.Enable,
		"disable":   r.p.Disable,
		"unprepare": r.p.Unprepare,
	} {
		if err := call(); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("%s from blank: %v", name, err)
		}
	}
	r.enable(t)
	if err := r.p.Prepare(); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("prepare while enabled: %v", err)
	}
	if r.seq.on != 1 {
		t.Errorf("power on calls = %d", r.seq.on)
	}
}

func TestStatusReportsVoltageFaults(t *testing.T) {
	r := newRig(t)
	r.seq.onReport = power.Report{VoltageFaults: []error{errors.New("avdd: out of range")}}
	if err := r.p.Prepare(); err != nil {
		t.Fatal(err)
	}
	if got := r.p.Status().VoltageFaults; len(got) != 1 || got[0] != "avdd: out of range" {
		t.Errorf("faults = %v", got)
	}
}

func TestDescriptor(t *testing.T) {
	d := testModel().Descriptor
	if got := d.Mode.RefreshHz(); got != 60 {
		t.Errorf("RefreshHz = %d", got)
	}
	for _, tc := range []struct{ level, nits, pct int }{
		{0, 2, 0}, {16, 2, 0}, {4095, 500, 100}, {5000, 500, 100},
	} {
		if got := d.NitsForLevel(tc.level); got != tc.nits {
			t.Errorf("NitsForLevel(%d) = %d, want %d", tc.level, got, tc.nits)
		}
		if got := d.PercentForLevel(tc.level); got != tc.pct {
			t.Errorf("PercentForLevel(%d) = %d, want %d", tc.level, got, tc.pct)
		}
	}
	if !d.Supports(HDRHLG) || d.Supports(HDRDolbyVision) || d.Supports(HDRNone) {
		t.Error("HDR support mask")
	}
}

func TestParseCabcMode(t *testing.T) {
	for _, m := range []CabcMode{CabcOff, CabcUI, CabcStill, CabcMovie} {
		got, err := ParseCabcMode(strings.ToUpper(m.String()))
		if err != nil || got != m {
			t.Errorf("ParseCabcMode(%q) = %v, %v", m, got, err)
		}
	}
	if _, err := ParseCabcMode("vivid"); err == nil {
		t.Error("expected error")
	}
}
