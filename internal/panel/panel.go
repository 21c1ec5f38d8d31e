package panel

import (
	"errors"
	"fmt"
	"time"

	"panelctl/internal/dsi"
	appLog "panelctl/internal/log"
	"panelctl/internal/power"
)

// Sequencer powers the panel's rails. *power.Sequencer implements it.
type Sequencer interface {
	PowerOn() (power.Report, error)
	PowerOff() error
}

// Timing holds the lifecycle delays outside the power sequencer.
type Timing struct {
	// Stabilize follows power-on, before the reset pulse.
	Stabilize time.Duration
	// ResetPre is the low hold issued first when waking from blank.
	ResetPre time.Duration
	// ResetActive, ResetRelease and ResetHold time the three pulse edges.
	ResetActive  time.Duration
	ResetRelease time.Duration
	ResetHold    time.Duration
}

// DefaultTiming is the vendor-mandated bring-up timing.
var DefaultTiming = Timing{
	Stabilize:    18500 * time.Microsecond,
	ResetPre:     1 * time.Millisecond,
	ResetActive:  1 * time.Millisecond,
	ResetRelease: 1 * time.Millisecond,
	ResetHold:    10 * time.Millisecond,
}

// Status is a snapshot of the runtime state.
type Status struct {
	Model         string   `json:"model"`
	State         string   `json:"state"`
	Revision      string   `json:"revision,omitempty"`
	RawID         uint32   `json:"raw_id"`
	Identity      string   `json:"identity,omitempty"`
	Dimming       bool     `json:"dimming"`
	Brightness    int      `json:"brightness"`
	Cabc          string   `json:"cabc"`
	VoltageFaults []string `json:"voltage_faults,omitempty"`
}

// Panel drives one physical panel through its lifecycle.
//
// A Panel is not safe for concurrent use. Every lifecycle and control call
// must be serialized by the caller; internal/service does this with a mutex.
// Calls block for the fixed settle and hold times and cannot be cancelled
// midway, since abandoning a power or reset sequence leaves the panel in an
// undefined electrical state.
type Panel struct {
	model  *Model
	tr     dsi.Transport
	player *dsi.Player
	seq    Sequencer
	reset  power.Line
	timing Timing
	sleep  func(time.Duration)

	state State
	// enabled is true once the init table has fully played.
	enabled bool
	// blanked is true after the panel has been through a full power cycle;
	// the next reset then starts with a low hold.
	blanked bool
	// detected is cleared on every power-down; ID registers reset with power.
	detected bool

	rawID      uint32
	revision   Revision
	identity   string
	dimming    bool
	brightness int
	cabc       CabcMode
	faults     []error
}

// Option configures a Panel.
type Option func(*Panel)

// WithSleep replaces time.Sleep for every delay the panel and its player
// take. Tests use it to record timing.
func WithSleep(fn func(time.Duration)) Option {
	return func(p *Panel) { p.sleep = fn }
}

// WithTiming overrides DefaultTiming.
func WithTiming(t Timing) Option {
	return func(p *Panel) { p.timing = t }
}

// New binds a model to its transport, rail sequencer and reset line.
func New(m *Model, tr dsi.Transport, seq Sequencer, reset power.Line, opts ...Option) (*Panel, error) {
	if m == nil || m.Descriptor == nil {
		return nil, errors.New("panel: model without descriptor")
	}
	if tr == nil || seq == nil || reset == nil {
		return nil, errors.New("panel: transport, sequencer and reset line are required")
	}
	p := &Panel{
		model:      m,
		tr:         tr,
		seq:        seq,
		reset:      reset,
		timing:     DefaultTiming,
		sleep:      time.Sleep,
		state:      Blank,
		revision:   RevLatest,
		identity:   Placeholder,
		brightness: m.Descriptor.DefaultBrightness,
	}
	for _, o := range opts {
		o(p)
	}
	p.player = dsi.NewPlayer(tr)
	p.player.Sleep = p.sleep
	return p, nil
}

func (p *Panel) Model() *Model { return p.model }

func (p *Panel) Descriptor() *Descriptor { return p.model.Descriptor }

func (p *Panel) State() State { return p.state }

func (p *Panel) Revision() Revision { return p.revision }

func (p *Panel) Identity() string { return p.identity }

// Dimming returns the stored dimming flag. It survives power cycles.
func (p *Panel) Dimming() bool { return p.dimming }

func (p *Panel) Status() Status {
	st := Status{
		Model:      p.model.Compatible,
		State:      p.state.String(),
		RawID:      p.rawID,
		Dimming:    p.dimming,
		Brightness: p.brightness,
		Cabc:       p.cabc.String(),
	}
	if p.detected {
		st.Revision = p.revision.String()
		st.Identity = p.identity
	}
	for _, f := range p.faults {
		st.VoltageFaults = append(st.VoltageFaults, f.Error())
	}
	return st
}

// Prepare powers the panel and pulses reset. It is valid from Blank. On any
// failure the panel is back in Blank with its rails switched off, and the
// caller starts over.
func (p *Panel) Prepare() error {
	if p.state != Blank {
		return invalidTransition("prepare", p.state)
	}
	appLog.Debug("panel: prepare", "model", p.model.Compatible, "from_blank", p.blanked)

	rep, err := p.seq.PowerOn()
	if err != nil {
		return errors.Join(fmt.Errorf("panel: power on: %w", err), p.abortPower())
	}
	p.faults = rep.VoltageFaults
	p.sleep(p.timing.Stabilize)

	p.state = Resetting
	if err := p.Reset(p.blanked); err != nil {
		p.state = Blank
		return errors.Join(err, p.abortPower())
	}
	p.state = Preparing
	return nil
}

// abortPower removes whatever a failed Prepare switched on.
func (p *Panel) abortPower() error {
	if err := p.seq.PowerOff(); err != nil {
		appLog.Error("panel: power off after failed prepare", err, "model", p.model.Compatible)
		return fmt.Errorf("panel: power off: %w", err)
	}
	return nil
}

// Enable plays the init table. It is valid from Preparing. A playback
// failure leaves the panel Initializing and not enabled; the caller tears
// it down with Disable and Unprepare. Revision and identity are read once
// per power cycle right after a successful init.
func (p *Panel) Enable() error {
	if p.state != Preparing {
		return invalidTransition("enable", p.state)
	}
	p.state = Initializing
	p.enabled = false

	d := p.model.Descriptor
	if err := p.tr.SelectLanes(d.Lanes); err != nil {
		return &dsi.IoError{Op: "lanes", Err: err}
	}
	if err := p.player.Play(d.Init); err != nil {
		return err
	}
	p.enabled = true
	p.state = Enabled
	appLog.Info("panel: enabled", "model", p.model.Compatible)

	if !p.detected {
		p.detect()
	}
	return nil
}

// Disable stops control calls. It is valid from Enabled, and from
// Initializing so a failed Enable can be torn down.
func (p *Panel) Disable() error {
	if p.state != Enabled && p.state != Initializing {
		return invalidTransition("disable", p.state)
	}
	p.state = Disabling
	return nil
}

// Unprepare plays the off table and removes power. It is valid from
// Disabling, and from Preparing for a panel that was never enabled (no off
// table is sent then). Power is removed even when the off table fails; that
// error is still returned. If power-off fails the panel stays in its state
// so Unprepare can be retried.
func (p *Panel) Unprepare() error {
	if p.state != Disabling && p.state != Preparing {
		return invalidTransition("unprepare", p.state)
	}

	var offErr error
	if p.state == Disabling {
		if err := p.player.Play(p.model.Descriptor.Off); err != nil {
			appLog.Error("panel: off table failed, removing power anyway", err, "model", p.model.Compatible)
			offErr = err
		}
	}
	p.enabled = false

	if err := p.seq.PowerOff(); err != nil {
		return errors.Join(offErr, fmt.Errorf("panel: power off: %w", err))
	}
	p.state = Blank
	p.blanked = true
	p.detected = false
	appLog.Info("panel: powered down", "model", p.model.Compatible)
	return offErr
}
