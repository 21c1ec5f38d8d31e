// Package schedule applies control settings to the panel on cron rules,
// for example movie CABC with dimming in the evening.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"panelctl/internal/config"
	appLog "panelctl/internal/log"
	"panelctl/internal/panel"
)

// Controller is the control surface a rule acts on. *service.Service
// implements it.
type Controller interface {
	SetCabcMode(m panel.CabcMode) error
	SetDimming(on bool) error
	SetBrightness(level int) error
}

// action is one rule's settings. Nil fields are left untouched.
type action struct {
	spec       string
	cabc       *panel.CabcMode
	dimming    *bool
	brightness *int
}

func (a action) run(ctrl Controller) error {
	var errs []error
	if a.cabc != nil {
		if err := ctrl.SetCabcMode(*a.cabc); err != nil {
			errs = append(errs, err)
		}
	}
	if a.dimming != nil {
		if err := ctrl.SetDimming(*a.dimming); err != nil {
			errs = append(errs, err)
		}
	}
	if a.brightness != nil {
		if err := ctrl.SetBrightness(*a.brightness); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Scheduler runs the configured rules.
type Scheduler struct {
	c    *cron.Cron
	ctrl Controller
}

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// New parses rules. An invalid cron expression or CABC mode fails here, not
// when the rule fires.
func New(ctrl Controller, rules []config.ScheduleRule, loc *time.Location) (*Scheduler, error) {
	if loc == nil {
		loc = time.UTC
	}
	s := &Scheduler{
		c:    cron.New(cron.WithLocation(loc), cron.WithParser(parser)),
		ctrl: ctrl,
	}
	for i, r := range rules {
		a := action{spec: r.Cron, dimming: r.Dimming, brightness: r.Brightness}
		if r.Cabc != "" {
			m, err := panel.ParseCabcMode(r.Cabc)
			if err != nil {
				return nil, fmt.Errorf("schedule: rule %d: %w", i, err)
			}
			a.cabc = &m
		}
		if _, err := s.c.AddFunc(r.Cron, func() { s.fire(a) }); err != nil {
			return nil, fmt.Errorf("schedule: rule %d: %q: %w", i, r.Cron, err)
		}
	}
	return s, nil
}

func (s *Scheduler) fire(a action) {
	err := a.run(s.ctrl)
	switch {
	case err == nil:
		appLog.Info("schedule: rule applied", "cron", a.spec)
	case errors.Is(err, panel.ErrInvalidTransition):
		// the panel is off; the next rule after power-on takes effect
		appLog.Debug("schedule: panel not enabled, rule skipped", "cron", a.spec)
	default:
		appLog.Error("schedule: rule failed", err, "cron", a.spec)
	}
}

// Len returns the number of scheduled rules.
func (s *Scheduler) Len() int { return len(s.c.Entries()) }

// Next returns when the next rule fires, zero if none is scheduled.
func (s *Scheduler) Next() time.Time {
	var next time.Time
	for _, e := range s.c.Entries() {
		if next.IsZero() || (!e.Next.IsZero() && e.Next.Before(next)) {
			next = e.Next
		}
	}
	return next
}

func (s *Scheduler) Start() { s.c.Start() }

// Stop stops scheduling and waits for a running rule or ctx, whichever
// comes first.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.c.Stop().Done():
	case <-ctx.Done():
	}
}
