// Package service serializes access to one panel. The lifecycle state
// machine itself is not safe for concurrent use; every caller (HTTP API,
// scheduler, signal handling) goes through a Service.
package service

import (
	"errors"
	"fmt"
	"sync"

	appLog "panelctl/internal/log"
	"panelctl/internal/panel"
	"panelctl/internal/power"
)

// Panel is the part of *panel.Panel the service drives.
type Panel interface {
	Prepare() error
	Enable() error
	Disable() error
	Unprepare() error
	State() panel.State
	Status() panel.Status
	Descriptor() *panel.Descriptor
	SetDimming(on bool) error
	SetCabcMode(m panel.CabcMode) error
	SetBrightness(level int) error
}

// Service owns a panel and, optionally, the backlight's reference on the
// shared enable line.
type Service struct {
	mu        sync.Mutex
	p         Panel
	backlight *power.SharedLine
	// lit is true while the backlight holds its reference.
	lit bool
}

// New wraps p. backlight may be nil.
func New(p Panel, backlight *power.SharedLine) *Service {
	return &Service{p: p, backlight: backlight}
}

// PowerOn prepares and enables the panel, then turns the backlight on. A
// failure tears the panel back down to blank before returning.
func (s *Service) PowerOn() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.p.State() {
	case panel.Enabled:
		return nil
	case panel.Blank:
	default:
		// left half way by an earlier failure
		if err := s.teardown(); err != nil {
			return err
		}
	}
	if err := s.p.Prepare(); err != nil {
		return err
	}
	if err := s.p.Enable(); err != nil {
		return errors.Join(err, s.teardown())
	}
	if s.backlight != nil && !s.lit {
		if _, err := s.backlight.Acquire(); err != nil {
			return errors.Join(err, s.teardown())
		}
		s.lit = true
	}
	appLog.Info("service: panel on", "state", s.p.State().String())
	return nil
}

// PowerOff turns the backlight off, then disables and unprepares the panel.
func (s *Service) PowerOff() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.p.State() == panel.Blank {
		return nil
	}
	if s.lit {
		if _, err := s.backlight.Release(); err != nil {
			appLog.Error("service: backlight release failed", err)
		}
		s.lit = false
	}
	if err := s.teardown(); err != nil {
		return err
	}
	appLog.Info("service: panel off")
	return nil
}

// teardown walks the panel back to Blank from wherever it stopped.
func (s *Service) teardown() error {
	switch s.p.State() {
	case panel.Enabled, panel.Initializing:
		if err := s.p.Disable(); err != nil {
			return err
		}
	}
	switch s.p.State() {
	case panel.Disabling, panel.Preparing:
		if err := s.p.Unprepare(); err != nil {
			return fmt.Errorf("service: unprepare: %w", err)
		}
	}
	return nil
}

// Status snapshots the panel.
func (s *Service) Status() panel.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.p.Status()
}

// Descriptor returns the fixed panel description.
func (s *Service) Descriptor() *panel.Descriptor {
	return s.p.Descriptor()
}

func (s *Service) SetDimming(on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.p.SetDimming(on)
}

func (s *Service) SetCabcMode(m panel.CabcMode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.p.SetCabcMode(m)
}

func (s *Service) SetBrightness(level int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.p.SetBrightness(level)
}
