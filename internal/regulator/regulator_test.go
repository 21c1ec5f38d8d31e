package regulator

import (
	"errors"
	"testing"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/i2c/i2ctest"
	"periph.io/x/conn/v3/physic"
)

func TestTPSCode(t *testing.T) {
	tests := []struct {
		min, max physic.ElectricPotential
		want     byte
		wantErr  bool
	}{
		{min: 4000 * physic.MilliVolt, max: 4000 * physic.MilliVolt, want: 0x00},
		{min: 5400 * physic.MilliVolt, max: 5400 * physic.MilliVolt, want: 0x0E},
		{min: 5500 * physic.MilliVolt, max: 5500 * physic.MilliVolt, want: 0x0F},
		{min: 6000 * physic.MilliVolt, max: 6000 * physic.MilliVolt, want: 0x14},
		{min: 5450 * physic.MilliVolt, max: 5600 * physic.MilliVolt, want: 0x0F},
		{min: 5450 * physic.MilliVolt, max: 5450 * physic.MilliVolt, wantErr: true},
		{min: 3000 * physic.MilliVolt, max: 3500 * physic.MilliVolt, wantErr: true},
		{min: 6100 * physic.MilliVolt, max: 6500 * physic.MilliVolt, wantErr: true},
	}
	for _, tc := range tests {
		got, err := tpsCode(tc.min, tc.max)
		if tc.wantErr {
			if !errors.Is(err, ErrVoltageRange) {
				t.Errorf("[%s, %s]: expected ErrVoltageRange, got %v", tc.min, tc.max, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Errorf("[%s, %s]: expected 0x%02X, got 0x%02X (%v)", tc.min, tc.max, tc.want, got, err)
		}
	}
}

func TestTPS65132TwoStepSet(t *testing.T) {
	bus := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: TPS65132Addr, W: []byte{0x00, 0x0E}},
			{Addr: TPS65132Addr, W: []byte{0x00, 0x0F}},
			{Addr: TPS65132Addr, W: []byte{0x01, 0x0F}},
		},
		DontPanic: true,
	}
	enp := &gpiotest.Pin{N: "ENP"}
	enn := &gpiotest.Pin{N: "ENN"}
	c := NewTPS65132(bus, TPS65132Addr, "disp_avdd", "disp_avee", enp, enn)

	if err := c.Pos.Enable(); err != nil {
		t.Fatalf("Enable: %v", err)
	}
	if enp.L != gpio.High || !c.Pos.IsEnabled() {
		t.Errorf("ENP should be high")
	}
	target := 5500 * physic.MilliVolt
	low := target - 100*physic.MilliVolt
	for _, v := range []physic.ElectricPotential{low, target, target} {
		if err := c.Pos.SetVoltage(v, v); err != nil {
			t.Fatalf("SetVoltage(%s): %v", v, err)
		}
	}
	if err := c.Neg.SetVoltage(target, target); err != nil {
		t.Fatalf("Neg SetVoltage: %v", err)
	}
	if err := bus.Close(); err != nil {
		t.Errorf("unexpected i2c traffic: %v", err)
	}
}

func TestTPS65132SameRangeIsSkipped(t *testing.T) {
	bus := &i2ctest.Playback{
		Ops:       []i2ctest.IO{{Addr: TPS65132Addr, W: []byte{0x00, 0x0F}}},
		DontPanic: true,
	}
	c := NewTPS65132(bus, TPS65132Addr, "avdd", "avee", &gpiotest.Pin{}, &gpiotest.Pin{})
	v := 5500 * physic.MilliVolt
	if err := c.Pos.SetVoltage(v, v); err != nil {
		t.Fatalf("SetVoltage: %v", err)
	}
	if err := c.Pos.Disable(); err != nil {
		t.Fatalf("Disable: %v", err)
	}
	if err := c.Pos.Enable(); err != nil {
		t.Fatalf("Enable: %v", err)
	}
	// Chip register is back at default here but the cached range matches.
	if err := c.Pos.SetVoltage(v, v); err != nil {
		t.Fatalf("SetVoltage: %v", err)
	}
	if err := bus.Close(); err != nil {
		t.Errorf("expected a single write: %v", err)
	}
}

func TestSwitched(t *testing.T) {
	en := &gpiotest.Pin{N: "VDDI_EN"}
	s := NewSwitched("vddi", en, 1800*physic.MilliVolt)

	if err := s.Enable(); err != nil || en.L != gpio.High || !s.IsEnabled() {
		t.Fatalf("Enable: err=%v level=%v", err, en.L)
	}
	if err := s.SetVoltage(1700*physic.MilliVolt, 1900*physic.MilliVolt); err != nil {
		t.Errorf("fixed voltage inside range rejected: %v", err)
	}
	if err := s.SetVoltage(3300*physic.MilliVolt, 3300*physic.MilliVolt); !errors.Is(err, ErrVoltageRange) {
		t.Errorf("expected ErrVoltageRange, got %v", err)
	}
	if err := s.Disable(); err != nil || en.L != gpio.Low || s.IsEnabled() {
		t.Errorf("Disable: err=%v level=%v", err, en.L)
	}
}
