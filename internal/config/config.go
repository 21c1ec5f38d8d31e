package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	appLog "panelctl/internal/log"
	"panelctl/internal/model"
	"panelctl/internal/panel"
)

// Transport kinds.
const (
	TransportSim    = "sim"
	TransportDBI    = "dbi"
	TransportBridge = "bridge"
)

// TransportConfig selects how register traffic reaches the panel.
type TransportConfig struct {
	// Kind is "sim", "dbi" (SPI with a D/C line) or "bridge" (serial
	// DSI bridge MCU).
	Kind string `yaml:"kind" json:"kind"`

	// SPI is the spireg port name; empty picks the first port.
	SPI string `yaml:"spi,omitempty" json:"spi,omitempty"`
	// SPIHz is the SPI clock.
	SPIHz int64 `yaml:"spi_hz,omitempty" json:"spi_hz,omitempty"`
	// DCGPIO is the data/command select pin for the DBI transport.
	DCGPIO string `yaml:"dc_gpio,omitempty" json:"dc_gpio,omitempty"`
	// CSGPIO optionally drives chip select from a GPIO held across each
	// register access; the SPI port then leaves CS alone.
	CSGPIO string `yaml:"cs_gpio,omitempty" json:"cs_gpio,omitempty"`

	// Serial is the bridge's serial device, e.g. "/dev/ttyACM0".
	Serial string `yaml:"serial,omitempty" json:"serial,omitempty"`
	Baud   int    `yaml:"baud,omitempty" json:"baud,omitempty"`
	// ReadTimeoutMS bounds a single bridge reply.
	ReadTimeoutMS int `yaml:"read_timeout_ms,omitempty" json:"read_timeout_ms,omitempty"`
}

// GPIOConfig names the gpioreg pins the panel uses.
type GPIOConfig struct {
	Reset      string `yaml:"reset" json:"reset"`
	VDDIEnable string `yaml:"vddi_enable" json:"vddi_enable"`
	// SharedEnable is the pin shared with the backlight (BL_EN). Only used
	// by models that need it.
	SharedEnable string `yaml:"shared_enable,omitempty" json:"shared_enable,omitempty"`
}

// BiasConfig describes the TPS65132 bias converter.
type BiasConfig struct {
	// Bus is the i2creg bus name; empty picks the first bus.
	Bus  string `yaml:"bus,omitempty" json:"bus,omitempty"`
	Addr uint16 `yaml:"addr" json:"addr"`
	// ENP and ENN are the output enable pins.
	ENP string `yaml:"enp_gpio" json:"enp_gpio"`
	ENN string `yaml:"enn_gpio" json:"enn_gpio"`
	// Microvolt holds the target per rail name ("avdd", "avee").
	Microvolt map[string]int `yaml:"microvolt" json:"microvolt"`
}

// ScheduleRule applies control settings on a cron schedule. Unset actions
// are left alone.
type ScheduleRule struct {
	Cron       string `yaml:"cron" json:"cron"`
	Cabc       string `yaml:"cabc,omitempty" json:"cabc,omitempty"`
	Dimming    *bool  `yaml:"dimming,omitempty" json:"dimming,omitempty"`
	Brightness *int   `yaml:"brightness,omitempty" json:"brightness,omitempty"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Panel is the compatible string of the attached panel.
	Panel string `yaml:"panel" json:"panel"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	// Timezone is the IANA zone cron schedules are evaluated in.
	Timezone string `yaml:"timezone" json:"timezone"`

	// Listen is the HTTP listen address for the API. Empty disables it.
	Listen string `yaml:"listen" json:"listen"`

	Transport TransportConfig `yaml:"transport" json:"transport"`
	GPIO      GPIOConfig      `yaml:"gpio" json:"gpio"`
	Bias      BiasConfig      `yaml:"bias" json:"bias"`

	Schedule []ScheduleRule `yaml:"schedule" json:"schedule"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all endpoints
	// except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

const (
	defaultListen   = "127.0.0.1:8080"
	defaultTimezone = "UTC"
	defaultSPIHz    = 10_000_000
	defaultBaud     = 250000
	defaultTimeout  = 200
	defaultBiasAddr = 0x3E
	defaultBiasUV   = 5500000
)

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	c := &Config{
		Panel:     model.CSOTCompatible,
		LogLevel:  "info",
		Timezone:  defaultTimezone,
		Listen:    defaultListen,
		Transport: TransportConfig{Kind: TransportSim},
		GPIO: GPIOConfig{
			Reset:        "GPIO22",
			VDDIEnable:   "GPIO23",
			SharedEnable: "GPIO24",
		},
		Bias: BiasConfig{
			ENP: "GPIO5",
			ENN: "GPIO6",
		},
		Schedule: []ScheduleRule{},
	}
	c.Normalize()
	return c
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Panel == "" {
		c.Panel = model.CSOTCompatible
	}
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Timezone == "" {
		c.Timezone = defaultTimezone
	}
	if c.Transport.Kind == "" {
		c.Transport.Kind = TransportSim
	}
	if c.Transport.SPIHz <= 0 {
		c.Transport.SPIHz = defaultSPIHz
	}
	if c.Transport.Baud <= 0 {
		c.Transport.Baud = defaultBaud
	}
	if c.Transport.ReadTimeoutMS <= 0 {
		c.Transport.ReadTimeoutMS = defaultTimeout
	}
	if c.Bias.Addr == 0 {
		c.Bias.Addr = defaultBiasAddr
	}
	if c.Bias.Microvolt == nil {
		c.Bias.Microvolt = map[string]int{}
	}
	for _, name := range []string{"avdd", "avee"} {
		if c.Bias.Microvolt[name] == 0 {
			c.Bias.Microvolt[name] = defaultBiasUV
		}
	}
	if c.Schedule == nil {
		c.Schedule = []ScheduleRule{}
	}
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	if _, err := model.Lookup(c.Panel); err != nil {
		return fmt.Errorf("config: panel: %w (known: %s)", err, strings.Join(model.Compatibles(), ", "))
	}
	switch appLog.Level(strings.ToUpper(c.LogLevel)) {
	case appLog.LevelDebug, appLog.LevelInfo, appLog.LevelWarn, appLog.LevelError:
	default:
		return fmt.Errorf("config: unknown log_level %q", c.LogLevel)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("config: timezone: %w", err)
	}

	switch c.Transport.Kind {
	case TransportSim:
	case TransportDBI:
		if c.Transport.DCGPIO == "" {
			return errors.New("config: transport dbi needs dc_gpio")
		}
	case TransportBridge:
		if c.Transport.Serial == "" {
			return errors.New("config: transport bridge needs serial")
		}
	default:
		return fmt.Errorf("config: unknown transport kind %q", c.Transport.Kind)
	}
	if c.Transport.Kind != TransportSim && (c.GPIO.Reset == "" || c.GPIO.VDDIEnable == "") {
		return errors.New("config: gpio reset and vddi_enable are required")
	}

	for name, uv := range c.Bias.Microvolt {
		if uv < 0 {
			return fmt.Errorf("config: bias %s: negative microvolt", name)
		}
	}

	for i, r := range c.Schedule {
		if strings.TrimSpace(r.Cron) == "" {
			return fmt.Errorf("config: schedule[%d]: cron is empty", i)
		}
		if r.Cabc == "" && r.Dimming == nil && r.Brightness == nil {
			return fmt.Errorf("config: schedule[%d]: no action", i)
		}
		if r.Cabc != "" {
			if _, err := panel.ParseCabcMode(r.Cabc); err != nil {
				return fmt.Errorf("config: schedule[%d]: %w", i, err)
			}
		}
	}
	return nil
}

// Location returns the schedule time zone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist, a default config is written with 0600
//     perms and returned.
//   - Otherwise the YAML is read, unmarshalled and normalized.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			appLog.Info("config: wrote defaults", "path", path)
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes cfg to path atomically via a temp file + rename, creating the
// parent directory (0700) if needed. The final file has 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".panelctl-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Save delegates to the package-level Save.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
