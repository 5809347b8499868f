// Package config loads the host tools' JSON configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"tickrtc/core"
	"tickrtc/host/serial"
)

// Config describes the firmware build the host talks to and how to reach it
type Config struct {
	ClockHz     uint32   `json:"clock_hz"`
	Prescaler   uint16   `json:"prescaler"`
	Resolutions []string `json:"resolutions"`
	Wide        *bool    `json:"wide,omitempty"`

	Device string `json:"device"`
	Baud   int    `json:"baud"`
}

// LoadConfig parses a JSON configuration and applies defaults
func LoadConfig(jsonData []byte) (*Config, error) {
	var cfg Config

	if err := json.Unmarshal(jsonData, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyDefaults(&cfg)

	if _, err := cfg.RTC(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFile reads and parses the configuration at path. An empty path yields
// the defaults.
func LoadFile(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return LoadConfig(data)
}

// Default returns the configuration matching core.DefaultConfig
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}

// applyDefaults fills in missing configuration values
func applyDefaults(cfg *Config) {
	def := core.DefaultConfig()

	if cfg.ClockHz == 0 {
		cfg.ClockHz = def.ClockHz
	}
	if cfg.Prescaler == 0 {
		cfg.Prescaler = uint16(def.Prescaler)
	}
	if cfg.Resolutions == nil {
		cfg.Resolutions = []string{"ms", "us"}
	}
	if cfg.Wide == nil {
		wide := def.Wide
		cfg.Wide = &wide
	}
	if cfg.Device == "" {
		cfg.Device = "/dev/ttyUSB0"
	}
	if cfg.Baud == 0 {
		cfg.Baud = serial.DefaultBaud
	}
}

// RTC converts the file configuration to a core.Config. An unsupported
// prescaler is kept as is; core normalizes it to 1024.
func (c *Config) RTC() (core.Config, error) {
	var res core.Resolution
	for _, name := range c.Resolutions {
		switch name {
		case "ms":
			res |= core.ResolutionMs
		case "us":
			res |= core.ResolutionUs
		default:
			return core.Config{}, fmt.Errorf("unknown resolution %q", name)
		}
	}

	rtc := core.Config{
		ClockHz:     c.ClockHz,
		Prescaler:   core.Prescaler(c.Prescaler),
		Resolutions: res,
		Wide:        c.Wide != nil && *c.Wide,
	}
	if err := rtc.Validate(); err != nil {
		return core.Config{}, fmt.Errorf("clock_hz %d: %w", c.ClockHz, err)
	}
	return rtc, nil
}

// Serial returns the serial port settings
func (c *Config) Serial() *serial.Config {
	sc := serial.DefaultConfig(c.Device)
	sc.Baud = c.Baud
	return sc
}
