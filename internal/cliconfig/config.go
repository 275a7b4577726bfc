package cliconfig

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bft-labs/apdureplay/internal/domain"
)

// Default transport settings.
const (
	DefaultServer   = "127.0.0.1"
	DefaultPort     = 9999
	DefaultBaudRate = 115200
	DefaultTimeout  = 10 * time.Second
	DefaultLogLevel = "info"
)

// Transport kinds, in order of precedence.
const (
	TransportHID    = "hid"
	TransportSerial = "serial"
	TransportTCP    = "tcp"
)

// Config holds CLI configuration for apdureplay.
type Config struct {
	HID    bool
	Server string
	Port   int

	Serial   string
	BaudRate int

	Condition string

	Timeout        time.Duration
	ConnectRetries int
	LogLevel       string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Server:   DefaultServer,
		Port:     DefaultPort,
		BaudRate: DefaultBaudRate,
		Timeout:  DefaultTimeout,
		LogLevel: DefaultLogLevel,
	}
}

// Transport returns the transport kind selected by the configuration.
func (c *Config) Transport() string {
	switch {
	case c.HID:
		return TransportHID
	case c.Serial != "":
		return TransportSerial
	default:
		return TransportTCP
	}
}

// Level parses LogLevel.
func (c *Config) Level() (zerolog.Level, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("%w: log level %q", domain.ErrInvalidConfig, c.LogLevel)
	}
	return lvl, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.HID && c.Serial != "" {
		return fmt.Errorf("%w: --hid and --serial are mutually exclusive", domain.ErrInvalidConfig)
	}
	if c.Transport() == TransportTCP {
		if c.Server == "" {
			return fmt.Errorf("%w: server is required", domain.ErrInvalidConfig)
		}
		if c.Port < 1 || c.Port > 65535 {
			return fmt.Errorf("%w: port %d out of range", domain.ErrInvalidConfig, c.Port)
		}
	}
	if c.Transport() == TransportSerial && c.BaudRate <= 0 {
		return fmt.Errorf("%w: baud rate must be positive", domain.ErrInvalidConfig)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive", domain.ErrInvalidConfig)
	}
	if c.ConnectRetries < 0 {
		return fmt.Errorf("%w: connect retries must not be negative", domain.ErrInvalidConfig)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setCount sets a non-negative int from a pointer if not nil and flag not changed.
// Unlike setInt it lets an explicit zero through.
func (s *configSetter) setCount(flag string, value *int, dst *int) {
	if value == nil || *value < 0 || s.changed[flag] {
		return
	}
	*dst = *value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setCountFromString parses a non-negative int, zero included.
func (s *configSetter) setCountFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i < 0 {
		return fmt.Errorf("parse %s: %d is negative", flag, i)
	}
	*dst = i
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
