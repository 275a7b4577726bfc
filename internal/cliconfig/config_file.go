package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	HID            *bool  `toml:"hid"`
	Server         string `toml:"server"`
	Port           int    `toml:"port"`
	Serial         string `toml:"serial"`
	BaudRate       int    `toml:"baud"`
	Condition      string `toml:"condition"`
	Timeout        string `toml:"timeout"`
	ConnectRetries *int   `toml:"connect_retries"`
	LogLevel       string `toml:"log_level"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns ~/.apdureplay/config.toml, or "" when the home
// directory is unknown.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".apdureplay", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setBool("hid", fc.HID, &cfg.HID)
	s.setString("server", fc.Server, &cfg.Server)
	s.setInt("port", fc.Port, &cfg.Port)
	s.setString("serial", fc.Serial, &cfg.Serial)
	s.setInt("baud", fc.BaudRate, &cfg.BaudRate)
	s.setString("condition", fc.Condition, &cfg.Condition)
	s.setCount("connect-retries", fc.ConnectRetries, &cfg.ConnectRetries)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	if err := s.setDuration("timeout", fc.Timeout, &cfg.Timeout); err != nil {
		return err
	}
	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
