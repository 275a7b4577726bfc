package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (APDUREPLAY_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setBoolFromString("hid", os.Getenv("APDUREPLAY_HID"), &cfg.HID)
	s.setString("server", os.Getenv("APDUREPLAY_SERVER"), &cfg.Server)
	s.setString("serial", os.Getenv("APDUREPLAY_SERIAL"), &cfg.Serial)
	s.setString("condition", os.Getenv("APDUREPLAY_CONDITION"), &cfg.Condition)
	s.setString("log-level", os.Getenv("APDUREPLAY_LOG_LEVEL"), &cfg.LogLevel)

	if err := s.setIntFromString("port", os.Getenv("APDUREPLAY_PORT"), &cfg.Port); err != nil {
		return err
	}
	if err := s.setIntFromString("baud", os.Getenv("APDUREPLAY_BAUD"), &cfg.BaudRate); err != nil {
		return err
	}
	if err := s.setCountFromString("connect-retries", os.Getenv("APDUREPLAY_CONNECT_RETRIES"), &cfg.ConnectRetries); err != nil {
		return err
	}
	if err := s.setDuration("timeout", os.Getenv("APDUREPLAY_TIMEOUT"), &cfg.Timeout); err != nil {
		return err
	}

	return nil
}
