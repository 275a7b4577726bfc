package cliconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestApplyFileConfig(t *testing.T) {
	trueVal := true
	three := 3
	zero := 0

	tests := []struct {
		name       string
		fileConfig FileConfig
		changed    map[string]bool
		initial    Config
		expected   Config
		wantErr    bool
	}{
		{
			name: "applies all valid config values",
			fileConfig: FileConfig{
				HID:            &trueVal,
				Server:         "10.0.0.2",
				Port:           40000,
				Serial:         "/dev/ttyACM0",
				BaudRate:       9600,
				Condition:      "=>",
				Timeout:        "30s",
				ConnectRetries: &three,
				LogLevel:       "debug",
			},
			changed: map[string]bool{},
			initial: DefaultConfig(),
			expected: Config{
				HID:            true,
				Server:         "10.0.0.2",
				Port:           40000,
				Serial:         "/dev/ttyACM0",
				BaudRate:       9600,
				Condition:      "=>",
				Timeout:        30 * time.Second,
				ConnectRetries: 3,
				LogLevel:       "debug",
			},
		},
		{
			name: "respects changed flags",
			fileConfig: FileConfig{
				Server:    "10.0.0.2",
				Port:      40000,
				Condition: "file>",
			},
			changed: map[string]bool{"server": true, "condition": true},
			initial: Config{
				Server:    "192.168.1.5",
				Port:      9999,
				Condition: "flag>",
			},
			expected: Config{
				Server:    "192.168.1.5", // unchanged because flag was set
				Port:      40000,
				Condition: "flag>",
			},
		},
		{
			name:       "empty file keeps defaults",
			fileConfig: FileConfig{},
			changed:    map[string]bool{},
			initial:    DefaultConfig(),
			expected:   DefaultConfig(),
		},
		{
			name:       "explicit zero retries",
			fileConfig: FileConfig{ConnectRetries: &zero},
			changed:    map[string]bool{},
			initial:    Config{ConnectRetries: 5},
			expected:   Config{ConnectRetries: 0},
		},
		{
			name:       "invalid duration",
			fileConfig: FileConfig{Timeout: "soon"},
			changed:    map[string]bool{},
			initial:    DefaultConfig(),
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.initial
			err := ApplyFileConfig(&cfg, tt.fileConfig, tt.changed)

			if tt.wantErr {
				if err == nil {
					t.Error("ApplyFileConfig() expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ApplyFileConfig() unexpected error: %v", err)
			}
			if cfg != tt.expected {
				t.Errorf("config = %+v, want %+v", cfg, tt.expected)
			}
		})
	}
}

func TestLoadFileConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")

	tomlContent := `
hid = true
server = "speculos"
port = 40000
condition = "=> "
timeout = "5s"
connect_retries = 2
log_level = "debug"
`
	if err := os.WriteFile(configPath, []byte(tomlContent), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	fc, err := LoadFileConfig(configPath)
	if err != nil {
		t.Fatalf("LoadFileConfig() error = %v", err)
	}

	if fc.HID == nil || !*fc.HID {
		t.Errorf("HID = %v, want true", fc.HID)
	}
	if fc.Server != "speculos" {
		t.Errorf("Server = %v, want speculos", fc.Server)
	}
	if fc.Port != 40000 {
		t.Errorf("Port = %v, want 40000", fc.Port)
	}
	if fc.Condition != "=> " {
		t.Errorf("Condition = %q, want %q", fc.Condition, "=> ")
	}
	if fc.Timeout != "5s" {
		t.Errorf("Timeout = %v, want 5s", fc.Timeout)
	}
	if fc.ConnectRetries == nil || *fc.ConnectRetries != 2 {
		t.Errorf("ConnectRetries = %v, want 2", fc.ConnectRetries)
	}
}

func TestLoadFileConfig_InvalidFile(t *testing.T) {
	_, err := LoadFileConfig("/nonexistent/path/config.toml")
	if err == nil {
		t.Error("LoadFileConfig() expected error for nonexistent file")
	}
}

func TestLoadFileConfig_InvalidTOML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.toml")

	invalidContent := `
server = "127.0.0.1"
this is not valid toml
`
	if err := os.WriteFile(configPath, []byte(invalidContent), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	_, err := LoadFileConfig(configPath)
	if err == nil {
		t.Error("LoadFileConfig() expected error for invalid TOML")
	}
}

func TestDefaultConfigPath(t *testing.T) {
	path := DefaultConfigPath()

	if path != "" && !strings.Contains(path, ".apdureplay") {
		t.Errorf("DefaultConfigPath() = %v, should contain .apdureplay", path)
	}
}

func TestFileExists(t *testing.T) {
	tmpDir := t.TempDir()
	existingFile := filepath.Join(tmpDir, "exists.txt")

	if err := os.WriteFile(existingFile, []byte("test"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	if !FileExists(existingFile) {
		t.Error("FileExists() = false, want true for existing file")
	}
	if FileExists(filepath.Join(tmpDir, "nonexistent.txt")) {
		t.Error("FileExists() = true, want false for nonexistent file")
	}
}
