package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/apdureplay/internal/cliconfig"
	"github.com/bft-labs/apdureplay/internal/domain"
	"github.com/bft-labs/apdureplay/internal/ports"
)

type fakeSession struct {
	mu     sync.Mutex
	frames []domain.Frame
	closes int
	sw     uint16
}

func (s *fakeSession) Exchange(ctx context.Context, frame domain.Frame) (domain.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, frame)
	return domain.Response{SW: s.sw}, nil
}

func (s *fakeSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closes++
	return nil
}

// harness captures the config handed to the opener.
type harness struct {
	session *fakeSession
	openErr error
	cfg     cliconfig.Config
	opened  int
	logs    bytes.Buffer
}

func (h *harness) open(ctx context.Context, cfg cliconfig.Config, logger ports.Logger) (ports.Session, error) {
	h.opened++
	h.cfg = cfg
	if h.openErr != nil {
		return nil, h.openErr
	}
	return h.session, nil
}

func (h *harness) execute(t *testing.T, stdin string, args ...string) error {
	t.Helper()
	// keep the developer's own config and environment out of the run
	t.Setenv("HOME", t.TempDir())
	for _, k := range []string{
		"APDUREPLAY_HID", "APDUREPLAY_SERVER", "APDUREPLAY_PORT", "APDUREPLAY_CONDITION",
		"APDUREPLAY_SERIAL", "APDUREPLAY_BAUD", "APDUREPLAY_TIMEOUT",
		"APDUREPLAY_CONNECT_RETRIES", "APDUREPLAY_LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}

	root := newRootCmd(h.open, strings.NewReader(stdin), &h.logs)
	root.SetArgs(args)
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	return root.ExecuteContext(context.Background())
}

func newHarness() *harness {
	return &harness{session: &fakeSession{sw: domain.StatusOK}}
}

func writeFrames(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "frames.apdu")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFileCommand_ReplaysFrames(t *testing.T) {
	h := newHarness()
	path := writeFrames(t, "# boot\ne0c4000000\n\nb0 01 00 00 00\n")

	require.NoError(t, h.execute(t, "", "file", path))

	assert.Equal(t, []domain.Frame{"e0c4000000", "b001000000"}, h.session.frames)
	assert.Equal(t, 1, h.session.closes)
	assert.Equal(t, cliconfig.TransportTCP, h.cfg.Transport())
	assert.Equal(t, "127.0.0.1", h.cfg.Server)
	assert.Equal(t, 9999, h.cfg.Port)
	assert.Contains(t, h.logs.String(), "=> e0c4000000")
}

func TestFileCommand_Condition(t *testing.T) {
	h := newHarness()
	path := writeFrames(t, "=> e001000000\n")

	require.NoError(t, h.execute(t, "", "--condition", "=> ", "file", path))

	assert.Equal(t, []domain.Frame{"e001000000"}, h.session.frames)
}

func TestFileCommand_MissingFile(t *testing.T) {
	h := newHarness()

	err := h.execute(t, "", "file", filepath.Join(t.TempDir(), "missing"))

	assert.ErrorIs(t, err, domain.ErrInput)
	assert.Equal(t, 1, h.session.closes)
	assert.Empty(t, h.session.frames)
}

func TestStdinCommand(t *testing.T) {
	h := newHarness()

	require.NoError(t, h.execute(t, "e0 c4 00 00 00\nb001000000\n", "--hid", "stdin"))

	assert.Equal(t, []domain.Frame{"e0c4000000"}, h.session.frames)
	assert.Equal(t, cliconfig.TransportHID, h.cfg.Transport())
	assert.Equal(t, 1, h.session.closes)
}

func TestStdinCommand_Exhausted(t *testing.T) {
	h := newHarness()

	err := h.execute(t, "", "stdin")

	assert.ErrorIs(t, err, domain.ErrInputExhausted)
	assert.Equal(t, 1, h.session.closes)
}

func TestLogCommand_Unsupported(t *testing.T) {
	h := newHarness()

	err := h.execute(t, "", "log", filepath.Join(t.TempDir(), "ledger-live.log"))

	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
	assert.Zero(t, h.opened)
	assert.Empty(t, h.session.frames)
}

func TestLogCommand_UnsupportedWithoutDevice(t *testing.T) {
	h := newHarness()
	h.openErr = errors.New("connection refused")

	err := h.execute(t, "", "log", filepath.Join(t.TempDir(), "ledger-live.log"))

	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
	assert.NotErrorIs(t, err, domain.ErrTransportFault)
	assert.Zero(t, h.opened)
}

func TestEnvironmentDoesNotLeak(t *testing.T) {
	h := newHarness()
	t.Setenv("APDUREPLAY_LOG_LEVEL", "chatty")
	t.Setenv("APDUREPLAY_CONNECT_RETRIES", "7")
	path := writeFrames(t, "e0c4000000\n")

	require.NoError(t, h.execute(t, "", "file", path))

	assert.Equal(t, cliconfig.DefaultLogLevel, h.cfg.LogLevel)
	assert.Zero(t, h.cfg.ConnectRetries)
}

func TestOpenFailure_IsTransportFault(t *testing.T) {
	h := newHarness()
	h.openErr = errors.New("connection refused")
	path := writeFrames(t, "e0c4000000\n")

	err := h.execute(t, "", "file", path)

	assert.ErrorIs(t, err, domain.ErrTransportFault)
	assert.Equal(t, 0, h.session.closes)
}

func TestInvalidFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"port out of range", []string{"--port", "0", "stdin"}},
		{"hid with serial", []string{"--hid", "--serial", "/dev/ttyACM0", "stdin"}},
		{"bad log level", []string{"--log-level", "chatty", "stdin"}},
		{"missing config file", []string{"--config", "/nonexistent/apdureplay.toml", "stdin"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			err := h.execute(t, "e0c4000000\n", tt.args...)
			assert.ErrorIs(t, err, domain.ErrInvalidConfig)
			assert.Zero(t, h.opened)
		})
	}
}

func TestUsageErrors(t *testing.T) {
	h := newHarness()

	assert.Error(t, h.execute(t, "", "file"))
	assert.Error(t, h.execute(t, "", "stdin", "extra"))
	assert.Zero(t, h.opened)
}

func TestConfigFile_FlagWins(t *testing.T) {
	h := newHarness()
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("server = \"speculos\"\nport = 40000\ncondition = \"apdu:\"\n"), 0o644))
	path := writeFrames(t, "apdu:e0c4000000\n")

	require.NoError(t, h.execute(t, "", "--config", cfgPath, "--port", "41000", "file", path))

	assert.Equal(t, "speculos", h.cfg.Server)
	assert.Equal(t, 41000, h.cfg.Port)
	assert.Equal(t, []domain.Frame{"e0c4000000"}, h.session.frames)
}
