package app

import (
	"errors"
	"testing"
	"time"

	"github.com/bft-labs/apdureplay/internal/domain"
	"github.com/bft-labs/apdureplay/internal/ports"
)

type logEntry struct {
	level  string
	msg    string
	fields map[string]interface{}
}

// captureLogger records log calls for assertions.
type captureLogger struct {
	entries []logEntry
}

func (c *captureLogger) add(level, msg string, fields []ports.Field) {
	m := make(map[string]interface{}, len(fields))
	for _, f := range fields {
		m[f.Key] = f.Value
	}
	c.entries = append(c.entries, logEntry{level: level, msg: msg, fields: m})
}

func (c *captureLogger) Debug(msg string, fields ...ports.Field) { c.add("debug", msg, fields) }
func (c *captureLogger) Info(msg string, fields ...ports.Field)  { c.add("info", msg, fields) }
func (c *captureLogger) Warn(msg string, fields ...ports.Field)  { c.add("warn", msg, fields) }
func (c *captureLogger) Error(msg string, fields ...ports.Field) { c.add("error", msg, fields) }

func TestLogEmitter_OnExchange(t *testing.T) {
	tests := []struct {
		name      string
		resp      domain.Response
		wantLevel string
		wantMsg   string
		wantSW    string
	}{
		{"success", domain.Response{Data: []byte{0x01, 0x02}, SW: 0x9000}, "info", "<= 0102", "9000"},
		{"device error", domain.Response{SW: 0x6d00}, "warn", "<= ", "6d00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := &captureLogger{}
			NewLogEmitter(logger).OnExchange(3, "e0c4000000", tt.resp, time.Millisecond)

			if len(logger.entries) != 2 {
				t.Fatalf("got %d log entries, want 2", len(logger.entries))
			}
			cmd, rsp := logger.entries[0], logger.entries[1]
			if cmd.msg != "=> e0c4000000" || cmd.fields["seq"] != 3 {
				t.Errorf("command entry = %+v", cmd)
			}
			if rsp.level != tt.wantLevel || rsp.msg != tt.wantMsg {
				t.Errorf("response entry = %s %q, want %s %q", rsp.level, rsp.msg, tt.wantLevel, tt.wantMsg)
			}
			if rsp.fields["sw"] != tt.wantSW {
				t.Errorf("sw = %v, want %s", rsp.fields["sw"], tt.wantSW)
			}
		})
	}
}

func TestLogEmitter_OnExchangeError(t *testing.T) {
	logger := &captureLogger{}
	err := errors.New("timeout")

	NewLogEmitter(logger).OnExchangeError(1, "00", err)

	if len(logger.entries) != 1 {
		t.Fatalf("got %d log entries, want 1", len(logger.entries))
	}
	e := logger.entries[0]
	if e.level != "error" || e.fields["error"] != err || e.fields["frame"] != "00" {
		t.Errorf("error entry = %+v", e)
	}
}
