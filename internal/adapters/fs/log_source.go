package fs

import (
	"context"
	"fmt"

	"github.com/bft-labs/apdureplay/internal/domain"
	"github.com/bft-labs/apdureplay/internal/ports"
)

// LogSource stands for Ledger Live log files, which cannot be parsed.
// Every call fails with domain.ErrUnsupportedFormat without touching the file.
type LogSource struct {
	path string
}

// NewLogSource creates a log source for path.
func NewLogSource(path string) *LogSource {
	return &LogSource{path: path}
}

// Open always fails with domain.ErrUnsupportedFormat.
func (s *LogSource) Open(ctx context.Context) error {
	return s.unsupported()
}

// Next always fails with domain.ErrUnsupportedFormat.
func (s *LogSource) Next(ctx context.Context) (string, error) {
	return "", s.unsupported()
}

// Close is a no-op; Open never acquires anything.
func (s *LogSource) Close() error {
	return nil
}

func (s *LogSource) unsupported() error {
	return fmt.Errorf("%w: Ledger Live log parser is not available (%s)", domain.ErrUnsupportedFormat, s.path)
}

var _ ports.LineSource = (*LogSource)(nil)
