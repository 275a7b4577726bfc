package fs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/bft-labs/apdureplay/internal/domain"
	"github.com/bft-labs/apdureplay/internal/ports"
)

// InteractiveSource implements ports.LineSource by reading exactly one line
// from an interactive stream such as stdin.
type InteractiveSource struct {
	in   io.Reader
	done bool
}

// NewInteractiveSource creates a source reading a single line from in.
func NewInteractiveSource(in io.Reader) *InteractiveSource {
	return &InteractiveSource{in: in}
}

// Open is a no-op; the stream is owned by the caller.
func (s *InteractiveSource) Open(ctx context.Context) error {
	return nil
}

type readResult struct {
	line string
	err  error
}

// Next blocks until a line arrives. The first call returns that line; later
// calls return io.EOF. A stream that closes before any input fails with
// domain.ErrInputExhausted. Canceling ctx abandons the read immediately.
func (s *InteractiveSource) Next(ctx context.Context) (string, error) {
	if s.done {
		return "", io.EOF
	}
	s.done = true

	// the reader goroutine stays blocked until the stream yields; the
	// caller is not held up by it
	ch := make(chan readResult, 1)
	go func() {
		line, err := bufio.NewReader(s.in).ReadString('\n')
		ch <- readResult{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.err == nil {
			return trimEOL(res.line), nil
		}
		if !errors.Is(res.err, io.EOF) {
			return "", fmt.Errorf("%w: read input: %w", domain.ErrInput, res.err)
		}
		if res.line == "" {
			return "", domain.ErrInputExhausted
		}
		return trimEOL(res.line), nil
	}
}

// Close is a no-op; the stream is owned by the caller.
func (s *InteractiveSource) Close() error {
	return nil
}

var _ ports.LineSource = (*InteractiveSource)(nil)
