package stream

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/bft-labs/apdureplay/internal/domain"
	"github.com/bft-labs/apdureplay/internal/ports"
)

// deadliner is implemented by streams that support I/O deadlines (net.Conn).
type deadliner interface {
	SetDeadline(t time.Time) error
}

// Session implements ports.Session over a byte stream.
type Session struct {
	rwc     io.ReadWriteCloser
	timeout time.Duration

	closeOnce sync.Once
	closeErr  error
}

// NewSession wraps rwc. A positive timeout bounds every exchange on streams
// that support deadlines.
func NewSession(rwc io.ReadWriteCloser, timeout time.Duration) *Session {
	return &Session{rwc: rwc, timeout: timeout}
}

// Exchange writes frame and waits for the response.
// Canceling ctx closes the stream so that a blocked read returns at once.
func (s *Session) Exchange(ctx context.Context, frame domain.Frame) (domain.Response, error) {
	apdu, err := frame.Bytes()
	if err != nil {
		return domain.Response{}, err
	}
	if err := ctx.Err(); err != nil {
		return domain.Response{}, err
	}

	stop := context.AfterFunc(ctx, func() { _ = s.Close() })
	defer stop()

	if d, ok := s.rwc.(deadliner); ok && s.timeout > 0 {
		if err := d.SetDeadline(time.Now().Add(s.timeout)); err != nil {
			return domain.Response{}, fmt.Errorf("set deadline: %w", err)
		}
	}

	if err := WriteAPDU(s.rwc, apdu); err != nil {
		return domain.Response{}, s.fail(ctx, fmt.Errorf("write apdu: %w", err))
	}
	resp, err := ReadResponse(s.rwc)
	if err != nil {
		return domain.Response{}, s.fail(ctx, err)
	}
	return resp, nil
}

// fail prefers the context error when the stream was closed by cancellation.
func (s *Session) fail(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}

// Close closes the underlying stream once; later calls return the first result.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.rwc.Close()
	})
	return s.closeErr
}

var _ ports.Session = (*Session)(nil)
