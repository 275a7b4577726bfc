package stream

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/bft-labs/apdureplay/internal/ports"
)

// DialOptions configures DialTCP.
type DialOptions struct {
	// Timeout bounds each connection attempt and each exchange.
	Timeout time.Duration

	// Retries is the number of additional connection attempts after the
	// first one fails. Exchanges are never retried.
	Retries int

	Logger ports.Logger
}

// DialTCP connects to an APDU server such as the Speculos emulator.
func DialTCP(ctx context.Context, host string, port int, opts DialOptions) (*Session, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	dialer := net.Dialer{Timeout: opts.Timeout}
	back := newBackoff(DefaultBackoffInitial, DefaultBackoffMax)

	for attempt := 0; ; attempt++ {
		conn, err := dialer.DialContext(ctx, "tcp", addr)
		if err == nil {
			if opts.Logger != nil {
				opts.Logger.Info("connected", ports.String("addr", addr))
			}
			return NewSession(conn, opts.Timeout), nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("dial %s: %w", addr, ctxErr)
		}
		if attempt >= opts.Retries {
			return nil, fmt.Errorf("dial %s: %w", addr, err)
		}

		if opts.Logger != nil {
			opts.Logger.Warn("connect failed, retrying",
				ports.String("addr", addr),
				ports.Int("attempt", attempt+1),
				ports.Duration("backoff", back.Current()),
				ports.Err(err),
			)
		}
		if werr := back.Wait(ctx); werr != nil {
			return nil, fmt.Errorf("dial %s: %w", addr, werr)
		}
	}
}
