package ports

import (
	"context"

	"github.com/bft-labs/apdureplay/internal/domain"
)

// Session is an open connection to a device.
// Implementations handle device discovery, wire framing and timeouts.
type Session interface {
	// Exchange submits one frame and blocks until the device answers.
	// Odd-length frames are rejected with domain.ErrOddLengthFrame.
	// Canceling ctx abandons the exchange.
	Exchange(ctx context.Context, frame domain.Frame) (domain.Response, error)

	// Close releases the connection. It is safe to call more than once.
	Close() error
}
