package ports

import "context"

// LineSource produces the raw text lines of a replay run, in order.
type LineSource interface {
	// Open prepares the source for reading.
	// Sources that cannot be read fail here with a domain error.
	Open(ctx context.Context) error

	// Next returns the next raw line without its line terminator.
	// Returns io.EOF when the sequence is exhausted.
	// Any other error is fatal to the run.
	Next(ctx context.Context) (string, error)

	// Close releases all resources held by the source.
	// It is safe to call Close before the sequence is exhausted.
	Close() error
}
