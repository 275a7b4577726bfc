package apdureplay

import (
	"github.com/rs/zerolog"

	logAdapter "github.com/bft-labs/apdureplay/internal/adapters/log"
	"github.com/bft-labs/apdureplay/internal/app"
)

// Option configures optional behavior of Replay.
type Option func(*options)

type options struct {
	condition string
	logger    Logger
	emitter   ExchangeEmitter
	trace     bool
}

func defaultOptions() options {
	return options{
		logger: logAdapter.NoopLogger{},
		trace:  true,
	}
}

// WithCondition strips marker from lines that start with it.
func WithCondition(marker string) Option {
	return func(o *options) {
		o.condition = marker
	}
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithZerolog logs through an existing zerolog.Logger.
func WithZerolog(logger zerolog.Logger) Option {
	return WithLogger(logAdapter.NewZerologAdapterWithLogger(logger))
}

// WithEmitter receives every exchange instead of the default
// "=> command" / "<= response" trace on the logger.
func WithEmitter(emitter ExchangeEmitter) Option {
	return func(o *options) {
		o.emitter = emitter
	}
}

// WithoutTrace disables the default exchange trace.
func WithoutTrace() Option {
	return func(o *options) {
		o.trace = false
	}
}

func (o options) exchangeEmitter() app.ExchangeEmitter {
	switch {
	case o.emitter != nil:
		return o.emitter
	case o.trace:
		return app.NewLogEmitter(o.logger)
	default:
		return nil
	}
}
