package app

import (
	"encoding/hex"
	"time"

	"github.com/bft-labs/apdureplay/internal/domain"
	"github.com/bft-labs/apdureplay/internal/ports"
)

// LogEmitter implements ExchangeEmitter by logging every command and
// response, the "=> command" / "<= response" trace of a debug transport.
type LogEmitter struct {
	logger ports.Logger
}

// NewLogEmitter creates an emitter writing to logger.
func NewLogEmitter(logger ports.Logger) *LogEmitter {
	return &LogEmitter{logger: logger}
}

// OnExchange logs the frame and the device answer.
func (e *LogEmitter) OnExchange(seq int, frame domain.Frame, resp domain.Response, duration time.Duration) {
	e.logger.Info("=> "+frame.String(), ports.Int("seq", seq))

	fields := []ports.Field{
		ports.Int("seq", seq),
		ports.SW(resp.SW),
		ports.Duration("took", duration),
	}
	if resp.OK() {
		e.logger.Info("<= "+hex.EncodeToString(resp.Data), fields...)
		return
	}
	e.logger.Warn("<= "+hex.EncodeToString(resp.Data), fields...)
}

// OnExchangeError logs a failed exchange.
func (e *LogEmitter) OnExchangeError(seq int, frame domain.Frame, err error) {
	e.logger.Error("exchange failed",
		ports.Int("seq", seq),
		ports.String("frame", frame.String()),
		ports.Err(err),
	)
}

var _ ExchangeEmitter = (*LogEmitter)(nil)
