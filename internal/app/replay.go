package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/bft-labs/apdureplay/internal/domain"
	"github.com/bft-labs/apdureplay/internal/ports"
)

// ReplayConfig contains configuration for the replay loop.
type ReplayConfig struct {
	// Condition is an optional line prefix. Lines starting with it have every
	// occurrence of it removed before hex extraction.
	Condition string
}

// Stats summarizes a replay run.
type Stats struct {
	Lines   int
	Frames  int
	Skipped int
}

// ExchangeEmitter is called after every exchange.
// seq is the 1-based ordinal of the frame within the run.
type ExchangeEmitter interface {
	OnExchange(seq int, frame domain.Frame, resp domain.Response, duration time.Duration)
	OnExchangeError(seq int, frame domain.Frame, err error)
}

// Replayer orchestrates the replay loop.
type Replayer struct {
	config  ReplayConfig
	logger  ports.Logger
	emitter ExchangeEmitter
}

// NewReplayer creates a new replayer. emitter may be nil.
func NewReplayer(config ReplayConfig, logger ports.Logger, emitter ExchangeEmitter) *Replayer {
	return &Replayer{
		config:  config,
		logger:  logger,
		emitter: emitter,
	}
}

// Run replays every frame produced by source through session.
//
// Run owns session: it is closed exactly once when Run returns, whatever the
// outcome. Lines are read, normalized and exchanged strictly in order; the
// next line is not read before the current exchange returns. Source errors
// are returned unchanged, exchange errors are wrapped with
// domain.ErrTransportFault. Nothing is retried.
func (r *Replayer) Run(ctx context.Context, source ports.LineSource, session ports.Session) (stats Stats, err error) {
	defer func() {
		if cerr := session.Close(); cerr != nil {
			r.logger.Warn("failed to close session", ports.Err(cerr))
			if err == nil {
				err = fmt.Errorf("%w: close session: %w", domain.ErrTransportFault, cerr)
			}
		}
	}()

	if err := source.Open(ctx); err != nil {
		return stats, err
	}
	defer func() {
		if cerr := source.Close(); cerr != nil {
			r.logger.Warn("failed to close source", ports.Err(cerr))
		}
	}()

	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		line, err := source.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return stats, err
		}
		stats.Lines++

		frame := domain.Normalize(line, r.config.Condition)
		if frame.Empty() {
			stats.Skipped++
			r.logger.Debug("skipped line", ports.Int("line", stats.Lines))
			continue
		}
		stats.Frames++

		if err := r.exchange(ctx, session, stats.Frames, frame); err != nil {
			return stats, err
		}
	}

	r.logger.Info("replay complete",
		ports.Int("lines", stats.Lines),
		ports.Int("frames", stats.Frames),
		ports.Int("skipped", stats.Skipped),
	)
	return stats, nil
}

// exchange submits one frame and waits for the device to answer.
func (r *Replayer) exchange(ctx context.Context, session ports.Session, seq int, frame domain.Frame) error {
	start := time.Now()
	resp, err := session.Exchange(ctx, frame)
	duration := time.Since(start)

	if err != nil {
		if r.emitter != nil {
			r.emitter.OnExchangeError(seq, frame, err)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: frame %d: %w", domain.ErrTransportFault, seq, err)
	}

	if r.emitter != nil {
		r.emitter.OnExchange(seq, frame, resp, duration)
	}
	return nil
}
