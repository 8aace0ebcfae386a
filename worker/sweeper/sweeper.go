package sweeper

import (
	"context"
	"log/slog"
	"time"

	"github.com/tandalabs/tanda-gateway/core"
)

// Sweeper prunes expired verification records so an unverified phone never
// reads as verified after the window lapses.
type Sweeper struct {
	verifications core.VerificationStore
	logger        *slog.Logger
}

func New(verifications core.VerificationStore, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		verifications: verifications,
		logger:        logger.With("worker", "sweeper"),
	}
}

func (w *Sweeper) Run(ctx context.Context) error {
	w.logger.Info("sweeper start")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Minute):
			_ = w.run(ctx)
		}
	}
}

func (w *Sweeper) run(ctx context.Context) error {
	cutoff := time.Now().Add(-core.VerificationTTL)

	n, err := w.verifications.DeleteExpired(ctx, cutoff)
	if err != nil {
		w.logger.Error("verifications.DeleteExpired", "err", err)
		return err
	}

	if n > 0 {
		w.logger.Info("swept expired verifications", "count", n)
	}

	return nil
}
