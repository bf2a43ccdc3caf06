package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"babsy-voucher-platform/internal/domain/ports/repository"
	"babsy-voucher-platform/internal/infra/metrics"
)

// ExpiryReminderWorker periodically counts vouchers approaching their expiry
// date. Expiry itself is computed at read time, so this worker never mutates
// anything; it feeds the dashboard gauge and the log.
type ExpiryReminderWorker struct {
	interval time.Duration
	window   time.Duration
	vouchers repository.VoucherRepository
	log      *zerolog.Logger
}

func NewExpiryReminderWorker(interval, window time.Duration, vouchers repository.VoucherRepository, logger *zerolog.Logger) *ExpiryReminderWorker {
	wLog := logger.With().Str("component", "ExpiryReminderWorker").Logger()
	return &ExpiryReminderWorker{
		interval: interval,
		window:   window,
		vouchers: vouchers,
		log:      &wLog,
	}
}

func (w *ExpiryReminderWorker) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting expiry reminder worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping expiry reminder worker")
			return ctx.Err()
		case <-ticker.C:
			expiring, err := w.vouchers.FindExpiring(ctx, repository.NoTX, w.window)
			if err != nil {
				w.log.Error().Err(err).Msg("expiry reminder scan failed")
				continue
			}
			metrics.SetVouchersExpiringSoon(len(expiring))
			if len(expiring) > 0 {
				w.log.Info().Int("count", len(expiring)).Dur("window", w.window).Msg("vouchers expiring soon")
			}
		}
	}
}
