package notify

import (
	"context"

	"github.com/rs/zerolog"

	"babsy-voucher-platform/internal/domain/model"
	"babsy-voucher-platform/internal/domain/ports/adapter"
	"babsy-voucher-platform/internal/infra/worker"
)

var _ adapter.Notifier = (*AsyncNotifier)(nil)

// AsyncNotifier hands delivery off to the worker pool so callers return
// immediately. Failures are logged, never surfaced: a lost email must not
// fail an issue or redeem.
type AsyncNotifier struct {
	inner adapter.Notifier
	pool  *worker.Pool
	log   *zerolog.Logger
}

func NewAsyncNotifier(inner adapter.Notifier, pool *worker.Pool, logger *zerolog.Logger) *AsyncNotifier {
	return &AsyncNotifier{inner: inner, pool: pool, log: logger}
}

func (n *AsyncNotifier) NotifyIssued(_ context.Context, owner *model.User, v *model.Voucher, p *model.Partner) error {
	n.submit("issued", v.ID, func(ctx context.Context) error {
		return n.inner.NotifyIssued(ctx, owner, v, p)
	})
	return nil
}

func (n *AsyncNotifier) NotifyRedeemed(_ context.Context, owner *model.User, v *model.Voucher, p *model.Partner) error {
	n.submit("redeemed", v.ID, func(ctx context.Context) error {
		return n.inner.NotifyRedeemed(ctx, owner, v, p)
	})
	return nil
}

func (n *AsyncNotifier) submit(kind, voucherID string, task worker.Task) {
	if err := n.pool.Submit(task); err != nil {
		n.log.Warn().Str("kind", kind).Str("voucher_id", voucherID).Err(err).
			Msg("notification dropped")
	}
}
