package notify

import (
	"context"

	"babsy-voucher-platform/internal/domain/model"
	"babsy-voucher-platform/internal/domain/ports/adapter"
)

var _ adapter.Notifier = (*NoopNotifier)(nil)

// NoopNotifier is used when SMTP is not configured (dev mode, tests).
type NoopNotifier struct{}

func (NoopNotifier) NotifyIssued(context.Context, *model.User, *model.Voucher, *model.Partner) error {
	return nil
}

func (NoopNotifier) NotifyRedeemed(context.Context, *model.User, *model.Voucher, *model.Partner) error {
	return nil
}
