package adapter

import (
	"context"

	"babsy-voucher-platform/internal/domain/model"
)

// Notifier delivers voucher lifecycle notifications to members. All calls
// are fire-and-forget from the use case's point of view: errors are logged
// by the caller and never propagated to the request path.
type Notifier interface {
	NotifyIssued(ctx context.Context, owner *model.User, v *model.Voucher, p *model.Partner) error
	NotifyRedeemed(ctx context.Context, owner *model.User, v *model.Voucher, p *model.Partner) error
}
