package repository

import (
	"context"
	"time"

	"babsy-voucher-platform/internal/domain/model"
)

// VoucherFilter narrows voucher listings. Nil fields mean "no constraint".
type VoucherFilter struct {
	IsRedeemed *bool
}

// VoucherCounts is a consistent snapshot of per-partner (or global) totals.
// Active means not redeemed; expiry is a read-time concept and does not
// remove a voucher from the active count.
type VoucherCounts struct {
	Total    int
	Active   int
	Redeemed int
}

// VoucherRepository is the port for voucher persistence.
type VoucherRepository interface {
	// Save inserts a new voucher. The code column carries a unique
	// constraint; a collision surfaces as domain.ErrAlreadyExists.
	Save(ctx context.Context, tx Tx, v *model.Voucher) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Voucher, error)
	FindByCode(ctx context.Context, tx Tx, code string) (*model.Voucher, error)
	// ListByOwner returns the member's vouchers, newest first.
	ListByOwner(ctx context.Context, tx Tx, ownerID string, filter VoucherFilter) ([]*model.Voucher, error)
	// Redeem atomically flips the voucher to redeemed via a conditional
	// update. Given two concurrent calls for the same id exactly one
	// succeeds; the loser gets domain.ErrAlreadyRedeemed. Expiry and
	// partner ownership are enforced inside the same statement.
	Redeem(ctx context.Context, tx Tx, id, redeemerID, partnerID string, at time.Time) (*model.Voucher, error)
	// CountByPartner counts vouchers for one partner, or globally when
	// partnerID is nil. All three counts come from a single statement.
	CountByPartner(ctx context.Context, tx Tx, partnerID *string) (VoucherCounts, error)
	// FindExpiring returns unredeemed vouchers whose expiry falls within
	// the given window from now.
	FindExpiring(ctx context.Context, tx Tx, within time.Duration) ([]*model.Voucher, error)
}
