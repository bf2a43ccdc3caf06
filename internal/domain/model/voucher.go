package model

import (
	"time"
)

// VoucherState is the lifecycle state of a voucher as seen by readers.
// Only the redeemed flag is persisted; Expired is always computed against
// the clock at read time.
type VoucherState string

const (
	VoucherStateActive   VoucherState = "active"
	VoucherStateRedeemed VoucherState = "redeemed"
	VoucherStateExpired  VoucherState = "expired"
)

// Voucher represents a single-use partner discount voucher held by a member.
type Voucher struct {
	ID                 string
	Code               string // PREFIX-XXXX-XXXX-XXXX-XXXX, globally unique
	PartnerID          string // owning partner, the only one allowed to redeem
	OwnerID            string // member holding the voucher
	Title              string
	Description        string
	Value              *float64   // Pointer to allow for NULL
	DiscountPercentage *int       // Pointer to allow for NULL
	QRPayload          []byte     // derived JSON blob, see internal/qr
	IsRedeemed         bool
	RedeemedByID       *string    // Pointer to allow for NULL
	RedeemedAt         *time.Time // Pointer to allow for NULL
	CreatedAt          time.Time
	ExpiresAt          *time.Time // nil means the voucher never expires
}

// State computes the lifecycle state at the given instant.
func (v *Voucher) State(now time.Time) VoucherState {
	if v.IsRedeemed {
		return VoucherStateRedeemed
	}
	if v.IsExpired(now) {
		return VoucherStateExpired
	}
	return VoucherStateActive
}

// IsExpired reports whether the voucher's expiry has passed. Redeemed
// vouchers are terminal regardless of expiry.
func (v *Voucher) IsExpired(now time.Time) bool {
	return v.ExpiresAt != nil && v.ExpiresAt.Before(now)
}
