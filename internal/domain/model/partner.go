package model

import (
	"time"

	"babsy-voucher-platform/internal/domain"
)

// Partner is a business participating in the discount program. Vouchers are
// always bound to exactly one partner and can only be redeemed by it.
type Partner struct {
	ID          string
	Name        string
	Description string // default description for vouchers issued against this partner
	Category    string
	Address     string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewPartner creates an active partner.
func NewPartner(id, name, description, category string) (*Partner, error) {
	if name == "" {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &Partner{
		ID:          id,
		Name:        name,
		Description: description,
		Category:    category,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}
