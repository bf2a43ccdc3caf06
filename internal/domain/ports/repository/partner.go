package repository

import (
	"context"

	"babsy-voucher-platform/internal/domain/model"
)

// PartnerRepository is the port for the partner directory.
type PartnerRepository interface {
	// Save creates or updates a partner.
	Save(ctx context.Context, tx Tx, p *model.Partner) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Partner, error)
	// ListActive returns active partners ordered by name.
	ListActive(ctx context.Context, tx Tx) ([]*model.Partner, error)
}
