package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"babsy-voucher-platform/internal/domain"
	"babsy-voucher-platform/internal/domain/model"
	"babsy-voucher-platform/internal/domain/ports/repository"
)

// Compile-time check
var _ PartnerUseCase = (*partnerUC)(nil)

// UpdatePartnerParams carries an employee's partner update. Nil fields are
// left unchanged.
type UpdatePartnerParams struct {
	Name        *string
	Description *string
	Category    *string
	Address     *string
	IsActive    *bool
}

type PartnerUseCase interface {
	Get(ctx context.Context, id string) (*model.Partner, error)
	ListActive(ctx context.Context) ([]*model.Partner, error)
	Update(ctx context.Context, id string, params UpdatePartnerParams) (*model.Partner, error)
}

type partnerUC struct {
	partners repository.PartnerRepository

	log *zerolog.Logger
}

func NewPartnerUseCase(partners repository.PartnerRepository, logger *zerolog.Logger) *partnerUC {
	ucLog := logger.With().Str("component", "PartnerUC").Logger()
	return &partnerUC{partners: partners, log: &ucLog}
}

func (u *partnerUC) Get(ctx context.Context, id string) (*model.Partner, error) {
	p, err := u.partners.FindByID(ctx, repository.NoTX, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrPartnerNotFound
		}
		return nil, err
	}
	return p, nil
}

func (u *partnerUC) ListActive(ctx context.Context) ([]*model.Partner, error) {
	return u.partners.ListActive(ctx, repository.NoTX)
}

func (u *partnerUC) Update(ctx context.Context, id string, params UpdatePartnerParams) (*model.Partner, error) {
	p, err := u.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if params.Name != nil {
		p.Name = *params.Name
	}
	if params.Description != nil {
		p.Description = *params.Description
	}
	if params.Category != nil {
		p.Category = *params.Category
	}
	if params.Address != nil {
		p.Address = *params.Address
	}
	if params.IsActive != nil {
		p.IsActive = *params.IsActive
	}
	p.UpdatedAt = time.Now()
	if err := u.partners.Save(ctx, repository.NoTX, p); err != nil {
		return nil, err
	}
	u.log.Info().Str("partner_id", id).Msg("partner updated")
	return p, nil
}
