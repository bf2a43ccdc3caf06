package usecase

import (
	"context"
	"math"

	"github.com/rs/zerolog"

	"babsy-voucher-platform/internal/domain/ports/repository"
)

// Compile-time check
var _ StatsUseCase = (*statsUC)(nil)

// VoucherStats is the derived read-only view over the store's counts.
// Active means not redeemed; an expired-but-unredeemed voucher still counts
// as active here, matching the store's snapshot semantics.
type VoucherStats struct {
	Total          int     `json:"total"`
	Active         int     `json:"active"`
	Redeemed       int     `json:"redeemed"`
	RedemptionRate float64 `json:"redemptionRate"` // percentage, 2 decimals
}

type StatsUseCase interface {
	// Overview returns counts scoped to one partner, or globally when
	// partnerID is nil. All counts reflect a single store snapshot.
	Overview(ctx context.Context, partnerID *string) (VoucherStats, error)
}

type statsUC struct {
	vouchers repository.VoucherRepository

	log *zerolog.Logger
}

func NewStatsUseCase(vouchers repository.VoucherRepository, logger *zerolog.Logger) *statsUC {
	ucLog := logger.With().Str("component", "StatsUC").Logger()
	return &statsUC{vouchers: vouchers, log: &ucLog}
}

func (s *statsUC) Overview(ctx context.Context, partnerID *string) (VoucherStats, error) {
	counts, err := s.vouchers.CountByPartner(ctx, repository.NoTX, partnerID)
	if err != nil {
		return VoucherStats{}, err
	}

	var rate float64
	if counts.Total > 0 {
		rate = math.Round(float64(counts.Redeemed)/float64(counts.Total)*100*100) / 100
	}
	return VoucherStats{
		Total:          counts.Total,
		Active:         counts.Active,
		Redeemed:       counts.Redeemed,
		RedemptionRate: rate,
	}, nil
}
