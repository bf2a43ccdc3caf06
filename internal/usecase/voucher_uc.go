package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"babsy-voucher-platform/internal/config"
	"babsy-voucher-platform/internal/domain"
	"babsy-voucher-platform/internal/domain/model"
	"babsy-voucher-platform/internal/domain/ports/adapter"
	"babsy-voucher-platform/internal/domain/ports/repository"
	"babsy-voucher-platform/internal/infra/metrics"
	"babsy-voucher-platform/internal/qr"
)

// Compile-time check
var _ VoucherUseCase = (*voucherUC)(nil)

// IssueParams carries the member's voucher request. Description defaults to
// the partner's description when empty; ExpiresAt is validated at the HTTP
// boundary (must be in the future when set).
type IssueParams struct {
	OwnerID            string
	PartnerID          string
	Description        string
	Value              *float64
	DiscountPercentage *int
	ExpiresAt          *time.Time
}

// Rejection reasons reported by ValidateQR.
const (
	ReasonMalformed       = "malformed"
	ReasonInvalidType     = "invalid_type"
	ReasonNotFound        = "not_found"
	ReasonAlreadyRedeemed = "already_redeemed"
	ReasonExpired         = "expired"
	ReasonWrongPartner    = "wrong_partner"
)

// ValidationResult is the dry-run outcome for scanner input. ValidateQR
// never surfaces domain errors; bad payloads land here as Valid=false.
type ValidationResult struct {
	Valid   bool
	Reason  string
	Voucher *model.Voucher
}

type VoucherUseCase interface {
	Issue(ctx context.Context, params IssueParams) (*model.Voucher, error)
	// Lookup fetches one voucher. A non-nil requestingOwnerID restricts the
	// result to that member's own vouchers; partners and employees pass nil.
	Lookup(ctx context.Context, id string, requestingOwnerID *string) (*model.Voucher, error)
	ListByOwner(ctx context.Context, ownerID string, filter repository.VoucherFilter) ([]*model.Voucher, error)
	Redeem(ctx context.Context, id, redeemerID, partnerID string) (*model.Voucher, error)
	RedeemByCode(ctx context.Context, code, redeemerID, partnerID string) (*model.Voucher, error)
	ValidateQR(ctx context.Context, payload []byte, partnerID string) (ValidationResult, error)
}

type voucherUC struct {
	vouchers repository.VoucherRepository
	partners repository.PartnerRepository
	users    repository.UserRepository
	auditLog repository.AuditLogRepository
	notifier adapter.Notifier
	cfg      config.VoucherConfig

	log *zerolog.Logger
}

func NewVoucherUseCase(
	vouchers repository.VoucherRepository,
	partners repository.PartnerRepository,
	users repository.UserRepository,
	auditLog repository.AuditLogRepository,
	notifier adapter.Notifier,
	cfg config.VoucherConfig,
	logger *zerolog.Logger,
) *voucherUC {
	ucLog := logger.With().Str("component", "VoucherUC").Logger()
	return &voucherUC{
		vouchers: vouchers,
		partners: partners,
		users:    users,
		auditLog: auditLog,
		notifier: notifier,
		cfg:      cfg,
		log:      &ucLog,
	}
}

func (u *voucherUC) Issue(ctx context.Context, params IssueParams) (*model.Voucher, error) {
	if params.OwnerID == "" || params.PartnerID == "" {
		return nil, domain.ErrInvalidArgument
	}

	partner, err := u.partners.FindByID(ctx, repository.NoTX, params.PartnerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrPartnerNotFound
		}
		return nil, err
	}
	if !partner.IsActive {
		return nil, domain.ErrPartnerInactive
	}

	code, err := u.uniqueCode(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	payload, err := qr.Encode(code, partner.ID, now)
	if err != nil {
		return nil, err
	}

	description := params.Description
	if description == "" {
		description = partner.Description
	}

	v := &model.Voucher{
		ID:                 uuid.NewString(),
		Code:               code,
		PartnerID:          partner.ID,
		OwnerID:            params.OwnerID,
		Title:              partner.Name,
		Description:        description,
		Value:              params.Value,
		DiscountPercentage: params.DiscountPercentage,
		QRPayload:          payload,
		CreatedAt:          now,
		ExpiresAt:          params.ExpiresAt,
	}
	if err := u.vouchers.Save(ctx, repository.NoTX, v); err != nil {
		return nil, err
	}

	u.audit(ctx, v.ID, model.AuditActionCreated, params.OwnerID, map[string]any{
		"code":      v.Code,
		"partnerId": v.PartnerID,
	})
	u.notifyIssued(ctx, v, partner)
	metrics.IncVouchersIssued()

	u.log.Info().Str("code", v.Code).Str("owner_id", v.OwnerID).Str("partner_id", v.PartnerID).Msg("voucher issued")
	return v, nil
}

// uniqueCode runs the bounded check-generate-retry loop against the store.
func (u *voucherUC) uniqueCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < u.cfg.MaxCodeAttempts; attempt++ {
		code, err := generateVoucherCode(u.cfg.CodePrefix, u.cfg.CodeSegments, u.cfg.CodeSegmentLength)
		if err != nil {
			return "", err
		}
		_, err = u.vouchers.FindByCode(ctx, repository.NoTX, code)
		if errors.Is(err, domain.ErrNotFound) {
			return code, nil
		}
		if err != nil {
			return "", err
		}
		// collision, try again
	}
	u.log.Error().Int("attempts", u.cfg.MaxCodeAttempts).Msg("voucher code space exhausted")
	return "", domain.ErrCodeSpaceExhausted
}

func (u *voucherUC) Lookup(ctx context.Context, id string, requestingOwnerID *string) (*model.Voucher, error) {
	v, err := u.vouchers.FindByID(ctx, repository.NoTX, id)
	if err != nil {
		return nil, err
	}
	if requestingOwnerID != nil && v.OwnerID != *requestingOwnerID {
		return nil, domain.ErrUnauthorized
	}
	return v, nil
}

func (u *voucherUC) ListByOwner(ctx context.Context, ownerID string, filter repository.VoucherFilter) ([]*model.Voucher, error) {
	if ownerID == "" {
		return nil, domain.ErrInvalidArgument
	}
	return u.vouchers.ListByOwner(ctx, repository.NoTX, ownerID, filter)
}

func (u *voucherUC) Redeem(ctx context.Context, id, redeemerID, partnerID string) (*model.Voucher, error) {
	start := time.Now()

	v, err := u.vouchers.FindByID(ctx, repository.NoTX, id)
	if err != nil {
		metrics.IncRedemptionFailure(ReasonNotFound)
		return nil, err
	}
	if err := u.checkRedeemable(v, partnerID, start); err != nil {
		return nil, err
	}

	// The conditional update is authoritative: a concurrent winner makes
	// this call fail with ErrAlreadyRedeemed even though the pre-checks
	// above passed.
	updated, err := u.vouchers.Redeem(ctx, repository.NoTX, v.ID, redeemerID, partnerID, time.Now())
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyRedeemed) {
			metrics.IncRedemptionFailure(ReasonAlreadyRedeemed)
		}
		return nil, err
	}

	u.audit(ctx, updated.ID, model.AuditActionRedeemed, redeemerID, map[string]any{
		"code":      updated.Code,
		"partnerId": partnerID,
	})
	u.notifyRedeemed(ctx, updated)
	metrics.IncVouchersRedeemed()
	metrics.ObserveRedeemLatencyMs(float64(time.Since(start).Milliseconds()))

	u.log.Info().Str("code", updated.Code).Str("redeemer_id", redeemerID).Msg("voucher redeemed")
	return updated, nil
}

func (u *voucherUC) RedeemByCode(ctx context.Context, code, redeemerID, partnerID string) (*model.Voucher, error) {
	v, err := u.vouchers.FindByCode(ctx, repository.NoTX, code)
	if err != nil {
		metrics.IncRedemptionFailure(ReasonNotFound)
		return nil, err
	}
	return u.Redeem(ctx, v.ID, redeemerID, partnerID)
}

// checkRedeemable performs the pre-flight checks shared by Redeem and
// ValidateQR. Races past these checks are caught by the store's conditional
// update.
func (u *voucherUC) checkRedeemable(v *model.Voucher, partnerID string, now time.Time) error {
	if v.IsRedeemed {
		metrics.IncRedemptionFailure(ReasonAlreadyRedeemed)
		return domain.ErrAlreadyRedeemed
	}
	if v.IsExpired(now) {
		metrics.IncRedemptionFailure(ReasonExpired)
		return domain.ErrVoucherExpired
	}
	if v.PartnerID != partnerID {
		metrics.IncRedemptionFailure(ReasonWrongPartner)
		return domain.ErrWrongPartner
	}
	return nil
}

func (u *voucherUC) ValidateQR(ctx context.Context, payload []byte, partnerID string) (ValidationResult, error) {
	p, err := qr.Decode(payload)
	if err != nil {
		reason := ReasonMalformed
		if errors.Is(err, domain.ErrInvalidPayloadType) {
			reason = ReasonInvalidType
		}
		metrics.IncQRValidation(reason)
		return ValidationResult{Valid: false, Reason: reason}, nil
	}

	v, err := u.vouchers.FindByCode(ctx, repository.NoTX, p.Code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.IncQRValidation(ReasonNotFound)
			return ValidationResult{Valid: false, Reason: ReasonNotFound}, nil
		}
		return ValidationResult{}, err
	}

	now := time.Now()
	switch {
	case v.IsRedeemed:
		metrics.IncQRValidation(ReasonAlreadyRedeemed)
		return ValidationResult{Valid: false, Reason: ReasonAlreadyRedeemed}, nil
	case v.IsExpired(now):
		metrics.IncQRValidation(ReasonExpired)
		return ValidationResult{Valid: false, Reason: ReasonExpired}, nil
	case v.PartnerID != partnerID:
		metrics.IncQRValidation(ReasonWrongPartner)
		return ValidationResult{Valid: false, Reason: ReasonWrongPartner}, nil
	}

	metrics.IncQRValidation("valid")
	return ValidationResult{Valid: true, Voucher: v}, nil
}

// audit appends a lifecycle entry. Failures are logged and swallowed: the
// audit trail is observability, not a correctness dependency.
func (u *voucherUC) audit(ctx context.Context, voucherID, action, actorID string, changes map[string]any) {
	e := &model.AuditEntry{
		EntityType: "voucher",
		EntityID:   voucherID,
		Action:     action,
		ActorID:    actorID,
		Changes:    changes,
		CreatedAt:  time.Now(),
	}
	if err := u.auditLog.Append(ctx, repository.NoTX, e); err != nil {
		u.log.Error().Err(err).Str("voucher_id", voucherID).Str("action", action).Msg("audit append failed")
	}
}

func (u *voucherUC) notifyIssued(ctx context.Context, v *model.Voucher, p *model.Partner) {
	owner, err := u.users.FindByID(ctx, repository.NoTX, v.OwnerID)
	if err != nil {
		u.log.Warn().Err(err).Str("owner_id", v.OwnerID).Msg("skipping issue notification, owner lookup failed")
		return
	}
	if err := u.notifier.NotifyIssued(ctx, owner, v, p); err != nil {
		u.log.Warn().Err(err).Str("code", v.Code).Msg("issue notification failed")
	}
}

func (u *voucherUC) notifyRedeemed(ctx context.Context, v *model.Voucher) {
	owner, err := u.users.FindByID(ctx, repository.NoTX, v.OwnerID)
	if err != nil {
		u.log.Warn().Err(err).Str("owner_id", v.OwnerID).Msg("skipping redeem notification, owner lookup failed")
		return
	}
	partner, err := u.partners.FindByID(ctx, repository.NoTX, v.PartnerID)
	if err != nil {
		u.log.Warn().Err(err).Str("partner_id", v.PartnerID).Msg("skipping redeem notification, partner lookup failed")
		return
	}
	if err := u.notifier.NotifyRedeemed(ctx, owner, v, partner); err != nil {
		u.log.Warn().Err(err).Str("code", v.Code).Msg("redeem notification failed")
	}
}
