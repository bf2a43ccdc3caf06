//go:build integration

package postgres

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"babsy-voucher-platform/internal/domain"
	"babsy-voucher-platform/internal/domain/model"
	"babsy-voucher-platform/internal/domain/ports/repository"
)

func seedTestPartner(t *testing.T, ctx context.Context) *model.Partner {
	t.Helper()
	partnerRepo := NewPartnerRepo(testPool)
	p, err := model.NewPartner(uuid.NewString(), "Zoo Zürich", "Free child admission", "leisure")
	if err != nil {
		t.Fatalf("new partner: %v", err)
	}
	if err := partnerRepo.Save(ctx, nil, p); err != nil {
		t.Fatalf("save partner: %v", err)
	}
	return p
}

func newTestVoucher(partnerID string, expiresAt *time.Time) *model.Voucher {
	return &model.Voucher{
		ID:        uuid.NewString(),
		Code:      "BABSY-" + uuid.NewString()[:18],
		PartnerID: partnerID,
		OwnerID:   uuid.NewString(),
		Title:     "Zoo Zürich",
		CreatedAt: time.Now(),
		ExpiresAt: expiresAt,
	}
}

func TestVoucherRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	ctx := context.Background()
	repo := NewVoucherRepo(testPool)

	t.Run("should save and find a voucher by id and code", func(t *testing.T) {
		cleanup(t)
		partner := seedTestPartner(t, ctx)

		v := newTestVoucher(partner.ID, nil)
		v.QRPayload = []byte(`{"type":"BABSY_VOUCHER"}`)
		if err := repo.Save(ctx, nil, v); err != nil {
			t.Fatalf("save voucher: %v", err)
		}

		byID, err := repo.FindByID(ctx, nil, v.ID)
		if err != nil {
			t.Fatalf("FindByID failed: %v", err)
		}
		if byID.Code != v.Code || string(byID.QRPayload) != string(v.QRPayload) {
			t.Errorf("round-trip mismatch: %+v", byID)
		}

		byCode, err := repo.FindByCode(ctx, nil, v.Code)
		if err != nil {
			t.Fatalf("FindByCode failed: %v", err)
		}
		if byCode.ID != v.ID {
			t.Errorf("expected voucher %s, got %s", v.ID, byCode.ID)
		}
	})

	t.Run("should reject a duplicate code", func(t *testing.T) {
		cleanup(t)
		partner := seedTestPartner(t, ctx)

		v := newTestVoucher(partner.ID, nil)
		if err := repo.Save(ctx, nil, v); err != nil {
			t.Fatalf("save voucher: %v", err)
		}

		dup := newTestVoucher(partner.ID, nil)
		dup.Code = v.Code
		if err := repo.Save(ctx, nil, dup); !errors.Is(err, domain.ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got: %v", err)
		}
	})

	t.Run("should list an owner's vouchers newest first with the redeemed filter", func(t *testing.T) {
		cleanup(t)
		partner := seedTestPartner(t, ctx)

		ownerID := uuid.NewString()
		older := newTestVoucher(partner.ID, nil)
		older.OwnerID = ownerID
		older.CreatedAt = time.Now().Add(-time.Hour)
		newer := newTestVoucher(partner.ID, nil)
		newer.OwnerID = ownerID
		for _, v := range []*model.Voucher{older, newer} {
			if err := repo.Save(ctx, nil, v); err != nil {
				t.Fatalf("save voucher: %v", err)
			}
		}
		if _, err := repo.Redeem(ctx, nil, older.ID, uuid.NewString(), partner.ID, time.Now()); err != nil {
			t.Fatalf("redeem: %v", err)
		}

		all, err := repo.ListByOwner(ctx, nil, ownerID, repository.VoucherFilter{})
		if err != nil {
			t.Fatalf("ListByOwner failed: %v", err)
		}
		if len(all) != 2 || all[0].ID != newer.ID {
			t.Errorf("expected [newer, older], got %d entries starting with %v", len(all), all[0].ID)
		}

		unredeemed := false
		open, err := repo.ListByOwner(ctx, nil, ownerID, repository.VoucherFilter{IsRedeemed: &unredeemed})
		if err != nil {
			t.Fatalf("filtered ListByOwner failed: %v", err)
		}
		if len(open) != 1 || open[0].ID != newer.ID {
			t.Errorf("expected only the unredeemed voucher, got %d entries", len(open))
		}
	})

	t.Run("should redeem exactly once", func(t *testing.T) {
		cleanup(t)
		partner := seedTestPartner(t, ctx)

		v := newTestVoucher(partner.ID, nil)
		if err := repo.Save(ctx, nil, v); err != nil {
			t.Fatalf("save voucher: %v", err)
		}

		staffID := uuid.NewString()
		redeemed, err := repo.Redeem(ctx, nil, v.ID, staffID, partner.ID, time.Now())
		if err != nil {
			t.Fatalf("redeem failed: %v", err)
		}
		if !redeemed.IsRedeemed || redeemed.RedeemedByID == nil || *redeemed.RedeemedByID != staffID {
			t.Errorf("redeemed voucher not recorded correctly: %+v", redeemed)
		}

		if _, err := repo.Redeem(ctx, nil, v.ID, staffID, partner.ID, time.Now()); !errors.Is(err, domain.ErrAlreadyRedeemed) {
			t.Fatalf("expected ErrAlreadyRedeemed, got: %v", err)
		}
	})

	t.Run("should let exactly one concurrent redemption win", func(t *testing.T) {
		cleanup(t)
		partner := seedTestPartner(t, ctx)

		v := newTestVoucher(partner.ID, nil)
		if err := repo.Save(ctx, nil, v); err != nil {
			t.Fatalf("save voucher: %v", err)
		}

		const n = 8
		var wg sync.WaitGroup
		errs := make([]error, n)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = repo.Redeem(ctx, nil, v.ID, uuid.NewString(), partner.ID, time.Now())
			}(i)
		}
		wg.Wait()

		wins := 0
		for _, err := range errs {
			switch {
			case err == nil:
				wins++
			case errors.Is(err, domain.ErrAlreadyRedeemed):
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}
		if wins != 1 {
			t.Errorf("expected exactly one winner, got %d", wins)
		}
	})

	t.Run("should refuse expired vouchers and foreign partners", func(t *testing.T) {
		cleanup(t)
		partner := seedTestPartner(t, ctx)
		other := seedTestPartner(t, ctx)

		past := time.Now().Add(-time.Hour)
		expired := newTestVoucher(partner.ID, &past)
		fresh := newTestVoucher(partner.ID, nil)
		for _, v := range []*model.Voucher{expired, fresh} {
			if err := repo.Save(ctx, nil, v); err != nil {
				t.Fatalf("save voucher: %v", err)
			}
		}

		if _, err := repo.Redeem(ctx, nil, expired.ID, uuid.NewString(), partner.ID, time.Now()); !errors.Is(err, domain.ErrVoucherExpired) {
			t.Errorf("expected ErrVoucherExpired, got: %v", err)
		}
		if _, err := repo.Redeem(ctx, nil, fresh.ID, uuid.NewString(), other.ID, time.Now()); !errors.Is(err, domain.ErrWrongPartner) {
			t.Errorf("expected ErrWrongPartner, got: %v", err)
		}
		if _, err := repo.Redeem(ctx, nil, uuid.NewString(), uuid.NewString(), partner.ID, time.Now()); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got: %v", err)
		}
	})

	t.Run("should count per partner and globally from one snapshot", func(t *testing.T) {
		cleanup(t)
		partner := seedTestPartner(t, ctx)
		other := seedTestPartner(t, ctx)

		for i := 0; i < 3; i++ {
			v := newTestVoucher(partner.ID, nil)
			if err := repo.Save(ctx, nil, v); err != nil {
				t.Fatalf("save voucher: %v", err)
			}
			if i == 0 {
				if _, err := repo.Redeem(ctx, nil, v.ID, uuid.NewString(), partner.ID, time.Now()); err != nil {
					t.Fatalf("redeem: %v", err)
				}
			}
		}
		if err := repo.Save(ctx, nil, newTestVoucher(other.ID, nil)); err != nil {
			t.Fatalf("save voucher: %v", err)
		}

		global, err := repo.CountByPartner(ctx, nil, nil)
		if err != nil {
			t.Fatalf("global count failed: %v", err)
		}
		if global.Total != 4 || global.Redeemed != 1 || global.Active != 3 {
			t.Errorf("expected global 4/3/1, got %+v", global)
		}

		scoped, err := repo.CountByPartner(ctx, nil, &partner.ID)
		if err != nil {
			t.Fatalf("scoped count failed: %v", err)
		}
		if scoped.Total != 3 || scoped.Redeemed != 1 {
			t.Errorf("expected partner 3/2/1, got %+v", scoped)
		}
	})

	t.Run("should find vouchers expiring within the window", func(t *testing.T) {
		cleanup(t)
		partner := seedTestPartner(t, ctx)

		soon := time.Now().Add(24 * time.Hour)
		far := time.Now().Add(30 * 24 * time.Hour)
		expiringSoon := newTestVoucher(partner.ID, &soon)
		expiringLater := newTestVoucher(partner.ID, &far)
		never := newTestVoucher(partner.ID, nil)
		for _, v := range []*model.Voucher{expiringSoon, expiringLater, never} {
			if err := repo.Save(ctx, nil, v); err != nil {
				t.Fatalf("save voucher: %v", err)
			}
		}

		got, err := repo.FindExpiring(ctx, nil, 3*24*time.Hour)
		if err != nil {
			t.Fatalf("FindExpiring failed: %v", err)
		}
		if len(got) != 1 || got[0].ID != expiringSoon.ID {
			t.Errorf("expected only the soon-expiring voucher, got %d entries", len(got))
		}
	})
}
