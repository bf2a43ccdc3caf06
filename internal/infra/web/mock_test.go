//go:build !integration

package web

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"babsy-voucher-platform/internal/domain"
	"babsy-voucher-platform/internal/domain/model"
	"babsy-voucher-platform/internal/domain/ports/repository"
)

// --- Mock Repositories (Ports) ---

type mockVoucherRepo struct {
	mu       sync.Mutex
	vouchers []*model.Voucher

	SaveError   error
	RedeemError error
}

var _ repository.VoucherRepository = (*mockVoucherRepo)(nil)

func (m *mockVoucherRepo) Save(ctx context.Context, tx repository.Tx, v *model.Voucher) error {
	if m.SaveError != nil {
		return m.SaveError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *v
	m.vouchers = append(m.vouchers, &cp)
	return nil
}

func (m *mockVoucherRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Voucher, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.vouchers {
		if v.ID == id {
			cp := *v
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockVoucherRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.Voucher, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.vouchers {
		if v.Code == code {
			cp := *v
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockVoucherRepo) ListByOwner(ctx context.Context, tx repository.Tx, ownerID string, filter repository.VoucherFilter) ([]*model.Voucher, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Voucher
	for _, v := range m.vouchers {
		if v.OwnerID != ownerID {
			continue
		}
		if filter.IsRedeemed != nil && v.IsRedeemed != *filter.IsRedeemed {
			continue
		}
		cp := *v
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockVoucherRepo) Redeem(ctx context.Context, tx repository.Tx, id, redeemerID, partnerID string, at time.Time) (*model.Voucher, error) {
	if m.RedeemError != nil {
		return nil, m.RedeemError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.vouchers {
		if v.ID != id {
			continue
		}
		if v.IsRedeemed {
			return nil, domain.ErrAlreadyRedeemed
		}
		if v.IsExpired(at) {
			return nil, domain.ErrVoucherExpired
		}
		if v.PartnerID != partnerID {
			return nil, domain.ErrWrongPartner
		}
		v.IsRedeemed = true
		v.RedeemedByID = &redeemerID
		redeemedAt := at
		v.RedeemedAt = &redeemedAt
		cp := *v
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (m *mockVoucherRepo) CountByPartner(ctx context.Context, tx repository.Tx, partnerID *string) (repository.VoucherCounts, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var counts repository.VoucherCounts
	for _, v := range m.vouchers {
		if partnerID != nil && v.PartnerID != *partnerID {
			continue
		}
		counts.Total++
		if v.IsRedeemed {
			counts.Redeemed++
		} else {
			counts.Active++
		}
	}
	return counts, nil
}

func (m *mockVoucherRepo) FindExpiring(ctx context.Context, tx repository.Tx, within time.Duration) ([]*model.Voucher, error) {
	return nil, nil
}

type mockPartnerRepo struct {
	mu       sync.Mutex
	partners []*model.Partner

	ListActiveError error
}

var _ repository.PartnerRepository = (*mockPartnerRepo)(nil)

func (m *mockPartnerRepo) Save(ctx context.Context, tx repository.Tx, p *model.Partner) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.partners {
		if existing.ID == p.ID {
			cp := *p
			m.partners[i] = &cp
			return nil
		}
	}
	cp := *p
	m.partners = append(m.partners, &cp)
	return nil
}

func (m *mockPartnerRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Partner, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.partners {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockPartnerRepo) ListActive(ctx context.Context, tx repository.Tx) ([]*model.Partner, error) {
	if m.ListActiveError != nil {
		return nil, m.ListActiveError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Partner
	for _, p := range m.partners {
		if p.IsActive {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

type mockUserRepo struct {
	mu    sync.Mutex
	users []*model.User
}

var _ repository.UserRepository = (*mockUserRepo)(nil)

func (m *mockUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.users = append(m.users, &cp)
	return nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

type mockAuditRepo struct {
	mu      sync.Mutex
	entries []*model.AuditEntry
}

var _ repository.AuditLogRepository = (*mockAuditRepo)(nil)

func (m *mockAuditRepo) Append(ctx context.Context, tx repository.Tx, e *model.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *e
	m.entries = append(m.entries, &cp)
	return nil
}

func (m *mockAuditRepo) ListByEntity(ctx context.Context, tx repository.Tx, entityType, entityID string) ([]*model.AuditEntry, error) {
	return nil, nil
}

type mockNotifier struct{}

func (mockNotifier) NotifyIssued(context.Context, *model.User, *model.Voucher, *model.Partner) error {
	return nil
}

func (mockNotifier) NotifyRedeemed(context.Context, *model.User, *model.Voucher, *model.Partner) error {
	return nil
}

// stubLimiter counts calls and denies once the configured budget is spent.
type stubLimiter struct {
	mu    sync.Mutex
	calls int
}

func (l *stubLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	return l.calls <= limit, nil
}

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}
