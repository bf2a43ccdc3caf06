//go:build !integration

package usecase_test

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"babsy-voucher-platform/internal/domain"
	"babsy-voucher-platform/internal/domain/model"
	"babsy-voucher-platform/internal/domain/ports/adapter"
	"babsy-voucher-platform/internal/domain/ports/repository"
)

// -----------------------------
// Mock voucher repository
// -----------------------------

type MockVoucherRepo struct {
	mu   sync.Mutex
	data map[string]*model.Voucher // by id

	SaveFunc           func(ctx context.Context, tx repository.Tx, v *model.Voucher) error
	FindByIDFunc       func(ctx context.Context, tx repository.Tx, id string) (*model.Voucher, error)
	FindByCodeFunc     func(ctx context.Context, tx repository.Tx, code string) (*model.Voucher, error)
	ListByOwnerFunc    func(ctx context.Context, tx repository.Tx, ownerID string, filter repository.VoucherFilter) ([]*model.Voucher, error)
	RedeemFunc         func(ctx context.Context, tx repository.Tx, id, redeemerID, partnerID string, at time.Time) (*model.Voucher, error)
	CountByPartnerFunc func(ctx context.Context, tx repository.Tx, partnerID *string) (repository.VoucherCounts, error)
	FindExpiringFunc   func(ctx context.Context, tx repository.Tx, within time.Duration) ([]*model.Voucher, error)
}

var _ repository.VoucherRepository = (*MockVoucherRepo)(nil)

func NewMockVoucherRepo() *MockVoucherRepo {
	return &MockVoucherRepo{data: map[string]*model.Voucher{}}
}

func (r *MockVoucherRepo) Save(ctx context.Context, tx repository.Tx, v *model.Voucher) error {
	if r.SaveFunc != nil {
		return r.SaveFunc(ctx, tx, v)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	for _, existing := range r.data {
		if existing.Code == v.Code && existing.ID != v.ID {
			return domain.ErrAlreadyExists
		}
	}
	cp := *v
	r.data[v.ID] = &cp
	return nil
}

func (r *MockVoucherRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Voucher, error) {
	if r.FindByIDFunc != nil {
		return r.FindByIDFunc(ctx, tx, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.data[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (r *MockVoucherRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.Voucher, error) {
	if r.FindByCodeFunc != nil {
		return r.FindByCodeFunc(ctx, tx, code)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.data {
		if v.Code == code {
			cp := *v
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *MockVoucherRepo) ListByOwner(ctx context.Context, tx repository.Tx, ownerID string, filter repository.VoucherFilter) ([]*model.Voucher, error) {
	if r.ListByOwnerFunc != nil {
		return r.ListByOwnerFunc(ctx, tx, ownerID, filter)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Voucher
	for _, v := range r.data {
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

// Redeem mirrors the store's conditional update: all guards are evaluated
// under one lock so concurrent callers see exactly one winner.
func (r *MockVoucherRepo) Redeem(ctx context.Context, tx repository.Tx, id, redeemerID, partnerID string, at time.Time) (*model.Voucher, error) {
	if r.RedeemFunc != nil {
		return r.RedeemFunc(ctx, tx, id, redeemerID, partnerID, at)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.data[id]
	if !ok {
		return nil, domain.ErrNotFound
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

func (r *MockVoucherRepo) CountByPartner(ctx context.Context, tx repository.Tx, partnerID *string) (repository.VoucherCounts, error) {
	if r.CountByPartnerFunc != nil {
		return r.CountByPartnerFunc(ctx, tx, partnerID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var counts repository.VoucherCounts
	for _, v := range r.data {
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

func (r *MockVoucherRepo) FindExpiring(ctx context.Context, tx repository.Tx, within time.Duration) ([]*model.Voucher, error) {
	if r.FindExpiringFunc != nil {
		return r.FindExpiringFunc(ctx, tx, within)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cut := time.Now().Add(within)
	var out []*model.Voucher
	for _, v := range r.data {
		if v.IsRedeemed || v.ExpiresAt == nil {
			continue
		}
		if v.ExpiresAt.After(time.Now()) && v.ExpiresAt.Before(cut) {
			cp := *v
			out = append(out, &cp)
		}
	}
	return out, nil
}

// -----------------------------
// Mock partner repository
// -----------------------------

type MockPartnerRepo struct {
	mu   sync.Mutex
	data map[string]*model.Partner

	SaveFunc       func(ctx context.Context, tx repository.Tx, p *model.Partner) error
	FindByIDFunc   func(ctx context.Context, tx repository.Tx, id string) (*model.Partner, error)
	ListActiveFunc func(ctx context.Context, tx repository.Tx) ([]*model.Partner, error)
}

var _ repository.PartnerRepository = (*MockPartnerRepo)(nil)

func NewMockPartnerRepo() *MockPartnerRepo {
	return &MockPartnerRepo{data: map[string]*model.Partner{}}
}

func (r *MockPartnerRepo) Save(ctx context.Context, tx repository.Tx, p *model.Partner) error {
	if r.SaveFunc != nil {
		return r.SaveFunc(ctx, tx, p)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	cp := *p
	r.data[p.ID] = &cp
	return nil
}

func (r *MockPartnerRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Partner, error) {
	if r.FindByIDFunc != nil {
		return r.FindByIDFunc(ctx, tx, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.data[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *MockPartnerRepo) ListActive(ctx context.Context, tx repository.Tx) ([]*model.Partner, error) {
	if r.ListActiveFunc != nil {
		return r.ListActiveFunc(ctx, tx)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Partner
	for _, p := range r.data {
		if p.IsActive {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

// -----------------------------
// Mock user repository
// -----------------------------

type MockUserRepo struct {
	mu   sync.Mutex
	data map[string]*model.User

	SaveFunc     func(ctx context.Context, tx repository.Tx, u *model.User) error
	FindByIDFunc func(ctx context.Context, tx repository.Tx, id string) (*model.User, error)
}

var _ repository.UserRepository = (*MockUserRepo)(nil)

func NewMockUserRepo() *MockUserRepo {
	return &MockUserRepo{data: map[string]*model.User{}}
}

func (r *MockUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	if r.SaveFunc != nil {
		return r.SaveFunc(ctx, tx, u)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.data[u.ID] = &cp
	return nil
}

func (r *MockUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	if r.FindByIDFunc != nil {
		return r.FindByIDFunc(ctx, tx, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.data[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

// -----------------------------
// Mock audit log repository
// -----------------------------

type MockAuditLogRepo struct {
	mu      sync.Mutex
	entries []*model.AuditEntry

	AppendFunc func(ctx context.Context, tx repository.Tx, e *model.AuditEntry) error
}

var _ repository.AuditLogRepository = (*MockAuditLogRepo)(nil)

func NewMockAuditLogRepo() *MockAuditLogRepo {
	return &MockAuditLogRepo{}
}

func (r *MockAuditLogRepo) Append(ctx context.Context, tx repository.Tx, e *model.AuditEntry) error {
	if r.AppendFunc != nil {
		return r.AppendFunc(ctx, tx, e)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *e
	r.entries = append(r.entries, &cp)
	return nil
}

func (r *MockAuditLogRepo) ListByEntity(ctx context.Context, tx repository.Tx, entityType, entityID string) ([]*model.AuditEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.AuditEntry
	for _, e := range r.entries {
		if e.EntityType == entityType && e.EntityID == entityID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

// Entries returns a snapshot of everything appended so far.
func (r *MockAuditLogRepo) Entries() []*model.AuditEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.AuditEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

// -----------------------------
// Mock notifier
// -----------------------------

type MockNotifier struct {
	mu       sync.Mutex
	issued   int
	redeemed int

	NotifyIssuedFunc   func(ctx context.Context, owner *model.User, v *model.Voucher, p *model.Partner) error
	NotifyRedeemedFunc func(ctx context.Context, owner *model.User, v *model.Voucher, p *model.Partner) error
}

var _ adapter.Notifier = (*MockNotifier)(nil)

func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

func (n *MockNotifier) NotifyIssued(ctx context.Context, owner *model.User, v *model.Voucher, p *model.Partner) error {
	if n.NotifyIssuedFunc != nil {
		return n.NotifyIssuedFunc(ctx, owner, v, p)
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.issued++
	return nil
}

func (n *MockNotifier) NotifyRedeemed(ctx context.Context, owner *model.User, v *model.Voucher, p *model.Partner) error {
	if n.NotifyRedeemedFunc != nil {
		return n.NotifyRedeemedFunc(ctx, owner, v, p)
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.redeemed++
	return nil
}

func (n *MockNotifier) IssuedCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.issued
}

func (n *MockNotifier) RedeemedCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.redeemed
}

// newTestLogger creates a silent zerolog.Logger for use in tests.
// It writes to io.Discard to prevent logs from cluttering test output.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}
