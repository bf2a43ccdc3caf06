package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"babsy-voucher-platform/internal/domain/model"
	"babsy-voucher-platform/internal/domain/ports/repository"
	"babsy-voucher-platform/internal/infra/metrics"
	red "babsy-voucher-platform/internal/infra/redis"
)

var _ repository.PartnerRepository = (*partnerRepoCacheDecorator)(nil)

// partnerRepoCacheDecorator is a redis read-through cache in front of the
// partner repo. Every issued and redeemed voucher resolves its partner, so
// the directory is by far the hottest read path.
type partnerRepoCacheDecorator struct {
	inner repository.PartnerRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewPartnerRepoCacheDecorator(inner repository.PartnerRepository, cache red.RedisClient, ttl time.Duration) repository.PartnerRepository {
	return &partnerRepoCacheDecorator{
		inner: inner,
		cache: cache,
		ttl:   ttl,
	}
}

func partnerKey(id string) string { return fmt.Sprintf("partner:%s", id) }

func (d *partnerRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Partner, error) {
	val, err := d.cache.Get(ctx, partnerKey(id))
	if err == nil {
		var p model.Partner
		if json.Unmarshal([]byte(val), &p) == nil {
			metrics.IncCacheRequest("partner", "hit")
			return &p, nil
		}
	} else if !errors.Is(err, red.Nil) {
		// a real redis error; fall through to the source of truth
	}

	metrics.IncCacheRequest("partner", "miss")
	p, err := d.inner.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(p); err == nil {
		_ = d.cache.Set(ctx, partnerKey(id), data, d.ttl)
	}
	return p, nil
}

// Writes invalidate both the single-partner entry and the active list.
func (d *partnerRepoCacheDecorator) Save(ctx context.Context, tx repository.Tx, p *model.Partner) error {
	_ = d.cache.Del(ctx, partnerKey(p.ID), "partners:active")
	return d.inner.Save(ctx, tx, p)
}

func (d *partnerRepoCacheDecorator) ListActive(ctx context.Context, tx repository.Tx) ([]*model.Partner, error) {
	val, err := d.cache.Get(ctx, "partners:active")
	if err == nil {
		var ps []*model.Partner
		if json.Unmarshal([]byte(val), &ps) == nil {
			metrics.IncCacheRequest("partner_list", "hit")
			return ps, nil
		}
	}

	metrics.IncCacheRequest("partner_list", "miss")
	ps, err := d.inner.ListActive(ctx, tx)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(ps); err == nil {
		_ = d.cache.Set(ctx, "partners:active", data, d.ttl)
	}
	return ps, nil
}
