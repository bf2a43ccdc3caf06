package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"babsy-voucher-platform/internal/domain"
	"babsy-voucher-platform/internal/domain/model"
	"babsy-voucher-platform/internal/domain/ports/repository"
)

// Ensure implementation satisfies the interface.
var _ repository.PartnerRepository = (*partnerRepo)(nil)

const partnerColumns = `id, name, description, category, address, is_active, created_at, updated_at`

type partnerRepo struct {
	pool *pgxpool.Pool
}

func NewPartnerRepo(pool *pgxpool.Pool) repository.PartnerRepository {
	return &partnerRepo{pool: pool}
}

func (r *partnerRepo) Save(ctx context.Context, tx repository.Tx, p *model.Partner) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	const q = `
INSERT INTO partners (` + partnerColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO UPDATE SET
  name        = EXCLUDED.name,
  description = EXCLUDED.description,
  category    = EXCLUDED.category,
  address     = EXCLUDED.address,
  is_active   = EXCLUDED.is_active,
  updated_at  = EXCLUDED.updated_at;
`
	_, err := execSQL(ctx, r.pool, tx, q,
		p.ID, p.Name, p.Description, p.Category, p.Address, p.IsActive, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save partner: %w", err)
	}
	return nil
}

func (r *partnerRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Partner, error) {
	const q = `SELECT ` + partnerColumns + ` FROM partners WHERE id = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanPartner(row)
}

func (r *partnerRepo) ListActive(ctx context.Context, tx repository.Tx) ([]*model.Partner, error) {
	const q = `SELECT ` + partnerColumns + ` FROM partners WHERE is_active ORDER BY name;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, fmt.Errorf("list active partners: %w", err)
	}
	defer rows.Close()

	var out []*model.Partner
	for rows.Next() {
		p, err := scanPartner(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanPartner(row pgx.Row) (*model.Partner, error) {
	var p model.Partner
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.Address, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &p, nil
}
