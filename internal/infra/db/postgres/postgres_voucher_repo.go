package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"babsy-voucher-platform/internal/domain"
	"babsy-voucher-platform/internal/domain/model"
	"babsy-voucher-platform/internal/domain/ports/repository"
)

// Ensure implementation satisfies the interface.
var _ repository.VoucherRepository = (*voucherRepo)(nil)

const voucherColumns = `id, code, partner_id, owner_id, title, description, value, discount_percentage, qr_payload, is_redeemed, redeemed_by_id, redeemed_at, created_at, expires_at`

type voucherRepo struct {
	pool *pgxpool.Pool
}

func NewVoucherRepo(pool *pgxpool.Pool) repository.VoucherRepository {
	return &voucherRepo{pool: pool}
}

func (r *voucherRepo) Save(ctx context.Context, tx repository.Tx, v *model.Voucher) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}

	const q = `
INSERT INTO vouchers (` + voucherColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
`
	_, err := execSQL(ctx, r.pool, tx, q,
		v.ID, v.Code, v.PartnerID, v.OwnerID, v.Title, v.Description,
		v.Value, v.DiscountPercentage, v.QRPayload,
		v.IsRedeemed, v.RedeemedByID, v.RedeemedAt, v.CreatedAt, v.ExpiresAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			// unique_violation on the code column
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("save voucher: %w", err)
	}
	return nil
}

func (r *voucherRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Voucher, error) {
	const q = `SELECT ` + voucherColumns + ` FROM vouchers WHERE id = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanVoucher(row)
}

func (r *voucherRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.Voucher, error) {
	const q = `SELECT ` + voucherColumns + ` FROM vouchers WHERE code = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, code)
	if err != nil {
		return nil, err
	}
	return scanVoucher(row)
}

func (r *voucherRepo) ListByOwner(ctx context.Context, tx repository.Tx, ownerID string, filter repository.VoucherFilter) ([]*model.Voucher, error) {
	const q = `
SELECT ` + voucherColumns + `
  FROM vouchers
 WHERE owner_id = $1
   AND ($2::boolean IS NULL OR is_redeemed = $2)
 ORDER BY created_at DESC;
`
	rows, err := queryRows(ctx, r.pool, tx, q, ownerID, filter.IsRedeemed)
	if err != nil {
		return nil, fmt.Errorf("list vouchers by owner: %w", err)
	}
	defer rows.Close()
	return collectVouchers(rows)
}

// Redeem is the system's core concurrency guarantee: a single conditional
// UPDATE that only fires while the voucher is unredeemed, unexpired and
// owned by the given partner. Of two concurrent calls exactly one matches;
// the other falls through to the re-read below and reports why.
func (r *voucherRepo) Redeem(ctx context.Context, tx repository.Tx, id, redeemerID, partnerID string, at time.Time) (*model.Voucher, error) {
	const q = `
UPDATE vouchers
   SET is_redeemed = TRUE,
       redeemed_at = $2,
       redeemed_by_id = $3
 WHERE id = $1
   AND is_redeemed = FALSE
   AND partner_id = $4
   AND (expires_at IS NULL OR expires_at > $2)
RETURNING ` + voucherColumns + `;
`
	row, err := pickRow(ctx, r.pool, tx, q, id, at, redeemerID, partnerID)
	if err != nil {
		return nil, err
	}
	v, err := scanVoucher(row)
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	// No row matched the guard; re-read to report the precise cause.
	cur, ferr := r.FindByID(ctx, tx, id)
	if ferr != nil {
		return nil, ferr // includes ErrNotFound
	}
	switch {
	case cur.IsRedeemed:
		return nil, domain.ErrAlreadyRedeemed
	case cur.IsExpired(at):
		return nil, domain.ErrVoucherExpired
	case cur.PartnerID != partnerID:
		return nil, domain.ErrWrongPartner
	default:
		// guard raced with a concurrent redeem that is not yet visible
		return nil, domain.ErrAlreadyRedeemed
	}
}

func (r *voucherRepo) CountByPartner(ctx context.Context, tx repository.Tx, partnerID *string) (repository.VoucherCounts, error) {
	// One statement so all three counts share a snapshot.
	const q = `
SELECT COUNT(*),
       COUNT(*) FILTER (WHERE NOT is_redeemed),
       COUNT(*) FILTER (WHERE is_redeemed)
  FROM vouchers
 WHERE ($1::uuid IS NULL OR partner_id = $1);
`
	row, err := pickRow(ctx, r.pool, tx, q, partnerID)
	if err != nil {
		return repository.VoucherCounts{}, err
	}
	var c repository.VoucherCounts
	if err := row.Scan(&c.Total, &c.Active, &c.Redeemed); err != nil {
		return repository.VoucherCounts{}, fmt.Errorf("count vouchers: %w", err)
	}
	return c, nil
}

func (r *voucherRepo) FindExpiring(ctx context.Context, tx repository.Tx, within time.Duration) ([]*model.Voucher, error) {
	now := time.Now()
	const q = `
SELECT ` + voucherColumns + `
  FROM vouchers
 WHERE is_redeemed = FALSE
   AND expires_at IS NOT NULL
   AND expires_at > $1
   AND expires_at <= $2
 ORDER BY expires_at;
`
	rows, err := queryRows(ctx, r.pool, tx, q, now, now.Add(within))
	if err != nil {
		return nil, fmt.Errorf("find expiring vouchers: %w", err)
	}
	defer rows.Close()
	return collectVouchers(rows)
}

func scanVoucher(row pgx.Row) (*model.Voucher, error) {
	var v model.Voucher
	err := row.Scan(
		&v.ID, &v.Code, &v.PartnerID, &v.OwnerID, &v.Title, &v.Description,
		&v.Value, &v.DiscountPercentage, &v.QRPayload,
		&v.IsRedeemed, &v.RedeemedByID, &v.RedeemedAt, &v.CreatedAt, &v.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &v, nil
}

func collectVouchers(rows pgx.Rows) ([]*model.Voucher, error) {
	var out []*model.Voucher
	for rows.Next() {
		v, err := scanVoucher(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
