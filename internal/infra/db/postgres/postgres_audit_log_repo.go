package postgres

import (
	"context"
	"crypto/rand"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/oklog/ulid/v2"

	"babsy-voucher-platform/internal/domain/model"
	"babsy-voucher-platform/internal/domain/ports/repository"
)

// Ensure implementation satisfies the interface.
var _ repository.AuditLogRepository = (*auditLogRepo)(nil)

type auditLogRepo struct {
	pool *pgxpool.Pool
}

func NewAuditLogRepo(pool *pgxpool.Pool) repository.AuditLogRepository {
	return &auditLogRepo{pool: pool}
}

// Append writes one immutable entry. Entry IDs are ULIDs so the primary key
// sorts in event order.
func (r *auditLogRepo) Append(ctx context.Context, tx repository.Tx, e *model.AuditEntry) error {
	if e.ID == "" {
		e.ID = ulid.MustNew(ulid.Timestamp(e.CreatedAt), rand.Reader).String()
	}

	const q = `
INSERT INTO audit_log (id, entity_type, entity_id, action, actor_id, changes, ip_address, user_agent, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
`
	_, err := execSQL(ctx, r.pool, tx, q,
		e.ID, e.EntityType, e.EntityID, e.Action, e.ActorID, e.Changes, e.IPAddress, e.UserAgent, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

func (r *auditLogRepo) ListByEntity(ctx context.Context, tx repository.Tx, entityType, entityID string) ([]*model.AuditEntry, error) {
	const q = `
SELECT id, entity_type, entity_id, action, actor_id, changes, ip_address, user_agent, created_at
  FROM audit_log
 WHERE entity_type = $1 AND entity_id = $2
 ORDER BY id;
`
	rows, err := queryRows(ctx, r.pool, tx, q, entityType, entityID)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var out []*model.AuditEntry
	for rows.Next() {
		var e model.AuditEntry
		if err := rows.Scan(&e.ID, &e.EntityType, &e.EntityID, &e.Action, &e.ActorID, &e.Changes, &e.IPAddress, &e.UserAgent, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}
