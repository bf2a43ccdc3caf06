package repository

import (
	"context"

	"babsy-voucher-platform/internal/domain/model"
)

// AuditLogRepository is the port for the append-only audit trail.
type AuditLogRepository interface {
	// Append writes one entry. Callers treat failures as non-fatal.
	Append(ctx context.Context, tx Tx, e *model.AuditEntry) error
	// ListByEntity returns entries for one entity, oldest first.
	ListByEntity(ctx context.Context, tx Tx, entityType, entityID string) ([]*model.AuditEntry, error)
}
