package model

import "time"

// Audit actions recorded for voucher lifecycle events.
const (
	AuditActionCreated  = "created"
	AuditActionRedeemed = "redeemed"
)

// AuditEntry is an immutable, append-only record of a lifecycle event.
// Writing an entry is best-effort: a failed append never rolls back the
// operation that triggered it.
type AuditEntry struct {
	ID         string // ULID, lexically ordered by time
	EntityType string
	EntityID   string
	Action     string
	ActorID    string
	Changes    map[string]any
	IPAddress  string
	UserAgent  string
	CreatedAt  time.Time
}
