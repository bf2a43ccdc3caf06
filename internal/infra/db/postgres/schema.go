package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS users (
    id          UUID PRIMARY KEY,
    username    TEXT NOT NULL,
    email       TEXT NOT NULL,
    user_type   TEXT NOT NULL,
    partner_id  UUID,
    created_at  TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS partners (
    id          UUID PRIMARY KEY,
    name        TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    category    TEXT NOT NULL DEFAULT '',
    address     TEXT NOT NULL DEFAULT '',
    is_active   BOOLEAN NOT NULL DEFAULT TRUE,
    created_at  TIMESTAMPTZ NOT NULL,
    updated_at  TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS vouchers (
    id                  UUID PRIMARY KEY,
    code                TEXT NOT NULL UNIQUE,
    partner_id          UUID NOT NULL REFERENCES partners (id),
    owner_id            UUID NOT NULL,
    title               TEXT NOT NULL DEFAULT '',
    description         TEXT NOT NULL DEFAULT '',
    value               DOUBLE PRECISION,
    discount_percentage INT,
    qr_payload          BYTEA,
    is_redeemed         BOOLEAN NOT NULL DEFAULT FALSE,
    redeemed_by_id      UUID,
    redeemed_at         TIMESTAMPTZ,
    created_at          TIMESTAMPTZ NOT NULL,
    expires_at          TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS vouchers_owner_idx ON vouchers (owner_id, created_at DESC);
CREATE INDEX IF NOT EXISTS vouchers_partner_idx ON vouchers (partner_id);

CREATE TABLE IF NOT EXISTS audit_log (
    id          TEXT PRIMARY KEY,
    entity_type TEXT NOT NULL,
    entity_id   TEXT NOT NULL,
    action      TEXT NOT NULL,
    actor_id    TEXT NOT NULL,
    changes     JSONB,
    ip_address  TEXT NOT NULL DEFAULT '',
    user_agent  TEXT NOT NULL DEFAULT '',
    created_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS audit_log_entity_idx ON audit_log (entity_type, entity_id, id);
`

// EnsureSchema creates the tables if they do not exist. Used by cmd/seed
// and the integration tests; production deployments run the same DDL.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schemaDDL)
	return err
}
