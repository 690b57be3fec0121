package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is the explicit, committed record shape. The original system let the
// document shape drift across revisions; here the columns are the contract.
const schema = `
CREATE TABLE IF NOT EXISTS members (
	id                   UUID PRIMARY KEY,
	email                TEXT NOT NULL,
	first_name           TEXT NOT NULL,
	last_name            TEXT NOT NULL,
	country              TEXT NOT NULL,
	state                TEXT NOT NULL DEFAULT '',
	city                 TEXT NOT NULL DEFAULT '',
	referral_code        TEXT NOT NULL,
	referred_by          TEXT,
	sponsor_id           UUID REFERENCES members(id),
	ancestor_chain       UUID[] NOT NULL DEFAULT '{}',
	level                INT NOT NULL,
	root_admin_id        UUID NOT NULL,
	direct_sponsor_count BIGINT NOT NULL DEFAULT 0,
	total_team_count     BIGINT NOT NULL DEFAULT 0,
	qualified_at         TIMESTAMPTZ,
	created_at           TIMESTAMPTZ NOT NULL,
	CONSTRAINT members_email_key UNIQUE (email),
	CONSTRAINT members_referral_code_key UNIQUE (referral_code)
);

CREATE INDEX IF NOT EXISTS members_ancestor_chain_idx
	ON members USING GIN (ancestor_chain);
CREATE INDEX IF NOT EXISTS members_sponsor_id_idx
	ON members (sponsor_id);

CREATE TABLE IF NOT EXISTS credentials (
	id            UUID PRIMARY KEY,
	email         TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL,
	CONSTRAINT credentials_email_key UNIQUE (email)
);

CREATE TABLE IF NOT EXISTS notifications (
	id         UUID PRIMARY KEY,
	member_id  UUID NOT NULL,
	title      TEXT NOT NULL,
	message    TEXT NOT NULL,
	read       BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS notifications_member_id_idx
	ON notifications (member_id, created_at DESC);

CREATE TABLE IF NOT EXISTS notification_outbox (
	id           UUID PRIMARY KEY,
	recipient_id UUID NOT NULL,
	title        TEXT NOT NULL,
	body         TEXT NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL,
	published_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS notification_outbox_unpublished_idx
	ON notification_outbox (created_at) WHERE published_at IS NULL;
`

// EnsureSchema provisions the tables and indexes. Idempotent.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
