package notification

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	id "downline/pkg/domain"
	"downline/pkg/platform/sentinel"
	txcontext "downline/pkg/platform/tx"
)

// PostgresStore persists notifications in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore constructs a PostgreSQL-backed notification store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func execer(ctx context.Context, db *sql.DB) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return db
}

func (s *PostgresStore) Create(ctx context.Context, n *Notification) error {
	if n == nil {
		return fmt.Errorf("notification is required")
	}
	_, err := execer(ctx, s.db).ExecContext(ctx, `
		INSERT INTO notifications (id, member_id, title, message, read, created_at)
		VALUES ($1, $2, $3, $4, FALSE, $5)`,
		n.ID.String(), n.MemberID.String(), n.Title, n.Message, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByMember(ctx context.Context, memberID id.MemberID) ([]*Notification, error) {
	rows, err := execer(ctx, s.db).QueryContext(ctx, `
		SELECT id, member_id, title, message, read, created_at
		FROM notifications
		WHERE member_id = $1
		ORDER BY created_at DESC`,
		memberID.String())
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*Notification
	for rows.Next() {
		var (
			n           Notification
			rawID       string
			rawMemberID string
		)
		if err := rows.Scan(&rawID, &rawMemberID, &n.Title, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("list notifications: %w", err)
		}
		if n.ID, err = id.ParseNotificationID(rawID); err != nil {
			return nil, fmt.Errorf("list notifications: %w", err)
		}
		if n.MemberID, err = id.ParseMemberID(rawMemberID); err != nil {
			return nil, fmt.Errorf("list notifications: %w", err)
		}
		notifications = append(notifications, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return notifications, nil
}

func (s *PostgresStore) MarkRead(ctx context.Context, notificationID id.NotificationID, memberID id.MemberID) error {
	res, err := execer(ctx, s.db).ExecContext(ctx, `
		UPDATE notifications SET read = TRUE
		WHERE id = $1 AND member_id = $2`,
		notificationID.String(), memberID.String())
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// PostgresOutbox persists pending notification events.
type PostgresOutbox struct {
	db *sql.DB
}

// NewPostgresOutbox constructs a PostgreSQL-backed outbox.
func NewPostgresOutbox(db *sql.DB) *PostgresOutbox {
	return &PostgresOutbox{db: db}
}

func (s *PostgresOutbox) Append(ctx context.Context, event Event) error {
	_, err := execer(ctx, s.db).ExecContext(ctx, `
		INSERT INTO notification_outbox (id, recipient_id, title, body, created_at, published_at)
		VALUES ($1, $2, $3, $4, $5, NULL)`,
		id.NewNotificationID().String(), event.RecipientID.String(),
		event.Title, event.Body, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("append outbox event: %w", err)
	}
	return nil
}

func (s *PostgresOutbox) Unpublished(ctx context.Context, limit int) ([]*OutboxEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, recipient_id, title, body, created_at
		FROM notification_outbox
		WHERE published_at IS NULL
		ORDER BY created_at
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list unpublished events: %w", err)
	}
	defer rows.Close()

	var entries []*OutboxEntry
	for rows.Next() {
		var (
			entry        OutboxEntry
			rawID        string
			rawRecipient string
		)
		if err := rows.Scan(&rawID, &rawRecipient, &entry.Event.Title, &entry.Event.Body, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("list unpublished events: %w", err)
		}
		if entry.ID, err = id.ParseNotificationID(rawID); err != nil {
			return nil, fmt.Errorf("list unpublished events: %w", err)
		}
		if entry.Event.RecipientID, err = id.ParseMemberID(rawRecipient); err != nil {
			return nil, fmt.Errorf("list unpublished events: %w", err)
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list unpublished events: %w", err)
	}
	return entries, nil
}

func (s *PostgresOutbox) MarkPublished(ctx context.Context, entryID id.NotificationID, now time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE notification_outbox SET published_at = $1
		WHERE id = $2 AND published_at IS NULL`,
		now, entryID.String())
	if err != nil {
		return fmt.Errorf("mark event published: %w", err)
	}
	return nil
}
