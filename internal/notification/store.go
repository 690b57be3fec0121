package notification

import (
	"context"
	"time"

	id "downline/pkg/domain"
)

// Store is the notification persistence port. Create joins an open
// transaction from context so notifications commit atomically with the
// registration that caused them.
type Store interface {
	Create(ctx context.Context, n *Notification) error

	// ListByMember returns the member's notifications, newest first.
	ListByMember(ctx context.Context, memberID id.MemberID) ([]*Notification, error)

	// MarkRead flips the read flag, scoped to the owning member.
	// Returns sentinel.ErrNotFound when the notification does not exist or
	// belongs to someone else.
	MarkRead(ctx context.Context, notificationID id.NotificationID, memberID id.MemberID) error
}

// OutboxStore is the pending-event queue port. Append joins an open
// transaction; the worker drains outside any transaction.
type OutboxStore interface {
	Append(ctx context.Context, event Event) error
	Unpublished(ctx context.Context, limit int) ([]*OutboxEntry, error)
	MarkPublished(ctx context.Context, entryID id.NotificationID, now time.Time) error
}
