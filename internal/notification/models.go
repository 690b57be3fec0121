// Package notification persists member-owned notification records and ships
// the corresponding events to the external delivery pipeline through a
// transactional outbox.
package notification

import (
	"time"

	id "downline/pkg/domain"
)

// Notification is a durable record owned by exactly one member. Immutable
// after creation except for the read flag.
type Notification struct {
	ID        id.NotificationID
	MemberID  id.MemberID
	Title     string
	Message   string
	Read      bool
	CreatedAt time.Time
}

// Event is the payload handed to the delivery pipeline. Transport past the
// topic (push-token lookup, network send) is not this service's concern.
type Event struct {
	RecipientID id.MemberID `json:"recipientId"`
	Title       string      `json:"title"`
	Body        string      `json:"body"`
}

// OutboxEntry is a pending event row awaiting publication.
type OutboxEntry struct {
	ID        id.NotificationID
	Event     Event
	CreatedAt time.Time
}
