package notification

import (
	"context"
	"fmt"

	id "downline/pkg/domain"
	"downline/pkg/requestcontext"
)

// Emitter turns domain events into durable notification records plus outbox
// entries. Called inside the registration transaction, so a notification and
// its event commit or roll back together with the member write that caused
// them.
type Emitter struct {
	store  Store
	outbox OutboxStore
}

// NewEmitter constructs an Emitter over the given stores.
func NewEmitter(store Store, outbox OutboxStore) *Emitter {
	return &Emitter{store: store, outbox: outbox}
}

// EmitSponsorship notifies the immediate sponsor of a new recruit. Addressed
// to the sponsor only, never the whole ancestor chain.
func (e *Emitter) EmitSponsorship(ctx context.Context, sponsorID id.MemberID, recruitName string) error {
	return e.emit(ctx, sponsorID,
		"New Team Member",
		fmt.Sprintf("%s just joined your team.", recruitName))
}

// EmitQualified notifies a member of their one-time qualification.
func (e *Emitter) EmitQualified(ctx context.Context, memberID id.MemberID) error {
	return e.emit(ctx, memberID,
		"Congratulations, you are qualified!",
		"Your team has reached the qualification thresholds.")
}

func (e *Emitter) emit(ctx context.Context, recipientID id.MemberID, title, body string) error {
	n := &Notification{
		ID:        id.NewNotificationID(),
		MemberID:  recipientID,
		Title:     title,
		Message:   body,
		CreatedAt: requestcontext.Now(ctx),
	}
	if err := e.store.Create(ctx, n); err != nil {
		return err
	}
	return e.outbox.Append(ctx, Event{
		RecipientID: recipientID,
		Title:       title,
		Body:        body,
	})
}
