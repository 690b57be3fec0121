package notification

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "downline/pkg/domain"
	"downline/pkg/requestcontext"
)

func TestEmitterSponsorship(t *testing.T) {
	store := NewMemoryStore()
	outbox := NewMemoryOutbox()
	emitter := NewEmitter(store, outbox)

	sponsorID := id.NewMemberID()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)

	require.NoError(t, emitter.EmitSponsorship(ctx, sponsorID, "Grace Hopper"))

	notifications, err := store.ListByMember(ctx, sponsorID)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, "New Team Member", notifications[0].Title)
	assert.Equal(t, "Grace Hopper just joined your team.", notifications[0].Message)
	assert.False(t, notifications[0].Read)
	assert.True(t, notifications[0].CreatedAt.Equal(now))

	entries, err := outbox.Unpublished(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, sponsorID, entries[0].Event.RecipientID)
	assert.Equal(t, "New Team Member", entries[0].Event.Title)
}

func TestEmitterQualified(t *testing.T) {
	store := NewMemoryStore()
	outbox := NewMemoryOutbox()
	emitter := NewEmitter(store, outbox)

	memberID := id.NewMemberID()
	ctx := context.Background()
	require.NoError(t, emitter.EmitQualified(ctx, memberID))

	notifications, err := store.ListByMember(ctx, memberID)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, "Congratulations, you are qualified!", notifications[0].Title)
	assert.Equal(t, 1, outbox.Pending())
}

func TestMemoryStoreMarkRead(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	owner := id.NewMemberID()
	n := &Notification{
		ID:        id.NewNotificationID(),
		MemberID:  owner,
		Title:     "t",
		Message:   "m",
		CreatedAt: time.Now(),
	}
	require.NoError(t, store.Create(ctx, n))

	t.Run("owner can mark read", func(t *testing.T) {
		require.NoError(t, store.MarkRead(ctx, n.ID, owner))
		listed, err := store.ListByMember(ctx, owner)
		require.NoError(t, err)
		assert.True(t, listed[0].Read)
	})

	t.Run("someone else cannot", func(t *testing.T) {
		err := store.MarkRead(ctx, n.ID, id.NewMemberID())
		assert.Error(t, err)
	})

	t.Run("unknown id", func(t *testing.T) {
		err := store.MarkRead(ctx, id.NewNotificationID(), owner)
		assert.Error(t, err)
	})
}

func TestMemoryStoreListOrder(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	owner := id.NewMemberID()

	base := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, store.Create(ctx, &Notification{
			ID:        id.NewNotificationID(),
			MemberID:  owner,
			Title:     "t",
			Message:   "m",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	listed, err := store.ListByMember(ctx, owner)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.True(t, listed[0].CreatedAt.After(listed[1].CreatedAt), "newest first")
	assert.True(t, listed[1].CreatedAt.After(listed[2].CreatedAt))
}
