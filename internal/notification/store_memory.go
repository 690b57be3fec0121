package notification

import (
	"context"
	"sort"
	"sync"
	"time"

	id "downline/pkg/domain"
	"downline/pkg/platform/sentinel"
)

// MemoryStore is an in-memory notification store for unit tests.
type MemoryStore struct {
	mu            sync.RWMutex
	notifications map[id.NotificationID]*Notification
}

// NewMemoryStore constructs an empty in-memory notification store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{notifications: make(map[id.NotificationID]*Notification)}
}

func (s *MemoryStore) Create(_ context.Context, n *Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *n
	s.notifications[n.ID] = &clone
	return nil
}

func (s *MemoryStore) ListByMember(_ context.Context, memberID id.MemberID) ([]*Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*Notification
	for _, n := range s.notifications {
		if n.MemberID == memberID {
			clone := *n
			result = append(result, &clone)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (s *MemoryStore) MarkRead(_ context.Context, notificationID id.NotificationID, memberID id.MemberID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[notificationID]
	if !ok || n.MemberID != memberID {
		return sentinel.ErrNotFound
	}
	n.Read = true
	return nil
}

// MemoryOutbox is an in-memory outbox for unit tests.
type MemoryOutbox struct {
	mu      sync.Mutex
	entries []*OutboxEntry
}

// NewMemoryOutbox constructs an empty in-memory outbox.
func NewMemoryOutbox() *MemoryOutbox {
	return &MemoryOutbox{}
}

func (s *MemoryOutbox) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, &OutboxEntry{
		ID:        id.NewNotificationID(),
		Event:     event,
		CreatedAt: time.Now().UTC(),
	})
	return nil
}

func (s *MemoryOutbox) Unpublished(_ context.Context, limit int) ([]*OutboxEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []*OutboxEntry
	for _, e := range s.entries {
		if len(result) == limit {
			break
		}
		clone := *e
		result = append(result, &clone)
	}
	return result, nil
}

func (s *MemoryOutbox) MarkPublished(_ context.Context, entryID id.NotificationID, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.entries {
		if e.ID == entryID {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return nil
		}
	}
	return nil
}

// Pending reports how many entries await publication; test helper.
func (s *MemoryOutbox) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
