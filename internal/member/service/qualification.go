package service

import (
	"context"
	"time"

	id "downline/pkg/domain"
)

// promoteQualified flips every listed ancestor that now meets the
// qualification thresholds and records a notification for each. The store's
// guarded update makes the transition exactly-once: an already qualified
// member is never returned twice even under concurrent registrations.
func (s *Service) promoteQualified(ctx context.Context, ancestors []id.MemberID, now time.Time) ([]id.MemberID, error) {
	if len(ancestors) == 0 {
		return nil, nil
	}
	promoted, err := s.members.PromoteQualified(ctx, ancestors, s.thresholds, now)
	if err != nil {
		return nil, err
	}
	for _, memberID := range promoted {
		if err := s.notifier.EmitQualified(ctx, memberID); err != nil {
			return nil, err
		}
	}
	return promoted, nil
}
