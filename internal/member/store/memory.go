package store

import (
	"context"
	"sync"
	"time"

	"downline/internal/member/models"
	id "downline/pkg/domain"
	"downline/pkg/platform/sentinel"
)

// Memory is an in-memory Store for unit tests. It mirrors the Postgres
// implementation's semantics, including the conflict causes and the guarded
// promotion, behind a coarse lock.
type Memory struct {
	mu      sync.RWMutex
	members map[id.MemberID]*models.Member
	byCode  map[id.ReferralCode]id.MemberID
	byEmail map[string]id.MemberID
}

// NewMemory constructs an empty in-memory member store.
func NewMemory() *Memory {
	return &Memory{
		members: make(map[id.MemberID]*models.Member),
		byCode:  make(map[id.ReferralCode]id.MemberID),
		byEmail: make(map[string]id.MemberID),
	}
}

func (s *Memory) Create(_ context.Context, m *models.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[m.Email]; ok {
		return ErrEmailTaken
	}
	if _, ok := s.byCode[m.ReferralCode]; ok {
		return ErrReferralCodeTaken
	}
	clone := cloneMember(m)
	s.members[m.ID] = clone
	s.byCode[m.ReferralCode] = m.ID
	s.byEmail[m.Email] = m.ID
	return nil
}

func (s *Memory) FindByID(_ context.Context, memberID id.MemberID) (*models.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.members[memberID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneMember(m), nil
}

func (s *Memory) FindByReferralCode(_ context.Context, code id.ReferralCode) (*models.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	memberID, ok := s.byCode[code]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneMember(s.members[memberID]), nil
}

func (s *Memory) IncrementDirectSponsorCount(_ context.Context, memberID id.MemberID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.members[memberID]
	if !ok {
		return sentinel.ErrNotFound
	}
	m.DirectSponsorCount++
	return nil
}

func (s *Memory) IncrementTeamCounts(_ context.Context, memberIDs []id.MemberID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, memberID := range memberIDs {
		if _, ok := s.members[memberID]; !ok {
			return sentinel.ErrInvalidState
		}
	}
	for _, memberID := range memberIDs {
		s.members[memberID].TotalTeamCount++
	}
	return nil
}

func (s *Memory) PromoteQualified(_ context.Context, memberIDs []id.MemberID, t models.Thresholds, now time.Time) ([]id.MemberID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var promoted []id.MemberID
	for _, memberID := range memberIDs {
		m, ok := s.members[memberID]
		if !ok {
			continue
		}
		if m.QualifiedAt == nil && m.MeetsThresholds(t) {
			stamp := now
			m.QualifiedAt = &stamp
			promoted = append(promoted, memberID)
		}
	}
	return promoted, nil
}

func (s *Memory) ListDownline(_ context.Context, memberID id.MemberID) ([]*models.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var members []*models.Member
	for _, m := range s.members {
		if m.HasAncestor(memberID) {
			members = append(members, cloneMember(m))
		}
	}
	return members, nil
}

func (s *Memory) CountDownline(_ context.Context, memberID id.MemberID, now time.Time) (DownlineCounts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var counts DownlineCounts
	for _, m := range s.members {
		if !m.HasAncestor(memberID) {
			continue
		}
		counts.All++
		if !m.CreatedAt.Before(now.Add(-24 * time.Hour)) {
			counts.Last24h++
		}
		if !m.CreatedAt.Before(now.Add(-7 * 24 * time.Hour)) {
			counts.Last7d++
		}
		if !m.CreatedAt.Before(now.Add(-30 * 24 * time.Hour)) {
			counts.Last30d++
		}
		if m.QualifiedAt != nil {
			counts.NewlyQualified++
		}
	}
	return counts, nil
}

func cloneMember(m *models.Member) *models.Member {
	clone := *m
	clone.AncestorChain = append([]id.MemberID(nil), m.AncestorChain...)
	if m.QualifiedAt != nil {
		t := *m.QualifiedAt
		clone.QualifiedAt = &t
	}
	return &clone
}
