package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"downline/internal/member/models"
	id "downline/pkg/domain"
	"downline/pkg/platform/sentinel"
)

func newTestMember(t *testing.T, email string, code id.ReferralCode, sponsor *models.Member) *models.Member {
	t.Helper()
	identity := models.Identity{
		Email:     email,
		FirstName: "Test",
		LastName:  "Member",
		Country:   "US",
	}
	var (
		m   *models.Member
		err error
	)
	if sponsor == nil {
		m, err = models.NewRoot(id.NewMemberID(), identity, code, time.Now())
	} else {
		m, err = models.NewRecruit(id.NewMemberID(), identity, code, sponsor, time.Now())
	}
	require.NoError(t, err)
	return m
}

func TestMemoryCreate(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	root := newTestMember(t, "root@example.com", "AAAAAA", nil)
	require.NoError(t, s.Create(ctx, root))

	t.Run("duplicate email", func(t *testing.T) {
		dup := newTestMember(t, "root@example.com", "BBBBBB", nil)
		err := s.Create(ctx, dup)
		assert.ErrorIs(t, err, ErrEmailTaken)
		assert.ErrorIs(t, err, sentinel.ErrConflict)
	})

	t.Run("duplicate referral code", func(t *testing.T) {
		dup := newTestMember(t, "other@example.com", "AAAAAA", nil)
		err := s.Create(ctx, dup)
		assert.ErrorIs(t, err, ErrReferralCodeTaken)
		assert.ErrorIs(t, err, sentinel.ErrConflict)
	})

	t.Run("find by id returns a copy", func(t *testing.T) {
		found, err := s.FindByID(ctx, root.ID)
		require.NoError(t, err)
		found.FirstName = "Mutated"
		again, err := s.FindByID(ctx, root.ID)
		require.NoError(t, err)
		assert.Equal(t, "Test", again.FirstName)
	})

	t.Run("find by referral code", func(t *testing.T) {
		found, err := s.FindByReferralCode(ctx, "AAAAAA")
		require.NoError(t, err)
		assert.Equal(t, root.ID, found.ID)

		_, err = s.FindByReferralCode(ctx, "ZZZZZZ")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}

func TestMemoryCounters(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	root := newTestMember(t, "root@example.com", "AAAAAA", nil)
	require.NoError(t, s.Create(ctx, root))
	child := newTestMember(t, "child@example.com", "BBBBBB", root)
	require.NoError(t, s.Create(ctx, child))

	require.NoError(t, s.IncrementDirectSponsorCount(ctx, root.ID))
	require.NoError(t, s.IncrementTeamCounts(ctx, child.AncestorChain))

	got, err := s.FindByID(ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.DirectSponsorCount)
	assert.Equal(t, int64(1), got.TotalTeamCount)

	t.Run("unknown member", func(t *testing.T) {
		assert.Error(t, s.IncrementDirectSponsorCount(ctx, id.NewMemberID()))
		assert.Error(t, s.IncrementTeamCounts(ctx, []id.MemberID{id.NewMemberID()}))
	})
}

func TestMemoryPromoteQualified(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	thresholds := models.Thresholds{MinDirectSponsors: 2, MinTeamSize: 3}

	root := newTestMember(t, "root@example.com", "AAAAAA", nil)
	require.NoError(t, s.Create(ctx, root))

	t.Run("below thresholds, nothing promoted", func(t *testing.T) {
		promoted, err := s.PromoteQualified(ctx, []id.MemberID{root.ID}, thresholds, time.Now())
		require.NoError(t, err)
		assert.Empty(t, promoted)
	})

	// Push root past both thresholds.
	require.NoError(t, s.IncrementDirectSponsorCount(ctx, root.ID))
	require.NoError(t, s.IncrementDirectSponsorCount(ctx, root.ID))
	for i := 0; i < 3; i++ {
		require.NoError(t, s.IncrementTeamCounts(ctx, []id.MemberID{root.ID}))
	}

	now := time.Now()
	t.Run("promotion fires once", func(t *testing.T) {
		promoted, err := s.PromoteQualified(ctx, []id.MemberID{root.ID}, thresholds, now)
		require.NoError(t, err)
		assert.Equal(t, []id.MemberID{root.ID}, promoted)

		got, err := s.FindByID(ctx, root.ID)
		require.NoError(t, err)
		require.NotNil(t, got.QualifiedAt)
		assert.True(t, got.QualifiedAt.Equal(now))
	})

	t.Run("already qualified is never promoted again", func(t *testing.T) {
		promoted, err := s.PromoteQualified(ctx, []id.MemberID{root.ID}, thresholds, time.Now())
		require.NoError(t, err)
		assert.Empty(t, promoted)

		got, err := s.FindByID(ctx, root.ID)
		require.NoError(t, err)
		assert.True(t, got.QualifiedAt.Equal(now), "original qualification timestamp must not move")
	})

	t.Run("unknown ids are skipped", func(t *testing.T) {
		promoted, err := s.PromoteQualified(ctx, []id.MemberID{id.NewMemberID()}, thresholds, time.Now())
		require.NoError(t, err)
		assert.Empty(t, promoted)
	})
}

func TestMemoryDownline(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	root := newTestMember(t, "root@example.com", "AAAAAA", nil)
	require.NoError(t, s.Create(ctx, root))
	child := newTestMember(t, "child@example.com", "BBBBBB", root)
	require.NoError(t, s.Create(ctx, child))
	grandchild := newTestMember(t, "grand@example.com", "CCCCCC", child)
	require.NoError(t, s.Create(ctx, grandchild))

	sibling := newTestMember(t, "sibling-root@example.com", "DDDDDD", nil)
	require.NoError(t, s.Create(ctx, sibling))

	t.Run("list spans all depths", func(t *testing.T) {
		downline, err := s.ListDownline(ctx, root.ID)
		require.NoError(t, err)
		ids := make(map[id.MemberID]bool, len(downline))
		for _, m := range downline {
			ids[m.ID] = true
		}
		assert.Len(t, downline, 2)
		assert.True(t, ids[child.ID])
		assert.True(t, ids[grandchild.ID])
	})

	t.Run("leaf has empty downline", func(t *testing.T) {
		downline, err := s.ListDownline(ctx, grandchild.ID)
		require.NoError(t, err)
		assert.Empty(t, downline)
	})

	t.Run("other trees are invisible", func(t *testing.T) {
		downline, err := s.ListDownline(ctx, sibling.ID)
		require.NoError(t, err)
		assert.Empty(t, downline)
	})

	t.Run("counts bucket by age", func(t *testing.T) {
		counts, err := s.CountDownline(ctx, root.ID, time.Now())
		require.NoError(t, err)
		assert.Equal(t, int64(2), counts.All)
		assert.Equal(t, int64(2), counts.Last24h)
		assert.Equal(t, int64(2), counts.Last7d)
		assert.Equal(t, int64(2), counts.Last30d)
		assert.Zero(t, counts.NewlyQualified)

		// A week from now the 24h bucket empties out.
		future, err := s.CountDownline(ctx, root.ID, time.Now().Add(8*24*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, int64(2), future.All)
		assert.Zero(t, future.Last24h)
		assert.Zero(t, future.Last7d)
		assert.Equal(t, int64(2), future.Last30d)
	})
}
