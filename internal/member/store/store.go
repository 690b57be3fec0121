// Package store persists member records and answers the ancestor-indexed
// downline queries. Mutating methods pick their executor from the context so
// they join the registration transaction when one is open.
package store

import (
	"context"
	"fmt"
	"time"

	"downline/internal/member/models"
	id "downline/pkg/domain"
	"downline/pkg/platform/sentinel"
)

// Conflict causes, wrapped around sentinel.ErrConflict so services can react
// to the specific constraint without importing driver types.
var (
	ErrEmailTaken        = fmt.Errorf("email already registered: %w", sentinel.ErrConflict)
	ErrReferralCodeTaken = fmt.Errorf("referral code taken: %w", sentinel.ErrConflict)
)

// DownlineCounts is the bucketed result of CountDownline. Every bucket is
// computed from the same ancestor-contains base filter.
type DownlineCounts struct {
	All            int64
	Last24h        int64
	Last7d         int64
	Last30d        int64
	NewlyQualified int64
}

// Store is the member persistence port.
type Store interface {
	// Create inserts a new member. Returns ErrEmailTaken or
	// ErrReferralCodeTaken on the respective unique violations.
	Create(ctx context.Context, m *models.Member) error

	// FindByID returns sentinel.ErrNotFound when the member does not exist.
	FindByID(ctx context.Context, memberID id.MemberID) (*models.Member, error)

	// FindByReferralCode resolves a sponsor code to its member.
	// Returns sentinel.ErrNotFound for stale or revoked codes.
	FindByReferralCode(ctx context.Context, code id.ReferralCode) (*models.Member, error)

	// IncrementDirectSponsorCount adds one direct recruit to the immediate
	// sponsor. Exactly one call per registration.
	IncrementDirectSponsorCount(ctx context.Context, memberID id.MemberID) error

	// IncrementTeamCounts adds one team member to every listed ancestor.
	// Exactly one call per registration, covering the whole chain.
	IncrementTeamCounts(ctx context.Context, memberIDs []id.MemberID) error

	// PromoteQualified stamps qualified_at on every listed member that is
	// still unqualified and now meets both thresholds, returning the IDs
	// that transitioned. The guard on qualified_at makes the transition
	// fire at most once even under concurrent registrations.
	PromoteQualified(ctx context.Context, memberIDs []id.MemberID, t models.Thresholds, now time.Time) ([]id.MemberID, error)

	// ListDownline returns every member whose ancestor chain contains
	// memberID. One indexed query, never a recursive walk. No ordering.
	ListDownline(ctx context.Context, memberID id.MemberID) ([]*models.Member, error)

	// CountDownline buckets the downline by creation time and qualification,
	// all from the single ancestor-contains filter. The result can trail
	// the live totalTeamCount by whatever registrations are in flight.
	CountDownline(ctx context.Context, memberID id.MemberID, now time.Time) (DownlineCounts, error)
}
