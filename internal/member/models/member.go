// Package models holds the member entity and the pure hierarchy computations
// the registration transaction and the read side both depend on.
package models

import (
	"time"

	id "downline/pkg/domain"
	dErrors "downline/pkg/domain-errors"
)

// Member is the central entity: one node of a referral tree.
//
// Structural fields (ID, ReferralCode, SponsorID, AncestorChain, Level,
// RootAdminID, CreatedAt) are computed once at registration and never mutated.
// Only the two aggregate counters and QualifiedAt change afterwards, and only
// inside a registration transaction.
type Member struct {
	ID        id.MemberID
	Email     string
	FirstName string
	LastName  string
	Country   string
	State     string
	City      string

	// ReferralCode is the code this member hands out to recruits.
	ReferralCode id.ReferralCode
	// ReferredBy is the sponsor's referral code as supplied at registration;
	// empty for a root member.
	ReferredBy id.ReferralCode

	// SponsorID is the immediate parent; nil-ID for a root.
	SponsorID id.MemberID

	// AncestorChain lists every ancestor root-first: the first element is the
	// root of the tree and the last is the immediate sponsor. Invariant:
	// chain == sponsor.chain + [sponsor.ID]. Empty for a root.
	AncestorChain []id.MemberID

	// Level is the depth in the tree, len(AncestorChain)+1. Roots are level 1.
	Level int

	// RootAdminID scopes the member to the root admin of its tree.
	// For a root member it is the member's own ID.
	RootAdminID id.MemberID

	DirectSponsorCount int64
	TotalTeamCount     int64

	// QualifiedAt is nil until the one-way qualification transition fires.
	QualifiedAt *time.Time

	CreatedAt time.Time
}

// Identity carries the registration fields the caller must supply.
type Identity struct {
	Email     string
	FirstName string
	LastName  string
	Country   string
	State     string
	City      string
}

// Validate rejects identities with missing required fields before any side
// effect runs.
func (i Identity) Validate() error {
	if i.Email == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "email is required")
	}
	if i.FirstName == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "first name is required")
	}
	if i.LastName == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "last name is required")
	}
	if i.Country == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "country is required")
	}
	return nil
}

// ChildChain computes a recruit's ancestor chain from its sponsor: the
// sponsor's own chain with the sponsor appended. The result is a fresh slice;
// chains are immutable once persisted.
func ChildChain(sponsor *Member) []id.MemberID {
	chain := make([]id.MemberID, 0, len(sponsor.AncestorChain)+1)
	chain = append(chain, sponsor.AncestorChain...)
	chain = append(chain, sponsor.ID)
	return chain
}

// NewRoot builds a level-1 member with no sponsor. The member is its own
// root admin.
func NewRoot(memberID id.MemberID, identity Identity, code id.ReferralCode, now time.Time) (*Member, error) {
	if err := identity.Validate(); err != nil {
		return nil, err
	}
	if memberID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "member id is required")
	}
	return &Member{
		ID:            memberID,
		Email:         identity.Email,
		FirstName:     identity.FirstName,
		LastName:      identity.LastName,
		Country:       identity.Country,
		State:         identity.State,
		City:          identity.City,
		ReferralCode:  code,
		AncestorChain: []id.MemberID{},
		Level:         1,
		RootAdminID:   memberID,
		CreatedAt:     now,
	}, nil
}

// NewRecruit builds a member under the given sponsor, deriving chain, level
// and root admin from the sponsor's persisted state.
func NewRecruit(memberID id.MemberID, identity Identity, code id.ReferralCode, sponsor *Member, now time.Time) (*Member, error) {
	if err := identity.Validate(); err != nil {
		return nil, err
	}
	if memberID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "member id is required")
	}
	if sponsor == nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "sponsor is required")
	}
	rootAdmin := sponsor.RootAdminID
	if rootAdmin.IsNil() {
		rootAdmin = sponsor.ID
	}
	chain := ChildChain(sponsor)
	return &Member{
		ID:            memberID,
		Email:         identity.Email,
		FirstName:     identity.FirstName,
		LastName:      identity.LastName,
		Country:       identity.Country,
		State:         identity.State,
		City:          identity.City,
		ReferralCode:  code,
		ReferredBy:    sponsor.ReferralCode,
		SponsorID:     sponsor.ID,
		AncestorChain: chain,
		Level:         len(chain) + 1,
		RootAdminID:   rootAdmin,
		CreatedAt:     now,
	}, nil
}

// IsRoot reports whether the member sits at the top of a tree.
func (m *Member) IsRoot() bool { return m.SponsorID.IsNil() }

// Qualified reports whether the one-way qualification transition has fired.
func (m *Member) Qualified() bool { return m.QualifiedAt != nil }

// HasAncestor reports whether ancestorID appears in the member's chain.
func (m *Member) HasAncestor(ancestorID id.MemberID) bool {
	for _, a := range m.AncestorChain {
		if a == ancestorID {
			return true
		}
	}
	return false
}

// Thresholds are the externally configured qualification minimums.
type Thresholds struct {
	MinDirectSponsors int64
	MinTeamSize       int64
}

// MeetsThresholds reports whether the member's current counters satisfy both
// qualification minimums. The caller still guards on QualifiedAt being nil
// inside the same transaction so the transition fires exactly once.
func (m *Member) MeetsThresholds(t Thresholds) bool {
	return m.DirectSponsorCount >= t.MinDirectSponsors && m.TotalTeamCount >= t.MinTeamSize
}
