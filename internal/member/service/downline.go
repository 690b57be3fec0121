package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"

	"downline/internal/member/models"
	"downline/internal/member/store"
	id "downline/pkg/domain"
	dErrors "downline/pkg/domain-errors"
	"downline/pkg/platform/sentinel"
	"downline/pkg/requestcontext"
)

// SponsorPreview is the public, pre-registration view of a sponsor. It
// deliberately exposes nothing beyond what the join form needs to render.
type SponsorPreview struct {
	ID          id.MemberID `json:"id"`
	FirstName   string      `json:"firstName"`
	LastName    string      `json:"lastName"`
	RootAdminID id.MemberID `json:"rootAdminId"`
}

// SponsorByReferralCode resolves a referral code for the public join form.
// Reads through the cache when one is configured; previews are immutable
// enough (names and tree root) that a short TTL is safe.
func (s *Service) SponsorByReferralCode(ctx context.Context, rawCode string) (*SponsorPreview, error) {
	code, err := id.ParseReferralCode(rawCode)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if preview, ok := s.cache.Get(ctx, code); ok {
			return preview, nil
		}
	}

	member, err := s.members.FindByReferralCode(ctx, code)
	if err != nil {
		return nil, translateSponsorLookup(err)
	}

	preview := &SponsorPreview{
		ID:          member.ID,
		FirstName:   member.FirstName,
		LastName:    member.LastName,
		RootAdminID: member.RootAdminID,
	}
	if s.cache != nil {
		s.cache.Set(ctx, code, preview)
	}
	return preview, nil
}

// Profile returns the caller's own member record.
func (s *Service) Profile(ctx context.Context, memberID id.MemberID) (*models.Member, error) {
	member, err := s.members.FindByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "member not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not load member")
	}
	return member, nil
}

// ListDownline returns every member anywhere below memberID, any depth, via
// the ancestor index.
func (s *Service) ListDownline(ctx context.Context, memberID id.MemberID) ([]*models.Member, error) {
	ctx, span := s.tracer.Start(ctx, "member.ListDownline")
	defer span.End()

	members, err := s.members.ListDownline(ctx, memberID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not load downline")
	}
	span.SetAttributes(attribute.Int("downline.size", len(members)))
	return members, nil
}

// CountDownline returns the time-bucketed downline counts for memberID.
func (s *Service) CountDownline(ctx context.Context, memberID id.MemberID) (store.DownlineCounts, error) {
	counts, err := s.members.CountDownline(ctx, memberID, requestcontext.Now(ctx))
	if err != nil {
		return store.DownlineCounts{}, dErrors.Wrap(err, dErrors.CodeInternal, "could not count downline")
	}
	return counts, nil
}
