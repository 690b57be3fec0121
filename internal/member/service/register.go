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

// RegisterInput carries everything the registration entry point accepts.
type RegisterInput struct {
	Identity models.Identity
	Password string

	// SponsorReferralCode is optional; absent means the new member becomes
	// the root of its own tree.
	SponsorReferralCode string
}

// referralCodeAttempts bounds regeneration when a generated code collides.
const referralCodeAttempts = 3

// Register inserts a new member into the tree and atomically updates every
// ancestor's aggregate state.
//
// Order of effects:
//  1. validation, then sponsor resolution (fail before any side effect)
//  2. credential allocation (the one non-atomic boundary)
//  3. one transaction: member insert, sponsor directSponsorCount+1, every
//     ancestor's totalTeamCount+1, threshold-guarded promotions, and the
//     notification records for the sponsor and any promoted ancestors
//  4. on transaction failure, a compensating credential delete
func (s *Service) Register(ctx context.Context, input RegisterInput) (id.MemberID, error) {
	ctx, span := s.tracer.Start(ctx, "member.Register")
	defer span.End()

	if err := input.Identity.Validate(); err != nil {
		s.metrics.RecordRegistration("invalid")
		return id.MemberID{}, err
	}
	if input.Password == "" {
		s.metrics.RecordRegistration("invalid")
		return id.MemberID{}, dErrors.New(dErrors.CodeInvalidInput, "password is required")
	}

	var sponsorCode id.ReferralCode
	if input.SponsorReferralCode != "" {
		code, err := id.ParseReferralCode(input.SponsorReferralCode)
		if err != nil {
			s.metrics.RecordRegistration("invalid")
			return id.MemberID{}, err
		}
		sponsorCode = code
		// Fail-fast resolution so a stale code never allocates a credential.
		// The transaction re-reads the sponsor; this read is advisory.
		if _, err := s.members.FindByReferralCode(ctx, sponsorCode); err != nil {
			s.metrics.RecordRegistration("sponsor_not_found")
			return id.MemberID{}, translateSponsorLookup(err)
		}
	}
	span.SetAttributes(attribute.Bool("member.has_sponsor", !sponsorCode.IsNil()))

	memberID, err := s.identity.Create(ctx, input.Identity.Email, input.Password)
	if err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			s.metrics.RecordRegistration("duplicate_identity")
			return id.MemberID{}, dErrors.New(dErrors.CodeConflict, "this email address is already in use")
		}
		var de *dErrors.Error
		if errors.As(err, &de) {
			s.metrics.RecordRegistration("invalid")
			return id.MemberID{}, err
		}
		s.metrics.RecordRegistration("identity_error")
		return id.MemberID{}, dErrors.Wrap(err, dErrors.CodeInternal, "could not create account")
	}

	member, promoted, err := s.registerTx(ctx, memberID, input.Identity, sponsorCode)
	if err != nil {
		s.compensateIdentity(ctx, memberID)
		s.metrics.RecordRegistration("failed")
		return id.MemberID{}, translateRegisterErr(err)
	}

	s.metrics.RecordRegistration("success")
	s.metrics.RecordQualifications(len(promoted))
	s.logger.InfoContext(ctx, "member registered",
		"member_id", member.ID.String(),
		"level", member.Level,
		"root_admin_id", member.RootAdminID.String(),
		"promoted_ancestors", len(promoted),
		"request_id", requestcontext.RequestID(ctx),
		"client_ip", requestcontext.ClientIP(ctx),
		"user_agent", requestcontext.UserAgent(ctx),
	)
	return member.ID, nil
}

// registerTx runs the atomic part of registration, retrying with a fresh
// referral code in the rare case a generated code collides.
func (s *Service) registerTx(ctx context.Context, memberID id.MemberID, identity models.Identity, sponsorCode id.ReferralCode) (*models.Member, []id.MemberID, error) {
	var lastErr error
	for attempt := 0; attempt < referralCodeAttempts; attempt++ {
		member, promoted, err := s.runRegistration(ctx, memberID, identity, sponsorCode, id.NewReferralCode())
		if err == nil {
			return member, promoted, nil
		}
		if !errors.Is(err, store.ErrReferralCodeTaken) {
			return nil, nil, err
		}
		lastErr = err
	}
	return nil, nil, lastErr
}

func (s *Service) runRegistration(ctx context.Context, memberID id.MemberID, identity models.Identity, sponsorCode, newCode id.ReferralCode) (*models.Member, []id.MemberID, error) {
	var (
		member   *models.Member
		promoted []id.MemberID
	)
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		now := requestcontext.Now(txCtx)

		var sponsor *models.Member
		if !sponsorCode.IsNil() {
			found, err := s.members.FindByReferralCode(txCtx, sponsorCode)
			if err != nil {
				return translateSponsorLookup(err)
			}
			sponsor = found
		}

		var err error
		if sponsor == nil {
			member, err = models.NewRoot(memberID, identity, newCode, now)
		} else {
			member, err = models.NewRecruit(memberID, identity, newCode, sponsor, now)
		}
		if err != nil {
			return err
		}

		if err := s.members.Create(txCtx, member); err != nil {
			return err
		}

		if sponsor == nil {
			return nil
		}

		if err := s.members.IncrementDirectSponsorCount(txCtx, sponsor.ID); err != nil {
			return err
		}
		if err := s.members.IncrementTeamCounts(txCtx, member.AncestorChain); err != nil {
			return err
		}

		promoted, err = s.promoteQualified(txCtx, member.AncestorChain, now)
		if err != nil {
			return err
		}

		recruitName := identity.FirstName + " " + identity.LastName
		return s.notifier.EmitSponsorship(txCtx, sponsor.ID, recruitName)
	})
	if err != nil {
		return nil, nil, err
	}
	return member, promoted, nil
}

// compensateIdentity rolls back the credential allocated ahead of the failed
// transactional write. A half-completed registration (credential exists,
// member record does not) is a correctness bug, so a failed delete is logged
// and counted for alerting rather than swallowed.
func (s *Service) compensateIdentity(ctx context.Context, memberID id.MemberID) {
	if err := s.identity.Delete(ctx, memberID); err != nil {
		s.metrics.RecordCompensation(true)
		s.logger.ErrorContext(ctx, "compensating credential delete failed, orphaned credential requires repair",
			"member_id", memberID.String(),
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return
	}
	s.metrics.RecordCompensation(false)
}

func translateSponsorLookup(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "the provided referral code is not valid")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "could not resolve sponsor")
}

func translateRegisterErr(err error) error {
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	switch {
	case errors.Is(err, store.ErrEmailTaken):
		return dErrors.New(dErrors.CodeConflict, "this email address is already in use")
	case errors.Is(err, sentinel.ErrSerialization):
		return dErrors.Wrap(err, dErrors.CodeInternal, "registration could not be completed, please retry")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "a server error occurred while saving the registration")
	}
}
