package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"

	"downline/internal/identity"
	"downline/internal/member/models"
	"downline/internal/member/store"
	"downline/internal/notification"
	id "downline/pkg/domain"
	dErrors "downline/pkg/domain-errors"
	"downline/pkg/platform/sentinel"
)

// passthroughTx runs the function directly. The memory stores have no real
// transactions, so unit tests exercise ordering and compensation, while the
// integration tests cover atomicity.
type passthroughTx struct{}

func (passthroughTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// failingTx simulates a transaction that could not commit. The function is
// never run, mirroring an aborted transaction's visible effect.
type failingTx struct{ err error }

func (t failingTx) RunInTx(context.Context, func(ctx context.Context) error) error {
	return t.err
}

// collidingStore makes the first n Create calls fail with a referral code
// collision.
type collidingStore struct {
	store.Store
	remaining int
	attempts  int
}

func (s *collidingStore) Create(ctx context.Context, m *models.Member) error {
	s.attempts++
	if s.remaining > 0 {
		s.remaining--
		return store.ErrReferralCodeTaken
	}
	return s.Store.Create(ctx, m)
}

type RegistrationSuite struct {
	suite.Suite
	ctx           context.Context
	members       *store.Memory
	credentials   *identity.Memory
	notifications *notification.MemoryStore
	outbox        *notification.MemoryOutbox
	service       *Service
}

func TestRegistrationSuite(t *testing.T) {
	suite.Run(t, new(RegistrationSuite))
}

func (s *RegistrationSuite) SetupTest() {
	s.ctx = context.Background()
	s.members = store.NewMemory()
	s.credentials = identity.NewMemory()
	s.notifications = notification.NewMemoryStore()
	s.outbox = notification.NewMemoryOutbox()

	emitter := notification.NewEmitter(s.notifications, s.outbox)
	s.service = New(s.members, passthroughTx{}, s.credentials, emitter,
		models.Thresholds{MinDirectSponsors: 2, MinTeamSize: 3})
}

func (s *RegistrationSuite) registerInput(email, sponsorCode string) RegisterInput {
	return RegisterInput{
		Identity: models.Identity{
			Email:     email,
			FirstName: "First",
			LastName:  "Last",
			Country:   "US",
		},
		Password:            "password123",
		SponsorReferralCode: sponsorCode,
	}
}

func (s *RegistrationSuite) register(email, sponsorCode string) id.MemberID {
	memberID, err := s.service.Register(s.ctx, s.registerInput(email, sponsorCode))
	s.Require().NoError(err)
	return memberID
}

func (s *RegistrationSuite) memberByID(memberID id.MemberID) *models.Member {
	m, err := s.members.FindByID(s.ctx, memberID)
	s.Require().NoError(err)
	return m
}

func (s *RegistrationSuite) TestRegisterRoot() {
	memberID := s.register("root@example.com", "")

	root := s.memberByID(memberID)
	s.Equal(1, root.Level)
	s.Empty(root.AncestorChain)
	s.True(root.SponsorID.IsNil())
	s.Equal(memberID, root.RootAdminID)
	s.Len(root.ReferralCode.String(), id.ReferralCodeLength)

	notifications, err := s.notifications.ListByMember(s.ctx, memberID)
	s.Require().NoError(err)
	s.Empty(notifications, "a root registration notifies nobody")
	s.Zero(s.outbox.Pending())
}

func (s *RegistrationSuite) TestRegisterWithSponsor() {
	rootID := s.register("root@example.com", "")
	root := s.memberByID(rootID)

	childID := s.register("child@example.com", root.ReferralCode.String())
	child := s.memberByID(childID)

	s.Equal(2, child.Level)
	s.Equal([]id.MemberID{rootID}, child.AncestorChain)
	s.Equal(rootID, child.SponsorID)
	s.Equal(rootID, child.RootAdminID)
	s.Equal(root.ReferralCode, child.ReferredBy)

	root = s.memberByID(rootID)
	s.Equal(int64(1), root.DirectSponsorCount)
	s.Equal(int64(1), root.TotalTeamCount)

	notifications, err := s.notifications.ListByMember(s.ctx, rootID)
	s.Require().NoError(err)
	s.Require().Len(notifications, 1)
	s.Equal("New Team Member", notifications[0].Title)
	s.Contains(notifications[0].Message, "First Last")
	s.Equal(1, s.outbox.Pending())
}

func (s *RegistrationSuite) TestRegisterThreeLevels() {
	rootID := s.register("root@example.com", "")
	childID := s.register("child@example.com", s.memberByID(rootID).ReferralCode.String())
	grandID := s.register("grand@example.com", s.memberByID(childID).ReferralCode.String())

	grand := s.memberByID(grandID)
	s.Equal(3, grand.Level)
	s.Equal([]id.MemberID{rootID, childID}, grand.AncestorChain, "chain is ordered root-first")
	s.Equal(rootID, grand.RootAdminID)

	root := s.memberByID(rootID)
	s.Equal(int64(1), root.DirectSponsorCount, "grandchild is not a direct recruit")
	s.Equal(int64(2), root.TotalTeamCount, "every descendant counts toward the team")

	child := s.memberByID(childID)
	s.Equal(int64(1), child.DirectSponsorCount)
	s.Equal(int64(1), child.TotalTeamCount)
}

func (s *RegistrationSuite) TestRegisterStaleCodeFailsBeforeAnySideEffect() {
	_, err := s.service.Register(s.ctx, s.registerInput("new@example.com", "ABC123"))
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	s.False(s.credentials.Exists("new@example.com"), "no credential may exist for a rejected registration")
}

func (s *RegistrationSuite) TestRegisterDuplicateEmail() {
	s.register("taken@example.com", "")

	_, err := s.service.Register(s.ctx, s.registerInput("taken@example.com", ""))
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *RegistrationSuite) TestRegisterValidation() {
	cases := []struct {
		name   string
		mutate func(*RegisterInput)
	}{
		{"missing email", func(in *RegisterInput) { in.Identity.Email = "" }},
		{"missing password", func(in *RegisterInput) { in.Password = "" }},
		{"missing first name", func(in *RegisterInput) { in.Identity.FirstName = "" }},
		{"malformed referral code", func(in *RegisterInput) { in.SponsorReferralCode = "nope" }},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			input := s.registerInput("valid@example.com", "")
			tc.mutate(&input)
			_, err := s.service.Register(s.ctx, input)
			s.Error(err)
			s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
			s.False(s.credentials.Exists("valid@example.com"))
		})
	}
}

func (s *RegistrationSuite) TestRegisterCompensatesOnTxFailure() {
	emitter := notification.NewEmitter(s.notifications, s.outbox)
	svc := New(s.members, failingTx{err: fmt.Errorf("commit: %w", sentinel.ErrSerialization)},
		s.credentials, emitter, models.Thresholds{MinDirectSponsors: 2, MinTeamSize: 3})

	_, err := svc.Register(s.ctx, s.registerInput("rollback@example.com", ""))
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	s.False(s.credentials.Exists("rollback@example.com"),
		"the credential must be deleted when the transaction fails")
}

func (s *RegistrationSuite) TestRegisterCompensationFailureIsSurvivable() {
	emitter := notification.NewEmitter(s.notifications, s.outbox)
	svc := New(s.members, failingTx{err: errors.New("tx exploded")},
		s.credentials, emitter, models.Thresholds{MinDirectSponsors: 2, MinTeamSize: 3})
	s.credentials.FailDelete = true

	_, err := svc.Register(s.ctx, s.registerInput("orphan@example.com", ""))
	s.Require().Error(err)
	// The credential is orphaned; registration still reports the failure.
	s.True(s.credentials.Exists("orphan@example.com"))
}

func (s *RegistrationSuite) TestRegisterRetriesReferralCodeCollision() {
	colliding := &collidingStore{Store: s.members, remaining: 1}
	emitter := notification.NewEmitter(s.notifications, s.outbox)
	svc := New(colliding, passthroughTx{}, s.credentials, emitter,
		models.Thresholds{MinDirectSponsors: 2, MinTeamSize: 3})

	memberID, err := svc.Register(s.ctx, s.registerInput("lucky@example.com", ""))
	s.Require().NoError(err)
	s.Equal(2, colliding.attempts, "one collision, one successful retry with a fresh code")
	s.False(s.memberByID(memberID).ReferralCode.IsNil())
}

func (s *RegistrationSuite) TestRegisterGivesUpAfterRepeatedCollisions() {
	colliding := &collidingStore{Store: s.members, remaining: 100}
	emitter := notification.NewEmitter(s.notifications, s.outbox)
	svc := New(colliding, passthroughTx{}, s.credentials, emitter,
		models.Thresholds{MinDirectSponsors: 2, MinTeamSize: 3})

	_, err := svc.Register(s.ctx, s.registerInput("unlucky@example.com", ""))
	s.Require().Error(err)
	s.Equal(referralCodeAttempts, colliding.attempts)
	s.False(s.credentials.Exists("unlucky@example.com"), "compensation also covers collision exhaustion")
}

func (s *RegistrationSuite) TestQualificationFiresExactlyOnce() {
	rootID := s.register("root@example.com", "")
	rootCode := s.memberByID(rootID).ReferralCode.String()

	aID := s.register("a@example.com", rootCode)
	s.register("b@example.com", rootCode)
	s.Nil(s.memberByID(rootID).QualifiedAt, "direct=2 team=2 is still below the team threshold")

	// Third team member arrives under A: root reaches direct=2, team=3.
	s.register("c@example.com", s.memberByID(aID).ReferralCode.String())

	root := s.memberByID(rootID)
	s.Require().NotNil(root.QualifiedAt)
	s.Nil(s.memberByID(aID).QualifiedAt, "A has direct=1 team=1 and must not qualify")

	qualifiedCount := func() int {
		notifications, err := s.notifications.ListByMember(s.ctx, rootID)
		s.Require().NoError(err)
		n := 0
		for _, notif := range notifications {
			if notif.Title == "Congratulations, you are qualified!" {
				n++
			}
		}
		return n
	}
	s.Equal(1, qualifiedCount())

	// Further growth must not re-fire the transition.
	firstQualifiedAt := *root.QualifiedAt
	s.register("d@example.com", rootCode)
	root = s.memberByID(rootID)
	s.True(root.QualifiedAt.Equal(firstQualifiedAt))
	s.Equal(1, qualifiedCount())
}

func (s *RegistrationSuite) TestSponsorByReferralCode() {
	rootID := s.register("root@example.com", "")
	code := s.memberByID(rootID).ReferralCode.String()

	preview, err := s.service.SponsorByReferralCode(s.ctx, code)
	s.Require().NoError(err)
	s.Equal(rootID, preview.ID)
	s.Equal("First", preview.FirstName)
	s.Equal(rootID, preview.RootAdminID)

	s.Run("unknown code", func() {
		_, err := s.service.SponsorByReferralCode(s.ctx, "ABC123")
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("malformed code", func() {
		_, err := s.service.SponsorByReferralCode(s.ctx, "zz")
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

// fakeCache records lookups so cache behavior is observable.
type fakeCache struct {
	entries map[id.ReferralCode]*SponsorPreview
	hits    int
	misses  int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[id.ReferralCode]*SponsorPreview)}
}

func (c *fakeCache) Get(_ context.Context, code id.ReferralCode) (*SponsorPreview, bool) {
	preview, ok := c.entries[code]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return preview, ok
}

func (c *fakeCache) Set(_ context.Context, code id.ReferralCode, preview *SponsorPreview) {
	c.entries[code] = preview
}

func (s *RegistrationSuite) TestSponsorLookupReadsThroughCache() {
	cache := newFakeCache()
	emitter := notification.NewEmitter(s.notifications, s.outbox)
	svc := New(s.members, passthroughTx{}, s.credentials, emitter,
		models.Thresholds{MinDirectSponsors: 2, MinTeamSize: 3},
		WithSponsorCache(cache))

	memberID, err := svc.Register(s.ctx, s.registerInput("root@example.com", ""))
	s.Require().NoError(err)
	code := s.memberByID(memberID).ReferralCode.String()

	_, err = svc.SponsorByReferralCode(s.ctx, code)
	s.Require().NoError(err)
	s.Equal(1, cache.misses)

	_, err = svc.SponsorByReferralCode(s.ctx, code)
	s.Require().NoError(err)
	s.Equal(1, cache.hits, "second lookup must be served from the cache")
}

func (s *RegistrationSuite) TestDownlineQueries() {
	rootID := s.register("root@example.com", "")
	rootCode := s.memberByID(rootID).ReferralCode.String()
	childID := s.register("child@example.com", rootCode)
	s.register("grand@example.com", s.memberByID(childID).ReferralCode.String())

	downline, err := s.service.ListDownline(s.ctx, rootID)
	s.Require().NoError(err)
	s.Len(downline, 2)

	counts, err := s.service.CountDownline(s.ctx, rootID)
	s.Require().NoError(err)
	s.Equal(int64(2), counts.All)
	s.Equal(int64(2), counts.Last24h)

	profile, err := s.service.Profile(s.ctx, rootID)
	s.Require().NoError(err)
	s.Equal("root@example.com", profile.Email)

	_, err = s.service.Profile(s.ctx, id.NewMemberID())
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}
