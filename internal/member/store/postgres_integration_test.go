//go:build integration

package store_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"downline/internal/member/models"
	"downline/internal/member/store"
	platformpg "downline/internal/platform/postgres"
	id "downline/pkg/domain"
	"downline/pkg/platform/sentinel"
	"downline/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	ctx context.Context
	pg  *containers.PostgresContainer
	st  *store.Postgres
	tx  *platformpg.TxRunner
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	s.pg = containers.NewPostgresContainer(s.T())
	s.st = store.NewPostgres(s.pg.DB)
	s.tx = platformpg.NewTxRunner(s.pg.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.pg.Truncate(s.ctx, s.T())
}

func (s *PostgresStoreSuite) newMember(email string, code id.ReferralCode, sponsor *models.Member) *models.Member {
	identity := models.Identity{Email: email, FirstName: "Test", LastName: "Member", Country: "US"}
	var (
		m   *models.Member
		err error
	)
	if sponsor == nil {
		m, err = models.NewRoot(id.NewMemberID(), identity, code, time.Now().UTC())
	} else {
		m, err = models.NewRecruit(id.NewMemberID(), identity, code, sponsor, time.Now().UTC())
	}
	s.Require().NoError(err)
	return m
}

func (s *PostgresStoreSuite) TestCreateAndFind() {
	root := s.newMember("root@example.com", "AAAAAA", nil)
	s.Require().NoError(s.st.Create(s.ctx, root))

	found, err := s.st.FindByID(s.ctx, root.ID)
	s.Require().NoError(err)
	s.Equal(root.Email, found.Email)
	s.Equal(1, found.Level)
	s.Empty(found.AncestorChain)
	s.Equal(root.RootAdminID, found.RootAdminID)
	s.Nil(found.QualifiedAt)

	byCode, err := s.st.FindByReferralCode(s.ctx, "AAAAAA")
	s.Require().NoError(err)
	s.Equal(root.ID, byCode.ID)

	_, err = s.st.FindByID(s.ctx, id.NewMemberID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestUniqueViolations() {
	root := s.newMember("root@example.com", "AAAAAA", nil)
	s.Require().NoError(s.st.Create(s.ctx, root))

	dupEmail := s.newMember("root@example.com", "BBBBBB", nil)
	s.ErrorIs(s.st.Create(s.ctx, dupEmail), store.ErrEmailTaken)

	dupCode := s.newMember("other@example.com", "AAAAAA", nil)
	s.ErrorIs(s.st.Create(s.ctx, dupCode), store.ErrReferralCodeTaken)
}

func (s *PostgresStoreSuite) TestAncestorChainRoundTrip() {
	root := s.newMember("root@example.com", "AAAAAA", nil)
	s.Require().NoError(s.st.Create(s.ctx, root))
	child := s.newMember("child@example.com", "BBBBBB", root)
	s.Require().NoError(s.st.Create(s.ctx, child))
	grand := s.newMember("grand@example.com", "CCCCCC", child)
	s.Require().NoError(s.st.Create(s.ctx, grand))

	found, err := s.st.FindByID(s.ctx, grand.ID)
	s.Require().NoError(err)
	s.Equal([]id.MemberID{root.ID, child.ID}, found.AncestorChain)
	s.Equal(3, found.Level)

	downline, err := s.st.ListDownline(s.ctx, root.ID)
	s.Require().NoError(err)
	s.Len(downline, 2)

	mid, err := s.st.ListDownline(s.ctx, child.ID)
	s.Require().NoError(err)
	s.Len(mid, 1)
	s.Equal(grand.ID, mid[0].ID)
}

func (s *PostgresStoreSuite) TestCountersAndPromotion() {
	thresholds := models.Thresholds{MinDirectSponsors: 1, MinTeamSize: 2}

	root := s.newMember("root@example.com", "AAAAAA", nil)
	s.Require().NoError(s.st.Create(s.ctx, root))
	child := s.newMember("child@example.com", "BBBBBB", root)
	s.Require().NoError(s.st.Create(s.ctx, child))

	s.Require().NoError(s.st.IncrementDirectSponsorCount(s.ctx, root.ID))
	s.Require().NoError(s.st.IncrementTeamCounts(s.ctx, child.AncestorChain))

	promoted, err := s.st.PromoteQualified(s.ctx, []id.MemberID{root.ID}, thresholds, time.Now().UTC())
	s.Require().NoError(err)
	s.Empty(promoted, "team=1 is below the threshold")

	grand := s.newMember("grand@example.com", "CCCCCC", child)
	s.Require().NoError(s.st.Create(s.ctx, grand))
	s.Require().NoError(s.st.IncrementTeamCounts(s.ctx, grand.AncestorChain))

	now := time.Now().UTC().Truncate(time.Microsecond)
	promoted, err = s.st.PromoteQualified(s.ctx, []id.MemberID{root.ID, child.ID}, thresholds, now)
	s.Require().NoError(err)
	s.Equal([]id.MemberID{root.ID}, promoted)

	again, err := s.st.PromoteQualified(s.ctx, []id.MemberID{root.ID}, thresholds, time.Now().UTC())
	s.Require().NoError(err)
	s.Empty(again, "promotion is one-way")

	found, err := s.st.FindByID(s.ctx, root.ID)
	s.Require().NoError(err)
	s.Require().NotNil(found.QualifiedAt)
	s.WithinDuration(now, *found.QualifiedAt, time.Millisecond)
}

func (s *PostgresStoreSuite) TestCountDownlineBuckets() {
	root := s.newMember("root@example.com", "AAAAAA", nil)
	s.Require().NoError(s.st.Create(s.ctx, root))
	child := s.newMember("child@example.com", "BBBBBB", root)
	s.Require().NoError(s.st.Create(s.ctx, child))

	counts, err := s.st.CountDownline(s.ctx, root.ID, time.Now().UTC())
	s.Require().NoError(err)
	s.Equal(int64(1), counts.All)
	s.Equal(int64(1), counts.Last24h)
	s.Equal(int64(1), counts.Last30d)
	s.Zero(counts.NewlyQualified)

	later, err := s.st.CountDownline(s.ctx, root.ID, time.Now().UTC().Add(40*24*time.Hour))
	s.Require().NoError(err)
	s.Equal(int64(1), later.All)
	s.Zero(later.Last30d)
}

// Concurrent team-count increments against the same ancestor must all land:
// serializable transactions plus bounded retry, no lost updates.
func (s *PostgresStoreSuite) TestConcurrentTeamCountIncrements() {
	root := s.newMember("root@example.com", "AAAAAA", nil)
	s.Require().NoError(s.st.Create(s.ctx, root))

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.tx.RunInTx(s.ctx, func(txCtx context.Context) error {
				if err := s.st.IncrementDirectSponsorCount(txCtx, root.ID); err != nil {
					return err
				}
				return s.st.IncrementTeamCounts(txCtx, []id.MemberID{root.ID})
			})
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		s.Require().NoError(err)
	}

	found, err := s.st.FindByID(s.ctx, root.ID)
	s.Require().NoError(err)
	s.Equal(int64(workers), found.DirectSponsorCount)
	s.Equal(int64(workers), found.TotalTeamCount)
}
