package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"downline/internal/member/models"
	id "downline/pkg/domain"
	"downline/pkg/platform/sentinel"
	txcontext "downline/pkg/platform/tx"
)

// Postgres persists members in PostgreSQL. The ancestor chain is a uuid[]
// column under a GIN index, which turns "all descendants of X" into a single
// array-containment query.
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed member store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Postgres) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

const memberColumns = `
	id, email, first_name, last_name, country, state, city,
	referral_code, referred_by, sponsor_id, ancestor_chain, level,
	root_admin_id, direct_sponsor_count, total_team_count,
	qualified_at, created_at`

func (s *Postgres) Create(ctx context.Context, m *models.Member) error {
	if m == nil {
		return fmt.Errorf("member is required")
	}
	chain := make([]string, len(m.AncestorChain))
	for i, a := range m.AncestorChain {
		chain[i] = a.String()
	}
	var sponsorID any
	if !m.SponsorID.IsNil() {
		sponsorID = m.SponsorID.String()
	}
	var referredBy any
	if !m.ReferredBy.IsNil() {
		referredBy = m.ReferredBy.String()
	}
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO members (
			id, email, first_name, last_name, country, state, city,
			referral_code, referred_by, sponsor_id, ancestor_chain, level,
			root_admin_id, direct_sponsor_count, total_team_count,
			qualified_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11::uuid[], $12, $13, 0, 0, NULL, $14)`,
		m.ID.String(), m.Email, m.FirstName, m.LastName, m.Country, m.State, m.City,
		m.ReferralCode.String(), referredBy, sponsorID, pq.Array(chain), m.Level,
		m.RootAdminID.String(), m.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			switch pqErr.Constraint {
			case "members_referral_code_key":
				return ErrReferralCodeTaken
			default:
				return ErrEmailTaken
			}
		}
		return fmt.Errorf("create member: %w", translatePQ(err))
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, memberID id.MemberID) (*models.Member, error) {
	row := s.execer(ctx).QueryRowContext(ctx,
		`SELECT `+memberColumns+` FROM members WHERE id = $1`, memberID.String())
	m, err := scanMember(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find member by id: %w", translatePQ(err))
	}
	return m, nil
}

func (s *Postgres) FindByReferralCode(ctx context.Context, code id.ReferralCode) (*models.Member, error) {
	row := s.execer(ctx).QueryRowContext(ctx,
		`SELECT `+memberColumns+` FROM members WHERE referral_code = $1`, code.String())
	m, err := scanMember(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find member by referral code: %w", translatePQ(err))
	}
	return m, nil
}

func (s *Postgres) IncrementDirectSponsorCount(ctx context.Context, memberID id.MemberID) error {
	res, err := s.execer(ctx).ExecContext(ctx,
		`UPDATE members SET direct_sponsor_count = direct_sponsor_count + 1 WHERE id = $1`,
		memberID.String())
	if err != nil {
		return fmt.Errorf("increment direct sponsor count: %w", translatePQ(err))
	}
	return requireRowAffected(res)
}

func (s *Postgres) IncrementTeamCounts(ctx context.Context, memberIDs []id.MemberID) error {
	if len(memberIDs) == 0 {
		return nil
	}
	ids := make([]string, len(memberIDs))
	for i, m := range memberIDs {
		ids[i] = m.String()
	}
	res, err := s.execer(ctx).ExecContext(ctx,
		`UPDATE members SET total_team_count = total_team_count + 1 WHERE id = ANY($1::uuid[])`,
		pq.Array(ids))
	if err != nil {
		return fmt.Errorf("increment team counts: %w", translatePQ(err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("increment team counts: %w", err)
	}
	if affected != int64(len(memberIDs)) {
		// An ancestor row vanished mid-transaction; the chain index would no
		// longer match the counters, so the whole registration must abort.
		return fmt.Errorf("expected %d ancestor updates, got %d: %w",
			len(memberIDs), affected, sentinel.ErrInvalidState)
	}
	return nil
}

func (s *Postgres) PromoteQualified(ctx context.Context, memberIDs []id.MemberID, t models.Thresholds, now time.Time) ([]id.MemberID, error) {
	if len(memberIDs) == 0 {
		return nil, nil
	}
	ids := make([]string, len(memberIDs))
	for i, m := range memberIDs {
		ids[i] = m.String()
	}
	rows, err := s.execer(ctx).QueryContext(ctx, `
		UPDATE members SET qualified_at = $1
		WHERE id = ANY($2::uuid[])
		  AND qualified_at IS NULL
		  AND direct_sponsor_count >= $3
		  AND total_team_count >= $4
		RETURNING id`,
		now, pq.Array(ids), t.MinDirectSponsors, t.MinTeamSize)
	if err != nil {
		return nil, fmt.Errorf("promote qualified: %w", translatePQ(err))
	}
	defer rows.Close()

	var promoted []id.MemberID
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("promote qualified: %w", err)
		}
		memberID, err := id.ParseMemberID(raw)
		if err != nil {
			return nil, fmt.Errorf("promote qualified: %w", err)
		}
		promoted = append(promoted, memberID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("promote qualified: %w", translatePQ(err))
	}
	return promoted, nil
}

func (s *Postgres) ListDownline(ctx context.Context, memberID id.MemberID) ([]*models.Member, error) {
	rows, err := s.execer(ctx).QueryContext(ctx,
		`SELECT `+memberColumns+` FROM members WHERE ancestor_chain @> ARRAY[$1]::uuid[]`,
		memberID.String())
	if err != nil {
		return nil, fmt.Errorf("list downline: %w", translatePQ(err))
	}
	defer rows.Close()

	var members []*models.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("list downline: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list downline: %w", translatePQ(err))
	}
	return members, nil
}

func (s *Postgres) CountDownline(ctx context.Context, memberID id.MemberID, now time.Time) (DownlineCounts, error) {
	var counts DownlineCounts
	err := s.execer(ctx).QueryRowContext(ctx, `
		SELECT
			count(*),
			count(*) FILTER (WHERE created_at >= $2),
			count(*) FILTER (WHERE created_at >= $3),
			count(*) FILTER (WHERE created_at >= $4),
			count(*) FILTER (WHERE qualified_at IS NOT NULL)
		FROM members
		WHERE ancestor_chain @> ARRAY[$1]::uuid[]`,
		memberID.String(),
		now.Add(-24*time.Hour),
		now.Add(-7*24*time.Hour),
		now.Add(-30*24*time.Hour),
	).Scan(&counts.All, &counts.Last24h, &counts.Last7d, &counts.Last30d, &counts.NewlyQualified)
	if err != nil {
		return DownlineCounts{}, fmt.Errorf("count downline: %w", translatePQ(err))
	}
	return counts, nil
}

// scannable covers *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

func scanMember(row scannable) (*models.Member, error) {
	var (
		m           models.Member
		rawID       string
		rawRoot     string
		code        string
		referredBy  sql.NullString
		sponsorID   sql.NullString
		chain       pq.StringArray
		qualifiedAt sql.NullTime
	)
	err := row.Scan(
		&rawID, &m.Email, &m.FirstName, &m.LastName, &m.Country, &m.State, &m.City,
		&code, &referredBy, &sponsorID, &chain, &m.Level,
		&rawRoot, &m.DirectSponsorCount, &m.TotalTeamCount,
		&qualifiedAt, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if qualifiedAt.Valid {
		t := qualifiedAt.Time
		m.QualifiedAt = &t
	}
	if m.ID, err = id.ParseMemberID(rawID); err != nil {
		return nil, err
	}
	if m.RootAdminID, err = id.ParseMemberID(rawRoot); err != nil {
		return nil, err
	}
	m.ReferralCode = id.ReferralCode(code)
	if referredBy.Valid {
		m.ReferredBy = id.ReferralCode(referredBy.String)
	}
	if sponsorID.Valid {
		if m.SponsorID, err = id.ParseMemberID(sponsorID.String); err != nil {
			return nil, err
		}
	}
	m.AncestorChain = make([]id.MemberID, len(chain))
	for i, raw := range chain {
		if m.AncestorChain[i], err = id.ParseMemberID(raw); err != nil {
			return nil, err
		}
	}
	return &m, nil
}

func requireRowAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// translatePQ maps driver-level conflict classes onto sentinels so callers
// stay free of pq types. Serialization failures bubble up for the tx runner.
func translatePQ(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001", "40P01": // serialization_failure, deadlock_detected
			return fmt.Errorf("%v: %w", err, sentinel.ErrSerialization)
		case "23505":
			return fmt.Errorf("%v: %w", err, sentinel.ErrConflict)
		}
	}
	return err
}
