package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	id "downline/pkg/domain"
	dErrors "downline/pkg/domain-errors"
	"downline/pkg/platform/sentinel"
)

// Postgres stores credentials with bcrypt-hashed passwords.
//
// It always executes on the pool, never on a transaction from context: the
// credential write is the one non-atomic boundary of registration and must
// not silently join the member transaction.
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed credential provider.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Create(ctx context.Context, email, password string) (id.MemberID, error) {
	if email == "" {
		return id.MemberID{}, dErrors.New(dErrors.CodeInvalidInput, "email is required")
	}
	if password == "" {
		return id.MemberID{}, dErrors.New(dErrors.CodeInvalidInput, "password is required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return id.MemberID{}, dErrors.New(dErrors.CodeInvalidInput, "password is too long")
		}
		return id.MemberID{}, fmt.Errorf("hash password: %w", err)
	}

	memberID := id.NewMemberID()
	_, err = p.db.ExecContext(ctx, `
		INSERT INTO credentials (id, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4)`,
		memberID.String(), email, string(hash), time.Now().UTC())
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return id.MemberID{}, fmt.Errorf("email in use: %w", sentinel.ErrConflict)
		}
		return id.MemberID{}, fmt.Errorf("create credential: %w", err)
	}
	return memberID, nil
}

func (p *Postgres) Delete(ctx context.Context, memberID id.MemberID) error {
	_, err := p.db.ExecContext(ctx,
		`DELETE FROM credentials WHERE id = $1`, memberID.String())
	if err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	return nil
}

func (p *Postgres) Verify(ctx context.Context, email, password string) (id.MemberID, error) {
	var (
		rawID string
		hash  string
	)
	err := p.db.QueryRowContext(ctx,
		`SELECT id, password_hash FROM credentials WHERE email = $1`, email).
		Scan(&rawID, &hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return id.MemberID{}, sentinel.ErrNotFound
		}
		return id.MemberID{}, fmt.Errorf("find credential: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return id.MemberID{}, sentinel.ErrInvalidState
	}
	return id.ParseMemberID(rawID)
}
