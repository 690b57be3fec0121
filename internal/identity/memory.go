package identity

import (
	"context"
	"sync"

	"golang.org/x/crypto/bcrypt"

	id "downline/pkg/domain"
	dErrors "downline/pkg/domain-errors"
	"downline/pkg/platform/sentinel"
)

// Memory is an in-memory Provider for unit tests.
type Memory struct {
	mu      sync.Mutex
	byEmail map[string]memoryCredential
	byID    map[id.MemberID]string

	// FailCreate and FailDelete inject faults for rollback tests.
	FailCreate bool
	FailDelete bool
}

type memoryCredential struct {
	memberID id.MemberID
	hash     []byte
}

// NewMemory constructs an empty in-memory credential provider.
func NewMemory() *Memory {
	return &Memory{
		byEmail: make(map[string]memoryCredential),
		byID:    make(map[id.MemberID]string),
	}
}

func (m *Memory) Create(_ context.Context, email, password string) (id.MemberID, error) {
	if email == "" {
		return id.MemberID{}, dErrors.New(dErrors.CodeInvalidInput, "email is required")
	}
	if password == "" {
		return id.MemberID{}, dErrors.New(dErrors.CodeInvalidInput, "password is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailCreate {
		return id.MemberID{}, sentinel.ErrUnavailable
	}
	if _, ok := m.byEmail[email]; ok {
		return id.MemberID{}, sentinel.ErrConflict
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return id.MemberID{}, err
	}
	memberID := id.NewMemberID()
	m.byEmail[email] = memoryCredential{memberID: memberID, hash: hash}
	m.byID[memberID] = email
	return memberID, nil
}

func (m *Memory) Delete(_ context.Context, memberID id.MemberID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailDelete {
		return sentinel.ErrUnavailable
	}
	email, ok := m.byID[memberID]
	if !ok {
		return nil
	}
	delete(m.byEmail, email)
	delete(m.byID, memberID)
	return nil
}

func (m *Memory) Verify(_ context.Context, email, password string) (id.MemberID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cred, ok := m.byEmail[email]
	if !ok {
		return id.MemberID{}, sentinel.ErrNotFound
	}
	if err := bcrypt.CompareHashAndPassword(cred.hash, []byte(password)); err != nil {
		return id.MemberID{}, sentinel.ErrInvalidState
	}
	return cred.memberID, nil
}

// Exists reports whether a credential for the email is present; test helper.
func (m *Memory) Exists(email string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.byEmail[email]
	return ok
}
