// Package authn exchanges email/password credentials for access tokens.
package authn

import (
	"context"
	"errors"
	"log/slog"
	"time"

	id "downline/pkg/domain"
	dErrors "downline/pkg/domain-errors"
	"downline/pkg/platform/sentinel"
	"downline/pkg/requestcontext"
)

// CredentialVerifier is the slice of the identity provider login needs.
type CredentialVerifier interface {
	Verify(ctx context.Context, email, password string) (id.MemberID, error)
}

// TokenIssuer signs access tokens for authenticated members.
type TokenIssuer interface {
	GenerateAccessToken(memberID id.MemberID) (string, error)
}

// Session is the result of a successful login.
type Session struct {
	MemberID    id.MemberID
	AccessToken string
	ExpiresIn   time.Duration
}

// Service authenticates members.
type Service struct {
	credentials CredentialVerifier
	tokens      TokenIssuer
	tokenTTL    time.Duration
	logger      *slog.Logger
}

// New constructs the authentication service.
func New(credentials CredentialVerifier, tokens TokenIssuer, tokenTTL time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{credentials: credentials, tokens: tokens, tokenTTL: tokenTTL, logger: logger}
}

// Login verifies the credential pair and issues an access token. Unknown
// emails and wrong passwords produce the same error so the endpoint cannot
// be used to probe for accounts.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	if email == "" || password == "" {
		return Session{}, dErrors.New(dErrors.CodeInvalidInput, "email and password are required")
	}

	memberID, err := s.credentials.Verify(ctx, email, password)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) || errors.Is(err, sentinel.ErrInvalidState) {
			s.logger.InfoContext(ctx, "login rejected",
				"client_ip", requestcontext.ClientIP(ctx),
				"request_id", requestcontext.RequestID(ctx),
			)
			return Session{}, dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")
		}
		return Session{}, dErrors.Wrap(err, dErrors.CodeInternal, "could not verify credentials")
	}

	token, err := s.tokens.GenerateAccessToken(memberID)
	if err != nil {
		return Session{}, dErrors.Wrap(err, dErrors.CodeInternal, "could not issue token")
	}
	return Session{MemberID: memberID, AccessToken: token, ExpiresIn: s.tokenTTL}, nil
}
