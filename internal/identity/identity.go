// Package identity is the credential layer: durable email/password identities
// allocated before the member record exists. Allocation is deliberately
// outside the registration transaction (it stands in for an external
// credential provider), so the coordinator compensates with Delete when the
// transactional write fails.
package identity

import (
	"context"

	id "downline/pkg/domain"
)

// Provider allocates and revokes durable identities.
type Provider interface {
	// Create allocates a credential and returns the identity ID, which
	// becomes the member ID. Returns sentinel.ErrConflict when the email is
	// already registered; no member record may be created in that case.
	Create(ctx context.Context, email, password string) (id.MemberID, error)

	// Delete removes a credential. The compensating action for a failed
	// registration; must be safe to retry.
	Delete(ctx context.Context, memberID id.MemberID) error

	// Verify checks an email/password pair and returns the identity ID.
	// Returns sentinel.ErrNotFound for unknown emails and
	// sentinel.ErrInvalidState for a wrong password.
	Verify(ctx context.Context, email, password string) (id.MemberID, error)
}
