package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: row does not exist in the store
// - ErrConflict: unique constraint violated (email, referral code)
// - ErrSerialization: the transaction lost a serializable conflict and may be retried
// - ErrInvalidState: row in wrong state for the requested mutation
// - ErrUnavailable: store temporarily unreachable
//
// For validation errors (bad input, missing fields) use pkg/domain-errors.
var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrSerialization = errors.New("serialization conflict")
	ErrInvalidState  = errors.New("invalid state")
	ErrUnavailable   = errors.New("unavailable")
)
