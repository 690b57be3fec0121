package testutil

import (
	"net/http"
	"time"

	id "downline/pkg/domain"
	"downline/pkg/requestcontext"
)

// WithMember adds an authenticated member ID to the request context, the way
// the auth middleware would for a valid token. Invalid IDs are ignored.
func WithMember(req *http.Request, memberID string) *http.Request {
	parsed, err := id.ParseMemberID(memberID)
	if err != nil {
		return req
	}
	return req.WithContext(requestcontext.WithMemberID(req.Context(), parsed))
}

// WithFrozenTime pins the request-scoped clock so time-bucketed assertions
// are deterministic.
func WithFrozenTime(req *http.Request, now time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), now))
}
