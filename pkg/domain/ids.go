// Package domain holds the typed identifiers and primitives shared across
// the service. IDs are distinct types over uuid.UUID so a MemberID can never
// be passed where a NotificationID is expected.
package domain

import (
	"github.com/google/uuid"

	dErrors "downline/pkg/domain-errors"
)

// MemberID identifies a member record. The credential layer allocates it, and
// it doubles as the member's document key in the store.
type MemberID uuid.UUID

// NotificationID identifies a notification owned by a member.
type NotificationID uuid.UUID

// NewMemberID allocates a fresh random member ID.
func NewMemberID() MemberID {
	return MemberID(uuid.New())
}

// NewNotificationID allocates a fresh random notification ID.
func NewNotificationID() NotificationID {
	return NotificationID(uuid.New())
}

// ParseMemberID validates and returns a MemberID.
// Rejects empty strings, malformed UUIDs, and the nil UUID.
func ParseMemberID(s string) (MemberID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return MemberID{}, err
	}
	return MemberID(u), nil
}

// ParseNotificationID validates and returns a NotificationID.
func ParseNotificationID(s string) (NotificationID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return NotificationID{}, err
	}
	return NotificationID(u), nil
}

func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must be a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must not be the nil UUID")
	}
	return u, nil
}

func (m MemberID) String() string { return uuid.UUID(m).String() }

// MarshalText renders the canonical UUID string form for JSON and friends.
func (m MemberID) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalText parses the canonical UUID string form.
func (m *MemberID) UnmarshalText(b []byte) error {
	parsed, err := ParseMemberID(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// IsNil reports whether the ID is the zero value.
func (m MemberID) IsNil() bool { return uuid.UUID(m) == uuid.Nil }

func (n NotificationID) String() string { return uuid.UUID(n).String() }

// MarshalText renders the canonical UUID string form for JSON and friends.
func (n NotificationID) MarshalText() ([]byte, error) { return []byte(n.String()), nil }

// UnmarshalText parses the canonical UUID string form.
func (n *NotificationID) UnmarshalText(b []byte) error {
	parsed, err := ParseNotificationID(string(b))
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}

// IsNil reports whether the ID is the zero value.
func (n NotificationID) IsNil() bool { return uuid.UUID(n) == uuid.Nil }
