package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "downline/pkg/domain-errors"
)

// ReferralCode is the short public code a member hands out so others can name
// them as sponsor. Six uppercase hex characters taken from a fresh UUID; the
// store enforces uniqueness and the generator is retried on collision.
type ReferralCode string

// ReferralCodeLength is the fixed width of a referral code.
const ReferralCodeLength = 6

// NewReferralCode derives a candidate code from a random UUID.
func NewReferralCode() ReferralCode {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return ReferralCode(strings.ToUpper(raw[:ReferralCodeLength]))
}

// ParseReferralCode validates a code supplied at a trust boundary.
// Codes are case-insensitive on input and normalized to upper case.
func ParseReferralCode(s string) (ReferralCode, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) != ReferralCodeLength {
		return "", dErrors.New(dErrors.CodeInvalidInput, "referral code must be 6 characters")
	}
	for _, r := range s {
		if (r < '0' || r > '9') && (r < 'A' || r > 'F') {
			return "", dErrors.New(dErrors.CodeInvalidInput, "referral code contains invalid characters")
		}
	}
	return ReferralCode(s), nil
}

func (c ReferralCode) String() string { return string(c) }

// IsNil reports whether the code is empty.
func (c ReferralCode) IsNil() bool { return c == "" }
