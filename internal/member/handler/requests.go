package handler

import (
	"strings"

	"downline/internal/member/models"
	dErrors "downline/pkg/domain-errors"
)

// RegisterRequest is the HTTP request body for POST /register.
type RegisterRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Country      string `json:"country"`
	State        string `json:"state"`
	City         string `json:"city"`
	ReferralCode string `json:"referralCode"`
}

const maxFieldLen = 200

// Validate trims and checks the request. Referral code syntax is checked in
// the service so the error matches the lookup path.
func (r *RegisterRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	r.Email = strings.TrimSpace(strings.ToLower(r.Email))
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Country = strings.TrimSpace(r.Country)
	r.State = strings.TrimSpace(r.State)
	r.City = strings.TrimSpace(r.City)
	r.ReferralCode = strings.TrimSpace(r.ReferralCode)

	for _, f := range []string{r.Email, r.FirstName, r.LastName, r.Country, r.State, r.City} {
		if len(f) > maxFieldLen {
			return dErrors.New(dErrors.CodeInvalidInput, "field exceeds maximum length")
		}
	}
	if r.Email == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "email is required")
	}
	if !strings.Contains(r.Email, "@") {
		return dErrors.New(dErrors.CodeInvalidInput, "email is not valid")
	}
	if len(r.Password) < 8 {
		return dErrors.New(dErrors.CodeInvalidInput, "password must be at least 8 characters")
	}
	if r.FirstName == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "firstName is required")
	}
	if r.LastName == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "lastName is required")
	}
	if r.Country == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "country is required")
	}
	return nil
}

// Identity maps the request to the domain input.
func (r *RegisterRequest) Identity() models.Identity {
	return models.Identity{
		Email:     r.Email,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Country:   r.Country,
		State:     r.State,
		City:      r.City,
	}
}
