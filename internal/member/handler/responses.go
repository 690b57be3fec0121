package handler

import (
	"time"

	"downline/internal/member/models"
	"downline/internal/member/service"
	"downline/internal/member/store"
)

// RegisterResponse is returned by POST /register.
type RegisterResponse struct {
	MemberID string `json:"memberId"`
}

// SponsorResponse is the public sponsor preview for GET /sponsor.
type SponsorResponse struct {
	ID          string `json:"id"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	RootAdminID string `json:"rootAdminId"`
}

// FromSponsorPreview maps the service preview to the wire shape.
func FromSponsorPreview(p *service.SponsorPreview) SponsorResponse {
	return SponsorResponse{
		ID:          p.ID.String(),
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		RootAdminID: p.RootAdminID.String(),
	}
}

// MemberResponse is the authenticated view of a member record.
type MemberResponse struct {
	ID                 string     `json:"id"`
	Email              string     `json:"email,omitempty"`
	FirstName          string     `json:"firstName"`
	LastName           string     `json:"lastName"`
	Country            string     `json:"country"`
	State              string     `json:"state,omitempty"`
	City               string     `json:"city,omitempty"`
	ReferralCode       string     `json:"referralCode"`
	SponsorID          string     `json:"sponsorId,omitempty"`
	Level              int        `json:"level"`
	DirectSponsorCount int64      `json:"directSponsorCount"`
	TotalTeamCount     int64      `json:"totalTeamCount"`
	Qualified          bool       `json:"qualified"`
	QualifiedAt        *time.Time `json:"qualifiedAt,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
}

// FromMember maps a member to its authenticated wire shape. Email is only
// included for the member's own profile.
func FromMember(m *models.Member, includeEmail bool) MemberResponse {
	resp := MemberResponse{
		ID:                 m.ID.String(),
		FirstName:          m.FirstName,
		LastName:           m.LastName,
		Country:            m.Country,
		State:              m.State,
		City:               m.City,
		ReferralCode:       m.ReferralCode.String(),
		Level:              m.Level,
		DirectSponsorCount: m.DirectSponsorCount,
		TotalTeamCount:     m.TotalTeamCount,
		Qualified:          m.Qualified(),
		QualifiedAt:        m.QualifiedAt,
		CreatedAt:          m.CreatedAt,
	}
	if includeEmail {
		resp.Email = m.Email
	}
	if !m.SponsorID.IsNil() {
		resp.SponsorID = m.SponsorID.String()
	}
	return resp
}

// DownlineResponse is returned by GET /downline.
type DownlineResponse struct {
	Members []MemberResponse `json:"members"`
	Total   int              `json:"total"`
}

// CountsResponse is returned by GET /downline/counts.
type CountsResponse struct {
	All            int64 `json:"all"`
	Last24h        int64 `json:"last24h"`
	Last7d         int64 `json:"last7d"`
	Last30d        int64 `json:"last30d"`
	NewlyQualified int64 `json:"newlyQualified"`
}

// FromCounts maps the store buckets to the wire shape.
func FromCounts(c store.DownlineCounts) CountsResponse {
	return CountsResponse{
		All:            c.All,
		Last24h:        c.Last24h,
		Last7d:         c.Last7d,
		Last30d:        c.Last30d,
		NewlyQualified: c.NewlyQualified,
	}
}
