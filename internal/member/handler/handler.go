// Package handler wires the member endpoints to the member service.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"downline/internal/member/models"
	"downline/internal/member/service"
	"downline/internal/member/store"
	"downline/internal/platform/middleware"
	id "downline/pkg/domain"
	dErrors "downline/pkg/domain-errors"
	"downline/pkg/platform/httputil"
	"downline/pkg/requestcontext"
)

// Service defines the member operations the handler depends on.
type Service interface {
	Register(ctx context.Context, input service.RegisterInput) (id.MemberID, error)
	SponsorByReferralCode(ctx context.Context, rawCode string) (*service.SponsorPreview, error)
	Profile(ctx context.Context, memberID id.MemberID) (*models.Member, error)
	ListDownline(ctx context.Context, memberID id.MemberID) ([]*models.Member, error)
	CountDownline(ctx context.Context, memberID id.MemberID) (store.DownlineCounts, error)
}

// Handler serves the member endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a member handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterPublic mounts the unauthenticated endpoints.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/register", h.HandleRegister)
	r.Get("/sponsor", h.HandleSponsorLookup)
}

// RegisterProtected mounts the endpoints behind auth middleware.
func (h *Handler) RegisterProtected(r chi.Router) {
	r.Get("/me", h.HandleProfile)
	r.Get("/downline", h.HandleListDownline)
	r.Get("/downline/counts", h.HandleCountDownline)
}

// HandleRegister handles POST /register requests.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[RegisterRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	memberID, err := h.service.Register(ctx, service.RegisterInput{
		Identity:            req.Identity(),
		Password:            req.Password,
		SponsorReferralCode: req.ReferralCode,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "registration rejected",
			"request_id", requestID,
			"has_referral_code", req.ReferralCode != "",
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "registration accepted",
		"request_id", requestID,
		"member_id", memberID.String(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, RegisterResponse{MemberID: memberID.String()})
}

// HandleSponsorLookup handles GET /sponsor?code= requests. Unauthenticated:
// the join form calls it before the visitor has an account.
func (h *Handler) HandleSponsorLookup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	code := r.URL.Query().Get("code")
	if code == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "code query parameter is required"))
		return
	}

	preview, err := h.service.SponsorByReferralCode(ctx, code)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromSponsorPreview(preview))
}

// HandleProfile handles GET /me requests.
func (h *Handler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	memberID := middleware.GetMemberID(ctx)
	if memberID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	member, err := h.service.Profile(ctx, memberID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromMember(member, true))
}

// HandleListDownline handles GET /downline requests. The caller only ever
// sees their own subtree; the member ID comes from the token, never from the
// query.
func (h *Handler) HandleListDownline(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	memberID := middleware.GetMemberID(ctx)
	if memberID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	members, err := h.service.ListDownline(ctx, memberID)
	if err != nil {
		h.logger.ErrorContext(ctx, "downline listing failed",
			"request_id", requestID,
			"member_id", memberID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	resp := DownlineResponse{Members: make([]MemberResponse, 0, len(members)), Total: len(members)}
	for _, m := range members {
		resp.Members = append(resp.Members, FromMember(m, false))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// HandleCountDownline handles GET /downline/counts requests.
func (h *Handler) HandleCountDownline(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	memberID := middleware.GetMemberID(ctx)
	if memberID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	counts, err := h.service.CountDownline(ctx, memberID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromCounts(counts))
}
