package notification

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"downline/internal/platform/middleware"
	id "downline/pkg/domain"
	dErrors "downline/pkg/domain-errors"
	"downline/pkg/platform/httputil"
	"downline/pkg/platform/sentinel"
	"downline/pkg/requestcontext"
)

// NotificationResponse is the wire shape of one notification.
type NotificationResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// ListResponse is returned by GET /notifications.
type ListResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
}

// Handler serves the member-facing notification endpoints. All routes sit
// behind auth middleware; ownership is additionally enforced in the store.
type Handler struct {
	store  Store
	logger *slog.Logger
}

// NewHandler constructs a notification handler.
func NewHandler(store Store, logger *slog.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// Register mounts the notification endpoints.
func (h *Handler) Register(r chi.Router) {
	r.Get("/notifications", h.HandleList)
	r.Post("/notifications/{notificationID}/read", h.HandleMarkRead)
}

// HandleList handles GET /notifications requests.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	memberID := middleware.GetMemberID(ctx)
	if memberID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	notifications, err := h.store.ListByMember(ctx, memberID)
	if err != nil {
		h.logger.ErrorContext(ctx, "notification listing failed",
			"request_id", requestcontext.RequestID(ctx),
			"member_id", memberID.String(),
			"error", err,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "could not load notifications"))
		return
	}

	resp := ListResponse{Notifications: make([]NotificationResponse, 0, len(notifications))}
	for _, n := range notifications {
		resp.Notifications = append(resp.Notifications, NotificationResponse{
			ID:        n.ID.String(),
			Title:     n.Title,
			Message:   n.Message,
			Read:      n.Read,
			CreatedAt: n.CreatedAt,
		})
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// HandleMarkRead handles POST /notifications/{notificationID}/read requests.
func (h *Handler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	memberID := middleware.GetMemberID(ctx)
	if memberID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	notificationID, err := id.ParseNotificationID(chi.URLParam(r, "notificationID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.store.MarkRead(ctx, notificationID, memberID); err != nil {
		httputil.WriteError(w, translateMarkRead(err))
		return
	}
	httputil.WriteJSON(w, http.StatusNoContent, nil)
}

func translateMarkRead(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "notification not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "could not update notification")
}
