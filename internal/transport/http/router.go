// Package http assembles the service's chi router: public registration and
// lookup endpoints, token-protected downline and notification endpoints, and
// the operational endpoints.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"downline/internal/authn"
	memberhandler "downline/internal/member/handler"
	"downline/internal/notification"
	"downline/internal/platform/middleware"
)

const requestTimeout = 15 * time.Second

// Deps carries everything the router mounts.
type Deps struct {
	Members       *memberhandler.Handler
	Auth          *authn.Handler
	Notifications *notification.Handler
	JWTValidator  middleware.JWTValidator
	Logger        *slog.Logger
	Health        http.HandlerFunc
}

// NewRouter builds the full route tree with the standard middleware chain.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", d.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		d.Members.RegisterPublic(r)
		d.Auth.Register(r)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.RequireAuth(d.JWTValidator, d.Logger))
		d.Members.RegisterProtected(r)
		d.Notifications.Register(r)
	})

	return r
}
