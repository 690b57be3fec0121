// Package service orchestrates member registration and the downline read
// side. The registration coordinator is the transactional heart of the
// system: it is the only writer of member rows and ancestor counters.
package service

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	membermetrics "downline/internal/member/metrics"
	"downline/internal/member/models"
	"downline/internal/member/store"
	id "downline/pkg/domain"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks TxRunner,IdentityProvider,Notifier,SponsorCache

// TxRunner provides the transactional boundary for registration. The
// function runs inside one store transaction; everything it writes through
// context-joined stores commits or rolls back together.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// IdentityProvider is the credential layer port. Create runs before the
// member transaction and Delete compensates when that transaction fails.
type IdentityProvider interface {
	Create(ctx context.Context, email, password string) (id.MemberID, error)
	Delete(ctx context.Context, memberID id.MemberID) error
}

// Notifier is the notification emitter port. Implementations must join an
// open transaction from context.
type Notifier interface {
	EmitSponsorship(ctx context.Context, sponsorID id.MemberID, recruitName string) error
	EmitQualified(ctx context.Context, memberID id.MemberID) error
}

// SponsorCache fronts the public sponsor lookup. A nil cache disables
// caching without changing behavior.
type SponsorCache interface {
	Get(ctx context.Context, code id.ReferralCode) (*SponsorPreview, bool)
	Set(ctx context.Context, code id.ReferralCode, preview *SponsorPreview)
}

// Service is the member application service.
type Service struct {
	members    store.Store
	tx         TxRunner
	identity   IdentityProvider
	notifier   Notifier
	thresholds models.Thresholds

	cache   SponsorCache
	logger  *slog.Logger
	metrics *membermetrics.Metrics
	tracer  trace.Tracer
}

// Option configures optional service collaborators.
type Option func(*Service)

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics attaches Prometheus metrics.
func WithMetrics(m *membermetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithSponsorCache attaches the public-lookup cache.
func WithSponsorCache(c SponsorCache) Option {
	return func(s *Service) { s.cache = c }
}

// New constructs the member service.
func New(members store.Store, tx TxRunner, identity IdentityProvider, notifier Notifier, thresholds models.Thresholds, opts ...Option) *Service {
	s := &Service{
		members:    members,
		tx:         tx,
		identity:   identity,
		notifier:   notifier,
		thresholds: thresholds,
		logger:     slog.Default(),
		tracer:     otel.Tracer("downline/member"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
