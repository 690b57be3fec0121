// Command server runs the downline HTTP service: registration, downline
// queries, and the notification outbox worker, all in one process.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"downline/internal/authn"
	"downline/internal/identity"
	"downline/internal/jwttoken"
	membercache "downline/internal/member/cache"
	memberhandler "downline/internal/member/handler"
	membermetrics "downline/internal/member/metrics"
	memberservice "downline/internal/member/service"
	memberstore "downline/internal/member/store"
	"downline/internal/member/models"
	"downline/internal/notification"
	"downline/internal/platform/config"
	"downline/internal/platform/httpserver"
	"downline/internal/platform/kafka"
	"downline/internal/platform/logger"
	platformpg "downline/internal/platform/postgres"
	platformredis "downline/internal/platform/redis"
	transporthttp "downline/internal/transport/http"
)

const shutdownTimeout = 10 * time.Second

func main() {
	log := logger.New()

	if err := run(log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}

	db, err := platformpg.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := platformpg.EnsureSchema(ctx, db); err != nil {
		return err
	}

	metrics := membermetrics.New()
	txRunner := platformpg.NewTxRunner(db,
		platformpg.WithMaxAttempts(cfg.TxMaxAttempts),
		platformpg.WithLogger(log),
		platformpg.WithRetryCounter(metrics.TxRetries),
	)

	members := memberstore.NewPostgres(db)
	notifications := notification.NewPostgresStore(db)
	outbox := notification.NewPostgresOutbox(db)
	emitter := notification.NewEmitter(notifications, outbox)
	credentials := identity.NewPostgres(db)

	thresholds := models.Thresholds{
		MinDirectSponsors: cfg.MinDirectSponsors,
		MinTeamSize:       cfg.MinTeamSize,
	}
	serviceOpts := []memberservice.Option{
		memberservice.WithLogger(log),
		memberservice.WithMetrics(metrics),
	}

	redisClient, err := platformredis.New(ctx, cfg.RedisURL)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		cache := membercache.NewSponsorCache(redisClient.Client, cfg.SponsorCacheTTL, log)
		serviceOpts = append(serviceOpts, memberservice.WithSponsorCache(cache))
	}

	memberSvc := memberservice.New(members, txRunner, credentials, emitter, thresholds, serviceOpts...)

	tokens := jwttoken.New(cfg.JWTSigningKey, cfg.TokenTTL)
	authSvc := authn.New(credentials, tokens, cfg.TokenTTL, log)

	router := transporthttp.NewRouter(transporthttp.Deps{
		Members:       memberhandler.New(memberSvc, log),
		Auth:          authn.NewHandler(authSvc, log),
		Notifications: notification.NewHandler(notifications, log),
		JWTValidator:  tokens,
		Logger:        log,
		Health:        healthHandler(db, redisClient),
	})

	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	// Without brokers configured, pending events stay queued in the outbox
	// and are drained once a broker is available again.
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(ctx, cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			return err
		}
		defer producer.Close()

		worker := notification.NewWorker(outbox, producer, log, cfg.OutboxInterval)
		g.Go(func() error {
			if err := worker.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	} else {
		log.Warn("no kafka brokers configured, notification events will accumulate in the outbox")
	}

	return g.Wait()
}
