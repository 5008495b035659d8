// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the internal packages.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"trellis/internal/audit"
	kafkasink "trellis/internal/audit/sink/kafka"
	auditmem "trellis/internal/audit/store/memory"
	auditpg "trellis/internal/audit/store/postgres"
	"trellis/internal/identity"
	"trellis/internal/platform/config"
	"trellis/internal/platform/httpserver"
	"trellis/internal/platform/logger"
	"trellis/internal/platform/metrics"
	"trellis/internal/platform/middleware"
	platformredis "trellis/internal/platform/redis"
	"trellis/internal/token/checkpoint"
	"trellis/internal/token/engine"
	"trellis/internal/token/handler"
	"trellis/pkg/domain"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	g, ctx := errgroup.WithContext(ctx)

	// Identity gate: local registry, optionally fronted by a Redis cache.
	registry := identity.NewRegistry()
	var gate identity.Gate = registry
	if cfg.RedisURL != "" {
		redisClient, err := platformredis.New(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		gate = identity.NewCachedGate(redisClient.Client, registry, identity.WithLogger(log))
		log.Info("eligibility cache enabled")
	}

	// Audit trail: in-memory by default, Postgres when configured, with an
	// optional Kafka stream for external consumers.
	var store audit.Store = auditmem.NewInMemoryStore()
	if cfg.PostgresURL != "" {
		db, err := sql.Open("postgres", cfg.PostgresURL)
		if err != nil {
			return err
		}
		defer db.Close()
		pgStore := auditpg.NewPostgres(db)
		if err := pgStore.Migrate(ctx); err != nil {
			return err
		}
		store = pgStore
		log.Info("audit trail persisted to postgres")
	}

	var publisherOpts []audit.PublisherOption
	if len(cfg.KafkaBrokers) > 0 {
		sink, err := kafkasink.NewSink(cfg.KafkaBrokers, cfg.AuditTopic)
		if err != nil {
			return err
		}
		defer sink.Close()
		if err := sink.EnsureTopic(ctx, 3, 1); err != nil {
			return err
		}
		inbox := make(chan audit.Event, 1024)
		publisherOpts = append(publisherOpts, audit.WithForward(inbox))
		worker := audit.NewWorker(sink, inbox, log)
		g.Go(func() error { return worker.Run(ctx) })
		log.Info("audit stream enabled", "topic", cfg.AuditTopic)
	}
	publisher := audit.NewPublisher(store, publisherOpts...)

	eng, err := engine.New(gate,
		engine.WithLogger(log),
		engine.WithAuditPublisher(publisher),
		engine.WithMetrics(metrics.New()),
	)
	if err != nil {
		return err
	}

	if cfg.Token.Name != "" {
		owner, err := domain.ParseAddress(cfg.Token.Owner)
		if err != nil {
			return err
		}
		if err := eng.Init(ctx, owner, cfg.Token.Name, cfg.Token.Symbol,
			cfg.Token.Decimals, cfg.Token.MaxSupply); err != nil {
			return err
		}
		log.Info("token initialized", "name", cfg.Token.Name, "owner", owner)
	}

	if cfg.PostgresURL != "" {
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			return err
		}
		defer pool.Close()
		cpStore := checkpoint.NewPostgres(pool)
		if err := cpStore.Migrate(ctx); err != nil {
			return err
		}
		cpWorker := checkpoint.NewWorker(eng, cpStore, cfg.CheckpointInterval, log)
		g.Go(func() error { return cpWorker.Run(ctx) })
	}

	h := handler.New(eng, registry, log)
	validator := middleware.NewJWTValidator(cfg.JWTSigningKey)

	router := chi.NewRouter()
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Handle("/metrics", promhttp.Handler())
	router.Group(h.RegisterPublic)
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(validator, log))
		h.RegisterProtected(r)
	})

	srv := httpserver.New(cfg.Addr, router)
	log.Info("starting ledger server", "addr", cfg.Addr)

	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
