// Command server runs the cattle registration service: account
// endpoints, the registration lifecycle, per-region approval queues,
// and the admin surface. Storage backends are selected by
// configuration; with no Postgres DSN the service runs fully in
// memory for local development.
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

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"github.com/geekskaran/cattel/internal/admin"
	"github.com/geekskaran/cattel/internal/audit"
	"github.com/geekskaran/cattel/internal/auth"
	"github.com/geekskaran/cattel/internal/platform/config"
	"github.com/geekskaran/cattel/internal/platform/httpserver"
	"github.com/geekskaran/cattel/internal/platform/logger"
	"github.com/geekskaran/cattel/internal/platform/metrics"
	platformredis "github.com/geekskaran/cattel/internal/platform/redis"
	"github.com/geekskaran/cattel/internal/queue"
	"github.com/geekskaran/cattel/internal/region"
	"github.com/geekskaran/cattel/internal/registration"
	httptransport "github.com/geekskaran/cattel/internal/transport/http"
	"github.com/geekskaran/cattel/internal/validation"
	id "github.com/geekskaran/cattel/pkg/domain"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	log := logger.New(cfg.Debug)
	slog.SetDefault(log)
	appPolicy := config.DefaultPolicy()

	// Storage selection: Postgres when a DSN is configured, otherwise
	// in-memory for local development.
	var (
		db         *sql.DB
		userStore  auth.UserStore
		recStore   registration.Store
		regStore   region.Store
		auditStore audit.Store
	)
	if cfg.Postgres.DSN != "" {
		db, err = sql.Open("postgres", cfg.Postgres.DSN)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			return err
		}
		userStore = auth.NewPostgresUserStore(db)
		recStore = registration.NewPostgresStore(db)
		regStore = region.NewPostgres(db)
		auditStore = audit.NewPostgres(db)
		log.Info("using postgres storage")
	} else {
		userStore = auth.NewInMemoryUserStore()
		recStore = registration.NewInMemoryStore()
		regStore = region.NewInMemoryStore()
		auditStore = audit.NewInMemoryStore()
		log.Warn("no postgres dsn configured, using in-memory storage")
	}

	var (
		queueIndex  queue.Index        = queue.NewInMemoryIndex()
		revocations auth.RevocationList = auth.NewInMemoryRevocationList()
	)
	redisClient, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		queueIndex = queue.NewRedisIndex(redisClient)
		revocations = auth.NewRedisRevocationList(redisClient.Client)
		log.Info("using redis queue index and revocation list")
	}

	// Audit pipeline: fail-closed persistence, best-effort streaming.
	auditOpts := []audit.Option{audit.WithLogger(log)}
	var (
		inbox chan audit.Event
		sink  *audit.KafkaSink
	)
	if len(cfg.Kafka.Seeds) > 0 {
		sink, err = audit.NewKafkaSink(ctx, cfg.Kafka.Seeds, cfg.Kafka.AuditTopic)
		if err != nil {
			return err
		}
		defer sink.Close()
		inbox = make(chan audit.Event, 256)
		auditOpts = append(auditOpts, audit.WithInbox(inbox))
		log.Info("streaming audit events to kafka", "topic", cfg.Kafka.AuditTopic)
	}
	auditor := audit.NewPublisher(auditStore, auditOpts...)

	directory := region.NewDirectory(regStore, region.WithLogger(log))
	if err := directory.Seed(ctx, id.SeedRegions()); err != nil {
		return err
	}

	rules := validation.New(appPolicy)
	tokens := auth.NewTokenService(cfg.JWTSigningKey, cfg.SessionTTL)
	authService := auth.NewService(userStore, tokens, revocations, rules, directory,
		auth.WithLogger(log),
		auth.WithAuditor(auditor),
	)

	queueService := queue.NewService(queueIndex, recStore, directory, appPolicy.ApprovalWindow,
		queue.WithLogger(log),
		queue.WithMetrics(queue.NewMetrics()),
	)

	registrationService := registration.NewService(
		recStore,
		registration.NewEngine(rules, appPolicy),
		queueService,
		directory,
		registration.WithLogger(log),
		registration.WithMetrics(registration.NewMetrics()),
		registration.WithAuditor(auditor),
	)

	httpMetrics := metrics.New()
	router := httptransport.NewRouter(httptransport.Deps{
		Auth:         auth.NewHandler(authService, log),
		Registration: registration.NewHandler(registrationService, log),
		Admin: admin.NewHandler(queueService, directory, recStore, userStore,
			auditor, appPolicy.ApprovalWindow, log),
		Tokens:      tokens,
		Revocations: revocations,
		Metrics:     httpMetrics,
		Logger:      log,
		Health: func() error {
			if db != nil {
				return db.Ping()
			}
			return nil
		},
	})

	srv := httpserver.New(cfg.Addr, router)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info("starting server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if sink != nil {
		worker := audit.NewWorker(sink, inbox, log)
		group.Go(func() error { return worker.Run(groupCtx) })
	}
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return group.Wait()
}
