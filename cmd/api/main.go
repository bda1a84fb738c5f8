package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	apphttp "github.com/cnluzhang/tencent-meeting-service/internal/http"
	"github.com/cnluzhang/tencent-meeting-service/internal/http/router"
	"github.com/cnluzhang/tencent-meeting-service/internal/ledger"
	"github.com/cnluzhang/tencent-meeting-service/internal/management"
	"github.com/cnluzhang/tencent-meeting-service/internal/operator"
	"github.com/cnluzhang/tencent-meeting-service/internal/roomcache"
	"github.com/cnluzhang/tencent-meeting-service/internal/submission"
	"github.com/cnluzhang/tencent-meeting-service/internal/tencent"
	"github.com/cnluzhang/tencent-meeting-service/internal/webhook"
	"github.com/cnluzhang/tencent-meeting-service/platform/config"
	"github.com/cnluzhang/tencent-meeting-service/platform/db"
	"github.com/cnluzhang/tencent-meeting-service/platform/events"
	"github.com/cnluzhang/tencent-meeting-service/platform/logger"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, "migrations")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	redisOpt, err := redis.ParseURL(cfg.GetRedisURL())
	if err != nil {
		log.Error("invalid REDIS_URL", "error", err)
		panic("invalid REDIS_URL: " + err.Error())
	}
	redisClient := redis.NewClient(redisOpt)
	defer redisClient.Close()

	eventBus := events.NewInMemoryBus(log)
	registerAuditSink(eventBus, log)

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	client := tencent.New(tencent.Config{
		AppID:     cfg.GetTencentAppID(),
		SecretID:  cfg.GetTencentSecretID(),
		SecretKey: cfg.GetTencentSecretKey(),
		Endpoint:  cfg.GetTencentAPIEndpoint(),
		SdkID:     cfg.GetTencentSdkID(),
	}, log)

	registry := operator.Parse(cfg.GetOperatorRegistry())
	repo := ledger.New(pool)

	orchestrator := submission.New(submission.Config{
		FormRouting: map[string]submission.RoomRoute{
			"西安会议室预约": {RoomID: cfg.GetXAMeetingRoomID(), Location: "西安-大会议室"},
			"成都会议室预约": {RoomID: cfg.GetCDMeetingRoomID(), Location: "成都-天府广场"},
		},
		DefaultRoute:        submission.RoomRoute{RoomID: cfg.GetXAMeetingRoomID()},
		UserFieldName:       cfg.GetFormUserFieldName(),
		SkipMeetingCreation: cfg.GetSkipMeetingCreation(),
		SkipRoomBooking:     cfg.GetSkipRoomBooking(),
	}, client, repo, registry, eventBus, log)

	webhookHandler := webhook.New(cfg.GetFormUserFieldName(), cfg.GetFormDeptFieldName(), orchestrator, log)
	webhookModule := webhook.NewModule(webhookHandler, cfg.GetWebhookAuthToken())

	roomCache := roomcache.New(redisClient, client, registry.Default(), log)
	closeJobs := startRoomCacheJobs(ctx, cfg, roomCache, log)
	defer closeJobs()

	managementHandler := management.New(roomCache, client, log)
	managementModule := management.NewModule(managementHandler)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   pool,
		EventBus: eventBus,
		Modules: []apphttp.Module{
			webhookModule,
			managementModule,
		},
	}

	engine := router.New(app)
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: engine}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			srvErr <- err
			return
		}
		srvErr <- nil
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// registerAuditSink subscribes a structured-log handler to every
// submission domain event. It is the only subscriber this service ships.
func registerAuditSink(bus events.Bus, log *logger.Logger) {
	sink := events.HandlerFunc(func(_ context.Context, event events.Event) error {
		log.Info("domain_event", "event", event.EventName(), "occurred_at", event.OccurredAt())
		return nil
	})
	bus.Subscribe("submission.meeting.reserved", sink)
	bus.Subscribe("submission.meeting.cancelled", sink)
}

// startRoomCacheJobs registers and runs the periodic room-list refresh
// against the asynq/Redis broker, returning a cleanup func. Refresh
// failures are non-fatal: the cache falls through to a live upstream call
// on every cache miss, so a broken scheduler only loses the warm-cache benefit.
func startRoomCacheJobs(ctx context.Context, cfg *config.Config, cache *roomcache.Cache, log *logger.Logger) func() {
	redisConnOpt, err := asynq.ParseRedisURI(cfg.GetRedisURL())
	if err != nil {
		log.Warn("roomcache: invalid REDIS_URL for asynq, periodic refresh disabled", "error", err)
		return func() {}
	}

	scheduler := asynq.NewScheduler(redisConnOpt, nil)
	if err := roomcache.RegisterSchedule(scheduler, "*/5 * * * *"); err != nil {
		log.Warn("roomcache: failed to register periodic refresh", "error", err)
		return func() {}
	}

	server := asynq.NewServer(redisConnOpt, asynq.Config{Concurrency: 1})
	mux := asynq.NewServeMux()
	mux.Handle(roomcache.TaskTypeRefresh, roomcache.NewTaskHandler(cache))

	go func() {
		if err := scheduler.Run(); err != nil {
			log.Error("roomcache: scheduler stopped", "error", err)
		}
	}()
	go func() {
		if err := server.Run(mux); err != nil {
			log.Error("roomcache: task server stopped", "error", err)
		}
	}()

	if err := cache.Refresh(ctx); err != nil {
		log.Warn("roomcache: initial refresh failed, will retry on schedule", "error", err)
	}

	return func() {
		scheduler.Shutdown()
		server.Shutdown()
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
