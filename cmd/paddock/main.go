package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/CaioWing/paddock/internal/api"
	"github.com/CaioWing/paddock/internal/auth"
	"github.com/CaioWing/paddock/internal/cache"
	"github.com/CaioWing/paddock/internal/config"
	"github.com/CaioWing/paddock/internal/domain"
	"github.com/CaioWing/paddock/internal/repository/postgres"
	"github.com/CaioWing/paddock/internal/service"
	"github.com/CaioWing/paddock/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	log.Info("starting paddock",
		"listen", cfg.ListenAddr(),
		"db_host", cfg.DB.Host,
		"email_cache", cfg.Redis.Addr != "",
	)

	log.Info("running database migrations")
	if err := postgres.RunMigrations(cfg.DB.DSN()); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	log.Info("migrations completed")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DB.DSN())
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping db: %w", err)
	}
	log.Info("database connected")

	// Email cache
	var emailCache domain.EmailCache
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		c := cache.NewEmailCache(rdb, cfg.Redis.EmailTTL)
		if err := c.Ping(ctx); err != nil {
			log.Warn("redis unreachable, email cache disabled", "addr", cfg.Redis.Addr, "err", err)
		} else {
			emailCache = c
			log.Info("email cache enabled", "addr", cfg.Redis.Addr)
		}
	}

	// Repositories
	listingRepo := postgres.NewListingRepo(pool)
	auditRepo := postgres.NewAuditRepo(pool)
	userRepo := postgres.NewUserRepo(pool)
	uow := postgres.NewUnitOfWorkFactory(pool)

	// Services
	identitySvc := service.NewIdentityService(userRepo, emailCache, log)
	listingSvc := service.NewListingService(listingRepo, log)
	moderationSvc := service.NewModerationService(uow, log)
	auditSvc := service.NewAuditService(auditRepo, identitySvc, log)

	jwtMgr := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry)

	pages, err := web.NewPages(web.Deps{
		Listings:      listingSvc,
		Moderator:     moderationSvc,
		Audit:         auditSvc,
		Identity:      identitySvc,
		JWTManager:    jwtMgr,
		PageSize:      cfg.UI.PageSize,
		AuditPageSize: cfg.UI.AuditPageSize,
		CookieSecure:  cfg.Auth.CookieSecure,
		Logger:        log,
	})
	if err != nil {
		return fmt.Errorf("init pages: %w", err)
	}

	router := api.NewRouter(ctx, api.RouterDeps{
		Listings:       listingSvc,
		Moderator:      moderationSvc,
		Audit:          auditSvc,
		Identity:       identitySvc,
		Pages:          pages,
		JWTManager:     jwtMgr,
		CORSOrigins:    cfg.CORS.AllowedOrigins,
		PageSize:       cfg.UI.PageSize,
		RateLimitRPS:   cfg.RateLimit.RPS,
		RateLimitBurst: cfg.RateLimit.Burst,
		Logger:         log,
	})

	srv := &http.Server{
		Addr:         cfg.ListenAddr(),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.ListenAddr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Info("server stopped")
	return nil
}
