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

	"eventops-platform/internal/admin"
	"eventops-platform/internal/audit"
	"eventops-platform/internal/auth"
	"eventops-platform/internal/config"
	"eventops-platform/internal/grant"
	"eventops-platform/internal/httpapi"
	"eventops-platform/internal/rbac"
	"eventops-platform/internal/storage"
	"eventops-platform/pkg/logger"
	"eventops-platform/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	authManager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	objects, err := storage.NewClient(rootCtx, cfg.Storage)
	if err != nil {
		log.Error("object storage init failed", "err", err)
		os.Exit(1)
	}

	// Persistence
	roleStore := rbac.NewPostgresStore(db)
	grantRepo := grant.NewPostgresRepo(db)
	auditRepo := audit.NewPostgresRepo(db)

	// Services
	auditSvc := audit.NewService(auditRepo)
	resolver := rbac.NewResolver(roleStore, roleStore, roleStore)
	engine := rbac.NewEngine()
	grantSvc := grant.NewService(grantRepo, cfg.Grant)
	enforcer := grant.NewGuardedEnforcer(grantRepo, grant.NewRedisOnceGuard(rdb))
	store := storage.NewEnforcedStore(enforcer, objects)
	adminSvc := admin.NewService(roleStore, resolver, engine, auditSvc)

	if !cfg.IsProduction() && cfg.Seed.AdminEmail != "" {
		if err := rbac.SeedAccountRole(rootCtx, roleStore, cfg.Seed.AdminEmail, rbac.AccountRoleAdmin); err != nil {
			log.Error("admin seed failed", "err", err)
			os.Exit(1)
		}
		log.Info("admin seeded", "email", cfg.Seed.AdminEmail)
	}

	// Expired grants deny on their own; the sweeper only reclaims rows.
	sweeper := grant.NewSweeper(grantRepo, log, time.Hour, 24*time.Hour)
	go sweeper.Run(rootCtx)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, routeDeps{
		authMW:   auth.RequireAccessToken(authManager),
		resolver: resolver,
		engine:   engine,
		handlers: httpapi.Handlers{
			Auth:   authManager,
			Grants: grantSvc,
			Admin:  adminSvc,
			Audit:  auditSvc,
		},
		uploads: httpapi.UploadHandlers{
			Store: store,
			Media: objects,
			Audit: auditSvc,
		},
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
}
