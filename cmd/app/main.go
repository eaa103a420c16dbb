package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"onboarding_portal/internal/api"
	"onboarding_portal/internal/middleware"
	"onboarding_portal/internal/model"
	"onboarding_portal/internal/portal"
	"onboarding_portal/internal/repository"
	"onboarding_portal/internal/service"
	"onboarding_portal/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	err = logger.Initialize(cfg.LogLevel, cfg.LogEncoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	zapLogger := logger.Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := newSessionStore(ctx, cfg)
	if err != nil {
		zapLogger.Fatal("Failed to initialize session store", zap.Error(err))
	}
	defer closeStore()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// The client reports 401s to the session service, which is built from the client.
	var sessions *service.SessionService
	client := portal.NewClient(cfg.Portal.BaseURL,
		portal.WithPrefix(cfg.Portal.Prefix),
		portal.WithTimeout(cfg.Portal.Timeout),
		portal.WithMetrics(portal.NewMetrics(registry)),
		portal.WithUnauthorizedHook(func(ctx context.Context, s *model.Session) {
			sessions.Invalidate(ctx, s)
		}),
	)

	svc := service.NewService(client, store, service.Config{
		OrganizationName: cfg.OrganizationName,
		SessionTTL:       cfg.Session.TTL,
		ChatReplyDelay:   cfg.Chat.ReplyDelay,
	})
	sessions = svc.SessionService
	sessionAuth := middleware.NewSessionAuth(svc.SessionService, cfg.Session.Cookie)

	if cfg.Session.SweepInterval > 0 {
		go svc.SessionService.Sweep(ctx, cfg.Session.SweepInterval)
	}

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger())

	if cfg.Metrics.Enabled {
		metrics := middleware.NewMetrics(registry)
		router.Use(metrics.Middleware())
		router.GET("/metrics", metrics.Handler())
	}

	config := cors.DefaultConfig()
	if len(cfg.Server.AllowedOrigins) > 0 {
		config.AllowOrigins = cfg.Server.AllowedOrigins
	} else {
		config.AllowAllOrigins = true
	}
	config.AllowMethods = []string{
		http.MethodHead,
		http.MethodGet,
		http.MethodPost,
		http.MethodPut,
		http.MethodPatch,
		http.MethodDelete,
	}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "X-Requested-With"}
	config.AllowCredentials = !config.AllowAllOrigins
	config.MaxAge = 12 * time.Hour

	router.Use(cors.New(config))

	api.Register(router.Group("/api"), svc, sessionAuth)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		zapLogger.Info("Starting server", zap.String("addr", addr), zap.String("session_store", cfg.Session.Store))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zapLogger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Server forced to shut down", zap.Error(err))
	}
}

func newSessionStore(ctx context.Context, cfg *Config) (service.SessionRepository, func(), error) {
	switch cfg.Session.Store {
	case storePostgres:
		repo, err := repository.New(cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		if err := repo.EnsureSchema(ctx); err != nil {
			repo.Close()
			return nil, nil, err
		}
		return repo, func() { repo.Close() }, nil
	case storeRedis:
		repo, err := repository.NewRedisStore(cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() { repo.Close() }, nil
	default:
		return repository.NewMemoryStore(), func() {}, nil
	}
}
