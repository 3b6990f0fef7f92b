package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/hyeonbit/complex-admin/internal/core/port"
	"github.com/hyeonbit/complex-admin/internal/infra/config"
	"github.com/hyeonbit/complex-admin/internal/infra/database"
	"github.com/hyeonbit/complex-admin/internal/infra/identity"
	kafkainfra "github.com/hyeonbit/complex-admin/internal/infra/kafka"
	"github.com/hyeonbit/complex-admin/internal/infra/logger"
	redisinfra "github.com/hyeonbit/complex-admin/internal/infra/redis"
	postgresrepo "github.com/hyeonbit/complex-admin/internal/repository/postgres"
	redisrepo "github.com/hyeonbit/complex-admin/internal/repository/redis"
	"github.com/hyeonbit/complex-admin/internal/transport/http/middleware"
	"github.com/hyeonbit/complex-admin/internal/transport/http/routes"
	"github.com/hyeonbit/complex-admin/internal/usecase"
)

type Application struct {
	cfg    *config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
	pool   *pgxpool.Pool
	redis  *redisinfra.Client
}

func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	redisClient, err := redisinfra.NewClient(cfg.Redis, log)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init redis: %w", err)
	}

	repos := postgresrepo.NewRepositories(pool)

	menuCache := redisrepo.NewMenuConfigCache(redisClient.Client(), cfg.Redis.MenuCachePrefix, cfg.Redis.MenuCacheTTL)

	rateLimitWindow := cfg.RateLimit.WindowDuration
	if rateLimitWindow <= 0 {
		rateLimitWindow = time.Minute
	}
	rateLimitStore := redisrepo.NewRateLimitStore(redisClient.Client(), redisrepo.SlidingWindowConfig{
		KeyPrefix: "cadmin:rate-limit",
		TTL:       rateLimitWindow * 2,
	})

	var eventPublisher port.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaProducer, err := kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
			eventPublisher = kafkainfra.NewStubPublisher(log)
		} else {
			eventPublisher = kafkainfra.NewEventPublisher(kafkaProducer, cfg.App, log)
			log.Info("kafka event publisher initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	} else {
		log.Info("kafka brokers not configured, using stub publisher")
		eventPublisher = kafkainfra.NewStubPublisher(log)
	}

	identityClient := identity.NewClient(cfg.Identity, log)

	auditService := usecase.NewAuditService(repos.Audit, log)
	accessService := usecase.NewAccessService(identityClient, repos.Users, cfg.Identity.SuperAdminEmails)
	directoryService := usecase.NewDirectoryService(repos.Complexes, repos.Buildings, repos.Users, accessService, auditService, log)
	menuService := usecase.NewMenuConfigService(repos.MenuConfigs, menuCache, repos.Customizations, eventPublisher, auditService, log)
	customizationService := usecase.NewCustomizationService(repos.Customizations, auditService, log)
	contentService := usecase.NewContentService(repos.News, repos.Ads, accessService, auditService, log)
	adminService := usecase.NewAdminService(
		identityClient, repos.Users, repos.Buildings, repos.Complexes,
		rateLimitStore, eventPublisher, accessService, auditService, log,
		rateLimitWindow, cfg.RateLimit.AssignMaxAttempts, cfg.Identity.InviteRedirectTo,
	)
	residentService := usecase.NewResidentService(
		identityClient, repos.Users, repos.Buildings, repos.Complexes, repos.QRCodes,
		rateLimitStore, eventPublisher, accessService, auditService, log,
		rateLimitWindow, cfg.RateLimit.InviteMaxAttempts, cfg.Identity.InviteRedirectTo,
	)

	metrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{Namespace: cfg.Metrics.Namespace})
	if err != nil {
		redisClient.Close()
		pool.Close()
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	engine := routes.Register(routes.Dependencies{
		Config:   cfg,
		Logger:   log,
		Metrics:  metrics,
		Database: pool,
		Cache:    redisClient,
		Services: routes.ServiceSet{
			Access:         accessService,
			Directory:      directoryService,
			Admins:         adminService,
			Residents:      residentService,
			Menus:          menuService,
			Customizations: customizationService,
			Content:        contentService,
			Audit:          auditService,
		},
	})

	return &Application{
		cfg:    cfg,
		engine: engine,
		logger: log,
		pool:   pool,
		redis:  redisClient,
	}, nil
}

func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.pool != nil {
			a.pool.Close()
		}
	}()
	defer func() {
		if a.redis != nil {
			_ = a.redis.Close()
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting complex admin API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}
