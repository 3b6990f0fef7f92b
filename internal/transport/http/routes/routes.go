package routes

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/hyeonbit/complex-admin/internal/core/domain"
	"github.com/hyeonbit/complex-admin/internal/infra/config"
	"github.com/hyeonbit/complex-admin/internal/transport/http/handlers"
	"github.com/hyeonbit/complex-admin/internal/transport/http/middleware"
	"github.com/hyeonbit/complex-admin/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Access         *usecase.AccessService
	Directory      *usecase.DirectoryService
	Admins         *usecase.AdminService
	Residents      *usecase.ResidentService
	Menus          *usecase.MenuConfigService
	Customizations *usecase.CustomizationService
	Content        *usecase.ContentService
	Audit          *usecase.AuditService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config   *config.AppConfig
	Logger   *zap.Logger
	Services ServiceSet
	Metrics  *middleware.HTTPMetrics
	Database DatabaseChecker
	Cache    CacheChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.CORS(deps.Config.App.AllowedOrigins))
	r.Use(middleware.Logger(deps.Logger))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Handler())
	}

	checks := make(map[string]handlers.ReadyCheck, 2)
	if deps.Database != nil {
		checks["database"] = deps.Database.Ping
	}
	if deps.Cache != nil {
		checks["redis"] = deps.Cache.HealthCheck
	}
	healthHandler := handlers.NewHealthHandler(checks)

	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Ready)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authMiddleware := middleware.RequireAuth(deps.Services.Access, !deps.Config.App.Production())

	api := r.Group("/api/v1")
	api.Use(authMiddleware)
	{
		directoryHandler := handlers.NewDirectoryHandler(deps.Services.Directory)
		api.POST("/complexes", middleware.RequireRole(domain.RoleSuper), directoryHandler.CreateComplex)
		api.GET("/complexes", middleware.RequireAdmin(), directoryHandler.ListComplexes)
		api.POST("/buildings", middleware.RequireRole(domain.RoleSuper, domain.RoleMain), directoryHandler.CreateBuilding)
		api.GET("/buildings", middleware.RequireAdmin(), directoryHandler.ListBuildings)
		api.GET("/dashboard/complex-summary", middleware.RequireAdmin(), directoryHandler.Summary)

		adminHandler := handlers.NewAdminHandler(deps.Services.Admins)
		api.POST("/admins/assign", middleware.RequireRole(domain.RoleSuper, domain.RoleMain), adminHandler.Assign)
		api.GET("/admins", middleware.RequireRole(domain.RoleSuper, domain.RoleMain), adminHandler.List)

		residentHandler := handlers.NewResidentHandler(deps.Services.Residents)
		api.GET("/residents", middleware.RequireRole(domain.RoleSuper, domain.RoleMain, domain.RoleSub, domain.RoleGuard), residentHandler.List)
		api.POST("/residents", middleware.RequireAdmin(), residentHandler.Invite)
		api.POST("/residents/batch", middleware.RequireAdmin(), residentHandler.BatchInvite)
		api.POST("/residents/reissue", middleware.RequireRole(domain.RoleSuper, domain.RoleMain, domain.RoleSub, domain.RoleGuard), residentHandler.Reissue)
		api.POST("/onboarding/complete", residentHandler.CompleteOnboarding)

		menuHandler := handlers.NewMenuConfigHandler(deps.Services.Menus)
		api.GET("/menu-config", middleware.RequireAdmin(), menuHandler.Board)
		api.GET("/menu-config/effective", menuHandler.Effective)
		api.PUT("/menu-config", middleware.RequireAdmin(), menuHandler.Toggle)
		api.PUT("/menu-config/batch", middleware.RequireAdmin(), menuHandler.BatchToggle)

		customizationHandler := handlers.NewCustomizationHandler(deps.Services.Customizations)
		api.GET("/admin/customization", middleware.RequireAdmin(), customizationHandler.Get)
		api.PUT("/admin/customization", middleware.RequireRole(domain.RoleSuper), customizationHandler.Update)

		contentHandler := handlers.NewContentHandler(deps.Services.Content)
		api.POST("/news", middleware.RequireAdmin(), contentHandler.CreateNews)
		api.GET("/news", contentHandler.ListNews)
		api.POST("/ads-items", middleware.RequireAdmin(), contentHandler.CreateAd)
		api.GET("/ads-items", contentHandler.ListAds)

		auditHandler := handlers.NewAuditHandler(deps.Services.Audit)
		api.GET("/audit-events", middleware.RequireRole(domain.RoleSuper, domain.RoleMain), auditHandler.List)
	}

	return r
}
