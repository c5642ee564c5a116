package router

import (
	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// Dependencies carries everything the router needs to wire the API
type Dependencies struct {
	Config            *config.Config
	Logger            *zap.Logger
	JWTService        *auth.JWTService
	OrderHandler      *handler.OrderHandler
	AdminOrderHandler *handler.AdminOrderHandler
	SystemHandler     *handler.SystemHandler
}

// New builds the gin engine with middleware and all API routes
func New(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if len(deps.Config.HTTP.TrustedProxies) > 0 {
		_ = engine.SetTrustedProxies(deps.Config.HTTP.TrustedProxies)
	}

	corsCfg := middleware.DefaultCORSConfig()
	if len(deps.Config.HTTP.CORSAllowOrigins) > 0 {
		corsCfg.AllowOrigins = deps.Config.HTTP.CORSAllowOrigins
	}
	if len(deps.Config.HTTP.CORSAllowMethods) > 0 {
		corsCfg.AllowMethods = deps.Config.HTTP.CORSAllowMethods
	}
	if len(deps.Config.HTTP.CORSAllowHeaders) > 0 {
		corsCfg.AllowHeaders = deps.Config.HTTP.CORSAllowHeaders
	}

	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(deps.Logger),
		logger.Recovery(deps.Logger),
		middleware.CORSWithConfig(corsCfg),
	)

	// Health endpoints stay outside authentication
	engine.GET("/healthz", deps.SystemHandler.Healthz)
	engine.GET("/readyz", deps.SystemHandler.Readyz)

	api := engine.Group("/api/v1", middleware.JWTAuthMiddleware(deps.JWTService, deps.Logger))
	deps.OrderHandler.RegisterRoutes(api)

	admin := api.Group("/admin", middleware.RequireRole(auth.RoleAdmin))
	deps.AdminOrderHandler.RegisterRoutes(admin)

	return engine
}
