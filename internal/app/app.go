package app

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	ginadapter "github.com/ariachat/server/internal/adapter/inbound/gin"
	"github.com/ariachat/server/internal/infra/config"
	"github.com/ariachat/server/internal/port/outbound"
	"github.com/ariachat/server/internal/utils/metrics"
	"github.com/ariachat/server/internal/utils/middleware"
)

// App is the assembled HTTP application.
type App struct {
	config *config.Config
	router *gin.Engine
	logger *zap.Logger
}

// NewApp builds the router: global middleware, health and metrics
// endpoints, then the API under /api/v1.
func NewApp(
	cfg *config.Config,
	handlers *ginadapter.Handlers,
	tokens outbound.TokenPort,
	admins *middleware.AdminAuthorizer,
	limiter outbound.RateLimiterPort,
	idempotency outbound.IdempotencyStorePort,
	m *metrics.Metrics,
	log *zap.Logger,
) *App {
	a := &App{config: cfg, logger: log}
	a.router = a.setupRouter(m)
	a.registerRoutes(handlers, tokens, admins, limiter, idempotency, m)
	return a
}

// setupRouter creates and configures the Gin router.
func (a *App) setupRouter(m *metrics.Metrics) *gin.Engine {
	switch a.config.Server.Mode {
	case gin.DebugMode, gin.TestMode:
		gin.SetMode(a.config.Server.Mode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Apply global middleware
	r.Use(middleware.Recovery(a.logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(a.logger))
	r.Use(middleware.CORS(a.config.Server.AllowedOrigins))
	if m != nil {
		r.Use(middleware.Metrics(m))
	}

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if m != nil {
		r.GET(a.config.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	return r
}

// registerRoutes registers all HTTP routes.
func (a *App) registerRoutes(
	handlers *ginadapter.Handlers,
	tokens outbound.TokenPort,
	admins *middleware.AdminAuthorizer,
	limiter outbound.RateLimiterPort,
	idempotency outbound.IdempotencyStorePort,
	m *metrics.Metrics,
) {
	rl := a.config.RateLimit

	v1 := a.router.Group("/api/v1")
	if limiter != nil {
		v1.Use(middleware.RateLimit(limiter, middleware.RateLimitConfig{
			Name:    "global",
			Limit:   rl.GlobalLimit,
			Window:  rl.GlobalWindow,
			KeyFunc: middleware.ByIP,
			Metrics: m,
			Logger:  a.logger,
		}))
	}

	routeMW := ginadapter.RouteMiddleware{
		Auth:  middleware.RequireAuth(tokens),
		Admin: middleware.RequireAdmin(admins),
		Mutations: []gin.HandlerFunc{
			middleware.Idempotency(idempotency, rl.IdempotencyTTL, a.logger),
		},
	}
	if limiter != nil {
		routeMW.Chat = append(routeMW.Chat, middleware.RateLimit(limiter, middleware.RateLimitConfig{
			Name:    "chat",
			Limit:   rl.ChatLimit,
			Window:  rl.ChatWindow,
			KeyFunc: middleware.ByAccountOrIP,
			Metrics: m,
			Logger:  a.logger,
		}))
	}

	handlers.RegisterRoutes(v1, routeMW)
}

// Router returns the HTTP router.
func (a *App) Router() *gin.Engine {
	return a.router
}

// Logger returns the application logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}
