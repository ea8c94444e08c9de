package app

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/arkgate/server/cmd/server/docs" // swagger docs
	"github.com/arkgate/server/internal/infra/config"
	"github.com/arkgate/server/internal/module/ai"
	"github.com/arkgate/server/internal/utils/metrics"
	"github.com/arkgate/server/internal/utils/middleware"
)

// App represents the application.
type App struct {
	config   *config.Config
	router   *gin.Engine
	logger   *zap.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics

	aiModule *ai.Module
}

// NewApp assembles the router around the generation module.
func NewApp(
	cfg *config.Config,
	logger *zap.Logger,
	registry *prometheus.Registry,
	m *metrics.Metrics,
	aiModule *ai.Module,
) *App {
	a := &App{
		config:   cfg,
		logger:   logger,
		registry: registry,
		metrics:  m,
		aiModule: aiModule,
	}
	a.router = a.setupRouter()
	a.aiModule.RegisterRoutes(a.router)
	return a
}

// setupRouter creates and configures the Gin router.
func (a *App) setupRouter() *gin.Engine {
	if a.config.Log.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Apply global middleware
	r.Use(middleware.Recovery(a.logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(a.logger))
	r.Use(middleware.CORS(middleware.CORSConfigFrom(a.config.CORS)))
	if a.config.Metrics.Enabled {
		r.Use(middleware.Metrics(a.metrics))
	}

	// Prometheus exposition of the gateway's own registry
	if a.config.Metrics.Enabled && a.registry != nil {
		r.GET(a.config.Metrics.Path, gin.WrapH(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})))
	}

	// Swagger documentation endpoint
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))

	return r
}

// Router returns the HTTP router.
func (a *App) Router() *gin.Engine {
	return a.router
}

// Logger returns the application logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// SelfCheck verifies upstream credentials before serving.
func (a *App) SelfCheck(ctx context.Context) error {
	if !a.config.Ark.SelfCheck {
		a.logger.Warn("ark self-check disabled")
		return nil
	}
	return a.aiModule.SelfCheck(ctx)
}

// Stop flushes buffered logs.
func (a *App) Stop() {
	_ = a.logger.Sync()
}
