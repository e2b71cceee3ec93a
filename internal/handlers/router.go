package handlers

import (
	"price-lookup/internal/metrics"
	"price-lookup/pkg/logger"
	"price-lookup/pkg/middleware"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// Router groups what NewRouter needs to mount the HTTP surface.
type Router struct {
	Logger     *zap.Logger
	CORSOrigin string
	Metrics    *metrics.HTTPMetrics
	Inventory  *InventoryHandler
	Health     *HealthHandler
	Rates      *RateHandler
	// Swagger mounts /swagger/*any when set
	Swagger bool
}

// searchPaths are the search routes kept for older clients.
var searchPaths = []string{"/api/buscar", "/buscar", "/buscar.php"}

// NewRouter builds the gin engine with middleware in order:
// CORS, recovery, request logging, request ID, no-cache, metrics, error handler.
func NewRouter(r Router) *gin.Engine {
	binding.EnableDecoderUseNumber = true
	router := gin.New()

	// CORS middleware (must be first to handle preflight requests)
	router.Use(middleware.CORSMiddleware(r.CORSOrigin))
	router.Use(middleware.RecoveryHandler(r.Logger))
	router.Use(logger.GinMiddleware(r.Logger))
	router.Use(middleware.RequestIDMiddleware(r.Logger))
	router.Use(middleware.NoCacheMiddleware("/api/"))
	if r.Metrics != nil {
		router.Use(r.Metrics.Middleware())
	}
	router.Use(middleware.ErrorHandler(r.Logger))

	if r.Swagger {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
	if r.Metrics != nil {
		router.GET("/metrics", gin.WrapH(r.Metrics.Handler()))
	}

	api := router.Group("/api")
	{
		api.GET("/health", r.Health.Health)
		api.GET("/db/health", r.Health.DBHealth)
		api.GET("/tasa-detal", r.Rates.TasaDetal)
	}

	for _, path := range searchPaths {
		router.GET(path, r.Inventory.Buscar)
		router.POST(path, r.Inventory.Buscar)
	}

	router.NoRoute(middleware.NotFoundHandler)
	return router
}
