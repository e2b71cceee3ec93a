package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"price-lookup/internal/config"
	"price-lookup/internal/handlers"
	"price-lookup/internal/metrics"
	"price-lookup/internal/pricing"
	"price-lookup/internal/rates"
	"price-lookup/internal/repository"
	"price-lookup/internal/search"
	"price-lookup/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "price-lookup/docs" // Import docs for Swagger
)

// @title           Price Lookup API
// @version         1.0
// @description     API de consulta de precios de inventario: búsqueda por código de barras o referencia con IVA incluido, tasa DETAL y sondas de salud.

// @contact.name   API Support

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:6000
// @BasePath  /api

// @schemes   http https

// Request ID Header
// @description All endpoints support X-Request-ID header for request tracking and correlation. If not provided, a new UUID will be generated and returned in the response header.
func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	appLogger := logger.New(cfg.Environment, "price-lookup-api")
	defer appLogger.Sync()

	appLogger.Info("🚀 Starting Price Lookup API",
		zap.String("environment", cfg.Environment),
		zap.String("host", cfg.Host),
		zap.String("port", cfg.Port),
	)

	appLogger.Info("💾 Inventory store configuration",
		zap.String("driver", cfg.DB.Driver),
		zap.String("host", cfg.DB.Host),
		zap.String("instance", cfg.DB.Instance),
		zap.String("database", cfg.DB.Name),
		zap.String("table", cfg.Columns.Table),
		zap.String("barcode_column", cfg.Columns.Barcode),
	)

	if cfg.RateAPIURL != "" && cfg.RateAPIKey != "" {
		appLogger.Info("💱 Rate bridge configuration",
			zap.String("url", cfg.RateAPIURL),
			zap.Duration("timeout", cfg.RateTimeout),
		)
	} else {
		appLogger.Warn("💱 Rate bridge not configured",
			zap.String("note", "GET /api/tasa-detal answers ConfigError until TASA_API_URL and TASA_API_KEY are set"),
		)
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	appLogger.Info("🔧 Initializing inventory repository...")
	repo, err := openRepository(cfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize repository", zap.Error(err))
	}
	defer repo.Close()
	appLogger.Info("✅ Repository initialized successfully")

	prices, err := pricing.NewCalculator(cfg.TaxRate)
	if err != nil {
		appLogger.Fatal("Invalid TAX_RATE", zap.String("tax_rate", cfg.TaxRate), zap.Error(err))
	}

	httpMetrics := metrics.NewHTTPMetrics("price-lookup")
	searchService := search.NewService(repo, prices, appLogger)
	bridge := rates.NewBridge(cfg, appLogger)

	appLogger.Info("🔧 Initializing handlers...")
	router := handlers.NewRouter(handlers.Router{
		Logger:     appLogger,
		CORSOrigin: cfg.CORSOrigin,
		Metrics:    httpMetrics,
		Inventory:  handlers.NewInventoryHandler(appLogger, searchService, httpMetrics),
		Health:     handlers.NewHealthHandler(appLogger, repo),
		Rates:      handlers.NewRateHandler(appLogger, bridge, httpMetrics),
		Swagger:    true,
	})
	appLogger.Info("✅ Handlers initialized successfully")

	addr := net.JoinHostPort(cfg.Host, cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		appLogger.Info("🌐 Starting HTTP server",
			zap.String("address", addr),
			zap.String("swagger_url", "http://"+addr+"/swagger/index.html"),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	appLogger.Info("Server exited")
}

// openRepository returns the SQL repository for cfg.DB.Driver, or an empty
// in-memory one for DB_DRIVER=memory.
func openRepository(cfg *config.Config) (repository.InventoryRepository, error) {
	if cfg.DB.Driver == "memory" {
		return repository.NewInMemoryRepository(), nil
	}
	return repository.Open(cfg.DB, cfg.Columns)
}
