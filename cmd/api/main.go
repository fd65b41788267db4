// cmd/api/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/stockwise/internal/api"
	"github.com/andresuchdata/stockwise/internal/cache"
	"github.com/andresuchdata/stockwise/internal/config"
	"github.com/andresuchdata/stockwise/internal/domain"
	"github.com/andresuchdata/stockwise/internal/ingest"
	"github.com/andresuchdata/stockwise/internal/repository"
	"github.com/andresuchdata/stockwise/internal/repository/postgres"
	"github.com/andresuchdata/stockwise/internal/service"
	"github.com/andresuchdata/stockwise/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
		logger.SetLevel("debug")
	} else {
		gin.SetMode(gin.ReleaseMode)
		logger.SetLevel("info")
	}

	// Optional snapshot persistence
	var repo repository.AnalysisRepository
	if cfg.Database.Enabled {
		db, err := postgres.NewDB(&cfg.Database)
		if err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer db.Close()
		repo = postgres.NewAnalysisRepository(db)
	}

	// Optional result cache
	analysisCache, err := cache.NewAnalysisCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Cache unavailable, continuing without it")
		analysisCache = cache.NewNoopAnalysisCache()
	}

	analysisService := service.NewAnalysisService(cfg.Engine.ServiceLevelConfig(), analysisCache, repo)
	loadInitialDataset(analysisService)

	router := api.NewRouter(&api.Services{AnalysisService: analysisService}, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}

// loadInitialDataset reads CSV inputs named by environment variables so the
// server can come up with data before the first upload. All three are
// optional.
func loadInitialDataset(svc *service.AnalysisService) {
	productsPath := os.Getenv("DATA_PRODUCTS_CSV")
	if productsPath == "" {
		return
	}

	products, err := ingest.LoadProducts(productsPath)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Failed to load initial products")
		return
	}

	var transactions []domain.Transaction
	if path := os.Getenv("DATA_TRANSACTIONS_CSV"); path != "" {
		if transactions, err = ingest.LoadTransactions(path); err != nil {
			logger.Log.Warn().Err(err).Msg("Failed to load initial transactions")
		}
	}

	var purchaseOrders []domain.PurchaseOrder
	if path := os.Getenv("DATA_PURCHASE_ORDERS_CSV"); path != "" {
		if purchaseOrders, err = ingest.LoadPurchaseOrders(path); err != nil {
			logger.Log.Warn().Err(err).Msg("Failed to load initial purchase orders")
		}
	}

	ctx := context.Background()
	svc.LoadDataset(ctx, domain.Dataset{
		Products:       products,
		Transactions:   transactions,
		PurchaseOrders: purchaseOrders,
	})
	if err := svc.Recompute(ctx); err != nil {
		logger.Log.Warn().Err(err).Msg("Initial computation failed")
		return
	}
	logger.Log.Info().Int("products", len(products)).Msg("Initial dataset loaded")
}
