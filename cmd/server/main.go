package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/croplens/api/internal/analysis"
	"github.com/croplens/api/internal/config"
	"github.com/croplens/api/internal/database"
	"github.com/croplens/api/internal/handlers"
	"github.com/croplens/api/internal/logger"
	"github.com/croplens/api/internal/middleware"
	"github.com/croplens/api/internal/provider"
	"github.com/croplens/api/internal/provider/earthengine"
	"github.com/croplens/api/internal/repository"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Server.Env)
	log.Info("Starting CropLens API", map[string]interface{}{
		"version":     handlers.APIVersion,
		"environment": cfg.Server.Env,
		"port":        cfg.Server.Port,
	})

	// The imagery provider is optional at startup: without credentials the
	// server still serves /health (initialized=false) and rejects analysis
	// requests with a sanitized 500.
	var imagery provider.ImageryProvider
	if cfg.Provider.Configured() {
		eeClient, err := earthengine.New(earthengine.Config{
			ProjectID:   cfg.Provider.ProjectID,
			ClientEmail: cfg.Provider.ClientEmail,
			PrivateKey:  cfg.Provider.PrivateKey,
		})
		if err != nil {
			log.Fatal("Failed to initialize imagery provider", err, map[string]interface{}{
				"project_id": cfg.Provider.ProjectID,
			})
		}
		imagery = eeClient
		log.Info("Imagery provider initialized", map[string]interface{}{
			"project_id": cfg.Provider.ProjectID,
		})
	} else {
		log.Warn("Imagery provider credentials not configured; analysis requests will fail", nil)
	}

	// Optional analysis history store.
	ctx := context.Background()
	var recorder analysis.Recorder
	var historyRepo repository.AnalysisRepository
	if cfg.Database.Enabled {
		db, err := database.NewPostgresPool(ctx, cfg.Database)
		if err != nil {
			log.Fatal("Failed to connect to database", err, map[string]interface{}{
				"host": cfg.Database.Host,
				"port": cfg.Database.Port,
				"name": cfg.Database.Name,
			})
		}
		defer db.Close()

		if err := repository.EnsureSchema(ctx, db); err != nil {
			log.Fatal("Failed to ensure database schema", err, nil)
		}

		repo := repository.NewAnalysisRepository(db)
		recorder = repo
		historyRepo = repo

		log.Info("Analysis history enabled", map[string]interface{}{
			"host":     cfg.Database.Host,
			"database": cfg.Database.Name,
		})
	}

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Middleware order matters: RequestID -> Logger -> Recovery -> CORS.
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(cfg.CORS.Origins))

	healthHandler := handlers.NewHealthHandler(imagery != nil)
	router.GET("/health", healthHandler.Health)

	analysisService := analysis.NewService(imagery, recorder, log)
	analyzeHandler := handlers.NewAnalyzeHandler(analysisService)
	router.POST("/api/analyze_field", analyzeHandler.Analyze)

	if historyRepo != nil {
		historyHandler := handlers.NewHistoryHandler(historyRepo)
		v1 := router.Group("/api/v1")
		{
			v1.GET("/analyses", historyHandler.Recent)
		}
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Info("Server listening", map[string]interface{}{
			"port": cfg.Server.Port,
			"addr": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", err, nil)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", err, map[string]interface{}{
			"timeout": shutdownTimeout.String(),
		})
	}

	log.Info("Server exited", nil)
}
