package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jacob-mennell/fast-insurance-claims/config"
	"github.com/jacob-mennell/fast-insurance-claims/handler"
	"github.com/jacob-mennell/fast-insurance-claims/middleware"
	"github.com/jacob-mennell/fast-insurance-claims/pkg/logger"
	"github.com/jacob-mennell/fast-insurance-claims/service"
)

func main() {
	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.Init(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	slog.Info("configuration loaded successfully")

	// Initialize storage: one explicitly constructed handle, passed down
	store, err := service.NewClaimStore(cfg.Database.Path)
	if err != nil {
		slog.Error("failed to open claim store", "error", err, "path", cfg.Database.Path)
		os.Exit(1)
	}
	slog.Info("claim store opened", "path", store.Path())

	claimLogger := service.NewClaimLogger(store, cfg.Log.File)

	scorer, err := service.NewFraudScorer(&cfg.Fraud)
	if err != nil {
		slog.Error("failed to initialize fraud scorer", "error", err)
		os.Exit(1)
	}
	slog.Info("fraud scorer initialized", "provider", cfg.Fraud.Provider)

	dispatcher := service.NewAgentDispatcher(store, scorer)

	// Initialize handlers
	claimHandler := handler.NewClaimHandler(store, claimLogger)
	logHandler := handler.NewLogHandler(store)
	agentHandler := handler.NewAgentHandler(store, scorer, dispatcher)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New() // Use New() instead of Default() to avoid default middleware

	// Add custom middleware
	router.Use(middleware.RequestID())     // Request ID for tracing
	router.Use(middleware.Recovery())      // Panic recovery
	router.Use(middleware.RequestLogger()) // Access logging
	router.Use(corsMiddleware())           // CORS
	router.Use(cacheMiddleware())          // Cache control
	router.Use(middleware.RateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst))

	// Serve the frontend
	staticDir := cfg.Server.StaticDir
	slog.Info("serving static files", "directory", staticDir)
	router.StaticFile("/app", filepath.Join(staticDir, "index.html"))
	router.StaticFile("/app.js", filepath.Join(staticDir, "app.js"))
	router.StaticFile("/styles.css", filepath.Join(staticDir, "styles.css"))

	// Health check endpoint
	router.GET("/", handler.Health)

	// Protected routes
	protected := router.Group("")
	protected.Use(middleware.APIKeyAuth(&cfg.Auth))
	{
		protected.POST("/claims", claimHandler.Create)
		protected.GET("/claims", claimHandler.List)
		// Kept for interface compatibility; same handler as /claims
		protected.GET("/claims/async", claimHandler.List)
		protected.GET("/claims/:identifier", claimHandler.Get)
		protected.DELETE("/claims/:id", claimHandler.Delete)
		protected.GET("/logs", logHandler.List)
		protected.GET("/agent/check_fraud/:claim_id", agentHandler.CheckFraud)
		protected.POST("/agent/query", agentHandler.Query)
	}

	// Create server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	if err := store.Close(); err != nil {
		slog.Error("failed to close claim store", "error", err)
	}

	slog.Info("server exited gracefully")
}

// corsMiddleware handles CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID, X-API-Key")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// cacheMiddleware sets cache control headers for static files
func cacheMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path

		if strings.HasSuffix(path, ".js") ||
			strings.HasSuffix(path, ".css") ||
			path == "/app" {
			c.Header("Cache-Control", "public, max-age=3600, must-revalidate")
			c.Next()
			return
		}

		// API responses are never cached
		c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
		c.Header("Pragma", "no-cache")
		c.Header("Expires", "0")

		c.Next()
	}
}
