package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/AstralMortem/go-microservice-template/internal/handler"
	"github.com/AstralMortem/go-microservice-template/internal/repository"
	"github.com/AstralMortem/go-microservice-template/internal/service"
	"github.com/AstralMortem/go-microservice-template/pkg/cache"
	"github.com/AstralMortem/go-microservice-template/pkg/config"
	"github.com/AstralMortem/go-microservice-template/pkg/credential"
	"github.com/AstralMortem/go-microservice-template/pkg/database"
	"github.com/AstralMortem/go-microservice-template/pkg/logger"
	"github.com/AstralMortem/go-microservice-template/pkg/middleware"
	"github.com/AstralMortem/go-microservice-template/pkg/telemetry"
	"github.com/AstralMortem/go-microservice-template/pkg/token"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Init(&logger.Config{
		ServiceName: cfg.App.Name,
		Development: cfg.IsDevelopment(),
	}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting service", zap.String("name", cfg.App.Name), zap.String("version", cfg.App.Version))

	ctx := context.Background()

	// Initialize OpenTelemetry
	if _, err := telemetry.Init(ctx, &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
	}); err != nil {
		appLog.Warn("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		if err := telemetry.Shutdown(ctx); err != nil {
			appLog.Warn("Telemetry shutdown failed", zap.Error(err))
		}
	}()

	// Initialize database connection
	dbOpts := database.DefaultOptions()
	dbOpts.EnableTracing = cfg.OTel.Enabled
	db, err := database.NewPostgres(ctx, cfg.Database, dbOpts)
	if err != nil {
		appLog.Fatal("Database connection failed", zap.Error(err))
	}
	defer db.Close()
	appLog.Info("Database connected",
		zap.Int32("min_conns", cfg.Database.MinConns),
		zap.Int32("max_conns", cfg.Database.MaxConns))

	// Initialize cache; the service degrades to uncached reads without it
	cacheClient, err := cache.New(ctx, cfg.Redis)
	if err != nil {
		appLog.Warn("Redis connection failed, running without cache", zap.Error(err))
		cacheClient = nil
	} else {
		defer cacheClient.Close()
	}

	// Token codec shared by all authorization gates
	codec, err := token.NewCodec(cfg.JWT)
	if err != nil {
		appLog.Fatal("Token codec initialization failed", zap.Error(err))
	}

	// Wire the document module
	documentRepo := repository.NewPostgresDocumentRepository(db.Pool())
	documentService := service.NewDocumentService(documentRepo, cacheClient)
	documentHandler := handler.NewDocumentHandler(documentService)
	healthHandler := handler.NewHealthHandler(cfg.App.Name, cfg.App.Version, db, cacheClient)

	// Setup Gin
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler(cfg.App.Debug))
	if cfg.OTel.Enabled {
		router.Use(telemetry.TracingMiddleware(cfg.OTel.ServiceName))
	}

	// Health check endpoints
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	// API routes
	api := router.Group(cfg.Router.GlobalPrefix)
	registerDocumentRoutes(api, codec, cfg.Auth.EnforceRBAC, documentHandler)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		appLog.Info("Listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Fatal("Server forced to shutdown", zap.Error(err))
	}

	appLog.Info("Server exited gracefully")
}

// registerDocumentRoutes declares the document endpoints and the credential
// expression each one requires.
func registerDocumentRoutes(api *gin.RouterGroup, codec *token.Codec, enforce bool, h *handler.DocumentHandler) {
	read := credential.Permission("doc:read").Or(credential.Permission("doc:write"))
	write := credential.Permission("doc:write")
	remove := credential.Role("admin").Or(credential.Permission("doc", "delete"))

	docs := api.Group("/documents")
	{
		docs.GET("", middleware.AuthRequired(codec, enforce, read), h.List)
		docs.GET("/:id", middleware.AuthRequired(codec, enforce, read), h.Get)
		docs.POST("", middleware.AuthRequired(codec, enforce, write), h.Create)
		docs.PUT("/:id", middleware.AuthRequired(codec, enforce, write), h.Update)
		docs.DELETE("/:id", middleware.AuthRequired(codec, enforce, remove), h.Delete)
	}
}
