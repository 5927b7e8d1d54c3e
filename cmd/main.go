// main.go
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RoyerReyes/Microservicio-reportes-analisis/internal/auth"
	"github.com/RoyerReyes/Microservicio-reportes-analisis/internal/cache"
	"github.com/RoyerReyes/Microservicio-reportes-analisis/internal/config"
	"github.com/RoyerReyes/Microservicio-reportes-analisis/internal/database"
	"github.com/RoyerReyes/Microservicio-reportes-analisis/internal/handlers"
	"github.com/RoyerReyes/Microservicio-reportes-analisis/internal/services"
)

func main() {
	cfg := config.Load()
	config.InitLogger(cfg.App.LogLevel)

	slog.Info("Starting application",
		"service", cfg.App.Name,
		"version", cfg.App.Version,
		"env", cfg.App.Env,
	)

	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Configuration loaded successfully",
		"server_port", cfg.Server.Port,
		"gin_mode", cfg.Server.Mode,
		"db_type", cfg.Database.Type,
		"cache_enabled", cfg.Cache.Enabled,
		"auth_enabled", cfg.Auth.Enabled,
	)

	db, err := database.Connect(cfg.Database, cfg.Breaker)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	cacheManager := cache.New(cfg.Cache.RedisURL, cfg.Cache.Enabled, cfg.Cache.DefaultTTL)

	reportService := services.NewReportService(db, cacheManager, cfg.Reports, cfg.Cache.ReportTTL)
	pdfGenerator := services.NewPDFGenerator(cfg.Reports.CompanyName)
	excelGenerator := services.NewExcelGenerator(cfg.Reports.CompanyName)

	keyManager := auth.NewKeyManager(cfg.Auth)
	jwtService := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiration)

	srv := handlers.NewServer(cfg, reportService, db, cacheManager, pdfGenerator, excelGenerator, keyManager, jwtService)
	router := srv.SetupRoutes()

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("Starting HTTP server", "addr", cfg.Addr())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Server started successfully", "port", cfg.Server.Port)

	waitForShutdown(server, db, cacheManager)
}

func waitForShutdown(server *http.Server, db *database.Manager, cacheManager *cache.Manager) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	slog.Info("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	cacheManager.Close()
	if err := db.Close(); err != nil {
		slog.Error("Failed to close database", "error", err)
	}

	slog.Info("Server gracefully stopped")
}
