package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/DrewDeMo/finance/internal/auth"
	"github.com/DrewDeMo/finance/internal/billing"
	"github.com/DrewDeMo/finance/internal/config"
	"github.com/DrewDeMo/finance/internal/metrics"
	"github.com/DrewDeMo/finance/internal/middleware"
	"github.com/DrewDeMo/finance/internal/notify"
	"github.com/DrewDeMo/finance/internal/schedule"
	"github.com/DrewDeMo/finance/internal/service"
	"github.com/DrewDeMo/finance/internal/storage/sqlite"
	"github.com/DrewDeMo/finance/pkg/logging"
)

func main() {
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	// Initialize SQLite storage
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenDuration)
	authenticator := auth.NewPasswordAuthenticator(store)
	engine := billing.NewEngine(store, slog.Default())
	feed := notify.NewFeed(50)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogging())
	e.Use(metrics.HTTPMiddleware())
	e.Use(echomw.CORS())

	requireAuth := middleware.RequireAuth(jwtManager)
	service.NewAuthService(authenticator, store, jwtManager, slog.Default()).Register(e, requireAuth)
	service.NewBillService(store, engine, feed, slog.Default()).Register(e, requireAuth)
	service.NewAnalysisService(store, slog.Default()).Register(e, requireAuth)
	service.NewNotificationService(feed).Register(e, requireAuth)
	metrics.Register(e)

	registerStatic(e, cfg.StaticPath)

	// Background sweep: catches month rollover and auto-pay due dates while
	// no page load is running the cycle.
	sweeper := schedule.NewSweeper(engine, store, feed, slog.Default())
	if err := sweeper.Start(cfg.SweepInterval); err != nil {
		slog.Error("Failed to start sweep", "error", err)
		os.Exit(1)
	}
	defer sweeper.Stop()

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		slog.Info("Server starting", "address", addr, "url", fmt.Sprintf("http://localhost%s", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		slog.Error("Shutdown failed", "error", err)
	}
}

// registerStatic serves the built frontend, falling back to index.html for
// unknown non-API paths so client-side routing works.
func registerStatic(e *echo.Echo, staticPath string) {
	staticDir, err := filepath.Abs(staticPath)
	if err != nil {
		slog.Warn("Failed to resolve static path, skipping frontend", "error", err)
		return
	}
	if _, err := os.Stat(staticDir); os.IsNotExist(err) {
		slog.Warn("Static directory missing, serving API only", "path", staticDir)
		return
	}
	slog.Info("Serving static files", "path", staticDir)

	e.GET("/*", func(c echo.Context) error {
		urlPath := c.Request().URL.Path
		if urlPath == "/" {
			urlPath = "/index.html"
		}

		filePath := filepath.Join(staticDir, filepath.Clean(urlPath))
		if _, err := os.Stat(filePath); os.IsNotExist(err) {
			return c.File(filepath.Join(staticDir, "index.html"))
		}
		return c.File(filePath)
	})
}
