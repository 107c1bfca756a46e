package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/andres10976/orderwatch/internal/config"
	"github.com/andres10976/orderwatch/internal/database"
	"github.com/andres10976/orderwatch/internal/handler"
	"github.com/andres10976/orderwatch/internal/hub"
	"github.com/andres10976/orderwatch/internal/middleware"
	"github.com/andres10976/orderwatch/internal/platform"
	"github.com/andres10976/orderwatch/internal/repository"
	"github.com/andres10976/orderwatch/internal/service/detector"
	"github.com/andres10976/orderwatch/internal/service/monitor"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Storage
	var (
		settings repository.SettingsStore
		alerts   repository.AlertStore
	)
	if cfg.DatabaseURL != "" {
		pool, err := database.Connect(cfg.DatabaseURL)
		if err != nil {
			slog.Error("database connection failed", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		if err := database.Migrate(ctx, pool); err != nil {
			slog.Error("migration failed", "error", err)
			os.Exit(1)
		}
		settings = repository.NewSettingsRepository(pool)
		alerts = repository.NewAlertRepository(pool)
	} else {
		slog.Warn("DATABASE_URL not set, settings and alerts are kept in memory")
		settings = repository.NewMemorySettings()
		alerts = repository.NewMemoryAlerts()
	}

	// Services
	fetcher, err := detector.NewHTTPFetcher(cfg.PollTimeout)
	if err != nil {
		slog.Error("failed to build http fetcher", "error", err)
		os.Exit(1)
	}
	det := detector.New(fetcher, cfg.SimulationOdds)
	events := hub.New(cfg.AlertSoundURL, cfg.CORSAllowOrigin)

	mon := monitor.New(det, settings, alerts, events.Capabilities(), events, monitor.Options{
		TargetURL:      cfg.TargetURL,
		PollInterval:   cfg.PollInterval,
		ErrorThreshold: cfg.ErrorThreshold,
		Notification: platform.Notification{
			Title:              cfg.NotifyTitle,
			Body:               cfg.NotifyBody,
			Icon:               cfg.NotifyIcon,
			Tag:                "new-order",
			RequireInteraction: true,
		},
	})
	go mon.Run(ctx)

	// Resume monitoring left enabled by the previous process.
	if err := mon.Restore(ctx); err != nil {
		slog.Warn("failed to restore session", "error", err)
	}

	// Handlers
	monHandler := handler.NewMonitorHandler(mon)
	settingsHandler := handler.NewSettingsHandler(mon)
	alertHandler := handler.NewAlertHandler(alerts)

	// Router
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(cfg.CORSAllowOrigin))
	r.Use(middleware.Logger)
	r.Use(middleware.Recovery)

	r.Route("/api/v1", func(r chi.Router) {
		monHandler.RegisterRoutes(r)
		settingsHandler.RegisterRoutes(r)
		alertHandler.RegisterRoutes(r)
		r.Get("/events", events.ServeHTTP)
	})

	// Server with graceful shutdown
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.ServerPort, "target", cfg.TargetURL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	// Keep the persisted flag so the next boot resumes monitoring.
	mon.Close()
	events.Close()

	// Give in-flight requests time to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	srv.Shutdown(shutdownCtx)
}
