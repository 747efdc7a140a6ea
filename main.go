package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/msomdec/acme-invoices/internal/config"
	"github.com/msomdec/acme-invoices/internal/domain"
	"github.com/msomdec/acme-invoices/internal/handler"
	"github.com/msomdec/acme-invoices/internal/metrics"
	"github.com/msomdec/acme-invoices/internal/repository/postgres"
	"github.com/msomdec/acme-invoices/internal/repository/sqlite"
	"github.com/msomdec/acme-invoices/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	logOpts := &slog.HandlerOptions{Level: slog.LevelInfo}
	logger := slog.New(slog.NewMultiHandler(
		slog.NewTextHandler(os.Stdout, logOpts),
		slog.NewJSONHandler(os.Stderr, logOpts),
	))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	store, err := openStore(context.Background(), cfg)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	if err := store.Migrate(context.Background()); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("database migrations applied")

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	pages := service.NewPageCache(cfg.PageCacheTTL, collector)
	defer pages.Stop()
	limiter := service.NewLoginLimiter(service.PerMinute(cfg.LoginRatePerMinute), cfg.LoginBurst, 10*time.Minute)
	defer limiter.Stop()

	authService := service.NewAuthService(store.Users(), cfg.JWTSecret, cfg.BcryptCost, cfg.SessionTTL)
	invoiceService := service.NewInvoiceService(store.Invoices(), pages, collector)
	dashboardService := service.NewDashboardService(store.Invoices(), store.Customers())

	if cfg.SeedDemo {
		if err := service.SeedDemo(context.Background(), authService, store); err != nil {
			slog.Error("failed to seed demo data", "error", err)
			os.Exit(1)
		}
	}

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, handler.Deps{
		Auth:         authService,
		Invoices:     invoiceService,
		Dashboard:    dashboardService,
		Pages:        pages,
		Limiter:      limiter,
		Metrics:      collector,
		Gatherer:     reg,
		CookieSecure: cfg.CookieSecure,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.Recover(handler.LogRequests(collector, handler.SecurityHeaders(mux))),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// openStore picks Postgres when DATABASE_URL is set and SQLite otherwise.
func openStore(ctx context.Context, cfg *config.Config) (domain.Store, error) {
	if cfg.DatabaseURL != "" {
		slog.Info("using postgres backend")
		db, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return db, nil
	}
	slog.Info("using sqlite backend", "path", cfg.DatabasePath)
	db, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}
	return db, nil
}
