package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"inventorypro/internal"
	"inventorypro/internal/bootstrap"
	"inventorypro/internal/events"
	"inventorypro/internal/handler"
	"inventorypro/internal/middleware"
	"inventorypro/internal/postgres"
	"inventorypro/internal/router"
	"inventorypro/internal/routes"
	"inventorypro/internal/service"
)

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize database/sql connection for migrations
	logger.Info("Connecting to database...")
	sqlDB, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	// Run migrations
	logger.Info("Running database migrations...")
	if err := internal.RunMigrations(sqlDB); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	// Initialize pgx connection pool for application queries
	pool, err := pgxpool.New(ctx, cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	store := postgres.NewStore(pool)

	// First-run admin account
	if err := bootstrap.EnsureAdminUser(ctx, store, cfg.Admin, logger); err != nil {
		return err
	}

	// Event publishing (disabled without NATS_URL)
	publisher, err := events.NewPublisher(cfg.NatsURL, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}
	defer publisher.Close()
	if cfg.NatsURL != "" {
		logger.Info("Event publishing enabled", "url", cfg.NatsURL)
	}

	// Invoice rendering
	renderer, err := service.NewInvoiceRenderer(cfg.Store.Name, cfg.Store.Address, cfg.Store.Phone)
	if err != nil {
		return fmt.Errorf("failed to initialize invoice renderer: %w", err)
	}

	// Services
	sessions := service.NewSessionManager(time.Duration(cfg.SessionTTL) * time.Hour)
	cartService := service.NewCartService(store)
	checkoutService := service.NewCheckoutService(store, store, renderer, publisher, logger)
	reportService := service.NewReportService(store, store)
	userService := service.NewUserService(store)

	// Expired sessions are reaped in the background
	go func() {
		for range time.Tick(15 * time.Minute) {
			sessions.Sweep()
		}
	}()

	// Middleware
	metrics := middleware.NewMetrics()
	apiLimiter := middleware.NewRateLimiter(300, 60)
	loginLimiter := middleware.NewRateLimiter(10, 5)

	r := router.New(
		router.Recovery(logger),
		middleware.RequestID,
		middleware.WithRequestLogger(logger),
		router.Logger(logger),
		metrics.Middleware,
		middleware.SecurityHeaders,
		router.CORS(strings.Split(cfg.CORSOrigins, ",")),
		middleware.MaxBodySize(middleware.DefaultMaxBodySize),
		middleware.Timeout(30*time.Second),
		apiLimiter.Middleware,
	)

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Metrics endpoint; protect via firewall in production
	r.Handle(http.MethodGet, "/metrics", promhttp.Handler())

	routes.RegisterAPIRoutes(r, routes.Deps{
		Products: handler.NewProductHandler(store),
		Cart:     handler.NewCartHandler(cartService),
		Checkout: handler.NewCheckoutHandler(checkoutService, metrics),
		Orders:   handler.NewOrderHandler(store, renderer),
		Reports:  handler.NewReportHandler(reportService),
		Auth:     handler.NewAuthHandler(userService, store, sessions),

		Users:    store,
		Sessions: sessions,

		SecureCookies: cfg.Env == "prod",
	}, loginLimiter.Middleware)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-stop:
		logger.Info("Shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
