package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bazaarlabs/bazaar/internal"
	"github.com/bazaarlabs/bazaar/internal/events"
	"github.com/bazaarlabs/bazaar/internal/handler/api"
	"github.com/bazaarlabs/bazaar/internal/middleware"
	"github.com/bazaarlabs/bazaar/internal/payment"
	"github.com/bazaarlabs/bazaar/internal/postgres"
	"github.com/bazaarlabs/bazaar/internal/pricing"
	"github.com/bazaarlabs/bazaar/internal/service"
	"github.com/bazaarlabs/bazaar/internal/telemetry"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

func run() error {
	ctx := context.Background()

	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	logger.Info().Msg("connecting to database")
	sqlDB, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	logger.Info().Msg("running database migrations")
	if err := internal.RunMigrations(sqlDB); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	// Stores
	catalog := postgres.NewProductStore(pool)
	cartStore := postgres.NewCartStore(pool)
	orderStore := postgres.NewOrderStore(pool)

	// Payment provider
	provider, err := newPaymentProvider(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize payment provider: %w", err)
	}

	// Price engine
	pricer, err := pricing.NewFlatRateEngine(pricing.Config{
		TaxRate:               cfg.Pricing.TaxRate,
		FreeShippingThreshold: cfg.Pricing.FreeShippingThreshold,
		CityRates:             cfg.Pricing.CityRates,
		CountryRates:          cfg.Pricing.CountryRates,
		DefaultRate:           cfg.Pricing.DefaultShippingRate,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize price engine: %w", err)
	}

	// Event publisher
	var publisher events.Publisher
	if cfg.NATS.URL != "" {
		natsPublisher, err := events.NewNATSPublisher(cfg.NATS.URL)
		if err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		publisher = natsPublisher
		logger.Info().Str("url", cfg.NATS.URL).Msg("event publisher connected")
	} else {
		publisher = events.NewNoopPublisher()
		logger.Warn().Msg("no NATS url configured, lifecycle events disabled")
	}
	defer publisher.Close()

	// Services
	cartService := service.NewCartService(cartStore, catalog)
	checkoutService := service.NewCheckoutService(cartService, pricer, provider, cfg.Currency)
	orderService := service.NewOrderService(orderStore, cartStore, catalog, pricer, provider, publisher, logger)
	returnService := service.NewReturnService(orderStore, publisher, logger)

	// Metrics
	httpMetrics := middleware.NewMetrics("bazaar", nil)
	businessMetrics := telemetry.NewBusinessMetrics(nil)

	// HTTP server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(logger))
	e.Use(httpMetrics.Middleware())
	e.Use(echomw.BodyLimit("64K"))

	e.GET("/health", func(c echo.Context) error {
		if err := pool.Ping(c.Request().Context()); err != nil {
			return c.String(http.StatusServiceUnavailable, "database unreachable")
		}
		return c.String(http.StatusOK, "OK")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	apiHandler := api.NewHandler(cartService, checkoutService, orderService, returnService, businessMetrics)
	apiHandler.RegisterRoutes(e.Group("/api/v1", middleware.Actor()))

	// Serve until interrupted, then drain in-flight requests.
	errCh := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("server listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-stop:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

func newPaymentProvider(cfg *internal.Config, logger zerolog.Logger) (payment.Provider, error) {
	switch cfg.Payment.Provider {
	case "razorpay":
		rzp := payment.RazorpayConfig{
			KeyID:     cfg.Payment.Razorpay.KeyID,
			KeySecret: cfg.Payment.Razorpay.KeySecret,
			Timeout:   cfg.Payment.Timeout,
		}
		logger.Info().Bool("test_mode", rzp.IsTestMode()).Msg("using razorpay payment provider")
		return payment.NewRazorpayProvider(rzp)
	case "stripe":
		sc := payment.StripeConfig{SecretKey: cfg.Payment.Stripe.SecretKey}
		logger.Info().Bool("test_mode", sc.IsTestMode()).Msg("using stripe payment provider")
		return payment.NewStripeProvider(sc)
	default:
		logger.Warn().Msg("using mock payment provider")
		return payment.NewMockProvider(), nil
	}
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
