package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/Nishantvt5/merch-app/api/middleware"
	"github.com/Nishantvt5/merch-app/api/routes"
	"github.com/Nishantvt5/merch-app/internal/auth"
	"github.com/Nishantvt5/merch-app/internal/cart"
	"github.com/Nishantvt5/merch-app/internal/catalog"
	"github.com/Nishantvt5/merch-app/internal/users"
	"github.com/Nishantvt5/merch-app/pkg/auth/session"
	"github.com/Nishantvt5/merch-app/pkg/config"
	"github.com/Nishantvt5/merch-app/pkg/db"
	"github.com/Nishantvt5/merch-app/pkg/env"
	"github.com/Nishantvt5/merch-app/pkg/logger"
	"github.com/Nishantvt5/merch-app/pkg/metrics"
	"github.com/Nishantvt5/merch-app/pkg/migrate"
	"github.com/Nishantvt5/merch-app/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, dbClient.Close()) }()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, redisClient.Close()) }()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	catalogRepo := catalog.NewRepository(dbClient.DB())
	catalogService, err := catalog.NewService(catalogRepo)
	if err != nil {
		return err
	}
	catalogAdmin, err := catalog.NewAdminService(catalogRepo, dbClient)
	if err != nil {
		return err
	}

	cartService, err := cart.NewService(cart.ServiceParams{
		Repo:        cart.NewRepository(dbClient.DB()),
		Tx:          dbClient,
		Products:    catalogService,
		MaxQuantity: cfg.Cart.MaxQuantity,
		Logger:      logg,
		Metrics:     metrics.NewCartMetrics(registry),
	})
	if err != nil {
		return err
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(dbClient.DB()),
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		return err
	}
	signupService, err := auth.NewSignupService(auth.SignupServiceParams{
		DB:             dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		return err
	}
	adminRegisterService, err := auth.NewAdminRegisterService(auth.AdminRegisterServiceParams{
		DB:             dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		return err
	}

	limiter := middleware.NewIPRateLimiter(
		cfg.PublicRateLimit.RequestsPerSecond,
		cfg.PublicRateLimit.Burst,
		cfg.PublicRateLimit.IdleTTL,
	)

	addr := ":" + env.FirstOf(cfg.App.Port, "PORT")
	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Params{
			Config:        cfg,
			Logger:        logg,
			DB:            dbClient,
			Redis:         redisClient,
			Sessions:      sessionManager,
			Registry:      registry,
			Limiter:       limiter,
			Auth:          authService,
			Signup:        signupService,
			AdminRegister: adminRegisterService,
			Catalog:       catalogService,
			CatalogAdmin:  catalogAdmin,
			Cart:          cartService,
		}),
	}

	logCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
		"shop": cfg.App.ShopName,
	})
	logg.Info(logCtx, "starting api server")

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		limiter.Run(groupCtx)
		return nil
	})
	group.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
		defer cancel()
		logg.Info(logCtx, "shutting down api server")
		return server.Shutdown(shutdownCtx)
	})

	return group.Wait()
}
