package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/campuspool/campuspool-backend/api/routes"
	"github.com/campuspool/campuspool-backend/internal/auth"
	"github.com/campuspool/campuspool-backend/internal/dashboard"
	"github.com/campuspool/campuspool-backend/internal/listings"
	"github.com/campuspool/campuspool-backend/internal/users"
	"github.com/campuspool/campuspool-backend/pkg/auth/session"
	"github.com/campuspool/campuspool-backend/pkg/config"
	"github.com/campuspool/campuspool-backend/pkg/db"
	"github.com/campuspool/campuspool-backend/pkg/logger"
	"github.com/campuspool/campuspool-backend/pkg/metrics"
	"github.com/campuspool/campuspool-backend/pkg/migrate"
	"github.com/campuspool/campuspool-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

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

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		closeAll(logg, dbClient.Close)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		closeAll(logg, dbClient.Close)
		os.Exit(1)
	}

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		closeAll(logg, redisClient.Close, dbClient.Close)
		os.Exit(1)
	}

	usersRepo := users.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       usersRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		closeAll(logg, redisClient.Close, dbClient.Close)
		os.Exit(1)
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		DB:             dbClient,
		SessionManager: sessionManager,
		PasswordConfig: cfg.Password,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		closeAll(logg, redisClient.Close, dbClient.Close)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	listingMetrics := metrics.NewListingMetrics(registry)

	listingsRepo := listings.NewRepository(dbClient.DB())
	listingsService, err := listings.NewService(listings.ServiceParams{
		Repo:    listingsRepo,
		Metrics: listingMetrics,
		Logger:  logg,
		Config:  cfg.Listings,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create listings service", err)
		closeAll(logg, redisClient.Close, dbClient.Close)
		os.Exit(1)
	}

	usersService, err := users.NewService(usersRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		closeAll(logg, redisClient.Close, dbClient.Close)
		os.Exit(1)
	}

	dashboardService, err := dashboard.NewService(dashboard.ServiceParams{
		Listings: listingsRepo,
		Users:    usersRepo,
		Config:   cfg.Listings,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create dashboard service", err)
		closeAll(logg, redisClient.Close, dbClient.Close)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:           cfg,
			Logger:           logg,
			DB:               dbClient,
			Redis:            redisClient,
			Metrics:          registry,
			SessionManager:   sessionManager,
			AuthService:      authService,
			RegisterService:  registerService,
			ListingsService:  listingsService,
			UsersService:     usersService,
			DashboardService: dashboardService,
		}),
	}

	stopCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			closeAll(logg, redisClient.Close, dbClient.Close)
			os.Exit(1)
		}
	case <-stopCtx.Done():
		logg.Info(ctx, "shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
		<-serveErr
	}

	closeAll(logg, redisClient.Close, dbClient.Close)
	logg.Info(ctx, "api server stopped")
}

// closeAll runs every closer and reports their failures as one error.
func closeAll(logg *logger.Logger, closers ...func() error) {
	var err error
	for _, close := range closers {
		err = multierr.Append(err, close())
	}
	if err != nil {
		logg.Error(context.Background(), "error closing resources", err)
	}
}
