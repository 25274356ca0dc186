package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amabee/property-rental/internal/config"
	"github.com/amabee/property-rental/internal/database"
	httpapi "github.com/amabee/property-rental/internal/http"
	"github.com/amabee/property-rental/internal/ledger"
	"github.com/amabee/property-rental/internal/logger"
	"github.com/amabee/property-rental/internal/repository"
	"github.com/amabee/property-rental/internal/service"
	"github.com/amabee/property-rental/internal/store"

	"github.com/go-redis/redis/v8"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, serviceName)
			if err != nil {
				return err
			}
			defer log.Sync()
			return serve(cmd.Context(), cfg, log)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	repo, db := openRepository(cfg, log)
	if db != nil {
		defer database.Close(db)
	}

	var kv store.KV
	if cfg.Redis.Enabled {
		redisClient := store.NewRedisClient(&cfg.Redis)
		defer redisClient.Close()
		if err := pingRedis(ctx, redisClient); err != nil {
			log.Warn("Redis enabled but unreachable, login throttling disabled", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		} else {
			kv = store.NewRedisKV(redisClient)
			log.Info("Redis enabled for login throttling", zap.String("addr", cfg.Redis.Addr))
		}
	}

	calc := ledger.NewCalculator(cfg.Location(), nil)
	auth := service.NewAuthService(repo.Users, service.NewBcryptHasher(cfg.Auth.BcryptCost), kv, service.AuthConfig{
		MaxFailedAttempts: cfg.Auth.MaxFailedAttempts,
		Window:            cfg.Auth.LockoutWindow,
	}, log)

	if cfg.Auth.SeedAdmin {
		if cfg.Auth.SeedAdminPassword == "" {
			log.Warn("SEED_ADMIN is set but SEED_ADMIN_PASSWORD is empty, skipping")
		} else if err := auth.SeedAdmin(ctx, cfg.Auth.SeedAdminUsername, cfg.Auth.SeedAdminPassword, cfg.Auth.SeedAdminName); err != nil {
			log.Error("Failed to seed admin", zap.Error(err))
		}
	}

	tenants := service.NewTenantService(repo.Tenants, repo.Payments, calc, log)
	dispatcher := httpapi.NewDispatcher(httpapi.Services{
		Dashboard:  service.NewDashboardService(repo.Houses, repo.Tenants, repo.Payments, calc),
		Categories: service.NewCategoryService(repo.Categories, log),
		Houses:     service.NewHouseService(repo.Houses, store.NewFileBlobStore(cfg.Upload.Dir), cfg.Upload.PlaceholderURL, log),
		Tenants:    tenants,
		Payments:   service.NewPaymentService(repo.Payments, log),
		Auth:       auth,
	}, cfg.HTTP.MaxBodyBytes, log)

	router := httpapi.NewRouter(log)
	router.RegisterRentalRoutes(dispatcher, httpapi.NewReportHandler(tenants, log))

	srv := service.NewServer(cfg.HTTP.Addr, router.Handler(cfg.HTTP.CORSOrigin), log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var serveErr error
	select {
	case sig := <-sigCh:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr = err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		log.Warn("HTTP server shutdown incomplete", zap.Error(err))
	}
	return serveErr
}

// openRepository falls back to the in-memory store when the database is
// disabled or unreachable.
func openRepository(cfg *config.Config, log *zap.Logger) (*repository.Repository, *sql.DB) {
	if cfg.DBEnabled {
		db, err := database.NewPostgresDB(&cfg.Database)
		if err == nil {
			log.Info("DB enabled for rentald", zap.String("host", cfg.Database.Host), zap.String("database", cfg.Database.Database))
			return repository.NewPostgres(db, cfg.Database.RetryAttempts), db
		}
		log.Warn("DB enabled but connection failed, falling back to in-memory store", zap.Error(err))
	} else {
		log.Info("DB disabled, using in-memory store")
	}
	return repository.NewMemory(), nil
}

func pingRedis(ctx context.Context, c *redis.Client) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return c.Ping(ctx).Err()
}
