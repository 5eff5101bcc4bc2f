package main

import (
	"MediCitas/cache"
	"MediCitas/config"
	"MediCitas/database"
	"MediCitas/logger"
	"MediCitas/metrics"
	"MediCitas/repositories"
	"MediCitas/routes"
	"MediCitas/utils"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "medicitas",
		Short:         "Medical appointment booking service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema and seed the base roles",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			if cfg.DBURL == "" {
				return errors.New("DB_URL is required to migrate")
			}
			db, err := database.InitDB(cmd.Context(), cfg.DBURL, cfg.IsDev(), log)
			if err != nil {
				return err
			}
			return database.Migrate(cmd.Context(), db, log)
		},
	}
}

func bootstrap() (*config.AppConfig, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

func runServer(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	tokens, err := utils.NewTokenIssuer(cfg.SymmetricKey)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector("medicitas", registry)

	deps := routes.Dependencies{
		Config:  cfg,
		Tokens:  tokens,
		Hasher:  utils.NewBcryptHasher(),
		Metrics: collector,
		Log:     log,
	}

	var wg sync.WaitGroup

	switch cfg.StoreDriver {
	case config.DriverPostgres:
		db, err := database.InitDB(ctx, cfg.DBURL, cfg.IsDev(), log)
		if err != nil {
			return err
		}
		if err := database.Migrate(ctx, db, log); err != nil {
			return err
		}
		deps.Store = repositories.NewGormStore(db)
	case config.DriverMemory:
		log.Warn("using in-memory store, data is lost on exit")
		deps.Store = repositories.NewMemoryStore()
	}

	if cfg.RedisURL != "" {
		redisClient, err := database.NewRedisClient(ctx, database.RedisConfig{
			URL:          cfg.RedisURL,
			PoolSize:     cfg.RedisPoolSize,
			DialTimeout:  cfg.RedisDialTimeout,
			MinIdleConns: cfg.RedisMinIdleConns,
			ReadTimeout:  cfg.RedisReadTimeout,
			MaxRetries:   cfg.RedisMaxRetries,
		}, log)
		if err != nil {
			return err
		}
		defer redisClient.Close()

		listingCache, err := cache.NewCache(redisClient)
		if err != nil {
			return err
		}
		deps.Cache = listingCache
		deps.Locker = database.NewRedisLocker(redisClient, log)

		wg.Add(1)
		go func() {
			defer wg.Done()
			database.MonitorRedisPool(ctx, redisClient, log, time.Minute)
		}()
	}

	if cfg.MailEnabled() {
		deps.Notifier = utils.NewMailer(utils.SMTPConfig{
			Host: cfg.SMTPHost,
			Port: cfg.SMTPPort,
			User: cfg.SMTPUser,
			Pass: cfg.SMTPPass,
		})
	}

	srv := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        routes.SetupRoutes(deps),
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxHeaderBytes: 1 << 20,
		IdleTimeout:    30 * time.Second,
	}

	serverErr := make(chan error, 1)
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("starting server", zap.String("addr", srv.Addr), zap.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		stop()
		wg.Wait()
		return fmt.Errorf("listen and serve: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log.Info("shutting down server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	wg.Wait()
	log.Info("server exited gracefully")
	return nil
}
