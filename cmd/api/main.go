package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/example/ec-storefront/internal/activity"
	"github.com/example/ec-storefront/internal/api"
	"github.com/example/ec-storefront/internal/api/middleware"
	"github.com/example/ec-storefront/internal/auth"
	"github.com/example/ec-storefront/internal/command"
	"github.com/example/ec-storefront/internal/config"
	"github.com/example/ec-storefront/internal/infrastructure/kafka"
	logs "github.com/example/ec-storefront/internal/infrastructure/log"
	"github.com/example/ec-storefront/internal/infrastructure/store"
	"github.com/example/ec-storefront/internal/query"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "api: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load("")
	if err != nil {
		return err
	}

	logger, err := logs.New(os.Stdout, cfg.Env.Log, cfg.Env.ServiceName)
	if err != nil {
		return err
	}
	logger = logger.With("component", "api")
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting storefront api",
		"env", cfg.Env.Name,
		"port", cfg.HTTP.Port,
		"kafka_enabled", cfg.Kafka.Enabled,
	)

	db, err := store.ConnectPostgres(ctx, store.PoolConfig{
		URL:             cfg.Database.URL,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		return err
	}
	defer db.Close()
	logger.Info("connected to postgres")

	if cfg.Database.Migrate {
		if err := store.Migrate(ctx, db); err != nil {
			return err
		}
		logger.Info("schema migrated")
	}

	var publisher activity.Publisher = activity.NopPublisher{}
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(kafka.WriterConfig{
			Brokers:      cfg.Kafka.Brokers,
			Topic:        cfg.Kafka.Topic,
			WriteTimeout: cfg.Kafka.WriteTimeout,
		})
		defer producer.Close()
		publisher = activity.NewKafkaPublisher(producer)
		logger.Info("publishing cart activity", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	}

	pricing, err := cfg.CartPricing()
	if err != nil {
		return err
	}

	products := store.NewPostgresProductStore(db)
	users := store.NewPostgresUserStore(db)

	queryHandler := query.NewHandler(products, users, query.Config{
		MaxPageSize: cfg.Catalog.MaxPageSize,
		Pricing:     pricing,
	}, logger)
	cmdHandler := command.NewHandler(products, users, queryHandler, publisher, logger)

	jwtService := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.AccessTokenTTL)
	hasher := auth.NewPasswordHasher(cfg.Auth.BcryptCost)

	opts := api.Options{
		MaxBodyBytes: cfg.HTTP.MaxBodyBytes,
		CookieSecure: cfg.Auth.CookieSecure,
	}

	var wg sync.WaitGroup
	var limiter *middleware.RateLimiter
	if cfg.HTTP.RateLimit.Enabled {
		limiter = middleware.NewRateLimiter(cfg.HTTP.RateLimit.RPS, cfg.HTTP.RateLimit.Burst)
		wg.Add(1)
		go func() {
			defer wg.Done()
			limiter.Run(ctx, time.Minute, 10*time.Minute)
		}()
	}

	router := api.NewRouter(api.RouterConfig{
		Handlers:       api.NewHandlers(cmdHandler, queryHandler, opts, logger),
		Auth:           api.NewAuthHandlers(users, hasher, jwtService, opts, logger),
		JWT:            jwtService,
		DB:             db,
		RateLimiter:    limiter,
		CORSOrigins:    cfg.HTTP.CORSOrigins,
		RequestTimeout: cfg.HTTP.Timeouts.Request,
		Logger:         logger,
	})

	server := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.HTTP.Port),
		Handler:           router,
		ReadTimeout:       cfg.HTTP.Timeouts.Read,
		ReadHeaderTimeout: cfg.HTTP.Timeouts.ReadHeader,
		WriteTimeout:      cfg.HTTP.Timeouts.Write,
		IdleTimeout:       cfg.HTTP.Timeouts.Idle,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server started", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.Timeouts.Shutdown)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}

	wg.Wait()
	return nil
}
