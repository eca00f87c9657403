package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/ec-storefront/internal/activity"
	"github.com/example/ec-storefront/internal/config"
	"github.com/example/ec-storefront/internal/infrastructure/kafka"
	logs "github.com/example/ec-storefront/internal/infrastructure/log"
)

// reportEvery is how often the running totals are logged.
const reportEvery = time.Minute

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "activity: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load("")
	if err != nil {
		return err
	}
	if !cfg.Kafka.Enabled {
		return errors.New("kafka is disabled; set kafka.enabled to consume cart activity")
	}

	logger, err := logs.New(os.Stdout, cfg.Env.Log, cfg.Env.ServiceName)
	if err != nil {
		return err
	}
	logger = logger.With("component", "activity")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	handler := activity.NewHandler(logger)
	consumer := kafka.NewConsumer(kafka.ReaderConfig{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.Topic,
		GroupID: cfg.Kafka.GroupID,
	}, logger)
	defer consumer.Close()

	go func() {
		ticker := time.NewTicker(reportEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				logger.Info("cart activity totals",
					"added", handler.Count(activity.CartItemAdded),
					"removed", handler.Count(activity.CartItemRemoved),
					"cleared", handler.Count(activity.CartCleared),
					"top_added", handler.TopAdded(5),
				)
			}
		}
	}()

	logger.Info("consuming cart activity", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic, "group", cfg.Kafka.GroupID)
	if err := consumer.Consume(ctx, handler.HandleMessage); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("consume: %w", err)
	}

	logger.Info("shutting down")
	return nil
}
