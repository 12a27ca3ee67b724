package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"techstore/internal/config"
	"techstore/internal/db"
	"techstore/internal/outbox"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[relay] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	if cfg.KafkaBrokers == "" {
		logger.Fatalf("KAFKA_BROKERS is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	writer := outbox.NewWriter(cfg.KafkaBrokers, cfg.OrderEventsTopic)
	defer func() {
		if err := writer.Close(); err != nil {
			logger.Printf("close kafka writer: %v", err)
		}
	}()

	relay := outbox.NewRelay(pool, writer, cfg.OutboxBatchSize, cfg.OutboxPollEvery, logger)
	logger.Printf("relaying outbox to topic %s every %s", cfg.OrderEventsTopic, cfg.OutboxPollEvery)
	if err := relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatalf("relay stopped: %v", err)
	}
	logger.Println("relay stopped")
}
