package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spacehub-dev/operating-schedule/backend/internal/config"
	"github.com/spacehub-dev/operating-schedule/backend/internal/events"
)

// audit writes every schedule and closure change published by the API to the log.
func main() {
	/**********************************************
	 * logger
	 **********************************************/
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	/**********************************************
	 * config
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		return
	}
	if cfg.RabbitMQ.DSN == "" {
		logger.Error("RABBITMQ_DSN is required")
		return
	}

	/**********************************************
	 * rabbitmq
	 **********************************************/
	sub, err := events.NewSubscriber(cfg.RabbitMQ.DSN, cfg.RabbitMQ.Exchange, cfg.RabbitMQ.AuditQueue, "schedule.#", "closure.#")
	if err != nil {
		logger.Error("failed to subscribe", slog.String("error", err.Error()))
		return
	}
	defer sub.Close()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	wg := sync.WaitGroup{}
	done := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-sub.Deliveries:
				if !ok {
					logger.Error("delivery channel closed")
					return
				}
				events.Handle(d, func(e events.Event) error {
					logger.Info("operating hours changed",
						slog.String("type", e.Type),
						slog.String("event_id", e.ID.String()),
						slog.String("partner_id", e.PartnerID.String()),
						slog.Time("occurred_at", e.OccurredAt),
						slog.Any("data", e.Data),
					)
					return nil
				})
			}
		}
	}()

	logger.Info("waiting for events (CTRL+C to quit)")
	disconnected := false
	select {
	case <-sigChan:
		logger.Info("shutting down audit worker")
	case <-done:
		logger.Error("lost the broker connection, shutting down audit worker")
		disconnected = true
	}

	cancel()
	wg.Wait()
	logger.Info("audit worker stopped")

	if disconnected {
		sub.Close()
		os.Exit(1)
	}
}
