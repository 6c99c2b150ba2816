package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spacehub-dev/operating-schedule/backend/internal/cache"
	"github.com/spacehub-dev/operating-schedule/backend/internal/config"
	"github.com/spacehub-dev/operating-schedule/backend/internal/events"
	"github.com/spacehub-dev/operating-schedule/backend/internal/handler"
	"github.com/spacehub-dev/operating-schedule/backend/internal/metrics"
	"github.com/spacehub-dev/operating-schedule/backend/internal/repository"
	"github.com/spacehub-dev/operating-schedule/backend/internal/resolver"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	/**********************************************
	 * logger
	 **********************************************/
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	/**********************************************
	 * config
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}

	/**********************************************
	 * repository
	 **********************************************/
	var store handler.Store
	switch cfg.Database.Driver {
	case "memory":
		logger.Warn("using the in-memory repository, data is lost on restart")
		store = repository.NewMemoryRepository()
	case "postgres":
		dbpool, err := sql.Open("pgx", cfg.Database.DSN)
		if err != nil {
			logger.Error("failed to create database pool", "error", err)
			return
		}
		defer dbpool.Close()

		dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
		dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
		defer cancel()

		// sql.Open does not connect, ping once to fail early
		if err := dbpool.PingContext(ctx); err != nil {
			logger.Error("failed to connect to database", "error", err)
			return
		}
		store = repository.NewRepository(cfg, dbpool)
	default:
		logger.Error("unknown database driver", "driver", cfg.Database.Driver)
		return
	}

	/**********************************************
	 * redis closure cache
	 **********************************************/
	var rdb *redis.Client
	ttl := time.Duration(cfg.Redis.ClosureCacheTTL) * time.Second
	if ttl > 0 {
		rdb = redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Redis.ConnectTimeout)*time.Second)
		if err := rdb.Ping(ctx).Err(); err != nil {
			// the cache falls through to the repository on every redis error
			logger.Warn("redis is unreachable, closures are read from the repository", "error", err)
		}
		cancel()
	}
	closures := cache.NewClosureCache(rdb, store, ttl)

	/**********************************************
	 * change events
	 **********************************************/
	var pub events.Publisher = events.NopPublisher{}
	if cfg.RabbitMQ.DSN != "" {
		amqpPub, err := events.NewAMQPPublisher(cfg.RabbitMQ.DSN, cfg.RabbitMQ.Exchange, time.Duration(cfg.RabbitMQ.PublishTimeout)*time.Second)
		if err != nil {
			logger.Error("failed to connect to rabbitmq", "error", err)
			return
		}
		pub = amqpPub
	}
	defer pub.Close()

	/**********************************************
	 * resolver and handler
	 **********************************************/
	metrics.Register()
	res := resolver.New(store, closures).WithObserver(metrics.VerdictObserver{})

	handler, err := handler.NewHandler(cfg, store, res, pub, closures)
	if err != nil {
		logger.Error("failed to create handler", "error", err)
		return
	}
	handler.RegisterRoutes()

	/**********************************************
	 * HTTP server
	 **********************************************/
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      handler.Mux,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("starting server", "port", cfg.Server.Port, "driver", cfg.Database.Driver)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server stopped", slog.String("error", err.Error()))
			return
		}
	}()

	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("failed to shut down server", slog.String("error", err.Error()))
	}
	logger.Info("server stopped cleanly")
}
