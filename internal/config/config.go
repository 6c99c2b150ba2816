package config

import (
	"errors"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Server      struct {
		Port            string `env:"PORT" envDefault:"3000"`
		ReadTimeout     int    `env:"READ_TIMEOUT" envDefault:"10"`
		WriteTimeout    int    `env:"WRITE_TIMEOUT" envDefault:"15"`
		IdleTimeout     int    `env:"IDLE_TIMEOUT" envDefault:"60"`
		ShutdownTimeout int    `env:"SHUTDOWN_TIMEOUT" envDefault:"10"`
	} `envPrefix:"SERVER_"`
	Database struct {
		Driver             string `env:"DRIVER" envDefault:"postgres"` // postgres | memory
		DSN                string `env:"DSN"`
		ConnectTimeout     int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		QueryTimeout       int    `env:"QUERY_TIMEOUT" envDefault:"10"`
		TransactionTimeout int    `env:"TRANSACTION_TIMEOUT" envDefault:"20"`
		MaxOpenConns       int    `env:"MAX_OPEN_CONNS" envDefault:"10"`
		MaxIdleConns       int    `env:"MAX_IDLE_CONNS" envDefault:"10"`
		MaxIdleTime        int    `env:"MAX_IDLE_TIME" envDefault:"60"`
	} `envPrefix:"DATABASE_"`
	JWT struct {
		Secret string `env:"SECRET,required"`
	} `envPrefix:"JWT_"`
	RabbitMQ struct {
		DSN            string `env:"DSN"` // empty disables change events
		Exchange       string `env:"EXCHANGE" envDefault:"operating_schedule"`
		PublishTimeout int    `env:"PUBLISH_TIMEOUT" envDefault:"10"`
		AuditQueue     string `env:"AUDIT_QUEUE" envDefault:"operating_schedule_audit"`
	} `envPrefix:"RABBITMQ_"`
	Redis struct {
		Host            string `env:"HOST" envDefault:"localhost"`
		Port            int    `env:"PORT" envDefault:"6379"`
		Password        string `env:"PASSWORD"`
		DB              int    `env:"DB" envDefault:"0"`
		ConnectTimeout  int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		ClosureCacheTTL int    `env:"CLOSURE_CACHE_TTL" envDefault:"300"` // seconds, 0 disables the cache
	} `envPrefix:"REDIS_"`
	RateLimit struct {
		RPS   float64 `env:"RPS" envDefault:"50"`
		Burst int     `env:"BURST" envDefault:"100"`
	} `envPrefix:"RATE_LIMIT_"`
	Metrics struct {
		Path string `env:"PATH" envDefault:"/metrics"`
	} `envPrefix:"METRICS_"`
}

// LoadConfig reads an optional .env file and then the process environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		aggErr := env.AggregateError{}
		if ok := errors.As(err, &aggErr); ok && len(aggErr.Errors) > 0 {
			// only the first error keeps the log readable
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}

	if cfg.Database.Driver == "postgres" && cfg.Database.DSN == "" {
		return nil, errors.New(`DATABASE_DSN is required when DATABASE_DRIVER is "postgres"`)
	}

	return cfg, nil
}
