package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string        `env:"CLINIC_ADDR" envDefault:":8080"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Database selects the record store. An empty URL keeps everything in memory.
type Database struct {
	URL          string `env:"DATABASE_URL"`
	Driver       string `env:"DATABASE_DRIVER" envDefault:"pgx"`
	MaxOpenConns int    `env:"DATABASE_MAX_OPEN_CONNS" envDefault:"10"`
}

// Kafka enables the audit publisher when brokers are set.
type Kafka struct {
	Brokers    []string `env:"KAFKA_BROKERS" envSeparator:","`
	AuditTopic string   `env:"AUDIT_TOPIC" envDefault:"clinic.audit"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type Config struct {
	Server   Server
	Database Database
	Kafka    Kafka
	Log      Log
}

// InMemory reports whether no database was configured.
func (c Config) InMemory() bool {
	return c.Database.URL == ""
}

// FromEnv builds the config from process environment variables so main stays lean.
func FromEnv() (Config, error) {
	return parse(env.Options{})
}

// FromMap builds the config from an explicit environment, for tests.
func FromMap(environment map[string]string) (Config, error) {
	return parse(env.Options{Environment: environment})
}

func parse(opts env.Options) (Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](opts)
	if err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	switch cfg.Database.Driver {
	case "pgx", "postgres":
	default:
		return Config{}, fmt.Errorf("unsupported DATABASE_DRIVER %q", cfg.Database.Driver)
	}
	return cfg, nil
}
