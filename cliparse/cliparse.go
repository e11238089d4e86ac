package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port         int    `env:"PORT" envDefault:"5000"`
	DatabaseURL  string `env:"DATABASE_URL"`
	DatabaseType string `env:"DATABASE_TYPE" envDefault:"sqlite"`

	// Secret mixed into voter tokens so raw IPs are never stored
	VoterTokenSalt string `env:"VOTER_TOKEN_SALT"`

	DBConnectAttempts int           `env:"DB_CONNECT_ATTEMPTS" envDefault:"5"`
	DBConnectDelay    time.Duration `env:"DB_CONNECT_DELAY" envDefault:"5s"`
	LiveSendBuffer    int           `env:"LIVE_SEND_BUFFER" envDefault:"16"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// ParseFlags reads the environment, then lets CLI flags override it
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	fs := flag.NewFlagSet("pollroom", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", cfg.Port, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", cfg.DatabaseURL, "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", cfg.DatabaseType, "Database type (sqlite or postgres)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.VoterTokenSalt, "voter-salt", cfg.VoterTokenSalt, "Voter token salt (prefer env)")

	fs.IntVar(&cfg.DBConnectAttempts, "db-attempts", cfg.DBConnectAttempts, "Database connection attempts")
	fs.DurationVar(&cfg.DBConnectDelay, "db-delay", cfg.DBConnectDelay, "Delay between database connection attempts")
	fs.IntVar(&cfg.LiveSendBuffer, "live-buffer", cfg.LiveSendBuffer, "Queued updates per live session")
	fs.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "Graceful shutdown timeout")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("invalid port %d", cfg.Port)
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("unsupported database type %q (use sqlite or postgres)", cfg.DatabaseType)
	}

	// Secrets - MUST be provided
	if cfg.VoterTokenSalt == "" {
		return Config{}, errors.New("VOTER_TOKEN_SALT required")
	}

	if cfg.DBConnectAttempts < 1 {
		cfg.DBConnectAttempts = 1
	}

	return cfg, nil
}
