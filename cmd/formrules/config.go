package main

import (
	"errors"
	"io"
	"log/slog"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var errParsingConfig = errors.New("formrules: parse environment")

// config holds the defaults read from the environment. Flags override them.
type config struct {
	Rules    string     `env:"FORMRULES_RULES"`
	LogLevel slog.Level `env:"FORMRULES_LOG_LEVEL" envDefault:"warn"`
	LogJSON  bool       `env:"FORMRULES_LOG_JSON"`
}

// loadConfig reads an optional .env file from the working directory and
// then parses the environment.
func loadConfig() (config, error) {
	// The .env file might not exist and that's ok.
	_ = godotenv.Load()

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return config{}, errors.Join(errParsingConfig, err)
	}
	return cfg, nil
}

func newLogger(w io.Writer, cfg config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
