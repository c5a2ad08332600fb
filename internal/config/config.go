// Package config loads process configuration from the environment, with a
// local .env file honored in development.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN,required,notEmpty"`

	RiotAPIKey string `env:"RIOT_API_KEY"`
	RiotRegion string `env:"RIOT_REGION" envDefault:"jp1"`

	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`

	BanPickDuration  time.Duration `env:"BANPICK_DURATION" envDefault:"3m"`
	ThinkingDuration time.Duration `env:"THINKING_DURATION" envDefault:"5m"`
	TimerWarning     time.Duration `env:"TIMER_WARNING" envDefault:"1m"`
	PollInterval     time.Duration `env:"POLL_INTERVAL" envDefault:"30s"`
	PollMaxAttempts  int           `env:"POLL_MAX_ATTEMPTS" envDefault:"30"`
}

func Load() (Config, error) {
	// Missing .env is fine; the real environment wins either way.
	_ = godotenv.Load()

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
