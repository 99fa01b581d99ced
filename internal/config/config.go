package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8501"`

	TelegramToken string  `env:"TELEGRAM_TOKEN"`
	AllowedUsers  []int64 `env:"ALLOWED_USERS"`

	// HFToken is the credential the bot passes through on behalf of its users.
	// Web form users always supply their own.
	HFToken            string  `env:"HF_TOKEN"`
	HFBaseURL          string  `env:"HF_BASE_URL"          envDefault:"https://router.huggingface.co/v1"`
	HFModel            string  `env:"HF_MODEL"             envDefault:"mistralai/Mistral-7B-Instruct-v0.3"`
	SummaryMaxTokens   int64   `env:"SUMMARY_MAX_TOKENS"   envDefault:"512"`
	SummaryTemperature float64 `env:"SUMMARY_TEMPERATURE"  envDefault:"0.7"`

	PageFetchInsecureTLS bool          `env:"PAGE_FETCH_INSECURE_TLS" envDefault:"true"`
	FetchTimeout         time.Duration `env:"FETCH_TIMEOUT"           envDefault:"30s"`
	RequestTimeout       time.Duration `env:"REQUEST_TIMEOUT"         envDefault:"2m"`

	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"info"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	return cfg, nil
}

func (c Config) BotEnabled() bool {
	return c.TelegramToken != ""
}
