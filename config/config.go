package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the service configuration, read from the environment.
type Config struct {
	Port           string        `env:"PORT" envDefault:"8080"`
	AWSRegion      string        `env:"AWS_REGION"`
	StickerBucket  string        `env:"STICKER_BUCKET"`
	StickerPrefix  string        `env:"STICKER_PREFIX" envDefault:"stickers/"`
	InviteTTL      time.Duration `env:"INVITE_TTL" envDefault:"24h"`
	AllowedOrigins []string      `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
}

// Load parses the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
