package config

import (
	"time"

	"github.com/rs/zerolog/log"
)

type RateLimitConfig struct {
	Enabled bool
	MaxHits int
	Window  time.Duration
}

// GetRateLimitConfig returns the per-route rate limit settings.
func GetRateLimitConfig(key string) RateLimitConfig {
	enabled := GetEnvOrDefault("RATELIMIT_ENABLED", "false") == "true"

	configs := map[string]RateLimitConfig{
		"chat_session": {
			Enabled: enabled,
			MaxHits: parseEnvInt("RATELIMIT_CHAT_SESSION", 30), // 30 sessions per minute per IP
			Window:  time.Minute,
		},
		"chat_turn": {
			Enabled: enabled,
			MaxHits: parseEnvInt("RATELIMIT_CHAT_TURN", 60), // 60 turns per minute per IP
			Window:  time.Minute,
		},
		"chat_stream": {
			Enabled: enabled,
			MaxHits: parseEnvInt("RATELIMIT_CHAT_STREAM", 10), // 10 upgrades per minute per IP
			Window:  time.Minute,
		},
	}

	if config, exists := configs[key]; exists {
		return config
	}

	log.Warn().Str("key", key).Msg("No rate limit config found for key")
	return RateLimitConfig{Enabled: false}
}
