package services

import (
	"github.com/rs/zerolog/log"

	"github.com/nurtura/leadline/internal/infrastructure/completion"
	"github.com/nurtura/leadline/internal/infrastructure/redis"
	"github.com/nurtura/leadline/internal/services/session"
	"github.com/nurtura/leadline/internal/services/turn"
)

type Services struct {
	redisService      *redis.Service
	completionService *completion.Service
	sessionService    *session.Service
}

// InitializeServices initializes all required services
func InitializeServices() (*Services, error) {
	log.Info().Msg("Initializing core services")

	// Redis is optional; sessions fall back to memory without it.
	redisService := redis.NewService()

	sessionService := session.NewService(redisService)
	log.Info().Msg("Initialized session service")

	// The completion endpoint is optional at startup; without it scripted
	// turns still work and free-form turns report the backend unavailable.
	completionService := completion.NewService()

	log.Info().Msg("All services initialized successfully")

	return &Services{
		redisService:      redisService,
		completionService: completionService,
		sessionService:    sessionService,
	}, nil
}

func (s *Services) GetSessionService() *session.Service {
	return s.sessionService
}

// GetCompletions returns the stream backend, or a nil interface when the
// endpoint is not configured.
func (s *Services) GetCompletions() turn.Completions {
	if s.completionService == nil {
		return nil
	}
	return s.completionService
}

// Close releases held connections.
func (s *Services) Close() {
	if s.redisService != nil {
		if err := s.redisService.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close Redis connection")
		}
	}
}
