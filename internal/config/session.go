package config

import "github.com/rs/zerolog/log"

// GetJWTSecret returns the key used to sign session cookies.
func GetJWTSecret() []byte {
	value := GetEnvOrDefault("JWT_SECRET", "")
	if value == "" {
		log.Warn().Msg("JWT_SECRET not set - session cookies will not survive restarts")
		value = "leadline-dev-secret"
	}
	return []byte(value)
}

// GetSessionCookieName returns the name of the session cookie.
func GetSessionCookieName() string {
	return GetEnvOrDefault("SESSION_COOKIE_NAME", "leadline_session")
}
