package config

import "github.com/rs/zerolog/log"

// GetWidgetKey returns the client key the embedded widget must present on
// every chat request.
func GetWidgetKey() string {
	value := GetEnvOrDefault("WIDGET_KEY", "")
	if value == "" {
		log.Warn().Msg("WIDGET_KEY not set - chat routes will reject all requests")
	}
	return value
}
