package config

// GetServerAddr returns the listen address for the HTTP server.
func GetServerAddr() string {
	return ":" + GetEnvOrDefault("PORT", "8080")
}

// GetLogLevel returns the configured log level name.
func GetLogLevel() string {
	return GetEnvOrDefault("LOG_LEVEL", "info")
}
