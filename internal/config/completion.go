package config

// GetCompletionURL returns the upstream text-completion endpoint.
func GetCompletionURL() string {
	return GetEnvOrDefault("COMPLETION_URL", "")
}

// GetCompletionKey returns the bearer key for the completion endpoint.
func GetCompletionKey() string {
	return GetEnvOrDefault("COMPLETION_KEY", "")
}
