package config

// GetRedisURL returns the Redis address, empty when not configured.
func GetRedisURL() string {
	return GetEnvOrDefault("REDIS_URL", "")
}

// GetRedisPassword returns the Redis password, empty when not configured.
func GetRedisPassword() string {
	return GetEnvOrDefault("REDIS_PASSWORD", "")
}
