package redis

import "time"

// Config holds Redis connection and namespacing settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379/0)
	URL string

	// Profile namespaces keys so several identities can share one Redis database
	Profile string

	// OpTimeout bounds every single command; the Store API itself is synchronous
	OpTimeout time.Duration

	// Pool settings
	PoolSize     int
	MinIdleConns int
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:          "redis://localhost:6379/0",
		Profile:      "default",
		OpTimeout:    2 * time.Second,
		PoolSize:     2,
		MinIdleConns: 0,
	}
}
