package config

import (
	"time"

	"github.com/yourorg/cma-api/internal/env"
)

// Config is assembled once at startup and never mutated afterwards.
// Anything that changes over time (tokens) lives behind TokenSource.
type Config struct {
	Port int

	Paragon Paragon

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Optional write-behind archive of raw upstream payloads.
	PostgresDSN string

	CacheTTL      time.Duration
	SweepInterval time.Duration

	UpstreamTimeout time.Duration
}

type Paragon struct {
	APIURL      string
	DatasetID   string
	ServerToken string
}

func FromEnv() Config {
	return Config{
		Port: env.GetInt("PORT", 3002),
		Paragon: Paragon{
			APIURL:      env.Get("PARAGON_API_URL", "https://api.paragonapi.com/api/v2/OData"),
			DatasetID:   env.Get("PARAGON_DATASET_ID", "bk9"),
			ServerToken: env.Must("PARAGON_SERVER_TOKEN"),
		},
		RedisAddr:       env.Get("REDIS_ADDR", ""),
		RedisPassword:   env.Get("REDIS_PASSWORD", ""),
		RedisDB:         env.GetInt("REDIS_DB", 0),
		PostgresDSN:     env.Get("PG_DSN", ""),
		CacheTTL:        env.GetDuration("CACHE_TTL", 30*time.Minute),
		SweepInterval:   env.GetDuration("CACHE_SWEEP_INTERVAL", 30*time.Minute),
		UpstreamTimeout: env.GetDuration("UPSTREAM_TIMEOUT", 15*time.Second),
	}
}
