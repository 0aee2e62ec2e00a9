package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// connectTimeout bounds the startup PING.
const connectTimeout = 5 * time.Second

// Connect selects the cache store for the life of the process.
//
// redisURL uses the redis:// or rediss:// scheme. When it is empty, cannot be
// parsed, or the server does not answer PING, the failure is logged once and
// NopStore is returned.
func Connect(ctx context.Context, redisURL string, logger zerolog.Logger) Store {
	if redisURL == "" {
		logger.Warn().Msg("REDIS_URL not set, caching disabled")
		return NopStore{}
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		logger.Warn().Err(err).Msg("Invalid Redis URL, caching disabled")
		return NopStore{}
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn().
			Err(err).
			Str("addr", opts.Addr).
			Msg("Redis connection failed, caching disabled")
		_ = client.Close()
		return NopStore{}
	}

	logger.Info().
		Str("addr", opts.Addr).
		Int("db", opts.DB).
		Msg("Connected to Redis cache")

	return NewManager(client)
}
