package bootstrap

import (
	"context"
	"crypto/tls"
	"strings"

	"github.com/redis/go-redis/v9"

	appconfig "github.com/mainstreetlabs/siteapi/internal/config"
	"github.com/mainstreetlabs/siteapi/internal/webchat"
	"github.com/mainstreetlabs/siteapi/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// BuildTranscriptStore returns the Redis-backed chat transcript store, or the
// in-memory store when Redis is not available.
func BuildTranscriptStore(redisClient *redis.Client, cfg *appconfig.Config, logger *logging.Logger) webchat.TranscriptStore {
	opts := webchat.TranscriptOptions{}
	if cfg != nil {
		opts.TTL = cfg.TranscriptTTL
		opts.MaxMessages = int64(cfg.TranscriptMaxMessages)
	}
	if redisClient == nil {
		if logger != nil {
			logger.Info("chat transcripts kept in memory")
		}
		return webchat.NewMemoryTranscriptStore(opts)
	}
	return webchat.NewRedisTranscriptStore(redisClient, opts)
}
