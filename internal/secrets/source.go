package secrets

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// EnvSource serves a secret loaded from configuration.
type EnvSource struct {
	secret string
}

// NewEnvSource builds a source backed by a static configured value.
func NewEnvSource(secret string) *EnvSource {
	return &EnvSource{secret: secret}
}

// FetchSecret returns the configured secret.
func (s *EnvSource) FetchSecret(_ context.Context) (string, error) {
	return s.secret, nil
}

// RedisSource reads the signing secret from a Redis key provisioned by an
// operator, standing in for a managed parameter store.
type RedisSource struct {
	client *redis.Client
	key    string
}

// NewRedisSource builds a Redis-backed source.
func NewRedisSource(client *redis.Client, key string) *RedisSource {
	return &RedisSource{client: client, key: key}
}

// FetchSecret retrieves the secret value from Redis.
func (s *RedisSource) FetchSecret(ctx context.Context) (string, error) {
	val, err := s.client.Get(ctx, s.key).Result()
	if err != nil {
		return "", fmt.Errorf("fetch secret %q: %w", s.key, err)
	}
	return val, nil
}
