package settings

import (
	"context"
	"errors"

	"github.com/Gobusters/ectologger"
	"github.com/redis/go-redis/v9"

	"github.com/Ramsey-B/clover/pkg/tracing"
)

type hashGetter interface {
	HGet(ctx context.Context, key, field string) *redis.StringCmd
}

// RedisReader reads settings from the fields of a single redis hash.
type RedisReader struct {
	client  hashGetter
	hashKey string
	logger  ectologger.Logger
}

func NewRedisReader(client redis.Cmdable, hashKey string, logger ectologger.Logger) *RedisReader {
	return &RedisReader{client: client, hashKey: hashKey, logger: logger}
}

func (r *RedisReader) get(ctx context.Context, key string) (string, error) {
	ctx, span := tracing.StartSpan(ctx, "settings.RedisReader.get")
	defer span.End()

	value, err := r.client.HGet(ctx, r.hashKey, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("key", key).Error("Failed to read setting from redis")
		return "", err
	}
	return value, nil
}

func (r *RedisReader) GetInt(ctx context.Context, key string) (int, error) {
	raw, err := r.get(ctx, key)
	if err != nil {
		return 0, err
	}
	return ParseInt(raw), nil
}

func (r *RedisReader) GetBool(ctx context.Context, key string) (bool, error) {
	raw, err := r.get(ctx, key)
	if err != nil {
		return false, err
	}
	return ParseBool(raw), nil
}
