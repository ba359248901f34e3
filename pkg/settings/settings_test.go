package settings

import (
	"context"
	"errors"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInt(t *testing.T) {
	tests := []struct {
		raw      string
		expected int
	}{
		{"", 0},
		{"  ", 0},
		{"12", 12},
		{" 5 ", 5},
		{"true", 1},
		{"false", 0},
		{"3.0", 3},
		{"abc", 0},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseInt(tt.raw))
		})
	}
}

func TestStatic_MissingKeysReadAsZero(t *testing.T) {
	ctx := context.Background()
	s := Static{RelationCategory: "1", ProductsQuantity: "8"}

	enabled, err := s.GetBool(ctx, RelationCategory)
	require.NoError(t, err)
	assert.True(t, enabled)

	enabled, err = s.GetBool(ctx, RelationFeatures)
	require.NoError(t, err)
	assert.False(t, enabled)

	limit, err := s.GetInt(ctx, ProductsQuantity)
	require.NoError(t, err)
	assert.Equal(t, 8, limit)
}

type fakeHash struct {
	values map[string]string
	err    error
}

func (f fakeHash) HGet(_ context.Context, _, field string) *redis.StringCmd {
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	value, ok := f.values[field]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(value, nil)
}

func newTestRedisReader(hash fakeHash) *RedisReader {
	return &RedisReader{
		client:  hash,
		hashKey: "clover:settings",
		logger:  ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {}),
	}
}

func TestRedisReader(t *testing.T) {
	ctx := context.Background()
	r := newTestRedisReader(fakeHash{values: map[string]string{
		RelationManufacturer: "1",
		ProductsQuantity:     "4",
	}})

	enabled, err := r.GetBool(ctx, RelationManufacturer)
	require.NoError(t, err)
	assert.True(t, enabled)

	enabled, err = r.GetBool(ctx, RelationSuppliers)
	require.NoError(t, err)
	assert.False(t, enabled, "missing field must read as disabled")

	limit, err := r.GetInt(ctx, ProductsQuantity)
	require.NoError(t, err)
	assert.Equal(t, 4, limit)
}

func TestRedisReader_Error(t *testing.T) {
	r := newTestRedisReader(fakeHash{err: errors.New("connection refused")})

	_, err := r.GetBool(context.Background(), RelationCategory)
	assert.Error(t, err)
}
