package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "clover-api", cfg.AppName)
	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.Equal(t, "ps_", cfg.DatabaseTablePrefix)
	assert.Equal(t, 10*time.Second, cfg.DatabaseConnMaxLifetime)
	assert.Equal(t, []string{"GET", "POST", "PUT", "DELETE"}, cfg.AllowMethods)
	assert.Equal(t, "database", cfg.SettingsSource)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DB_TABLE_PREFIX", "shop_")
	t.Setenv("SHOP_ID", "2")
	t.Setenv("KAFKA_BROKERS", "a:9092,b:9092")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "shop_", cfg.DatabaseTablePrefix)
	assert.Equal(t, int64(2), cfg.ShopID)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.KafkaBrokers)
}

func TestLoad_RedisSettingsRequireRedis(t *testing.T) {
	t.Setenv("SETTINGS_SOURCE", "redis")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REDIS_ENABLED")

	t.Setenv("REDIS_ENABLED", "true")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "redis", cfg.SettingsSource)
}

func TestLoad_UnknownSettingsSource(t *testing.T) {
	t.Setenv("SETTINGS_SOURCE", "memcache")

	_, err := Load()
	assert.Error(t, err)
}
