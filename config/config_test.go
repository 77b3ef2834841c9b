package config

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, ":8080", cfg.Server.Addr())
	assert.Equal(t, "http://localhost:8000", cfg.Backend.URL)
	assert.Equal(t, 300*time.Millisecond, cfg.Session.Debounce)
	assert.Equal(t, 3, cfg.Session.MinQueryLength)
	assert.Equal(t, 10, cfg.Session.DefaultRadiusKm)
	assert.Equal(t, 1, cfg.Session.MinRadiusKm)
	assert.Equal(t, 50, cfg.Session.MaxRadiusKm)
	assert.Equal(t, uint(5), cfg.Heatmap.Precision)
	assert.False(t, cfg.Redis.Enabled)
	assert.False(t, cfg.Kafka.Enabled)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "finder-aggregator", cfg.Kafka.GroupID)
	assert.Equal(t, ":8081", cfg.Aggregator.Addr())
	assert.Equal(t, 7*24*time.Hour, cfg.Aggregator.CounterTTL)
	assert.Equal(t, 10, cfg.Aggregator.TopLimit)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("BACKEND_URL", "http://api:8000")
	t.Setenv("SESSION_DEBOUNCE", "150ms")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_ADDRESS", "redis:6379")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("LOGGING_FORMAT", "console")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "http://api:8000", cfg.Backend.URL)
	assert.Equal(t, 150*time.Millisecond, cfg.Session.Debounce)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "redis:6379", cfg.Redis.Address)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "empty_backend", env: map[string]string{"BACKEND_URL": " "}},
		{name: "inverted_radius", env: map[string]string{"SESSION_MIN_RADIUS_KM": "20", "SESSION_MAX_RADIUS_KM": "5"}},
		{name: "default_radius_outside", env: map[string]string{"SESSION_DEFAULT_RADIUS_KM": "80"}},
		{name: "zero_top_limit", env: map[string]string{"AGGREGATOR_TOP_LIMIT": "0"}},
		{name: "zero_sweep_interval", env: map[string]string{"SESSION_SWEEP_INTERVAL": "0s"}},
		{name: "negative_sweep_interval", env: map[string]string{"SESSION_SWEEP_INTERVAL": "-1m"}},
		{name: "zero_heatmap_precision", env: map[string]string{"HEATMAP_PRECISION": "0"}},
		{name: "heatmap_precision_too_fine", env: map[string]string{"HEATMAP_PRECISION": "13"}},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			for k, v := range testCase.env {
				t.Setenv(k, v)
			}

			_, err := Load()

			assert.Error(t, err)
		})
	}
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewRedisClient(context.Background(), RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)
	defer client.Close()

	assert.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
	mr.CheckGet(t, "k", "v")

	_, err = NewRedisClient(context.Background(), RedisConfig{Address: "127.0.0.1:1"})
	assert.Error(t, err)
}

func TestNewKafkaWriter(t *testing.T) {
	w := NewKafkaWriter(KafkaConfig{Brokers: []string{"k1:9092"}, Topic: "finder-events"})

	assert.Equal(t, "finder-events", w.Topic)
	assert.True(t, w.Async)
	assert.IsType(t, &kafka.Hash{}, w.Balancer)
}

func TestNewKafkaReader(t *testing.T) {
	r := NewKafkaReader(KafkaConfig{Brokers: []string{"k1:9092"}, Topic: "finder-events", GroupID: "finder-aggregator"})
	defer r.Close()

	assert.Equal(t, "finder-events", r.Config().Topic)
	assert.Equal(t, "finder-aggregator", r.Config().GroupID)
}
