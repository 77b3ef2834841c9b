package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Backend    BackendConfig    `mapstructure:"backend"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	Session    SessionConfig    `mapstructure:"session"`
	Heatmap    HeatmapConfig    `mapstructure:"heatmap"`
	Aggregator AggregatorConfig `mapstructure:"aggregator"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	StaticDir       string        `mapstructure:"static_dir"`
	PublicURL       string        `mapstructure:"public_url"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

type BackendConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type RedisConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	Address       string        `mapstructure:"address"`
	Password      string        `mapstructure:"password"`
	DB            int           `mapstructure:"db"`
	SnapshotTTL   time.Duration `mapstructure:"snapshot_ttl"`
	SuggestionTTL time.Duration `mapstructure:"suggestion_ttl"`
}

type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
	GroupID string   `mapstructure:"group_id"`
}

type SessionConfig struct {
	Debounce        time.Duration `mapstructure:"debounce"`
	MinQueryLength  int           `mapstructure:"min_query_length"`
	DefaultRadiusKm int           `mapstructure:"default_radius_km"`
	MinRadiusKm     int           `mapstructure:"min_radius_km"`
	MaxRadiusKm     int           `mapstructure:"max_radius_km"`
	IdleTTL         time.Duration `mapstructure:"idle_ttl"`
	SweepInterval   time.Duration `mapstructure:"sweep_interval"`
}

type HeatmapConfig struct {
	Precision uint `mapstructure:"precision"`
}

// AggregatorConfig drives agg-svc, which folds interaction events into
// daily counters.
type AggregatorConfig struct {
	Port       int           `mapstructure:"port"`
	CounterTTL time.Duration `mapstructure:"counter_ttl"`
	TopLimit   int           `mapstructure:"top_limit"`
}

func (a AggregatorConfig) Addr() string {
	return fmt.Sprintf(":%d", a.Port)
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads config.yaml when present, then lets environment variables
// override any key (server.port becomes SERVER_PORT).
func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	applyDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func loadEnvFile() {
	for _, path := range []string{".env", filepath.Join("..", ".env")} {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Every key needs a default, otherwise AutomaticEnv does not reach it
// during Unmarshal.
func applyDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.static_dir", "./frontend")
	v.SetDefault("server.public_url", "http://localhost:8080")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("backend.url", "http://localhost:8000")
	v.SetDefault("backend.timeout", 15*time.Second)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.snapshot_ttl", 2*time.Hour)
	v.SetDefault("redis.suggestion_ttl", 10*time.Minute)

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "finder-events")
	v.SetDefault("kafka.group_id", "finder-aggregator")

	v.SetDefault("session.debounce", 300*time.Millisecond)
	v.SetDefault("session.min_query_length", 3)
	v.SetDefault("session.default_radius_km", 10)
	v.SetDefault("session.min_radius_km", 1)
	v.SetDefault("session.max_radius_km", 50)
	v.SetDefault("session.idle_ttl", 30*time.Minute)
	v.SetDefault("session.sweep_interval", time.Minute)

	v.SetDefault("heatmap.precision", 5)

	v.SetDefault("aggregator.port", 8081)
	v.SetDefault("aggregator.counter_ttl", 7*24*time.Hour)
	v.SetDefault("aggregator.top_limit", 10)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

func validateConfig(cfg *Config) error {
	if strings.TrimSpace(cfg.Backend.URL) == "" {
		return fmt.Errorf("backend.url is required")
	}
	if cfg.Server.Port <= 0 {
		return fmt.Errorf("server.port must be positive")
	}
	s := cfg.Session
	if s.MinRadiusKm <= 0 || s.MinRadiusKm > s.MaxRadiusKm {
		return fmt.Errorf("session radius range %d-%d is invalid", s.MinRadiusKm, s.MaxRadiusKm)
	}
	if s.DefaultRadiusKm < s.MinRadiusKm || s.DefaultRadiusKm > s.MaxRadiusKm {
		return fmt.Errorf("session.default_radius_km must lie within %d-%d", s.MinRadiusKm, s.MaxRadiusKm)
	}
	if cfg.Redis.Enabled && cfg.Redis.Address == "" {
		return fmt.Errorf("redis.address is required when redis is enabled")
	}
	if cfg.Kafka.Enabled && (len(cfg.Kafka.Brokers) == 0 || cfg.Kafka.Topic == "") {
		return fmt.Errorf("kafka.brokers and kafka.topic are required when kafka is enabled")
	}
	if cfg.Session.SweepInterval <= 0 {
		return fmt.Errorf("session.sweep_interval must be positive")
	}
	if cfg.Heatmap.Precision < 1 || cfg.Heatmap.Precision > 12 {
		return fmt.Errorf("heatmap.precision must lie within 1-12")
	}
	if cfg.Aggregator.TopLimit <= 0 {
		return fmt.Errorf("aggregator.top_limit must be positive")
	}
	return nil
}

func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// NewKafkaWriter returns an async writer. Events of one session hash to the
// same partition.
func NewKafkaWriter(cfg KafkaConfig) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		Async:        true,
		BatchTimeout: 50 * time.Millisecond,
	}
}

// NewKafkaReader joins the consumer group that aggregates interaction events.
func NewKafkaReader(cfg KafkaConfig) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
}
