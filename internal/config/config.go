package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	Auth      AuthConfig      `mapstructure:"auth"`
	SSE       SSEConfig       `mapstructure:"sse"`
	Pool      PoolConfig      `mapstructure:"pool"`
	Dispatch  DispatchConfig  `mapstructure:"dispatch"`
	Presence  PresenceConfig  `mapstructure:"presence"`
	Retention RetentionConfig `mapstructure:"retention"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Env  string `mapstructure:"env"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type KafkaConfig struct {
	Brokers         []string `mapstructure:"brokers"`
	ConsumerGroupID string   `mapstructure:"consumer_group_id"`
	Topics          []string `mapstructure:"topics"`
}

type AuthConfig struct {
	// JWTSecret verifies inbound bearer tokens. Token issuance lives in
	// the auth service, not here.
	JWTSecret string `mapstructure:"jwt_secret"`
}

type SSEConfig struct {
	// Buffer is the per-channel frame queue depth; a client that falls
	// this far behind is torn down.
	Buffer int `mapstructure:"buffer"`
	// IdleTimeoutSeconds closes streams that have not been written to.
	IdleTimeoutSeconds int `mapstructure:"idle_timeout_seconds"`
}

type PoolConfig struct {
	Workers   int `mapstructure:"workers"`
	QueueSize int `mapstructure:"queue_size"`
}

type DispatchConfig struct {
	FeedBatchSize   int `mapstructure:"feed_batch_size"`
	ReplayBatchSize int `mapstructure:"replay_batch_size"`
}

type PresenceConfig struct {
	TTLSeconds int `mapstructure:"ttl_seconds"`
}

type RetentionConfig struct {
	Days int `mapstructure:"days"` // Default: 30
}

// Load reads configuration from environment variables and config files.
// Environment variables override file values. Prefix: MOMENT_NOTIF_
func Load() (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", "8085")
	v.SetDefault("server.env", "development")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "moment_notification")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "password")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.consumer_group_id", "moment-notification-group")
	v.SetDefault("kafka.topics", []string{"post-events", "engagement-events", "social-events", "chat-events", "notification-commands"})
	v.SetDefault("sse.buffer", 32)
	v.SetDefault("sse.idle_timeout_seconds", 300)
	v.SetDefault("pool.workers", 8)
	v.SetDefault("pool.queue_size", 256)
	v.SetDefault("dispatch.feed_batch_size", 500)
	v.SetDefault("dispatch.replay_batch_size", 500)
	v.SetDefault("presence.ttl_seconds", 30)
	v.SetDefault("retention.days", 30)

	// Environment variables (e.g. DATABASE_HOST -> database.host)
	v.SetEnvPrefix("MOMENT_NOTIF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Also support simple env vars without prefix for Docker Compose convenience
	v.BindEnv("database.host", "DB_HOST")
	v.BindEnv("database.port", "DB_PORT")
	v.BindEnv("database.name", "DB_NAME")
	v.BindEnv("database.user", "DB_USER")
	v.BindEnv("database.password", "DB_PASSWORD")
	v.BindEnv("redis.addr", "REDIS_ADDR")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("kafka.brokers", "KAFKA_BROKERS")
	v.BindEnv("auth.jwt_secret", "JWT_SECRET")
	v.BindEnv("server.port", "PORT")

	// Try loading config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig() // Not required

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return "host=" + d.Host +
		" port=" + strconv.Itoa(d.Port) +
		" dbname=" + d.Name +
		" user=" + d.User +
		" password=" + d.Password +
		" sslmode=disable"
}

// IdleTimeout returns the SSE idle timeout as a duration.
func (s SSEConfig) IdleTimeout() time.Duration {
	return time.Duration(s.IdleTimeoutSeconds) * time.Second
}

// TTL returns the presence marker lifetime as a duration.
func (p PresenceConfig) TTL() time.Duration {
	return time.Duration(p.TTLSeconds) * time.Second
}
