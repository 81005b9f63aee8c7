package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database      DatabaseConfig
	Redis         RedisConfig
	JWT           JWTConfig
	CORS          CORSConfig
	Log           LogConfig
	Push          PushConfig
	Notifications NotificationsConfig
	Exports       ExportsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// PushConfig controls the best-effort push relay.
type PushConfig struct {
	Enabled     bool
	GatewayURL  string
	Timeout     time.Duration
	Workers     int
	MaxRetries  int
	RetryDelay  time.Duration
	QueueBuffer int
}

// NotificationsConfig tunes the realtime stream and unread-count cache.
type NotificationsConfig struct {
	StreamEnabled  bool
	UnreadCacheTTL time.Duration
	HeartbeatEvery time.Duration
}

// ExportsConfig gates attendance log exports.
type ExportsConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Push = PushConfig{
		Enabled:     v.GetBool("PUSH_ENABLED"),
		GatewayURL:  v.GetString("PUSH_GATEWAY_URL"),
		Timeout:     parseDuration(v.GetString("PUSH_TIMEOUT"), 10*time.Second),
		Workers:     v.GetInt("PUSH_WORKERS"),
		MaxRetries:  v.GetInt("PUSH_MAX_RETRIES"),
		RetryDelay:  parseDuration(v.GetString("PUSH_RETRY_DELAY"), 2*time.Second),
		QueueBuffer: v.GetInt("PUSH_QUEUE_BUFFER"),
	}

	cfg.Notifications = NotificationsConfig{
		StreamEnabled:  v.GetBool("NOTIFICATIONS_STREAM_ENABLED"),
		UnreadCacheTTL: parseDuration(v.GetString("NOTIFICATIONS_UNREAD_CACHE_TTL"), 5*time.Minute),
		HeartbeatEvery: parseDuration(v.GetString("NOTIFICATIONS_STREAM_HEARTBEAT"), 25*time.Second),
	}

	cfg.Exports = ExportsConfig{
		Enabled: v.GetBool("ENABLE_EXPORTS"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "staff_ops")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("JWT_ISSUER", "staff-ops-api")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("PUSH_ENABLED", true)
	v.SetDefault("PUSH_GATEWAY_URL", "https://exp.host/--/api/v2/push/send")
	v.SetDefault("PUSH_TIMEOUT", "10s")
	v.SetDefault("PUSH_WORKERS", 2)
	v.SetDefault("PUSH_MAX_RETRIES", 3)
	v.SetDefault("PUSH_RETRY_DELAY", "2s")
	v.SetDefault("PUSH_QUEUE_BUFFER", 64)

	v.SetDefault("NOTIFICATIONS_STREAM_ENABLED", true)
	v.SetDefault("NOTIFICATIONS_UNREAD_CACHE_TTL", "5m")
	v.SetDefault("NOTIFICATIONS_STREAM_HEARTBEAT", "25s")

	v.SetDefault("ENABLE_EXPORTS", true)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
