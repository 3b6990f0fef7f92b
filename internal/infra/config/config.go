package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type AppConfig struct {
	App       AppSettings       `mapstructure:"app"`
	Postgres  PostgresSettings  `mapstructure:"postgres"`
	Redis     RedisSettings     `mapstructure:"redis"`
	Kafka     KafkaSettings     `mapstructure:"kafka"`
	Identity  IdentitySettings  `mapstructure:"identity"`
	RateLimit RateLimitSettings `mapstructure:"rate_limit"`
	Metrics   MetricsSettings   `mapstructure:"metrics"`
}

type AppSettings struct {
	Name           string   `mapstructure:"name"`
	Env            string   `mapstructure:"env"`
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Production reports whether demo-role shortcuts must be disabled.
func (s AppSettings) Production() bool {
	return s.Env == "production"
}

type PostgresSettings struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	User              string        `mapstructure:"user"`
	Password          string        `mapstructure:"password"`
	Database          string        `mapstructure:"database"`
	SSLMode           string        `mapstructure:"ssl_mode"`
	MaxConns          int32         `mapstructure:"max_conns"`
	MinConns          int32         `mapstructure:"min_conns"`
	MaxConnLifetime   time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   time.Duration `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod time.Duration `mapstructure:"health_check_period"`
}

// RedisSettings configures the cache connection.
type RedisSettings struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	DB              int           `mapstructure:"db"`
	Password        string        `mapstructure:"password"`
	TLSEnabled      bool          `mapstructure:"tls_enabled"`
	MenuCachePrefix string        `mapstructure:"menu_cache_prefix"`
	MenuCacheTTL    time.Duration `mapstructure:"menu_cache_ttl"`
}

// KafkaSettings configures the audit event producer. Empty brokers select
// the logging stub publisher.
type KafkaSettings struct {
	Brokers     []string `mapstructure:"brokers"`
	TopicPrefix string   `mapstructure:"topic_prefix"`
}

// IdentitySettings configures the hosted identity provider (GoTrue-style
// admin API) and role resolution fallbacks.
type IdentitySettings struct {
	URL              string        `mapstructure:"url"`
	ServiceKey       string        `mapstructure:"service_key"`
	JWTSecret        string        `mapstructure:"jwt_secret"`
	RequestTimeout   time.Duration `mapstructure:"request_timeout"`
	SuperAdminEmails []string      `mapstructure:"super_admin_emails"`
	InviteRedirectTo string        `mapstructure:"invite_redirect_to"`
}

// RateLimitSettings throttles invitation endpoints.
type RateLimitSettings struct {
	WindowDuration    time.Duration `mapstructure:"window_duration"`
	InviteMaxAttempts int           `mapstructure:"invite_max_attempts"`
	AssignMaxAttempts int           `mapstructure:"assign_max_attempts"`
}

type MetricsSettings struct {
	Namespace string `mapstructure:"namespace"`
}

func Load() (*AppConfig, error) {
	v := viper.New()

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("CADMIN")

	setDefaults(v)

	if err := bindEnvs(v, []string{
		"app.name",
		"app.env",
		"app.host",
		"app.port",
		"app.allowed_origins",
		"postgres.host",
		"postgres.port",
		"postgres.user",
		"postgres.password",
		"postgres.database",
		"postgres.ssl_mode",
		"postgres.max_conns",
		"postgres.min_conns",
		"postgres.max_conn_lifetime",
		"postgres.max_conn_idle_time",
		"postgres.health_check_period",
		"redis.host",
		"redis.port",
		"redis.db",
		"redis.password",
		"redis.tls_enabled",
		"redis.menu_cache_prefix",
		"redis.menu_cache_ttl",
		"kafka.brokers",
		"kafka.topic_prefix",
		"identity.url",
		"identity.service_key",
		"identity.jwt_secret",
		"identity.request_timeout",
		"identity.super_admin_emails",
		"identity.invite_redirect_to",
		"rate_limit.window_duration",
		"rate_limit.invite_max_attempts",
		"rate_limit.assign_max_attempts",
		"metrics.namespace",
	}); err != nil {
		return nil, err
	}

	v.AutomaticEnv()

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "complex-admin")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.host", "0.0.0.0")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.allowed_origins", []string{"*"})

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "cadmin")
	v.SetDefault("postgres.password", "cadmin_password")
	v.SetDefault("postgres.database", "cadmin")
	v.SetDefault("postgres.ssl_mode", "disable")
	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("postgres.min_conns", 2)
	v.SetDefault("postgres.max_conn_lifetime", "60m")
	v.SetDefault("postgres.max_conn_idle_time", "15m")
	v.SetDefault("postgres.health_check_period", "30s")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.tls_enabled", false)
	v.SetDefault("redis.menu_cache_prefix", "cadmin:menu-config")
	v.SetDefault("redis.menu_cache_ttl", "30s")

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic_prefix", "cadmin")

	v.SetDefault("identity.url", "http://localhost:9999")
	v.SetDefault("identity.service_key", "")
	v.SetDefault("identity.jwt_secret", "")
	v.SetDefault("identity.request_timeout", "5s")
	v.SetDefault("identity.super_admin_emails", []string{"superadmin@example.com"})
	v.SetDefault("identity.invite_redirect_to", "")

	v.SetDefault("rate_limit.window_duration", "1m")
	v.SetDefault("rate_limit.invite_max_attempts", 10)
	v.SetDefault("rate_limit.assign_max_attempts", 5)

	v.SetDefault("metrics.namespace", "cadmin")
}

func bindEnvs(v *viper.Viper, keys []string) error {
	for _, key := range keys {
		envKey := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, "CADMIN_"+envKey, envKey); err != nil {
			return fmt.Errorf("bind env for %s: %w", key, err)
		}
	}
	return nil
}
