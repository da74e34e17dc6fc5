package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	ReportsStoreDisk = "disk"
	ReportsStoreS3   = "s3"
)

type Config struct {
	Environment string `toml:"environment"`
	Host        string `toml:"host"`
	Port        int    `toml:"port"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// metrics
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`

	// postgres
	PostgresHost    string `toml:"postgres_host"`
	PostgresPort    string `toml:"postgres_port"`
	PostgresDBName  string `toml:"postgres_db_name"`
	PostgresUser    string `toml:"postgres_user"`
	PostgresSSLMode string `toml:"postgres_ssl_mode"`

	// redis
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`

	// http
	AllowedOrigins              []string `toml:"allowed_origins"`
	LoginRateLimitAllowedPerMin int      `toml:"login_rate_limit_allowed_per_min"`
	ChatRateLimitAllowedPerMin  int      `toml:"chat_rate_limit_allowed_per_min"`
	SessionTTLHours             int      `toml:"session_ttl_hours"`

	// assistant
	AIBaseURL               string `toml:"ai_base_url"`
	AIModel                 string `toml:"ai_model"`
	AITimeoutSeconds        int    `toml:"ai_timeout_seconds"`
	ChatContextCacheSizeMB  int    `toml:"chat_context_cache_size_mb"`
	ChatContextCacheTTLSecs int    `toml:"chat_context_cache_ttl_secs"`

	// tips
	TipsCsvPath string `toml:"tips_csv_path"`

	// reports
	ReportsStore      string `toml:"reports_store"`
	ReportsDiskPath   string `toml:"reports_disk_path"`
	ReportsS3Bucket   string `toml:"reports_s3_bucket"`
	ReportsS3Region   string `toml:"reports_s3_region"`
	ReportsS3Endpoint string `toml:"reports_s3_endpoint"`
}

func (c *Config) AITimeout() time.Duration {
	if c.AITimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.AITimeoutSeconds) * time.Second
}

func (c *Config) SessionTTL() time.Duration {
	if c.SessionTTLHours <= 0 {
		return 24 * 7 * time.Hour
	}
	return time.Duration(c.SessionTTLHours) * time.Hour
}

func (c *Config) Validate() error {
	if c.Port <= 0 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.PostgresHost == "" || c.PostgresDBName == "" {
		return fmt.Errorf("postgres host and db name must be set")
	}
	switch c.ReportsStore {
	case ReportsStoreDisk:
		if c.ReportsDiskPath == "" {
			return fmt.Errorf("reports disk path must be set for the disk store")
		}
	case ReportsStoreS3:
		if c.ReportsS3Bucket == "" {
			return fmt.Errorf("reports s3 bucket must be set for the s3 store")
		}
	default:
		return fmt.Errorf("unknown reports store: %q", c.ReportsStore)
	}
	return nil
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg = t.Development
	case "prod", "production":
		cfg = t.Production
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
	if cfg == nil {
		return nil, fmt.Errorf("no config section for env: %s", env)
	}
	return cfg, nil
}

// Load reads the TOML file at path and returns the validated section for env.
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode config file: %w", err)
	}

	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}
	if cfg.Environment == "" {
		cfg.Environment = strings.ToLower(env)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}
