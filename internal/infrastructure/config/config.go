package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App         AppConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Log         LogConfig
	HTTP        HTTPConfig
	Sync        SyncConfig
	Queue       QueueConfig
	Marketplace MarketplaceConfig
	Crypto      CryptoConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings. Redis is used for the
// marketplace token cache; leave Enabled false to run without it.
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
	TokenTTL time.Duration
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int
	TrustedProxies []string
}

// SyncConfig holds the periodic sync scheduler configuration
type SyncConfig struct {
	Enabled         bool
	OrderInterval   time.Duration // how often the order sync pass runs
	ProductInterval time.Duration // how often the catalog refresh runs
	StoreStagger    time.Duration // per-store launch offset within one pass
	PageLimit       int           // max orders fetched per channel request
	Lookback        time.Duration // how far back orders are requested
}

// QueueConfig holds the sync job queue configuration
type QueueConfig struct {
	Workers     int
	MaxRetries  int           // retries after the first failed attempt
	BackoffBase time.Duration // first retry delay, doubled per retry
	JobTimeout  time.Duration // per-attempt execution bound
	HistorySize int           // finished jobs retained for inspection
}

// MarketplaceConfig holds the marketplace API client configuration
type MarketplaceConfig struct {
	AuthURL        string
	APIBaseURL     string
	TimeoutSeconds int
}

// CryptoConfig holds the credential encryption settings
type CryptoConfig struct {
	// CredentialKey is the base64-encoded 32-byte AES key protecting
	// store API credentials at rest
	CredentialKey string
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with SELLERHUB_ prefix (e.g., SELLERHUB_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./backend")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("SELLERHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
			TokenTTL: v.GetDuration("redis.token_ttl"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:    v.GetDuration("http.read_timeout"),
			WriteTimeout:   v.GetDuration("http.write_timeout"),
			IdleTimeout:    v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes: v.GetInt("http.max_header_bytes"),
			TrustedProxies: v.GetStringSlice("http.trusted_proxies"),
		},
		Sync: SyncConfig{
			Enabled:         v.GetBool("sync.enabled"),
			OrderInterval:   v.GetDuration("sync.order_interval"),
			ProductInterval: v.GetDuration("sync.product_interval"),
			StoreStagger:    v.GetDuration("sync.store_stagger"),
			PageLimit:       v.GetInt("sync.page_limit"),
			Lookback:        v.GetDuration("sync.lookback"),
		},
		Queue: QueueConfig{
			Workers:     v.GetInt("queue.workers"),
			MaxRetries:  v.GetInt("queue.max_retries"),
			BackoffBase: v.GetDuration("queue.backoff_base"),
			JobTimeout:  v.GetDuration("queue.job_timeout"),
			HistorySize: v.GetInt("queue.history_size"),
		},
		Marketplace: MarketplaceConfig{
			AuthURL:        v.GetString("marketplace.auth_url"),
			APIBaseURL:     v.GetString("marketplace.api_base_url"),
			TimeoutSeconds: v.GetInt("marketplace.timeout_seconds"),
		},
		Crypto: CryptoConfig{
			CredentialKey: v.GetString("crypto.credential_key"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "sellerhub-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "sellerhub"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Redis.TokenTTL == 0 {
		cfg.Redis.TokenTTL = 50 * time.Minute
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.Sync.OrderInterval == 0 {
		cfg.Sync.OrderInterval = 15 * time.Minute
	}
	if cfg.Sync.ProductInterval == 0 {
		cfg.Sync.ProductInterval = 6 * time.Hour
	}
	if cfg.Sync.StoreStagger == 0 {
		cfg.Sync.StoreStagger = time.Minute
	}
	if cfg.Sync.PageLimit == 0 {
		cfg.Sync.PageLimit = 100
	}
	if cfg.Sync.Lookback == 0 {
		cfg.Sync.Lookback = 7 * 24 * time.Hour
	}
	if cfg.Queue.Workers == 0 {
		cfg.Queue.Workers = 3
	}
	if cfg.Queue.MaxRetries == 0 {
		cfg.Queue.MaxRetries = 3
	}
	if cfg.Queue.BackoffBase == 0 {
		cfg.Queue.BackoffBase = 10 * time.Second
	}
	if cfg.Queue.JobTimeout == 0 {
		cfg.Queue.JobTimeout = 10 * time.Minute
	}
	if cfg.Queue.HistorySize == 0 {
		cfg.Queue.HistorySize = 100
	}
	if cfg.Marketplace.TimeoutSeconds == 0 {
		cfg.Marketplace.TimeoutSeconds = 30
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if c.Queue.MaxRetries < 0 {
		return fmt.Errorf("queue.max_retries cannot be negative")
	}
	if c.Queue.Workers < 1 {
		return fmt.Errorf("queue.workers must be at least 1")
	}
	if c.Sync.StoreStagger < 0 {
		return fmt.Errorf("sync.store_stagger cannot be negative")
	}

	// Production-specific validations
	if c.App.Env == "production" {
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		if c.Crypto.CredentialKey == "" {
			return fmt.Errorf("crypto.credential_key is required in production")
		}
		if c.Marketplace.AuthURL == "" || c.Marketplace.APIBaseURL == "" {
			return fmt.Errorf("marketplace.auth_url and marketplace.api_base_url are required in production")
		}
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// Addr returns the host:port address of the Redis server
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
