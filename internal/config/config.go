// Package config defines the top-level configuration for the gateway and
// provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by POLYGATE_* environment
// variables.
type Config struct {
	Wallet     WalletConfig     `toml:"wallet"`
	Polymarket PolymarketConfig `toml:"polymarket"`
	Postgres   PostgresConfig   `toml:"postgres"`
	Redis      RedisConfig      `toml:"redis"`
	S3         S3Config         `toml:"s3"`
	Gateway    GatewayConfig    `toml:"gateway"`
	Monitor    MonitorConfig    `toml:"monitor"`
	Scrape     ScrapeConfig     `toml:"scrape"`
	Notify     NotifyConfig     `toml:"notify"`
	Mode       string           `toml:"mode"`
	LogLevel   string           `toml:"log_level"`
}

// WalletConfig holds the wallet credential sources. Exactly one of
// private_key or encrypted_key_path is needed for authenticated operations.
type WalletConfig struct {
	PrivateKey       string `toml:"private_key"`
	EncryptedKeyPath string `toml:"encrypted_key_path"`
	KeyPassword      string `toml:"key_password"`
}

// PolymarketConfig holds exchange API endpoints and chain parameters.
type PolymarketConfig struct {
	ClobHost  string `toml:"clob_host"`
	GammaHost string `toml:"gamma_host"`
	WsHost    string `toml:"ws_host"`
	ChainID   int64  `toml:"chain_id"`
}

// PostgresConfig holds PostgreSQL connection parameters for the market
// metadata store.
type PostgresConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// S3Config holds S3-compatible object storage parameters for book snapshot
// capture.
type S3Config struct {
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
	KeyPrefix      string `toml:"key_prefix"`
}

// GatewayConfig holds order submission parameters.
type GatewayConfig struct {
	OrderRateLimit  int      `toml:"order_rate_limit"`
	OrderRateWindow duration `toml:"order_rate_window"`
}

// MonitorConfig holds realtime feed parameters.
type MonitorConfig struct {
	TokenIDs []string `toml:"token_ids"`
	// MarketSlugs name markets to watch by slug; their token IDs are
	// resolved from the scraped metadata store at startup.
	MarketSlugs []string `toml:"market_slugs"`
	// PollInterval is the REST book poll cadence that backstops the
	// realtime feed.
	PollInterval duration `toml:"poll_interval"`
	// ArchiveSnapshots enables S3 capture of every full book frame.
	ArchiveSnapshots bool `toml:"archive_snapshots"`
}

// ScrapeConfig holds market metadata scrape parameters.
type ScrapeConfig struct {
	Interval  duration `toml:"interval"`
	PageLimit int      `toml:"page_limit"`
	TagID     int      `toml:"tag_id"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// duration wraps time.Duration so TOML strings like "5m" decode cleanly.
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
func Defaults() Config {
	return Config{
		Polymarket: PolymarketConfig{
			ClobHost:  "https://clob.polymarket.com",
			GammaHost: "https://gamma-api.polymarket.com",
			WsHost:    "wss://ws-subscriptions-clob.polymarket.com/ws/market",
			ChainID:   137,
		},
		Postgres: PostgresConfig{
			Host:          "localhost",
			Port:          5432,
			Database:      "polygate",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
		},
		S3: S3Config{
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "polygate-data",
			ForcePathStyle: true,
			KeyPrefix:      "books",
		},
		Gateway: GatewayConfig{
			OrderRateLimit:  10,
			OrderRateWindow: duration{time.Second},
		},
		Monitor: MonitorConfig{
			PollInterval: duration{30 * time.Second},
		},
		Scrape: ScrapeConfig{
			Interval:  duration{5 * time.Minute},
			PageLimit: 100,
		},
		Notify: NotifyConfig{
			Events: []string{"order_placed", "order_cancelled", "error"},
		},
		Mode:     "monitor",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"monitor": true,
	"capture": true,
	"scrape":  true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks the Config for invalid or missing values and returns one
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: monitor, capture, scrape)", c.Mode))
	}

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	if c.Wallet.EncryptedKeyPath != "" && c.Wallet.KeyPassword == "" {
		errs = append(errs, "wallet: key_password is required when encrypted_key_path is set")
	}

	if c.Polymarket.ClobHost == "" {
		errs = append(errs, "polymarket: clob_host must not be empty")
	}
	if c.Polymarket.GammaHost == "" {
		errs = append(errs, "polymarket: gamma_host must not be empty")
	}
	if c.Polymarket.ChainID <= 0 {
		errs = append(errs, "polymarket: chain_id must be positive")
	}

	if strings.TrimSpace(c.Postgres.DSN) == "" {
		if c.Postgres.Host == "" {
			errs = append(errs, "postgres: host must not be empty (or set postgres.dsn)")
		}
		if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
			errs = append(errs, fmt.Sprintf("postgres: port must be 1-65535, got %d", c.Postgres.Port))
		}
		if c.Postgres.Database == "" {
			errs = append(errs, "postgres: database must not be empty")
		}
	}
	if c.Postgres.PoolMaxConns < 1 {
		errs = append(errs, "postgres: pool_max_conns must be >= 1")
	}
	if c.Postgres.PoolMinConns < 0 {
		errs = append(errs, "postgres: pool_min_conns must be >= 0")
	}
	if c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
		errs = append(errs, "postgres: pool_min_conns must not exceed pool_max_conns")
	}

	if c.Redis.Addr == "" {
		errs = append(errs, "redis: addr must not be empty")
	}
	if c.Redis.PoolSize < 1 {
		errs = append(errs, "redis: pool_size must be >= 1")
	}

	if c.Mode == "capture" || c.Monitor.ArchiveSnapshots {
		if c.S3.Endpoint == "" {
			errs = append(errs, "s3: endpoint must not be empty when snapshot capture is on")
		}
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must not be empty when snapshot capture is on")
		}
	}

	if c.Gateway.OrderRateLimit < 1 {
		errs = append(errs, "gateway: order_rate_limit must be >= 1")
	}
	if c.Gateway.OrderRateWindow.Duration <= 0 {
		errs = append(errs, "gateway: order_rate_window must be positive")
	}

	if c.Mode == "monitor" || c.Mode == "capture" {
		if c.Monitor.PollInterval.Duration <= 0 {
			errs = append(errs, "monitor: poll_interval must be positive")
		}
	}

	if c.Mode == "scrape" {
		if c.Scrape.Interval.Duration <= 0 {
			errs = append(errs, "scrape: interval must be positive")
		}
		if c.Scrape.PageLimit < 1 {
			errs = append(errs, "scrape: page_limit must be >= 1")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
