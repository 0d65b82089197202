package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies POLYGATE_* environment variable overrides, and
// returns the final Config. The caller should invoke Config.Validate after
// Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env if present; a missing file is fine.
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known POLYGATE_* environment variables and
// overwrites the corresponding fields when a variable is set. Operators can
// inject secrets at deploy time without touching the TOML file.
func applyEnvOverrides(cfg *Config) {
	setStr(&cfg.Wallet.PrivateKey, "POLYGATE_WALLET_PRIVATE_KEY")
	setStr(&cfg.Wallet.EncryptedKeyPath, "POLYGATE_WALLET_ENCRYPTED_KEY_PATH")
	setStr(&cfg.Wallet.KeyPassword, "POLYGATE_WALLET_KEY_PASSWORD")

	setStr(&cfg.Polymarket.ClobHost, "POLYGATE_POLYMARKET_CLOB_HOST")
	setStr(&cfg.Polymarket.GammaHost, "POLYGATE_POLYMARKET_GAMMA_HOST")
	setStr(&cfg.Polymarket.WsHost, "POLYGATE_POLYMARKET_WS_HOST")
	setInt64(&cfg.Polymarket.ChainID, "POLYGATE_POLYMARKET_CHAIN_ID")

	setStr(&cfg.Postgres.DSN, "POLYGATE_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "POLYGATE_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "POLYGATE_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "POLYGATE_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "POLYGATE_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "POLYGATE_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "POLYGATE_POSTGRES_SSL_MODE")
	setInt(&cfg.Postgres.PoolMaxConns, "POLYGATE_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "POLYGATE_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "POLYGATE_POSTGRES_RUN_MIGRATIONS")

	setStr(&cfg.Redis.Addr, "POLYGATE_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "POLYGATE_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "POLYGATE_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "POLYGATE_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "POLYGATE_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "POLYGATE_REDIS_TLS_ENABLED")

	setStr(&cfg.S3.Endpoint, "POLYGATE_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "POLYGATE_S3_REGION")
	setStr(&cfg.S3.Bucket, "POLYGATE_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "POLYGATE_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "POLYGATE_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "POLYGATE_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "POLYGATE_S3_FORCE_PATH_STYLE")
	setStr(&cfg.S3.KeyPrefix, "POLYGATE_S3_KEY_PREFIX")

	setInt(&cfg.Gateway.OrderRateLimit, "POLYGATE_GATEWAY_ORDER_RATE_LIMIT")
	setDuration(&cfg.Gateway.OrderRateWindow, "POLYGATE_GATEWAY_ORDER_RATE_WINDOW")

	setStringSlice(&cfg.Monitor.TokenIDs, "POLYGATE_MONITOR_TOKEN_IDS")
	setStringSlice(&cfg.Monitor.MarketSlugs, "POLYGATE_MONITOR_MARKET_SLUGS")
	setDuration(&cfg.Monitor.PollInterval, "POLYGATE_MONITOR_POLL_INTERVAL")
	setBool(&cfg.Monitor.ArchiveSnapshots, "POLYGATE_MONITOR_ARCHIVE_SNAPSHOTS")

	setDuration(&cfg.Scrape.Interval, "POLYGATE_SCRAPE_INTERVAL")
	setInt(&cfg.Scrape.PageLimit, "POLYGATE_SCRAPE_PAGE_LIMIT")
	setInt(&cfg.Scrape.TagID, "POLYGATE_SCRAPE_TAG_ID")

	setStr(&cfg.Notify.TelegramToken, "POLYGATE_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "POLYGATE_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "POLYGATE_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "POLYGATE_NOTIFY_EVENTS")

	setStr(&cfg.Mode, "POLYGATE_MODE")
	setStr(&cfg.LogLevel, "POLYGATE_LOG_LEVEL")
}

// Typed env-var helpers. Each only mutates the target when the variable is
// present and non-empty.

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
