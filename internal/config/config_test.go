package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "bogus"
	cfg.LogLevel = "loud"
	cfg.Redis.Addr = ""
	cfg.Polymarket.ChainID = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation failure")
	}
	msg := err.Error()
	for _, want := range []string{"unknown mode", "unknown log_level", "redis: addr", "chain_id"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error missing %q:\n%s", want, msg)
		}
	}
}

func TestValidate_EncryptedKeyNeedsPassword(t *testing.T) {
	cfg := Defaults()
	cfg.Wallet.EncryptedKeyPath = "/tmp/key.json"

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "key_password") {
		t.Errorf("err = %v, want key_password complaint", err)
	}

	cfg.Wallet.KeyPassword = "pw"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error with password set: %v", err)
	}
}

func TestLoad_TOMLAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
mode = "scrape"
log_level = "debug"

[polymarket]
clob_host = "https://clob.example.com"

[scrape]
interval = "30s"
page_limit = 25

[monitor]
token_ids = ["111", "222"]
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("POLYGATE_REDIS_ADDR", "redis.internal:6380")
	t.Setenv("POLYGATE_MODE", "monitor")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	// TOML over defaults.
	if cfg.Polymarket.ClobHost != "https://clob.example.com" {
		t.Errorf("clob_host = %s", cfg.Polymarket.ClobHost)
	}
	if cfg.Scrape.Interval.Duration != 30*time.Second {
		t.Errorf("interval = %v", cfg.Scrape.Interval.Duration)
	}
	if cfg.Scrape.PageLimit != 25 {
		t.Errorf("page_limit = %d", cfg.Scrape.PageLimit)
	}
	if len(cfg.Monitor.TokenIDs) != 2 {
		t.Errorf("token_ids = %v", cfg.Monitor.TokenIDs)
	}
	// Defaults untouched by TOML.
	if cfg.Polymarket.ChainID != 137 {
		t.Errorf("chain_id = %d", cfg.Polymarket.ChainID)
	}
	// Env over TOML.
	if cfg.Redis.Addr != "redis.internal:6380" {
		t.Errorf("redis addr = %s", cfg.Redis.Addr)
	}
	if cfg.Mode != "monitor" {
		t.Errorf("mode = %s", cfg.Mode)
	}
}

func TestRedactedConfig(t *testing.T) {
	cfg := Defaults()
	cfg.Wallet.PrivateKey = "0xsecret"
	cfg.Redis.Password = "hunter2"
	cfg.S3.SecretKey = "sk"

	red := RedactedConfig(&cfg)

	if red.Wallet.PrivateKey != "***" || red.Redis.Password != "***" || red.S3.SecretKey != "***" {
		t.Errorf("secrets not redacted: %+v", red)
	}
	// Empty secrets stay empty rather than being replaced.
	if red.Postgres.Password != "" {
		t.Errorf("empty password redacted to %q", red.Postgres.Password)
	}
	// Original untouched.
	if cfg.Wallet.PrivateKey != "0xsecret" {
		t.Error("original mutated")
	}
}
