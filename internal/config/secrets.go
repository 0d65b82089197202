package config

// RedactedConfig returns a copy of cfg with sensitive fields replaced by the
// redaction placeholder. Use this when logging the active configuration.
func RedactedConfig(cfg *Config) Config {
	out := *cfg

	redact(&out.Wallet.PrivateKey)
	redact(&out.Wallet.KeyPassword)

	redact(&out.Postgres.DSN)
	redact(&out.Postgres.Password)

	redact(&out.Redis.Password)

	redact(&out.S3.AccessKey)
	redact(&out.S3.SecretKey)

	redact(&out.Notify.TelegramToken)
	redact(&out.Notify.DiscordWebhookURL)

	// Copy slices so callers cannot mutate the original through the copy.
	if cfg.Notify.Events != nil {
		out.Notify.Events = make([]string, len(cfg.Notify.Events))
		copy(out.Notify.Events, cfg.Notify.Events)
	}
	if cfg.Monitor.TokenIDs != nil {
		out.Monitor.TokenIDs = make([]string, len(cfg.Monitor.TokenIDs))
		copy(out.Monitor.TokenIDs, cfg.Monitor.TokenIDs)
	}
	if cfg.Monitor.MarketSlugs != nil {
		out.Monitor.MarketSlugs = make([]string, len(cfg.Monitor.MarketSlugs))
		copy(out.Monitor.MarketSlugs, cfg.Monitor.MarketSlugs)
	}

	return out
}

const redacted = "***"

// redact replaces a non-empty string with the redaction placeholder.
func redact(s *string) {
	if *s != "" {
		*s = redacted
	}
}
