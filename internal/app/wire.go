package app

import (
	"context"
	"fmt"
	"log/slog"

	s3blob "github.com/alanyoungcy/polygate/internal/blob/s3"
	"github.com/alanyoungcy/polygate/internal/book"
	"github.com/alanyoungcy/polygate/internal/cache/redis"
	"github.com/alanyoungcy/polygate/internal/config"
	"github.com/alanyoungcy/polygate/internal/crypto"
	"github.com/alanyoungcy/polygate/internal/domain"
	"github.com/alanyoungcy/polygate/internal/gateway"
	"github.com/alanyoungcy/polygate/internal/notify"
	"github.com/alanyoungcy/polygate/internal/platform/polymarket"
	"github.com/alanyoungcy/polygate/internal/session"
	"github.com/alanyoungcy/polygate/internal/store/postgres"
)

// Dependencies bundles every constructed subsystem. Mode runners pick the
// pieces they need; optional subsystems are nil when the mode does not use
// them.
type Dependencies struct {
	PriceCache  domain.PriceCache
	RateLimiter domain.RateLimiter
	SignalBus   domain.SignalBus

	MarketStore domain.MarketStore
	BlobWriter  domain.BlobWriter
	Archiver    *s3blob.Archiver

	Gamma    *polymarket.GammaClient
	Books    *book.Service
	Sessions *session.Manager
	Gateway  *gateway.Gateway
	Notifier *notify.Notifier
}

// needsPostgres reports whether the configuration touches the metadata store:
// scrape writes it, and feed modes read it to resolve watched market slugs.
func needsPostgres(cfg *config.Config) bool {
	return cfg.Mode == "scrape" || len(cfg.Monitor.MarketSlugs) > 0
}

// needsS3 reports whether the configuration calls for snapshot archival.
func needsS3(cfg *config.Config) bool {
	return cfg.Mode == "capture" || cfg.Monitor.ArchiveSnapshots
}

// Wire constructs all subsystems for the configured mode. It returns the
// dependencies together with a cleanup function that closes everything built
// so far; on error the partial state is already cleaned up.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	deps := &Dependencies{}

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	// Redis carries the price cache, the order rate limiter, and the signal
	// bus in every mode.
	redisClient, err := redis.New(ctx, redis.ClientConfig{
		Addr:       cfg.Redis.Addr,
		Password:   cfg.Redis.Password,
		DB:         cfg.Redis.DB,
		PoolSize:   cfg.Redis.PoolSize,
		MaxRetries: cfg.Redis.MaxRetries,
		TLSEnabled: cfg.Redis.TLSEnabled,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("wire: redis: %w", err)
	}
	closers = append(closers, func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close failed", slog.String("error", err.Error()))
		}
	})
	deps.PriceCache = redis.NewPriceCache(redisClient)
	deps.RateLimiter = redis.NewRateLimiter(redisClient)
	deps.SignalBus = redis.NewSignalBus(redisClient)

	if needsPostgres(cfg) {
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Postgres.DSN,
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
			MaxConns: cfg.Postgres.PoolMaxConns,
			MinConns: cfg.Postgres.PoolMinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		if cfg.Postgres.RunMigrations {
			if err := pgClient.RunMigrations(ctx); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: migrations: %w", err)
			}
		}
		deps.MarketStore = postgres.NewMarketStore(pgClient.Pool())
	}

	if needsS3(cfg) {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		closers = append(closers, func() {
			if err := s3Client.Close(); err != nil {
				logger.Warn("s3 close failed", slog.String("error", err.Error()))
			}
		})
		deps.BlobWriter = s3blob.NewWriter(s3Client)
		deps.Archiver = s3blob.NewArchiver(deps.BlobWriter, cfg.S3.KeyPrefix)
	}

	deps.Notifier = buildNotifier(cfg, logger)

	deps.Gamma = polymarket.NewGammaClient(cfg.Polymarket.GammaHost)

	// The book read path is unauthenticated.
	deps.Books = book.NewService(
		polymarket.NewClobClient(cfg.Polymarket.ClobHost, nil, nil),
		logger,
	)

	deps.Sessions = session.NewManager(session.Config{
		ClobBaseURL: cfg.Polymarket.ClobHost,
		ChainID:     cfg.Polymarket.ChainID,
		Keys: crypto.KeySource{
			RawPrivateKey:    cfg.Wallet.PrivateKey,
			EncryptedKeyPath: cfg.Wallet.EncryptedKeyPath,
			KeyPassword:      cfg.Wallet.KeyPassword,
		},
	}, logger)

	gw := gateway.New(deps.Sessions, logger).
		WithRateLimiter(deps.RateLimiter).
		WithRateLimit(cfg.Gateway.OrderRateLimit, cfg.Gateway.OrderRateWindow.Duration).
		WithSignalBus(deps.SignalBus)
	if deps.Notifier != nil {
		gw = gw.WithNotifier(deps.Notifier)
	}
	deps.Gateway = gw

	return deps, cleanup, nil
}

// buildNotifier assembles the configured notification senders. Returns nil
// when no channel is configured.
func buildNotifier(cfg *config.Config, logger *slog.Logger) *notify.Notifier {
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	if len(senders) == 0 {
		return nil
	}
	return notify.NewNotifier(senders, cfg.Notify.Events, logger)
}
