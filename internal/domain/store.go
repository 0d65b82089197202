package domain

import (
	"context"
	"io"
	"time"
)

// MarketStore persists scraped market metadata and resolves watched markets
// by slug.
type MarketStore interface {
	Upsert(ctx context.Context, m Market) error
	UpsertBatch(ctx context.Context, markets []Market) error
	GetBySlug(ctx context.Context, slug string) (Market, error)
	Count(ctx context.Context) (int64, error)
}

// PriceCache stores the latest observed price per token.
type PriceCache interface {
	SetPrice(ctx context.Context, tokenID string, price float64, ts time.Time) error
	GetPrices(ctx context.Context, tokenIDs []string) (map[string]float64, error)
}

// RateLimiter bounds the request rate for a given key.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// SignalBus publishes ephemeral events to interested subscribers.
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
}

// BlobWriter uploads an object to blob storage.
type BlobWriter interface {
	Put(ctx context.Context, path string, data io.Reader, contentType string) error
}
