// Package feed streams realtime book updates from the exchange, normalizes
// them, and fans them out to the price cache, the signal bus, and an optional
// snapshot archiver.
package feed

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/alanyoungcy/polygate/internal/book"
	"github.com/alanyoungcy/polygate/internal/domain"
	"github.com/alanyoungcy/polygate/internal/platform/polymarket"
	"github.com/alanyoungcy/polygate/internal/pricing"
)

// SnapshotArchiver persists a normalized snapshot; the S3 archiver implements
// it. Archival failures are logged, never fatal to the feed.
type SnapshotArchiver interface {
	ArchiveSnapshot(ctx context.Context, snap domain.OrderbookSnapshot) error
}

// BookFeed subscribes to book and price_change for a set of tokens and keeps
// downstream consumers current. It reconnects on disconnect.
type BookFeed struct {
	wsURL    string
	tokenIDs []string
	prices   domain.PriceCache
	bus      domain.SignalBus
	archiver SnapshotArchiver
	logger   *slog.Logger

	closeOnce sync.Once
	done      chan struct{}
}

// NewBookFeed creates a feed for the given token IDs. prices, bus, and
// archiver are each optional.
func NewBookFeed(wsURL string, tokenIDs []string, prices domain.PriceCache, bus domain.SignalBus, logger *slog.Logger) *BookFeed {
	return &BookFeed{
		wsURL:    wsURL,
		tokenIDs: tokenIDs,
		prices:   prices,
		bus:      bus,
		logger:   logger.With(slog.String("component", "book_feed")),
		done:     make(chan struct{}),
	}
}

// WithArchiver attaches a snapshot archiver fed on every full book frame.
func (f *BookFeed) WithArchiver(a SnapshotArchiver) *BookFeed {
	f.archiver = a
	return f
}

// Run connects and subscribes, then blocks until ctx is cancelled or Close is
// called. Disconnects are retried after a short delay.
func (f *BookFeed) Run(ctx context.Context) error {
	if len(f.tokenIDs) == 0 {
		f.logger.InfoContext(ctx, "no tokens to subscribe, exiting")
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-f.done:
			return nil
		default:
		}

		err := f.runConnection(ctx)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		f.logger.WarnContext(ctx, "feed disconnected, reconnecting", slog.String("error", err.Error()))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-f.done:
			return nil
		case <-time.After(2 * time.Second):
		}
	}
}

func (f *BookFeed) runConnection(ctx context.Context) error {
	client := polymarket.NewWSClient(f.wsURL)
	defer client.Close()

	client.OnBook(func(tokenID string, bids, asks [][]string) {
		f.handleBook(context.Background(), tokenID, bids, asks)
	})
	client.OnPriceChange(func(change domain.PriceChange) {
		f.handlePriceChange(context.Background(), change)
	})

	connCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	err := client.Connect(connCtx)
	cancel()
	if err != nil {
		return err
	}

	if err := client.Subscribe(ctx, []string{"book", "price_change"}, f.tokenIDs); err != nil {
		return err
	}
	f.logger.InfoContext(ctx, "subscribed", slog.Int("tokens", len(f.tokenIDs)))

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-f.done:
		return nil
	}
}

// handleBook normalizes a full frame and fans it out.
func (f *BookFeed) handleBook(ctx context.Context, tokenID string, bids, asks [][]string) {
	snap := book.Normalize(tokenID, bids, asks)

	if f.prices != nil {
		if mid, ok := pricing.MidPrice(snap); ok {
			if err := f.prices.SetPrice(ctx, tokenID, mid, snap.FetchedAt); err != nil {
				f.logger.WarnContext(ctx, "price cache update failed",
					slog.String("token_id", tokenID),
					slog.String("error", err.Error()),
				)
			}
		}
	}

	if f.bus != nil {
		bid, ask := pricing.BestBidAsk(snap)
		event := map[string]any{
			"event":     "book_update",
			"token_id":  tokenID,
			"timestamp": snap.FetchedAt.Format(time.RFC3339Nano),
		}
		if bid != nil {
			event["best_bid"] = bid.Price
		}
		if ask != nil {
			event["best_ask"] = ask.Price
		}
		payload, _ := json.Marshal(event)
		if err := f.bus.Publish(ctx, "prices", payload); err != nil {
			f.logger.WarnContext(ctx, "publish book update failed",
				slog.String("token_id", tokenID),
				slog.String("error", err.Error()),
			)
		}
	}

	if f.archiver != nil {
		if err := f.archiver.ArchiveSnapshot(ctx, snap); err != nil {
			f.logger.WarnContext(ctx, "snapshot archive failed",
				slog.String("token_id", tokenID),
				slog.String("error", err.Error()),
			)
		}
	}
}

// handlePriceChange forwards incremental updates to the bus.
func (f *BookFeed) handlePriceChange(ctx context.Context, change domain.PriceChange) {
	if f.bus == nil {
		return
	}
	payload, _ := json.Marshal(map[string]any{
		"event":     "price_change",
		"token_id":  change.TokenID,
		"side":      change.Side,
		"price":     change.Price,
		"size":      change.Size,
		"timestamp": change.Timestamp.Format(time.RFC3339Nano),
	})
	if err := f.bus.Publish(ctx, "prices", payload); err != nil {
		f.logger.WarnContext(ctx, "publish price change failed",
			slog.String("token_id", change.TokenID),
			slog.String("error", err.Error()),
		)
	}
}

// Close stops the feed.
func (f *BookFeed) Close() {
	f.closeOnce.Do(func() { close(f.done) })
}
