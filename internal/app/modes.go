package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/polygate/internal/feed"
	"github.com/alanyoungcy/polygate/internal/gateway"
	"github.com/alanyoungcy/polygate/internal/pricing"
)

// runMonitor streams realtime books for the configured tokens and keeps the
// price cache current. A slow REST poll backstops the stream in case the
// websocket silently stalls.
func (a *App) runMonitor(ctx context.Context) error {
	return a.runFeed(ctx, false)
}

// runCapture is monitor plus full-frame snapshot archival to object storage.
func (a *App) runCapture(ctx context.Context) error {
	return a.runFeed(ctx, true)
}

func (a *App) runFeed(ctx context.Context, archive bool) error {
	tokenIDs, err := a.watchedTokenIDs(ctx)
	if err != nil {
		return err
	}

	bookFeed := feed.NewBookFeed(
		a.cfg.Polymarket.WsHost,
		tokenIDs,
		a.deps.PriceCache,
		a.deps.SignalBus,
		a.logger,
	)
	if archive || a.cfg.Monitor.ArchiveSnapshots {
		bookFeed = bookFeed.WithArchiver(a.deps.Archiver)
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer bookFeed.Close()
		return bookFeed.Run(ctx)
	})

	g.Go(func() error {
		return a.pollBooks(ctx, tokenIDs)
	})

	// Order commands published on the bus by co-located processes route
	// through the gateway; the session stays lazy until the first one.
	listener := gateway.NewListener(a.deps.Gateway, a.deps.SignalBus, a.logger)
	g.Go(func() error {
		return listener.Run(ctx)
	})

	return g.Wait()
}

// watchedTokenIDs combines the explicitly configured token IDs with those of
// any markets named by slug, resolved from the metadata store. Duplicates are
// dropped; an unknown slug is an error so a typo does not silently watch
// nothing.
func (a *App) watchedTokenIDs(ctx context.Context) ([]string, error) {
	seen := make(map[string]bool)
	var tokenIDs []string

	add := func(id string) {
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		tokenIDs = append(tokenIDs, id)
	}

	for _, id := range a.cfg.Monitor.TokenIDs {
		add(id)
	}

	for _, slug := range a.cfg.Monitor.MarketSlugs {
		market, err := a.deps.MarketStore.GetBySlug(ctx, slug)
		if err != nil {
			return nil, fmt.Errorf("app: resolve market slug %q: %w", slug, err)
		}
		add(market.TokenIDs[0])
		add(market.TokenIDs[1])
	}

	return tokenIDs, nil
}

// pollBooks refreshes the cached mid price for every monitored token over
// REST. Individual fetch failures are logged by the book service and skipped.
func (a *App) pollBooks(ctx context.Context, tokenIDs []string) error {
	if len(tokenIDs) == 0 {
		return nil
	}

	ticker := time.NewTicker(a.cfg.Monitor.PollInterval.Duration)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		for _, tokenID := range tokenIDs {
			snap, ok := a.deps.Books.Snapshot(ctx, tokenID)
			if !ok {
				continue
			}
			mid, ok := pricing.MidPrice(snap)
			if !ok {
				continue
			}
			if err := a.deps.PriceCache.SetPrice(ctx, tokenID, mid, snap.FetchedAt); err != nil {
				a.logger.WarnContext(ctx, "price cache update failed",
					slog.String("token_id", tokenID),
					slog.String("error", err.Error()),
				)
			}

			bid, ask := pricing.BestBidAsk(snap)
			a.logger.DebugContext(ctx, "book poll",
				slog.String("token_id", tokenID),
				slog.Float64("best_bid", bid.Price),
				slog.Float64("best_ask", ask.Price),
				slog.Float64("mid", mid),
				slog.Float64("bid_notional", snap.BidNotional()),
				slog.Float64("ask_notional", snap.AskNotional()),
			)
		}

		// Read back through the cache so the log reflects what consumers see.
		prices, err := a.deps.PriceCache.GetPrices(ctx, tokenIDs)
		if err != nil {
			a.logger.WarnContext(ctx, "price cache read failed", slog.String("error", err.Error()))
			continue
		}
		a.logger.InfoContext(ctx, "poll pass complete",
			slog.Int("tokens", len(tokenIDs)),
			slog.Int("cached_prices", len(prices)),
		)
	}
}

// runScrape periodically pages market metadata out of the Gamma API into
// PostgreSQL. The first pass runs immediately so a fresh deployment has data
// before the first tick.
func (a *App) runScrape(ctx context.Context) error {
	if err := a.scrapeOnce(ctx); err != nil {
		a.logger.WarnContext(ctx, "scrape pass failed", slog.String("error", err.Error()))
	}

	ticker := time.NewTicker(a.cfg.Scrape.Interval.Duration)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		if err := a.scrapeOnce(ctx); err != nil {
			a.logger.WarnContext(ctx, "scrape pass failed", slog.String("error", err.Error()))
		}
	}
}

func (a *App) scrapeOnce(ctx context.Context) error {
	start := time.Now()
	total := 0

	for offset := 0; ; offset += a.cfg.Scrape.PageLimit {
		markets, err := a.deps.Gamma.ListMarkets(ctx, a.cfg.Scrape.PageLimit, offset)
		if err != nil {
			return err
		}
		if len(markets) == 0 {
			break
		}

		if err := a.deps.MarketStore.UpsertBatch(ctx, markets); err != nil {
			return err
		}
		total += len(markets)

		if len(markets) < a.cfg.Scrape.PageLimit {
			break
		}
	}

	// Tagged events carry markets the flat listing can lag behind on.
	if a.cfg.Scrape.TagID > 0 {
		events, err := a.deps.Gamma.ListOpenEvents(ctx, a.cfg.Scrape.TagID, a.cfg.Scrape.PageLimit)
		if err != nil {
			return err
		}
		for _, ev := range events {
			if len(ev.Markets) == 0 {
				continue
			}
			if err := a.deps.MarketStore.UpsertBatch(ctx, ev.Markets); err != nil {
				return err
			}
			total += len(ev.Markets)
		}
	}

	stored, err := a.deps.MarketStore.Count(ctx)
	if err != nil {
		return err
	}

	a.logger.InfoContext(ctx, "scrape pass complete",
		slog.Int("markets", total),
		slog.Int64("stored_total", stored),
		slog.Duration("elapsed", time.Since(start)),
	)
	return nil
}
