package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/alanyoungcy/polygate/internal/config"
	"github.com/alanyoungcy/polygate/internal/domain"
)

type fakeMarketStore struct {
	bySlug map[string]domain.Market
}

func (f *fakeMarketStore) Upsert(ctx context.Context, m domain.Market) error { return nil }

func (f *fakeMarketStore) UpsertBatch(ctx context.Context, markets []domain.Market) error {
	return nil
}

func (f *fakeMarketStore) GetBySlug(ctx context.Context, slug string) (domain.Market, error) {
	m, ok := f.bySlug[slug]
	if !ok {
		return domain.Market{}, domain.ErrNotFound
	}
	return m, nil
}

func (f *fakeMarketStore) Count(ctx context.Context) (int64, error) {
	return int64(len(f.bySlug)), nil
}

func testApp(cfg *config.Config, store domain.MarketStore) *App {
	return &App{
		cfg:    cfg,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		deps:   &Dependencies{MarketStore: store},
	}
}

func TestWatchedTokenIDs_ResolvesSlugsAndDedupes(t *testing.T) {
	cfg := config.Defaults()
	cfg.Monitor.TokenIDs = []string{"111", "333"}
	cfg.Monitor.MarketSlugs = []string{"will-it-rain"}

	store := &fakeMarketStore{bySlug: map[string]domain.Market{
		"will-it-rain": {Slug: "will-it-rain", TokenIDs: [2]string{"111", "222"}},
	}}

	got, err := testApp(&cfg, store).watchedTokenIDs(context.Background())
	if err != nil {
		t.Fatalf("watchedTokenIDs: %v", err)
	}

	want := []string{"111", "333", "222"}
	if len(got) != len(want) {
		t.Fatalf("tokens = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("tokens = %v, want %v", got, want)
			break
		}
	}
}

func TestWatchedTokenIDs_UnknownSlugFails(t *testing.T) {
	cfg := config.Defaults()
	cfg.Monitor.MarketSlugs = []string{"no-such-market"}

	_, err := testApp(&cfg, &fakeMarketStore{}).watchedTokenIDs(context.Background())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestWatchedTokenIDs_SkipsEmptyTokenSlot(t *testing.T) {
	cfg := config.Defaults()
	cfg.Monitor.MarketSlugs = []string{"one-sided"}

	store := &fakeMarketStore{bySlug: map[string]domain.Market{
		"one-sided": {Slug: "one-sided", TokenIDs: [2]string{"555", ""}},
	}}

	got, err := testApp(&cfg, store).watchedTokenIDs(context.Background())
	if err != nil {
		t.Fatalf("watchedTokenIDs: %v", err)
	}
	if len(got) != 1 || got[0] != "555" {
		t.Errorf("tokens = %v, want [555]", got)
	}
}
