package book

import (
	"context"
	"log/slog"

	"github.com/alanyoungcy/polygate/internal/domain"
)

// Source fetches the raw book for a token from the exchange.
type Source interface {
	FetchBook(ctx context.Context, tokenID string) (rawBids, rawAsks [][]string, err error)
}

// Service is the read path: it fetches the raw book and normalizes it. It
// holds no cross-call state; every snapshot is fetched fresh.
type Service struct {
	source Source
	logger *slog.Logger
}

// NewService creates a Service backed by the given book source.
func NewService(source Source, logger *slog.Logger) *Service {
	return &Service{
		source: source,
		logger: logger.With(slog.String("component", "book")),
	}
}

// Snapshot fetches and normalizes the book for tokenID. ok is false when the
// book is unavailable (non-2xx, transport error, or cancelled fetch); the
// failure is logged as a warning and never surfaced as an error. ok is true
// with empty sides when the market simply has no resting liquidity.
func (s *Service) Snapshot(ctx context.Context, tokenID string) (domain.OrderbookSnapshot, bool) {
	rawBids, rawAsks, err := s.source.FetchBook(ctx, tokenID)
	if err != nil {
		s.logger.WarnContext(ctx, "book unavailable",
			slog.String("token_id", tokenID),
			slog.String("error", err.Error()),
		)
		return domain.OrderbookSnapshot{}, false
	}
	return Normalize(tokenID, rawBids, rawAsks), true
}
