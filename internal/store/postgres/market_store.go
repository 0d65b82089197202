package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alanyoungcy/polygate/internal/domain"
)

// MarketStore implements domain.MarketStore using PostgreSQL.
type MarketStore struct {
	pool *pgxpool.Pool
}

// NewMarketStore creates a MarketStore backed by the given connection pool.
func NewMarketStore(pool *pgxpool.Pool) *MarketStore {
	return &MarketStore{pool: pool}
}

const upsertMarketSQL = `
	INSERT INTO markets (
		id, slug, question, outcome_1, outcome_2,
		token_id_1, token_id_2, price_1, price_2,
		neg_risk, volume, status, end_date, created_at, updated_at
	) VALUES (
		$1, $2, $3, $4, $5,
		$6, $7, $8, $9,
		$10, $11, $12, $13, $14, NOW()
	)
	ON CONFLICT (id) DO UPDATE SET
		slug       = EXCLUDED.slug,
		question   = EXCLUDED.question,
		outcome_1  = EXCLUDED.outcome_1,
		outcome_2  = EXCLUDED.outcome_2,
		token_id_1 = EXCLUDED.token_id_1,
		token_id_2 = EXCLUDED.token_id_2,
		price_1    = EXCLUDED.price_1,
		price_2    = EXCLUDED.price_2,
		neg_risk   = EXCLUDED.neg_risk,
		volume     = EXCLUDED.volume,
		status     = EXCLUDED.status,
		end_date   = EXCLUDED.end_date,
		updated_at = NOW()`

func upsertArgs(m domain.Market) []any {
	return []any{
		m.ID, m.Slug, m.Question,
		m.Outcomes[0], m.Outcomes[1],
		m.TokenIDs[0], m.TokenIDs[1],
		m.Prices[0], m.Prices[1],
		m.NegRisk, m.Volume, string(m.Status),
		m.EndDate, m.CreatedAt,
	}
}

// Upsert inserts or updates a single market.
func (s *MarketStore) Upsert(ctx context.Context, m domain.Market) error {
	if _, err := s.pool.Exec(ctx, upsertMarketSQL, upsertArgs(m)...); err != nil {
		return fmt.Errorf("postgres: upsert market %s: %w", m.ID, err)
	}
	return nil
}

// UpsertBatch inserts or updates multiple markets in one batch round trip.
func (s *MarketStore) UpsertBatch(ctx context.Context, markets []domain.Market) error {
	if len(markets) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, m := range markets {
		batch.Queue(upsertMarketSQL, upsertArgs(m)...)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := range markets {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("postgres: upsert market batch item %d: %w", i, err)
		}
	}
	return nil
}

const marketCols = `id, slug, question, outcome_1, outcome_2,
	token_id_1, token_id_2, price_1, price_2,
	neg_risk, volume, status, end_date, created_at, updated_at`

func scanMarket(row pgx.Row) (domain.Market, error) {
	var m domain.Market
	var status string
	err := row.Scan(
		&m.ID, &m.Slug, &m.Question,
		&m.Outcomes[0], &m.Outcomes[1],
		&m.TokenIDs[0], &m.TokenIDs[1],
		&m.Prices[0], &m.Prices[1],
		&m.NegRisk, &m.Volume, &status,
		&m.EndDate, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return domain.Market{}, err
	}
	m.Status = domain.MarketStatus(status)
	return m, nil
}

// GetBySlug retrieves a market by its URL slug.
func (s *MarketStore) GetBySlug(ctx context.Context, slug string) (domain.Market, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+marketCols+` FROM markets WHERE slug = $1`, slug)
	m, err := scanMarket(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Market{}, domain.ErrNotFound
		}
		return domain.Market{}, fmt.Errorf("postgres: get market by slug %s: %w", slug, err)
	}
	return m, nil
}

// Count returns the total number of stored markets.
func (s *MarketStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM markets").Scan(&count); err != nil {
		return 0, fmt.Errorf("postgres: count markets: %w", err)
	}
	return count, nil
}

// Compile-time interface check.
var _ domain.MarketStore = (*MarketStore)(nil)
