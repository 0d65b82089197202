package domain

import "time"

// MarketStatus tracks the lifecycle of a market.
type MarketStatus string

const (
	MarketStatusActive  MarketStatus = "active"
	MarketStatusClosed  MarketStatus = "closed"
	MarketStatusSettled MarketStatus = "settled"
)

// Market is the metadata for a single binary market. TokenIDs and Outcomes
// are index-aligned (0 = Yes, 1 = No for standard markets).
type Market struct {
	ID        string
	Slug      string
	Question  string
	TokenIDs  [2]string
	Outcomes  [2]string
	Prices    [2]float64
	NegRisk   bool
	Volume    float64
	Status    MarketStatus
	EndDate   *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Event groups related markets under one title.
type Event struct {
	ID        string
	Slug      string
	Title     string
	Active    bool
	Liquidity float64
	Volume    float64
	EndDate   *time.Time
	Markets   []Market
}
