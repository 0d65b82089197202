package domain

import "time"

// PriceLevel is a single price+size entry in an orderbook. Values are
// immutable once built.
type PriceLevel struct {
	Price float64
	Size  float64
}

// OrderbookSnapshot holds the normalized bid and ask levels for one token.
// Bids are ordered descending by price, asks ascending. A snapshot is built
// fresh per fetch and discarded by its consumer; nothing caches it.
type OrderbookSnapshot struct {
	TokenID   string
	Bids      []PriceLevel
	Asks      []PriceLevel
	FetchedAt time.Time
}

// PriceChange is an incremental level update from the realtime feed.
type PriceChange struct {
	TokenID   string
	Side      string
	Price     float64
	Size      float64
	Timestamp time.Time
}

// BidNotional returns the total resting bid liquidity in notional terms.
func (s OrderbookSnapshot) BidNotional() float64 {
	var total float64
	for _, lvl := range s.Bids {
		total += lvl.Price * lvl.Size
	}
	return total
}

// AskNotional returns the total resting ask liquidity in notional terms.
func (s OrderbookSnapshot) AskNotional() float64 {
	var total float64
	for _, lvl := range s.Asks {
		total += lvl.Price * lvl.Size
	}
	return total
}
