// Package pricing derives executable metrics from a normalized orderbook
// snapshot. All functions are pure; they hold no state and touch no network.
package pricing

import "github.com/alanyoungcy/polygate/internal/domain"

// BestBidAsk returns the top level of each side, or nil for an empty side.
// It never synthesizes a price from an empty side.
func BestBidAsk(book domain.OrderbookSnapshot) (bid, ask *domain.PriceLevel) {
	if len(book.Bids) > 0 {
		b := book.Bids[0]
		bid = &b
	}
	if len(book.Asks) > 0 {
		a := book.Asks[0]
		ask = &a
	}
	return bid, ask
}

// MidPrice returns (bestBid + bestAsk) / 2. ok is false unless both sides
// are non-empty. A crossed or locked book is accepted as-is and produces its
// literal arithmetic mid.
func MidPrice(book domain.OrderbookSnapshot) (float64, bool) {
	bid, ask := BestBidAsk(book)
	if bid == nil || ask == nil {
		return 0, false
	}
	return (bid.Price + ask.Price) / 2, true
}

// ExecutableAverage walks levels in the order given (bids descending for a
// sell estimate, asks ascending for a buy estimate), consuming liquidity
// until qty is filled, and returns the size-weighted average execution price.
// When the full quantity cannot be filled it returns
// domain.ErrInsufficientLiquidity rather than a partial average, which would
// silently mislead the caller about achievable cost. qty must be > 0.
func ExecutableAverage(levels []domain.PriceLevel, qty float64) (float64, error) {
	remaining := qty
	var cost float64
	for _, lvl := range levels {
		if remaining <= 0 {
			break
		}
		take := remaining
		if lvl.Size < take {
			take = lvl.Size
		}
		cost += take * lvl.Price
		remaining -= take
	}
	if remaining > 0 {
		return 0, domain.ErrInsufficientLiquidity
	}
	return cost / qty, nil
}
