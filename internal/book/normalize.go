// Package book converts raw exchange book payloads into canonically ordered
// snapshots and provides the fetch-and-normalize read path.
package book

import (
	"sort"
	"strconv"
	"time"

	"github.com/alanyoungcy/polygate/internal/domain"
)

// Normalize parses raw [priceStr, sizeStr] pairs into price levels, sorts
// bids descending and asks ascending by price, and returns the snapshot.
// Non-numeric or short entries are dropped, not fatal. Equal-price levels are
// kept separate in input order (stable sort), never merged. A missing side
// yields an empty slice.
func Normalize(tokenID string, rawBids, rawAsks [][]string) domain.OrderbookSnapshot {
	bids := parseLevels(rawBids)
	asks := parseLevels(rawAsks)

	sort.SliceStable(bids, func(i, j int) bool { return bids[i].Price > bids[j].Price })
	sort.SliceStable(asks, func(i, j int) bool { return asks[i].Price < asks[j].Price })

	return domain.OrderbookSnapshot{
		TokenID:   tokenID,
		Bids:      bids,
		Asks:      asks,
		FetchedAt: time.Now().UTC(),
	}
}

func parseLevels(raw [][]string) []domain.PriceLevel {
	levels := make([]domain.PriceLevel, 0, len(raw))
	for _, entry := range raw {
		if len(entry) < 2 {
			continue
		}
		price, err := strconv.ParseFloat(entry[0], 64)
		if err != nil {
			continue
		}
		size, err := strconv.ParseFloat(entry[1], 64)
		if err != nil {
			continue
		}
		levels = append(levels, domain.PriceLevel{Price: price, Size: size})
	}
	return levels
}
