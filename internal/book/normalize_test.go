package book

import (
	"testing"

	"github.com/alanyoungcy/polygate/internal/domain"
)

func TestNormalize_Ordering(t *testing.T) {
	rawBids := [][]string{{"0.48", "100"}, {"0.52", "50"}, {"0.50", "75"}}
	rawAsks := [][]string{{"0.56", "20"}, {"0.54", "10"}, {"0.55", "30"}}

	snap := Normalize("tok", rawBids, rawAsks)

	for i := 1; i < len(snap.Bids); i++ {
		if snap.Bids[i].Price > snap.Bids[i-1].Price {
			t.Errorf("bids not non-increasing at %d: %v", i, snap.Bids)
		}
	}
	for i := 1; i < len(snap.Asks); i++ {
		if snap.Asks[i].Price < snap.Asks[i-1].Price {
			t.Errorf("asks not non-decreasing at %d: %v", i, snap.Asks)
		}
	}
	if snap.Bids[0].Price != 0.52 {
		t.Errorf("best bid = %v, want 0.52", snap.Bids[0].Price)
	}
	if snap.Asks[0].Price != 0.54 {
		t.Errorf("best ask = %v, want 0.54", snap.Asks[0].Price)
	}
}

func TestNormalize_DropsMalformed(t *testing.T) {
	rawBids := [][]string{
		{"0.50", "100"},
		{"abc", "100"},
		{"0.49"},
		{"0.48", "xyz"},
		{},
	}

	snap := Normalize("tok", rawBids, nil)

	if len(snap.Bids) != 1 {
		t.Fatalf("got %d bids, want 1: %v", len(snap.Bids), snap.Bids)
	}
	if snap.Bids[0] != (domain.PriceLevel{Price: 0.50, Size: 100}) {
		t.Errorf("surviving bid = %v", snap.Bids[0])
	}
}

func TestNormalize_MissingSides(t *testing.T) {
	snap := Normalize("tok", nil, nil)
	if len(snap.Bids) != 0 || len(snap.Asks) != 0 {
		t.Errorf("empty input produced levels: %v / %v", snap.Bids, snap.Asks)
	}
}

func TestNormalize_EqualPricesKeepInputOrder(t *testing.T) {
	rawAsks := [][]string{{"0.55", "1"}, {"0.54", "2"}, {"0.55", "3"}}

	snap := Normalize("tok", nil, rawAsks)

	want := []domain.PriceLevel{
		{Price: 0.54, Size: 2},
		{Price: 0.55, Size: 1},
		{Price: 0.55, Size: 3},
	}
	if len(snap.Asks) != len(want) {
		t.Fatalf("got %d asks, want %d", len(snap.Asks), len(want))
	}
	for i := range want {
		if snap.Asks[i] != want[i] {
			t.Errorf("asks[%d] = %v, want %v (ties must keep input order)", i, snap.Asks[i], want[i])
		}
	}
}
