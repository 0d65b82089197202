package pricing

import (
	"errors"
	"math"
	"testing"

	"github.com/alanyoungcy/polygate/internal/domain"
)

func book(bids, asks []domain.PriceLevel) domain.OrderbookSnapshot {
	return domain.OrderbookSnapshot{TokenID: "tok", Bids: bids, Asks: asks}
}

func TestBestBidAsk(t *testing.T) {
	b := book(
		[]domain.PriceLevel{{Price: 0.52, Size: 10}, {Price: 0.50, Size: 5}},
		[]domain.PriceLevel{{Price: 0.54, Size: 7}},
	)

	bid, ask := BestBidAsk(b)
	if bid == nil || bid.Price != 0.52 {
		t.Errorf("best bid = %v, want 0.52", bid)
	}
	if ask == nil || ask.Price != 0.54 {
		t.Errorf("best ask = %v, want 0.54", ask)
	}
}

func TestBestBidAsk_EmptySide(t *testing.T) {
	bid, ask := BestBidAsk(book(nil, []domain.PriceLevel{{Price: 0.54, Size: 1}}))
	if bid != nil {
		t.Errorf("best bid = %v, want nil for empty side", bid)
	}
	if ask == nil {
		t.Error("best ask missing")
	}
}

func TestMidPrice(t *testing.T) {
	tests := []struct {
		name   string
		book   domain.OrderbookSnapshot
		want   float64
		wantOK bool
	}{
		{
			"both sides",
			book([]domain.PriceLevel{{Price: 0.52, Size: 1}}, []domain.PriceLevel{{Price: 0.54, Size: 1}}),
			0.53, true,
		},
		{
			"no bids",
			book(nil, []domain.PriceLevel{{Price: 0.54, Size: 1}}),
			0, false,
		},
		{
			"no asks",
			book([]domain.PriceLevel{{Price: 0.52, Size: 1}}, nil),
			0, false,
		},
		{
			// A crossed book is accepted and yields its literal mid.
			"crossed book",
			book([]domain.PriceLevel{{Price: 0.60, Size: 1}}, []domain.PriceLevel{{Price: 0.50, Size: 1}}),
			0.55, true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MidPrice(tt.book)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("mid = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExecutableAverage(t *testing.T) {
	asks := []domain.PriceLevel{{Price: 0.54, Size: 150}, {Price: 0.55, Size: 300}}

	tests := []struct {
		name    string
		qty     float64
		want    float64
		wantErr error
	}{
		{"fits in top level", 100, 0.54, nil},
		{"spans levels", 450, (150*0.54 + 300*0.55) / 450, nil},
		{"exact total depth", 450, 0.546666666666, nil},
		{"exceeds depth", 500, 0, domain.ErrInsufficientLiquidity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExecutableAverage(asks, tt.qty)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if err == nil && math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("avg = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExecutableAverage_EmptyLevels(t *testing.T) {
	if _, err := ExecutableAverage(nil, 10); !errors.Is(err, domain.ErrInsufficientLiquidity) {
		t.Errorf("err = %v, want ErrInsufficientLiquidity", err)
	}
}
