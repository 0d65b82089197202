package domain

import "time"

// OrderSide indicates whether an order buys or sells the outcome token.
// The values match the CLOB wire format.
type OrderSide string

const (
	OrderSideBuy  OrderSide = "BUY"
	OrderSideSell OrderSide = "SELL"
)

// OrderRequest carries the caller's trade intent. It is constructed per call
// and never persisted.
type OrderRequest struct {
	TokenID string
	Price   float64 // (0,1) — the exchange is the source of truth for rejection
	Size    float64 // > 0
	Side    OrderSide
	NegRisk bool
}

// Order is an order record as reported by the exchange.
type Order struct {
	ID           string
	MarketID     string
	TokenID      string
	Owner        string
	Side         OrderSide
	Price        float64
	OriginalSize float64
	SizeMatched  float64
	Status       string
	CreatedAt    time.Time
}

// OrderResult is the exchange's acknowledgment of a placed order.
type OrderResult struct {
	Success bool
	OrderID string
	Status  string
	Message string
}

// CancelResult is the exchange's acknowledgment of a cancellation.
type CancelResult struct {
	Success bool
	Message string
}
