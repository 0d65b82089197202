package polymarket

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/alanyoungcy/polygate/internal/domain"
)

// apiBook is the raw book payload: levels are [priceStr, sizeStr] pairs.
type apiBook struct {
	Market  string     `json:"market"`
	AssetID string     `json:"asset_id"`
	Bids    [][]string `json:"bids"`
	Asks    [][]string `json:"asks"`
}

// apiOrder is an order record as returned by the CLOB API.
type apiOrder struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	Market       string `json:"market"`
	AssetID      string `json:"asset_id"`
	Side         string `json:"side"`
	OriginalSize string `json:"original_size"`
	SizeMatched  string `json:"size_matched"`
	Price        string `json:"price"`
	Owner        string `json:"owner"`
	CreatedAt    string `json:"created_at"`
}

func (a *apiOrder) toDomain() domain.Order {
	o := domain.Order{
		ID:       a.ID,
		MarketID: a.Market,
		TokenID:  a.AssetID,
		Owner:    a.Owner,
		Status:   a.Status,
	}
	switch a.Side {
	case "BUY":
		o.Side = domain.OrderSideBuy
	case "SELL":
		o.Side = domain.OrderSideSell
	}
	if p, err := strconv.ParseFloat(a.Price, 64); err == nil {
		o.Price = p
	}
	if sz, err := strconv.ParseFloat(a.OriginalSize, 64); err == nil {
		o.OriginalSize = sz
	}
	if m, err := strconv.ParseFloat(a.SizeMatched, 64); err == nil {
		o.SizeMatched = m
	}
	if t, err := time.Parse(time.RFC3339, a.CreatedAt); err == nil {
		o.CreatedAt = t
	}
	return o
}

// apiOrderAck is the response from placing an order.
type apiOrderAck struct {
	Success  bool   `json:"success"`
	ErrorMsg string `json:"errorMsg,omitempty"`
	OrderID  string `json:"orderID,omitempty"`
	Status   string `json:"status,omitempty"`
}

func (a *apiOrderAck) toDomain() domain.OrderResult {
	return domain.OrderResult{
		Success: a.Success,
		OrderID: a.OrderID,
		Status:  a.Status,
		Message: a.ErrorMsg,
	}
}

// flexBool accepts JSON bool or "true"/"false" strings; the Gamma API sends
// both depending on the endpoint.
type flexBool bool

func (f *flexBool) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = flexBool(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*f = flexBool(strings.EqualFold(s, "true") || s == "1")
	return nil
}

// apiMarket is a market as returned by the Gamma API. ClobTokenIDs and
// OutcomePrices arrive as JSON-encoded strings inside the JSON.
type apiMarket struct {
	ID            string   `json:"id"`
	Slug          string   `json:"slug"`
	Question      string   `json:"question"`
	Active        flexBool `json:"active"`
	Closed        bool     `json:"closed"`
	Outcomes      string   `json:"outcomes"`
	OutcomePrices string   `json:"outcomePrices"`
	ClobTokenIDs  string   `json:"clobTokenIds"`
	NegRisk       bool     `json:"negRisk"`
	Volume        string   `json:"volume"`
	EndDate       string   `json:"endDate"`
	CreatedAt     string   `json:"createdAt"`
	UpdatedAt     string   `json:"updatedAt"`
}

func (m *apiMarket) toDomain() domain.Market {
	dm := domain.Market{
		ID:       m.ID,
		Slug:     m.Slug,
		Question: m.Question,
		NegRisk:  m.NegRisk,
		Outcomes: [2]string{"Yes", "No"},
	}

	// Nested JSON-string fields: e.g. "[\"123\", \"456\"]".
	var tokenIDs []string
	if err := json.Unmarshal([]byte(m.ClobTokenIDs), &tokenIDs); err == nil {
		for i, id := range tokenIDs {
			if i >= 2 {
				break
			}
			dm.TokenIDs[i] = id
		}
	}
	var prices []string
	if err := json.Unmarshal([]byte(m.OutcomePrices), &prices); err == nil {
		for i, p := range prices {
			if i >= 2 {
				break
			}
			if v, err := strconv.ParseFloat(p, 64); err == nil {
				dm.Prices[i] = v
			}
		}
	}
	var outcomes []string
	if err := json.Unmarshal([]byte(m.Outcomes), &outcomes); err == nil {
		for i, o := range outcomes {
			if i >= 2 {
				break
			}
			dm.Outcomes[i] = o
		}
	}

	if v, err := strconv.ParseFloat(m.Volume, 64); err == nil {
		dm.Volume = v
	}

	switch {
	case m.Closed:
		dm.Status = domain.MarketStatusClosed
	case bool(m.Active):
		dm.Status = domain.MarketStatusActive
	default:
		dm.Status = domain.MarketStatusSettled
	}

	if t, err := time.Parse(time.RFC3339, m.EndDate); err == nil {
		dm.EndDate = &t
	}
	if t, err := time.Parse(time.RFC3339, m.CreatedAt); err == nil {
		dm.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339, m.UpdatedAt); err == nil {
		dm.UpdatedAt = t
	}
	return dm
}

// apiEvent is an event (a group of related markets) from the Gamma API.
type apiEvent struct {
	ID        string      `json:"id"`
	Slug      string      `json:"slug"`
	Title     string      `json:"title"`
	Active    flexBool    `json:"active"`
	Liquidity float64     `json:"liquidity"`
	Volume    float64     `json:"volume"`
	EndDate   string      `json:"endDate"`
	Markets   []apiMarket `json:"markets"`
}

func (e *apiEvent) toDomain() domain.Event {
	ev := domain.Event{
		ID:        e.ID,
		Slug:      e.Slug,
		Title:     e.Title,
		Active:    bool(e.Active),
		Liquidity: e.Liquidity,
		Volume:    e.Volume,
	}
	if t, err := time.Parse(time.RFC3339, e.EndDate); err == nil {
		ev.EndDate = &t
	}
	for i := range e.Markets {
		ev.Markets = append(ev.Markets, e.Markets[i].toDomain())
	}
	return ev
}
