package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/alanyoungcy/polygate/internal/domain"
)

// GammaClient is the REST client for the exchange's metadata API: market and
// event lookup by slug, and event discovery. All endpoints are
// unauthenticated GETs.
type GammaClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewGammaClient creates a metadata client for the given API root,
// e.g. "https://gamma-api.polymarket.com".
func NewGammaClient(baseURL string) *GammaClient {
	return &GammaClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// GetMarketBySlug looks a market up by its URL slug.
func (g *GammaClient) GetMarketBySlug(ctx context.Context, slug string) (domain.Market, error) {
	params := url.Values{}
	params.Set("slug", slug)

	body, err := g.doGet(ctx, "/markets?"+params.Encode())
	if err != nil {
		return domain.Market{}, fmt.Errorf("polymarket/gamma: get market by slug %s: %w", slug, err)
	}

	var markets []apiMarket
	if err := json.Unmarshal(body, &markets); err != nil {
		return domain.Market{}, fmt.Errorf("polymarket/gamma: decode markets: %w", err)
	}
	if len(markets) == 0 {
		return domain.Market{}, fmt.Errorf("polymarket/gamma: %w: slug=%s", domain.ErrNotFound, slug)
	}
	return markets[0].toDomain(), nil
}

// GetEventBySlug looks an event up by its URL slug, including its markets.
func (g *GammaClient) GetEventBySlug(ctx context.Context, slug string) (domain.Event, error) {
	params := url.Values{}
	params.Set("slug", slug)

	body, err := g.doGet(ctx, "/events?"+params.Encode())
	if err != nil {
		return domain.Event{}, fmt.Errorf("polymarket/gamma: get event by slug %s: %w", slug, err)
	}

	var events []apiEvent
	if err := json.Unmarshal(body, &events); err != nil {
		return domain.Event{}, fmt.Errorf("polymarket/gamma: decode events: %w", err)
	}
	if len(events) == 0 {
		return domain.Event{}, fmt.Errorf("polymarket/gamma: %w: slug=%s", domain.ErrNotFound, slug)
	}
	return events[0].toDomain(), nil
}

// ListOpenEvents returns open events, optionally filtered by tag ID
// (0 means no filter).
func (g *GammaClient) ListOpenEvents(ctx context.Context, tagID, limit int) ([]domain.Event, error) {
	params := url.Values{}
	params.Set("closed", "false")
	if tagID > 0 {
		params.Set("tag_id", strconv.Itoa(tagID))
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	body, err := g.doGet(ctx, "/events?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("polymarket/gamma: list open events: %w", err)
	}

	var events []apiEvent
	if err := json.Unmarshal(body, &events); err != nil {
		return nil, fmt.Errorf("polymarket/gamma: decode events: %w", err)
	}

	out := make([]domain.Event, 0, len(events))
	for i := range events {
		out = append(out, events[i].toDomain())
	}
	return out, nil
}

// ListMarkets returns a page of markets for the scrape path.
func (g *GammaClient) ListMarkets(ctx context.Context, limit, offset int) ([]domain.Market, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))

	body, err := g.doGet(ctx, "/markets?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("polymarket/gamma: list markets: %w", err)
	}

	var markets []apiMarket
	if err := json.Unmarshal(body, &markets); err != nil {
		return nil, fmt.Errorf("polymarket/gamma: decode markets: %w", err)
	}

	out := make([]domain.Market, 0, len(markets))
	for i := range markets {
		out = append(out, markets[i].toDomain())
	}
	return out, nil
}

func (g *GammaClient) doGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if err := checkHTTPStatus(resp.StatusCode, body); err != nil {
		return nil, err
	}
	return body, nil
}
