// Package polymarket contains the REST and WebSocket clients for the
// exchange: the CLOB API (books, auth, orders) and the Gamma API (metadata).
package polymarket

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/alanyoungcy/polygate/internal/crypto"
	"github.com/alanyoungcy/polygate/internal/domain"
)

// amountScale converts display prices/sizes to the integer amounts carried in
// signed order payloads (6 decimals, USDC precision).
const amountScale = 1e6

// zeroAddress is the taker for open orders.
const zeroAddress = "0x0000000000000000000000000000000000000000"

// ClobClient is the REST client for the exchange's central limit order book
// API. Book fetches need no authentication; order endpoints require the
// signer plus derived API credentials.
type ClobClient struct {
	baseURL    string
	httpClient *http.Client
	signer     *crypto.Signer
	creds      *crypto.APICreds
}

// NewClobClient creates a CLOB client. signer may be nil for read-only use;
// creds may be nil until DeriveAPICreds has been called, in which case only
// unauthenticated endpoints work.
func NewClobClient(baseURL string, signer *crypto.Signer, creds *crypto.APICreds) *ClobClient {
	return &ClobClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		signer:     signer,
		creds:      creds,
	}
}

// FetchBook retrieves the raw book for a token. Levels come back in the wire
// format ([priceStr, sizeStr] pairs) with no ordering guarantee; callers
// normalize. A missing side is returned as nil, not an error.
func (c *ClobClient) FetchBook(ctx context.Context, tokenID string) ([][]string, [][]string, error) {
	path := "/book?token_id=" + url.QueryEscape(tokenID)

	body, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("polymarket/clob: fetch book %s: %w", tokenID, err)
	}

	var raw apiBook
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, nil, fmt.Errorf("polymarket/clob: decode book: %w", err)
	}
	return raw.Bids, raw.Asks, nil
}

// DeriveAPICreds performs the one authenticated round trip that exchanges an
// EIP-712 ClobAuth signature for exchange-scoped API credentials. L1 headers
// carry POLY_ADDRESS, POLY_SIGNATURE, POLY_TIMESTAMP, POLY_NONCE.
func (c *ClobClient) DeriveAPICreds(ctx context.Context) (*crypto.APICreds, error) {
	if c.signer == nil {
		return nil, fmt.Errorf("polymarket/clob: derive creds: no signer")
	}

	timestamp := time.Now().Unix()
	const nonce = int64(0)

	sig, err := c.signer.SignAuthMessage(timestamp, nonce)
	if err != nil {
		return nil, fmt.Errorf("polymarket/clob: sign auth message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/derive-api-key", nil)
	if err != nil {
		return nil, fmt.Errorf("polymarket/clob: create auth request: %w", err)
	}
	req.Header.Set("POLY_ADDRESS", c.signer.Address().Hex())
	req.Header.Set("POLY_SIGNATURE", sig)
	req.Header.Set("POLY_TIMESTAMP", fmt.Sprintf("%d", timestamp))
	req.Header.Set("POLY_NONCE", fmt.Sprintf("%d", nonce))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("polymarket/clob: auth request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("polymarket/clob: read auth response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("polymarket/clob: auth failed (HTTP %d): %s", resp.StatusCode, string(body))
	}

	var decoded struct {
		APIKey     string `json:"apiKey"`
		Secret     string `json:"secret"`
		Passphrase string `json:"passphrase"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("polymarket/clob: decode auth response: %w", err)
	}

	return &crypto.APICreds{
		Key:        decoded.APIKey,
		Secret:     decoded.Secret,
		Passphrase: decoded.Passphrase,
	}, nil
}

// PostOrder signs and submits an order. The exchange is the source of truth
// for validation; a business rejection comes back as the result plus an
// error carrying the exchange's message verbatim.
func (c *ClobClient) PostOrder(ctx context.Context, req domain.OrderRequest, salt string) (domain.OrderResult, error) {
	if c.signer == nil {
		return domain.OrderResult{}, fmt.Errorf("polymarket/clob: post order: no signer")
	}

	maker := c.signer.Address().Hex()
	makerAmount, takerAmount := orderAmounts(req)

	payload := crypto.OrderPayload{
		Salt:        salt,
		Maker:       maker,
		Signer:      maker,
		Taker:       zeroAddress,
		TokenID:     req.TokenID,
		MakerAmount: makerAmount,
		TakerAmount: takerAmount,
		Expiration:  "0",
		Nonce:       "0",
		FeeRateBps:  "0",
	}
	if req.Side == domain.OrderSideSell {
		payload.Side = 1
	}

	signature, err := c.signer.SignOrder(payload)
	if err != nil {
		return domain.OrderResult{}, fmt.Errorf("polymarket/clob: sign order: %w", err)
	}

	body := map[string]any{
		"order": map[string]any{
			"salt":          payload.Salt,
			"tokenID":       payload.TokenID,
			"makerAmount":   payload.MakerAmount,
			"takerAmount":   payload.TakerAmount,
			"side":          string(req.Side),
			"feeRateBps":    payload.FeeRateBps,
			"nonce":         payload.Nonce,
			"expiration":    payload.Expiration,
			"signatureType": payload.SignatureType,
			"signature":     signature,
			"maker":         payload.Maker,
			"signer":        payload.Signer,
			"taker":         payload.Taker,
		},
		"owner":     maker,
		"orderType": "GTC",
		"negRisk":   req.NegRisk,
	}

	respBody, err := c.doRequest(ctx, http.MethodPost, "/order", body)
	if err != nil {
		return domain.OrderResult{}, fmt.Errorf("polymarket/clob: post order: %w", err)
	}

	var ack apiOrderAck
	if err := json.Unmarshal(respBody, &ack); err != nil {
		return domain.OrderResult{}, fmt.Errorf("polymarket/clob: decode order result: %w", err)
	}

	result := ack.toDomain()
	if !result.Success {
		return result, fmt.Errorf("polymarket/clob: order rejected: %s", result.Message)
	}
	return result, nil
}

// CancelOrder cancels a single order by ID.
func (c *ClobClient) CancelOrder(ctx context.Context, orderID string) (domain.CancelResult, error) {
	body := map[string]any{"orderID": orderID}

	respBody, err := c.doRequest(ctx, http.MethodDelete, "/order", body)
	if err != nil {
		return domain.CancelResult{}, fmt.Errorf("polymarket/clob: cancel order %s: %w", orderID, err)
	}

	var decoded struct {
		Success  bool   `json:"success"`
		ErrorMsg string `json:"errorMsg"`
	}
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return domain.CancelResult{}, fmt.Errorf("polymarket/clob: decode cancel response: %w", err)
	}

	result := domain.CancelResult{Success: decoded.Success, Message: decoded.ErrorMsg}
	if !decoded.Success {
		return result, fmt.Errorf("polymarket/clob: cancel rejected: %s", decoded.ErrorMsg)
	}
	return result, nil
}

// GetOpenOrders returns all open orders for the authenticated wallet.
func (c *ClobClient) GetOpenOrders(ctx context.Context) ([]domain.Order, error) {
	respBody, err := c.doRequest(ctx, http.MethodGet, "/orders", nil)
	if err != nil {
		return nil, fmt.Errorf("polymarket/clob: get open orders: %w", err)
	}

	var apiOrders []apiOrder
	if err := json.Unmarshal(respBody, &apiOrders); err != nil {
		return nil, fmt.Errorf("polymarket/clob: decode orders: %w", err)
	}

	orders := make([]domain.Order, 0, len(apiOrders))
	for i := range apiOrders {
		orders = append(orders, apiOrders[i].toDomain())
	}
	return orders, nil
}

// orderAmounts converts a display price and size into the integer maker and
// taker amounts of the signed payload. Buying spends collateral for tokens;
// selling spends tokens for collateral.
func orderAmounts(req domain.OrderRequest) (maker, taker string) {
	tokens := int64(math.Round(req.Size * amountScale))
	collateral := int64(math.Round(req.Price * req.Size * amountScale))

	if req.Side == domain.OrderSideSell {
		return fmt.Sprintf("%d", tokens), fmt.Sprintf("%d", collateral)
	}
	return fmt.Sprintf("%d", collateral), fmt.Sprintf("%d", tokens)
}

// doRequest builds, signs (HMAC, when credentials are present), sends, and
// reads a CLOB request, returning the raw response body.
func (c *ClobClient) doRequest(ctx context.Context, method, path string, body any) ([]byte, error) {
	var bodyReader io.Reader
	var bodyStr string
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		bodyStr = string(jsonBody)
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.creds != nil && c.signer != nil {
		for k, v := range c.creds.AuthHeaders(c.signer.Address().Hex(), method, path, bodyStr) {
			req.Header.Set(k, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if err := checkHTTPStatus(resp.StatusCode, respBody); err != nil {
		return nil, err
	}
	return respBody, nil
}

// checkHTTPStatus maps non-2xx responses to sentinel errors where one fits.
func checkHTTPStatus(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	bodyStr := string(body)
	switch statusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, bodyStr)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", domain.ErrUnauthorized, bodyStr)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", domain.ErrRateLimited, bodyStr)
	default:
		return fmt.Errorf("HTTP %d: %s", statusCode, bodyStr)
	}
}
