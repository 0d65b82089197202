package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alanyoungcy/polygate/internal/crypto"
	"github.com/alanyoungcy/polygate/internal/domain"
	"github.com/alanyoungcy/polygate/internal/session"
)

const testKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

// fakeExchange serves the auth and order endpoints, recording activity.
type fakeExchange struct {
	deriveCalls atomic.Int64
	orderCalls  atomic.Int64
	rejectWith  string
	openOrders  []map[string]string
}

func (f *fakeExchange) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/derive-api-key", func(w http.ResponseWriter, r *http.Request) {
		f.deriveCalls.Add(1)
		json.NewEncoder(w).Encode(map[string]string{
			"apiKey": "k", "secret": "dG9wc2VjcmV0", "passphrase": "p",
		})
	})
	mux.HandleFunc("/order", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			f.orderCalls.Add(1)
			if f.rejectWith != "" {
				json.NewEncoder(w).Encode(map[string]any{"success": false, "errorMsg": f.rejectWith})
				return
			}
			json.NewEncoder(w).Encode(map[string]any{"success": true, "orderID": "ord-1", "status": "live"})
		case http.MethodDelete:
			json.NewEncoder(w).Encode(map[string]any{"success": true})
		default:
			t.Errorf("unexpected method %s /order", r.Method)
		}
	})
	mux.HandleFunc("/orders", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(f.openOrders)
	})
	return mux
}

func newTestGateway(t *testing.T, f *fakeExchange) (*Gateway, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mgr := session.NewManager(session.Config{
		ClobBaseURL: srv.URL,
		ChainID:     137,
		Keys:        crypto.KeySource{RawPrivateKey: testKey},
	}, logger)

	return New(mgr, logger), srv
}

type fakeLimiter struct {
	allowed bool
	key     string
	limit   int
	window  time.Duration
}

func (l *fakeLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	l.key = key
	l.limit = limit
	l.window = window
	return l.allowed, nil
}

func TestPlaceOrder_DerivesSessionLazily(t *testing.T) {
	ex := &fakeExchange{}
	gw, _ := newTestGateway(t, ex)

	if got := ex.deriveCalls.Load(); got != 0 {
		t.Fatalf("derive calls before first order = %d", got)
	}

	req := domain.OrderRequest{TokenID: "7", Price: 0.55, Size: 100, Side: domain.OrderSideBuy}
	res, err := gw.PlaceOrder(context.Background(), req)
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	if res.OrderID != "ord-1" {
		t.Errorf("result = %+v", res)
	}
	if got := ex.deriveCalls.Load(); got != 1 {
		t.Errorf("derive calls = %d, want 1", got)
	}

	// Second placement reuses the session.
	if _, err := gw.PlaceOrder(context.Background(), req); err != nil {
		t.Fatalf("second PlaceOrder: %v", err)
	}
	if got := ex.deriveCalls.Load(); got != 1 {
		t.Errorf("derive calls after second order = %d, want 1", got)
	}
}

func TestPlaceOrder_RejectionVerbatim(t *testing.T) {
	ex := &fakeExchange{rejectWith: "market closed"}
	gw, _ := newTestGateway(t, ex)

	req := domain.OrderRequest{TokenID: "7", Price: 0.55, Size: 100, Side: domain.OrderSideBuy}
	res, err := gw.PlaceOrder(context.Background(), req)
	if err == nil {
		t.Fatal("expected rejection error")
	}
	if res.Message != "market closed" {
		t.Errorf("message = %q, want exchange text verbatim", res.Message)
	}
}

func TestPlaceOrder_RateLimited(t *testing.T) {
	ex := &fakeExchange{}
	gw, _ := newTestGateway(t, ex)
	lim := &fakeLimiter{allowed: false}
	gw.WithRateLimiter(lim)

	req := domain.OrderRequest{TokenID: "7", Price: 0.55, Size: 100, Side: domain.OrderSideBuy}
	_, err := gw.PlaceOrder(context.Background(), req)
	if !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("err = %v, want ErrRateLimited", err)
	}
	if ex.orderCalls.Load() != 0 {
		t.Error("order submitted despite rate limit")
	}
	if lim.key != "orders:0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266" {
		t.Errorf("limiter key = %q", lim.key)
	}
}

func TestPlaceOrder_ConfiguredRateLimitReachesLimiter(t *testing.T) {
	ex := &fakeExchange{}
	gw, _ := newTestGateway(t, ex)
	lim := &fakeLimiter{allowed: true}
	gw.WithRateLimiter(lim).WithRateLimit(3, 5*time.Second)

	req := domain.OrderRequest{TokenID: "7", Price: 0.55, Size: 100, Side: domain.OrderSideBuy}
	if _, err := gw.PlaceOrder(context.Background(), req); err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	if lim.limit != 3 || lim.window != 5*time.Second {
		t.Errorf("limiter saw limit=%d window=%v, want 3/5s", lim.limit, lim.window)
	}

	// Non-positive overrides keep the defaults.
	gw.WithRateLimit(0, 0)
	if _, err := gw.PlaceOrder(context.Background(), req); err != nil {
		t.Fatalf("second PlaceOrder: %v", err)
	}
	if lim.limit != 3 || lim.window != 5*time.Second {
		t.Errorf("limiter saw limit=%d window=%v after zero override", lim.limit, lim.window)
	}
}

func TestCancelOrder(t *testing.T) {
	ex := &fakeExchange{}
	gw, _ := newTestGateway(t, ex)

	res, err := gw.CancelOrder(context.Background(), "ord-1")
	if err != nil {
		t.Fatalf("CancelOrder: %v", err)
	}
	if !res.Success {
		t.Errorf("result = %+v", res)
	}
}

func TestListOpenOrders(t *testing.T) {
	ex := &fakeExchange{openOrders: []map[string]string{
		{"id": "a", "side": "BUY", "price": "0.40", "original_size": "10", "size_matched": "0", "status": "live"},
	}}
	gw, _ := newTestGateway(t, ex)

	orders, err := gw.ListOpenOrders(context.Background())
	if err != nil {
		t.Fatalf("ListOpenOrders: %v", err)
	}
	if len(orders) != 1 || orders[0].ID != "a" {
		t.Errorf("orders = %+v", orders)
	}
}

func TestPlaceOrder_MissingKey(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mgr := session.NewManager(session.Config{ClobBaseURL: "http://unused", ChainID: 137}, logger)
	gw := New(mgr, logger)

	req := domain.OrderRequest{TokenID: "7", Price: 0.55, Size: 100, Side: domain.OrderSideBuy}
	_, err := gw.PlaceOrder(context.Background(), req)
	if !errors.Is(err, domain.ErrMissingCredential) {
		t.Errorf("err = %v, want ErrMissingCredential", err)
	}
}
