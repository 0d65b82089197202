// Package gateway is the authenticated order surface: place, cancel, and
// list orders against the exchange. Every operation funnels through the
// session manager, so the first one triggers credential derivation.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/alanyoungcy/polygate/internal/domain"
	"github.com/alanyoungcy/polygate/internal/notify"
	"github.com/alanyoungcy/polygate/internal/session"
	"github.com/google/uuid"
)

// defaultOrderLimit caps order placements per wallet per window when a rate
// limiter is attached.
const (
	defaultOrderLimit  = 10
	defaultOrderWindow = time.Second
)

// Gateway exposes the order lifecycle. The rate limiter, signal bus, and
// notifier are optional; without them the gateway just talks to the exchange.
type Gateway struct {
	sessions *session.Manager
	limiter  domain.RateLimiter
	bus      domain.SignalBus
	notifier *notify.Notifier
	logger   *slog.Logger

	orderLimit  int
	orderWindow time.Duration
}

// New creates a Gateway over the given session manager.
func New(sessions *session.Manager, logger *slog.Logger) *Gateway {
	return &Gateway{
		sessions:    sessions,
		logger:      logger.With(slog.String("component", "gateway")),
		orderLimit:  defaultOrderLimit,
		orderWindow: defaultOrderWindow,
	}
}

// WithRateLimiter attaches a rate limiter applied to order placement.
func (g *Gateway) WithRateLimiter(limiter domain.RateLimiter) *Gateway {
	g.limiter = limiter
	return g
}

// WithRateLimit overrides the default placement budget. Non-positive values
// leave the corresponding default in place.
func (g *Gateway) WithRateLimit(limit int, window time.Duration) *Gateway {
	if limit > 0 {
		g.orderLimit = limit
	}
	if window > 0 {
		g.orderWindow = window
	}
	return g
}

// WithSignalBus attaches a bus that receives order lifecycle events on the
// "orders" channel.
func (g *Gateway) WithSignalBus(bus domain.SignalBus) *Gateway {
	g.bus = bus
	return g
}

// WithNotifier attaches an operator notifier for placements and cancels.
func (g *Gateway) WithNotifier(n *notify.Notifier) *Gateway {
	g.notifier = n
	return g
}

// PlaceOrder signs and submits an order. The exchange is the sole validator;
// a business rejection surfaces as the returned result plus an error carrying
// the exchange's message untouched.
func (g *Gateway) PlaceOrder(ctx context.Context, req domain.OrderRequest) (domain.OrderResult, error) {
	requestID := uuid.NewString()

	sess, err := g.sessions.EnsureReady(ctx)
	if err != nil {
		return domain.OrderResult{}, fmt.Errorf("gateway: place order: %w", err)
	}

	if g.limiter != nil {
		allowed, limErr := g.limiter.Allow(ctx, "orders:"+sess.Address(), g.orderLimit, g.orderWindow)
		if limErr != nil {
			return domain.OrderResult{}, fmt.Errorf("gateway: rate limiter: %w", limErr)
		}
		if !allowed {
			return domain.OrderResult{Success: false, Message: "rate limited"}, domain.ErrRateLimited
		}
	}

	salt := fmt.Sprintf("%d", time.Now().UnixNano())
	result, err := sess.Clob.PostOrder(ctx, req, salt)
	if err != nil {
		g.logger.WarnContext(ctx, "order rejected",
			slog.String("request_id", requestID),
			slog.String("token_id", req.TokenID),
			slog.String("side", string(req.Side)),
			slog.String("error", err.Error()),
		)
		return result, fmt.Errorf("gateway: place order: %w", err)
	}

	g.publish(ctx, map[string]string{
		"event":    "order_placed",
		"order_id": result.OrderID,
		"token_id": req.TokenID,
		"side":     string(req.Side),
		"status":   result.Status,
	})
	g.notify(ctx, "order_placed", "Order placed",
		fmt.Sprintf("%s %g @ %g on %s (order %s)", req.Side, req.Size, req.Price, req.TokenID, result.OrderID))

	g.logger.InfoContext(ctx, "order placed",
		slog.String("request_id", requestID),
		slog.String("order_id", result.OrderID),
		slog.String("token_id", req.TokenID),
		slog.String("side", string(req.Side)),
		slog.Float64("price", req.Price),
		slog.Float64("size", req.Size),
	)

	return result, nil
}

// CancelOrder cancels one order by ID.
func (g *Gateway) CancelOrder(ctx context.Context, orderID string) (domain.CancelResult, error) {
	sess, err := g.sessions.EnsureReady(ctx)
	if err != nil {
		return domain.CancelResult{}, fmt.Errorf("gateway: cancel order: %w", err)
	}

	result, err := sess.Clob.CancelOrder(ctx, orderID)
	if err != nil {
		return result, fmt.Errorf("gateway: cancel order: %w", err)
	}

	g.publish(ctx, map[string]string{
		"event":    "order_cancelled",
		"order_id": orderID,
	})
	g.notify(ctx, "order_cancelled", "Order cancelled", orderID)

	g.logger.InfoContext(ctx, "order cancelled", slog.String("order_id", orderID))
	return result, nil
}

// ListOpenOrders returns the wallet's open orders from the exchange.
func (g *Gateway) ListOpenOrders(ctx context.Context) ([]domain.Order, error) {
	sess, err := g.sessions.EnsureReady(ctx)
	if err != nil {
		return nil, fmt.Errorf("gateway: list open orders: %w", err)
	}

	orders, err := sess.Clob.GetOpenOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("gateway: list open orders: %w", err)
	}
	return orders, nil
}

// CancelAll cancels every open order, continuing past individual failures
// and returning the first error seen.
func (g *Gateway) CancelAll(ctx context.Context) error {
	orders, err := g.ListOpenOrders(ctx)
	if err != nil {
		return fmt.Errorf("gateway: cancel all: %w", err)
	}

	var firstErr error
	for _, o := range orders {
		if _, cancelErr := g.CancelOrder(ctx, o.ID); cancelErr != nil {
			g.logger.ErrorContext(ctx, "cancel failed during cancel-all",
				slog.String("order_id", o.ID),
				slog.String("error", cancelErr.Error()),
			)
			if firstErr == nil {
				firstErr = cancelErr
			}
		}
	}

	if firstErr != nil {
		return fmt.Errorf("gateway: cancel all: %w", firstErr)
	}

	g.logger.InfoContext(ctx, "cancelled all open orders", slog.Int("count", len(orders)))
	return nil
}

func (g *Gateway) publish(ctx context.Context, event map[string]string) {
	if g.bus == nil {
		return
	}
	payload, _ := json.Marshal(event)
	if err := g.bus.Publish(ctx, "orders", payload); err != nil {
		g.logger.WarnContext(ctx, "publish event failed",
			slog.String("event", event["event"]),
			slog.String("error", err.Error()),
		)
	}
}

func (g *Gateway) notify(ctx context.Context, event, title, message string) {
	if g.notifier == nil {
		return
	}
	if err := g.notifier.Notify(ctx, event, title, message); err != nil {
		g.logger.WarnContext(ctx, "notify failed",
			slog.String("event", event),
			slog.String("error", err.Error()),
		)
	}
}
