package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/alanyoungcy/polygate/internal/domain"
)

// commandChannel is the bus channel the listener consumes order commands from.
const commandChannel = "commands"

// Command is the wire format for bus-driven order operations. ID makes
// redelivery idempotent within the dedup window.
type Command struct {
	ID      string  `json:"id"`
	Action  string  `json:"action"` // place, cancel, cancel_all
	TokenID string  `json:"token_id,omitempty"`
	Side    string  `json:"side,omitempty"`
	Price   float64 `json:"price,omitempty"`
	Size    float64 `json:"size,omitempty"`
	NegRisk bool    `json:"neg_risk,omitempty"`
	OrderID string  `json:"order_id,omitempty"`
}

// Listener consumes order commands from the signal bus and routes them
// through the gateway. It is the programmatic trading surface for external
// processes that share the redis instance.
type Listener struct {
	gw     *Gateway
	bus    domain.SignalBus
	dedup  *dedup
	logger *slog.Logger
}

// NewListener creates a Listener over the given gateway and bus.
func NewListener(gw *Gateway, bus domain.SignalBus, logger *slog.Logger) *Listener {
	return &Listener{
		gw:     gw,
		bus:    bus,
		dedup:  newDedup(2 * time.Minute),
		logger: logger.With(slog.String("component", "command_listener")),
	}
}

// Run subscribes to the command channel and dispatches until ctx is cancelled
// or the subscription closes. Command failures are logged, never fatal.
func (l *Listener) Run(ctx context.Context) error {
	msgs, err := l.bus.Subscribe(ctx, commandChannel)
	if err != nil {
		return fmt.Errorf("gateway: subscribe commands: %w", err)
	}
	l.logger.InfoContext(ctx, "listening for order commands")

	cleanupTicker := time.NewTicker(30 * time.Second)
	defer cleanupTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-cleanupTicker.C:
			l.dedup.cleanup()
		case payload, ok := <-msgs:
			if !ok {
				return nil
			}
			l.handle(ctx, payload)
		}
	}
}

func (l *Listener) handle(ctx context.Context, payload []byte) {
	var cmd Command
	if err := json.Unmarshal(payload, &cmd); err != nil {
		l.logger.WarnContext(ctx, "malformed command", slog.String("error", err.Error()))
		return
	}

	if cmd.ID != "" && l.dedup.isDuplicate(cmd.ID) {
		l.logger.DebugContext(ctx, "duplicate command dropped", slog.String("command_id", cmd.ID))
		return
	}

	var err error
	switch cmd.Action {
	case "place":
		_, err = l.gw.PlaceOrder(ctx, domain.OrderRequest{
			TokenID: cmd.TokenID,
			Price:   cmd.Price,
			Size:    cmd.Size,
			Side:    domain.OrderSide(cmd.Side),
			NegRisk: cmd.NegRisk,
		})
	case "cancel":
		_, err = l.gw.CancelOrder(ctx, cmd.OrderID)
	case "cancel_all":
		err = l.gw.CancelAll(ctx)
	default:
		l.logger.WarnContext(ctx, "unknown command action", slog.String("action", cmd.Action))
		return
	}

	if err != nil {
		l.logger.WarnContext(ctx, "command failed",
			slog.String("command_id", cmd.ID),
			slog.String("action", cmd.Action),
			slog.String("error", err.Error()),
		)
	}
}
