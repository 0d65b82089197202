package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/alanyoungcy/polygate/internal/domain"
	"github.com/gorilla/websocket"
)

const (
	// writeWait is the time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// pongWait is the time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// pingPeriod sends pings at this interval. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// reconnectDelay is the base delay before attempting to reconnect.
	reconnectDelay = 2 * time.Second

	// maxReconnectDelay caps the exponential backoff for reconnection.
	maxReconnectDelay = 60 * time.Second
)

// wsCommand is the subscribe/unsubscribe frame sent to the market channel.
type wsCommand struct {
	Type    string   `json:"type"`
	Channel string   `json:"channel"`
	Assets  []string `json:"assets_ids"`
}

// wsBookMessage is a full book frame. Levels arrive as objects here, unlike
// the REST book which sends pairs.
type wsBookMessage struct {
	EventType string    `json:"event_type"`
	AssetID   string    `json:"asset_id"`
	Bids      []wsLevel `json:"bids"`
	Asks      []wsLevel `json:"asks"`
}

type wsLevel struct {
	Price string `json:"price"`
	Size  string `json:"size"`
}

// wsPriceChange is an incremental level update frame.
type wsPriceChange struct {
	EventType string `json:"event_type"`
	AssetID   string `json:"asset_id"`
	Side      string `json:"side"`
	Price     string `json:"price"`
	Size      string `json:"size"`
	Timestamp string `json:"timestamp"`
}

// RawBookHandler receives the levels of a full book frame in the same pair
// format the REST endpoint uses, so both paths share one normalizer.
type RawBookHandler func(tokenID string, bids, asks [][]string)

// PriceChangeHandler receives incremental level updates.
type PriceChangeHandler func(change domain.PriceChange)

// WSClient is the client for the exchange's realtime market data channel. It
// manages the connection lifecycle, subscriptions, and dispatch to registered
// handlers, reconnecting with backoff on disconnect.
type WSClient struct {
	wsURL string
	conn  *websocket.Conn

	mu     sync.RWMutex
	closed bool

	// Subscriptions to restore on reconnect.
	subscriptions []wsCommand

	handlerMu     sync.RWMutex
	bookHandlers  []RawBookHandler
	priceHandlers []PriceChangeHandler

	done chan struct{}
}

// NewWSClient creates a client for the given market data endpoint,
// e.g. "wss://ws-subscriptions-clob.polymarket.com/ws/market".
func NewWSClient(wsURL string) *WSClient {
	return &WSClient{
		wsURL: wsURL,
		done:  make(chan struct{}),
	}
}

// Connect establishes the WebSocket connection and starts the read and ping
// loops. Previously registered subscriptions are replayed.
func (w *WSClient) Connect(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return fmt.Errorf("polymarket/ws: client closed")
	}

	dialer := websocket.Dialer{HandshakeTimeout: 15 * time.Second}

	conn, _, err := dialer.DialContext(ctx, w.wsURL, nil)
	if err != nil {
		return fmt.Errorf("polymarket/ws: connect: %w", err)
	}

	w.conn = conn
	w.conn.SetReadDeadline(time.Now().Add(pongWait))
	w.conn.SetPongHandler(func(string) error {
		w.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	go w.readLoop()
	go w.pingLoop()

	for _, cmd := range w.subscriptions {
		if err := w.sendCommand(cmd); err != nil {
			return fmt.Errorf("polymarket/ws: restore subscription: %w", err)
		}
	}

	return nil
}

// Subscribe subscribes to the given channels ("book", "price_change") for the
// specified token IDs.
func (w *WSClient) Subscribe(ctx context.Context, channels, tokenIDs []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.conn == nil {
		return fmt.Errorf("polymarket/ws: not connected")
	}

	for _, ch := range channels {
		cmd := wsCommand{Type: "subscribe", Channel: ch, Assets: tokenIDs}
		if err := w.sendCommand(cmd); err != nil {
			return fmt.Errorf("polymarket/ws: subscribe to %s: %w", ch, err)
		}
		w.subscriptions = append(w.subscriptions, cmd)
	}

	return nil
}

// Close shuts down the connection and stops the read and ping loops.
func (w *WSClient) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}

	w.closed = true
	close(w.done)

	if w.conn != nil {
		_ = w.conn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		)
		return w.conn.Close()
	}

	return nil
}

// OnBook registers a handler for full book frames.
func (w *WSClient) OnBook(handler RawBookHandler) {
	w.handlerMu.Lock()
	defer w.handlerMu.Unlock()
	w.bookHandlers = append(w.bookHandlers, handler)
}

// OnPriceChange registers a handler for incremental level updates.
func (w *WSClient) OnPriceChange(handler PriceChangeHandler) {
	w.handlerMu.Lock()
	defer w.handlerMu.Unlock()
	w.priceHandlers = append(w.priceHandlers, handler)
}

// sendCommand sends a JSON command. Caller must hold w.mu.
func (w *WSClient) sendCommand(cmd wsCommand) error {
	w.conn.SetWriteDeadline(time.Now().Add(writeWait))

	data, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("marshal command: %w", err)
	}

	return w.conn.WriteMessage(websocket.TextMessage, data)
}

// readLoop reads and dispatches messages until shutdown, triggering
// reconnection on read failure.
func (w *WSClient) readLoop() {
	for {
		select {
		case <-w.done:
			return
		default:
		}

		w.mu.RLock()
		conn := w.conn
		w.mu.RUnlock()

		if conn == nil {
			return
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-w.done:
				return
			default:
			}

			w.reconnect()
			return // reconnect starts a fresh readLoop via Connect
		}

		w.handleMessage(message)
	}
}

// pingLoop keeps the connection alive with periodic pings.
func (w *WSClient) pingLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			w.mu.RLock()
			conn := w.conn
			w.mu.RUnlock()

			if conn == nil {
				return
			}

			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage routes a raw frame to the matching handlers. Unparseable
// frames are dropped silently.
func (w *WSClient) handleMessage(raw []byte) {
	var envelope struct {
		EventType string `json:"event_type"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return
	}

	switch envelope.EventType {
	case "book":
		var msg wsBookMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return
		}
		bids := levelsToPairs(msg.Bids)
		asks := levelsToPairs(msg.Asks)

		w.handlerMu.RLock()
		handlers := w.bookHandlers
		w.handlerMu.RUnlock()

		for _, h := range handlers {
			h(msg.AssetID, bids, asks)
		}

	case "price_change":
		var msg wsPriceChange
		if err := json.Unmarshal(raw, &msg); err != nil {
			return
		}

		change := domain.PriceChange{
			TokenID:   msg.AssetID,
			Side:      msg.Side,
			Timestamp: time.Now(),
		}
		if p, err := strconv.ParseFloat(msg.Price, 64); err == nil {
			change.Price = p
		}
		if s, err := strconv.ParseFloat(msg.Size, 64); err == nil {
			change.Size = s
		}
		if msg.Timestamp != "" {
			if ms, err := strconv.ParseInt(msg.Timestamp, 10, 64); err == nil {
				change.Timestamp = time.UnixMilli(ms)
			}
		}

		w.handlerMu.RLock()
		handlers := w.priceHandlers
		w.handlerMu.RUnlock()

		for _, h := range handlers {
			h(change)
		}
	}
}

func levelsToPairs(levels []wsLevel) [][]string {
	pairs := make([][]string, 0, len(levels))
	for _, lvl := range levels {
		pairs = append(pairs, []string{lvl.Price, lvl.Size})
	}
	return pairs
}

// reconnect re-establishes the connection with exponential backoff, blocking
// until success or shutdown.
func (w *WSClient) reconnect() {
	delay := reconnectDelay

	for {
		select {
		case <-w.done:
			return
		default:
		}

		time.Sleep(delay)

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		err := w.Connect(ctx)
		cancel()

		if err == nil {
			return
		}

		delay *= 2
		if delay > maxReconnectDelay {
			delay = maxReconnectDelay
		}
	}
}
