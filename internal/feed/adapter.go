package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
)

// PriceSink records the latest parsed price per instrument.
type PriceSink interface {
	Update(instrument string, price decimal.Decimal)
}

// Broadcaster receives every raw upstream frame.
type Broadcaster interface {
	Broadcast(msg []byte)
}

// Adapter ingests the upstream feed for the lifetime of the process.
// Exactly one Run is expected per adapter; the adapter is the only
// writer to the price sink.
type Adapter struct {
	cfg         Config
	sink        PriceSink
	broadcaster Broadcaster
	logger      *slog.Logger

	mu        sync.RWMutex
	connected bool
}

// NewAdapter creates an ingestion adapter.
func NewAdapter(cfg Config, sink PriceSink, broadcaster Broadcaster, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}

	return &Adapter{
		cfg:         cfg,
		sink:        sink,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// IsConnected reports whether the upstream connection is live.
func (a *Adapter) IsConnected() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.connected
}

// Run dials the upstream, sends the subscription request, and streams
// frames until ctx is cancelled, the upstream sends a close frame, or
// the transport fails. No reconnection is attempted; on a fatal error
// the caller is left with the store frozen at its last known values.
func (a *Adapter) Run(ctx context.Context) error {
	dialer := websocket.Dialer{
		HandshakeTimeout: a.cfg.HandshakeTimeout,
	}

	conn, _, err := dialer.DialContext(ctx, a.cfg.URL, nil)
	if err != nil {
		return fmt.Errorf("dial feed: %w", err)
	}
	defer conn.Close()

	a.setConnected(true)
	defer a.setConnected(false)

	if err := a.subscribe(conn); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}

	a.logger.Info("connected to upstream feed",
		"url", a.cfg.URL,
		"channels", a.cfg.Channels,
	)

	// ReadMessage has no context; unblock it by closing the connection
	// when ctx is cancelled.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second),
			)
			conn.Close()
		case <-done:
		}
	}()

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				a.logger.Info("feed shutting down")
				return ctx.Err()
			}
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
			) {
				a.logger.Info("upstream closed the feed")
				return nil
			}
			return fmt.Errorf("read feed: %w", err)
		}

		if msgType != websocket.TextMessage {
			continue
		}

		a.handleFrame(data)
	}
}

// subscribe sends the one-shot subscription handshake. Upstream does not
// get a chance to reject it here; a bad channel list just yields no data.
func (a *Adapter) subscribe(conn *websocket.Conn) error {
	req := subscribeRequest{
		Method: "SUBSCRIBE",
		Params: a.cfg.Channels,
		ID:     1,
	}

	data, err := json.Marshal(req)
	if err != nil {
		return err
	}

	conn.SetWriteDeadline(time.Now().Add(a.cfg.WriteTimeout))
	return conn.WriteMessage(websocket.TextMessage, data)
}

// handleFrame updates the store when the frame parses and maps to a
// known instrument, then forwards the raw frame regardless. Subscribers
// receive the upstream wire format verbatim.
func (a *Adapter) handleFrame(data []byte) {
	if instrument, price, ok := a.parse(data); ok {
		a.sink.Update(instrument, price)
	}

	a.broadcaster.Broadcast(data)
}

// parse extracts the symbol and price fields and maps the symbol to an
// instrument. Malformed frames and unknown symbols are dropped silently;
// the ingest loop never sees an error for them.
func (a *Adapter) parse(data []byte) (string, decimal.Decimal, bool) {
	var ev tradeEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return "", decimal.Decimal{}, false
	}
	if ev.Symbol == "" || ev.Price == "" {
		return "", decimal.Decimal{}, false
	}

	price, err := decimal.NewFromString(ev.Price)
	if err != nil {
		a.logger.Debug("unparseable price field", "symbol", ev.Symbol, "price", ev.Price)
		return "", decimal.Decimal{}, false
	}

	instrument, ok := a.cfg.SymbolMap[ev.Symbol]
	if !ok {
		return "", decimal.Decimal{}, false
	}

	return instrument, price, true
}

func (a *Adapter) setConnected(v bool) {
	a.mu.Lock()
	a.connected = v
	a.mu.Unlock()
}
