package feed

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
)

// mockFeedServer creates a test upstream websocket server.
func mockFeedServer(t *testing.T, handler func(*websocket.Conn)) *httptest.Server {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Logf("upgrade error: %v", err)
			return
		}
		defer conn.Close()
		handler(conn)
	}))

	return server
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

// readSubscribe consumes and returns the subscription request.
func readSubscribe(t *testing.T, conn *websocket.Conn) subscribeRequest {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Errorf("read subscribe: %v", err)
		return subscribeRequest{}
	}
	var req subscribeRequest
	if err := json.Unmarshal(data, &req); err != nil {
		t.Errorf("parse subscribe: %v", err)
	}
	return req
}

// closeFeed performs the server side of the close handshake.
func closeFeed(conn *websocket.Conn) {
	conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	// Wait for the echoed close frame.
	conn.SetReadDeadline(time.Now().Add(time.Second))
	conn.ReadMessage()
}

type fakeSink struct {
	mu      sync.Mutex
	updates map[string]decimal.Decimal
	count   int
}

func newFakeSink() *fakeSink {
	return &fakeSink{updates: make(map[string]decimal.Decimal)}
}

func (s *fakeSink) Update(instrument string, price decimal.Decimal) {
	s.mu.Lock()
	s.updates[instrument] = price
	s.count++
	s.mu.Unlock()
}

func (s *fakeSink) get(instrument string) (decimal.Decimal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.updates[instrument]
	return p, ok
}

func (s *fakeSink) updateCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

type fakeBroadcaster struct {
	mu     sync.Mutex
	frames [][]byte
}

func (b *fakeBroadcaster) Broadcast(msg []byte) {
	b.mu.Lock()
	b.frames = append(b.frames, append([]byte(nil), msg...))
	b.mu.Unlock()
}

func (b *fakeBroadcaster) received() [][]byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([][]byte(nil), b.frames...)
}

func testConfig(url string) Config {
	return Config{
		URL:              url,
		Channels:         []string{"btcusdt@aggTrade", "ethusdt@aggTrade"},
		SymbolMap:        map[string]string{"BTCUSDT": "BTCUSD", "ETHUSDT": "ETHUSD"},
		HandshakeTimeout: 5 * time.Second,
		WriteTimeout:     5 * time.Second,
	}
}

func TestRun_SendsSubscription(t *testing.T) {
	var (
		mu  sync.Mutex
		req subscribeRequest
	)

	server := mockFeedServer(t, func(conn *websocket.Conn) {
		r := readSubscribe(t, conn)
		mu.Lock()
		req = r
		mu.Unlock()
		closeFeed(conn)
	})
	defer server.Close()

	adapter := NewAdapter(testConfig(wsURL(server)), newFakeSink(), &fakeBroadcaster{}, nil)

	if err := adapter.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if req.Method != "SUBSCRIBE" {
		t.Errorf("Method = %q, want SUBSCRIBE", req.Method)
	}
	if len(req.Params) != 2 || req.Params[0] != "btcusdt@aggTrade" {
		t.Errorf("Params = %v, want the configured channels", req.Params)
	}
	if req.ID == 0 {
		t.Error("ID should be set")
	}
}

func TestRun_UpdatesStoreAndBroadcastsRaw(t *testing.T) {
	frame := `{"s":"BTCUSDT","p":"50000.12"}`

	server := mockFeedServer(t, func(conn *websocket.Conn) {
		readSubscribe(t, conn)
		conn.WriteMessage(websocket.TextMessage, []byte(frame))
		closeFeed(conn)
	})
	defer server.Close()

	sink := newFakeSink()
	broadcaster := &fakeBroadcaster{}
	adapter := NewAdapter(testConfig(wsURL(server)), sink, broadcaster, nil)

	if err := adapter.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	price, ok := sink.get("BTCUSD")
	if !ok {
		t.Fatal("store should contain BTCUSD")
	}
	if price.String() != "50000.12" {
		t.Errorf("price = %s, want exactly 50000.12", price)
	}

	frames := broadcaster.received()
	if len(frames) != 1 {
		t.Fatalf("broadcast %d frames, want 1", len(frames))
	}
	if string(frames[0]) != frame {
		t.Errorf("broadcast %q, want the verbatim frame %q", frames[0], frame)
	}
}

func TestRun_UnmappedSymbolStillBroadcast(t *testing.T) {
	frame := `{"s":"XYZUSDT","p":"1.0"}`

	server := mockFeedServer(t, func(conn *websocket.Conn) {
		readSubscribe(t, conn)
		conn.WriteMessage(websocket.TextMessage, []byte(frame))
		closeFeed(conn)
	})
	defer server.Close()

	sink := newFakeSink()
	broadcaster := &fakeBroadcaster{}
	adapter := NewAdapter(testConfig(wsURL(server)), sink, broadcaster, nil)

	if err := adapter.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if sink.updateCount() != 0 {
		t.Errorf("store received %d updates, want 0 for an unmapped symbol", sink.updateCount())
	}
	if len(broadcaster.received()) != 1 {
		t.Errorf("broadcast %d frames, want 1", len(broadcaster.received()))
	}
}

func TestRun_MalformedFramesDoNotStopTheLoop(t *testing.T) {
	frames := []string{
		`{"s":"BTCUSDT","p":"not-a-number"}`,
		`{"s":"BTCUSDT"}`,
		`not json at all`,
		`{"s":"ETHUSDT","p":"3000.50"}`,
	}

	server := mockFeedServer(t, func(conn *websocket.Conn) {
		readSubscribe(t, conn)
		for _, f := range frames {
			conn.WriteMessage(websocket.TextMessage, []byte(f))
		}
		closeFeed(conn)
	})
	defer server.Close()

	sink := newFakeSink()
	broadcaster := &fakeBroadcaster{}
	adapter := NewAdapter(testConfig(wsURL(server)), sink, broadcaster, nil)

	if err := adapter.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// Only the final well-formed frame reaches the store.
	if sink.updateCount() != 1 {
		t.Errorf("store received %d updates, want 1", sink.updateCount())
	}
	if price, ok := sink.get("ETHUSD"); !ok || price.String() != "3000.50" {
		t.Errorf("ETHUSD = %v (found=%v), want 3000.50", price, ok)
	}

	// Every frame is still forwarded raw.
	if len(broadcaster.received()) != len(frames) {
		t.Errorf("broadcast %d frames, want %d", len(broadcaster.received()), len(frames))
	}
}

func TestRun_BinaryFramesIgnored(t *testing.T) {
	server := mockFeedServer(t, func(conn *websocket.Conn) {
		readSubscribe(t, conn)
		conn.WriteMessage(websocket.BinaryMessage, []byte{0x01, 0x02})
		closeFeed(conn)
	})
	defer server.Close()

	sink := newFakeSink()
	broadcaster := &fakeBroadcaster{}
	adapter := NewAdapter(testConfig(wsURL(server)), sink, broadcaster, nil)

	if err := adapter.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if sink.updateCount() != 0 || len(broadcaster.received()) != 0 {
		t.Error("binary frames should be neither stored nor broadcast")
	}
}

func TestRun_ContextCancellation(t *testing.T) {
	connected := make(chan struct{})

	server := mockFeedServer(t, func(conn *websocket.Conn) {
		readSubscribe(t, conn)
		close(connected)
		// Hold the connection open until the client closes it.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
	defer server.Close()

	adapter := NewAdapter(testConfig(wsURL(server)), newFakeSink(), &fakeBroadcaster{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- adapter.Run(ctx) }()

	select {
	case <-connected:
	case <-time.After(2 * time.Second):
		t.Fatal("adapter never connected")
	}
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not exit after cancellation")
	}

	if adapter.IsConnected() {
		t.Error("IsConnected should be false after Run returns")
	}
}

func TestRun_DialFailure(t *testing.T) {
	cfg := testConfig("ws://127.0.0.1:1")
	cfg.HandshakeTimeout = 500 * time.Millisecond
	adapter := NewAdapter(cfg, newFakeSink(), &fakeBroadcaster{}, nil)

	if err := adapter.Run(context.Background()); err == nil {
		t.Fatal("Run should fail when the upstream is unreachable")
	}
}
