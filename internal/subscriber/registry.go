package subscriber

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Conn is the surface of a downstream websocket connection the registry
// needs. *websocket.Conn satisfies it.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Subscriber is one registered downstream connection.
type Subscriber struct {
	ID   string
	conn Conn

	// Broadcast and the fetch surface may write concurrently.
	writeMu sync.Mutex
}

// Send writes a single text frame, bounded by the deadline.
func (s *Subscriber) Send(data []byte, timeout time.Duration) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.conn.SetWriteDeadline(time.Now().Add(timeout))
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// Registry tracks the set of currently open downstream connections.
type Registry struct {
	cfg    Config
	logger *slog.Logger

	mu   sync.RWMutex
	subs map[string]*Subscriber
}

// NewRegistry creates an empty registry.
func NewRegistry(cfg Config, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}

	return &Registry{
		cfg:    cfg,
		logger: logger,
		subs:   make(map[string]*Subscriber),
	}
}

// Register adds a connection under a fresh random identifier and returns
// the subscriber record. The registry owns the connection until it is
// unregistered.
func (r *Registry) Register(conn Conn) *Subscriber {
	sub := &Subscriber{
		ID:   uuid.NewString(),
		conn: conn,
	}

	r.mu.Lock()
	r.subs[sub.ID] = sub
	r.mu.Unlock()

	r.logger.Info("subscriber connected", "id", sub.ID)
	return sub
}

// Unregister removes a connection. Removing an unknown identifier is a
// no-op: the failed-send path and the connection's own teardown may race
// to remove the same subscriber.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	_, ok := r.subs[id]
	delete(r.subs, id)
	r.mu.Unlock()

	if ok {
		r.logger.Info("subscriber disconnected", "id", id)
	}
}

// Snapshot returns the currently registered subscribers. The slice is a
// point-in-time copy and safe to iterate while the registry mutates.
func (r *Registry) Snapshot() []*Subscriber {
	r.mu.RLock()
	defer r.mu.RUnlock()

	subs := make([]*Subscriber, 0, len(r.subs))
	for _, sub := range r.subs {
		subs = append(subs, sub)
	}
	return subs
}

// Count returns the number of registered subscribers.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs)
}

// Broadcast delivers a raw message to every subscriber in the current
// snapshot. Each delivery is attempted independently; a failed or
// timed-out send drops that one subscriber and the rest still receive
// the message.
func (r *Registry) Broadcast(msg []byte) {
	for _, sub := range r.Snapshot() {
		if err := sub.Send(msg, r.cfg.SendTimeout); err != nil {
			r.logger.Warn("send failed, dropping subscriber",
				"id", sub.ID,
				"error", err,
			)
			r.Unregister(sub.ID)
			sub.conn.Close()
		}
	}
}

// Listen blocks reading inbound frames from the subscriber purely to
// detect closure; content is discarded. It returns after unregistering
// and closing the connection, on a close frame or transport error.
// The caller's goroutine is the per-connection task.
func (r *Registry) Listen(sub *Subscriber) {
	defer func() {
		r.Unregister(sub.ID)
		sub.conn.Close()
	}()

	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
			) {
				r.logger.Debug("subscriber read error", "id", sub.ID, "error", err)
			}
			return
		}
	}
}
