package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/finwire/pricefeed/internal/model"
)

// handleStream upgrades the connection, registers it, and runs its
// receive loop. The handler goroutine is the per-connection task; it
// exits when the subscriber disconnects, errors, or is dropped by a
// failed broadcast send.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	conn.SetReadLimit(s.cfg.MaxMessageSize)

	sub := s.registry.Register(conn)
	s.registry.Listen(sub)
}

// fetchRequest asks for the current price of one instrument.
type fetchRequest struct {
	Subscribe string `json:"subscribe"`
}

// handleHub serves on-demand price fetches, independent of the
// broadcast path. Each request is answered to the caller only; unknown
// instruments get no reply.
func (s *Server) handleHub(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(s.cfg.MaxMessageSize)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var req fetchRequest
		if err := json.Unmarshal(data, &req); err != nil || req.Subscribe == "" {
			continue
		}

		price, ok := s.store.Get(req.Subscribe)
		if !ok {
			continue
		}

		reply, err := json.Marshal(model.PriceQuote{
			Instrument: req.Subscribe,
			Price:      price,
		})
		if err != nil {
			continue
		}

		conn.SetWriteDeadline(time.Now().Add(s.cfg.SendTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, reply); err != nil {
			return
		}
	}
}
