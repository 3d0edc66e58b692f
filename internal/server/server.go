package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"

	"github.com/finwire/pricefeed/internal/subscriber"
)

// PriceReader is the read side of the price store.
type PriceReader interface {
	Get(instrument string) (decimal.Decimal, bool)
	Instruments() []string
	Len() int
}

// FeedStatus reports whether the upstream ingestion is live.
type FeedStatus interface {
	IsConnected() bool
}

// Config holds server-side websocket settings.
type Config struct {
	SendTimeout    time.Duration // write deadline for hub replies
	MaxMessageSize int64         // limit on inbound subscriber frames
}

// Server wires the HTTP handlers to the store and the registry.
type Server struct {
	cfg      Config
	store    PriceReader
	registry *subscriber.Registry
	feed     FeedStatus
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// New creates a server. The registry receives every connection accepted
// on the streaming endpoint.
func New(cfg Config, store PriceReader, registry *subscriber.Registry, feed FeedStatus, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		cfg:      cfg,
		store:    store,
		registry: registry,
		feed:     feed,
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/prices/instruments", s.handleInstruments)
	mux.HandleFunc("GET /api/prices/currentprice/{instrument}", s.handleCurrentPrice)
	mux.HandleFunc("GET /ws", s.handleStream)
	mux.HandleFunc("GET /hub", s.handleHub)
	mux.HandleFunc("GET /health", s.handleHealth)

	return mux
}
