package feed

import "time"

// Config configures the ingestion adapter.
type Config struct {
	URL              string            // websocket URL of the upstream feed
	Channels         []string          // channels named in the subscribe request
	SymbolMap        map[string]string // upstream symbol → instrument
	HandshakeTimeout time.Duration     // dial handshake deadline
	WriteTimeout     time.Duration     // write deadline for control/subscribe sends
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		HandshakeTimeout: 10 * time.Second,
		WriteTimeout:     5 * time.Second,
	}
}

// subscribeRequest is the one-shot channel subscription sent after dial.
// No acknowledgment is awaited.
type subscribeRequest struct {
	Method string   `json:"method"`
	Params []string `json:"params"`
	ID     int64    `json:"id"`
}

// tradeEvent is the subset of an upstream trade frame the adapter reads.
// Both fields arrive text-encoded.
type tradeEvent struct {
	Symbol string `json:"s"`
	Price  string `json:"p"`
}
