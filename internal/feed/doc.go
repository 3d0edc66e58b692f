// Package feed implements the upstream ingestion adapter.
//
// The adapter owns the single long-lived websocket connection to the
// exchange. On start it sends one subscription request for the
// configured channels, then streams frames: each text frame is parsed
// for a symbol and a price, mapped to an instrument, and written to the
// price store; the raw frame is always forwarded to the broadcaster
// verbatim, whether or not parsing succeeded.
package feed
