package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultServerAddr       = ":8080"
	DefaultReadTimeout      = 15 * time.Second
	DefaultWriteTimeout     = 15 * time.Second
	DefaultShutdownTimeout  = 10 * time.Second
	DefaultFeedURL          = "wss://stream.binance.com:443/ws"
	DefaultHandshakeTimeout = 10 * time.Second
	DefaultFeedWriteTimeout = 5 * time.Second
	DefaultSendTimeout      = 5 * time.Second
	DefaultMaxMessageSize   = 4096
)

func (c *Config) applyDefaults() {
	// Server defaults
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultServerAddr
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = DefaultReadTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = DefaultWriteTimeout
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	// Feed defaults
	if c.Feed.URL == "" {
		c.Feed.URL = DefaultFeedURL
	}
	if len(c.Feed.Channels) == 0 {
		c.Feed.Channels = []string{
			"btcusdt@aggTrade",
			"ethusdt@aggTrade",
			"eurusdt@aggTrade",
		}
	}
	if len(c.Feed.SymbolMap) == 0 {
		c.Feed.SymbolMap = map[string]string{
			"BTCUSDT": "BTCUSD",
			"ETHUSDT": "ETHUSD",
			"EURUSDT": "EURUSD",
		}
	}
	if c.Feed.HandshakeTimeout == 0 {
		c.Feed.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if c.Feed.WriteTimeout == 0 {
		c.Feed.WriteTimeout = DefaultFeedWriteTimeout
	}

	// Subscribers defaults
	if c.Subscribers.SendTimeout == 0 {
		c.Subscribers.SendTimeout = DefaultSendTimeout
	}
	if c.Subscribers.MaxMessageSize == 0 {
		c.Subscribers.MaxMessageSize = DefaultMaxMessageSize
	}
}
