package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}

	if c.Feed.URL == "" {
		return errors.New("feed.url is required")
	}
	if !strings.HasPrefix(c.Feed.URL, "ws://") && !strings.HasPrefix(c.Feed.URL, "wss://") {
		return fmt.Errorf("feed.url must be a ws:// or wss:// URL, got %q", c.Feed.URL)
	}
	if len(c.Feed.Channels) == 0 {
		return errors.New("feed.channels must name at least one channel")
	}
	if len(c.Feed.SymbolMap) == 0 {
		return errors.New("feed.symbol_map must map at least one symbol")
	}
	for symbol, instrument := range c.Feed.SymbolMap {
		if symbol == "" || instrument == "" {
			return errors.New("feed.symbol_map entries must be non-empty")
		}
	}

	if c.Subscribers.SendTimeout <= 0 {
		return errors.New("subscribers.send_timeout must be positive")
	}
	if c.Subscribers.MaxMessageSize < 1 {
		return errors.New("subscribers.max_message_size must be >= 1")
	}

	return nil
}
