package config

import "time"

// Config is the root configuration for the price feed service.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Feed        FeedConfig        `yaml:"feed"`
	Subscribers SubscribersConfig `yaml:"subscribers"`
}

// ServerConfig holds the HTTP/WebSocket server settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// FeedConfig holds the upstream exchange feed settings.
type FeedConfig struct {
	URL              string            `yaml:"url"`
	Channels         []string          `yaml:"channels"`   // e.g. btcusdt@aggTrade
	SymbolMap        map[string]string `yaml:"symbol_map"` // upstream symbol → instrument
	HandshakeTimeout time.Duration     `yaml:"handshake_timeout"`
	WriteTimeout     time.Duration     `yaml:"write_timeout"`
}

// SubscribersConfig holds downstream subscriber connection settings.
type SubscribersConfig struct {
	SendTimeout    time.Duration `yaml:"send_timeout"`     // write deadline per broadcast send
	MaxMessageSize int64         `yaml:"max_message_size"` // limit on inbound subscriber frames
}
