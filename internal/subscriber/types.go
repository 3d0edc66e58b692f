package subscriber

import "time"

// Config configures the subscriber registry.
type Config struct {
	SendTimeout time.Duration // write deadline for each broadcast send
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		SendTimeout: 5 * time.Second,
	}
}
