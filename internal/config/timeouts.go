package config

import "time"

// TimeoutConfig holds timeouts for the HTTP server
type TimeoutConfig struct {
	// Read is the limit for reading a request including its body. Default: 15s
	Read time.Duration

	// Idle is how long keep-alive connections wait between requests. Default: 120s
	Idle time.Duration

	// Shutdown bounds the graceful shutdown. Default: 30s
	Shutdown time.Duration
}

// DefaultTimeoutConfig returns the default timeout configuration
func DefaultTimeoutConfig() *TimeoutConfig {
	return &TimeoutConfig{
		Read:     15 * time.Second,
		Idle:     120 * time.Second,
		Shutdown: 30 * time.Second,
	}
}

// LoadTimeouts reads server.*_timeout settings over the defaults
func LoadTimeouts(l *Loader) *TimeoutConfig {
	def := DefaultTimeoutConfig()
	return &TimeoutConfig{
		Read:     l.Duration("server.read_timeout", def.Read),
		Idle:     l.Duration("server.idle_timeout", def.Idle),
		Shutdown: l.Duration("server.shutdown_timeout", def.Shutdown),
	}
}
