package clients

import "time"

// ClientConfig holds settings for outbound service clients
type ClientConfig struct {
	// Base URL of the trust adapter service
	TrustAdapterURL string

	// Per-request timeout applied on top of the caller's context deadline
	Timeout time.Duration
}

// DefaultClientConfig returns a config with development defaults
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		TrustAdapterURL: "http://localhost:8081",
		Timeout:         10 * time.Second,
	}
}
