// Package bookingapi is a client for the remote bus-booking REST API that
// owns owners, buses, routes, schedules, and bookings.
package bookingapi

import "time"

// Default client settings.
const (
	DefaultBaseURL        = "http://localhost:5000/api"
	DefaultTimeout        = 15 * time.Second
	DefaultMaxRetries     = 3
	DefaultRetryDelay     = 250 * time.Millisecond
	DefaultBreakerTimeout = 30 * time.Second
	DefaultBreakerTrip    = 5
)

// Config holds the client configuration.
type Config struct {
	// BaseURL is the API root, e.g. https://api.example.com/api.
	BaseURL string

	// Token is sent as a bearer token when non-empty.
	Token string

	// Timeout bounds each HTTP request.
	Timeout time.Duration

	// MaxRetries is the number of extra attempts for list fetches.
	// Mutations are never retried.
	MaxRetries int

	// RetryDelay is the initial backoff interval.
	RetryDelay time.Duration

	// BreakerTrip is the number of consecutive failures that opens the breaker.
	BreakerTrip uint32

	// BreakerTimeout is how long the breaker stays open before probing.
	BreakerTimeout time.Duration
}

// DefaultConfig returns a Config with default settings.
func DefaultConfig() Config {
	return Config{
		BaseURL:        DefaultBaseURL,
		Timeout:        DefaultTimeout,
		MaxRetries:     DefaultMaxRetries,
		RetryDelay:     DefaultRetryDelay,
		BreakerTrip:    DefaultBreakerTrip,
		BreakerTimeout: DefaultBreakerTimeout,
	}
}

// WithToken returns a copy of the config with the specified token.
func (c Config) WithToken(token string) Config {
	c.Token = token
	return c
}

// WithRetries returns a copy of the config with the specified retry settings.
func (c Config) WithRetries(maxRetries int, retryDelay time.Duration) Config {
	c.MaxRetries = maxRetries
	c.RetryDelay = retryDelay
	return c
}
