package marketplace

import "errors"

var (
	// ErrInvalidConfig indicates the client configuration is incomplete
	ErrInvalidConfig = errors.New("marketplace: invalid client configuration")
)

// Config holds the marketplace API client configuration
type Config struct {
	// AuthURL is the token exchange endpoint
	AuthURL string
	// APIBaseURL is the base URL for order and catalog endpoints
	APIBaseURL string
	// TimeoutSeconds bounds every outbound request so one slow store
	// cannot stall a worker indefinitely
	TimeoutSeconds int
}

// DefaultConfig returns the default client configuration
func DefaultConfig() *Config {
	return &Config{
		TimeoutSeconds: 30,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.AuthURL == "" || c.APIBaseURL == "" {
		return ErrInvalidConfig
	}
	if c.TimeoutSeconds <= 0 {
		return ErrInvalidConfig
	}
	return nil
}
