package eshipz

// Config holds configuration for the eShipz carrier API
type Config struct {
	// BaseURL is the base URL for the eShipz API
	BaseURL string
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
}

const (
	// ProductionBaseURL is the production API endpoint
	ProductionBaseURL = "https://app.eshipz.com"

	servicesPath          = "/api/v2/services"
	createShipmentPath    = "/api/v1/create-shipments"
	ruleBasedShipmentPath = "/api/v1/create-shipments/rule-based"
	cancelPath            = "/api/v1/cancel"
	trackingsPath         = "/api/v2/trackings"
)

// NewConfig creates a new eShipz configuration with defaults
func NewConfig() *Config {
	return &Config{
		BaseURL:        ProductionBaseURL,
		TimeoutSeconds: 30,
	}
}

// Validate validates the configuration and fills defaults
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		c.BaseURL = ProductionBaseURL
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	return nil
}
