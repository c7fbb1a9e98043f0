package api

// Config holds server configuration.
type Config struct {
	Addr              string
	Version           string
	Profile           string   // Format checked when a request names none
	RateLimitRequests int      // Requests per minute (0 = disabled)
	RateLimitBurst    int      // Burst size
	AllowedOrigins    []string // CORS allowed origins (empty = allow all)
}
