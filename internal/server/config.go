package server

import "time"

// Config represents the serve subcommand's HTTP settings.
type Config struct {
	Addr         string        `help:"Dev server listen address" default:":3300" env:"NGE_HTTP_ADDR"`
	APIKey       string        `help:"Key required on POST /api/emails/* (Bearer or X-API-Key)" env:"NGE_API_KEY"`
	Auth         bool          `help:"Require an API key; one is generated in the config dir when --http.api-key is empty" default:"false" env:"NGE_AUTH"`
	RateLimit    int           `help:"Requests per window and client IP on send routes (0 disables)" default:"0" env:"NGE_RATE_LIMIT"`
	RateWindow   time.Duration `help:"Rate limit window" default:"1m" env:"NGE_RATE_WINDOW"`
	RedisURL     string        `help:"Redis URL for a rate limit store shared between processes" env:"NGE_REDIS_URL"`
	Compress     bool          `help:"Gzip responses" default:"true" env:"NGE_HTTP_COMPRESS" negatable:""`
	MaxBodyBytes int64         `help:"Maximum request body size in bytes" default:"1048576" env:"NGE_HTTP_MAX_BODY"`
}
