package league

import (
	"net/http"

	"github.com/rs/zerolog"
)

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithMaxRetryAfter acota cuánto se espera ante un 429 antes de reintentar.
func WithMaxRetryAfter(sec int) Option {
	return func(c *Client) { c.maxRetryAfter = sec }
}
