package league

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

type Client struct {
	apiKey        string
	baseURL       string
	http          *http.Client
	log           zerolog.Logger
	maxRetryAfter int
}

func New(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:        apiKey,
		baseURL:       strings.TrimRight(baseURL, "/"),
		http:          &http.Client{Timeout: 10 * time.Second},
		log:           zerolog.Nop(),
		maxRetryAfter: 10,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// doJSON: arma la request, agrega el header de auth, maneja 404 y 429 con Retry-After simple.
func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	return c.do(ctx, method, path, in, out, true)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any, retry bool) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return eris.Wrap(err, "league encode")
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return eris.Wrap(err, "league request")
	}
	req.Header.Set("authentication", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "league http")
	}
	defer res.Body.Close()
	c.log.Debug().Str("method", method).Str("path", path).Int("status", res.StatusCode).
		Dur("elapsed", time.Since(start)).Msg("league api")

	if res.StatusCode == http.StatusTooManyRequests && retry {
		if sec, _ := strconv.Atoi(res.Header.Get("Retry-After")); sec > 0 && sec <= c.maxRetryAfter {
			select {
			case <-time.After(time.Duration(sec) * time.Second):
			case <-ctx.Done():
				return ctx.Err()
			}
			// un reintento
			return c.do(ctx, method, path, in, out, false)
		}
	}

	if res.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return &APIError{Status: res.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return eris.Wrap(err, "league decode")
	}
	return nil
}
