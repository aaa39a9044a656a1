// Package spotify implements ports.Catalog against the Spotify Web API.
package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/ewilliams-labs/segue/internal/core/ports"
	"github.com/ewilliams-labs/segue/internal/logging"
	"github.com/ewilliams-labs/segue/internal/metrics"
)

const (
	defaultMaxRetries  = 3
	defaultBackoff     = 500 * time.Millisecond
	defaultCallTimeout = 5 * time.Second
)

// Options tunes the client. Zero values fall back to defaults.
type Options struct {
	BaseURL           string
	CallTimeout       time.Duration
	MaxRetries        int
	RetryBackoff      time.Duration
	RequestsPerSecond float64 // <= 0 disables the limiter
	Burst             int
}

// Client is an HTTP client for the Spotify adapter.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	maxRetries  int
	baseBackoff time.Duration
	callTimeout time.Duration
	limiter     *rate.Limiter
	breaker     *gobreaker.CircuitBreaker[struct{}]
	log         zerolog.Logger
}

// compile-time interface assertion
var _ ports.Catalog = (*Client)(nil)

// NewClient constructs a new Spotify client.
func NewClient(httpClient *http.Client, opts Options) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	c := &Client{
		httpClient:  httpClient,
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		maxRetries:  opts.MaxRetries,
		baseBackoff: opts.RetryBackoff,
		callTimeout: opts.CallTimeout,
		limiter:     rate.NewLimiter(rate.Inf, 0),
		breaker:     newBreaker("spotify-api"),
		log:         logging.WithComponent("spotify"),
	}
	if c.maxRetries <= 0 {
		c.maxRetries = defaultMaxRetries
	}
	if c.baseBackoff <= 0 {
		c.baseBackoff = defaultBackoff
	}
	if c.callTimeout <= 0 {
		c.callTimeout = defaultCallTimeout
	}
	if opts.RequestsPerSecond > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}

	return c
}

// get performs one logical catalog call: breaker, per-call deadline, retried
// GET, status classification and decoding into out.
func (c *Client) get(ctx context.Context, op, token, path string, query url.Values, out any) error {
	start := time.Now()
	_, err := c.breaker.Execute(func() (struct{}, error) {
		err := c.fetch(ctx, op, token, path, query, out)
		// the per-call deadline still counts against the upstream; the
		// caller's deadline does not
		if err != nil && ctx.Err() != nil {
			return struct{}{}, &callerAbort{err: err}
		}
		return struct{}{}, err
	})
	var abort *callerAbort
	if errors.As(err, &abort) {
		err = abort.err
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		err = &ports.CatalogError{Op: op, Kind: ports.ErrUnavailable, Err: err}
	}

	metrics.CatalogRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	metrics.CatalogRequests.WithLabelValues(op, outcome(err)).Inc()

	return err
}

func (c *Client) fetch(ctx context.Context, op, token, path string, query url.Values, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("spotify adapter: %s: create request: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.doRequestWithRetry(req)
	if err != nil {
		return &ports.CatalogError{Op: op, Kind: ports.ErrUnavailable, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(op, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ports.CatalogError{Op: op, Status: resp.StatusCode, Kind: ports.ErrUnavailable,
			Err: fmt.Errorf("decode: %w", err)}
	}

	return nil
}
