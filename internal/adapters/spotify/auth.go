package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/ewilliams-labs/segue/internal/core/ports"
	"github.com/ewilliams-labs/segue/internal/logging"
)

// expiryMargin renews a cached token this long before it lapses.
const expiryMargin = 30 * time.Second

// CredentialsConfig holds the client-credentials grant parameters.
type CredentialsConfig struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	Retries      int
	Backoff      time.Duration
}

// Credentials exchanges the service's client id and secret for bearer
// tokens and caches the token until shortly before it expires.
type Credentials struct {
	cfg        clientcredentials.Config
	httpClient *http.Client
	retries    int
	backoff    time.Duration
	log        zerolog.Logger

	mu    sync.Mutex
	token *oauth2.Token
}

var _ ports.CredentialProvider = (*Credentials)(nil)

// NewCredentials constructs a token provider.
func NewCredentials(httpClient *http.Client, cfg CredentialsConfig) *Credentials {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	retries := cfg.Retries
	if retries <= 0 {
		retries = defaultMaxRetries
	}
	backoff := cfg.Backoff
	if backoff <= 0 {
		backoff = defaultBackoff
	}

	return &Credentials{
		cfg: clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		},
		httpClient: httpClient,
		retries:    retries,
		backoff:    backoff,
		log:        logging.WithComponent("spotify-auth"),
	}
}

// Token returns a valid bearer token, exchanging credentials when the cached
// one is missing or about to expire.
func (c *Credentials) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != nil && c.token.AccessToken != "" &&
		(c.token.Expiry.IsZero() || time.Until(c.token.Expiry) > expiryMargin) {
		return c.token.AccessToken, nil
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)

	var lastErr error
	for attempt := 0; attempt < c.retries; attempt++ {
		tok, err := c.cfg.Token(ctx)
		if err == nil {
			c.token = tok
			return tok.AccessToken, nil
		}
		lastErr = err

		if !retryableTokenError(err) || attempt == c.retries-1 {
			break
		}
		c.log.Warn().Err(err).Int("attempt", attempt+1).Int("max", c.retries).
			Msg("spotify adapter: token exchange failed, retrying")
		if err := sleepWithContext(ctx, c.backoff*time.Duration(1<<attempt)); err != nil {
			return "", err
		}
	}

	return "", fmt.Errorf("spotify adapter: token exchange: %w", lastErr)
}

// retryableTokenError is false for rejections of the credentials themselves.
func retryableTokenError(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var re *oauth2.RetrieveError
	if errors.As(err, &re) && re.Response != nil {
		code := re.Response.StatusCode
		return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
	}
	return true
}
