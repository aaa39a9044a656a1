// Package ollama adapts a local Ollama instance to the service's generative
// text and sentiment collaborators.
package ollama

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/ewilliams-labs/segue/internal/core/ports"
	"github.com/ewilliams-labs/segue/internal/logging"
)

const (
	defaultBaseURL = "http://localhost:11434"
	defaultModel   = "llama3.2:3b"
)

// Config selects the Ollama host and models.
type Config struct {
	BaseURL        string
	Model          string // text generation
	SentimentModel string // defaults to Model
	Timeout        time.Duration
}

type Client struct {
	baseURL        string
	model          string
	sentimentModel string
	httpClient     *http.Client
	log            zerolog.Logger
}

var (
	_ ports.TextGenerator       = (*Client)(nil)
	_ ports.SentimentClassifier = (*Client)(nil)
)

func NewClient(cfg Config) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	sentimentModel := cfg.SentimentModel
	if sentimentModel == "" {
		sentimentModel = model
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:        baseURL,
		model:          model,
		sentimentModel: sentimentModel,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: logging.WithComponent("ollama"),
	}
}

// post sends payload as JSON and decodes a 2xx answer into out.
func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("ollama: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("ollama: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ollama: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("ollama: unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("ollama: decode response: %w", err)
	}
	return nil
}
