package ollama

import (
	"context"
	"fmt"
	"strings"

	"github.com/ewilliams-labs/segue/internal/core/domain"
)

type generateOptions struct {
	NumPredict  int     `json:"num_predict,omitempty"`
	Temperature float64 `json:"temperature"`
	Seed        int64   `json:"seed"`
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

// Generate continues prompt with the configured model.
func (c *Client) Generate(ctx context.Context, prompt string, opts domain.GenerationOptions) (string, error) {
	payload := generateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: false,
		Options: generateOptions{
			NumPredict:  opts.MaxNewTokens,
			Temperature: opts.Temperature,
			Seed:        opts.Seed,
		},
	}

	var parsed generateResponse
	if err := c.post(ctx, "/api/generate", payload, &parsed); err != nil {
		return "", err
	}
	if parsed.Error != "" {
		return "", fmt.Errorf("ollama: %s", parsed.Error)
	}

	text := strings.TrimSpace(parsed.Response)
	if text == "" {
		return "", fmt.Errorf("ollama: empty response")
	}

	c.log.Debug().Int("chars", len(text)).Msg("ollama: generated text")
	return text, nil
}
