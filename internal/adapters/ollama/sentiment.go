package ollama

import (
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/ewilliams-labs/segue/internal/core/domain"
)

const sentimentPrompt = "You are a sentiment classifier for short music-related texts such as song titles or listener descriptions.\n\nRules:\nAnswer with the overall emotional polarity of the text.\nOutput: Return ONLY a JSON object of the form {\"label\": \"POSITIVE\"} or {\"label\": \"NEGATIVE\"}. No conversational text."

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatOptions struct {
	Temperature float64 `json:"temperature"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Format   string        `json:"format,omitempty"`
	Options  chatOptions   `json:"options"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
	Error   string      `json:"error,omitempty"`
}

type sentimentLabel struct {
	Label string `json:"label"`
}

// Classify labels text as POSITIVE or NEGATIVE.
func (c *Client) Classify(ctx context.Context, text string) (domain.Sentiment, error) {
	payload := chatRequest{
		Model:  c.sentimentModel,
		Stream: false,
		Format: "json",
		Messages: []chatMessage{
			{Role: "system", Content: sentimentPrompt},
			{Role: "user", Content: text},
		},
	}

	var parsed chatResponse
	if err := c.post(ctx, "/api/chat", payload, &parsed); err != nil {
		return "", err
	}
	if parsed.Error != "" {
		return "", fmt.Errorf("ollama: %s", parsed.Error)
	}

	content := strings.TrimSpace(parsed.Message.Content)
	if content == "" {
		return "", fmt.Errorf("ollama: empty response")
	}

	var label sentimentLabel
	if err := json.Unmarshal([]byte(content), &label); err != nil {
		return "", fmt.Errorf("ollama: decode sentiment: %w", err)
	}

	switch domain.Sentiment(strings.ToUpper(strings.TrimSpace(label.Label))) {
	case domain.SentimentPositive:
		return domain.SentimentPositive, nil
	case domain.SentimentNegative:
		return domain.SentimentNegative, nil
	default:
		return "", fmt.Errorf("ollama: unknown sentiment label %q", label.Label)
	}
}
