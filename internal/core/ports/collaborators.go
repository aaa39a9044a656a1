package ports

import (
	"context"

	"github.com/ewilliams-labs/segue/internal/core/domain"
)

// TextGenerator continues a prompt with generated text.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, opts domain.GenerationOptions) (string, error)
}

// SentimentClassifier labels free text with a binary polarity.
type SentimentClassifier interface {
	Classify(ctx context.Context, text string) (domain.Sentiment, error)
}

// FeatureSource resolves audio features for a batch of tracks. Tracks whose
// features could not be fetched are absent from the result.
type FeatureSource interface {
	FetchFeatures(ctx context.Context, token string, trackIDs []string) map[string]domain.AudioFeatures
}
