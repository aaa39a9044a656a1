package domain

import "unicode/utf8"

// MaxDescriptionRunes bounds the free-text intent supplied with a request.
const MaxDescriptionRunes = 200

// Recommendation is a ranked candidate with its derived fields.
type Recommendation struct {
	Track           Track
	SimilarityScore int
	MatchQuality    MatchQuality
	Explanation     string

	// scoring inputs kept for the explanation step
	Features   *AudioFeatures
	Comparison FeatureComparison
	Sentiment  *Sentiment
}

// SeedContext is everything known about the seed for one request.
type SeedContext struct {
	Track       Track
	Features    *AudioFeatures
	Description string
	Sentiment   *Sentiment // polarity of Description, when classified
}

// TruncateDescription trims s to MaxDescriptionRunes runes.
func TruncateDescription(s string) string {
	if utf8.RuneCountInString(s) <= MaxDescriptionRunes {
		return s
	}
	runes := []rune(s)
	return string(runes[:MaxDescriptionRunes])
}

// Sentiment is a binary polarity label.
type Sentiment string

const (
	SentimentPositive Sentiment = "POSITIVE"
	SentimentNegative Sentiment = "NEGATIVE"
)

// GenerationOptions are the sampling parameters for a text generator.
type GenerationOptions struct {
	MaxNewTokens int
	Temperature  float64
	Seed         int64
}
