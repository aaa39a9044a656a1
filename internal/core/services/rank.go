package services

import (
	"sort"

	"github.com/ewilliams-labs/segue/internal/core/domain"
)

// scoreCandidates attaches score and tier to every pool member in discovery
// order. features and sentiments hold whatever enrichment succeeded.
func scoreCandidates(
	pool []domain.Track,
	seed domain.SeedContext,
	features map[string]domain.AudioFeatures,
	sentiments map[string]domain.Sentiment,
) []domain.Recommendation {
	recs := make([]domain.Recommendation, 0, len(pool))
	for _, t := range pool {
		rec := domain.Recommendation{Track: t}
		if f, ok := features[t.ID]; ok {
			rec.Features = &f
		}
		if s, ok := sentiments[t.ID]; ok {
			rec.Sentiment = &s
		}

		rec.Comparison = domain.CompareFeatures(seed.Features, rec.Features)
		rec.SimilarityScore = rec.Comparison.Score
		rec.MatchQuality = rec.Comparison.Quality
		if rec.Comparison.Known && sentimentsAgree(seed.Sentiment, rec.Sentiment) {
			rec.SimilarityScore += domain.SentimentBonus
		}

		recs = append(recs, rec)
	}
	return recs
}

func sentimentsAgree(a, b *domain.Sentiment) bool {
	return a != nil && b != nil && *a == *b
}

// rankRecommendations orders by tier, then score, keeping discovery order
// for ties, and truncates to budget.
func rankRecommendations(recs []domain.Recommendation, budget int) []domain.Recommendation {
	sort.SliceStable(recs, func(i, j int) bool {
		ri, rj := recs[i].MatchQuality.Rank(), recs[j].MatchQuality.Rank()
		if ri != rj {
			return ri < rj
		}
		return recs[i].SimilarityScore > recs[j].SimilarityScore
	})
	if budget > 0 && len(recs) > budget {
		recs = recs[:budget]
	}
	return recs
}
