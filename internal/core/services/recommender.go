// Package services holds the recommendation pipeline: candidate generation,
// scoring, ranking and explanations, plus the search passthrough.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ewilliams-labs/segue/internal/core/domain"
	"github.com/ewilliams-labs/segue/internal/core/ports"
	"github.com/ewilliams-labs/segue/internal/logging"
	"github.com/ewilliams-labs/segue/internal/metrics"
)

// Mode selects the response variant.
type Mode string

const (
	// ModeAI attaches explanations and uses sentiment when configured.
	ModeAI Mode = "ai"
	// ModeBaseline ranks without explanations or sentiment.
	ModeBaseline Mode = "baseline"
)

const searchResultLimit = 5

// Capabilities are the optional collaborators. A nil field means the
// capability is not configured and its documented fallback applies.
type Capabilities struct {
	Generator ports.TextGenerator
	Sentiment ports.SentimentClassifier
}

// Options tunes the recommender.
type Options struct {
	Market               string
	RequestTimeout       time.Duration
	AIBudget             int
	BaselineBudget       int
	ExplainConcurrency   int
	SentimentConcurrency int
}

// Request is one recommendation request.
type Request struct {
	SeedTrackID string
	Description string
	Mode        Mode
}

// Result is the ranked response.
type Result struct {
	Seed   domain.Track
	Tracks []domain.Recommendation
	Debug  string
}

// Recommender runs the recommendation pipeline for one seed track per call.
// It holds no per-request state and is safe for concurrent use.
type Recommender struct {
	catalog   ports.Catalog
	creds     ports.CredentialProvider
	features  ports.FeatureSource
	caps      Capabilities
	explainer *Explainer
	opts      Options
}

func NewRecommender(
	catalog ports.Catalog,
	creds ports.CredentialProvider,
	features ports.FeatureSource,
	caps Capabilities,
	opts Options,
) *Recommender {
	if opts.AIBudget <= 0 {
		opts.AIBudget = 9
	}
	if opts.BaselineBudget <= 0 {
		opts.BaselineBudget = 10
	}
	if opts.ExplainConcurrency <= 0 {
		opts.ExplainConcurrency = 4
	}
	if opts.SentimentConcurrency <= 0 {
		opts.SentimentConcurrency = 4
	}
	return &Recommender{
		catalog:   catalog,
		creds:     creds,
		features:  features,
		caps:      caps,
		explainer: NewExplainer(caps.Generator),
		opts:      opts,
	}
}

// Recommend produces the ranked, deduplicated recommendations for a seed.
// Only invalid input, credential failure and seed lookup failure are
// returned as errors.
func (r *Recommender) Recommend(ctx context.Context, req Request) (Result, error) {
	mode := req.Mode
	if mode == "" {
		mode = ModeAI
	}
	res, err := r.recommend(ctx, req, mode)
	metrics.Recommendations.WithLabelValues(string(mode), outcomeLabel(err)).Inc()
	return res, err
}

func (r *Recommender) recommend(ctx context.Context, req Request, mode Mode) (Result, error) {
	seedID := strings.TrimSpace(req.SeedTrackID)
	if seedID == "" {
		return Result{}, fmt.Errorf("%w: track id is required", ErrInvalidInput)
	}

	if r.opts.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.RequestTimeout)
		defer cancel()
	}
	log := logging.Ctx(ctx)
	start := time.Now()

	token, err := r.creds.Token(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrCredentials, err)
	}

	seedTrack, err := r.catalog.GetTrack(ctx, token, seedID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return Result{}, fmt.Errorf("%w: %s", ErrSeedNotFound, seedID)
		}
		return Result{}, fmt.Errorf("%w: %v", ErrSeedUnavailable, err)
	}

	seed := domain.SeedContext{Track: seedTrack}
	if mode == ModeAI {
		seed.Description = domain.TruncateDescription(strings.TrimSpace(req.Description))
	}

	// seed enrichment and all four strategies start together; strategy
	// gates are applied afterwards by the merge
	results := make([]strategyResult, 4)
	var g errgroup.Group
	g.Go(func() error {
		f, err := r.catalog.GetAudioFeatures(ctx, token, seedTrack.ID)
		if err != nil {
			if !errors.Is(err, ports.ErrNotFound) {
				log.Warn().Err(err).Msg("service: seed audio features unavailable")
			}
			return nil
		}
		seed.Features = &f
		return nil
	})
	g.Go(func() error {
		if s, ok := r.classify(ctx, seed.Description); ok {
			seed.Sentiment = &s
		}
		return nil
	})
	g.Go(func() error { results[0] = r.runRelated(ctx, token, seedTrack); return nil })
	g.Go(func() error { results[1] = r.runGenre(ctx, token, seedTrack); return nil })
	g.Go(func() error { results[2] = r.runAlbum(ctx, token, seedTrack); return nil })
	g.Go(func() error { results[3] = r.runFallback(ctx, token, seedTrack); return nil })
	_ = g.Wait()

	pool, outcomes := mergeCandidates(seedTrack, results)
	for _, o := range outcomes {
		log.Debug().Str("strategy", o.name).Bool("ran", o.ran).Int("accepted", o.accepted).
			Int("failures", o.failures).Msg("service: strategy merged")
	}

	features, sentiments := r.enrich(ctx, token, pool.Tracks, seed)

	budget := r.opts.AIBudget
	if mode == ModeBaseline {
		budget = r.opts.BaselineBudget
	}
	recs := rankRecommendations(scoreCandidates(pool.Tracks, seed, features, sentiments), budget)

	if mode == ModeAI {
		r.explainAll(ctx, recs, seed)
	}

	log.Info().Str("seed_id", seedTrack.ID).Str("mode", string(mode)).Int("pool", pool.Len()).
		Int("returned", len(recs)).Dur("elapsed", time.Since(start)).Msg("service: recommendations served")

	return Result{
		Seed:   seedTrack,
		Tracks: recs,
		Debug:  debugSummary(seed, outcomes, pool.Len(), len(features), len(recs)),
	}, nil
}

// enrich fetches candidate features and, when the description has a
// polarity, candidate sentiments. Missing entries mean unknown.
func (r *Recommender) enrich(
	ctx context.Context,
	token string,
	pool []domain.Track,
	seed domain.SeedContext,
) (map[string]domain.AudioFeatures, map[string]domain.Sentiment) {
	features := map[string]domain.AudioFeatures{}
	sentiments := map[string]domain.Sentiment{}
	if len(pool) == 0 {
		return features, sentiments
	}

	var g errgroup.Group
	if seed.Features != nil && r.features != nil {
		g.Go(func() error {
			ids := make([]string, len(pool))
			for i, t := range pool {
				ids[i] = t.ID
			}
			features = r.features.FetchFeatures(ctx, token, ids)
			return nil
		})
	}
	if seed.Sentiment != nil {
		g.Go(func() error {
			sentiments = r.classifyCandidates(ctx, pool)
			return nil
		})
	}
	_ = g.Wait()

	return features, sentiments
}

func (r *Recommender) classify(ctx context.Context, text string) (domain.Sentiment, bool) {
	if r.caps.Sentiment == nil || text == "" {
		return "", false
	}
	s, err := r.caps.Sentiment.Classify(ctx, text)
	if err != nil {
		logging.Ctx(ctx).Debug().Err(err).Msg("service: sentiment classification failed")
		return "", false
	}
	return s, true
}

func (r *Recommender) classifyCandidates(ctx context.Context, pool []domain.Track) map[string]domain.Sentiment {
	labels := make([]domain.Sentiment, len(pool))

	var g errgroup.Group
	g.SetLimit(r.opts.SentimentConcurrency)
	for i, t := range pool {
		g.Go(func() error {
			if s, ok := r.classify(ctx, t.Name+" by "+t.ArtistNames()); ok {
				labels[i] = s
			}
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[string]domain.Sentiment, len(pool))
	for i, t := range pool {
		if labels[i] != "" {
			out[t.ID] = labels[i]
		}
	}
	return out
}

// explainAll fills in explanations for the ranked survivors in place.
func (r *Recommender) explainAll(ctx context.Context, recs []domain.Recommendation, seed domain.SeedContext) {
	var g errgroup.Group
	g.SetLimit(r.opts.ExplainConcurrency)
	for i := range recs {
		g.Go(func() error {
			recs[i].Explanation = r.explainer.Explain(ctx, recs[i], seed)
			return nil
		})
	}
	_ = g.Wait()
}

// Search is the catalog track search used by the seed picker.
func (r *Recommender) Search(ctx context.Context, query string) ([]domain.Track, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", ErrInvalidInput)
	}

	token, err := r.creds.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCredentials, err)
	}

	tracks, err := r.catalog.Search(ctx, token, searchQuery(query, searchResultLimit, r.opts.Market))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}
	return tracks, nil
}

func searchQuery(q string, limit int, market string) ports.SearchQuery {
	return ports.SearchQuery{Query: q, Type: "track", Limit: limit, Market: market}
}

func debugSummary(seed domain.SeedContext, outcomes []strategyOutcome, poolSize, featureCount, returned int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "seed=%q by %q", seed.Track.Name, seed.Track.ArtistNames())
	if seed.Features != nil {
		b.WriteString(" features=known")
	} else {
		b.WriteString(" features=unknown")
	}
	if seed.Sentiment != nil {
		fmt.Fprintf(&b, " sentiment=%s", *seed.Sentiment)
	}
	for _, o := range outcomes {
		if !o.ran {
			fmt.Fprintf(&b, " %s=skipped", o.name)
			continue
		}
		fmt.Fprintf(&b, " %s=%d", o.name, o.accepted)
		if o.failures > 0 {
			fmt.Fprintf(&b, "(%d failed)", o.failures)
		}
	}
	fmt.Fprintf(&b, " pool=%d scored=%d returned=%d", poolSize, featureCount, returned)
	return b.String()
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidInput):
		return "invalid"
	case errors.Is(err, ErrCredentials):
		return "credentials"
	case errors.Is(err, ErrSeedNotFound):
		return "not_found"
	default:
		return "upstream"
	}
}
