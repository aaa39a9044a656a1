package services

import (
	"github.com/ewilliams-labs/segue/internal/core/domain"
	"github.com/ewilliams-labs/segue/internal/metrics"
)

// gate decides, from the pool size when a strategy's turn comes, whether it
// runs and how far it may fill the pool.
type gate struct {
	runBelow int // strategy runs only while pool < runBelow; 0 means always
	fillTo   int // accept until pool = fillTo; 0 means no cap
}

var strategyGates = map[string]gate{
	strategyRelated:  {fillTo: 15},
	strategyGenre:    {runBelow: 12, fillTo: 15},
	strategyAlbum:    {runBelow: 10},
	strategyFallback: {runBelow: 8, fillTo: 10},
}

// strategyOutcome summarizes one strategy for the debug line.
type strategyOutcome struct {
	name     string
	ran      bool
	accepted int
	failures int
}

// mergeCandidates folds strategy results into one pool in priority order.
// It is the only writer of the pool, so results must be passed in priority
// order once every strategy has finished.
func mergeCandidates(seed domain.Track, results []strategyResult) (*domain.CandidatePool, []strategyOutcome) {
	pool := domain.NewCandidatePool(seed)
	outcomes := make([]strategyOutcome, 0, len(results))

	for _, res := range results {
		out := strategyOutcome{name: res.name, failures: res.failures}
		g := strategyGates[res.name]

		if res.applicable && (g.runBelow == 0 || pool.Len() < g.runBelow) {
			out.ran = true
			for _, t := range res.tracks {
				if g.fillTo > 0 && pool.Len() >= g.fillTo {
					break
				}
				if pool.AddTrack(t, g.fillTo) == nil {
					out.accepted++
				}
			}
		}

		metrics.StrategyCandidates.WithLabelValues(res.name).Add(float64(out.accepted))
		outcomes = append(outcomes, out)
	}

	return pool, outcomes
}
