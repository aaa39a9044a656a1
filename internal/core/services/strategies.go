package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/ewilliams-labs/segue/internal/core/domain"
	"github.com/ewilliams-labs/segue/internal/logging"
	"github.com/ewilliams-labs/segue/internal/metrics"
)

// Strategy names, in priority order.
const (
	strategyRelated  = "related"
	strategyGenre    = "genre"
	strategyAlbum    = "album"
	strategyFallback = "fallback"
)

const (
	relatedArtistLimit  = 8
	topTracksPerArtist  = 3
	genreLimit          = 3
	genreSearchLimit    = 20
	albumNeighborLimit  = 5
	fallbackSearchLimit = 15
)

// strategyResult is the ordered output of one strategy. It is produced
// independently of the pool and only merged at the join point.
type strategyResult struct {
	name     string
	tracks   []domain.Track
	failures int
	// genre only: false when the seed artist has no genres
	applicable bool
}

func (r *Recommender) runRelated(ctx context.Context, token string, seed domain.Track) strategyResult {
	res := strategyResult{name: strategyRelated, applicable: true}
	artistID := seed.PrimaryArtist().ID
	if artistID == "" {
		return res
	}

	related, err := r.catalog.GetRelatedArtists(ctx, token, artistID)
	if err != nil {
		r.degraded(ctx, &res, err, "related artists lookup failed")
		return res
	}
	if len(related) > relatedArtistLimit {
		related = related[:relatedArtistLimit]
	}

	perArtist := make([][]domain.Track, len(related))
	failed := make([]error, len(related))
	var g errgroup.Group
	for i, artist := range related {
		g.Go(func() error {
			tracks, err := r.catalog.GetTopTracks(ctx, token, artist.ID, r.opts.Market)
			if err != nil {
				failed[i] = fmt.Errorf("top tracks for %s: %w", artist.ID, err)
				return nil
			}
			if len(tracks) > topTracksPerArtist {
				tracks = tracks[:topTracksPerArtist]
			}
			perArtist[i] = tracks
			return nil
		})
	}
	_ = g.Wait()

	for i := range related {
		if failed[i] != nil {
			r.degraded(ctx, &res, failed[i], "top tracks lookup failed")
			continue
		}
		res.tracks = append(res.tracks, perArtist[i]...)
	}
	return res
}

// genreQueries builds the search queries for up to three genres, most recent
// era first.
func genreQueries(genres []string) []string {
	if len(genres) > genreLimit {
		genres = genres[:genreLimit]
	}
	queries := make([]string, 0, len(genres)*3)
	for _, g := range genres {
		g = quotedTerm(g)
		queries = append(queries,
			fmt.Sprintf(`genre:"%s" year:2020-2024`, g),
			fmt.Sprintf(`genre:"%s" year:2015-2019`, g),
			fmt.Sprintf(`genre:"%s"`, g),
		)
	}
	return queries
}

func (r *Recommender) runGenre(ctx context.Context, token string, seed domain.Track) strategyResult {
	res := strategyResult{name: strategyGenre}
	seedArtist := seed.PrimaryArtist()
	if seedArtist.ID == "" {
		return res
	}

	artist, err := r.catalog.GetArtist(ctx, token, seedArtist.ID)
	if err != nil {
		r.degraded(ctx, &res, err, "seed artist lookup failed")
		return res
	}
	if len(artist.Genres) == 0 {
		return res
	}
	res.applicable = true

	queries := genreQueries(artist.Genres)
	perQuery := r.searchAll(ctx, token, &res, queries, genreSearchLimit)

	for _, tracks := range perQuery {
		sort.SliceStable(tracks, func(i, j int) bool {
			return tracks[i].Popularity > tracks[j].Popularity
		})
		for _, t := range tracks {
			if domain.SameArtist(t.PrimaryArtist(), seedArtist) {
				continue
			}
			res.tracks = append(res.tracks, t)
		}
	}
	return res
}

func (r *Recommender) runAlbum(ctx context.Context, token string, seed domain.Track) strategyResult {
	res := strategyResult{name: strategyAlbum, applicable: true}
	if seed.Album.ID == "" {
		return res
	}

	listing, err := r.catalog.GetAlbumTracks(ctx, token, seed.Album.ID)
	if err != nil {
		r.degraded(ctx, &res, err, "album tracks lookup failed")
		return res
	}
	if len(listing) > albumNeighborLimit {
		listing = listing[:albumNeighborLimit]
	}

	hydrated := make([]*domain.Track, len(listing))
	failed := make([]error, len(listing))
	var g errgroup.Group
	for i, stub := range listing {
		if stub.ID == seed.ID {
			continue
		}
		g.Go(func() error {
			full, err := r.catalog.GetTrack(ctx, token, stub.ID)
			if err != nil {
				failed[i] = fmt.Errorf("hydrate %s: %w", stub.ID, err)
				return nil
			}
			hydrated[i] = &full
			return nil
		})
	}
	_ = g.Wait()

	for i := range listing {
		switch {
		case failed[i] != nil:
			r.degraded(ctx, &res, failed[i], "album track hydration failed")
		case hydrated[i] != nil:
			res.tracks = append(res.tracks, *hydrated[i])
		}
	}
	return res
}

// fallbackQueries are the broad searches of the last strategy. The year
// query is skipped when the seed's release year is unknown.
func fallbackQueries(seed domain.Track) []string {
	queries := []string{fmt.Sprintf(`artist:"%s"`, quotedTerm(seed.PrimaryArtist().Name))}
	if year := seed.ReleaseYear(); year != "" {
		queries = append(queries, "year:"+year)
	}
	return append(queries, "tag:new")
}

// quotedTerm prepares a value for a quoted search field. The catalog's query
// syntax has no escape for an embedded quote, so quotes are dropped.
func quotedTerm(s string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(s, `"`, " ")), " ")
}

func (r *Recommender) runFallback(ctx context.Context, token string, seed domain.Track) strategyResult {
	res := strategyResult{name: strategyFallback, applicable: true}
	for _, tracks := range r.searchAll(ctx, token, &res, fallbackQueries(seed), fallbackSearchLimit) {
		res.tracks = append(res.tracks, tracks...)
	}
	return res
}

// searchAll runs queries concurrently and returns their results by query
// index. Failed queries yield nil.
func (r *Recommender) searchAll(ctx context.Context, token string, res *strategyResult, queries []string, limit int) [][]domain.Track {
	out := make([][]domain.Track, len(queries))
	failed := make([]error, len(queries))

	var g errgroup.Group
	for i, q := range queries {
		g.Go(func() error {
			tracks, err := r.catalog.Search(ctx, token, searchQuery(q, limit, ""))
			if err != nil {
				failed[i] = fmt.Errorf("search %q: %w", q, err)
				return nil
			}
			out[i] = tracks
			return nil
		})
	}
	_ = g.Wait()

	for _, err := range failed {
		if err != nil {
			r.degraded(ctx, res, err, "search failed")
		}
	}
	return out
}

func (r *Recommender) degraded(ctx context.Context, res *strategyResult, err error, msg string) {
	res.failures++
	metrics.StrategyFailures.WithLabelValues(res.name).Inc()
	logging.Ctx(ctx).Warn().Err(err).Str("strategy", res.name).Msg("service: " + msg)
}
