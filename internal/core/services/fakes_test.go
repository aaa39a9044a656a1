package services

import (
	"context"
	"errors"
	"sync"

	"github.com/ewilliams-labs/segue/internal/core/domain"
	"github.com/ewilliams-labs/segue/internal/core/ports"
)

// --- Mocks ---

func notFound(op string) error {
	return &ports.CatalogError{Op: op, Kind: ports.ErrNotFound}
}

func unavailable(op string) error {
	return &ports.CatalogError{Op: op, Status: 503, Kind: ports.ErrUnavailable}
}

// mockCatalog answers from fixed maps. Missing entries are NotFound unless
// an explicit error is registered.
type mockCatalog struct {
	tracks     map[string]domain.Track
	trackErr   map[string]error
	artists    map[string]domain.Artist
	related    map[string][]domain.Artist
	relatedErr error
	top        map[string][]domain.Track
	album      map[string][]domain.Track
	search     map[string][]domain.Track
	searchErr  map[string]error
	features   map[string]domain.AudioFeatures

	mu       sync.Mutex
	searches []ports.SearchQuery
	tokens   []string
}

func (m *mockCatalog) record(token string, q *ports.SearchQuery) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = append(m.tokens, token)
	if q != nil {
		m.searches = append(m.searches, *q)
	}
}

func (m *mockCatalog) GetTrack(ctx context.Context, token, id string) (domain.Track, error) {
	m.record(token, nil)
	if err := m.trackErr[id]; err != nil {
		return domain.Track{}, err
	}
	t, ok := m.tracks[id]
	if !ok {
		return domain.Track{}, notFound("get_track")
	}
	return t, nil
}

func (m *mockCatalog) GetArtist(ctx context.Context, token, id string) (domain.Artist, error) {
	m.record(token, nil)
	a, ok := m.artists[id]
	if !ok {
		return domain.Artist{}, notFound("get_artist")
	}
	return a, nil
}

func (m *mockCatalog) GetRelatedArtists(ctx context.Context, token, artistID string) ([]domain.Artist, error) {
	m.record(token, nil)
	if m.relatedErr != nil {
		return nil, m.relatedErr
	}
	return m.related[artistID], nil
}

func (m *mockCatalog) GetTopTracks(ctx context.Context, token, artistID, market string) ([]domain.Track, error) {
	m.record(token, nil)
	tracks, ok := m.top[artistID]
	if !ok {
		return nil, unavailable("get_top_tracks")
	}
	return tracks, nil
}

func (m *mockCatalog) GetAlbumTracks(ctx context.Context, token, albumID string) ([]domain.Track, error) {
	m.record(token, nil)
	return m.album[albumID], nil
}

func (m *mockCatalog) Search(ctx context.Context, token string, q ports.SearchQuery) ([]domain.Track, error) {
	m.record(token, &q)
	if err := m.searchErr[q.Query]; err != nil {
		return nil, err
	}
	return m.search[q.Query], nil
}

func (m *mockCatalog) GetAudioFeatures(ctx context.Context, token, trackID string) (domain.AudioFeatures, error) {
	m.record(token, nil)
	f, ok := m.features[trackID]
	if !ok {
		return domain.AudioFeatures{}, notFound("get_audio_features")
	}
	return f, nil
}

// syncFeatures resolves features inline against the catalog.
type syncFeatures struct {
	catalog ports.Catalog
}

func (s syncFeatures) FetchFeatures(ctx context.Context, token string, ids []string) map[string]domain.AudioFeatures {
	out := map[string]domain.AudioFeatures{}
	for _, id := range ids {
		if f, err := s.catalog.GetAudioFeatures(ctx, token, id); err == nil {
			out[id] = f
		}
	}
	return out
}

type mockCredentials struct {
	token string
	err   error
}

func (m mockCredentials) Token(ctx context.Context) (string, error) {
	return m.token, m.err
}

type mockGenerator struct {
	out string
	err error

	mu      sync.Mutex
	prompts []string
	opts    []domain.GenerationOptions
}

func (m *mockGenerator) Generate(ctx context.Context, prompt string, opts domain.GenerationOptions) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.opts = append(m.opts, opts)
	m.mu.Unlock()
	return m.out, m.err
}

// mockSentiment labels texts found in labels and fails on anything else.
type mockSentiment struct {
	labels map[string]domain.Sentiment
}

func (m mockSentiment) Classify(ctx context.Context, text string) (domain.Sentiment, error) {
	s, ok := m.labels[text]
	if !ok {
		return "", errors.New("classifier unavailable")
	}
	return s, nil
}

// --- Fixtures ---

func track(id, artistID, artistName string, popularity int) domain.Track {
	return domain.Track{
		ID:         id,
		Name:       "Song " + id,
		Artists:    []domain.Artist{{ID: artistID, Name: artistName}},
		Album:      domain.Album{ID: "album-" + id, Name: "Album " + id, ReleaseDate: "2018-01-01"},
		Popularity: popularity,
	}
}

var seedTrack = domain.Track{
	ID:         "seed",
	Name:       "Seed Song",
	Artists:    []domain.Artist{{ID: "seed-artist", Name: "Seed Artist"}},
	Album:      domain.Album{ID: "seed-album", Name: "Seed Album", ReleaseDate: "2019-06-14"},
	Popularity: 80,
}

func newMockCatalog() *mockCatalog {
	return &mockCatalog{
		tracks:    map[string]domain.Track{seedTrack.ID: seedTrack},
		trackErr:  map[string]error{},
		artists:   map[string]domain.Artist{},
		related:   map[string][]domain.Artist{},
		top:       map[string][]domain.Track{},
		album:     map[string][]domain.Track{},
		search:    map[string][]domain.Track{},
		searchErr: map[string]error{},
		features:  map[string]domain.AudioFeatures{},
	}
}

func newTestRecommender(catalog *mockCatalog, caps Capabilities) *Recommender {
	return NewRecommender(catalog, mockCredentials{token: "tok"}, syncFeatures{catalog: catalog}, caps, Options{
		Market:         "US",
		AIBudget:       9,
		BaselineBudget: 10,
	})
}
