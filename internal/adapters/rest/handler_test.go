package rest

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/ewilliams-labs/segue/internal/core/domain"
	"github.com/ewilliams-labs/segue/internal/core/services"
)

// --- Mocks ---

type mockService struct {
	result  services.Result
	tracks  []domain.Track
	err     error
	lastReq services.Request
	lastQ   string
	calls   int
}

func (m *mockService) Recommend(ctx context.Context, req services.Request) (services.Result, error) {
	m.calls++
	m.lastReq = req
	return m.result, m.err
}

func (m *mockService) Search(ctx context.Context, query string) ([]domain.Track, error) {
	m.calls++
	m.lastQ = query
	return m.tracks, m.err
}

func sampleTrack(id string) domain.Track {
	return domain.Track{
		ID:          id,
		Name:        "Song " + id,
		Artists:     []domain.Artist{{ID: "a-" + id, Name: "Artist " + id}},
		Album:       domain.Album{ID: "al-" + id, Name: "Album " + id, ReleaseDate: "2019-06-14"},
		Popularity:  42,
		ExternalURL: "https://open.spotify.com/track/" + id,
	}
}

func sampleResult() services.Result {
	return services.Result{
		Seed: sampleTrack("seed"),
		Tracks: []domain.Recommendation{
			{Track: sampleTrack("t1"), SimilarityScore: 195, MatchQuality: domain.MatchGreen, Explanation: "Shares the tempo."},
			{Track: sampleTrack("t2"), SimilarityScore: 50, MatchQuality: domain.MatchYellow},
		},
		Debug: `seed="Song seed" by "Artist seed" features=known pool=2 scored=2 returned=2`,
	}
}

func TestHandler_HealthCheck(t *testing.T) {
	h := NewHandler(&mockService{}, Options{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"status":"ok"}` {
		t.Errorf("expected health body, got %q", got)
	}
	if rec.Header().Get(requestIDHeader) == "" {
		t.Error("expected a generated request id header")
	}
}

func TestHandler_RequestIDPropagation(t *testing.T) {
	h := NewHandler(&mockService{}, Options{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get(requestIDHeader); got != "abc-123" {
		t.Errorf("expected request id abc-123, got %q", got)
	}
}

func TestHandler_Search(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		tracks         []domain.Track
		err            error
		expectedStatus int
		expectedBody   string // substring match
		expectCall     bool
	}{
		{
			name:           "Success: returns catalog shaped items",
			query:          "?q=hey+jude",
			tracks:         []domain.Track{sampleTrack("t1")},
			expectedStatus: http.StatusOK,
			expectedBody:   `"tracks":{"items":[{"id":"t1"`,
			expectCall:     true,
		},
		{
			name:           "Success: no results is an empty list",
			query:          "?q=nothing",
			expectedStatus: http.StatusOK,
			expectedBody:   `"items":[]`,
			expectCall:     true,
		},
		{
			name:           "Bad Request: missing query",
			query:          "",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "Query required",
		},
		{
			name:           "Bad Gateway: catalog failure",
			query:          "?q=x",
			err:            fmt.Errorf("%w: boom", services.ErrSearchFailed),
			expectedStatus: http.StatusBadGateway,
			expectedBody:   "Music catalog unavailable",
			expectCall:     true,
		},
		{
			name:           "Server Error: credentials",
			query:          "?q=x",
			err:            fmt.Errorf("%w: rejected", services.ErrCredentials),
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   "authenticate",
			expectCall:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockService{tracks: tt.tracks, err: tt.err}
			h := NewHandler(svc, Options{})

			req := httptest.NewRequest(http.MethodGet, "/api/search"+tt.query, nil)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tt.expectedBody) {
				t.Errorf("expected body to contain %q, got %q", tt.expectedBody, rec.Body.String())
			}
			if called := svc.calls == 1; called != tt.expectCall {
				t.Errorf("expected service called=%v, got %d calls", tt.expectCall, svc.calls)
			}
		})
	}
}

func TestHandler_SearchTrackShape(t *testing.T) {
	preview := sampleTrack("t1")
	preview.PreviewURL = "https://p.scdn.co/mp3-preview/t1"
	svc := &mockService{tracks: []domain.Track{preview, sampleTrack("t2")}}
	h := NewHandler(svc, Options{})

	req := httptest.NewRequest(http.MethodGet, "/api/search?q=song", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if svc.lastQ != "song" {
		t.Errorf("expected query %q, got %q", "song", svc.lastQ)
	}

	var body struct {
		Tracks struct {
			Items []map[string]any `json:"items"`
		} `json:"tracks"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(body.Tracks.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(body.Tracks.Items))
	}

	first := body.Tracks.Items[0]
	if first["name"] != "Song t1" {
		t.Errorf("name: got %v", first["name"])
	}
	if first["preview_url"] != "https://p.scdn.co/mp3-preview/t1" {
		t.Errorf("preview_url: got %v", first["preview_url"])
	}
	album, _ := first["album"].(map[string]any)
	if album["id"] != "al-t1" || album["name"] != "Album t1" || album["release_date"] != "2019-06-14" {
		t.Errorf("album: got %v", first["album"])
	}
	urls, _ := first["external_urls"].(map[string]any)
	if urls["spotify"] != "https://open.spotify.com/track/t1" {
		t.Errorf("external_urls: got %v", first["external_urls"])
	}
	if _, ok := first["similarity_score"]; ok {
		t.Error("search results must not carry a similarity score")
	}

	second := body.Tracks.Items[1]
	if v, ok := second["preview_url"]; !ok || v != nil {
		t.Errorf("expected explicit null preview_url, got %v (present=%v)", v, ok)
	}
}

func TestHandler_AIRecommendations(t *testing.T) {
	tests := []struct {
		name           string
		contentType    string
		body           string
		err            error
		expectedStatus int
		expectedBody   string // substring match
		expectCall     bool
	}{
		{
			name:           "Success: returns ranked tracks with debug",
			contentType:    "application/json",
			body:           `{"trackId":"seed","userDescription":"something upbeat"}`,
			expectedStatus: http.StatusOK,
			expectedBody:   `"ai_explanation":"Shares the tempo."`,
			expectCall:     true,
		},
		{
			name:           "Success: charset parameter accepted",
			contentType:    "application/json; charset=utf-8",
			body:           `{"trackId":"seed"}`,
			expectedStatus: http.StatusOK,
			expectedBody:   `"debug":"seed=`,
			expectCall:     true,
		},
		{
			name:           "Unsupported Media Type",
			contentType:    "text/plain",
			body:           `{"trackId":"seed"}`,
			expectedStatus: http.StatusUnsupportedMediaType,
			expectedBody:   "Content-Type must be application/json",
		},
		{
			name:           "Bad Request: malformed json",
			contentType:    "application/json",
			body:           `{invalid-json`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "Invalid request body",
		},
		{
			name:           "Bad Request: missing track id",
			contentType:    "application/json",
			body:           `{"userDescription":"mellow"}`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "Track ID required",
		},
		{
			name:           "Bad Request: description too long",
			contentType:    "application/json",
			body:           `{"trackId":"seed","userDescription":"` + strings.Repeat("x", 4001) + `"}`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "userDescription must be at most 4000 characters",
		},
		{
			name:           "Bad Request: track id too long",
			contentType:    "application/json",
			body:           `{"trackId":"` + strings.Repeat("a", 65) + `"}`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "trackId must be at most 64 characters",
		},
		{
			name:           "Not Found: unknown seed",
			contentType:    "application/json",
			body:           `{"trackId":"missing"}`,
			err:            fmt.Errorf("%w: missing", services.ErrSeedNotFound),
			expectedStatus: http.StatusNotFound,
			expectedBody:   "Track not found",
			expectCall:     true,
		},
		{
			name:           "Bad Gateway: seed lookup unavailable",
			contentType:    "application/json",
			body:           `{"trackId":"seed"}`,
			err:            fmt.Errorf("%w: 503", services.ErrSeedUnavailable),
			expectedStatus: http.StatusBadGateway,
			expectedBody:   "Music catalog unavailable",
			expectCall:     true,
		},
		{
			name:           "Server Error: unexpected",
			contentType:    "application/json",
			body:           `{"trackId":"seed"}`,
			err:            fmt.Errorf("wat"),
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   "internal error",
			expectCall:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockService{result: sampleResult(), err: tt.err}
			h := NewHandler(svc, Options{})

			req := httptest.NewRequest(http.MethodPost, "/api/ai-recommendations", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", tt.contentType)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tt.expectedBody) {
				t.Errorf("expected body to contain %q, got %q", tt.expectedBody, rec.Body.String())
			}
			if called := svc.calls == 1; called != tt.expectCall {
				t.Errorf("expected service called=%v, got %d calls", tt.expectCall, svc.calls)
			}
			if tt.expectCall && (svc.lastReq.Mode != services.ModeAI || svc.lastReq.SeedTrackID == "") {
				t.Errorf("unexpected service request: %+v", svc.lastReq)
			}
		})
	}
}

func TestHandler_AIRecommendationsBody(t *testing.T) {
	svc := &mockService{result: sampleResult()}
	h := NewHandler(svc, Options{})

	req := httptest.NewRequest(http.MethodPost, "/api/ai-recommendations",
		bytes.NewBufferString(`{"trackId":"seed","userDescription":"late night drive"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	want := services.Request{SeedTrackID: "seed", Description: "late night drive", Mode: services.ModeAI}
	if svc.lastReq != want {
		t.Errorf("service request: got %+v, want %+v", svc.lastReq, want)
	}

	var body struct {
		Tracks []map[string]any `json:"tracks"`
		Debug  string           `json:"debug"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(body.Tracks) != 2 {
		t.Fatalf("expected 2 tracks, got %d", len(body.Tracks))
	}
	if body.Debug != sampleResult().Debug {
		t.Errorf("debug: got %q", body.Debug)
	}

	first, second := body.Tracks[0], body.Tracks[1]
	if first["id"] != "t1" || first["similarity_score"] != float64(195) || first["match_quality"] != "green" {
		t.Errorf("first track: got %v", first)
	}
	if second["similarity_score"] != float64(50) || second["match_quality"] != "yellow" {
		t.Errorf("second track: got %v", second)
	}
	if _, ok := second["ai_explanation"]; ok {
		t.Error("expected ai_explanation to be omitted when empty")
	}
}

func TestHandler_Recommendations(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		err            error
		expectedStatus int
		expectedBody   string
	}{
		{"Success: baseline ranking", "?seed_tracks=seed", nil, http.StatusOK, `"similarity_score":195`},
		{"Bad Request: missing seed", "", nil, http.StatusBadRequest, "Track ID required"},
		{"Not Found: unknown seed", "?seed_tracks=nope", fmt.Errorf("%w", services.ErrSeedNotFound), http.StatusNotFound, "Track not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockService{result: sampleResult(), err: tt.err}
			h := NewHandler(svc, Options{})

			req := httptest.NewRequest(http.MethodGet, "/api/recommendations"+tt.query, nil)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tt.expectedBody) {
				t.Errorf("expected body to contain %q, got %q", tt.expectedBody, rec.Body.String())
			}
			if svc.calls > 0 && (svc.lastReq.Mode != services.ModeBaseline || svc.lastReq.Description != "") {
				t.Errorf("expected a baseline request without description, got %+v", svc.lastReq)
			}
		})
	}
}

func TestHandler_CORS(t *testing.T) {
	h := NewHandler(&mockService{}, Options{CORSOrigins: []string{"https://app.example.com"}})

	req := httptest.NewRequest(http.MethodOptions, "/api/ai-recommendations", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Errorf("expected allowed origin header, got %q", got)
	}
}

func TestHandler_RateLimit(t *testing.T) {
	svc := &mockService{tracks: []domain.Track{sampleTrack("t1")}}
	h := NewHandler(svc, Options{RateLimitRequests: 2})

	want := []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}
	for i, code := range want {
		req := httptest.NewRequest(http.MethodGet, "/api/search?q=x", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != code {
			t.Errorf("request %d: expected status %d, got %d", i+1, code, rec.Code)
		}
	}

	// health sits outside the limited group
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("health: expected status 200, got %d", rec.Code)
	}
}

func TestHandler_MetricsEndpoint(t *testing.T) {
	h := NewHandler(&mockService{}, Options{})

	// prime one request so the api counters have a sample
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "segue_api_requests_total") {
		t.Error("expected api request counter in exposition")
	}
}
