package rest

import "github.com/ewilliams-labs/segue/internal/core/domain"

// Track objects mirror the catalog schema the browser client already reads,
// plus the ranking fields.

type artistDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type albumDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ReleaseDate string `json:"release_date"`
}

type externalURLsDTO struct {
	Spotify string `json:"spotify,omitempty"`
}

type trackDTO struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Artists      []artistDTO     `json:"artists"`
	Album        albumDTO        `json:"album"`
	Popularity   int             `json:"popularity"`
	PreviewURL   *string         `json:"preview_url"`
	ExternalURLs externalURLsDTO `json:"external_urls"`

	MatchQuality    domain.MatchQuality `json:"match_quality,omitempty"`
	SimilarityScore *int                `json:"similarity_score,omitempty"`
	AIExplanation   string              `json:"ai_explanation,omitempty"`
}

type searchResponse struct {
	Tracks struct {
		Items []trackDTO `json:"items"`
	} `json:"tracks"`
}

type recommendationsResponse struct {
	Tracks []trackDTO `json:"tracks"`
	Debug  string     `json:"debug"`
}

func toTrackDTO(t domain.Track) trackDTO {
	artists := make([]artistDTO, 0, len(t.Artists))
	for _, a := range t.Artists {
		artists = append(artists, artistDTO{ID: a.ID, Name: a.Name})
	}
	dto := trackDTO{
		ID:         t.ID,
		Name:       t.Name,
		Artists:    artists,
		Album:      albumDTO{ID: t.Album.ID, Name: t.Album.Name, ReleaseDate: t.Album.ReleaseDate},
		Popularity: t.Popularity,
		ExternalURLs: externalURLsDTO{
			Spotify: t.ExternalURL,
		},
	}
	if t.PreviewURL != "" {
		preview := t.PreviewURL
		dto.PreviewURL = &preview
	}
	return dto
}

func toRecommendationDTO(rec domain.Recommendation) trackDTO {
	dto := toTrackDTO(rec.Track)
	score := rec.SimilarityScore
	dto.SimilarityScore = &score
	dto.MatchQuality = rec.MatchQuality
	dto.AIExplanation = rec.Explanation
	return dto
}
