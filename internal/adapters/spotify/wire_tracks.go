package spotify

import (
	"context"
	"net/url"

	"github.com/ewilliams-labs/segue/internal/core/domain"
	"github.com/ewilliams-labs/segue/internal/core/ports"
)

// GetTrack fetches a full track object by id.
func (c *Client) GetTrack(ctx context.Context, token, id string) (domain.Track, error) {
	var st spotifyTrack
	if err := c.get(ctx, "get_track", token, "/tracks/"+url.PathEscape(id), nil, &st); err != nil {
		return domain.Track{}, err
	}
	if st.ID == "" {
		return domain.Track{}, &ports.CatalogError{Op: "get_track", Kind: ports.ErrNotFound}
	}
	return mapTrackToDomain(st), nil
}

// GetAudioFeatures fetches the feature vector of one track. A payload with
// no measurement is reported as not found.
func (c *Client) GetAudioFeatures(ctx context.Context, token, trackID string) (domain.AudioFeatures, error) {
	var raw spotifyAudioFeatures
	if err := c.get(ctx, "get_audio_features", token, "/audio-features/"+url.PathEscape(trackID), nil, &raw); err != nil {
		return domain.AudioFeatures{}, err
	}

	features, ok := mapFeatures(raw)
	if !ok {
		c.log.Debug().Str("track_id", trackID).Msg("spotify adapter: audio features empty")
		return domain.AudioFeatures{}, &ports.CatalogError{Op: "get_audio_features", Kind: ports.ErrNotFound}
	}
	return features, nil
}
