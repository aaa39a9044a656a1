package spotify

import (
	"context"
	"net/url"

	"github.com/ewilliams-labs/segue/internal/core/domain"
)

// GetArtist fetches a full artist, including genres.
func (c *Client) GetArtist(ctx context.Context, token, id string) (domain.Artist, error) {
	var sa spotifyArtist
	if err := c.get(ctx, "get_artist", token, "/artists/"+url.PathEscape(id), nil, &sa); err != nil {
		return domain.Artist{}, err
	}
	return mapArtistToDomain(sa), nil
}

// GetRelatedArtists returns the catalog's related artists in its order.
func (c *Client) GetRelatedArtists(ctx context.Context, token, artistID string) ([]domain.Artist, error) {
	var body relatedArtistsResponse
	path := "/artists/" + url.PathEscape(artistID) + "/related-artists"
	if err := c.get(ctx, "get_related_artists", token, path, nil, &body); err != nil {
		return nil, err
	}

	artists := make([]domain.Artist, 0, len(body.Artists))
	for _, a := range body.Artists {
		artists = append(artists, mapArtistToDomain(a))
	}
	return artists, nil
}

// GetTopTracks returns an artist's most popular tracks in a market.
func (c *Client) GetTopTracks(ctx context.Context, token, artistID, market string) ([]domain.Track, error) {
	query := url.Values{}
	if market != "" {
		query.Set("market", market)
	}

	var body topTracksResponse
	path := "/artists/" + url.PathEscape(artistID) + "/top-tracks"
	if err := c.get(ctx, "get_top_tracks", token, path, query, &body); err != nil {
		return nil, err
	}
	return mapTracksToDomain(body.Tracks), nil
}
