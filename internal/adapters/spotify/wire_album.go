package spotify

import (
	"context"
	"net/url"

	"github.com/ewilliams-labs/segue/internal/core/domain"
)

// GetAlbumTracks returns the first page of an album's track listing. Items
// are simplified: no album and no popularity.
func (c *Client) GetAlbumTracks(ctx context.Context, token, albumID string) ([]domain.Track, error) {
	var body albumTracksResponse
	path := "/albums/" + url.PathEscape(albumID) + "/tracks"
	if err := c.get(ctx, "get_album_tracks", token, path, nil, &body); err != nil {
		return nil, err
	}
	return mapTracksToDomain(body.Items), nil
}
