package spotify

import (
	"context"
	"net/url"
	"strconv"

	"github.com/ewilliams-labs/segue/internal/core/domain"
	"github.com/ewilliams-labs/segue/internal/core/ports"
)

// Search runs a keyword search and returns the track results in catalog
// order.
func (c *Client) Search(ctx context.Context, token string, q ports.SearchQuery) ([]domain.Track, error) {
	searchType := q.Type
	if searchType == "" {
		searchType = "track"
	}

	query := url.Values{}
	query.Set("q", q.Query)
	query.Set("type", searchType)
	if q.Limit > 0 {
		query.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Market != "" {
		query.Set("market", q.Market)
	}

	c.log.Debug().Str("q", q.Query).Int("limit", q.Limit).Msg("spotify adapter: search")

	var body searchResponse
	if err := c.get(ctx, "search", token, "/search", query, &body); err != nil {
		return nil, err
	}
	return mapTracksToDomain(body.Tracks.Items), nil
}
