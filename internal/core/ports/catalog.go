package ports

import (
	"context"
	"errors"
	"fmt"

	"github.com/ewilliams-labs/segue/internal/core/domain"
)

// Catalog failure kinds. Match with errors.Is against any error returned by a
// Catalog implementation.
var (
	ErrNotFound     = errors.New("catalog: not found")
	ErrUnauthorized = errors.New("catalog: unauthorized")
	ErrRateLimited  = errors.New("catalog: rate limited")
	ErrUnavailable  = errors.New("catalog: unavailable")
)

// CatalogError provides context for a failed catalog call.
type CatalogError struct {
	Op     string // catalog operation, e.g. "get_track"
	Status int    // HTTP status when one was received
	Kind   error  // one of the Err* kinds above
	Err    error  // underlying cause, may be nil
}

func (e *CatalogError) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Op, e.Kind)
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *CatalogError) Is(target error) bool {
	return target == e.Kind
}

func (e *CatalogError) Unwrap() error {
	return e.Err
}

// SearchQuery describes a catalog keyword search.
type SearchQuery struct {
	Query  string
	Type   string // catalog item type; only "track" results are decoded
	Limit  int
	Market string // optional
}

// Catalog is the read-only music catalog. Every call takes the bearer token
// obtained from a CredentialProvider for the current request.
type Catalog interface {
	GetTrack(ctx context.Context, token, id string) (domain.Track, error)
	GetArtist(ctx context.Context, token, id string) (domain.Artist, error)
	GetRelatedArtists(ctx context.Context, token, artistID string) ([]domain.Artist, error)
	GetTopTracks(ctx context.Context, token, artistID, market string) ([]domain.Track, error)
	// GetAlbumTracks returns simplified tracks without album or popularity.
	GetAlbumTracks(ctx context.Context, token, albumID string) ([]domain.Track, error)
	Search(ctx context.Context, token string, q SearchQuery) ([]domain.Track, error)
	GetAudioFeatures(ctx context.Context, token, trackID string) (domain.AudioFeatures, error)
}

// CredentialProvider exchanges the service's client credentials for a
// short-lived bearer token.
type CredentialProvider interface {
	Token(ctx context.Context) (string, error)
}
