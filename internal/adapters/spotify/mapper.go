package spotify

import "github.com/ewilliams-labs/segue/internal/core/domain"

// mapTrackToDomain converts a raw Spotify track to a domain track. Album
// track listings carry no album or popularity; those stay zero.
func mapTrackToDomain(st spotifyTrack) domain.Track {
	artists := make([]domain.Artist, 0, len(st.Artists))
	for _, a := range st.Artists {
		artists = append(artists, mapArtistToDomain(a))
	}

	dt := domain.Track{
		ID:      st.ID,
		Name:    st.Name,
		Artists: artists,
		Album: domain.Album{
			ID:          st.Album.ID,
			Name:        st.Album.Name,
			ReleaseDate: st.Album.ReleaseDate,
		},
		Popularity:  st.Popularity,
		ExternalURL: st.ExternalURLs.Spotify,
	}
	if st.PreviewURL != nil {
		dt.PreviewURL = *st.PreviewURL
	}

	return dt
}

func mapTracksToDomain(items []spotifyTrack) []domain.Track {
	tracks := make([]domain.Track, 0, len(items))
	for _, st := range items {
		// search pages contain null entries for unavailable items
		if st.ID == "" {
			continue
		}
		tracks = append(tracks, mapTrackToDomain(st))
	}
	return tracks
}

func mapArtistToDomain(sa spotifyArtist) domain.Artist {
	return domain.Artist{
		ID:     sa.ID,
		Name:   sa.Name,
		Genres: sa.Genres,
	}
}
