package spotify

// Wire shapes of the Spotify Web API. Only the fields the service reads are
// decoded.

type spotifyArtist struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Genres []string `json:"genres,omitempty"`
}

type spotifyAlbum struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ReleaseDate string `json:"release_date"`
}

type spotifyExternalURLs struct {
	Spotify string `json:"spotify"`
}

type spotifyTrack struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Artists      []spotifyArtist     `json:"artists"`
	Album        spotifyAlbum        `json:"album"`
	Popularity   int                 `json:"popularity"`
	PreviewURL   *string             `json:"preview_url"`
	ExternalURLs spotifyExternalURLs `json:"external_urls"`
}

type spotifyAudioFeatures struct {
	ID           string  `json:"id"`
	Danceability float64 `json:"danceability"`
	Energy       float64 `json:"energy"`
	Valence      float64 `json:"valence"`
	Tempo        float64 `json:"tempo"`
}

type relatedArtistsResponse struct {
	Artists []spotifyArtist `json:"artists"`
}

type topTracksResponse struct {
	Tracks []spotifyTrack `json:"tracks"`
}

type albumTracksResponse struct {
	Items []spotifyTrack `json:"items"`
}

type searchResponse struct {
	Tracks struct {
		Items []spotifyTrack `json:"items"`
	} `json:"tracks"`
}
