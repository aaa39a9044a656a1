package domain

import "strings"

// Artist represents a catalog artist. Genres are only populated by a full
// artist lookup; track payloads carry the simplified form.
type Artist struct {
	ID     string
	Name   string
	Genres []string
}

// Album is the owning album of a track.
type Album struct {
	ID          string
	Name        string
	ReleaseDate string // catalog precision varies: "2019", "2019-06" or "2019-06-14"
}

// Track represents a musical track in the domain layer.
type Track struct {
	ID          string
	Name        string
	Artists     []Artist
	Album       Album
	Popularity  int
	PreviewURL  string // optional
	ExternalURL string // optional, link to the track in the catalog's web player
}

// PrimaryArtist returns the first credited artist, or a zero Artist.
func (t Track) PrimaryArtist() Artist {
	if len(t.Artists) == 0 {
		return Artist{}
	}
	return t.Artists[0]
}

// ArtistNames joins every credited artist name with ", ".
func (t Track) ArtistNames() string {
	names := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		names = append(names, a.Name)
	}
	return strings.Join(names, ", ")
}

// ReleaseYear returns the four digit year of the album release date, or "".
func (t Track) ReleaseYear() string {
	if len(t.Album.ReleaseDate) < 4 {
		return ""
	}
	return t.Album.ReleaseDate[:4]
}

// Key identifies the recording independent of catalog id, so that a
// remaster or re-release of the same song collapses to one entry.
func (t Track) Key() string {
	return Normalize(t.PrimaryArtist().Name + " " + t.Name)
}

// SameArtist reports whether both artists are the same act. Ids are
// compared when both are known, otherwise names are compared fuzzily.
func SameArtist(a, b Artist) bool {
	if a.ID != "" && b.ID != "" {
		return a.ID == b.ID
	}
	na, nb := Normalize(a.Name), Normalize(b.Name)
	if na == "" || nb == "" {
		return false
	}
	return Similarity(na, nb) >= sameArtistThreshold
}
