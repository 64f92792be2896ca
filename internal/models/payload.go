package models

import "time"

// ImagePayload is an upstream image. Width and Height are nil when not reported.
type ImagePayload struct {
	URL    string
	Width  *int
	Height *int
}

// Area returns width × height and whether both dimensions are present and positive.
func (p ImagePayload) Area() (int, bool) {
	if p.Width == nil || p.Height == nil || *p.Width <= 0 || *p.Height <= 0 {
		return 0, false
	}
	return *p.Width * *p.Height, true
}

// ArtistPayload is an upstream artist. Details is nil for the simplified shape.
type ArtistPayload struct {
	ID      string
	Name    string
	Images  []ImagePayload
	Details *ArtistDetails
}

// ArtistDetails holds the attributes only present on a full artist.
type ArtistDetails struct {
	Genres     []string
	Popularity int
	Followers  int
}

// Simplified reports whether p is the partial shape.
func (p ArtistPayload) Simplified() bool { return p.Details == nil }

// AlbumPayload is an upstream album. Tracks is optional and only persisted on request.
type AlbumPayload struct {
	ID                   string
	Name                 string
	AlbumType            string
	ReleaseDate          string
	ReleaseDatePrecision string
	TotalTracks          int
	Artists              []ArtistPayload
	Images               []ImagePayload
	Markets              []string
	Tracks               []TrackPayload
	Details              *AlbumDetails
}

// AlbumDetails holds the attributes only present on a full album.
type AlbumDetails struct {
	Genres     []string
	Label      string
	Popularity int
	UPC        string
}

// Simplified reports whether p is the partial shape.
func (p AlbumPayload) Simplified() bool { return p.Details == nil }

// TrackPayload is an upstream track. Album is nil for tracks listed inside an album.
type TrackPayload struct {
	ID          string
	Name        string
	DurationMS  int
	DiscNumber  int
	TrackNumber int
	Explicit    bool
	Markets     []string
	Artists     []ArtistPayload
	Album       *AlbumPayload
	Details     *TrackDetails
}

// TrackDetails holds the attributes only present on a full track.
type TrackDetails struct {
	ISRC       string
	Popularity int
}

// Simplified reports whether p is the partial shape.
func (p TrackPayload) Simplified() bool { return p.Details == nil }

// UserPayload is an upstream user profile; playlist owners only carry ID and DisplayName.
type UserPayload struct {
	ID          string
	DisplayName string
	Email       string
	Country     string
	Product     string
	Followers   int
	Images      []ImagePayload
}

// PlaylistPayload is an upstream playlist. Details (with the item list) is nil for the simplified shape.
type PlaylistPayload struct {
	ID            string
	Name          string
	Description   string
	SnapshotID    string
	Public        bool
	Collaborative bool
	Owner         UserPayload
	Images        []ImagePayload
	Details       *PlaylistDetails
}

// PlaylistDetails holds the attributes only present on a full playlist.
type PlaylistDetails struct {
	Followers int
	Items     []PlaylistItemPayload
}

// Simplified reports whether p is the partial shape.
func (p PlaylistPayload) Simplified() bool { return p.Details == nil }

// PlaylistItemPayload is one entry of a playlist. Track is nil for episodes and unavailable items.
type PlaylistItemPayload struct {
	Track   *TrackPayload
	AddedBy *UserPayload
	AddedAt *time.Time
}

// SavedAlbumPayload is an entry of the user's saved albums.
type SavedAlbumPayload struct {
	AddedAt time.Time
	Album   AlbumPayload
}

// SavedTrackPayload is an entry of the user's saved tracks.
type SavedTrackPayload struct {
	AddedAt time.Time
	Track   TrackPayload
}
