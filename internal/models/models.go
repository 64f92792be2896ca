// package models defines the data model for the library backup
package models

import (
	"strings"
	"time"

	"github.com/desertthunder/spotbak/internal/market"
	"github.com/desertthunder/spotbak/internal/shared"
)

// MaxExternalIDLength bounds the natural key stored in the identity registry.
const MaxExternalIDLength = 62

// Key is the surrogate key assigned on creation. Keys are never reused.
type Key int64

// Kind names a domain object type.
type Kind string

const (
	KindGenre        Kind = "genre"
	KindImage        Kind = "image"
	KindArtist       Kind = "artist"
	KindAlbum        Kind = "album"
	KindTrack        Kind = "track"
	KindPlaylist     Kind = "playlist"
	KindPlaylistItem Kind = "playlist_item"
	KindUser         Kind = "user"
	KindSavedAlbum   Kind = "saved_album"
	KindSavedTrack   Kind = "saved_track"
)

// HasExternalID reports whether objects of this kind are deduplicated by an upstream identifier.
//
// Images, playlist items and ledger entries are keyed by their relationships instead.
func (k Kind) HasExternalID() bool {
	switch k {
	case KindGenre, KindArtist, KindAlbum, KindTrack, KindPlaylist, KindUser:
		return true
	default:
		return false
	}
}

// Identity is a registry row: the unique internal record for one (kind, external id).
type Identity struct {
	Key        Key
	Kind       Kind
	ExternalID string
	CreatedAt  time.Time
}

// NormalizeExternalID trims id and rejects blank or over-long values with [shared.ErrInvalidIdentity].
func NormalizeExternalID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" || len(id) > MaxExternalIDLength {
		return "", shared.ErrInvalidIdentity
	}
	return id, nil
}

// State is the completeness of a catalog record.
type State int

const (
	Absent State = iota
	Simplified
	Full
)

func (s State) String() string {
	switch s {
	case Absent:
		return "absent"
	case Simplified:
		return "simplified"
	case Full:
		return "full"
	default:
		return "unknown"
	}
}

// StateOf maps a stored completeness flag to a [State].
func StateOf(isSimplified bool) State {
	if isSimplified {
		return Simplified
	}
	return Full
}

// Genre is a Spotify genre string. Its external id is the genre name itself.
type Genre struct {
	Key  Key    `json:"key"`
	Name string `json:"name"`
}

// Image is a cover or avatar. Width and Height are nil when upstream did not report them.
type Image struct {
	Key    Key    `json:"key"`
	URL    string `json:"url"`
	Width  *int   `json:"width,omitempty"`
	Height *int   `json:"height,omitempty"`
}

// Artist is a stored artist.
type Artist struct {
	Key          Key       `json:"key"`
	ExternalID   string    `json:"external_id"`
	Name         string    `json:"name"`
	Popularity   int       `json:"popularity"`
	Followers    int       `json:"followers"`
	IsSimplified bool      `json:"is_simplified"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Validate checks the attributes required to create the record.
func (a *Artist) Validate() error {
	if a.ExternalID == "" {
		return shared.MissingField(string(KindArtist), "external_id")
	}
	if strings.TrimSpace(a.Name) == "" {
		return shared.MissingField(string(KindArtist), "name")
	}
	return nil
}

// Album is a stored album. Markets is a value and is copied on every read.
type Album struct {
	Key                  Key                 `json:"key"`
	ExternalID           string              `json:"external_id"`
	Name                 string              `json:"name"`
	AlbumType            string              `json:"album_type"`
	ReleaseDate          string              `json:"release_date"`
	ReleaseDatePrecision string              `json:"release_date_precision"`
	TotalTracks          int                 `json:"total_tracks"`
	Label                string              `json:"label"`
	Popularity           int                 `json:"popularity"`
	UPC                  string              `json:"upc"`
	Markets              market.Availability `json:"available_markets"`
	IsSimplified         bool                `json:"is_simplified"`
	CreatedAt            time.Time           `json:"created_at"`
	UpdatedAt            time.Time           `json:"updated_at"`
}

// Validate checks the attributes required to create the record.
func (a *Album) Validate() error {
	if a.ExternalID == "" {
		return shared.MissingField(string(KindAlbum), "external_id")
	}
	if strings.TrimSpace(a.Name) == "" {
		return shared.MissingField(string(KindAlbum), "name")
	}
	return nil
}

// Track is a stored track. AlbumKey is zero when the album is not known.
type Track struct {
	Key          Key                 `json:"key"`
	ExternalID   string              `json:"external_id"`
	AlbumKey     Key                 `json:"album_key,omitempty"`
	Name         string              `json:"name"`
	DurationMS   int                 `json:"duration_ms"`
	DiscNumber   int                 `json:"disc_number"`
	TrackNumber  int                 `json:"track_number"`
	Explicit     bool                `json:"explicit"`
	ISRC         string              `json:"isrc"`
	Popularity   int                 `json:"popularity"`
	Markets      market.Availability `json:"available_markets"`
	IsSimplified bool                `json:"is_simplified"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// Validate checks the attributes required to create the record.
func (t *Track) Validate() error {
	if t.ExternalID == "" {
		return shared.MissingField(string(KindTrack), "external_id")
	}
	if strings.TrimSpace(t.Name) == "" {
		return shared.MissingField(string(KindTrack), "name")
	}
	return nil
}

// Playlist is a stored playlist. OwnerKey is the owning user.
type Playlist struct {
	Key           Key       `json:"key"`
	ExternalID    string    `json:"external_id"`
	OwnerKey      Key       `json:"owner_key,omitempty"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	SnapshotID    string    `json:"snapshot_id"`
	Public        bool      `json:"public"`
	Collaborative bool      `json:"collaborative"`
	Followers     int       `json:"followers"`
	IsSimplified  bool      `json:"is_simplified"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Validate checks the attributes required to create the record.
func (p *Playlist) Validate() error {
	if p.ExternalID == "" {
		return shared.MissingField(string(KindPlaylist), "external_id")
	}
	if strings.TrimSpace(p.Name) == "" {
		return shared.MissingField(string(KindPlaylist), "name")
	}
	return nil
}

// PlaylistItem places one track at one position of a playlist.
type PlaylistItem struct {
	Key         Key        `json:"key"`
	PlaylistKey Key        `json:"playlist_key"`
	TrackKey    Key        `json:"track_key"`
	Position    int        `json:"position"`
	AddedByKey  Key        `json:"added_by_key,omitempty"`
	AddedAt     *time.Time `json:"added_at,omitempty"`
}

// User is a Spotify account, either the backed-up user or a playlist owner/contributor.
type User struct {
	Key         Key       `json:"key"`
	ExternalID  string    `json:"external_id"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	Country     string    `json:"country"`
	Product     string    `json:"product"`
	Followers   int       `json:"followers"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Validate checks the attributes required to create the record.
func (u *User) Validate() error {
	if u.ExternalID == "" {
		return shared.MissingField(string(KindUser), "external_id")
	}
	return nil
}

// Name returns the display name, falling back to the external id.
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.ExternalID
}

// SavedItem is a ledger entry for a saved album or saved track.
type SavedItem struct {
	Key         Key        `json:"key"`
	Kind        Kind       `json:"kind"`
	ItemKey     Key        `json:"item_key"`
	UserKey     Key        `json:"user_key"`
	DateAdded   time.Time  `json:"date_added"`
	IsRemoved   bool       `json:"is_removed"`
	DateRemoved *time.Time `json:"date_removed,omitempty"`
}

// IsActive reports whether the entry currently counts as saved.
func (s *SavedItem) IsActive() bool {
	return !s.IsRemoved
}

// MarkRemoved soft-removes the entry at t.
func (s *SavedItem) MarkRemoved(t time.Time) {
	t = t.UTC()
	s.IsRemoved = true
	s.DateRemoved = &t
}

// Reactivate restores a removed entry with a new add date.
func (s *SavedItem) Reactivate(addedAt time.Time) {
	s.IsRemoved = false
	s.DateRemoved = nil
	s.DateAdded = addedAt.UTC()
}
