package models

import "fmt"

// Ref points at one stored object.
type Ref struct {
	Kind Kind `json:"kind"`
	Key  Key  `json:"key"`
}

func (r Ref) String() string {
	return fmt.Sprintf("%s#%d", r.Kind, r.Key)
}

// Relation names a many-to-many association. The From side of an [Edge] owns it.
type Relation string

const (
	RelArtistGenre     Relation = "artist_genre"     // artist → genre
	RelAlbumGenre      Relation = "album_genre"      // album → genre
	RelAlbumArtist     Relation = "album_artist"     // album → artist (artist side is non-owning)
	RelTrackArtist     Relation = "track_artist"     // track → artist (artist side is non-owning)
	RelImage           Relation = "image"            // artist/album/playlist/user → image
	RelFollowsArtist   Relation = "follows_artist"   // user → artist
	RelFollowsPlaylist Relation = "follows_playlist" // user → playlist
)

var relationEnds = map[Relation]struct {
	from []Kind
	to   Kind
}{
	RelArtistGenre:     {from: []Kind{KindArtist}, to: KindGenre},
	RelAlbumGenre:      {from: []Kind{KindAlbum}, to: KindGenre},
	RelAlbumArtist:     {from: []Kind{KindAlbum}, to: KindArtist},
	RelTrackArtist:     {from: []Kind{KindTrack}, to: KindArtist},
	RelImage:           {from: []Kind{KindArtist, KindAlbum, KindPlaylist, KindUser}, to: KindImage},
	RelFollowsArtist:   {from: []Kind{KindUser}, to: KindArtist},
	RelFollowsPlaylist: {from: []Kind{KindUser}, to: KindPlaylist},
}

// Edge is one relationship instance. Position orders members of the owning side (album artists, images).
type Edge struct {
	From     Ref      `json:"from"`
	Relation Relation `json:"relation"`
	To       Ref      `json:"to"`
	Position int      `json:"position"`
}

// Validate checks that the edge joins the kinds its relation allows.
func (e Edge) Validate() error {
	ends, ok := relationEnds[e.Relation]
	if !ok {
		return fmt.Errorf("unknown relation %q", e.Relation)
	}
	if e.From.Key == 0 || e.To.Key == 0 {
		return fmt.Errorf("edge %s -%s-> %s: both ends must be persisted", e.From, e.Relation, e.To)
	}
	if e.To.Kind != ends.to {
		return fmt.Errorf("relation %s cannot point at %s", e.Relation, e.To.Kind)
	}
	for _, k := range ends.from {
		if e.From.Kind == k {
			return nil
		}
	}
	return fmt.Errorf("relation %s cannot start at %s", e.Relation, e.From.Kind)
}
