package services

import (
	"fmt"
	"time"

	"github.com/zmb3/spotify/v2"

	"github.com/desertthunder/spotbak/internal/models"
	"github.com/desertthunder/spotbak/internal/shared"
)

// ConvertImages maps client images onto payloads. A zero dimension means "not reported".
func ConvertImages(images []spotify.Image) []models.ImagePayload {
	if len(images) == 0 {
		return nil
	}

	out := make([]models.ImagePayload, 0, len(images))
	for _, img := range images {
		out = append(out, models.ImagePayload{
			URL:    img.URL,
			Width:  dimension(int(img.Width)),
			Height: dimension(int(img.Height)),
		})
	}
	return out
}

func dimension(v int) *int {
	if v <= 0 {
		return nil
	}
	return &v
}

// ConvertSimpleArtist maps a simplified artist.
func ConvertSimpleArtist(a spotify.SimpleArtist) models.ArtistPayload {
	return models.ArtistPayload{ID: string(a.ID), Name: a.Name}
}

// ConvertFullArtist maps a full artist, including genres and followers.
func ConvertFullArtist(a spotify.FullArtist) models.ArtistPayload {
	p := ConvertSimpleArtist(a.SimpleArtist)
	p.Images = ConvertImages(a.Images)
	p.Details = &models.ArtistDetails{
		Genres:     a.Genres,
		Popularity: int(a.Popularity),
		Followers:  int(a.Followers.Count),
	}
	return p
}

func convertArtists(artists []spotify.SimpleArtist) []models.ArtistPayload {
	out := make([]models.ArtistPayload, 0, len(artists))
	for _, a := range artists {
		out = append(out, ConvertSimpleArtist(a))
	}
	return out
}

// ConvertSimpleAlbum maps a simplified album.
func ConvertSimpleAlbum(a spotify.SimpleAlbum) models.AlbumPayload {
	return models.AlbumPayload{
		ID:                   string(a.ID),
		Name:                 a.Name,
		AlbumType:            a.AlbumType,
		ReleaseDate:          a.ReleaseDate,
		ReleaseDatePrecision: a.ReleaseDatePrecision,
		Artists:              convertArtists(a.Artists),
		Images:               ConvertImages(a.Images),
		Markets:              a.AvailableMarkets,
	}
}

// ConvertFullAlbum maps a full album. Only the tracks present on a's first track page are
// included; callers page through the rest.
func ConvertFullAlbum(a *spotify.FullAlbum) models.AlbumPayload {
	p := ConvertSimpleAlbum(a.SimpleAlbum)
	p.TotalTracks = int(a.Tracks.Total)
	p.Tracks = ConvertSimpleTracks(a.Tracks.Tracks)
	p.Details = &models.AlbumDetails{
		Genres:     a.Genres,
		Popularity: int(a.Popularity),
		UPC:        a.ExternalIDs["upc"],
	}
	return p
}

// ConvertSimpleTrack maps a track listed inside an album.
func ConvertSimpleTrack(t spotify.SimpleTrack) models.TrackPayload {
	return models.TrackPayload{
		ID:          string(t.ID),
		Name:        t.Name,
		DurationMS:  int(t.Duration),
		DiscNumber:  int(t.DiscNumber),
		TrackNumber: int(t.TrackNumber),
		Explicit:    t.Explicit,
		Markets:     t.AvailableMarkets,
		Artists:     convertArtists(t.Artists),
	}
}

// ConvertSimpleTracks maps a page of album tracks.
func ConvertSimpleTracks(tracks []spotify.SimpleTrack) []models.TrackPayload {
	if len(tracks) == 0 {
		return nil
	}
	out := make([]models.TrackPayload, 0, len(tracks))
	for _, t := range tracks {
		out = append(out, ConvertSimpleTrack(t))
	}
	return out
}

// ConvertFullTrack maps a full track with its simplified parent album.
func ConvertFullTrack(t *spotify.FullTrack) models.TrackPayload {
	p := ConvertSimpleTrack(t.SimpleTrack)
	album := ConvertSimpleAlbum(t.Album)
	p.Album = &album
	p.Details = &models.TrackDetails{
		ISRC:       t.ExternalIDs["isrc"],
		Popularity: int(t.Popularity),
	}
	return p
}

// ConvertUser maps a public user, such as a playlist owner.
func ConvertUser(u spotify.User) models.UserPayload {
	return models.UserPayload{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		Followers:   int(u.Followers.Count),
		Images:      ConvertImages(u.Images),
	}
}

// ConvertPrivateUser maps the authenticated user's profile.
func ConvertPrivateUser(u *spotify.PrivateUser) models.UserPayload {
	p := ConvertUser(u.User)
	p.Email = u.Email
	p.Country = u.Country
	p.Product = u.Product
	return p
}

// ConvertSimplePlaylist maps a playlist from a listing.
func ConvertSimplePlaylist(p spotify.SimplePlaylist) models.PlaylistPayload {
	return models.PlaylistPayload{
		ID:            string(p.ID),
		Name:          p.Name,
		Description:   p.Description,
		SnapshotID:    p.SnapshotID,
		Public:        p.IsPublic,
		Collaborative: p.Collaborative,
		Owner:         ConvertUser(p.Owner),
		Images:        ConvertImages(p.Images),
	}
}

// ConvertFullPlaylist maps a full playlist together with its complete item list.
func ConvertFullPlaylist(p *spotify.FullPlaylist, items []spotify.PlaylistItem) models.PlaylistPayload {
	out := ConvertSimplePlaylist(p.SimplePlaylist)

	converted := make([]models.PlaylistItemPayload, 0, len(items))
	for _, item := range items {
		converted = append(converted, ConvertPlaylistItem(item))
	}

	out.Details = &models.PlaylistDetails{
		Followers: int(p.Followers.Count),
		Items:     converted,
	}
	return out
}

// ConvertPlaylistItem maps one playlist entry. Episodes leave Track nil, and an unparseable
// added_at leaves AddedAt nil.
func ConvertPlaylistItem(item spotify.PlaylistItem) models.PlaylistItemPayload {
	var p models.PlaylistItemPayload

	if item.Track.Track != nil {
		track := ConvertFullTrack(item.Track.Track)
		p.Track = &track
	}
	if item.AddedBy.ID != "" {
		user := ConvertUser(item.AddedBy)
		p.AddedBy = &user
	}
	if t, err := shared.ParseTimestamp(item.AddedAt); err == nil {
		p.AddedAt = &t
	}
	return p
}

// ConvertSavedAlbum maps a saved album entry. The add date is required.
func ConvertSavedAlbum(s spotify.SavedAlbum) (models.SavedAlbumPayload, error) {
	added, err := addedAt(s.AddedAt, string(s.ID))
	if err != nil {
		return models.SavedAlbumPayload{}, err
	}
	return models.SavedAlbumPayload{AddedAt: added, Album: ConvertFullAlbum(&s.FullAlbum)}, nil
}

// ConvertSavedTrack maps a saved track entry. The add date is required.
func ConvertSavedTrack(s spotify.SavedTrack) (models.SavedTrackPayload, error) {
	added, err := addedAt(s.AddedAt, string(s.ID))
	if err != nil {
		return models.SavedTrackPayload{}, err
	}
	return models.SavedTrackPayload{AddedAt: added, Track: ConvertFullTrack(&s.FullTrack)}, nil
}

func addedAt(raw, id string) (time.Time, error) {
	t, err := shared.ParseTimestamp(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("saved item %s: %w", id, err)
	}
	return t, nil
}
