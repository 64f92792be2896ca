package catalog

import (
	"context"

	"github.com/desertthunder/spotbak/internal/models"
	"github.com/desertthunder/spotbak/internal/repositories"
)

// Artist returns the stored artist for a Spotify id.
func (e *Engine) Artist(ctx context.Context, externalID string) (*models.Artist, error) {
	return repositories.NewArtistRepository(e.db).GetByExternalID(ctx, externalID)
}

// Album returns the stored album for a Spotify id.
func (e *Engine) Album(ctx context.Context, externalID string) (*models.Album, error) {
	return repositories.NewAlbumRepository(e.db).GetByExternalID(ctx, externalID)
}

// Track returns the stored track for a Spotify id.
func (e *Engine) Track(ctx context.Context, externalID string) (*models.Track, error) {
	return repositories.NewTrackRepository(e.db).GetByExternalID(ctx, externalID)
}

// Playlist returns the stored playlist for a Spotify id.
func (e *Engine) Playlist(ctx context.Context, externalID string) (*models.Playlist, error) {
	return repositories.NewPlaylistRepository(e.db).GetByExternalID(ctx, externalID)
}

// User returns the stored user for a Spotify id.
func (e *Engine) User(ctx context.Context, externalID string) (*models.User, error) {
	return repositories.NewUserRepository(e.db).GetByExternalID(ctx, externalID)
}

// Related returns the edges owned by from for rel.
func (e *Engine) Related(ctx context.Context, from models.Ref, rel models.Relation) ([]models.Edge, error) {
	return repositories.NewEdgeRepository(e.db).Related(ctx, from, rel)
}

// Referrers returns the edges pointing at to for rel: the non-owning side of the relationship.
func (e *Engine) Referrers(ctx context.Context, to models.Ref, rel models.Relation) ([]models.Edge, error) {
	return repositories.NewEdgeRepository(e.db).Referrers(ctx, to, rel)
}

func (e *Engine) relatedKeys(ctx context.Context, from models.Ref, rel models.Relation) ([]models.Key, error) {
	edges, err := e.Related(ctx, from, rel)
	if err != nil {
		return nil, err
	}
	return repositories.Keys(edges, true), nil
}

func (e *Engine) referrerKeys(ctx context.Context, to models.Ref, rel models.Relation) ([]models.Key, error) {
	edges, err := e.Referrers(ctx, to, rel)
	if err != nil {
		return nil, err
	}
	return repositories.Keys(edges, false), nil
}

// AlbumGenres returns the genres of an album.
func (e *Engine) AlbumGenres(ctx context.Context, album models.Key) ([]*models.Genre, error) {
	keys, err := e.relatedKeys(ctx, albumRef(album), models.RelAlbumGenre)
	if err != nil {
		return nil, err
	}
	return repositories.NewGenreRepository(e.db).ListByKeys(ctx, keys)
}

// GenreAlbums returns the albums tagged with a genre.
func (e *Engine) GenreAlbums(ctx context.Context, genre models.Key) ([]*models.Album, error) {
	keys, err := e.referrerKeys(ctx, genreRef(genre), models.RelAlbumGenre)
	if err != nil {
		return nil, err
	}
	return repositories.NewAlbumRepository(e.db).ListByKeys(ctx, keys)
}

// ArtistGenres returns the genres of an artist.
func (e *Engine) ArtistGenres(ctx context.Context, artist models.Key) ([]*models.Genre, error) {
	keys, err := e.relatedKeys(ctx, artistRef(artist), models.RelArtistGenre)
	if err != nil {
		return nil, err
	}
	return repositories.NewGenreRepository(e.db).ListByKeys(ctx, keys)
}

// GenreArtists returns the artists tagged with a genre.
func (e *Engine) GenreArtists(ctx context.Context, genre models.Key) ([]*models.Artist, error) {
	keys, err := e.referrerKeys(ctx, genreRef(genre), models.RelArtistGenre)
	if err != nil {
		return nil, err
	}
	return repositories.NewArtistRepository(e.db).ListByKeys(ctx, keys)
}

// AlbumArtists returns the credited artists of an album in credit order.
func (e *Engine) AlbumArtists(ctx context.Context, album models.Key) ([]*models.Artist, error) {
	keys, err := e.relatedKeys(ctx, albumRef(album), models.RelAlbumArtist)
	if err != nil {
		return nil, err
	}
	return repositories.NewArtistRepository(e.db).ListByKeys(ctx, keys)
}

// ArtistAlbums returns the albums that credit an artist.
func (e *Engine) ArtistAlbums(ctx context.Context, artist models.Key) ([]*models.Album, error) {
	keys, err := e.referrerKeys(ctx, artistRef(artist), models.RelAlbumArtist)
	if err != nil {
		return nil, err
	}
	return repositories.NewAlbumRepository(e.db).ListByKeys(ctx, keys)
}

// TrackArtists returns the credited artists of a track in credit order.
func (e *Engine) TrackArtists(ctx context.Context, track models.Key) ([]*models.Artist, error) {
	keys, err := e.relatedKeys(ctx, trackRef(track), models.RelTrackArtist)
	if err != nil {
		return nil, err
	}
	return repositories.NewArtistRepository(e.db).ListByKeys(ctx, keys)
}

// ArtistTracks returns the tracks that credit an artist.
func (e *Engine) ArtistTracks(ctx context.Context, artist models.Key) ([]*models.Track, error) {
	keys, err := e.referrerKeys(ctx, artistRef(artist), models.RelTrackArtist)
	if err != nil {
		return nil, err
	}
	return repositories.NewTrackRepository(e.db).ListByKeys(ctx, keys)
}

// AlbumTracks returns the tracks of an album in disc and track order.
func (e *Engine) AlbumTracks(ctx context.Context, album models.Key) ([]*models.Track, error) {
	return repositories.NewTrackRepository(e.db).ListByAlbum(ctx, album)
}

// PlaylistItems returns the entries of a playlist in position order.
func (e *Engine) PlaylistItems(ctx context.Context, playlist models.Key) ([]*models.PlaylistItem, error) {
	return repositories.NewPlaylistItemRepository(e.db).ListByPlaylist(ctx, playlist)
}

// OwnedPlaylists returns the playlists owned by a user.
func (e *Engine) OwnedPlaylists(ctx context.Context, user models.Key) ([]*models.Playlist, error) {
	return repositories.NewPlaylistRepository(e.db).ListByOwner(ctx, user)
}

// FollowedPlaylists returns the playlists a user follows.
func (e *Engine) FollowedPlaylists(ctx context.Context, user models.Key) ([]*models.Playlist, error) {
	keys, err := e.relatedKeys(ctx, userRef(user), models.RelFollowsPlaylist)
	if err != nil {
		return nil, err
	}
	return repositories.NewPlaylistRepository(e.db).ListByKeys(ctx, keys)
}

// PlaylistFollowers returns the users that follow a playlist.
func (e *Engine) PlaylistFollowers(ctx context.Context, playlist models.Key) ([]*models.User, error) {
	keys, err := e.referrerKeys(ctx, playlistRef(playlist), models.RelFollowsPlaylist)
	if err != nil {
		return nil, err
	}
	return repositories.NewUserRepository(e.db).ListByKeys(ctx, keys)
}

// FollowedArtists returns the artists a user follows.
func (e *Engine) FollowedArtists(ctx context.Context, user models.Key) ([]*models.Artist, error) {
	keys, err := e.relatedKeys(ctx, userRef(user), models.RelFollowsArtist)
	if err != nil {
		return nil, err
	}
	return repositories.NewArtistRepository(e.db).ListByKeys(ctx, keys)
}

// Images returns the images attached to owner.
func (e *Engine) Images(ctx context.Context, owner models.Ref) ([]*models.Image, error) {
	keys, err := e.relatedKeys(ctx, owner, models.RelImage)
	if err != nil {
		return nil, err
	}
	return repositories.NewImageRepository(e.db).ListByKeys(ctx, keys)
}
