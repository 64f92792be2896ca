package services

import (
	"context"
	"errors"

	"github.com/desertthunder/spotbak/internal/models"
)

// ErrStopPaging can be returned by a visitor to stop a listing early without failing it.
var ErrStopPaging = errors.New("stop paging")

// Service is the read-only view of a user's library on the upstream provider.
//
// Listing methods call visit once per item, in the provider's order, and return the first
// error a visitor returns other than [ErrStopPaging].
type Service interface {
	// CurrentUser returns the authenticated user's profile.
	CurrentUser(ctx context.Context) (*models.UserPayload, error)

	// SavedAlbums lists the user's saved albums, most recently added first.
	SavedAlbums(ctx context.Context, visit func(models.SavedAlbumPayload) error) error

	// SavedTracks lists the user's saved tracks, most recently added first.
	SavedTracks(ctx context.Context, visit func(models.SavedTrackPayload) error) error

	// Playlists lists the playlists in the user's library as simplified payloads.
	Playlists(ctx context.Context, visit func(models.PlaylistPayload) error) error

	// Playlist returns the full playlist with every item.
	Playlist(ctx context.Context, id string) (*models.PlaylistPayload, error)

	// FollowedArtists lists the artists the user follows as full payloads.
	FollowedArtists(ctx context.Context, visit func(models.ArtistPayload) error) error

	// Album returns the full album with every track.
	Album(ctx context.Context, id string) (*models.AlbumPayload, error)
}

// visitAll calls visit for each item and reports whether paging should continue.
func visitAll[T any](items []T, visit func(T) error) (bool, error) {
	for _, item := range items {
		if err := visit(item); err != nil {
			if errors.Is(err, ErrStopPaging) {
				return false, nil
			}
			return false, err
		}
	}
	return true, nil
}
