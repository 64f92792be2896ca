package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"

	"github.com/desertthunder/spotbak/internal/models"
	"github.com/desertthunder/spotbak/internal/shared"
)

const (
	DefaultRedirectURI = "http://127.0.0.1:3000/callback"

	pageSize = 50
)

// Scopes are the read-only scopes a backup needs.
var Scopes = []string{
	spotifyauth.ScopeUserReadPrivate,
	spotifyauth.ScopeUserReadEmail,
	spotifyauth.ScopeUserLibraryRead,
	spotifyauth.ScopeUserFollowRead,
	spotifyauth.ScopePlaylistReadPrivate,
	spotifyauth.ScopePlaylistReadCollaborative,
}

// NewAuthenticator builds the OAuth2 authenticator for the configured application.
func NewAuthenticator(cfg shared.SpotifyConfig) (*spotifyauth.Authenticator, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("%w: spotify client_id and client_secret are required", shared.ErrMissingCredentials)
	}

	redirect := cfg.RedirectURI
	if redirect == "" {
		redirect = DefaultRedirectURI
	}

	return spotifyauth.New(
		spotifyauth.WithClientID(cfg.ClientID),
		spotifyauth.WithClientSecret(cfg.ClientSecret),
		spotifyauth.WithRedirectURL(redirect),
		spotifyauth.WithScopes(Scopes...),
	), nil
}

// AuthURL returns the consent page URL for state.
func AuthURL(cfg shared.SpotifyConfig, state string) (string, error) {
	auth, err := NewAuthenticator(cfg)
	if err != nil {
		return "", err
	}
	return auth.AuthURL(state, oauth2.AccessTypeOffline), nil
}

// Exchange trades an authorization code for a token.
func Exchange(ctx context.Context, cfg shared.SpotifyConfig, code string) (*oauth2.Token, error) {
	auth, err := NewAuthenticator(cfg)
	if err != nil {
		return nil, err
	}

	token, err := auth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}
	return token, nil
}

// SpotifyService implements [Service] on top of the Spotify Web API client.
type SpotifyService struct {
	client *spotify.Client
	logger *log.Logger
}

// Option configures a [SpotifyService].
type Option func(*SpotifyService)

// WithLogger sets the service logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *SpotifyService) { s.logger = logger }
}

// NewSpotifyService wraps an authenticated client.
func NewSpotifyService(client *spotify.Client, opts ...Option) *SpotifyService {
	s := &SpotifyService{client: client, logger: shared.DiscardLogger()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewSpotifyServiceFromConfig builds a service from the stored refresh token. The token is
// refreshed on first use.
func NewSpotifyServiceFromConfig(ctx context.Context, cfg shared.SpotifyConfig, opts ...Option) (*SpotifyService, error) {
	auth, err := NewAuthenticator(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.RefreshToken == "" {
		return nil, fmt.Errorf("%w: run `spotbak auth url` first", shared.ErrNotAuthenticated)
	}

	token := &oauth2.Token{RefreshToken: cfg.RefreshToken, Expiry: time.Now().Add(-time.Minute)}
	return NewSpotifyService(spotify.New(auth.Client(ctx, token)), opts...), nil
}

// NewSpotifyServiceWithHTTP builds a service that talks to baseURL with httpClient.
func NewSpotifyServiceWithHTTP(httpClient *http.Client, baseURL string, opts ...Option) *SpotifyService {
	return NewSpotifyService(spotify.New(httpClient, spotify.WithBaseURL(baseURL)), opts...)
}

func apiError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", shared.ErrAPIRequest, op, err)
}

// advance loads the page after the current one into page. It reports false once the listing is
// exhausted.
func (s *SpotifyService) advance(ctx context.Context, op string, next func(context.Context) error) (bool, error) {
	err := next(ctx)
	if errors.Is(err, spotify.ErrNoMorePages) {
		return false, nil
	}
	if err != nil {
		return false, apiError(op, err)
	}
	return true, nil
}

// CurrentUser returns the authenticated user's profile.
func (s *SpotifyService) CurrentUser(ctx context.Context) (*models.UserPayload, error) {
	u, err := s.client.CurrentUser(ctx)
	if err != nil {
		return nil, apiError("current user", err)
	}
	p := ConvertPrivateUser(u)
	return &p, nil
}

// SavedAlbums lists the user's saved albums. Albums with more tracks than the first page holds
// are completed with extra track requests.
func (s *SpotifyService) SavedAlbums(ctx context.Context, visit func(models.SavedAlbumPayload) error) error {
	page, err := s.client.CurrentUsersAlbums(ctx, spotify.Limit(pageSize))
	if err != nil {
		return apiError("saved albums", err)
	}

	for {
		for _, saved := range page.Albums {
			p, err := ConvertSavedAlbum(saved)
			if err != nil {
				s.logger.Warn("skipping saved album", "error", err)
				continue
			}
			if saved.Tracks.Next != "" {
				rest, err := s.albumTracks(ctx, &saved.Tracks)
				if err != nil {
					return err
				}
				p.Album.Tracks = append(p.Album.Tracks, rest...)
			}

			more, err := visitAll([]models.SavedAlbumPayload{p}, visit)
			if err != nil || !more {
				return err
			}
		}

		more, err := s.advance(ctx, "saved albums", func(ctx context.Context) error { return s.client.NextPage(ctx, page) })
		if err != nil || !more {
			return err
		}
	}
}

// SavedTracks lists the user's saved tracks.
func (s *SpotifyService) SavedTracks(ctx context.Context, visit func(models.SavedTrackPayload) error) error {
	page, err := s.client.CurrentUsersTracks(ctx, spotify.Limit(pageSize))
	if err != nil {
		return apiError("saved tracks", err)
	}

	for {
		items := make([]models.SavedTrackPayload, 0, len(page.Tracks))
		for _, saved := range page.Tracks {
			p, err := ConvertSavedTrack(saved)
			if err != nil {
				s.logger.Warn("skipping saved track", "error", err)
				continue
			}
			items = append(items, p)
		}

		more, err := visitAll(items, visit)
		if err != nil || !more {
			return err
		}

		more, err = s.advance(ctx, "saved tracks", func(ctx context.Context) error { return s.client.NextPage(ctx, page) })
		if err != nil || !more {
			return err
		}
	}
}

// Playlists lists the playlists in the user's library, owned and followed.
func (s *SpotifyService) Playlists(ctx context.Context, visit func(models.PlaylistPayload) error) error {
	page, err := s.client.CurrentUsersPlaylists(ctx, spotify.Limit(pageSize))
	if err != nil {
		return apiError("playlists", err)
	}

	for {
		items := make([]models.PlaylistPayload, 0, len(page.Playlists))
		for _, pl := range page.Playlists {
			items = append(items, ConvertSimplePlaylist(pl))
		}

		more, err := visitAll(items, visit)
		if err != nil || !more {
			return err
		}

		more, err = s.advance(ctx, "playlists", func(ctx context.Context) error { return s.client.NextPage(ctx, page) })
		if err != nil || !more {
			return err
		}
	}
}

// Playlist returns the full playlist with every item. The first page of items comes embedded
// in the playlist object; only the pages after it are requested.
func (s *SpotifyService) Playlist(ctx context.Context, id string) (*models.PlaylistPayload, error) {
	pl, err := s.client.GetPlaylist(ctx, spotify.ID(id))
	if err != nil {
		return nil, apiError("playlist "+id, err)
	}

	items := make([]spotify.PlaylistItem, 0, len(pl.Tracks.Tracks))
	for _, t := range pl.Tracks.Tracks {
		items = append(items, playlistItem(t))
	}

	page := &spotify.PlaylistItemPage{}
	page.Next = pl.Tracks.Next
	for {
		more, err := s.advance(ctx, "playlist items "+id, func(ctx context.Context) error { return s.client.NextPage(ctx, page) })
		if err != nil {
			return nil, err
		}
		if !more {
			break
		}
		items = append(items, page.Items...)
	}

	p := ConvertFullPlaylist(pl, items)
	s.logger.Debug("fetched playlist", "id", id, "items", len(items))
	return &p, nil
}

// playlistItem lifts an entry of the embedded track page into the track/episode union. Episodes
// decode as tracks there and are dropped, keeping their position.
func playlistItem(t spotify.PlaylistTrack) spotify.PlaylistItem {
	item := spotify.PlaylistItem{AddedAt: t.AddedAt, AddedBy: t.AddedBy, IsLocal: t.IsLocal}
	if t.Track.Type != "episode" {
		track := t.Track
		item.Track.Track = &track
	}
	return item
}

// FollowedArtists lists the artists the user follows. The listing is cursor based.
func (s *SpotifyService) FollowedArtists(ctx context.Context, visit func(models.ArtistPayload) error) error {
	opts := []spotify.RequestOption{spotify.Limit(pageSize)}

	for {
		page, err := s.client.CurrentUsersFollowedArtists(ctx, opts...)
		if err != nil {
			return apiError("followed artists", err)
		}

		items := make([]models.ArtistPayload, 0, len(page.Artists))
		for _, a := range page.Artists {
			items = append(items, ConvertFullArtist(a))
		}

		more, err := visitAll(items, visit)
		if err != nil || !more {
			return err
		}

		if page.Cursor.After == "" || len(page.Artists) == 0 {
			return nil
		}
		opts = []spotify.RequestOption{spotify.Limit(pageSize), spotify.After(page.Cursor.After)}
	}
}

// Album returns the full album with every track.
func (s *SpotifyService) Album(ctx context.Context, id string) (*models.AlbumPayload, error) {
	a, err := s.client.GetAlbum(ctx, spotify.ID(id))
	if err != nil {
		return nil, apiError("album "+id, err)
	}

	p := ConvertFullAlbum(a)
	if a.Tracks.Next != "" {
		rest, err := s.albumTracks(ctx, &a.Tracks)
		if err != nil {
			return nil, err
		}
		p.Tracks = append(p.Tracks, rest...)
	}
	return &p, nil
}

// albumTracks pages through the remainder of an album's track listing.
func (s *SpotifyService) albumTracks(ctx context.Context, page *spotify.SimpleTrackPage) ([]models.TrackPayload, error) {
	var out []models.TrackPayload
	for {
		more, err := s.advance(ctx, "album tracks", func(ctx context.Context) error { return s.client.NextPage(ctx, page) })
		if err != nil || !more {
			return out, err
		}
		out = append(out, ConvertSimpleTracks(page.Tracks)...)
	}
}
