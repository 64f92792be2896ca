package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/spotbak/internal/models"
	"github.com/desertthunder/spotbak/internal/shared"
)

const (
	userJSON = `{"id":"listener","display_name":"Listener","email":"l@example.com","country":"US",
		"product":"premium","followers":{"total":3},"images":[{"url":"https://i/u","width":64,"height":64}]}`

	savedAlbumsJSON = `{"href":"","limit":50,"offset":0,"total":2,"next":"","items":[
		{"added_at":"2024-05-01T10:00:00Z","album":{"id":"a2","name":"Newer","album_type":"album",
			"available_markets":["US"],"artists":[{"id":"ar1","name":"Artist"}],"genres":[],
			"tracks":{"href":"","total":1,"next":"","items":[{"id":"t1","name":"One","track_number":1,"disc_number":1}]}}},
		{"added_at":"2023-05-01T10:00:00Z","album":{"id":"a1","name":"Older","album_type":"album",
			"artists":[{"id":"ar1","name":"Artist"}],"tracks":{"href":"","total":0,"next":"","items":[]}}}]}`

	savedTracksJSON = `{"href":"","limit":50,"offset":0,"total":1,"next":"","items":[
		{"added_at":"2024-02-01T00:00:00Z","track":{"id":"t9","name":"Nine","artists":[{"id":"ar2","name":"Other"}],
			"album":{"id":"a9","name":"Nine Album"},"external_ids":{"isrc":"X1"}}}]}`

	playlistsJSON = `{"href":"","limit":50,"offset":0,"total":1,"next":"","items":[
		{"id":"p1","name":"Mix","snapshot_id":"s1","public":true,"owner":{"id":"listener","display_name":"Listener"}}]}`

	// playlistJSON embeds the first page of items; %s is the url of the second page.
	playlistJSON = `{"id":"p1","name":"Mix","snapshot_id":"s1","public":true,
		"owner":{"id":"listener","display_name":"Listener"},"followers":{"total":7},
		"tracks":{"href":"","limit":2,"offset":0,"total":3,"next":"%s","items":[
			{"added_at":"2024-01-01T00:00:00Z","added_by":{"id":"listener"},
				"track":{"type":"track","id":"t1","name":"One","album":{"id":"a2","name":"Newer"}}},
			{"added_at":"2024-01-01T00:00:00Z","track":{"type":"episode","id":"e1","name":"Talk"}}]}}`

	playlistItemsJSON = `{"href":"","limit":2,"offset":2,"total":3,"next":"","items":[
		{"added_at":"2024-01-02T00:00:00Z","is_local":true,"track":{"type":"track","id":"","name":"Local File"}}]}`

	followingJSON = `{"artists":{"href":"","limit":50,"total":1,"next":"","cursors":{"after":""},"items":[
		{"id":"ar1","name":"Artist","genres":["shoegaze"],"popularity":40,"followers":{"total":100}}]}}`
)

// requestLog counts requests per path.
type requestLog struct {
	mu   sync.Mutex
	hits map[string]int
}

func (l *requestLog) count(path string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.hits[path]
}

func newTestService(t *testing.T) (*SpotifyService, *requestLog) {
	t.Helper()
	requests := &requestLog{hits: map[string]int{}}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.mu.Lock()
		requests.hits[r.URL.Path]++
		requests.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")

		switch {
		case r.URL.Path == "/me":
			w.Write([]byte(userJSON))
		case r.URL.Path == "/me/albums":
			w.Write([]byte(savedAlbumsJSON))
		case r.URL.Path == "/me/tracks":
			w.Write([]byte(savedTracksJSON))
		case r.URL.Path == "/me/playlists":
			w.Write([]byte(playlistsJSON))
		case r.URL.Path == "/me/following":
			w.Write([]byte(followingJSON))
		case r.URL.Path == "/playlists/p1":
			fmt.Fprintf(w, playlistJSON, "http://"+r.Host+"/playlists/p1/tracks?offset=2&limit=2")
		case strings.HasPrefix(r.URL.Path, "/playlists/p1/"):
			w.Write([]byte(playlistItemsJSON))
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":{"status":404,"message":"not found"}}`))
		}
	}))
	t.Cleanup(server.Close)

	return NewSpotifyServiceWithHTTP(server.Client(), server.URL+"/"), requests
}

func TestSpotifyService(t *testing.T) {
	ctx := context.Background()
	srv, requests := newTestService(t)

	t.Run("CurrentUser", func(t *testing.T) {
		user, err := srv.CurrentUser(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if user.ID != "listener" || user.Email != "l@example.com" || user.Product != "premium" {
			t.Errorf("unexpected user: %+v", user)
		}
		if len(user.Images) != 1 {
			t.Errorf("expected 1 image, got %d", len(user.Images))
		}
	})

	t.Run("SavedAlbums", func(t *testing.T) {
		t.Run("Visits Every Item", func(t *testing.T) {
			var got []models.SavedAlbumPayload
			err := srv.SavedAlbums(ctx, func(p models.SavedAlbumPayload) error {
				got = append(got, p)
				return nil
			})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(got) != 2 {
				t.Fatalf("expected 2 albums, got %d", len(got))
			}
			if got[0].Album.ID != "a2" || got[0].Album.Simplified() {
				t.Errorf("expected full album a2 first, got %+v", got[0].Album)
			}
			if len(got[0].Album.Tracks) != 1 {
				t.Errorf("expected album tracks, got %d", len(got[0].Album.Tracks))
			}
			if got[0].AddedAt.Year() != 2024 {
				t.Errorf("expected added_at in 2024, got %v", got[0].AddedAt)
			}
		})

		t.Run("Stop Paging", func(t *testing.T) {
			calls := 0
			err := srv.SavedAlbums(ctx, func(p models.SavedAlbumPayload) error {
				calls++
				return ErrStopPaging
			})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if calls != 1 {
				t.Errorf("expected 1 visit, got %d", calls)
			}
		})

		t.Run("Visitor Error", func(t *testing.T) {
			boom := errors.New("boom")
			err := srv.SavedAlbums(ctx, func(models.SavedAlbumPayload) error { return boom })
			if !errors.Is(err, boom) {
				t.Errorf("expected visitor error, got %v", err)
			}
		})
	})

	t.Run("SavedTracks", func(t *testing.T) {
		var got []models.SavedTrackPayload
		err := srv.SavedTracks(ctx, func(p models.SavedTrackPayload) error {
			got = append(got, p)
			return nil
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(got) != 1 || got[0].Track.ID != "t9" {
			t.Fatalf("unexpected tracks: %+v", got)
		}
		if got[0].Track.Album == nil || got[0].Track.Album.ID != "a9" {
			t.Errorf("expected parent album a9, got %+v", got[0].Track.Album)
		}
	})

	t.Run("Playlists", func(t *testing.T) {
		var got []models.PlaylistPayload
		err := srv.Playlists(ctx, func(p models.PlaylistPayload) error {
			got = append(got, p)
			return nil
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(got) != 1 || !got[0].Simplified() || got[0].Owner.ID != "listener" {
			t.Errorf("unexpected playlists: %+v", got)
		}
	})

	t.Run("Playlist", func(t *testing.T) {
		pl, err := srv.Playlist(ctx, "p1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if pl.Simplified() {
			t.Fatal("expected full playlist")
		}
		if pl.Details.Followers != 7 {
			t.Errorf("expected 7 followers, got %d", pl.Details.Followers)
		}
		if len(pl.Details.Items) != 3 {
			t.Fatalf("expected 3 items, got %d", len(pl.Details.Items))
		}

		items := pl.Details.Items
		if items[0].Track == nil || items[0].Track.ID != "t1" || items[0].AddedBy == nil {
			t.Errorf("expected track t1 added by listener, got %+v", items[0])
		}
		if items[1].Track != nil {
			t.Errorf("expected episode to carry no track, got %+v", items[1].Track)
		}
		if items[2].Track == nil || items[2].Track.ID != "" {
			t.Errorf("expected local track with blank id, got %+v", items[2].Track)
		}
		if n := requests.count("/playlists/p1/tracks"); n != 1 {
			t.Errorf("expected only the second page to be requested, got %d item requests", n)
		}
	})

	t.Run("FollowedArtists", func(t *testing.T) {
		var got []models.ArtistPayload
		err := srv.FollowedArtists(ctx, func(p models.ArtistPayload) error {
			got = append(got, p)
			return nil
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(got) != 1 || got[0].Simplified() || got[0].Details.Genres[0] != "shoegaze" {
			t.Errorf("unexpected artists: %+v", got)
		}
	})

	t.Run("API Error", func(t *testing.T) {
		_, err := srv.Album(ctx, "missing")
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})
}

func TestAuthenticator(t *testing.T) {
	cfg := shared.SpotifyConfig{ClientID: "id", ClientSecret: "secret"}

	t.Run("AuthURL", func(t *testing.T) {
		url, err := AuthURL(cfg, "state-123")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		for _, want := range []string{"accounts.spotify.com", "client_id=id", "state-123", "user-library-read"} {
			if !strings.Contains(url, want) {
				t.Errorf("expected auth URL to contain %q, got %s", want, url)
			}
		}
	})

	t.Run("Missing Credentials", func(t *testing.T) {
		_, err := NewAuthenticator(shared.SpotifyConfig{ClientID: "id"})
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("Missing Refresh Token", func(t *testing.T) {
		_, err := NewSpotifyServiceFromConfig(context.Background(), cfg)
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})
}
