package catalog

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/desertthunder/spotbak/internal/images"
	"github.com/desertthunder/spotbak/internal/models"
	"github.com/desertthunder/spotbak/internal/shared"
)

func setupEngine(t *testing.T, opts ...Option) (*Engine, *sql.DB) {
	t.Helper()
	return setupEngineAt(t, ":memory:", opts...)
}

func setupEngineAt(t *testing.T, path string, opts ...Option) (*Engine, *sql.DB) {
	t.Helper()

	db, err := shared.NewDatabase(path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, shared.RunMigrations(db))

	return NewEngine(db, opts...), db
}

func countRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func dims(w, h int) (*int, *int) { return &w, &h }

func image(url string, w, h int) models.ImagePayload {
	pw, ph := dims(w, h)
	return models.ImagePayload{URL: url, Width: pw, Height: ph}
}

func simpleArtist(id, name string) models.ArtistPayload {
	return models.ArtistPayload{ID: id, Name: name}
}

func simpleAlbum(id, name string, artists ...models.ArtistPayload) models.AlbumPayload {
	return models.AlbumPayload{
		ID:          id,
		Name:        name,
		AlbumType:   "album",
		ReleaseDate: "1997-05-21",
		TotalTracks: 2,
		Artists:     artists,
		Markets:     []string{"GB", "US"},
	}
}

func fullAlbum(id, name string, genres []string, artists ...models.ArtistPayload) models.AlbumPayload {
	p := simpleAlbum(id, name, artists...)
	p.Details = &models.AlbumDetails{Genres: genres, Label: "Parlophone", Popularity: 77, UPC: "724385522925"}
	return p
}

func fullTrack(id, name string, album *models.AlbumPayload, artists ...models.ArtistPayload) models.TrackPayload {
	return models.TrackPayload{
		ID:          id,
		Name:        name,
		DurationMS:  284000,
		DiscNumber:  1,
		TrackNumber: 1,
		Artists:     artists,
		Album:       album,
		Markets:     []string{"US"},
		Details:     &models.TrackDetails{ISRC: "GBAYE9700321", Popularity: 70},
	}
}

func TestUpsertDedup(t *testing.T) {
	ctx := context.Background()
	e, db := setupEngine(t)

	first, err := e.UpsertArtist(ctx, simpleArtist("4Z8W4fKeB5YxbusRsdQVPb", "Radiohead"))
	require.NoError(t, err)
	second, err := e.UpsertArtist(ctx, simpleArtist("4Z8W4fKeB5YxbusRsdQVPb", "Radiohead"))
	require.NoError(t, err)

	assert.Equal(t, first.Key, second.Key)
	assert.Equal(t, 1, countRows(t, db, "artists"))
	assert.Equal(t, 1, countRows(t, db, "identities"))
}

func TestMonotonicUpgrade(t *testing.T) {
	ctx := context.Background()
	e, _ := setupEngine(t)

	created, err := e.UpsertAlbum(ctx, simpleAlbum("6dVIqQ8qmQ5GBnJ9shOYGE", "OK Computer"))
	require.NoError(t, err)
	assert.True(t, created.IsSimplified)

	upgraded, err := e.UpsertAlbum(ctx, fullAlbum("6dVIqQ8qmQ5GBnJ9shOYGE", "OK Computer", []string{"art rock"}))
	require.NoError(t, err)
	assert.Equal(t, created.Key, upgraded.Key)
	assert.False(t, upgraded.IsSimplified)
	assert.Equal(t, "Parlophone", upgraded.Label)

	regress := simpleAlbum("6dVIqQ8qmQ5GBnJ9shOYGE", "OK Computer (partial)")
	kept, err := e.UpsertAlbum(ctx, regress)
	require.NoError(t, err)
	assert.False(t, kept.IsSimplified, "a full record must never become simplified")
	assert.Equal(t, "OK Computer", kept.Name, "a partial payload must not overwrite a full record")

	stored, err := e.Album(ctx, "6dVIqQ8qmQ5GBnJ9shOYGE")
	require.NoError(t, err)
	assert.False(t, stored.IsSimplified)
	assert.Equal(t, "724385522925", stored.UPC)
}

func TestUpgradeIdempotence(t *testing.T) {
	ctx := context.Background()
	e, db := setupEngine(t)

	radiohead := simpleArtist("4Z8W4fKeB5YxbusRsdQVPb", "Radiohead")
	payload := fullAlbum("6dVIqQ8qmQ5GBnJ9shOYGE", "OK Computer", []string{"art rock", "alternative rock"}, radiohead)
	payload.Images = []models.ImagePayload{image("https://i.scdn.co/image/okc", 640, 640)}

	_, err := e.UpsertAlbum(ctx, payload)
	require.NoError(t, err)
	after1, err := e.Album(ctx, payload.ID)
	require.NoError(t, err)
	edges1 := countRows(t, db, "edges")

	_, err = e.UpsertAlbum(ctx, payload)
	require.NoError(t, err)
	after2, err := e.Album(ctx, payload.ID)
	require.NoError(t, err)

	assert.Equal(t, after1, after2)
	assert.Equal(t, edges1, countRows(t, db, "edges"))
	assert.Equal(t, 2, countRows(t, db, "genres"))
	assert.Equal(t, 1, countRows(t, db, "images"))
}

func TestBidirectionalRelationships(t *testing.T) {
	ctx := context.Background()
	e, _ := setupEngine(t)

	artist := simpleArtist("0k17h0D3J5VfsdmQ1iZtE9", "Pink Floyd")
	album, err := e.UpsertAlbum(ctx, fullAlbum("4LH4d3cOWNNsVw41Gqt2kv", "The Dark Side of the Moon", []string{"progressive rock"}, artist))
	require.NoError(t, err)

	genres, err := e.AlbumGenres(ctx, album.Key)
	require.NoError(t, err)
	require.Len(t, genres, 1)
	assert.Equal(t, "progressive rock", genres[0].Name)

	albums, err := e.GenreAlbums(ctx, genres[0].Key)
	require.NoError(t, err)
	require.Len(t, albums, 1)
	assert.Equal(t, album.Key, albums[0].Key)

	credited, err := e.AlbumArtists(ctx, album.Key)
	require.NoError(t, err)
	require.Len(t, credited, 1)

	backRefs, err := e.ArtistAlbums(ctx, credited[0].Key)
	require.NoError(t, err)
	require.Len(t, backRefs, 1)
	assert.Equal(t, album.Key, backRefs[0].Key)
}

func TestArtistGenresAndImages(t *testing.T) {
	ctx := context.Background()
	e, _ := setupEngine(t, WithImagePolicy(images.All))

	p := models.ArtistPayload{
		ID:   "6olE6TJLqED3rqDCT0FyPh",
		Name: "Nirvana",
		Images: []models.ImagePayload{
			image("https://i.scdn.co/image/640", 640, 640),
			image("https://i.scdn.co/image/160", 160, 160),
			image("https://i.scdn.co/image/640", 640, 640),
		},
		Details: &models.ArtistDetails{Genres: []string{"grunge", " ", "rock"}, Popularity: 80, Followers: 1000},
	}

	a, err := e.UpsertArtist(ctx, p)
	require.NoError(t, err)
	assert.False(t, a.IsSimplified)
	assert.Equal(t, 1000, a.Followers)

	genres, err := e.ArtistGenres(ctx, a.Key)
	require.NoError(t, err)
	require.Len(t, genres, 2, "blank genre names are skipped")
	assert.Equal(t, "grunge", genres[0].Name)

	tagged, err := e.GenreArtists(ctx, genres[1].Key)
	require.NoError(t, err)
	require.Len(t, tagged, 1)
	assert.Equal(t, a.Key, tagged[0].Key)

	imgs, err := e.Images(ctx, models.Ref{Kind: models.KindArtist, Key: a.Key})
	require.NoError(t, err)
	assert.Len(t, imgs, 2)
}

func TestImagePolicy(t *testing.T) {
	ctx := context.Background()
	candidates := []models.ImagePayload{
		image("https://i.scdn.co/image/big", 100, 100),
		image("https://i.scdn.co/image/small", 50, 50),
		image("https://i.scdn.co/image/broken", 0, 0),
	}

	tc := []struct {
		policy images.Policy
		want   []string
	}{
		{images.Largest, []string{"https://i.scdn.co/image/big"}},
		{images.Smallest, []string{"https://i.scdn.co/image/small"}},
		{images.None, nil},
		{images.All, []string{"https://i.scdn.co/image/big", "https://i.scdn.co/image/small", "https://i.scdn.co/image/broken"}},
	}

	for _, tt := range tc {
		t.Run(tt.policy.String(), func(t *testing.T) {
			e, _ := setupEngine(t, WithImagePolicy(tt.policy))

			p := simpleAlbum("album", "Album")
			p.Images = candidates
			album, err := e.UpsertAlbum(ctx, p)
			require.NoError(t, err)

			imgs, err := e.Images(ctx, models.Ref{Kind: models.KindAlbum, Key: album.Key})
			require.NoError(t, err)

			var got []string
			for _, img := range imgs {
				got = append(got, img.URL)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBlankIdentity(t *testing.T) {
	ctx := context.Background()
	e, db := setupEngine(t)

	_, err := e.UpsertAlbum(ctx, simpleAlbum("", "Untitled"))
	assert.True(t, errors.Is(err, shared.ErrInvalidIdentity))
	assert.True(t, shared.IsSkippable(err))

	_, err = e.UpsertGenre(ctx, "   ")
	assert.True(t, errors.Is(err, shared.ErrInvalidIdentity))

	assert.Equal(t, 0, countRows(t, db, "identities"))
	assert.Equal(t, 0, countRows(t, db, "albums"))
}

func TestRelatedBlankIdentitySkipped(t *testing.T) {
	ctx := context.Background()
	e, _ := setupEngine(t)

	p := simpleAlbum("album", "Compilation", simpleArtist("", "Various"), simpleArtist("a1", "Someone"))
	album, err := e.UpsertAlbum(ctx, p)
	require.NoError(t, err)

	artists, err := e.AlbumArtists(ctx, album.Key)
	require.NoError(t, err)
	require.Len(t, artists, 1)
	assert.Equal(t, "a1", artists[0].ExternalID)
}

func TestMissingFieldRollsBack(t *testing.T) {
	ctx := context.Background()
	e, db := setupEngine(t)

	p := fullAlbum("album", "Album", []string{"jazz"}, simpleArtist("good", "Good"), simpleArtist("nameless", ""))
	_, err := e.UpsertAlbum(ctx, p)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrMissingRequiredField))

	var fe *shared.FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "artist", fe.Kind)
	assert.Equal(t, "name", fe.Field)

	for _, table := range []string{"identities", "albums", "artists", "genres", "edges"} {
		assert.Equal(t, 0, countRows(t, db, table), "table %s should be empty after rollback", table)
	}

	_, err = e.UpsertAlbum(ctx, simpleAlbum("other", ""))
	assert.True(t, errors.Is(err, shared.ErrMissingRequiredField))
	assert.Equal(t, 0, countRows(t, db, "identities"))
}

func TestDeepAlbumTracks(t *testing.T) {
	ctx := context.Background()
	e, db := setupEngine(t)

	artist := simpleArtist("artist", "Artist")
	p := simpleAlbum("album", "Album", artist)
	p.Tracks = []models.TrackPayload{
		{ID: "t2", Name: "Second", TrackNumber: 2, DiscNumber: 1, Artists: []models.ArtistPayload{artist}},
		{ID: "t1", Name: "First", TrackNumber: 1, DiscNumber: 1, Artists: []models.ArtistPayload{artist}},
		{ID: "", Name: "Local file"},
	}

	shallow, err := e.UpsertAlbum(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, 0, countRows(t, db, "tracks"), "tracks are only stored on request")

	deep, err := e.UpsertAlbum(ctx, p, WithTracks())
	require.NoError(t, err)
	assert.Equal(t, shallow.Key, deep.Key)

	tracks, err := e.AlbumTracks(ctx, deep.Key)
	require.NoError(t, err)
	require.Len(t, tracks, 2)
	assert.Equal(t, "t1", tracks[0].ExternalID)
	assert.Equal(t, deep.Key, tracks[0].AlbumKey)
	assert.True(t, tracks[0].IsSimplified)

	a, err := e.Artist(ctx, "artist")
	require.NoError(t, err)
	byArtist, err := e.ArtistTracks(ctx, a.Key)
	require.NoError(t, err)
	assert.Len(t, byArtist, 2)
}

func TestTrackCascade(t *testing.T) {
	ctx := context.Background()
	e, db := setupEngine(t)

	radiohead := simpleArtist("4Z8W4fKeB5YxbusRsdQVPb", "Radiohead")
	album := simpleAlbum("6dVIqQ8qmQ5GBnJ9shOYGE", "OK Computer", radiohead)
	tr, err := e.UpsertTrack(ctx, fullTrack("2CVV8PtUYYsux8XOzWkCP0", "Paranoid Android", &album, radiohead))
	require.NoError(t, err)
	assert.False(t, tr.IsSimplified)
	assert.NotZero(t, tr.AlbumKey)

	storedAlbum, err := e.Album(ctx, album.ID)
	require.NoError(t, err)
	assert.Equal(t, storedAlbum.Key, tr.AlbumKey)
	assert.True(t, storedAlbum.IsSimplified)

	assert.Equal(t, 1, countRows(t, db, "artists"), "artist shared by album and track is stored once")

	artist, err := e.Artist(ctx, radiohead.ID)
	require.NoError(t, err)
	tracks, err := e.ArtistTracks(ctx, artist.Key)
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.Equal(t, tr.Key, tracks[0].Key)
}

func TestTrackKeepFillsAlbum(t *testing.T) {
	ctx := context.Background()
	e, _ := setupEngine(t)

	orphan := fullTrack("track", "Song", nil)
	tr, err := e.UpsertTrack(ctx, orphan)
	require.NoError(t, err)
	assert.Zero(t, tr.AlbumKey)

	album := simpleAlbum("album", "Album")
	withAlbum := fullTrack("track", "Song (renamed)", &album)
	kept, err := e.UpsertTrack(ctx, withAlbum)
	require.NoError(t, err)
	assert.NotZero(t, kept.AlbumKey)
	assert.Equal(t, "Song", kept.Name, "a full track keeps its attributes")

	stored, err := e.Track(ctx, "track")
	require.NoError(t, err)
	assert.Equal(t, kept.AlbumKey, stored.AlbumKey)
}

func TestUnknownMarketsIgnored(t *testing.T) {
	ctx := context.Background()
	e, _ := setupEngine(t)

	p := simpleAlbum("album", "Album")
	p.Markets = []string{"US", "XK", "de"}
	a, err := e.UpsertAlbum(ctx, p)
	require.NoError(t, err)

	assert.True(t, a.Markets.Has("US"))
	assert.True(t, a.Markets.Has("DE"))
	assert.Equal(t, 2, a.Markets.Len())
}

func TestPlaylist(t *testing.T) {
	ctx := context.Background()
	e, db := setupEngine(t)

	addedAt := time.Date(2022, 11, 5, 18, 0, 0, 0, time.UTC)
	owner := models.UserPayload{ID: "spotify", DisplayName: "Spotify"}
	song := fullTrack("t1", "Song", nil)
	other := fullTrack("t2", "Other", nil)

	simplified := models.PlaylistPayload{ID: "37i9dQZF1DXcBWIGoYBM5M", Name: "Today's Top Hits", Owner: owner, SnapshotID: "s1"}
	pl, err := e.UpsertPlaylist(ctx, simplified)
	require.NoError(t, err)
	assert.True(t, pl.IsSimplified)
	assert.NotZero(t, pl.OwnerKey)
	assert.Equal(t, 0, countRows(t, db, "playlist_items"))

	full := simplified
	full.Details = &models.PlaylistDetails{
		Followers: 34000000,
		Items: []models.PlaylistItemPayload{
			{Track: &song, AddedAt: &addedAt, AddedBy: &owner},
			{Track: nil},
			{Track: &other},
		},
	}
	upgraded, err := e.UpsertPlaylist(ctx, full)
	require.NoError(t, err)
	assert.False(t, upgraded.IsSimplified)
	assert.Equal(t, 34000000, upgraded.Followers)

	items, err := e.PlaylistItems(ctx, pl.Key)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 0, items[0].Position)
	assert.Equal(t, 2, items[1].Position, "skipped entries keep their position reserved")
	assert.Equal(t, pl.OwnerKey, items[0].AddedByKey)
	require.NotNil(t, items[0].AddedAt)
	assert.True(t, items[0].AddedAt.Equal(addedAt))

	grown := full
	third := fullTrack("t3", "Third", nil)
	grown.Details = &models.PlaylistDetails{Items: append(append([]models.PlaylistItemPayload{}, full.Details.Items...), models.PlaylistItemPayload{Track: &third})}
	_, err = e.UpsertPlaylist(ctx, grown)
	require.NoError(t, err)

	items, err = e.PlaylistItems(ctx, pl.Key)
	require.NoError(t, err)
	assert.Len(t, items, 3, "a full playlist can still gain entries")

	owned, err := e.OwnedPlaylists(ctx, pl.OwnerKey)
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, pl.Key, owned[0].Key)
}

func TestPlaylistResync(t *testing.T) {
	ctx := context.Background()
	e, _ := setupEngine(t)

	owner := models.UserPayload{ID: "owner", DisplayName: "Owner"}
	song := fullTrack("t1", "Song", nil)
	other := fullTrack("t2", "Other", nil)

	full := models.PlaylistPayload{ID: "pl", Name: "Mix", Owner: owner, SnapshotID: "s1"}
	full.Details = &models.PlaylistDetails{Items: []models.PlaylistItemPayload{{Track: &song}, {Track: &other}}}
	pl, err := e.UpsertPlaylist(ctx, full)
	require.NoError(t, err)

	t.Run("Same Snapshot Is A Plain Upsert", func(t *testing.T) {
		same := full
		same.Name = "Renamed"
		same.Details = &models.PlaylistDetails{Items: []models.PlaylistItemPayload{{Track: &other}}}
		kept, err := e.ResyncPlaylist(ctx, same)
		require.NoError(t, err)
		assert.Equal(t, "Mix", kept.Name)

		items, err := e.PlaylistItems(ctx, pl.Key)
		require.NoError(t, err)
		assert.Len(t, items, 2)
	})

	t.Run("Changed Snapshot Replaces Items", func(t *testing.T) {
		changed := full
		changed.Name = "Mix (edited)"
		changed.SnapshotID = "s2"
		changed.Details = &models.PlaylistDetails{Followers: 3, Items: []models.PlaylistItemPayload{{Track: &other}}}
		resynced, err := e.ResyncPlaylist(ctx, changed)
		require.NoError(t, err)
		assert.Equal(t, pl.Key, resynced.Key)

		stored, err := e.Playlist(ctx, "pl")
		require.NoError(t, err)
		assert.Equal(t, "s2", stored.SnapshotID)
		assert.Equal(t, "Mix (edited)", stored.Name)
		assert.Equal(t, 3, stored.Followers)
		assert.False(t, stored.IsSimplified)

		t2, err := e.Track(ctx, "t2")
		require.NoError(t, err)
		items, err := e.PlaylistItems(ctx, pl.Key)
		require.NoError(t, err)
		require.Len(t, items, 1, "removed entries are dropped")
		assert.Equal(t, 0, items[0].Position)
		assert.Equal(t, t2.Key, items[0].TrackKey)

		_, err = e.Track(ctx, "t1")
		assert.NoError(t, err, "tracks of removed entries stay in the catalog")
	})

	t.Run("Simplified Payload Never Clears Items", func(t *testing.T) {
		simplified := models.PlaylistPayload{ID: "pl", Name: "Mix", Owner: owner, SnapshotID: "s3"}
		_, err := e.ResyncPlaylist(ctx, simplified)
		require.NoError(t, err)

		stored, err := e.Playlist(ctx, "pl")
		require.NoError(t, err)
		assert.Equal(t, "s2", stored.SnapshotID)

		items, err := e.PlaylistItems(ctx, pl.Key)
		require.NoError(t, err)
		assert.Len(t, items, 1)
	})
}

func TestUserFillIn(t *testing.T) {
	ctx := context.Background()
	e, _ := setupEngine(t)

	first, err := e.UpsertUser(ctx, models.UserPayload{ID: "wizzler"})
	require.NoError(t, err)
	assert.Equal(t, "wizzler", first.Name())

	second, err := e.UpsertUser(ctx, models.UserPayload{ID: "wizzler", DisplayName: "Wizzler", Country: "SE", Followers: 12})
	require.NoError(t, err)
	assert.Equal(t, first.Key, second.Key)
	assert.Equal(t, "Wizzler", second.DisplayName)

	third, err := e.UpsertUser(ctx, models.UserPayload{ID: "wizzler", DisplayName: "Someone Else", Country: "NO"})
	require.NoError(t, err)
	assert.Equal(t, "Wizzler", third.DisplayName, "known attributes are not overwritten")
	assert.Equal(t, "SE", third.Country)
	assert.Equal(t, 12, third.Followers)
}

func TestFollows(t *testing.T) {
	ctx := context.Background()
	e, _ := setupEngine(t)

	me, err := e.UpsertUser(ctx, models.UserPayload{ID: "me"})
	require.NoError(t, err)

	artist, err := e.FollowArtist(ctx, me.Key, simpleArtist("a1", "Artist"))
	require.NoError(t, err)
	_, err = e.FollowArtist(ctx, me.Key, simpleArtist("a1", "Artist"))
	require.NoError(t, err)

	followed, err := e.FollowedArtists(ctx, me.Key)
	require.NoError(t, err)
	require.Len(t, followed, 1)
	assert.Equal(t, artist.Key, followed[0].Key)

	pl, err := e.FollowPlaylist(ctx, me.Key, models.PlaylistPayload{ID: "p1", Name: "Someone's mix", Owner: models.UserPayload{ID: "someone"}})
	require.NoError(t, err)

	playlists, err := e.FollowedPlaylists(ctx, me.Key)
	require.NoError(t, err)
	require.Len(t, playlists, 1)

	followers, err := e.PlaylistFollowers(ctx, pl.Key)
	require.NoError(t, err)
	require.Len(t, followers, 1)
	assert.Equal(t, me.Key, followers[0].Key)
}

func TestAttach(t *testing.T) {
	ctx := context.Background()
	e, _ := setupEngine(t)

	album, err := e.UpsertAlbum(ctx, simpleAlbum("album", "Album"))
	require.NoError(t, err)
	genre, err := e.UpsertGenre(ctx, "ambient")
	require.NoError(t, err)

	edge := models.Edge{
		From:     models.Ref{Kind: models.KindAlbum, Key: album.Key},
		Relation: models.RelAlbumGenre,
		To:       models.Ref{Kind: models.KindGenre, Key: genre.Key},
	}
	require.NoError(t, e.Attach(ctx, edge))
	require.NoError(t, e.Attach(ctx, edge))

	owned, err := e.Related(ctx, edge.From, models.RelAlbumGenre)
	require.NoError(t, err)
	assert.Len(t, owned, 1)

	back, err := e.Referrers(ctx, edge.To, models.RelAlbumGenre)
	require.NoError(t, err)
	assert.Len(t, back, 1)

	bad := edge
	bad.Relation = models.RelTrackArtist
	assert.True(t, errors.Is(e.Attach(ctx, bad), shared.ErrInvalidInput))
}

func TestConcurrentUpserts(t *testing.T) {
	ctx := context.Background()
	e, db := setupEngineAt(t, filepath.Join(t.TempDir(), "catalog.db"))

	artist := simpleArtist("artist", "Artist")
	payload := fullAlbum("album", "Album", []string{"house"}, artist)

	var wg sync.WaitGroup
	keys := make([]models.Key, 8)
	for i := range keys {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a, err := e.UpsertAlbum(ctx, payload)
			if assert.NoError(t, err) {
				keys[i] = a.Key
			}
		}(i)
	}
	wg.Wait()

	for _, k := range keys {
		assert.Equal(t, keys[0], k)
	}
	assert.Equal(t, 1, countRows(t, db, "albums"))
	assert.Equal(t, 1, countRows(t, db, "artists"))
	assert.Equal(t, 1, countRows(t, db, "genres"))
}
