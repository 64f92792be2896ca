// package testing contains shared testing utilities
package testing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/spotbak/internal/models"
	"github.com/desertthunder/spotbak/internal/services"
	"github.com/desertthunder/spotbak/internal/shared"
)

// MockService is a test double for [services.Service] backed by in-memory payloads.
//
// Listings follow the visitor protocol: [services.ErrStopPaging] ends a listing cleanly and any
// other visitor error is returned.
type MockService struct {
	User         models.UserPayload
	Albums       []models.SavedAlbumPayload
	Tracks       []models.SavedTrackPayload
	Lists        []models.PlaylistPayload
	FullLists    map[string]models.PlaylistPayload
	Artists      []models.ArtistPayload
	FullAlbums   map[string]models.AlbumPayload
	Err          error
	mu           sync.Mutex
	playlistHits map[string]int
}

func (m *MockService) stop(err error) error {
	if errors.Is(err, services.ErrStopPaging) {
		return nil
	}
	return err
}

func (m *MockService) CurrentUser(ctx context.Context) (*models.UserPayload, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	u := m.User
	return &u, nil
}

func (m *MockService) SavedAlbums(ctx context.Context, visit func(models.SavedAlbumPayload) error) error {
	for _, p := range m.Albums {
		if err := visit(p); err != nil {
			return m.stop(err)
		}
	}
	return nil
}

func (m *MockService) SavedTracks(ctx context.Context, visit func(models.SavedTrackPayload) error) error {
	for _, p := range m.Tracks {
		if err := visit(p); err != nil {
			return m.stop(err)
		}
	}
	return nil
}

func (m *MockService) Playlists(ctx context.Context, visit func(models.PlaylistPayload) error) error {
	for _, p := range m.Lists {
		if err := visit(p); err != nil {
			return m.stop(err)
		}
	}
	return nil
}

func (m *MockService) Playlist(ctx context.Context, id string) (*models.PlaylistPayload, error) {
	m.mu.Lock()
	if m.playlistHits == nil {
		m.playlistHits = map[string]int{}
	}
	m.playlistHits[id]++
	m.mu.Unlock()

	p, ok := m.FullLists[id]
	if !ok {
		return nil, fmt.Errorf("playlist %s: %w", id, shared.ErrAPIRequest)
	}
	return &p, nil
}

// PlaylistHits returns how many times Playlist was called for id.
func (m *MockService) PlaylistHits(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playlistHits[id]
}

func (m *MockService) FollowedArtists(ctx context.Context, visit func(models.ArtistPayload) error) error {
	for _, p := range m.Artists {
		if err := visit(p); err != nil {
			return m.stop(err)
		}
	}
	return nil
}

func (m *MockService) Album(ctx context.Context, id string) (*models.AlbumPayload, error) {
	p, ok := m.FullAlbums[id]
	if !ok {
		return nil, fmt.Errorf("album %s: %w", id, shared.ErrAPIRequest)
	}
	return &p, nil
}

var _ services.Service = (*MockService)(nil)

// MustOpenDB opens a migrated in-memory database that is closed when the test ends.
func MustOpenDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
