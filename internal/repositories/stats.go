package repositories

import (
	"context"
	"fmt"

	"github.com/desertthunder/spotbak/internal/models"
	"github.com/desertthunder/spotbak/internal/shared"
)

// StatsRepository computes aggregate counts over the catalog and ledger.
type StatsRepository struct {
	db shared.DBTX
}

// NewStatsRepository creates a new StatsRepository with the given connection
func NewStatsRepository(db shared.DBTX) *StatsRepository {
	return &StatsRepository{db: db}
}

// Collect returns the current counts.
func (r *StatsRepository) Collect(ctx context.Context) (*models.Stats, error) {
	var s models.Stats

	counts := []struct {
		dest  *int
		query string
	}{
		{&s.Users, `SELECT COUNT(*) FROM users`},
		{&s.Artists, `SELECT COUNT(*) FROM artists`},
		{&s.SimplifiedArtists, `SELECT COUNT(*) FROM artists WHERE is_simplified = 1`},
		{&s.Albums, `SELECT COUNT(*) FROM albums`},
		{&s.SimplifiedAlbums, `SELECT COUNT(*) FROM albums WHERE is_simplified = 1`},
		{&s.Tracks, `SELECT COUNT(*) FROM tracks`},
		{&s.SimplifiedTracks, `SELECT COUNT(*) FROM tracks WHERE is_simplified = 1`},
		{&s.Playlists, `SELECT COUNT(*) FROM playlists`},
		{&s.SimplifiedPlaylists, `SELECT COUNT(*) FROM playlists WHERE is_simplified = 1`},
		{&s.PlaylistItems, `SELECT COUNT(*) FROM playlist_items`},
		{&s.Genres, `SELECT COUNT(*) FROM genres`},
		{&s.Images, `SELECT COUNT(*) FROM images`},
		{&s.SavedAlbums, `SELECT COUNT(*) FROM saved_albums WHERE is_removed = 0`},
		{&s.RemovedAlbums, `SELECT COUNT(*) FROM saved_albums WHERE is_removed = 1`},
		{&s.SavedTracks, `SELECT COUNT(*) FROM saved_tracks WHERE is_removed = 0`},
		{&s.RemovedTracks, `SELECT COUNT(*) FROM saved_tracks WHERE is_removed = 1`},
	}

	for _, c := range counts {
		if err := r.db.QueryRowContext(ctx, c.query).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("failed to collect stats: %w", err)
		}
	}
	return &s, nil
}
