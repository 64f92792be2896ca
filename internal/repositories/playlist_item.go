package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/desertthunder/spotbak/internal/models"
	"github.com/desertthunder/spotbak/internal/shared"
)

// PlaylistItemRepository manages the ordered entries of a playlist.
//
// An entry is keyed by (playlist, position); inserting at an occupied position is absorbed.
type PlaylistItemRepository struct {
	db shared.DBTX
}

// NewPlaylistItemRepository creates a new PlaylistItemRepository with the given connection
func NewPlaylistItemRepository(db shared.DBTX) *PlaylistItemRepository {
	return &PlaylistItemRepository{db: db}
}

// Add inserts item unless its position is already taken. It reports whether a row was written and
// sets item.Key to the stored row either way.
func (r *PlaylistItemRepository) Add(ctx context.Context, item *models.PlaylistItem) (bool, error) {
	if item.PlaylistKey == 0 || item.TrackKey == 0 {
		return false, fmt.Errorf("playlist item needs both a playlist and a track")
	}

	query := `
		INSERT INTO playlist_items (playlist_key, track_key, position, added_by_key, added_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (playlist_key, position) DO NOTHING
	`
	result, err := r.db.ExecContext(ctx, query,
		int64(item.PlaylistKey),
		int64(item.TrackKey),
		item.Position,
		nullKey(item.AddedByKey),
		nullTime(item.AddedAt),
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert playlist item: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}

	stored, err := r.GetAt(ctx, item.PlaylistKey, item.Position)
	if err != nil {
		return false, err
	}
	item.Key = stored.Key
	return rows == 1, nil
}

// Clear removes every entry of a playlist and returns how many were deleted.
func (r *PlaylistItemRepository) Clear(ctx context.Context, playlist models.Key) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM playlist_items WHERE playlist_key = ?`, int64(playlist))
	if err != nil {
		return 0, fmt.Errorf("failed to clear playlist items: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return rows, nil
}

// GetAt retrieves the entry at position of a playlist
func (r *PlaylistItemRepository) GetAt(ctx context.Context, playlist models.Key, position int) (*models.PlaylistItem, error) {
	query := `
		SELECT id, playlist_key, track_key, position, added_by_key, added_at
		FROM playlist_items
		WHERE playlist_key = ? AND position = ?
	`
	item, err := scanPlaylistItem(r.db.QueryRowContext(ctx, query, int64(playlist), position))
	if err == sql.ErrNoRows {
		return nil, notFound("playlist item", fmt.Sprintf("%d@%d", playlist, position))
	}
	return item, err
}

// ListByPlaylist returns the entries of a playlist in position order.
func (r *PlaylistItemRepository) ListByPlaylist(ctx context.Context, playlist models.Key) ([]*models.PlaylistItem, error) {
	query := `
		SELECT id, playlist_key, track_key, position, added_by_key, added_at
		FROM playlist_items
		WHERE playlist_key = ?
		ORDER BY position ASC
	`
	rows, err := r.db.QueryContext(ctx, query, int64(playlist))
	if err != nil {
		return nil, fmt.Errorf("failed to query playlist items: %w", err)
	}
	return collect(rows, scanPlaylistItem)
}

// ListByTrack returns every entry that places track in some playlist.
func (r *PlaylistItemRepository) ListByTrack(ctx context.Context, track models.Key) ([]*models.PlaylistItem, error) {
	query := `
		SELECT id, playlist_key, track_key, position, added_by_key, added_at
		FROM playlist_items
		WHERE track_key = ?
		ORDER BY playlist_key ASC, position ASC
	`
	rows, err := r.db.QueryContext(ctx, query, int64(track))
	if err != nil {
		return nil, fmt.Errorf("failed to query playlist items: %w", err)
	}
	return collect(rows, scanPlaylistItem)
}

func scanPlaylistItem(s scanner) (*models.PlaylistItem, error) {
	var (
		item    models.PlaylistItem
		addedBy sql.NullInt64
		addedAt sql.NullTime
	)
	err := s.Scan(&item.Key, &item.PlaylistKey, &item.TrackKey, &item.Position, &addedBy, &addedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan playlist item: %w", err)
	}
	item.AddedByKey = models.Key(addedBy.Int64)
	item.AddedAt = timePtr(addedAt)
	return &item, nil
}
