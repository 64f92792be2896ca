package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/spotbak/internal/models"
	"github.com/desertthunder/spotbak/internal/shared"
)

const trackColumns = `t.id, i.external_id, t.album_key, t.name, t.duration_ms, t.disc_number, t.track_number,
	t.explicit, t.isrc, t.popularity, t.available_markets, t.is_simplified, t.created_at, t.updated_at`

// TrackRepository stores track rows. A track belongs to at most one album through album_key.
type TrackRepository struct {
	db shared.DBTX
}

// NewTrackRepository creates a new TrackRepository with the given connection
func NewTrackRepository(db shared.DBTX) *TrackRepository {
	return &TrackRepository{db: db}
}

// Create inserts t under its registry key after validating required attributes.
func (r *TrackRepository) Create(ctx context.Context, t *models.Track) error {
	if t.Key == 0 {
		return fmt.Errorf("track %q has no identity", t.ExternalID)
	}
	if err := t.Validate(); err != nil {
		return err
	}

	now := time.Now().UTC()
	t.CreatedAt, t.UpdatedAt = now, now

	query := `
		INSERT INTO tracks (
			id, album_key, name, duration_ms, disc_number, track_number, explicit,
			isrc, popularity, available_markets, is_simplified, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		int64(t.Key),
		nullKey(t.AlbumKey),
		t.Name,
		t.DurationMS,
		t.DiscNumber,
		t.TrackNumber,
		t.Explicit,
		t.ISRC,
		t.Popularity,
		t.Markets,
		t.IsSimplified,
		t.CreatedAt,
		t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert track: %w", err)
	}
	return nil
}

// Get retrieves a track by key
func (r *TrackRepository) Get(ctx context.Context, key models.Key) (*models.Track, error) {
	query := `SELECT ` + trackColumns + ` FROM tracks t JOIN identities i ON i.id = t.id WHERE t.id = ?`
	t, err := scanTrack(r.db.QueryRowContext(ctx, query, int64(key)))
	if err == sql.ErrNoRows {
		return nil, notFound("track", key)
	}
	return t, err
}

// GetByExternalID retrieves a track by Spotify id
func (r *TrackRepository) GetByExternalID(ctx context.Context, id string) (*models.Track, error) {
	query := `SELECT ` + trackColumns + ` FROM tracks t JOIN identities i ON i.id = t.id WHERE i.kind = ? AND i.external_id = ?`
	t, err := scanTrack(r.db.QueryRowContext(ctx, query, string(models.KindTrack), id))
	if err == sql.ErrNoRows {
		return nil, notFound("track", id)
	}
	return t, err
}

// Update overwrites the scalars of t. An album already linked is kept and the completeness
// flag can only move from simplified to full.
func (r *TrackRepository) Update(ctx context.Context, t *models.Track) error {
	if err := t.Validate(); err != nil {
		return err
	}
	t.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE tracks
		SET album_key = COALESCE(album_key, ?), name = ?, duration_ms = ?, disc_number = ?, track_number = ?,
			explicit = ?, isrc = ?, popularity = ?, available_markets = ?,
			is_simplified = (is_simplified AND ?), updated_at = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		nullKey(t.AlbumKey),
		t.Name,
		t.DurationMS,
		t.DiscNumber,
		t.TrackNumber,
		t.Explicit,
		t.ISRC,
		t.Popularity,
		t.Markets,
		t.IsSimplified,
		t.UpdatedAt,
		int64(t.Key),
	)
	if err != nil {
		return fmt.Errorf("failed to update track: %w", err)
	}
	return requireRow(result, "track", t.Key)
}

// SetAlbum links a track to album when it has no album yet. It reports whether the link was made.
func (r *TrackRepository) SetAlbum(ctx context.Context, track, album models.Key) (bool, error) {
	query := `UPDATE tracks SET album_key = ?, updated_at = ? WHERE id = ? AND album_key IS NULL`
	result, err := r.db.ExecContext(ctx, query, int64(album), time.Now().UTC(), int64(track))
	if err != nil {
		return false, fmt.Errorf("failed to link track to album: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return rows == 1, nil
}

// ListByAlbum returns the tracks of an album in disc and track order.
func (r *TrackRepository) ListByAlbum(ctx context.Context, album models.Key) ([]*models.Track, error) {
	query := `
		SELECT ` + trackColumns + `
		FROM tracks t JOIN identities i ON i.id = t.id
		WHERE t.album_key = ?
		ORDER BY t.disc_number ASC, t.track_number ASC, t.id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, int64(album))
	if err != nil {
		return nil, fmt.Errorf("failed to query album tracks: %w", err)
	}
	return collect(rows, scanTrack)
}

// ListByKeys returns the tracks for keys in the same order.
func (r *TrackRepository) ListByKeys(ctx context.Context, keys []models.Key) ([]*models.Track, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT `+trackColumns+` FROM tracks t JOIN identities i ON i.id = t.id WHERE t.id IN (%s)`, placeholders(len(keys)))
	rows, err := r.db.QueryContext(ctx, query, keyArgs(keys)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}

	tracks, err := collect(rows, scanTrack)
	if err != nil {
		return nil, err
	}
	return orderByKeys(keys, tracks, func(t *models.Track) models.Key { return t.Key }), nil
}

func scanTrack(s scanner) (*models.Track, error) {
	var (
		t        models.Track
		albumKey sql.NullInt64
	)
	err := s.Scan(
		&t.Key,
		&t.ExternalID,
		&albumKey,
		&t.Name,
		&t.DurationMS,
		&t.DiscNumber,
		&t.TrackNumber,
		&t.Explicit,
		&t.ISRC,
		&t.Popularity,
		&t.Markets,
		&t.IsSimplified,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan track: %w", err)
	}
	t.AlbumKey = models.Key(albumKey.Int64)
	t.CreatedAt, t.UpdatedAt = t.CreatedAt.UTC(), t.UpdatedAt.UTC()
	return &t, nil
}
