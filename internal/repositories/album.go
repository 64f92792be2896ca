package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/spotbak/internal/models"
	"github.com/desertthunder/spotbak/internal/shared"
)

const albumColumns = `a.id, i.external_id, a.name, a.album_type, a.release_date, a.release_date_precision,
	a.total_tracks, a.label, a.popularity, a.upc, a.available_markets, a.is_simplified, a.created_at, a.updated_at`

// AlbumRepository stores album rows. Available markets are persisted in the codec's BLOB layout.
type AlbumRepository struct {
	db shared.DBTX
}

// NewAlbumRepository creates a new AlbumRepository with the given connection
func NewAlbumRepository(db shared.DBTX) *AlbumRepository {
	return &AlbumRepository{db: db}
}

// Create inserts a under its registry key after validating required attributes.
func (r *AlbumRepository) Create(ctx context.Context, a *models.Album) error {
	if a.Key == 0 {
		return fmt.Errorf("album %q has no identity", a.ExternalID)
	}
	if err := a.Validate(); err != nil {
		return err
	}

	now := time.Now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now

	query := `
		INSERT INTO albums (
			id, name, album_type, release_date, release_date_precision, total_tracks,
			label, popularity, upc, available_markets, is_simplified, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		int64(a.Key),
		a.Name,
		a.AlbumType,
		a.ReleaseDate,
		a.ReleaseDatePrecision,
		a.TotalTracks,
		a.Label,
		a.Popularity,
		a.UPC,
		a.Markets,
		a.IsSimplified,
		a.CreatedAt,
		a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert album: %w", err)
	}
	return nil
}

// Get retrieves an album by key
func (r *AlbumRepository) Get(ctx context.Context, key models.Key) (*models.Album, error) {
	query := `SELECT ` + albumColumns + ` FROM albums a JOIN identities i ON i.id = a.id WHERE a.id = ?`
	a, err := scanAlbum(r.db.QueryRowContext(ctx, query, int64(key)))
	if err == sql.ErrNoRows {
		return nil, notFound("album", key)
	}
	return a, err
}

// GetByExternalID retrieves an album by Spotify id
func (r *AlbumRepository) GetByExternalID(ctx context.Context, id string) (*models.Album, error) {
	query := `SELECT ` + albumColumns + ` FROM albums a JOIN identities i ON i.id = a.id WHERE i.kind = ? AND i.external_id = ?`
	a, err := scanAlbum(r.db.QueryRowContext(ctx, query, string(models.KindAlbum), id))
	if err == sql.ErrNoRows {
		return nil, notFound("album", id)
	}
	return a, err
}

// Update overwrites the scalars of a. The completeness flag can only move from simplified to full.
func (r *AlbumRepository) Update(ctx context.Context, a *models.Album) error {
	if err := a.Validate(); err != nil {
		return err
	}
	a.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE albums
		SET name = ?, album_type = ?, release_date = ?, release_date_precision = ?, total_tracks = ?,
			label = ?, popularity = ?, upc = ?, available_markets = ?,
			is_simplified = (is_simplified AND ?), updated_at = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		a.Name,
		a.AlbumType,
		a.ReleaseDate,
		a.ReleaseDatePrecision,
		a.TotalTracks,
		a.Label,
		a.Popularity,
		a.UPC,
		a.Markets,
		a.IsSimplified,
		a.UpdatedAt,
		int64(a.Key),
	)
	if err != nil {
		return fmt.Errorf("failed to update album: %w", err)
	}
	return requireRow(result, "album", a.Key)
}

// ListByKeys returns the albums for keys in the same order.
func (r *AlbumRepository) ListByKeys(ctx context.Context, keys []models.Key) ([]*models.Album, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT `+albumColumns+` FROM albums a JOIN identities i ON i.id = a.id WHERE a.id IN (%s)`, placeholders(len(keys)))
	rows, err := r.db.QueryContext(ctx, query, keyArgs(keys)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query albums: %w", err)
	}

	albums, err := collect(rows, scanAlbum)
	if err != nil {
		return nil, err
	}
	return orderByKeys(keys, albums, func(a *models.Album) models.Key { return a.Key }), nil
}

func scanAlbum(s scanner) (*models.Album, error) {
	var a models.Album
	err := s.Scan(
		&a.Key,
		&a.ExternalID,
		&a.Name,
		&a.AlbumType,
		&a.ReleaseDate,
		&a.ReleaseDatePrecision,
		&a.TotalTracks,
		&a.Label,
		&a.Popularity,
		&a.UPC,
		&a.Markets,
		&a.IsSimplified,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan album: %w", err)
	}
	a.CreatedAt, a.UpdatedAt = a.CreatedAt.UTC(), a.UpdatedAt.UTC()
	return &a, nil
}
