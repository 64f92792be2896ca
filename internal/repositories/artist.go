package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/spotbak/internal/models"
	"github.com/desertthunder/spotbak/internal/shared"
)

const artistColumns = `a.id, i.external_id, a.name, a.popularity, a.followers, a.is_simplified, a.created_at, a.updated_at`

// ArtistRepository stores artist rows.
type ArtistRepository struct {
	db shared.DBTX
}

// NewArtistRepository creates a new ArtistRepository with the given connection
func NewArtistRepository(db shared.DBTX) *ArtistRepository {
	return &ArtistRepository{db: db}
}

// Create inserts a under its registry key after validating required attributes.
func (r *ArtistRepository) Create(ctx context.Context, a *models.Artist) error {
	if a.Key == 0 {
		return fmt.Errorf("artist %q has no identity", a.ExternalID)
	}
	if err := a.Validate(); err != nil {
		return err
	}

	now := time.Now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now

	query := `
		INSERT INTO artists (id, name, popularity, followers, is_simplified, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		int64(a.Key), a.Name, a.Popularity, a.Followers, a.IsSimplified, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert artist: %w", err)
	}
	return nil
}

// Get retrieves an artist by key
func (r *ArtistRepository) Get(ctx context.Context, key models.Key) (*models.Artist, error) {
	query := `SELECT ` + artistColumns + ` FROM artists a JOIN identities i ON i.id = a.id WHERE a.id = ?`
	a, err := scanArtist(r.db.QueryRowContext(ctx, query, int64(key)))
	if err == sql.ErrNoRows {
		return nil, notFound("artist", key)
	}
	return a, err
}

// GetByExternalID retrieves an artist by Spotify id
func (r *ArtistRepository) GetByExternalID(ctx context.Context, id string) (*models.Artist, error) {
	query := `SELECT ` + artistColumns + ` FROM artists a JOIN identities i ON i.id = a.id WHERE i.kind = ? AND i.external_id = ?`
	a, err := scanArtist(r.db.QueryRowContext(ctx, query, string(models.KindArtist), id))
	if err == sql.ErrNoRows {
		return nil, notFound("artist", id)
	}
	return a, err
}

// Update overwrites the scalars of a. The completeness flag can only move from simplified to full.
func (r *ArtistRepository) Update(ctx context.Context, a *models.Artist) error {
	if err := a.Validate(); err != nil {
		return err
	}
	a.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE artists
		SET name = ?, popularity = ?, followers = ?, is_simplified = (is_simplified AND ?), updated_at = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		a.Name, a.Popularity, a.Followers, a.IsSimplified, a.UpdatedAt, int64(a.Key),
	)
	if err != nil {
		return fmt.Errorf("failed to update artist: %w", err)
	}
	return requireRow(result, "artist", a.Key)
}

// ListByKeys returns the artists for keys in the same order.
func (r *ArtistRepository) ListByKeys(ctx context.Context, keys []models.Key) ([]*models.Artist, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT `+artistColumns+` FROM artists a JOIN identities i ON i.id = a.id WHERE a.id IN (%s)`, placeholders(len(keys)))
	rows, err := r.db.QueryContext(ctx, query, keyArgs(keys)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query artists: %w", err)
	}

	artists, err := collect(rows, scanArtist)
	if err != nil {
		return nil, err
	}
	return orderByKeys(keys, artists, func(a *models.Artist) models.Key { return a.Key }), nil
}

func scanArtist(s scanner) (*models.Artist, error) {
	var a models.Artist
	err := s.Scan(&a.Key, &a.ExternalID, &a.Name, &a.Popularity, &a.Followers, &a.IsSimplified, &a.CreatedAt, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan artist: %w", err)
	}
	a.CreatedAt, a.UpdatedAt = a.CreatedAt.UTC(), a.UpdatedAt.UTC()
	return &a, nil
}
