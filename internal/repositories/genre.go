package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/desertthunder/spotbak/internal/models"
	"github.com/desertthunder/spotbak/internal/shared"
)

// GenreRepository stores genre rows. A genre's key is the registry key of its name.
type GenreRepository struct {
	db shared.DBTX
}

// NewGenreRepository creates a new GenreRepository with the given connection
func NewGenreRepository(db shared.DBTX) *GenreRepository {
	return &GenreRepository{db: db}
}

// Create inserts g. Inserting an existing key is a no-op.
func (r *GenreRepository) Create(ctx context.Context, g *models.Genre) error {
	if g.Key == 0 {
		return fmt.Errorf("genre %q has no identity", g.Name)
	}

	query := `INSERT INTO genres (id, name) VALUES (?, ?) ON CONFLICT (id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, int64(g.Key), g.Name); err != nil {
		return fmt.Errorf("failed to insert genre: %w", err)
	}
	return nil
}

// Get retrieves a genre by key
func (r *GenreRepository) Get(ctx context.Context, key models.Key) (*models.Genre, error) {
	query := `SELECT id, name FROM genres WHERE id = ?`
	g, err := scanGenre(r.db.QueryRowContext(ctx, query, int64(key)))
	if err == sql.ErrNoRows {
		return nil, notFound("genre", key)
	}
	return g, err
}

// GetByName retrieves a genre by its name
func (r *GenreRepository) GetByName(ctx context.Context, name string) (*models.Genre, error) {
	query := `
		SELECT g.id, g.name
		FROM genres g
		JOIN identities i ON i.id = g.id
		WHERE i.kind = ? AND i.external_id = ?
	`
	g, err := scanGenre(r.db.QueryRowContext(ctx, query, string(models.KindGenre), name))
	if err == sql.ErrNoRows {
		return nil, notFound("genre", name)
	}
	return g, err
}

// ListByKeys returns the genres for keys in the same order.
func (r *GenreRepository) ListByKeys(ctx context.Context, keys []models.Key) ([]*models.Genre, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT id, name FROM genres WHERE id IN (%s)`, placeholders(len(keys)))
	rows, err := r.db.QueryContext(ctx, query, keyArgs(keys)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query genres: %w", err)
	}

	genres, err := collect(rows, scanGenre)
	if err != nil {
		return nil, err
	}
	return orderByKeys(keys, genres, func(g *models.Genre) models.Key { return g.Key }), nil
}

func scanGenre(s scanner) (*models.Genre, error) {
	var g models.Genre
	if err := s.Scan(&g.Key, &g.Name); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan genre: %w", err)
	}
	return &g, nil
}
