package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/spotbak/internal/models"
	"github.com/desertthunder/spotbak/internal/shared"
)

const playlistColumns = `p.id, i.external_id, p.owner_key, p.name, p.description, p.snapshot_id,
	p.public, p.collaborative, p.followers, p.is_simplified, p.created_at, p.updated_at`

// PlaylistRepository stores playlist rows. The owning user is linked through owner_key.
type PlaylistRepository struct {
	db shared.DBTX
}

// NewPlaylistRepository creates a new PlaylistRepository with the given connection
func NewPlaylistRepository(db shared.DBTX) *PlaylistRepository {
	return &PlaylistRepository{db: db}
}

// Create inserts p under its registry key after validating required attributes.
func (r *PlaylistRepository) Create(ctx context.Context, p *models.Playlist) error {
	if p.Key == 0 {
		return fmt.Errorf("playlist %q has no identity", p.ExternalID)
	}
	if err := p.Validate(); err != nil {
		return err
	}

	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now

	query := `
		INSERT INTO playlists (
			id, owner_key, name, description, snapshot_id, public, collaborative,
			followers, is_simplified, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		int64(p.Key),
		nullKey(p.OwnerKey),
		p.Name,
		p.Description,
		p.SnapshotID,
		p.Public,
		p.Collaborative,
		p.Followers,
		p.IsSimplified,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert playlist: %w", err)
	}
	return nil
}

// Get retrieves a playlist by key
func (r *PlaylistRepository) Get(ctx context.Context, key models.Key) (*models.Playlist, error) {
	query := `SELECT ` + playlistColumns + ` FROM playlists p JOIN identities i ON i.id = p.id WHERE p.id = ?`
	p, err := scanPlaylist(r.db.QueryRowContext(ctx, query, int64(key)))
	if err == sql.ErrNoRows {
		return nil, notFound("playlist", key)
	}
	return p, err
}

// GetByExternalID retrieves a playlist by Spotify id
func (r *PlaylistRepository) GetByExternalID(ctx context.Context, id string) (*models.Playlist, error) {
	query := `SELECT ` + playlistColumns + ` FROM playlists p JOIN identities i ON i.id = p.id WHERE i.kind = ? AND i.external_id = ?`
	p, err := scanPlaylist(r.db.QueryRowContext(ctx, query, string(models.KindPlaylist), id))
	if err == sql.ErrNoRows {
		return nil, notFound("playlist", id)
	}
	return p, err
}

// Update overwrites the scalars of p. An owner already linked is kept and the completeness flag
// can only move from simplified to full.
func (r *PlaylistRepository) Update(ctx context.Context, p *models.Playlist) error {
	if err := p.Validate(); err != nil {
		return err
	}
	p.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE playlists
		SET owner_key = COALESCE(owner_key, ?), name = ?, description = ?, snapshot_id = ?, public = ?,
			collaborative = ?, followers = ?, is_simplified = (is_simplified AND ?), updated_at = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		nullKey(p.OwnerKey),
		p.Name,
		p.Description,
		p.SnapshotID,
		p.Public,
		p.Collaborative,
		p.Followers,
		p.IsSimplified,
		p.UpdatedAt,
		int64(p.Key),
	)
	if err != nil {
		return fmt.Errorf("failed to update playlist: %w", err)
	}
	return requireRow(result, "playlist", p.Key)
}

// ListByOwner returns the playlists owned by a user, ordered by name.
func (r *PlaylistRepository) ListByOwner(ctx context.Context, owner models.Key) ([]*models.Playlist, error) {
	query := `
		SELECT ` + playlistColumns + `
		FROM playlists p JOIN identities i ON i.id = p.id
		WHERE p.owner_key = ?
		ORDER BY p.name ASC, p.id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, int64(owner))
	if err != nil {
		return nil, fmt.Errorf("failed to query owned playlists: %w", err)
	}
	return collect(rows, scanPlaylist)
}

// ListByKeys returns the playlists for keys in the same order.
func (r *PlaylistRepository) ListByKeys(ctx context.Context, keys []models.Key) ([]*models.Playlist, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT `+playlistColumns+` FROM playlists p JOIN identities i ON i.id = p.id WHERE p.id IN (%s)`, placeholders(len(keys)))
	rows, err := r.db.QueryContext(ctx, query, keyArgs(keys)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}

	playlists, err := collect(rows, scanPlaylist)
	if err != nil {
		return nil, err
	}
	return orderByKeys(keys, playlists, func(p *models.Playlist) models.Key { return p.Key }), nil
}

func scanPlaylist(s scanner) (*models.Playlist, error) {
	var (
		p        models.Playlist
		ownerKey sql.NullInt64
	)
	err := s.Scan(
		&p.Key,
		&p.ExternalID,
		&ownerKey,
		&p.Name,
		&p.Description,
		&p.SnapshotID,
		&p.Public,
		&p.Collaborative,
		&p.Followers,
		&p.IsSimplified,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan playlist: %w", err)
	}
	p.OwnerKey = models.Key(ownerKey.Int64)
	p.CreatedAt, p.UpdatedAt = p.CreatedAt.UTC(), p.UpdatedAt.UTC()
	return &p, nil
}
