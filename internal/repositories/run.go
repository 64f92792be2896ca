package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/spotbak/internal/models"
	"github.com/desertthunder/spotbak/internal/shared"
)

const runColumns = `id, user_key, status, scope, albums_saved, tracks_saved, playlists, artists_followed,
	removed, error_message, started_at, completed_at, created_at, updated_at`

// RunRepository keeps the history of backup runs.
type RunRepository struct {
	db shared.DBTX
}

// NewRunRepository creates a new RunRepository with the given connection
func NewRunRepository(db shared.DBTX) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a backup run, generating its ID when empty.
func (r *RunRepository) Create(ctx context.Context, run *models.BackupRun) error {
	if run.ID == "" {
		run.ID = shared.GenerateID()
	}
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO backup_runs (` + runColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var errorMessage any = run.ErrorMessage
	if run.ErrorMessage == "" {
		errorMessage = nil
	}

	_, err := r.db.ExecContext(ctx, query,
		run.ID,
		nullKey(run.UserKey),
		string(run.Status),
		run.Scope,
		run.AlbumsSaved,
		run.TracksSaved,
		run.Playlists,
		run.ArtistsFollowed,
		run.Removed,
		errorMessage,
		run.StartedAt.UTC(),
		nullTime(run.CompletedAt),
		run.CreatedAt.UTC(),
		run.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert backup run: %w", err)
	}
	return nil
}

// Get retrieves a backup run by ID
func (r *RunRepository) Get(ctx context.Context, id string) (*models.BackupRun, error) {
	query := `SELECT ` + runColumns + ` FROM backup_runs WHERE id = ?`
	run, err := scanRun(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, notFound("backup run", id)
	}
	return run, err
}

// Update writes the status and counters of a backup run.
func (r *RunRepository) Update(ctx context.Context, run *models.BackupRun) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	run.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE backup_runs
		SET user_key = ?, status = ?, albums_saved = ?, tracks_saved = ?, playlists = ?,
			artists_followed = ?, removed = ?, error_message = ?, completed_at = ?, updated_at = ?
		WHERE id = ?
	`

	var errorMessage any = run.ErrorMessage
	if run.ErrorMessage == "" {
		errorMessage = nil
	}

	result, err := r.db.ExecContext(ctx, query,
		nullKey(run.UserKey),
		string(run.Status),
		run.AlbumsSaved,
		run.TracksSaved,
		run.Playlists,
		run.ArtistsFollowed,
		run.Removed,
		errorMessage,
		nullTime(run.CompletedAt),
		run.UpdatedAt,
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update backup run: %w", err)
	}
	return requireRow(result, "backup run", run.ID)
}

// List returns backup runs matching criteria, newest first.
//
// Supported criteria: "status" (string), "limit" (int).
func (r *RunRepository) List(ctx context.Context, criteria map[string]any) ([]*models.BackupRun, error) {
	query := `SELECT ` + runColumns + ` FROM backup_runs WHERE 1 = 1`
	args := []any{}

	if status, ok := criteria["status"].(string); ok && status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}

	query += " ORDER BY started_at DESC, created_at DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query backup runs: %w", err)
	}
	return collect(rows, scanRun)
}

// LastCompleted returns the most recent completed run, or [shared.ErrNotFound].
func (r *RunRepository) LastCompleted(ctx context.Context) (*models.BackupRun, error) {
	runs, err := r.List(ctx, map[string]any{"status": string(models.RunCompleted), "limit": 1})
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, notFound("backup run", models.RunCompleted)
	}
	return runs[0], nil
}

func scanRun(s scanner) (*models.BackupRun, error) {
	var (
		run          models.BackupRun
		userKey      sql.NullInt64
		status       string
		errorMessage sql.NullString
		completedAt  sql.NullTime
	)

	err := s.Scan(
		&run.ID,
		&userKey,
		&status,
		&run.Scope,
		&run.AlbumsSaved,
		&run.TracksSaved,
		&run.Playlists,
		&run.ArtistsFollowed,
		&run.Removed,
		&errorMessage,
		&run.StartedAt,
		&completedAt,
		&run.CreatedAt,
		&run.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan backup run: %w", err)
	}

	run.UserKey = models.Key(userKey.Int64)
	run.Status = models.RunStatus(status)
	run.ErrorMessage = errorMessage.String
	run.StartedAt = run.StartedAt.UTC()
	run.CompletedAt = timePtr(completedAt)
	run.CreatedAt, run.UpdatedAt = run.CreatedAt.UTC(), run.UpdatedAt.UTC()
	return &run, nil
}
