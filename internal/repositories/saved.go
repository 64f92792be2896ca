package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/desertthunder/spotbak/internal/models"
	"github.com/desertthunder/spotbak/internal/shared"
)

var savedTables = map[models.Kind]string{
	models.KindSavedAlbum: "saved_albums",
	models.KindSavedTrack: "saved_tracks",
}

// SavedRepository stores ledger rows for one saved kind. Rows are never deleted.
type SavedRepository struct {
	db    shared.DBTX
	kind  models.Kind
	table string
}

// NewSavedRepository creates a SavedRepository for [models.KindSavedAlbum] or [models.KindSavedTrack].
func NewSavedRepository(db shared.DBTX, kind models.Kind) (*SavedRepository, error) {
	table, ok := savedTables[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a saved kind", shared.ErrInvalidArgument, kind)
	}
	return &SavedRepository{db: db, kind: kind, table: table}, nil
}

// Kind returns the saved kind this repository serves.
func (r *SavedRepository) Kind() models.Kind {
	return r.kind
}

func (r *SavedRepository) columns() string {
	return `id, item_key, user_key, date_added, is_removed, date_removed`
}

// Create inserts entry and sets its key.
func (r *SavedRepository) Create(ctx context.Context, entry *models.SavedItem) error {
	if entry.ItemKey == 0 || entry.UserKey == 0 {
		return fmt.Errorf("%s entry needs both an item and a user", r.kind)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (item_key, user_key, date_added, is_removed, date_removed)
		VALUES (?, ?, ?, ?, ?)
	`, r.table)
	result, err := r.db.ExecContext(ctx, query,
		int64(entry.ItemKey),
		int64(entry.UserKey),
		entry.DateAdded.UTC(),
		entry.IsRemoved,
		nullTime(entry.DateRemoved),
	)
	if err != nil {
		return fmt.Errorf("failed to insert %s: %w", r.kind, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get inserted id: %w", err)
	}
	entry.Key = models.Key(id)
	entry.Kind = r.kind
	return nil
}

// Update writes the temporal state of entry.
func (r *SavedRepository) Update(ctx context.Context, entry *models.SavedItem) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET date_added = ?, is_removed = ?, date_removed = ?
		WHERE id = ?
	`, r.table)
	result, err := r.db.ExecContext(ctx, query,
		entry.DateAdded.UTC(),
		entry.IsRemoved,
		nullTime(entry.DateRemoved),
		int64(entry.Key),
	)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", r.kind, err)
	}
	return requireRow(result, string(r.kind), entry.Key)
}

// Get retrieves the entry for (item, user), active or removed.
func (r *SavedRepository) Get(ctx context.Context, item, user models.Key) (*models.SavedItem, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE item_key = ? AND user_key = ?`, r.columns(), r.table)
	entry, err := r.scan(r.db.QueryRowContext(ctx, query, int64(item), int64(user)))
	if err == sql.ErrNoRows {
		return nil, notFound(string(r.kind), fmt.Sprintf("item %d for user %d", item, user))
	}
	return entry, err
}

// Newest retrieves the active entry with the latest add date for user.
func (r *SavedRepository) Newest(ctx context.Context, user models.Key) (*models.SavedItem, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE user_key = ? AND is_removed = 0
		ORDER BY date_added DESC, id DESC
		LIMIT 1
	`, r.columns(), r.table)
	entry, err := r.scan(r.db.QueryRowContext(ctx, query, int64(user)))
	if err == sql.ErrNoRows {
		return nil, notFound(string(r.kind), fmt.Sprintf("newest for user %d", user))
	}
	return entry, err
}

// ListActive returns the active entries of user, newest first. A limit of zero returns all of them.
func (r *SavedRepository) ListActive(ctx context.Context, user models.Key, limit int) ([]*models.SavedItem, error) {
	return r.list(ctx, user, false, limit)
}

// ListRemoved returns the removed entries of user, most recently removed first.
func (r *SavedRepository) ListRemoved(ctx context.Context, user models.Key, limit int) ([]*models.SavedItem, error) {
	return r.list(ctx, user, true, limit)
}

func (r *SavedRepository) list(ctx context.Context, user models.Key, removed bool, limit int) ([]*models.SavedItem, error) {
	order := "date_added DESC, id DESC"
	if removed {
		order = "date_removed DESC, id DESC"
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE user_key = ? AND is_removed = ? ORDER BY %s`, r.columns(), r.table, order)
	args := []any{int64(user), removed}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s entries: %w", r.kind, err)
	}
	return collect(rows, r.scan)
}

// Count returns the number of active or removed entries across all users.
func (r *SavedRepository) Count(ctx context.Context, removed bool) (int, error) {
	var n int
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE is_removed = ?`, r.table)
	if err := r.db.QueryRowContext(ctx, query, removed).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s entries: %w", r.kind, err)
	}
	return n, nil
}

func (r *SavedRepository) scan(s scanner) (*models.SavedItem, error) {
	var (
		entry       models.SavedItem
		dateRemoved sql.NullTime
	)
	err := s.Scan(&entry.Key, &entry.ItemKey, &entry.UserKey, &entry.DateAdded, &entry.IsRemoved, &dateRemoved)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", r.kind, err)
	}
	entry.Kind = r.kind
	entry.DateAdded = entry.DateAdded.UTC()
	entry.DateRemoved = timePtr(dateRemoved)
	return &entry, nil
}
