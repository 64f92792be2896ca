package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/spotbak/internal/models"
	"github.com/desertthunder/spotbak/internal/shared"
)

// WithTx runs fn inside a transaction. The transaction is committed when fn returns nil and
// rolled back on every other exit path, including panics.
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Repositories bundles every repository bound to one [shared.DBTX].
type Repositories struct {
	Genres        *GenreRepository
	Images        *ImageRepository
	Users         *UserRepository
	Artists       *ArtistRepository
	Albums        *AlbumRepository
	Tracks        *TrackRepository
	Playlists     *PlaylistRepository
	PlaylistItems *PlaylistItemRepository
	Edges         *EdgeRepository
}

// New binds the catalog repositories to q.
func New(q shared.DBTX) *Repositories {
	return &Repositories{
		Genres:        NewGenreRepository(q),
		Images:        NewImageRepository(q),
		Users:         NewUserRepository(q),
		Artists:       NewArtistRepository(q),
		Albums:        NewAlbumRepository(q),
		Tracks:        NewTrackRepository(q),
		Playlists:     NewPlaylistRepository(q),
		PlaylistItems: NewPlaylistItemRepository(q),
		Edges:         NewEdgeRepository(q),
	}
}

// scanner is satisfied by [sql.Row] and [sql.Rows].
type scanner interface {
	Scan(dest ...any) error
}

// notFound wraps [shared.ErrNotFound] with the entity and lookup value.
func notFound(entity string, key any) error {
	return fmt.Errorf("%s %v: %w", entity, key, shared.ErrNotFound)
}

// placeholders returns "?, ?, ?" for n arguments.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func keyArgs(keys []models.Key) []any {
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = int64(k)
	}
	return args
}

func nullKey(k models.Key) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(k), Valid: k != 0}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

// collect drains rows through scan.
func collect[T any](rows *sql.Rows, scan func(scanner) (T, error)) ([]T, error) {
	defer rows.Close()

	var out []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return out, nil
}

// orderByKeys arranges items to follow keys, dropping keys with no matching item.
func orderByKeys[T any](keys []models.Key, items []T, keyOf func(T) models.Key) []T {
	byKey := make(map[models.Key]T, len(items))
	for _, item := range items {
		byKey[keyOf(item)] = item
	}

	out := make([]T, 0, len(keys))
	for _, k := range keys {
		if item, ok := byKey[k]; ok {
			out = append(out, item)
		}
	}
	return out
}
