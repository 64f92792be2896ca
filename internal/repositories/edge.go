package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/spotbak/internal/models"
	"github.com/desertthunder/spotbak/internal/shared"
)

// EdgeRepository stores many-to-many relationships.
//
// Each relationship is one row; the owning side reads it by its From end and the non-owning side
// by its To end, so both sides always agree.
type EdgeRepository struct {
	db shared.DBTX
}

// NewEdgeRepository creates a new EdgeRepository with the given connection
func NewEdgeRepository(db shared.DBTX) *EdgeRepository {
	return &EdgeRepository{db: db}
}

// Attach stores e. Re-attaching an existing edge is a no-op and keeps its original position.
// It reports whether a row was written.
func (r *EdgeRepository) Attach(ctx context.Context, e models.Edge) (bool, error) {
	if err := e.Validate(); err != nil {
		return false, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	query := `
		INSERT INTO edges (from_kind, from_key, relation, to_kind, to_key, position, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (from_kind, from_key, relation, to_kind, to_key) DO NOTHING
	`
	result, err := r.db.ExecContext(ctx, query,
		string(e.From.Kind),
		int64(e.From.Key),
		string(e.Relation),
		string(e.To.Kind),
		int64(e.To.Key),
		e.Position,
		time.Now().UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("failed to attach %s edge: %w", e.Relation, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return rows == 1, nil
}

// Has reports whether the edge exists.
func (r *EdgeRepository) Has(ctx context.Context, from models.Ref, rel models.Relation, to models.Ref) (bool, error) {
	query := `
		SELECT 1 FROM edges
		WHERE from_kind = ? AND from_key = ? AND relation = ? AND to_kind = ? AND to_key = ?
	`
	var one int
	err := r.db.QueryRowContext(ctx, query,
		string(from.Kind), int64(from.Key), string(rel), string(to.Kind), int64(to.Key),
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up edge: %w", err)
	}
	return true, nil
}

// Related returns the edges owned by from for rel, in position order.
func (r *EdgeRepository) Related(ctx context.Context, from models.Ref, rel models.Relation) ([]models.Edge, error) {
	query := `
		SELECT from_kind, from_key, relation, to_kind, to_key, position
		FROM edges
		WHERE from_kind = ? AND from_key = ? AND relation = ?
		ORDER BY position ASC, to_key ASC
	`
	rows, err := r.db.QueryContext(ctx, query, string(from.Kind), int64(from.Key), string(rel))
	if err != nil {
		return nil, fmt.Errorf("failed to query related edges: %w", err)
	}
	return collect(rows, scanEdge)
}

// Referrers returns the edges pointing at to for rel, oldest referrer first.
func (r *EdgeRepository) Referrers(ctx context.Context, to models.Ref, rel models.Relation) ([]models.Edge, error) {
	query := `
		SELECT from_kind, from_key, relation, to_kind, to_key, position
		FROM edges
		WHERE to_kind = ? AND to_key = ? AND relation = ?
		ORDER BY from_key ASC
	`
	rows, err := r.db.QueryContext(ctx, query, string(to.Kind), int64(to.Key), string(rel))
	if err != nil {
		return nil, fmt.Errorf("failed to query referring edges: %w", err)
	}
	return collect(rows, scanEdge)
}

// NextPosition returns the position after the last edge owned by from for rel.
func (r *EdgeRepository) NextPosition(ctx context.Context, from models.Ref, rel models.Relation) (int, error) {
	query := `
		SELECT COALESCE(MAX(position) + 1, 0)
		FROM edges
		WHERE from_kind = ? AND from_key = ? AND relation = ?
	`
	var next int
	if err := r.db.QueryRowContext(ctx, query, string(from.Kind), int64(from.Key), string(rel)).Scan(&next); err != nil {
		return 0, fmt.Errorf("failed to compute next edge position: %w", err)
	}
	return next, nil
}

// Count returns the number of edges with relation rel.
func (r *EdgeRepository) Count(ctx context.Context, rel models.Relation) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM edges WHERE relation = ?`, string(rel)).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count edges: %w", err)
	}
	return n, nil
}

// Keys extracts the far end of each edge: To keys when owned is true, From keys otherwise.
func Keys(edges []models.Edge, owned bool) []models.Key {
	keys := make([]models.Key, len(edges))
	for i, e := range edges {
		if owned {
			keys[i] = e.To.Key
		} else {
			keys[i] = e.From.Key
		}
	}
	return keys
}

func scanEdge(s scanner) (models.Edge, error) {
	var e models.Edge
	err := s.Scan(&e.From.Kind, &e.From.Key, &e.Relation, &e.To.Kind, &e.To.Key, &e.Position)
	if err != nil {
		return models.Edge{}, fmt.Errorf("failed to scan edge: %w", err)
	}
	return e, nil
}
