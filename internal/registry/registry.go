// Package registry maps (kind, external id) pairs onto the surrogate keys every catalog table uses.
//
// The registry is the dedup root: an external id is registered at most once per kind and the
// assigned key is never reused. Creation is race-safe through the UNIQUE(kind, external_id)
// constraint. A losing insert is absorbed and the winner's row is returned instead.
package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/spotbak/internal/models"
	"github.com/desertthunder/spotbak/internal/shared"
)

// Registry resolves identities against whatever [shared.DBTX] the caller's unit of work holds.
type Registry struct {
	now func() time.Time
}

// Option configures a [Registry].
type Option func(*Registry)

// WithClock overrides the creation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// New creates a Registry.
func New(opts ...Option) *Registry {
	r := &Registry{now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Exists reports whether id has been registered for kind.
func (r *Registry) Exists(ctx context.Context, q shared.DBTX, kind models.Kind, id string) (bool, error) {
	_, err := r.Find(ctx, q, kind, id)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, shared.ErrNotFound), errors.Is(err, shared.ErrInvalidIdentity):
		return false, nil
	default:
		return false, err
	}
}

// Find returns the identity registered for (kind, id) or [shared.ErrNotFound].
func (r *Registry) Find(ctx context.Context, q shared.DBTX, kind models.Kind, id string) (models.Identity, error) {
	id, err := models.NormalizeExternalID(id)
	if err != nil {
		return models.Identity{}, err
	}

	query := `
		SELECT id, kind, external_id, created_at
		FROM identities
		WHERE kind = ? AND external_id = ?
	`

	var ident models.Identity
	err = q.QueryRowContext(ctx, query, string(kind), id).Scan(&ident.Key, &ident.Kind, &ident.ExternalID, &ident.CreatedAt)
	if err == sql.ErrNoRows {
		return models.Identity{}, fmt.Errorf("%s %q: %w", kind, id, shared.ErrNotFound)
	}
	if err != nil {
		return models.Identity{}, fmt.Errorf("failed to find %s identity: %w", kind, err)
	}

	return ident, nil
}

// Persist registers (kind, id) if needed and returns its identity. created is true only for the
// call that inserted the row.
//
// Blank or over-long ids fail with [shared.ErrInvalidIdentity] before anything is written.
func (r *Registry) Persist(ctx context.Context, q shared.DBTX, kind models.Kind, id string) (ident models.Identity, created bool, err error) {
	if !kind.HasExternalID() {
		return models.Identity{}, false, fmt.Errorf("%w: %s is not keyed by external id", shared.ErrInvalidInput, kind)
	}

	id, err = models.NormalizeExternalID(id)
	if err != nil {
		return models.Identity{}, false, fmt.Errorf("%s: %w", kind, err)
	}

	query := `
		INSERT INTO identities (kind, external_id, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT (kind, external_id) DO NOTHING
	`

	result, err := q.ExecContext(ctx, query, string(kind), id, r.now().UTC())
	if err != nil {
		return models.Identity{}, false, fmt.Errorf("failed to register %s identity: %w", kind, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return models.Identity{}, false, fmt.Errorf("failed to get affected rows: %w", err)
	}

	ident, err = r.Find(ctx, q, kind, id)
	if err != nil {
		return models.Identity{}, false, err
	}

	return ident, rows == 1, nil
}
