// Package ledger tracks which albums and tracks a user has saved, and when.
//
// Each (item, user) pair has exactly one row. Removing an item marks the row removed instead of
// deleting it, and saving it again reactivates the same row with the new add date.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/spotbak/internal/models"
	"github.com/desertthunder/spotbak/internal/repositories"
	"github.com/desertthunder/spotbak/internal/shared"
)

// Outcome describes what PersistSaved did.
type Outcome int

const (
	Unchanged Outcome = iota
	Added
	Reactivated
)

func (o Outcome) String() string {
	switch o {
	case Added:
		return "added"
	case Reactivated:
		return "reactivated"
	default:
		return "unchanged"
	}
}

// Ledger manages saved entries of one kind: [models.KindSavedAlbum] or [models.KindSavedTrack].
type Ledger struct {
	db     *sql.DB
	kind   models.Kind
	now    func() time.Time
	logger *log.Logger
}

// Option configures a [Ledger].
type Option func(*Ledger)

// WithClock overrides the removal timestamp source.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithLogger sets the ledger logger.
func WithLogger(logger *log.Logger) Option {
	return func(l *Ledger) { l.logger = logger }
}

// New creates a Ledger for kind.
func New(db *sql.DB, kind models.Kind, opts ...Option) (*Ledger, error) {
	if _, err := repositories.NewSavedRepository(db, kind); err != nil {
		return nil, err
	}

	l := &Ledger{db: db, kind: kind, now: time.Now, logger: shared.DiscardLogger()}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Kind returns the saved kind this ledger tracks.
func (l *Ledger) Kind() models.Kind {
	return l.kind
}

func (l *Ledger) repo(q shared.DBTX) *repositories.SavedRepository {
	r, _ := repositories.NewSavedRepository(q, l.kind)
	return r
}

func (l *Ledger) run(ctx context.Context, fn func(r *repositories.SavedRepository) error) error {
	return repositories.WithTx(ctx, l.db, func(tx *sql.Tx) error {
		return fn(l.repo(tx))
	})
}

// PersistSaved records that user saved item at addedAt.
//
// An active entry is returned unchanged. A removed entry is reactivated in place with addedAt
// as its new add date. Otherwise a new active entry is created.
func (l *Ledger) PersistSaved(ctx context.Context, item, user models.Key, addedAt time.Time) (*models.SavedItem, Outcome, error) {
	var (
		entry   *models.SavedItem
		outcome Outcome
	)

	err := l.run(ctx, func(r *repositories.SavedRepository) error {
		existing, err := r.Get(ctx, item, user)
		switch {
		case errors.Is(err, shared.ErrNotFound):
			entry = &models.SavedItem{ItemKey: item, UserKey: user, DateAdded: addedAt.UTC()}
			if err := r.Create(ctx, entry); err != nil {
				return err
			}
			outcome = Added
			return nil
		case err != nil:
			return err
		}

		entry = existing
		if entry.IsActive() {
			outcome = Unchanged
			return nil
		}

		entry.Reactivate(addedAt)
		if err := r.Update(ctx, entry); err != nil {
			return err
		}
		outcome = Reactivated
		return nil
	})
	if err != nil {
		return nil, Unchanged, fmt.Errorf("failed to persist %s: %w", l.kind, err)
	}

	if outcome != Unchanged {
		l.logger.Debug("saved item", "kind", l.kind, "item", item, "user", user, "outcome", outcome)
	}
	return entry, outcome, nil
}

// Remove marks the active entry for (item, user) removed now. It fails with
// [shared.ErrNotFound] when there is no active entry.
func (l *Ledger) Remove(ctx context.Context, item, user models.Key) (*models.SavedItem, error) {
	var entry *models.SavedItem

	err := l.run(ctx, func(r *repositories.SavedRepository) error {
		existing, err := r.Get(ctx, item, user)
		if err != nil {
			return err
		}
		if !existing.IsActive() {
			return fmt.Errorf("%s item %d for user %d is not active: %w", l.kind, item, user, shared.ErrNotFound)
		}

		existing.MarkRemoved(l.now())
		if err := r.Update(ctx, existing); err != nil {
			return err
		}
		entry = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.logger.Debug("removed item", "kind", l.kind, "item", item, "user", user)
	return entry, nil
}

// Get returns the entry for (item, user), active or removed.
func (l *Ledger) Get(ctx context.Context, item, user models.Key) (*models.SavedItem, error) {
	return l.repo(l.db).Get(ctx, item, user)
}

// Newest returns the active entry with the latest add date for user. ok is false when the user
// has no active entries.
func (l *Ledger) Newest(ctx context.Context, user models.Key) (entry *models.SavedItem, ok bool, err error) {
	entry, err = l.repo(l.db).Newest(ctx, user)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return entry, true, nil
}

// Removed returns every removed entry of user, most recently removed first.
func (l *Ledger) Removed(ctx context.Context, user models.Key) ([]*models.SavedItem, error) {
	return l.repo(l.db).ListRemoved(ctx, user, 0)
}

// Active returns the active entries of user, newest first. A limit of zero returns all of them.
func (l *Ledger) Active(ctx context.Context, user models.Key, limit int) ([]*models.SavedItem, error) {
	return l.repo(l.db).ListActive(ctx, user, limit)
}

// Reconcile removes every active entry of user whose item is not in present. present must be the
// complete upstream listing. It returns the number of entries removed.
func (l *Ledger) Reconcile(ctx context.Context, user models.Key, present []models.Key) (int, error) {
	keep := make(map[models.Key]bool, len(present))
	for _, k := range present {
		keep[k] = true
	}

	removed := 0
	err := l.run(ctx, func(r *repositories.SavedRepository) error {
		active, err := r.ListActive(ctx, user, 0)
		if err != nil {
			return err
		}

		now := l.now()
		for _, entry := range active {
			if keep[entry.ItemKey] {
				continue
			}
			entry.MarkRemoved(now)
			if err := r.Update(ctx, entry); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to reconcile %s: %w", l.kind, err)
	}

	if removed > 0 {
		l.logger.Info("reconciled saved items", "kind", l.kind, "user", user, "removed", removed)
	}
	return removed, nil
}
