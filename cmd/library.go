package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/spotbak/internal/catalog"
	"github.com/desertthunder/spotbak/internal/formatter"
	"github.com/desertthunder/spotbak/internal/ledger"
	"github.com/desertthunder/spotbak/internal/market"
	"github.com/desertthunder/spotbak/internal/models"
	"github.com/desertthunder/spotbak/internal/repositories"
	"github.com/desertthunder/spotbak/internal/shared"
)

// Stats prints catalog and ledger counters.
func (r *Runner) Stats(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}
	defer db.Close()

	stats, err := repositories.NewStatsRepository(db).Collect(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(stats, true)
	}
	return r.writePlain("%s", formatter.RenderStats(stats))
}

// Runs lists backup history, newest first.
func (r *Runner) Runs(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := repositories.NewRunRepository(db).List(ctx, map[string]any{
		"status": cmd.String("status"),
		"limit":  cmd.Int("limit"),
	})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(runs, true)
	}
	return r.writePlain("%s", formatter.RenderRuns(runs))
}

func savedKind(kind string) (models.Kind, error) {
	switch kind {
	case "album", "albums":
		return models.KindSavedAlbum, nil
	case "track", "tracks":
		return models.KindSavedTrack, nil
	default:
		return "", fmt.Errorf("%w: kind must be album or track, got %q", shared.ErrInvalidArgument, kind)
	}
}

// savedUser resolves --user, defaulting to the user of the last completed backup.
func savedUser(ctx context.Context, cat *catalog.Engine, db *sql.DB, externalID string) (models.Key, error) {
	if externalID != "" {
		user, err := cat.User(ctx, externalID)
		if err != nil {
			return 0, err
		}
		return user.Key, nil
	}

	run, err := repositories.NewRunRepository(db).LastCompleted(ctx)
	if err != nil {
		return 0, fmt.Errorf("no completed backup yet, pass --user: %w", err)
	}
	if run.UserKey == 0 {
		return 0, fmt.Errorf("%w: last backup has no user", shared.ErrNotFound)
	}
	return run.UserKey, nil
}

// savedRows joins ledger entries with the names of the albums or tracks they point at.
func savedRows(ctx context.Context, db *sql.DB, kind models.Kind, items []*models.SavedItem) ([]formatter.SavedRow, error) {
	rows := make([]formatter.SavedRow, 0, len(items))
	for _, item := range items {
		row := formatter.SavedRow{DateAdded: item.DateAdded, DateRemoved: item.DateRemoved}
		if kind == models.KindSavedAlbum {
			album, err := repositories.NewAlbumRepository(db).Get(ctx, item.ItemKey)
			if err != nil {
				return nil, err
			}
			row.ExternalID, row.Name = album.ExternalID, album.Name
		} else {
			track, err := repositories.NewTrackRepository(db).Get(ctx, item.ItemKey)
			if err != nil {
				return nil, err
			}
			row.ExternalID, row.Name = track.ExternalID, track.Name
		}
		rows = append(rows, row)
	}
	return rows, nil
}

type savedQuery func(ctx context.Context, l *ledger.Ledger, user models.Key, limit int) ([]*models.SavedItem, error)

func (r *Runner) saved(ctx context.Context, cmd *cli.Command, title string, query savedQuery) error {
	kind, err := savedKind(cmd.String("kind"))
	if err != nil {
		return err
	}

	db, err := r.database()
	if err != nil {
		return err
	}
	defer db.Close()

	l, err := ledger.New(db, kind)
	if err != nil {
		return err
	}

	user, err := savedUser(ctx, catalog.NewEngine(db), db, cmd.String("user"))
	if err != nil {
		return err
	}

	items, err := query(ctx, l, user, cmd.Int("limit"))
	if err != nil {
		return err
	}

	rows, err := savedRows(ctx, db, kind, items)
	if err != nil {
		return err
	}

	switch {
	case cmd.Bool("json"):
		return r.writeJSON(rows, true)
	case cmd.Bool("csv"):
		data, err := formatter.SavedToCSV(rows)
		if err != nil {
			return err
		}
		_, err = r.output.Write(data)
		return err
	default:
		return r.writePlain("%s", formatter.RenderSaved(title, rows))
	}
}

// SavedNewest prints the most recently saved active entry.
func (r *Runner) SavedNewest(ctx context.Context, cmd *cli.Command) error {
	return r.saved(ctx, cmd, "Newest", func(ctx context.Context, l *ledger.Ledger, user models.Key, _ int) ([]*models.SavedItem, error) {
		entry, ok, err := l.Newest(ctx, user)
		if err != nil || !ok {
			return nil, err
		}
		return []*models.SavedItem{entry}, nil
	})
}

// SavedActive lists active entries, newest first.
func (r *Runner) SavedActive(ctx context.Context, cmd *cli.Command) error {
	return r.saved(ctx, cmd, "Saved", func(ctx context.Context, l *ledger.Ledger, user models.Key, limit int) ([]*models.SavedItem, error) {
		return l.Active(ctx, user, limit)
	})
}

// SavedRemoved lists entries that were removed from the library.
func (r *Runner) SavedRemoved(ctx context.Context, cmd *cli.Command) error {
	return r.saved(ctx, cmd, "Removed", func(ctx context.Context, l *ledger.Ledger, user models.Key, limit int) ([]*models.SavedItem, error) {
		items, err := l.Removed(ctx, user)
		if err != nil {
			return nil, err
		}
		if limit > 0 && len(items) > limit {
			items = items[:limit]
		}
		return items, nil
	})
}

// Markets decodes the stored availability of an album or track.
func (r *Runner) Markets(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: album or track id is required", shared.ErrMissingArgument)
	}

	db, err := r.database()
	if err != nil {
		return err
	}
	defer db.Close()

	cat := catalog.NewEngine(db)

	if cmd.Bool("track") {
		track, err := cat.Track(ctx, id)
		if err != nil {
			return err
		}
		return r.writeMarkets(cmd, track.ExternalID, track.Name, track.Markets)
	}

	album, err := cat.Album(ctx, id)
	if err != nil {
		return err
	}
	return r.writeMarkets(cmd, album.ExternalID, album.Name, album.Markets)
}

func (r *Runner) writeMarkets(cmd *cli.Command, id, name string, a market.Availability) error {
	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{"id": id, "name": name, "markets": a}, true)
	}
	return r.writePlain("%s", formatter.RenderMarkets(name, a))
}
