package main

import (
	"context"
	"sync"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/spotbak/internal/catalog"
	"github.com/desertthunder/spotbak/internal/images"
	"github.com/desertthunder/spotbak/internal/shared"
	"github.com/desertthunder/spotbak/internal/tasks"
)

func (r *Runner) scope(cmd *cli.Command) tasks.Scope {
	scope := tasks.Scope{
		Albums:    cmd.Bool("albums"),
		Tracks:    cmd.Bool("tracks"),
		Playlists: cmd.Bool("playlists"),
		Artists:   cmd.Bool("artists"),
	}
	if scope.IsZero() {
		scope = tasks.AllScope()
	}
	scope.Full = cmd.Bool("full") || r.config.Backup.FullScan
	return scope
}

// Backup fetches the library from Spotify and stores it, reporting progress through the logger.
func (r *Runner) Backup(ctx context.Context, cmd *cli.Command) error {
	policy, err := images.ParsePolicy(r.config.Backup.ImagePolicy)
	if err != nil {
		return err
	}

	svc, err := r.spotify(ctx)
	if err != nil {
		return err
	}

	db, err := r.database()
	if err != nil {
		return err
	}
	defer db.Close()

	cat := catalog.NewEngine(db,
		catalog.WithImagePolicy(policy),
		catalog.WithLogger(shared.WithLogger(r.logger, "component", "catalog")),
	)
	engine, err := tasks.NewBackupEngine(svc, cat, tasks.OptsFromConfig(r.config.Backup),
		shared.WithLogger(r.logger, "component", "backup"))
	if err != nil {
		return err
	}

	progress := make(chan tasks.ProgressUpdate, 64)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for update := range progress {
			r.logger.Info(update.Message, "phase", update.Phase)
		}
	}()

	scope := r.scope(cmd)
	r.logger.Info("starting backup", "scope", scope)

	run, err := engine.Run(ctx, progress, scope)
	close(progress)
	wg.Wait()

	if run != nil && cmd.Bool("json") {
		if werr := r.writeJSON(run, true); werr != nil {
			return werr
		}
	}
	if err != nil {
		return err
	}

	if !cmd.Bool("json") {
		return r.writePlain("✓ Backup %s completed in %s\n", run.ID, run.Duration().Round(time.Millisecond))
	}
	return nil
}
