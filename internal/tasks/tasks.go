package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/desertthunder/spotbak/internal/catalog"
	"github.com/desertthunder/spotbak/internal/ledger"
	"github.com/desertthunder/spotbak/internal/models"
	"github.com/desertthunder/spotbak/internal/repositories"
	"github.com/desertthunder/spotbak/internal/services"
	"github.com/desertthunder/spotbak/internal/shared"
)

// Scope selects what a backup run fetches.
type Scope struct {
	Albums    bool
	Tracks    bool
	Playlists bool
	Artists   bool
	Full      bool // read complete listings and reconcile the ledgers
}

// AllScope selects every part of the library for an incremental run.
func AllScope() Scope {
	return Scope{Albums: true, Tracks: true, Playlists: true, Artists: true}
}

// IsZero reports whether nothing is selected.
func (s Scope) IsZero() bool {
	return !s.Albums && !s.Tracks && !s.Playlists && !s.Artists
}

func (s Scope) String() string {
	var parts []string
	for _, p := range []struct {
		on   bool
		name string
	}{
		{s.Albums, "albums"},
		{s.Tracks, "tracks"},
		{s.Playlists, "playlists"},
		{s.Artists, "artists"},
	} {
		if p.on {
			parts = append(parts, p.name)
		}
	}

	out := strings.Join(parts, ",")
	if s.Full {
		out += "+full"
	}
	return out
}

// BackupOpts contains configuration for backup runs.
type BackupOpts struct {
	DeepAlbums        bool    // Persist the track listing of saved albums
	Concurrency       int     // Concurrent playlist fetches (default: 4)
	RequestsPerSecond float64 // Playlist fetches per second (default: 5)
}

// OptsFromConfig maps the [backup] config section onto BackupOpts.
func OptsFromConfig(cfg shared.BackupConfig) BackupOpts {
	return BackupOpts{
		DeepAlbums:        cfg.DeepAlbums,
		Concurrency:       cfg.Concurrency,
		RequestsPerSecond: cfg.RequestsPerSecond,
	}
}

func (o BackupOpts) withDefaults() BackupOpts {
	if o.Concurrency <= 0 {
		o.Concurrency = 4
	}
	if o.Concurrency > 10 {
		o.Concurrency = 10
	}
	if o.RequestsPerSecond <= 0 {
		o.RequestsPerSecond = 5.0
	}
	return o
}

// BackupEngine copies a user's library from a [services.Service] into the local store.
//
// Upstream reads may run concurrently; writes go through the catalog and ledgers one unit of
// work at a time.
type BackupEngine struct {
	svc     services.Service
	catalog *catalog.Engine
	albums  *ledger.Ledger
	tracks  *ledger.Ledger
	runs    *repositories.RunRepository
	opts    BackupOpts
	logger  *log.Logger
	now     func() time.Time
}

// NewBackupEngine creates a BackupEngine storing through cat.
func NewBackupEngine(svc services.Service, cat *catalog.Engine, opts BackupOpts, logger *log.Logger) (*BackupEngine, error) {
	if svc == nil {
		return nil, fmt.Errorf("%w: service not initialized", shared.ErrServiceUnavailable)
	}
	if logger == nil {
		logger = shared.DiscardLogger()
	}

	albums, err := ledger.New(cat.DB(), models.KindSavedAlbum, ledger.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	tracks, err := ledger.New(cat.DB(), models.KindSavedTrack, ledger.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	return &BackupEngine{
		svc:     svc,
		catalog: cat,
		albums:  albums,
		tracks:  tracks,
		runs:    repositories.NewRunRepository(cat.DB()),
		opts:    opts.withDefaults(),
		logger:  logger,
		now:     time.Now,
	}, nil
}

// sendProgress sends a progress update through the channel without blocking.
func (e *BackupEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Run performs one backup and returns its recorded run. The run is stored as failed when any
// step fails; the error is returned as well.
func (e *BackupEngine) Run(ctx context.Context, progress chan<- ProgressUpdate, scope Scope) (*models.BackupRun, error) {
	if scope.IsZero() {
		return nil, fmt.Errorf("%w: empty backup scope", shared.ErrInvalidArgument)
	}

	run := models.NewBackupRun(shared.GenerateID(), scope.String(), e.now())
	if err := e.runs.Create(ctx, run); err != nil {
		return nil, err
	}
	run.Status = models.RunRunning
	if err := e.runs.Update(ctx, run); err != nil {
		return nil, err
	}

	err := e.backup(ctx, progress, scope, run)

	run.Finish(err, e.now())
	if uerr := e.runs.Update(context.WithoutCancel(ctx), run); uerr != nil {
		return run, errors.Join(err, uerr)
	}

	if err != nil {
		e.logger.Error("backup failed", "run", run.ID, "error", err)
		return run, err
	}

	e.logger.Info("backup completed", "run", run.ID, "albums", run.AlbumsSaved, "tracks", run.TracksSaved,
		"playlists", run.Playlists, "artists", run.ArtistsFollowed, "removed", run.Removed)
	e.sendProgress(progress, finishedUpdate(fmt.Sprintf(
		"Backup complete: %d albums, %d tracks, %d playlists, %d artists, %d removed",
		run.AlbumsSaved, run.TracksSaved, run.Playlists, run.ArtistsFollowed, run.Removed,
	)))
	return run, nil
}

func (e *BackupEngine) backup(ctx context.Context, progress chan<- ProgressUpdate, scope Scope, run *models.BackupRun) error {
	profile, err := e.svc.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch profile: %w", err)
	}

	user, err := e.catalog.UpsertUser(ctx, *profile)
	if err != nil {
		return fmt.Errorf("failed to store profile: %w", err)
	}
	run.UserKey = user.Key
	e.sendProgress(progress, profileUpdate(user.Name()))

	if scope.Albums {
		if err := e.backupAlbums(ctx, progress, user, scope.Full, run); err != nil {
			return err
		}
	}
	if scope.Tracks {
		if err := e.backupTracks(ctx, progress, user, scope.Full, run); err != nil {
			return err
		}
	}
	if scope.Playlists {
		if err := e.backupPlaylists(ctx, progress, user, scope.Full, run); err != nil {
			return err
		}
	}
	if scope.Artists {
		if err := e.backupArtists(ctx, progress, user, run); err != nil {
			return err
		}
	}
	return nil
}

// cutoff returns the add date at which an incremental listing can stop.
func cutoff(ctx context.Context, l *ledger.Ledger, user models.Key, full bool) (time.Time, bool, error) {
	if full {
		return time.Time{}, false, nil
	}
	newest, ok, err := l.Newest(ctx, user)
	if err != nil || !ok {
		return time.Time{}, false, err
	}
	return newest.DateAdded, true, nil
}

func (e *BackupEngine) backupAlbums(ctx context.Context, progress chan<- ProgressUpdate, user *models.User, full bool, run *models.BackupRun) error {
	stopAt, incremental, err := cutoff(ctx, e.albums, user.Key, full)
	if err != nil {
		return err
	}

	var opts []catalog.UpsertOption
	if e.opts.DeepAlbums {
		opts = append(opts, catalog.WithTracks())
	}

	var present []models.Key
	step := 0
	err = e.svc.SavedAlbums(ctx, func(p models.SavedAlbumPayload) error {
		if incremental && p.AddedAt.Before(stopAt) {
			e.sendProgress(progress, stoppedUpdate(FetchAlbums, step))
			return services.ErrStopPaging
		}

		album, err := e.catalog.UpsertAlbum(ctx, p.Album, opts...)
		if shared.IsSkippable(err) {
			e.logger.Warn("skipping saved album", "error", err)
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to store album %s: %w", p.Album.ID, err)
		}
		present = append(present, album.Key)

		_, outcome, err := e.albums.PersistSaved(ctx, album.Key, user.Key, p.AddedAt)
		if err != nil {
			return err
		}
		if outcome != ledger.Unchanged {
			run.AlbumsSaved++
		}

		step++
		e.sendProgress(progress, savedUpdate(FetchAlbums, step, album.Name, outcome))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to back up saved albums: %w", err)
	}

	if !full {
		return nil
	}

	removed, err := e.albums.Reconcile(ctx, user.Key, present)
	if err != nil {
		return err
	}
	run.Removed += removed
	e.sendProgress(progress, reconcileUpdate("albums", removed))
	return nil
}

func (e *BackupEngine) backupTracks(ctx context.Context, progress chan<- ProgressUpdate, user *models.User, full bool, run *models.BackupRun) error {
	stopAt, incremental, err := cutoff(ctx, e.tracks, user.Key, full)
	if err != nil {
		return err
	}

	var present []models.Key
	step := 0
	err = e.svc.SavedTracks(ctx, func(p models.SavedTrackPayload) error {
		if incremental && p.AddedAt.Before(stopAt) {
			e.sendProgress(progress, stoppedUpdate(FetchTracks, step))
			return services.ErrStopPaging
		}

		track, err := e.catalog.UpsertTrack(ctx, p.Track)
		if shared.IsSkippable(err) {
			e.logger.Warn("skipping saved track", "error", err)
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to store track %s: %w", p.Track.ID, err)
		}
		present = append(present, track.Key)

		_, outcome, err := e.tracks.PersistSaved(ctx, track.Key, user.Key, p.AddedAt)
		if err != nil {
			return err
		}
		if outcome != ledger.Unchanged {
			run.TracksSaved++
		}

		step++
		e.sendProgress(progress, savedUpdate(FetchTracks, step, track.Name, outcome))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to back up saved tracks: %w", err)
	}

	if !full {
		return nil
	}

	removed, err := e.tracks.Reconcile(ctx, user.Key, present)
	if err != nil {
		return err
	}
	run.Removed += removed
	e.sendProgress(progress, reconcileUpdate("tracks", removed))
	return nil
}

// storePlaylist upserts p as owned by user or as followed, depending on its owner.
func (e *BackupEngine) storePlaylist(ctx context.Context, user *models.User, p models.PlaylistPayload) (*models.Playlist, error) {
	if p.Owner.ID == user.ExternalID {
		return e.catalog.UpsertPlaylist(ctx, p)
	}
	return e.catalog.FollowPlaylist(ctx, user.Key, p)
}

func (e *BackupEngine) backupPlaylists(ctx context.Context, progress chan<- ProgressUpdate, user *models.User, full bool, run *models.BackupRun) error {
	var pending []models.PlaylistPayload
	stale := make(map[string]bool)

	step := 0
	err := e.svc.Playlists(ctx, func(p models.PlaylistPayload) error {
		stored, err := e.catalog.Playlist(ctx, p.ID)
		switch {
		case errors.Is(err, shared.ErrNotFound), errors.Is(err, shared.ErrInvalidIdentity):
			stored = nil
		case err != nil:
			return err
		}

		pl, err := e.storePlaylist(ctx, user, p)
		if shared.IsSkippable(err) {
			e.logger.Warn("skipping playlist", "error", err)
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to store playlist %s: %w", p.ID, err)
		}

		step++
		run.Playlists++
		e.sendProgress(progress, playlistUpdate(step, pl.Name))

		changed := stored != nil && !stored.IsSimplified && stored.SnapshotID != p.SnapshotID
		if changed {
			stale[p.ID] = true
		}
		if full || stored == nil || stored.IsSimplified || changed {
			pending = append(pending, p)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to back up playlists: %w", err)
	}

	fetched, err := e.fetchPlaylists(ctx, pending)
	if err != nil {
		return err
	}

	for i, p := range fetched {
		var err error
		if stale[p.ID] {
			_, err = e.catalog.ResyncPlaylist(ctx, *p)
		} else {
			_, err = e.storePlaylist(ctx, user, *p)
		}
		if err != nil {
			return fmt.Errorf("failed to store playlist items %s: %w", p.ID, err)
		}
		e.sendProgress(progress, playlistItemsUpdate(i+1, len(fetched), p.Name, len(p.Details.Items)))
	}
	return nil
}

// fetchPlaylists loads the full form of each playlist concurrently, throttled by the configured
// request rate. Results keep the order of pending.
func (e *BackupEngine) fetchPlaylists(ctx context.Context, pending []models.PlaylistPayload) ([]*models.PlaylistPayload, error) {
	if len(pending) == 0 {
		return nil, nil
	}

	limiter := rate.NewLimiter(rate.Limit(e.opts.RequestsPerSecond), 1)
	results := make([]*models.PlaylistPayload, len(pending))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Concurrency)

	for i, p := range pending {
		g.Go(func() error {
			if err := limiter.Wait(gctx); err != nil {
				return err
			}

			full, err := e.svc.Playlist(gctx, p.ID)
			if err != nil {
				return fmt.Errorf("failed to fetch playlist %s: %w", p.ID, err)
			}
			if full.Details == nil {
				full.Details = &models.PlaylistDetails{}
			}
			results[i] = full
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (e *BackupEngine) backupArtists(ctx context.Context, progress chan<- ProgressUpdate, user *models.User, run *models.BackupRun) error {
	step := 0
	err := e.svc.FollowedArtists(ctx, func(p models.ArtistPayload) error {
		artist, err := e.catalog.FollowArtist(ctx, user.Key, p)
		if shared.IsSkippable(err) {
			e.logger.Warn("skipping followed artist", "error", err)
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to store artist %s: %w", p.ID, err)
		}

		step++
		run.ArtistsFollowed++
		e.sendProgress(progress, artistUpdate(step, artist.Name))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to back up followed artists: %w", err)
	}
	return nil
}
