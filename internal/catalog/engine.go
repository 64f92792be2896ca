package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/spotbak/internal/images"
	"github.com/desertthunder/spotbak/internal/models"
	"github.com/desertthunder/spotbak/internal/registry"
	"github.com/desertthunder/spotbak/internal/repositories"
	"github.com/desertthunder/spotbak/internal/shared"
)

// Engine persists upstream payloads into the catalog.
type Engine struct {
	db       *sql.DB
	registry *registry.Registry
	policy   images.Policy
	logger   *log.Logger
}

// Option configures an [Engine].
type Option func(*Engine)

// WithImagePolicy selects which images are stored for each object. The default is [images.Largest].
func WithImagePolicy(p images.Policy) Option {
	return func(e *Engine) { e.policy = p }
}

// WithLogger sets the engine logger.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithRegistry replaces the identity registry.
func WithRegistry(r *registry.Registry) Option {
	return func(e *Engine) { e.registry = r }
}

// NewEngine creates an Engine on db. Migrations must already be applied.
func NewEngine(db *sql.DB, opts ...Option) *Engine {
	e := &Engine{
		db:       db,
		registry: registry.New(),
		policy:   images.Largest,
		logger:   shared.DiscardLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// DB returns the underlying database handle.
func (e *Engine) DB() *sql.DB {
	return e.db
}

// UpsertOption tunes a single upsert call.
type UpsertOption func(*upsertConfig)

type upsertConfig struct {
	deep bool
}

// WithTracks persists the tracks listed in an album payload as well.
func WithTracks() UpsertOption {
	return func(c *upsertConfig) { c.deep = true }
}

// unit is the state of one unit of work. Every write goes through its transaction.
type unit struct {
	ctx    context.Context
	tx     *sql.Tx
	repos  *repositories.Repositories
	reg    *registry.Registry
	policy images.Policy
	logger *log.Logger
}

func (e *Engine) run(ctx context.Context, fn func(u *unit) error) error {
	return repositories.WithTx(ctx, e.db, func(tx *sql.Tx) error {
		return fn(&unit{
			ctx:    ctx,
			tx:     tx,
			repos:  repositories.New(tx),
			reg:    e.registry,
			policy: e.policy,
			logger: e.logger,
		})
	})
}

// UpsertGenre stores a genre by name.
func (e *Engine) UpsertGenre(ctx context.Context, name string) (*models.Genre, error) {
	var out *models.Genre
	err := e.run(ctx, func(u *unit) (err error) {
		out, err = u.genre(name)
		return err
	})
	return out, err
}

// UpsertArtist stores an artist and its genres and images.
func (e *Engine) UpsertArtist(ctx context.Context, p models.ArtistPayload) (*models.Artist, error) {
	var out *models.Artist
	err := e.run(ctx, func(u *unit) (err error) {
		out, err = u.artist(p)
		return err
	})
	return out, err
}

// UpsertAlbum stores an album with its artists, genres and images, and its tracks when
// [WithTracks] is given.
func (e *Engine) UpsertAlbum(ctx context.Context, p models.AlbumPayload, opts ...UpsertOption) (*models.Album, error) {
	var cfg upsertConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	var out *models.Album
	err := e.run(ctx, func(u *unit) (err error) {
		out, err = u.album(p, cfg.deep)
		return err
	})
	return out, err
}

// UpsertTrack stores a track with its parent album and artists.
func (e *Engine) UpsertTrack(ctx context.Context, p models.TrackPayload) (*models.Track, error) {
	var out *models.Track
	err := e.run(ctx, func(u *unit) (err error) {
		out, err = u.track(p, nil)
		return err
	})
	return out, err
}

// UpsertPlaylist stores a playlist with its owner and images, and its items when the payload is full.
func (e *Engine) UpsertPlaylist(ctx context.Context, p models.PlaylistPayload) (*models.Playlist, error) {
	var out *models.Playlist
	err := e.run(ctx, func(u *unit) (err error) {
		out, err = u.playlist(p)
		return err
	})
	return out, err
}

// ResyncPlaylist brings a stored full playlist in line with a newer full payload whose snapshot
// differs: scalars are refreshed and the items replaced. Any other case is a plain upsert.
func (e *Engine) ResyncPlaylist(ctx context.Context, p models.PlaylistPayload) (*models.Playlist, error) {
	var out *models.Playlist
	err := e.run(ctx, func(u *unit) (err error) {
		out, err = u.resyncPlaylist(p)
		return err
	})
	return out, err
}

// UpsertUser stores a user profile. Known users only have blank attributes filled in.
func (e *Engine) UpsertUser(ctx context.Context, p models.UserPayload) (*models.User, error) {
	var out *models.User
	err := e.run(ctx, func(u *unit) (err error) {
		out, err = u.user(p)
		return err
	})
	return out, err
}

// FollowArtist stores the artist and records that user follows it.
func (e *Engine) FollowArtist(ctx context.Context, user models.Key, p models.ArtistPayload) (*models.Artist, error) {
	var out *models.Artist
	err := e.run(ctx, func(u *unit) (err error) {
		if out, err = u.artist(p); err != nil {
			return err
		}
		return u.link(userRef(user), models.RelFollowsArtist, artistRef(out.Key))
	})
	return out, err
}

// FollowPlaylist stores the playlist and records that user follows it.
func (e *Engine) FollowPlaylist(ctx context.Context, user models.Key, p models.PlaylistPayload) (*models.Playlist, error) {
	var out *models.Playlist
	err := e.run(ctx, func(u *unit) (err error) {
		if out, err = u.playlist(p); err != nil {
			return err
		}
		return u.link(userRef(user), models.RelFollowsPlaylist, playlistRef(out.Key))
	})
	return out, err
}

// Attach stores a single relationship between two existing records.
func (e *Engine) Attach(ctx context.Context, edge models.Edge) error {
	return e.run(ctx, func(u *unit) error {
		return u.link(edge.From, edge.Relation, edge.To)
	})
}

// lookup returns the registered identity for (kind, id), reporting whether it exists.
func (u *unit) lookup(kind models.Kind, id string) (models.Identity, bool, error) {
	ident, err := u.reg.Find(u.ctx, u.tx, kind, id)
	if errors.Is(err, shared.ErrNotFound) {
		return models.Identity{}, false, nil
	}
	if err != nil {
		return models.Identity{}, false, err
	}
	return ident, true, nil
}

// register allocates the identity for a record about to be created.
func (u *unit) register(kind models.Kind, id string) (models.Key, error) {
	ident, _, err := u.reg.Persist(u.ctx, u.tx, kind, id)
	if err != nil {
		return 0, err
	}
	return ident.Key, nil
}

// skipped logs a related object that could not be stored because its identity is unusable.
func (u *unit) skipped(kind models.Kind, parent string, err error) {
	u.logger.Warn("skipping related object", "kind", kind, "parent", parent, "reason", err)
}

// genre resolves a genre by name, creating it when unseen.
func (u *unit) genre(name string) (*models.Genre, error) {
	id, err := models.NormalizeExternalID(name)
	if err != nil {
		return nil, fmt.Errorf("genre: %w", err)
	}

	ident, ok, err := u.lookup(models.KindGenre, id)
	if err != nil {
		return nil, err
	}
	if ok {
		g, err := u.repos.Genres.Get(u.ctx, ident.Key)
		if err == nil {
			return g, nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
	}

	key, err := u.register(models.KindGenre, id)
	if err != nil {
		return nil, err
	}

	g := &models.Genre{Key: key, Name: id}
	if err := u.repos.Genres.Create(u.ctx, g); err != nil {
		return nil, err
	}
	u.logger.Debug("created genre", "name", id)
	return g, nil
}

// nonBlank returns s trimmed, or fallback when s is blank.
func nonBlank(s, fallback string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return fallback
}
