package catalog

import (
	"errors"
	"fmt"

	"github.com/desertthunder/spotbak/internal/models"
	"github.com/desertthunder/spotbak/internal/shared"
)

func (u *unit) storedTrack(id string) (*models.Track, error) {
	ident, ok, err := u.lookup(models.KindTrack, id)
	if err != nil || !ok {
		return nil, err
	}

	t, err := u.repos.Tracks.Get(u.ctx, ident.Key)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, nil
	}
	return t, err
}

// track upserts a track. parent is the album whose listing contains the track; when nil the
// payload's own album, if any, is upserted as the parent.
func (u *unit) track(p models.TrackPayload, parent *models.Album) (*models.Track, error) {
	id, err := models.NormalizeExternalID(p.ID)
	if err != nil {
		return nil, fmt.Errorf("track: %w", err)
	}

	stored, err := u.storedTrack(id)
	if err != nil {
		return nil, err
	}

	state := stateOf(stored != nil, stored != nil && stored.IsSimplified)
	act := decide(state, p.Simplified())

	if act == actionCreate {
		// Validate before the parent cascade writes anything.
		candidate := &models.Track{ExternalID: id, Name: nonBlank(p.Name, "")}
		if err := candidate.Validate(); err != nil {
			return nil, err
		}
	}

	album := parent
	if album == nil && p.Album != nil {
		album, err = u.album(*p.Album, false)
		if shared.IsSkippable(err) {
			u.skipped(models.KindAlbum, id, err)
			album, err = nil, nil
		}
		if err != nil {
			return nil, err
		}
	}

	var albumKey models.Key
	if album != nil {
		albumKey = album.Key
	}

	switch act {
	case actionCreate:
		t := &models.Track{ExternalID: id, AlbumKey: albumKey, IsSimplified: p.Simplified()}
		u.applyTrack(t, p)

		if t.Key, err = u.register(models.KindTrack, id); err != nil {
			return nil, err
		}
		if err := u.repos.Tracks.Create(u.ctx, t); err != nil {
			return nil, err
		}
		u.logger.Debug("created track", "id", id, "simplified", t.IsSimplified)

		return t, u.attachArtists(trackRef(t.Key), models.RelTrackArtist, p.Artists)
	case actionUpgrade:
		t := stored
		u.applyTrack(t, p)
		if t.AlbumKey == 0 {
			t.AlbumKey = albumKey
		}
		t.IsSimplified = false
		if err := u.repos.Tracks.Update(u.ctx, t); err != nil {
			return nil, err
		}
		u.logger.Debug("upgraded track", "id", id)

		return t, u.attachArtists(trackRef(t.Key), models.RelTrackArtist, p.Artists)
	default:
		t := stored
		if t.AlbumKey == 0 && albumKey != 0 {
			linked, err := u.repos.Tracks.SetAlbum(u.ctx, t.Key, albumKey)
			if err != nil {
				return nil, err
			}
			if linked {
				t.AlbumKey = albumKey
			}
		}
		return t, nil
	}
}

// applyTrack copies payload scalars onto t. Blank names and empty market lists keep the stored value.
func (u *unit) applyTrack(t *models.Track, p models.TrackPayload) {
	t.Name = nonBlank(p.Name, t.Name)
	t.DurationMS = p.DurationMS
	t.DiscNumber = p.DiscNumber
	t.TrackNumber = p.TrackNumber
	t.Explicit = p.Explicit
	if len(p.Markets) > 0 {
		t.Markets = u.markets(models.KindTrack, p.ID, p.Markets)
	}

	if d := p.Details; d != nil {
		t.ISRC = d.ISRC
		t.Popularity = d.Popularity
	}
}
