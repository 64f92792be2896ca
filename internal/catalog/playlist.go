package catalog

import (
	"errors"
	"fmt"

	"github.com/desertthunder/spotbak/internal/models"
	"github.com/desertthunder/spotbak/internal/shared"
)

func (u *unit) storedPlaylist(id string) (*models.Playlist, error) {
	ident, ok, err := u.lookup(models.KindPlaylist, id)
	if err != nil || !ok {
		return nil, err
	}

	p, err := u.repos.Playlists.Get(u.ctx, ident.Key)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, nil
	}
	return p, err
}

// playlist upserts a playlist. Items of a full payload are added at positions not yet stored,
// so a kept record can still gain entries but never loses or reorders them. Replacing the items of
// a changed snapshot is left to resyncPlaylist.
func (u *unit) playlist(p models.PlaylistPayload) (*models.Playlist, error) {
	id, err := models.NormalizeExternalID(p.ID)
	if err != nil {
		return nil, fmt.Errorf("playlist: %w", err)
	}

	stored, err := u.storedPlaylist(id)
	if err != nil {
		return nil, err
	}

	act := decide(stateOf(stored != nil, stored != nil && stored.IsSimplified), p.Simplified())
	if act == actionKeep {
		if p.Details != nil {
			if err := u.playlistItems(stored, p.Details.Items); err != nil {
				return nil, err
			}
		}
		return stored, nil
	}

	if act == actionCreate {
		candidate := &models.Playlist{ExternalID: id, Name: nonBlank(p.Name, "")}
		if err := candidate.Validate(); err != nil {
			return nil, err
		}
	}

	var ownerKey models.Key
	owner, err := u.user(p.Owner)
	switch {
	case shared.IsSkippable(err):
		u.skipped(models.KindUser, id, err)
	case err != nil:
		return nil, err
	default:
		ownerKey = owner.Key
	}

	var pl *models.Playlist
	if act == actionCreate {
		pl = &models.Playlist{ExternalID: id, OwnerKey: ownerKey, IsSimplified: p.Simplified()}
		applyPlaylist(pl, p)

		if pl.Key, err = u.register(models.KindPlaylist, id); err != nil {
			return nil, err
		}
		if err := u.repos.Playlists.Create(u.ctx, pl); err != nil {
			return nil, err
		}
		u.logger.Debug("created playlist", "id", id, "simplified", pl.IsSimplified)
	} else {
		pl = stored
		applyPlaylist(pl, p)
		if pl.OwnerKey == 0 {
			pl.OwnerKey = ownerKey
		}
		pl.IsSimplified = false
		if err := u.repos.Playlists.Update(u.ctx, pl); err != nil {
			return nil, err
		}
		u.logger.Debug("upgraded playlist", "id", id)
	}

	if err := u.attachImages(playlistRef(pl.Key), p.Images); err != nil {
		return nil, err
	}
	if p.Details != nil {
		if err := u.playlistItems(pl, p.Details.Items); err != nil {
			return nil, err
		}
	}
	return pl, nil
}

func (u *unit) resyncPlaylist(p models.PlaylistPayload) (*models.Playlist, error) {
	id, err := models.NormalizeExternalID(p.ID)
	if err != nil {
		return nil, fmt.Errorf("playlist: %w", err)
	}

	stored, err := u.storedPlaylist(id)
	if err != nil {
		return nil, err
	}
	if stored == nil || stored.IsSimplified || p.Details == nil || p.SnapshotID == "" || p.SnapshotID == stored.SnapshotID {
		return u.playlist(p)
	}

	applyPlaylist(stored, p)
	if err := u.repos.Playlists.Update(u.ctx, stored); err != nil {
		return nil, err
	}

	cleared, err := u.repos.PlaylistItems.Clear(u.ctx, stored.Key)
	if err != nil {
		return nil, err
	}
	if err := u.playlistItems(stored, p.Details.Items); err != nil {
		return nil, err
	}
	u.logger.Debug("resynced playlist", "id", id, "snapshot", stored.SnapshotID, "cleared", cleared, "items", len(p.Details.Items))
	return stored, nil
}

func applyPlaylist(pl *models.Playlist, p models.PlaylistPayload) {
	pl.Name = nonBlank(p.Name, pl.Name)
	pl.Description = p.Description
	pl.SnapshotID = nonBlank(p.SnapshotID, pl.SnapshotID)
	pl.Public = p.Public
	pl.Collaborative = p.Collaborative
	if p.Details != nil {
		pl.Followers = p.Details.Followers
	}
}

// playlistItems stores each item at its upstream position. Items without a usable track
// (episodes, local files) are skipped but keep their position reserved.
func (u *unit) playlistItems(pl *models.Playlist, items []models.PlaylistItemPayload) error {
	for pos, ip := range items {
		if ip.Track == nil {
			continue
		}

		t, err := u.track(*ip.Track, nil)
		if shared.IsSkippable(err) {
			u.skipped(models.KindTrack, pl.ExternalID, err)
			continue
		}
		if err != nil {
			return err
		}

		item := &models.PlaylistItem{PlaylistKey: pl.Key, TrackKey: t.Key, Position: pos, AddedAt: ip.AddedAt}
		if ip.AddedBy != nil {
			by, err := u.user(*ip.AddedBy)
			switch {
			case shared.IsSkippable(err):
			case err != nil:
				return err
			default:
				item.AddedByKey = by.Key
			}
		}

		if _, err := u.repos.PlaylistItems.Add(u.ctx, item); err != nil {
			return err
		}
	}
	return nil
}
