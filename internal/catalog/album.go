package catalog

import (
	"errors"
	"fmt"

	"github.com/desertthunder/spotbak/internal/market"
	"github.com/desertthunder/spotbak/internal/models"
	"github.com/desertthunder/spotbak/internal/shared"
)

func (u *unit) storedAlbum(id string) (*models.Album, error) {
	ident, ok, err := u.lookup(models.KindAlbum, id)
	if err != nil || !ok {
		return nil, err
	}

	a, err := u.repos.Albums.Get(u.ctx, ident.Key)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, nil
	}
	return a, err
}

// album upserts an album. With deep set, the payload's tracks are persisted and linked too,
// including on records that are otherwise kept as they are.
func (u *unit) album(p models.AlbumPayload, deep bool) (*models.Album, error) {
	id, err := models.NormalizeExternalID(p.ID)
	if err != nil {
		return nil, fmt.Errorf("album: %w", err)
	}

	stored, err := u.storedAlbum(id)
	if err != nil {
		return nil, err
	}

	var a *models.Album
	switch decide(stateOf(stored != nil, stored != nil && stored.IsSimplified), p.Simplified()) {
	case actionCreate:
		a = &models.Album{ExternalID: id, IsSimplified: p.Simplified()}
		u.applyAlbum(a, p)
		if err := a.Validate(); err != nil {
			return nil, err
		}

		if a.Key, err = u.register(models.KindAlbum, id); err != nil {
			return nil, err
		}
		if err := u.repos.Albums.Create(u.ctx, a); err != nil {
			return nil, err
		}
		u.logger.Debug("created album", "id", id, "simplified", a.IsSimplified)

		if err := u.albumRelations(a, p); err != nil {
			return nil, err
		}
	case actionUpgrade:
		a = stored
		u.applyAlbum(a, p)
		a.IsSimplified = false
		if err := u.repos.Albums.Update(u.ctx, a); err != nil {
			return nil, err
		}
		u.logger.Debug("upgraded album", "id", id)

		if err := u.albumRelations(a, p); err != nil {
			return nil, err
		}
	default:
		a = stored
	}

	if deep {
		if err := u.albumTracks(a, p.Tracks); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// applyAlbum copies payload scalars onto a. Blank names and empty market lists keep the stored value.
func (u *unit) applyAlbum(a *models.Album, p models.AlbumPayload) {
	a.Name = nonBlank(p.Name, a.Name)
	a.AlbumType = nonBlank(p.AlbumType, a.AlbumType)
	a.ReleaseDate = nonBlank(p.ReleaseDate, a.ReleaseDate)
	a.ReleaseDatePrecision = nonBlank(p.ReleaseDatePrecision, a.ReleaseDatePrecision)
	if p.TotalTracks > 0 {
		a.TotalTracks = p.TotalTracks
	}
	if len(p.Markets) > 0 {
		a.Markets = u.markets(models.KindAlbum, p.ID, p.Markets)
	}

	if d := p.Details; d != nil {
		a.Label = d.Label
		a.Popularity = d.Popularity
		a.UPC = d.UPC
	}
}

// markets parses upstream market codes, logging codes outside the canonical list.
func (u *unit) markets(kind models.Kind, id string, codes []string) market.Availability {
	set, unknown := market.Parse(codes)
	if len(unknown) > 0 {
		u.logger.Warn("ignoring unknown market codes", "kind", kind, "id", id, "codes", unknown)
	}
	return set
}

func (u *unit) albumRelations(a *models.Album, p models.AlbumPayload) error {
	ref := albumRef(a.Key)
	if err := u.attachArtists(ref, models.RelAlbumArtist, p.Artists); err != nil {
		return err
	}
	if p.Details != nil {
		if err := u.attachGenres(ref, models.RelAlbumGenre, p.Details.Genres); err != nil {
			return err
		}
	}
	return u.attachImages(ref, p.Images)
}

func (u *unit) albumTracks(a *models.Album, tracks []models.TrackPayload) error {
	for _, tp := range tracks {
		_, err := u.track(tp, a)
		if shared.IsSkippable(err) {
			u.skipped(models.KindTrack, a.ExternalID, err)
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}
