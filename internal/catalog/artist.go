package catalog

import (
	"errors"
	"fmt"

	"github.com/desertthunder/spotbak/internal/models"
	"github.com/desertthunder/spotbak/internal/shared"
)

func (u *unit) storedArtist(id string) (*models.Artist, error) {
	ident, ok, err := u.lookup(models.KindArtist, id)
	if err != nil || !ok {
		return nil, err
	}

	a, err := u.repos.Artists.Get(u.ctx, ident.Key)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, nil
	}
	return a, err
}

func (u *unit) artist(p models.ArtistPayload) (*models.Artist, error) {
	id, err := models.NormalizeExternalID(p.ID)
	if err != nil {
		return nil, fmt.Errorf("artist: %w", err)
	}

	stored, err := u.storedArtist(id)
	if err != nil {
		return nil, err
	}

	switch decide(stateOf(stored != nil, stored != nil && stored.IsSimplified), p.Simplified()) {
	case actionCreate:
		a := &models.Artist{ExternalID: id, Name: nonBlank(p.Name, ""), IsSimplified: p.Simplified()}
		applyArtistDetails(a, p.Details)
		if err := a.Validate(); err != nil {
			return nil, err
		}

		if a.Key, err = u.register(models.KindArtist, id); err != nil {
			return nil, err
		}
		if err := u.repos.Artists.Create(u.ctx, a); err != nil {
			return nil, err
		}
		u.logger.Debug("created artist", "id", id, "simplified", a.IsSimplified)

		return a, u.artistRelations(a, p)
	case actionUpgrade:
		stored.Name = nonBlank(p.Name, stored.Name)
		applyArtistDetails(stored, p.Details)
		stored.IsSimplified = false
		if err := u.repos.Artists.Update(u.ctx, stored); err != nil {
			return nil, err
		}
		u.logger.Debug("upgraded artist", "id", id)

		return stored, u.artistRelations(stored, p)
	default:
		return stored, nil
	}
}

func applyArtistDetails(a *models.Artist, d *models.ArtistDetails) {
	if d == nil {
		return
	}
	a.Popularity = d.Popularity
	a.Followers = d.Followers
}

func (u *unit) artistRelations(a *models.Artist, p models.ArtistPayload) error {
	ref := artistRef(a.Key)
	if p.Details != nil {
		if err := u.attachGenres(ref, models.RelArtistGenre, p.Details.Genres); err != nil {
			return err
		}
	}
	return u.attachImages(ref, p.Images)
}
