package catalog

import (
	"errors"
	"fmt"

	"github.com/desertthunder/spotbak/internal/models"
	"github.com/desertthunder/spotbak/internal/shared"
)

// user upserts a user. Users carry no completeness flag: a known user only has blank
// attributes filled in, and gets images only while it has none.
func (u *unit) user(p models.UserPayload) (*models.User, error) {
	id, err := models.NormalizeExternalID(p.ID)
	if err != nil {
		return nil, fmt.Errorf("user: %w", err)
	}

	var stored *models.User
	ident, ok, err := u.lookup(models.KindUser, id)
	if err != nil {
		return nil, err
	}
	if ok {
		stored, err = u.repos.Users.Get(u.ctx, ident.Key)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
	}

	if stored == nil {
		usr := &models.User{
			ExternalID:  id,
			DisplayName: p.DisplayName,
			Email:       p.Email,
			Country:     p.Country,
			Product:     p.Product,
			Followers:   p.Followers,
		}
		if usr.Key, err = u.register(models.KindUser, id); err != nil {
			return nil, err
		}
		if err := u.repos.Users.Create(u.ctx, usr); err != nil {
			return nil, err
		}
		u.logger.Debug("created user", "id", id)
		return usr, u.attachImages(userRef(usr.Key), p.Images)
	}

	if fillUser(stored, p) {
		if err := u.repos.Users.Update(u.ctx, stored); err != nil {
			return nil, err
		}
		u.logger.Debug("filled in user", "id", id)
	}

	if len(p.Images) > 0 {
		existing, err := u.repos.Edges.Related(u.ctx, userRef(stored.Key), models.RelImage)
		if err != nil {
			return nil, err
		}
		if len(existing) == 0 {
			if err := u.attachImages(userRef(stored.Key), p.Images); err != nil {
				return nil, err
			}
		}
	}
	return stored, nil
}

// fillUser copies payload values into blank attributes of usr and reports whether anything changed.
func fillUser(usr *models.User, p models.UserPayload) bool {
	changed := false
	fill := func(dst *string, v string) {
		if *dst == "" && v != "" {
			*dst = v
			changed = true
		}
	}

	fill(&usr.DisplayName, p.DisplayName)
	fill(&usr.Email, p.Email)
	fill(&usr.Country, p.Country)
	fill(&usr.Product, p.Product)
	if usr.Followers == 0 && p.Followers > 0 {
		usr.Followers = p.Followers
		changed = true
	}
	return changed
}
