package catalog

import (
	"github.com/desertthunder/spotbak/internal/images"
	"github.com/desertthunder/spotbak/internal/models"
	"github.com/desertthunder/spotbak/internal/shared"
)

func artistRef(k models.Key) models.Ref   { return models.Ref{Kind: models.KindArtist, Key: k} }
func albumRef(k models.Key) models.Ref    { return models.Ref{Kind: models.KindAlbum, Key: k} }
func trackRef(k models.Key) models.Ref    { return models.Ref{Kind: models.KindTrack, Key: k} }
func playlistRef(k models.Key) models.Ref { return models.Ref{Kind: models.KindPlaylist, Key: k} }
func userRef(k models.Key) models.Ref     { return models.Ref{Kind: models.KindUser, Key: k} }
func genreRef(k models.Key) models.Ref    { return models.Ref{Kind: models.KindGenre, Key: k} }
func imageRef(k models.Key) models.Ref    { return models.Ref{Kind: models.KindImage, Key: k} }

// link attaches from -rel-> to once. New edges are appended after the ones already owned by from.
func (u *unit) link(from models.Ref, rel models.Relation, to models.Ref) error {
	has, err := u.repos.Edges.Has(u.ctx, from, rel, to)
	if err != nil || has {
		return err
	}

	pos, err := u.repos.Edges.NextPosition(u.ctx, from, rel)
	if err != nil {
		return err
	}

	_, err = u.repos.Edges.Attach(u.ctx, models.Edge{From: from, Relation: rel, To: to, Position: pos})
	return err
}

// attachGenres links owner to each named genre. Blank names are skipped.
func (u *unit) attachGenres(owner models.Ref, rel models.Relation, names []string) error {
	for _, name := range names {
		g, err := u.genre(name)
		if shared.IsSkippable(err) {
			u.skipped(models.KindGenre, owner.String(), err)
			continue
		}
		if err != nil {
			return err
		}
		if err := u.link(owner, rel, genreRef(g.Key)); err != nil {
			return err
		}
	}
	return nil
}

// attachArtists upserts each artist and links owner to it in payload order.
func (u *unit) attachArtists(owner models.Ref, rel models.Relation, artists []models.ArtistPayload) error {
	for _, ap := range artists {
		a, err := u.artist(ap)
		if shared.IsSkippable(err) {
			u.skipped(models.KindArtist, owner.String(), err)
			continue
		}
		if err != nil {
			return err
		}
		if err := u.link(owner, rel, artistRef(a.Key)); err != nil {
			return err
		}
	}
	return nil
}

// attachImages stores the images chosen by the engine's policy and links owner to them.
func (u *unit) attachImages(owner models.Ref, candidates []models.ImagePayload) error {
	for _, ip := range images.Select(candidates, u.policy) {
		if ip.URL == "" {
			continue
		}

		img := &models.Image{URL: ip.URL, Width: ip.Width, Height: ip.Height}
		if err := u.repos.Images.Upsert(u.ctx, img); err != nil {
			return err
		}
		if err := u.link(owner, models.RelImage, imageRef(img.Key)); err != nil {
			return err
		}
	}
	return nil
}
