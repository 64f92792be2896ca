package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/spotbak/internal/models"
	"github.com/desertthunder/spotbak/internal/shared"
)

// ImageRepository stores images deduplicated by URL.
type ImageRepository struct {
	db shared.DBTX
}

// NewImageRepository creates a new ImageRepository with the given connection
func NewImageRepository(db shared.DBTX) *ImageRepository {
	return &ImageRepository{db: db}
}

// Upsert stores img by URL and sets img.Key. Dimensions already stored are kept; missing ones are filled in.
func (r *ImageRepository) Upsert(ctx context.Context, img *models.Image) error {
	if img.URL == "" {
		return shared.MissingField(string(models.KindImage), "url")
	}

	query := `
		INSERT INTO images (url, width, height, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (url) DO UPDATE SET
			width = COALESCE(images.width, excluded.width),
			height = COALESCE(images.height, excluded.height)
	`
	if _, err := r.db.ExecContext(ctx, query, img.URL, nullInt(img.Width), nullInt(img.Height), time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to upsert image: %w", err)
	}

	stored, err := r.GetByURL(ctx, img.URL)
	if err != nil {
		return err
	}
	*img = *stored
	return nil
}

// Get retrieves an image by key
func (r *ImageRepository) Get(ctx context.Context, key models.Key) (*models.Image, error) {
	query := `SELECT id, url, width, height FROM images WHERE id = ?`
	img, err := scanImage(r.db.QueryRowContext(ctx, query, int64(key)))
	if err == sql.ErrNoRows {
		return nil, notFound("image", key)
	}
	return img, err
}

// GetByURL retrieves an image by URL
func (r *ImageRepository) GetByURL(ctx context.Context, url string) (*models.Image, error) {
	query := `SELECT id, url, width, height FROM images WHERE url = ?`
	img, err := scanImage(r.db.QueryRowContext(ctx, query, url))
	if err == sql.ErrNoRows {
		return nil, notFound("image", url)
	}
	return img, err
}

// ListByKeys returns the images for keys in the same order.
func (r *ImageRepository) ListByKeys(ctx context.Context, keys []models.Key) ([]*models.Image, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT id, url, width, height FROM images WHERE id IN (%s)`, placeholders(len(keys)))
	rows, err := r.db.QueryContext(ctx, query, keyArgs(keys)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query images: %w", err)
	}

	imgs, err := collect(rows, scanImage)
	if err != nil {
		return nil, err
	}
	return orderByKeys(keys, imgs, func(i *models.Image) models.Key { return i.Key }), nil
}

func scanImage(s scanner) (*models.Image, error) {
	var (
		img    models.Image
		width  sql.NullInt64
		height sql.NullInt64
	)
	if err := s.Scan(&img.Key, &img.URL, &width, &height); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan image: %w", err)
	}
	img.Width = intPtr(width)
	img.Height = intPtr(height)
	return &img, nil
}
