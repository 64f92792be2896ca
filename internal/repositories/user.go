package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/spotbak/internal/models"
	"github.com/desertthunder/spotbak/internal/shared"
)

const userColumns = `u.id, i.external_id, u.display_name, u.email, u.country, u.product, u.followers, u.created_at, u.updated_at`

// UserRepository stores Spotify user profiles.
type UserRepository struct {
	db shared.DBTX
}

// NewUserRepository creates a new UserRepository with the given connection
func NewUserRepository(db shared.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts u under its registry key.
func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	if u.Key == 0 {
		return fmt.Errorf("user %q has no identity", u.ExternalID)
	}
	if err := u.Validate(); err != nil {
		return err
	}

	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now

	query := `
		INSERT INTO users (id, display_name, email, country, product, followers, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		int64(u.Key), u.DisplayName, u.Email, u.Country, u.Product, u.Followers, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// Get retrieves a user by key
func (r *UserRepository) Get(ctx context.Context, key models.Key) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users u JOIN identities i ON i.id = u.id WHERE u.id = ?`
	u, err := scanUser(r.db.QueryRowContext(ctx, query, int64(key)))
	if err == sql.ErrNoRows {
		return nil, notFound("user", key)
	}
	return u, err
}

// GetByExternalID retrieves a user by Spotify user id
func (r *UserRepository) GetByExternalID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users u JOIN identities i ON i.id = u.id WHERE i.kind = ? AND i.external_id = ?`
	u, err := scanUser(r.db.QueryRowContext(ctx, query, string(models.KindUser), id))
	if err == sql.ErrNoRows {
		return nil, notFound("user", id)
	}
	return u, err
}

// Update writes every scalar of u.
func (r *UserRepository) Update(ctx context.Context, u *models.User) error {
	u.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE users
		SET display_name = ?, email = ?, country = ?, product = ?, followers = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		u.DisplayName, u.Email, u.Country, u.Product, u.Followers, u.UpdatedAt, int64(u.Key),
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return requireRow(result, "user", u.Key)
}

// ListByKeys returns the users for keys in the same order.
func (r *UserRepository) ListByKeys(ctx context.Context, keys []models.Key) ([]*models.User, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT `+userColumns+` FROM users u JOIN identities i ON i.id = u.id WHERE u.id IN (%s)`, placeholders(len(keys)))
	rows, err := r.db.QueryContext(ctx, query, keyArgs(keys)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}

	users, err := collect(rows, scanUser)
	if err != nil {
		return nil, err
	}
	return orderByKeys(keys, users, func(u *models.User) models.Key { return u.Key }), nil
}

func scanUser(s scanner) (*models.User, error) {
	var u models.User
	err := s.Scan(&u.Key, &u.ExternalID, &u.DisplayName, &u.Email, &u.Country, &u.Product, &u.Followers, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	u.CreatedAt, u.UpdatedAt = u.CreatedAt.UTC(), u.UpdatedAt.UTC()
	return &u, nil
}

// requireRow fails with [shared.ErrNotFound] when an UPDATE matched nothing.
func requireRow(result sql.Result, entity string, key any) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return notFound(entity, key)
	}
	return nil
}
