package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/photo-ratings/internal/domain"
)

// PhotosRepository provides persistence helpers for photos.
type PhotosRepository struct {
	pool *pgxpool.Pool
}

// Create inserts a new photo owned by ownerID and returns the stored entity.
func (r *PhotosRepository) Create(ctx context.Context, title, ownerID string) (domain.Photo, error) {
	const query = `
        INSERT INTO photos (id, title, owner_id)
        VALUES ($1, $2, $3)
        RETURNING id::text, title, owner_id, created_at
    `

	var photo domain.Photo
	err := r.pool.QueryRow(ctx, query, uuid.NewString(), title, ownerID).
		Scan(&photo.ID, &photo.Title, &photo.OwnerID, &photo.CreatedAt)
	if err != nil {
		return domain.Photo{}, fmt.Errorf("insert photo: %w", err)
	}
	return photo, nil
}

// Get fetches a photo by id. Ids that are not UUIDs are reported as not found.
func (r *PhotosRepository) Get(ctx context.Context, id string) (domain.Photo, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return domain.Photo{}, ErrNotFound
	}

	const query = `
        SELECT id::text, title, owner_id, created_at
        FROM photos
        WHERE id = $1
    `

	var photo domain.Photo
	err = r.pool.QueryRow(ctx, query, parsed.String()).Scan(&photo.ID, &photo.Title, &photo.OwnerID, &photo.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Photo{}, ErrNotFound
		}
		return domain.Photo{}, fmt.Errorf("get photo: %w", err)
	}
	return photo, nil
}
