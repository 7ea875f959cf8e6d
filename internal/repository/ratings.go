package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/photo-ratings/internal/domain"
)

// RatingsRepository provides helpers for photo ratings.
type RatingsRepository struct {
	pool *pgxpool.Pool
}

// RatingUpsertParams captures the payload required to upsert a rating.
type RatingUpsertParams struct {
	PhotoID string
	RaterID string
	Value   int
}

// Upsert inserts or updates a rating and indicates whether it was newly created.
// A rater holds at most one rating per photo; rating again overwrites it.
func (r *RatingsRepository) Upsert(ctx context.Context, params RatingUpsertParams) (domain.Rating, bool, error) {
	const query = `
        INSERT INTO ratings (photo_id, rater_id, value)
        VALUES ($1,$2,$3)
        ON CONFLICT (photo_id, rater_id)
        DO UPDATE SET value = EXCLUDED.value, updated_at = now()
        RETURNING photo_id::text, rater_id, value, created_at, updated_at, (xmax = 0) AS inserted
    `

	var rating domain.Rating
	var inserted bool
	err := r.pool.QueryRow(ctx, query, params.PhotoID, params.RaterID, params.Value).Scan(
		&rating.PhotoID,
		&rating.RaterID,
		&rating.Value,
		&rating.CreatedAt,
		&rating.UpdatedAt,
		&inserted,
	)
	if err != nil {
		if isMissingPhoto(err) {
			return domain.Rating{}, false, ErrNotFound
		}
		return domain.Rating{}, false, fmt.Errorf("upsert rating: %w", err)
	}

	return rating, inserted, nil
}

// Delete removes a rater's rating for a photo and reports whether one existed.
func (r *RatingsRepository) Delete(ctx context.Context, photoID, raterID string) (bool, error) {
	const query = `DELETE FROM ratings WHERE photo_id = $1 AND rater_id = $2`

	tag, err := r.pool.Exec(ctx, query, photoID, raterID)
	if err != nil {
		if isMissingPhoto(err) {
			return false, nil
		}
		return false, fmt.Errorf("delete rating: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Summary returns the rating average and count for a photo. A photo
// without ratings yields a zero summary.
func (r *RatingsRepository) Summary(ctx context.Context, photoID string) (domain.RatingSummary, error) {
	const query = `
        SELECT COALESCE(AVG(value), 0)::float8 AS average,
               COUNT(*)::int8 AS count
        FROM ratings
        WHERE photo_id = $1
    `

	var summary domain.RatingSummary
	err := r.pool.QueryRow(ctx, query, photoID).Scan(&summary.Average, &summary.Count)
	if err != nil {
		return domain.RatingSummary{}, fmt.Errorf("summarize ratings: %w", err)
	}
	return summary, nil
}

// Get retrieves a rating for a specific rater/photo combination.
func (r *RatingsRepository) Get(ctx context.Context, photoID, raterID string) (domain.Rating, error) {
	const query = `
        SELECT photo_id::text, rater_id, value, created_at, updated_at
        FROM ratings
        WHERE photo_id = $1 AND rater_id = $2
    `
	var rating domain.Rating
	err := r.pool.QueryRow(ctx, query, photoID, raterID).Scan(
		&rating.PhotoID,
		&rating.RaterID,
		&rating.Value,
		&rating.CreatedAt,
		&rating.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isMissingPhoto(err) {
			return domain.Rating{}, ErrNotFound
		}
		return domain.Rating{}, fmt.Errorf("get rating: %w", err)
	}
	return rating, nil
}

// isMissingPhoto reports errors caused by a photo id that does not exist or
// is not a valid uuid.
func isMissingPhoto(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case pgerrcode.ForeignKeyViolation, pgerrcode.InvalidTextRepresentation:
		return true
	}
	return false
}
