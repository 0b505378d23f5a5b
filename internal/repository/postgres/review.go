package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/nkiryanov/medify/internal/apperrors"
	"github.com/nkiryanov/medify/internal/models"
)

type ReviewRepo struct {
	DB DBTX
}

const createReview = `-- name: CreateReview
INSERT INTO reviews (appointment_id, doctor_profile_id, rating, comment)
VALUES ($1, $2, $3, $4)
RETURNING id, created_at, appointment_id, doctor_profile_id, rating, comment
`

func (r *ReviewRepo) CreateReview(ctx context.Context, review models.Review) (models.Review, error) {
	rows, _ := r.DB.Query(ctx, createReview, review.AppointmentID, review.DoctorProfileID, review.Rating, review.Comment)
	created, err := pgx.CollectOneRow(rows, func(row pgx.CollectableRow) (models.Review, error) {
		var rv models.Review
		err := row.Scan(&rv.ID, &rv.CreatedAt, &rv.AppointmentID, &rv.DoctorProfileID, &rv.Rating, &rv.Comment)
		return rv, err
	})

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return created, apperrors.ErrReviewExists
		}

		return created, fmt.Errorf("db error: %w", err)
	}

	return created, nil
}

// Rounded to the precision of doctor_profiles.avg_rating
const avgRating = `-- name: AvgRating
SELECT COALESCE(ROUND(AVG(rating), 2), 0)::numeric
FROM reviews
WHERE doctor_profile_id = $1
`

func (r *ReviewRepo) AvgRating(ctx context.Context, profileID int64) (decimal.Decimal, error) {
	rows, _ := r.DB.Query(ctx, avgRating, profileID)
	avg, err := pgx.CollectOneRow(rows, pgx.RowTo[decimal.Decimal])
	if err != nil {
		return avg, fmt.Errorf("db error: %w", err)
	}

	return avg, nil
}
