package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/nkiryanov/medify/internal/apperrors"
	"github.com/nkiryanov/medify/internal/models"
)

type DoctorRepo struct {
	DB DBTX
}

const createProfile = `-- name: CreateProfile
INSERT INTO doctor_profiles (user_id, specialty, years_exp, bio, avg_rating)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, user_id, specialty, years_exp, bio, avg_rating
`

func (r *DoctorRepo) CreateProfile(ctx context.Context, p models.DoctorProfile) (models.DoctorProfile, error) {
	rows, _ := r.DB.Query(ctx, createProfile, p.UserID, p.Specialty, p.YearsExp, p.Bio, p.AvgRating)
	profile, err := pgx.CollectOneRow(rows, rowToProfile)
	if err != nil {
		return profile, fmt.Errorf("db error: %w", err)
	}

	return profile, nil
}

const selectDoctors = `
SELECT
	u.id, u.created_at, u.email, u.full_name, u.gender, u.password_hash, u.is_active, u.role,
	p.id, p.user_id, p.specialty, p.years_exp, p.bio, p.avg_rating
FROM users u
JOIN doctor_profiles p ON p.user_id = u.id
WHERE u.role = 'DOCTOR'`

// Filters are built as positional arguments only, user input never reaches the query text
func (r *DoctorRepo) ListDoctors(ctx context.Context, filter models.DoctorFilter) ([]models.Doctor, error) {
	var (
		sb   strings.Builder
		args []any
	)
	sb.WriteString(selectDoctors)

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Specialty != "" {
		sb.WriteString(" AND p.specialty ILIKE " + arg(likePattern(filter.Specialty)))
	}
	if filter.Gender != nil {
		sb.WriteString(" AND u.gender = " + arg(*filter.Gender))
	}
	if filter.Query != "" {
		q := arg(likePattern(filter.Query))
		sb.WriteString(" AND (u.full_name ILIKE " + q + " OR p.bio ILIKE " + q + ")")
	}

	switch filter.Sort {
	case models.DoctorSortNameAsc:
		sb.WriteString(" ORDER BY u.full_name ASC, u.id ASC")
	default:
		sb.WriteString(" ORDER BY p.avg_rating DESC, u.id ASC")
	}

	rows, _ := r.DB.Query(ctx, sb.String(), args...)
	doctors, err := pgx.CollectRows(rows, rowToDoctor)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return doctors, nil
}

const getDoctor = selectDoctors + ` AND u.id = $1`

func (r *DoctorRepo) GetDoctor(ctx context.Context, userID int64) (models.Doctor, error) {
	rows, _ := r.DB.Query(ctx, getDoctor, userID)
	doctor, err := pgx.CollectOneRow(rows, rowToDoctor)

	switch {
	case err == nil:
		return doctor, nil
	case errors.Is(err, pgx.ErrNoRows):
		return doctor, apperrors.ErrDoctorNotFound
	default:
		return doctor, fmt.Errorf("db error: %w", err)
	}
}

const getProfileByUserID = `-- name: GetProfileByUserID
SELECT id, user_id, specialty, years_exp, bio, avg_rating
FROM doctor_profiles
WHERE user_id = $1
`

func (r *DoctorRepo) GetProfileByUserID(ctx context.Context, userID int64) (models.DoctorProfile, error) {
	rows, _ := r.DB.Query(ctx, getProfileByUserID, userID)
	profile, err := pgx.CollectOneRow(rows, rowToProfile)

	switch {
	case err == nil:
		return profile, nil
	case errors.Is(err, pgx.ErrNoRows):
		return profile, apperrors.ErrDoctorProfileNotFound
	default:
		return profile, fmt.Errorf("db error: %w", err)
	}
}

const listAvailabilities = `-- name: ListAvailabilities
SELECT id, doctor_id, weekday, start_time, end_time
FROM availabilities
WHERE doctor_id = $1
ORDER BY weekday, start_time
`

func (r *DoctorRepo) ListAvailabilities(ctx context.Context, profileID int64) ([]models.Availability, error) {
	rows, _ := r.DB.Query(ctx, listAvailabilities, profileID)
	availabilities, err := pgx.CollectRows(rows, rowToAvailability)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return availabilities, nil
}

const setAvgRating = `-- name: SetAvgRating
UPDATE doctor_profiles SET avg_rating = $2 WHERE id = $1
`

func (r *DoctorRepo) SetAvgRating(ctx context.Context, profileID int64, rating decimal.Decimal) error {
	tag, err := r.DB.Exec(ctx, setAvgRating, profileID, rating)

	switch {
	case err != nil:
		return fmt.Errorf("db error: %w", err)
	case tag.RowsAffected() == 0:
		return apperrors.ErrDoctorProfileNotFound
	default:
		return nil
	}
}

// Escape LIKE wildcards in user input and wrap it to match as substring
func likePattern(s string) string {
	return "%" + strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s) + "%"
}

func rowToProfile(row pgx.CollectableRow) (models.DoctorProfile, error) {
	var p models.DoctorProfile
	err := row.Scan(&p.ID, &p.UserID, &p.Specialty, &p.YearsExp, &p.Bio, &p.AvgRating)
	return p, err
}

func rowToDoctor(row pgx.CollectableRow) (models.Doctor, error) {
	var d models.Doctor
	u, p := &d.User, &d.Profile
	err := row.Scan(
		&u.ID, &u.CreatedAt, &u.Email, &u.FullName, &u.Gender, &u.PasswordHash, &u.IsActive, &u.Role,
		&p.ID, &p.UserID, &p.Specialty, &p.YearsExp, &p.Bio, &p.AvgRating,
	)
	return d, err
}

func rowToAvailability(row pgx.CollectableRow) (models.Availability, error) {
	var a models.Availability
	err := row.Scan(&a.ID, &a.DoctorID, &a.Weekday, &a.StartTime, &a.EndTime)
	return a, err
}
