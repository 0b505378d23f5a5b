package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/nkiryanov/medify/internal/models"
)

type DashboardRepo struct {
	DB DBTX
}

// Dates are taken in UTC so the result does not depend on the session time zone
const stats = `-- name: Stats
SELECT
	(SELECT COUNT(*) FROM users WHERE role = 'PATIENT'),
	(SELECT COUNT(*) FROM users WHERE role = 'DOCTOR'),
	(SELECT COUNT(*) FROM appointments),
	(SELECT COUNT(*) FROM appointments WHERE status = 'BOOKED'),
	(SELECT COUNT(*) FROM appointments WHERE (start_at AT TIME ZONE 'UTC')::date = $1::date),
	(SELECT COUNT(*) FROM users WHERE is_active)
`

func (r *DashboardRepo) Stats(ctx context.Context, today time.Time) (models.DashboardStats, error) {
	var s models.DashboardStats
	err := r.DB.QueryRow(ctx, stats, today).Scan(
		&s.TotalPatients,
		&s.TotalDoctors,
		&s.TotalAppointments,
		&s.PendingAppointments,
		&s.TodayAppointments,
		&s.ActiveUsers,
	)
	if err != nil {
		return s, fmt.Errorf("db error: %w", err)
	}

	return s, nil
}

const appointmentsByStatus = `-- name: AppointmentsByStatus
SELECT status, COUNT(*) FROM appointments
GROUP BY status
ORDER BY status
`

func (r *DashboardRepo) AppointmentsByStatus(ctx context.Context) ([]models.StatusCount, error) {
	rows, _ := r.DB.Query(ctx, appointmentsByStatus)
	counts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.StatusCount, error) {
		var c models.StatusCount
		err := row.Scan(&c.Status, &c.Count)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return counts, nil
}

const usersByRole = `-- name: UsersByRole
SELECT role, COUNT(*) FROM users
GROUP BY role
ORDER BY role
`

func (r *DashboardRepo) UsersByRole(ctx context.Context) ([]models.RoleCount, error) {
	rows, _ := r.DB.Query(ctx, usersByRole)
	counts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.RoleCount, error) {
		var c models.RoleCount
		err := row.Scan(&c.Role, &c.Count)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return counts, nil
}

const specialties = `-- name: Specialties
SELECT p.specialty, COUNT(DISTINCT p.id), COUNT(a.id)
FROM doctor_profiles p
LEFT JOIN appointments a ON a.doctor_id = p.user_id
GROUP BY p.specialty
ORDER BY p.specialty
`

func (r *DashboardRepo) Specialties(ctx context.Context) ([]models.SpecialtyStats, error) {
	rows, _ := r.DB.Query(ctx, specialties)
	result, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.SpecialtyStats, error) {
		var s models.SpecialtyStats
		err := row.Scan(&s.Specialty, &s.DoctorCount, &s.AppointmentCount)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

const topDoctors = `-- name: TopDoctors
SELECT u.id, u.full_name, p.specialty, p.avg_rating, COUNT(a.id) AS appointment_count
FROM users u
JOIN doctor_profiles p ON p.user_id = u.id
LEFT JOIN appointments a ON a.doctor_id = u.id
WHERE u.role = 'DOCTOR'
GROUP BY u.id, u.full_name, p.specialty, p.avg_rating
ORDER BY appointment_count DESC, u.id ASC
LIMIT $1
`

func (r *DashboardRepo) TopDoctors(ctx context.Context, limit int) ([]models.TopDoctor, error) {
	rows, _ := r.DB.Query(ctx, topDoctors, limit)
	result, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.TopDoctor, error) {
		var d models.TopDoctor
		err := row.Scan(&d.DoctorID, &d.DoctorName, &d.Specialty, &d.AvgRating, &d.AppointmentCount)
		return d, err
	})
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

const appointmentsPerDay = `-- name: AppointmentsPerDay
SELECT (start_at AT TIME ZONE 'UTC')::date AS day, COUNT(*)
FROM appointments
WHERE (start_at AT TIME ZONE 'UTC')::date >= $1::date
GROUP BY day
ORDER BY day
`

func (r *DashboardRepo) AppointmentsPerDay(ctx context.Context, since time.Time) ([]models.DayCount, error) {
	rows, _ := r.DB.Query(ctx, appointmentsPerDay, since)
	result, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.DayCount, error) {
		var d models.DayCount
		err := row.Scan(&d.Date, &d.Count)
		return d, err
	})
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

const recentAppointments = `-- name: RecentAppointments
SELECT a.id, COALESCE(p.full_name, 'Unknown'), COALESCE(d.full_name, 'Unknown'), a.start_at
FROM appointments a
LEFT JOIN users p ON p.id = a.patient_id
LEFT JOIN users d ON d.id = a.doctor_id
ORDER BY a.id DESC
LIMIT $1
`

func (r *DashboardRepo) RecentAppointments(ctx context.Context, limit int) ([]models.AppointmentActivity, error) {
	rows, _ := r.DB.Query(ctx, recentAppointments, limit)
	result, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.AppointmentActivity, error) {
		var a models.AppointmentActivity
		err := row.Scan(&a.ID, &a.PatientName, &a.DoctorName, &a.StartAt)
		return a, err
	})
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
