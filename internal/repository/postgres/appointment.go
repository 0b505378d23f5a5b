package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/nkiryanov/medify/internal/apperrors"
	"github.com/nkiryanov/medify/internal/models"
	"github.com/nkiryanov/medify/internal/repository"
)

type AppointmentRepo struct {
	DB DBTX
}

const appointmentColumns = `id, created_at, patient_id, doctor_id, start_at, end_at, status, note`

const createAppointment = `-- name: CreateAppointment
INSERT INTO appointments (patient_id, doctor_id, start_at, end_at, status, note)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + appointmentColumns

func (r *AppointmentRepo) CreateAppointment(ctx context.Context, params repository.CreateAppointmentParams) (models.Appointment, error) {
	rows, _ := r.DB.Query(ctx, createAppointment,
		params.PatientID, params.DoctorID, params.StartAt, params.EndAt, models.AppointmentBooked, params.Note)
	a, err := pgx.CollectOneRow(rows, rowToAppointment)
	if err != nil {
		return a, fmt.Errorf("db error: %w", err)
	}

	return a, nil
}

const getAppointment = `-- name: GetAppointment
SELECT ` + appointmentColumns + ` FROM appointments
WHERE id = $1
`

func (r *AppointmentRepo) GetAppointment(ctx context.Context, id int64) (models.Appointment, error) {
	rows, _ := r.DB.Query(ctx, getAppointment, id)
	return collectAppointment(rows)
}

// Zero scope ids match everything
const listAppointments = `-- name: ListAppointments
SELECT ` + appointmentColumns + ` FROM appointments
WHERE ($1::bigint = 0 OR patient_id = $1)
  AND ($2::bigint = 0 OR doctor_id = $2)
ORDER BY start_at DESC, id DESC
`

func (r *AppointmentRepo) ListAppointments(ctx context.Context, scope models.AppointmentScope) ([]models.Appointment, error) {
	rows, _ := r.DB.Query(ctx, listAppointments, scope.PatientID, scope.DoctorID)
	appointments, err := pgx.CollectRows(rows, rowToAppointment)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return appointments, nil
}

const setStatus = `-- name: SetStatus
UPDATE appointments SET status = $2
WHERE id = $1
RETURNING ` + appointmentColumns

func (r *AppointmentRepo) SetStatus(ctx context.Context, id int64, status models.AppointmentStatus) (models.Appointment, error) {
	rows, _ := r.DB.Query(ctx, setStatus, id, status)
	return collectAppointment(rows)
}

const deleteAppointment = `-- name: DeleteAppointment
DELETE FROM appointments WHERE id = $1
`

func (r *AppointmentRepo) DeleteAppointment(ctx context.Context, id int64) error {
	tag, err := r.DB.Exec(ctx, deleteAppointment, id)

	switch {
	case err != nil:
		return fmt.Errorf("db error: %w", err)
	case tag.RowsAffected() == 0:
		return apperrors.ErrAppointmentNotFound
	default:
		return nil
	}
}

func collectAppointment(rows pgx.Rows) (models.Appointment, error) {
	a, err := pgx.CollectOneRow(rows, rowToAppointment)

	switch {
	case err == nil:
		return a, nil
	case errors.Is(err, pgx.ErrNoRows):
		return a, apperrors.ErrAppointmentNotFound
	default:
		return a, fmt.Errorf("db error: %w", err)
	}
}

func rowToAppointment(row pgx.CollectableRow) (models.Appointment, error) {
	var a models.Appointment
	err := row.Scan(&a.ID, &a.CreatedAt, &a.PatientID, &a.DoctorID, &a.StartAt, &a.EndAt, &a.Status, &a.Note)
	return a, err
}
