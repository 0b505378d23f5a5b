package appointment

import (
	"context"
	"fmt"

	"github.com/nkiryanov/medify/internal/apperrors"
	"github.com/nkiryanov/medify/internal/models"
	"github.com/nkiryanov/medify/internal/repository"
)

type AppointmentService struct {
	storage repository.Storage
}

func NewService(storage repository.Storage) *AppointmentService {
	return &AppointmentService{
		storage: storage,
	}
}

// Appointments visible to the principal: patients and doctors see their own, admins see all
func (s *AppointmentService) List(ctx context.Context, p models.Principal) ([]models.Appointment, error) {
	var scope models.AppointmentScope

	switch p.Role {
	case models.RolePatient:
		scope.PatientID = p.UserID
	case models.RoleDoctor:
		scope.DoctorID = p.UserID
	case models.RoleAdmin:
	default:
		return nil, apperrors.ErrForbidden
	}

	return s.storage.Appointment().ListAppointments(ctx, scope)
}

// Book appointment for the patient
// Returns apperrors.ErrDoctorNotFound if doctor not exists
func (s *AppointmentService) Create(ctx context.Context, patientID int64, params repository.CreateAppointmentParams) (models.Appointment, error) {
	params.PatientID = patientID

	if !params.EndAt.After(params.StartAt) {
		return models.Appointment{}, apperrors.ErrAppointmentTimeRange
	}

	if _, err := s.storage.Doctor().GetDoctor(ctx, params.DoctorID); err != nil {
		return models.Appointment{}, err
	}

	return s.storage.Appointment().CreateAppointment(ctx, params)
}

// Cancel appointment. Patients and doctors may cancel only their own ones
func (s *AppointmentService) Cancel(ctx context.Context, p models.Principal, id int64) (models.Appointment, error) {
	a, err := s.storage.Appointment().GetAppointment(ctx, id)
	if err != nil {
		return a, err
	}

	if !canAccess(p, a) {
		return a, apperrors.ErrForbidden
	}

	return s.storage.Appointment().SetStatus(ctx, id, models.AppointmentCanceled)
}

// Mark booked appointment as done. Only its doctor or an admin can do it
func (s *AppointmentService) Complete(ctx context.Context, p models.Principal, id int64) (models.Appointment, error) {
	a, err := s.storage.Appointment().GetAppointment(ctx, id)
	if err != nil {
		return a, err
	}

	if p.Role == models.RolePatient || !canAccess(p, a) {
		return a, apperrors.ErrForbidden
	}

	if a.Status != models.AppointmentBooked {
		return a, fmt.Errorf("can't complete %s appointment: %w", a.Status, apperrors.ErrAppointmentNotBooked)
	}

	return s.storage.Appointment().SetStatus(ctx, id, models.AppointmentDone)
}

func (s *AppointmentService) Get(ctx context.Context, id int64) (models.Appointment, error) {
	return s.storage.Appointment().GetAppointment(ctx, id)
}

func (s *AppointmentService) Delete(ctx context.Context, id int64) error {
	return s.storage.Appointment().DeleteAppointment(ctx, id)
}

func canAccess(p models.Principal, a models.Appointment) bool {
	switch p.Role {
	case models.RoleAdmin:
		return true
	case models.RolePatient:
		return a.PatientID == p.UserID
	case models.RoleDoctor:
		return a.DoctorID == p.UserID
	default:
		return false
	}
}
