package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/medify/internal/models"
	"github.com/nkiryanov/medify/internal/repository"
)

func createUser(t *testing.T, s repository.Storage, email string, role models.Role) models.User {
	t.Helper()

	user, err := s.User().CreateUser(t.Context(), repository.CreateUserParams{
		Email:        email,
		FullName:     "Name of " + email,
		PasswordHash: "hashed-password",
		Role:         role,
	})
	require.NoError(t, err, "user should be created")

	return user
}

func createDoctor(t *testing.T, s repository.Storage, email string, specialty string) models.Doctor {
	t.Helper()

	user := createUser(t, s, email, models.RoleDoctor)
	profile, err := s.Doctor().CreateProfile(t.Context(), models.DoctorProfile{
		UserID:    user.ID,
		Specialty: specialty,
		YearsExp:  3,
		Bio:       "bio of " + email,
	})
	require.NoError(t, err, "doctor profile should be created")

	return models.Doctor{User: user, Profile: profile}
}

func createAppointment(t *testing.T, s repository.Storage, patientID int64, doctorID int64, startAt time.Time) models.Appointment {
	t.Helper()

	a, err := s.Appointment().CreateAppointment(t.Context(), repository.CreateAppointmentParams{
		PatientID: patientID,
		DoctorID:  doctorID,
		StartAt:   startAt,
		EndAt:     startAt.Add(30 * time.Minute),
	})
	require.NoError(t, err, "appointment should be created")

	return a
}
