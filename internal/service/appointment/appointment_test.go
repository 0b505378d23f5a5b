package appointment

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/nkiryanov/medify/internal/apperrors"
	"github.com/nkiryanov/medify/internal/models"
	"github.com/nkiryanov/medify/internal/repository"
	"github.com/nkiryanov/medify/internal/repository/postgres"
	"github.com/nkiryanov/medify/internal/service/auth"
	"github.com/nkiryanov/medify/internal/service/user"
	"github.com/nkiryanov/medify/internal/testutil"
)

func TestAppointment(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	type actors struct {
		patient, other, doctor, otherDoctor, admin models.Principal
	}

	// Create service and users for tests purpose within transaction
	withTx := func(t *testing.T, fn func(s *AppointmentService, a actors)) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			storage := postgres.NewStorage(tx)
			users := user.NewService(auth.BcryptHasher{Cost: bcrypt.MinCost}, storage)

			create := func(email string, role models.Role) models.Principal {
				u, err := users.CreateUser(t.Context(), models.NewUser{Email: email, FullName: email, Password: "Secret1!", Role: role})
				require.NoError(t, err, "creating user should not fail")
				return models.Principal{UserID: u.ID, Role: u.Role}
			}

			fn(NewService(storage), actors{
				patient:     create("patient@example.com", models.RolePatient),
				other:       create("other@example.com", models.RolePatient),
				doctor:      create("doc@example.com", models.RoleDoctor),
				otherDoctor: create("otherdoc@example.com", models.RoleDoctor),
				admin:       create("admin@example.com", models.RoleAdmin),
			})
		})
	}

	startAt := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	book := func(t *testing.T, s *AppointmentService, patient models.Principal, doctor models.Principal) models.Appointment {
		a, err := s.Create(t.Context(), patient.UserID, repository.CreateAppointmentParams{
			DoctorID: doctor.UserID,
			StartAt:  startAt,
			EndAt:    startAt.Add(30 * time.Minute),
		})
		require.NoError(t, err, "booking should not fail")
		return a
	}

	t.Run("Create", func(t *testing.T) {
		t.Run("create ok", func(t *testing.T) {
			withTx(t, func(s *AppointmentService, a actors) {
				created := book(t, s, a.patient, a.doctor)

				assert.Equal(t, a.patient.UserID, created.PatientID)
				assert.Equal(t, a.doctor.UserID, created.DoctorID)
				assert.Equal(t, models.AppointmentBooked, created.Status)
			})
		})

		t.Run("end before start fail", func(t *testing.T) {
			withTx(t, func(s *AppointmentService, a actors) {
				_, err := s.Create(t.Context(), a.patient.UserID, repository.CreateAppointmentParams{
					DoctorID: a.doctor.UserID,
					StartAt:  startAt,
					EndAt:    startAt.Add(-time.Minute),
				})

				require.ErrorIs(t, err, apperrors.ErrAppointmentTimeRange)
			})
		})

		t.Run("doctor not found", func(t *testing.T) {
			withTx(t, func(s *AppointmentService, a actors) {
				_, err := s.Create(t.Context(), a.patient.UserID, repository.CreateAppointmentParams{
					DoctorID: a.other.UserID, // patient, not a doctor
					StartAt:  startAt,
					EndAt:    startAt.Add(time.Hour),
				})

				require.ErrorIs(t, err, apperrors.ErrDoctorNotFound)
			})
		})
	})

	t.Run("List", func(t *testing.T) {
		withTx(t, func(s *AppointmentService, a actors) {
			mine := book(t, s, a.patient, a.doctor)
			other := book(t, s, a.other, a.otherDoctor)

			ids := func(p models.Principal) []int64 {
				list, err := s.List(t.Context(), p)
				require.NoError(t, err)
				result := make([]int64, 0, len(list))
				for _, a := range list {
					result = append(result, a.ID)
				}
				return result
			}

			assert.Equal(t, []int64{mine.ID}, ids(a.patient), "patient sees own")
			assert.Equal(t, []int64{mine.ID}, ids(a.doctor), "doctor sees own")
			assert.ElementsMatch(t, []int64{mine.ID, other.ID}, ids(a.admin), "admin sees all")

			_, err := s.List(t.Context(), models.Principal{UserID: 1, Role: "ROOT"})
			assert.ErrorIs(t, err, apperrors.ErrForbidden)
		})
	})

	t.Run("Cancel", func(t *testing.T) {
		tests := []struct {
			name    string
			who     func(a actors) models.Principal
			wantErr error
		}{
			{"patient own ok", func(a actors) models.Principal { return a.patient }, nil},
			{"doctor own ok", func(a actors) models.Principal { return a.doctor }, nil},
			{"admin ok", func(a actors) models.Principal { return a.admin }, nil},
			{"other patient forbidden", func(a actors) models.Principal { return a.other }, apperrors.ErrForbidden},
			{"other doctor forbidden", func(a actors) models.Principal { return a.otherDoctor }, apperrors.ErrForbidden},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				withTx(t, func(s *AppointmentService, a actors) {
					booked := book(t, s, a.patient, a.doctor)

					canceled, err := s.Cancel(t.Context(), tt.who(a), booked.ID)

					if tt.wantErr != nil {
						require.ErrorIs(t, err, tt.wantErr)
						return
					}
					require.NoError(t, err)
					assert.Equal(t, models.AppointmentCanceled, canceled.Status)
				})
			})
		}

		t.Run("not found", func(t *testing.T) {
			withTx(t, func(s *AppointmentService, a actors) {
				_, err := s.Cancel(t.Context(), a.admin, 99999)

				require.ErrorIs(t, err, apperrors.ErrAppointmentNotFound)
			})
		})
	})

	t.Run("Complete", func(t *testing.T) {
		t.Run("doctor own ok", func(t *testing.T) {
			withTx(t, func(s *AppointmentService, a actors) {
				booked := book(t, s, a.patient, a.doctor)

				done, err := s.Complete(t.Context(), a.doctor, booked.ID)

				require.NoError(t, err)
				assert.Equal(t, models.AppointmentDone, done.Status)
			})
		})

		t.Run("admin ok", func(t *testing.T) {
			withTx(t, func(s *AppointmentService, a actors) {
				booked := book(t, s, a.patient, a.doctor)

				_, err := s.Complete(t.Context(), a.admin, booked.ID)

				require.NoError(t, err)
			})
		})

		t.Run("patient and other doctor forbidden", func(t *testing.T) {
			withTx(t, func(s *AppointmentService, a actors) {
				booked := book(t, s, a.patient, a.doctor)

				_, err := s.Complete(t.Context(), a.patient, booked.ID)
				require.ErrorIs(t, err, apperrors.ErrForbidden)

				_, err = s.Complete(t.Context(), a.otherDoctor, booked.ID)
				require.ErrorIs(t, err, apperrors.ErrForbidden)
			})
		})

		t.Run("only booked", func(t *testing.T) {
			withTx(t, func(s *AppointmentService, a actors) {
				booked := book(t, s, a.patient, a.doctor)
				_, err := s.Cancel(t.Context(), a.patient, booked.ID)
				require.NoError(t, err)

				_, err = s.Complete(t.Context(), a.doctor, booked.ID)

				require.ErrorIs(t, err, apperrors.ErrAppointmentNotBooked)
			})
		})
	})

	t.Run("Get and Delete", func(t *testing.T) {
		withTx(t, func(s *AppointmentService, a actors) {
			booked := book(t, s, a.patient, a.doctor)

			got, err := s.Get(t.Context(), booked.ID)
			require.NoError(t, err)
			assert.Equal(t, booked.ID, got.ID)

			require.NoError(t, s.Delete(t.Context(), booked.ID))

			_, err = s.Get(t.Context(), booked.ID)
			require.ErrorIs(t, err, apperrors.ErrAppointmentNotFound)
			require.ErrorIs(t, s.Delete(t.Context(), booked.ID), apperrors.ErrAppointmentNotFound)
		})
	})
}
