package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/nkiryanov/medify/internal/apperrors"
	"github.com/nkiryanov/medify/internal/handlers/render"
	"github.com/nkiryanov/medify/internal/handlers/userctx"
	"github.com/nkiryanov/medify/internal/logger"
	"github.com/nkiryanov/medify/internal/models"
	"github.com/nkiryanov/medify/internal/repository"
)

// Write response for appointment service errors. Returns false if err is nil
func appointmentError(w http.ResponseWriter, r *http.Request, l logger.Logger, err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, apperrors.ErrAppointmentNotFound):
		render.ServiceError(w, "Appointment not found", http.StatusNotFound)
	case errors.Is(err, apperrors.ErrDoctorNotFound):
		render.ServiceError(w, "Doctor not found", http.StatusNotFound)
	case errors.Is(err, apperrors.ErrForbidden):
		render.ServiceError(w, "Forbidden", http.StatusForbidden)
	case errors.Is(err, apperrors.ErrAppointmentNotBooked):
		render.ServiceError(w, "Only booked appointment can be completed", http.StatusConflict)
	case errors.Is(err, apperrors.ErrAppointmentTimeRange):
		render.FieldError(w, "end_at", "Must be after start_at")
	default:
		internalError(w, r, l, "appointment operation failed", err)
	}
	return true
}

func handleListAppointments(appointments appointmentService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, _ := userctx.FromContext(r.Context())

		found, err := appointments.List(r.Context(), p)
		if appointmentError(w, r, l, err) {
			return
		}

		render.JSON(w, newAppointmentsOut(found))
	})
}

func handleCreateAppointment(appointments appointmentService, l logger.Logger) http.Handler {
	type request struct {
		DoctorUserID int64     `json:"doctor_user_id" validate:"required,gt=0"`
		StartAt      time.Time `json:"start_at" validate:"required"`
		EndAt        time.Time `json:"end_at" validate:"required,gtfield=StartAt"`
		Note         *string   `json:"note" validate:"omitempty,max=1000"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		p, _ := userctx.FromContext(r.Context())

		a, err := appointments.Create(r.Context(), p.UserID, repository.CreateAppointmentParams{
			DoctorID: data.DoctorUserID,
			StartAt:  data.StartAt,
			EndAt:    data.EndAt,
			Note:     data.Note,
		})
		if appointmentError(w, r, l, err) {
			return
		}

		render.JSON(w, newAppointmentOut(a))
	})
}

func handleCancelAppointment(appointments appointmentService, l logger.Logger) http.Handler {
	return appointmentTransition(appointments.Cancel, l)
}

func handleCompleteAppointment(appointments appointmentService, l logger.Logger) http.Handler {
	return appointmentTransition(appointments.Complete, l)
}

// Shared handler for status transitions of the appointment found by path id
func appointmentTransition(
	transit func(ctx context.Context, p models.Principal, id int64) (models.Appointment, error),
	l logger.Logger,
) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		p, _ := userctx.FromContext(r.Context())

		a, err := transit(r.Context(), p, id)
		if appointmentError(w, r, l, err) {
			return
		}

		render.JSON(w, newAppointmentOut(a))
	})
}

func handleGetAppointment(appointments appointmentService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		a, err := appointments.Get(r.Context(), id)
		if appointmentError(w, r, l, err) {
			return
		}

		render.JSON(w, newAppointmentOut(a))
	})
}

func handleDeleteAppointment(appointments appointmentService, l logger.Logger) http.Handler {
	type response struct {
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		err := appointments.Delete(r.Context(), id)
		if appointmentError(w, r, l, err) {
			return
		}

		render.JSON(w, response{Message: "Appointment deleted successfully"})
	})
}
