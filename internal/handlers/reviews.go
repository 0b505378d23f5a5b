package handlers

import (
	"errors"
	"net/http"

	"github.com/nkiryanov/medify/internal/apperrors"
	"github.com/nkiryanov/medify/internal/handlers/render"
	"github.com/nkiryanov/medify/internal/handlers/userctx"
	"github.com/nkiryanov/medify/internal/logger"
	"github.com/nkiryanov/medify/internal/models"
)

func handleCreateReview(reviews reviewService, l logger.Logger) http.Handler {
	type request struct {
		AppointmentID int64   `json:"appointment_id" validate:"required,gt=0"`
		Rating        int     `json:"rating" validate:"required,min=1,max=5"`
		Comment       *string `json:"comment" validate:"omitempty,max=2000"`
	}
	type response struct {
		OK           bool    `json:"ok"`
		NewAvgRating float64 `json:"new_avg_rating"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		p, _ := userctx.FromContext(r.Context())

		avg, err := reviews.Create(r.Context(), p.UserID, models.Review{
			AppointmentID: data.AppointmentID,
			Rating:        data.Rating,
			Comment:       data.Comment,
		})
		switch {
		case err == nil:
			rating, _ := avg.Round(2).Float64()
			render.JSON(w, response{OK: true, NewAvgRating: rating})
		case errors.Is(err, apperrors.ErrForbidden):
			render.ServiceError(w, "Forbidden", http.StatusForbidden)
		case errors.Is(err, apperrors.ErrAppointmentNotDone):
			render.ServiceError(w, "Appointment must be DONE before review", http.StatusBadRequest)
		case errors.Is(err, apperrors.ErrDoctorProfileNotFound):
			render.ServiceError(w, "Doctor profile not found", http.StatusNotFound)
		case errors.Is(err, apperrors.ErrReviewExists):
			render.ServiceError(w, "Appointment already reviewed", http.StatusConflict)
		default:
			internalError(w, r, l, "create review failed", err)
		}
	})
}
