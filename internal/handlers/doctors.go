package handlers

import (
	"errors"
	"net/http"

	"github.com/nkiryanov/medify/internal/apperrors"
	"github.com/nkiryanov/medify/internal/handlers/render"
	"github.com/nkiryanov/medify/internal/logger"
	"github.com/nkiryanov/medify/internal/models"
)

// Query parameters: q, specialty, gender, sort (rating_desc or name_asc)
func handleSearchDoctors(doctors doctorService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		filter := models.DoctorFilter{
			Query:     query.Get("q"),
			Specialty: query.Get("specialty"),
			Sort:      query.Get("sort"),
		}

		switch filter.Sort {
		case "", models.DoctorSortRatingDesc, models.DoctorSortNameAsc:
		default:
			render.FieldError(w, "sort", "Must be one of: rating_desc name_asc")
			return
		}

		if g := models.Gender(query.Get("gender")); g != "" {
			switch g {
			case models.GenderMale, models.GenderFemale, models.GenderOther:
				filter.Gender = &g
			default:
				render.FieldError(w, "gender", "Must be one of: MALE FEMALE OTHER")
				return
			}
		}

		found, err := doctors.Search(r.Context(), filter)
		if err != nil {
			internalError(w, r, l, "search doctors failed", err)
			return
		}

		render.JSON(w, newDoctorCards(found))
	})
}

func handleAdminListDoctors(doctors doctorService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		found, err := doctors.Search(r.Context(), models.DoctorFilter{})
		if err != nil {
			internalError(w, r, l, "list doctors failed", err)
			return
		}

		render.JSON(w, newDoctorCards(found))
	})
}

func handleDoctorDetail(doctors doctorService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		detail, err := doctors.Detail(r.Context(), id)
		switch {
		case err == nil:
			render.JSON(w, newDoctorDetailOut(detail))
		case errors.Is(err, apperrors.ErrDoctorNotFound):
			render.ServiceError(w, "Doctor not found", http.StatusNotFound)
		default:
			internalError(w, r, l, "get doctor failed", err)
		}
	})
}
