package review

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/nkiryanov/medify/internal/apperrors"
	"github.com/nkiryanov/medify/internal/models"
	"github.com/nkiryanov/medify/internal/repository"
)

type ReviewService struct {
	storage repository.Storage
}

func NewService(storage repository.Storage) *ReviewService {
	return &ReviewService{
		storage: storage,
	}
}

// Review done appointment of the patient and recompute doctor average rating.
// Missing and foreign appointments are both apperrors.ErrForbidden.
// Returns the new average
func (s *ReviewService) Create(ctx context.Context, patientID int64, review models.Review) (decimal.Decimal, error) {
	var avg decimal.Decimal

	err := s.storage.InTx(ctx, func(storage repository.Storage) error {
		a, err := storage.Appointment().GetAppointment(ctx, review.AppointmentID)
		switch {
		case errors.Is(err, apperrors.ErrAppointmentNotFound):
			return fmt.Errorf("appointment %d: %w", review.AppointmentID, apperrors.ErrForbidden)
		case err != nil:
			return err
		}

		if a.PatientID != patientID {
			return apperrors.ErrForbidden
		}

		if a.Status != models.AppointmentDone {
			return apperrors.ErrAppointmentNotDone
		}

		profile, err := storage.Doctor().GetProfileByUserID(ctx, a.DoctorID)
		if err != nil {
			return err
		}

		review.DoctorProfileID = profile.ID
		if _, err := storage.Review().CreateReview(ctx, review); err != nil {
			return err
		}

		avg, err = storage.Review().AvgRating(ctx, profile.ID)
		if err != nil {
			return fmt.Errorf("can't compute average rating. Err: %w", err)
		}

		return storage.Doctor().SetAvgRating(ctx, profile.ID, avg)
	})

	return avg, err
}
