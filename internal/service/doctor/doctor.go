package doctor

import (
	"context"
	"fmt"

	"github.com/nkiryanov/medify/internal/models"
	"github.com/nkiryanov/medify/internal/repository"
)

type DoctorService struct {
	doctorRepo repository.DoctorRepo
}

func NewService(doctorRepo repository.DoctorRepo) *DoctorService {
	return &DoctorService{
		doctorRepo: doctorRepo,
	}
}

// Search doctors directory. Unknown sort falls back to rating
func (s *DoctorService) Search(ctx context.Context, filter models.DoctorFilter) ([]models.Doctor, error) {
	if filter.Sort != models.DoctorSortNameAsc {
		filter.Sort = models.DoctorSortRatingDesc
	}

	return s.doctorRepo.ListDoctors(ctx, filter)
}

// Doctor with weekly availabilities
// Returns apperrors.ErrDoctorNotFound if user is not a doctor
func (s *DoctorService) Detail(ctx context.Context, userID int64) (models.DoctorDetail, error) {
	var detail models.DoctorDetail

	doctor, err := s.doctorRepo.GetDoctor(ctx, userID)
	if err != nil {
		return detail, err
	}

	availabilities, err := s.doctorRepo.ListAvailabilities(ctx, doctor.Profile.ID)
	if err != nil {
		return detail, fmt.Errorf("can't list availabilities. Err: %w", err)
	}

	return models.DoctorDetail{Doctor: doctor, Availabilities: availabilities}, nil
}
