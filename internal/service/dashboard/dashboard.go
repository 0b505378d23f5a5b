package dashboard

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/nkiryanov/medify/internal/models"
	"github.com/nkiryanov/medify/internal/repository"
)

const (
	DefaultTopDoctorsLimit = 5
	DefaultActivitiesLimit = 10
	DefaultTrendDays       = 7

	MaxLimit     = 100
	MaxTrendDays = 365

	ActivityAppointment = "appointment"
)

type Option func(*DashboardService)

// Use custom clock instead of time.Now
func WithClock(now func() time.Time) Option {
	return func(s *DashboardService) {
		s.now = now
	}
}

type DashboardService struct {
	repo repository.DashboardRepo
	now  func() time.Time
}

func NewService(repo repository.DashboardRepo, opts ...Option) *DashboardService {
	s := &DashboardService{
		repo: repo,
		now:  time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *DashboardService) Stats(ctx context.Context) (models.DashboardStats, error) {
	return s.repo.Stats(ctx, s.today())
}

func (s *DashboardService) AppointmentsByStatus(ctx context.Context) ([]models.StatusCount, error) {
	return s.repo.AppointmentsByStatus(ctx)
}

func (s *DashboardService) UsersByRole(ctx context.Context) ([]models.RoleCount, error) {
	return s.repo.UsersByRole(ctx)
}

func (s *DashboardService) Specialties(ctx context.Context) ([]models.SpecialtyStats, error) {
	return s.repo.Specialties(ctx)
}

func (s *DashboardService) TopDoctors(ctx context.Context, limit int) ([]models.TopDoctor, error) {
	return s.repo.TopDoctors(ctx, min(limit, MaxLimit))
}

// Appointments per day for 'days' days starting 'days' days ago. Days without appointments have zero count
func (s *DashboardService) AppointmentTrends(ctx context.Context, days int) ([]models.DayCount, error) {
	days = min(days, MaxTrendDays)
	since := s.today().AddDate(0, 0, -days)

	counts, err := s.repo.AppointmentsPerDay(ctx, since)
	if err != nil {
		return nil, err
	}

	byDay := make(map[string]int64, len(counts))
	for _, c := range counts {
		byDay[c.Date.Format(time.DateOnly)] = c.Count
	}

	trends := make([]models.DayCount, 0, days)
	for i := range days {
		day := since.AddDate(0, 0, i)
		trends = append(trends, models.DayCount{Date: day, Count: byDay[day.Format(time.DateOnly)]})
	}

	return trends, nil
}

// Latest bookings as feed items. Half of the limit is taken from the newest appointments
func (s *DashboardService) RecentActivities(ctx context.Context, limit int) ([]models.Activity, error) {
	limit = min(limit, MaxLimit)

	appointments, err := s.repo.RecentAppointments(ctx, limit/2)
	if err != nil {
		return nil, err
	}

	activities := make([]models.Activity, 0, len(appointments))
	for _, a := range appointments {
		activities = append(activities, models.Activity{
			ID:          a.ID,
			Type:        ActivityAppointment,
			Description: fmt.Sprintf("%s booked with %s", a.PatientName, a.DoctorName),
			CreatedAt:   a.StartAt,
		})
	}

	slices.SortStableFunc(activities, func(a, b models.Activity) int {
		return cmp.Compare(b.CreatedAt.UnixNano(), a.CreatedAt.UnixNano())
	})

	return activities[:min(len(activities), limit)], nil
}

// Everything above with default parameters
func (s *DashboardService) Dashboard(ctx context.Context) (models.Dashboard, error) {
	var (
		d   models.Dashboard
		err error
	)

	if d.Overview, err = s.Stats(ctx); err != nil {
		return d, err
	}
	if d.AppointmentsByStatus, err = s.AppointmentsByStatus(ctx); err != nil {
		return d, err
	}
	if d.UsersByRole, err = s.UsersByRole(ctx); err != nil {
		return d, err
	}
	if d.Specialties, err = s.Specialties(ctx); err != nil {
		return d, err
	}
	if d.TopDoctors, err = s.TopDoctors(ctx, DefaultTopDoctorsLimit); err != nil {
		return d, err
	}
	if d.RecentActivities, err = s.RecentActivities(ctx, DefaultActivitiesLimit); err != nil {
		return d, err
	}
	if d.AppointmentTrends, err = s.AppointmentTrends(ctx, DefaultTrendDays); err != nil {
		return d, err
	}

	return d, nil
}

// Current date in UTC at midnight
func (s *DashboardService) today() time.Time {
	return s.now().UTC().Truncate(24 * time.Hour)
}
