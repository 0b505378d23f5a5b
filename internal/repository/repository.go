package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nkiryanov/medify/internal/models"
)

type CreateUserParams struct {
	Email        string
	FullName     string
	Gender       *models.Gender
	PasswordHash string
	Role         models.Role
}

// Empty FullName keeps the current name
type UpdateUserParams struct {
	FullName     string
	PasswordHash string
	Role         models.Role
}

// User repository interface
type UserRepo interface {
	// Create user
	// If user with the email exists already has to return error apperrors.ErrEmailTaken
	CreateUser(ctx context.Context, params CreateUserParams) (models.User, error)

	// Get user by it's id or email
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, userID int64) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)

	ListUsers(ctx context.Context) ([]models.User, error)

	// Must return apperrors.ErrUserNotFound if nothing was deleted or updated
	UpdateUser(ctx context.Context, userID int64, params UpdateUserParams) (models.User, error)
	DeleteUser(ctx context.Context, userID int64) error
	ToggleActive(ctx context.Context, userID int64) (models.User, error)
}

// Doctor profiles, availabilities and directory queries
type DoctorRepo interface {
	CreateProfile(ctx context.Context, profile models.DoctorProfile) (models.DoctorProfile, error)

	// Return doctors (users with role DOCTOR that have a profile) matching the filter
	ListDoctors(ctx context.Context, filter models.DoctorFilter) ([]models.Doctor, error)

	// Return doctor by user id
	// If user is not a doctor or has no profile must return apperrors.ErrDoctorNotFound
	GetDoctor(ctx context.Context, userID int64) (models.Doctor, error)

	// Must return apperrors.ErrDoctorProfileNotFound if user has no profile
	GetProfileByUserID(ctx context.Context, userID int64) (models.DoctorProfile, error)

	// Availabilities are read only for the API: they are seeded directly in the database
	ListAvailabilities(ctx context.Context, profileID int64) ([]models.Availability, error)

	SetAvgRating(ctx context.Context, profileID int64, rating decimal.Decimal) error
}

type CreateAppointmentParams struct {
	PatientID int64
	DoctorID  int64
	StartAt   time.Time
	EndAt     time.Time
	Note      *string
}

type AppointmentRepo interface {
	CreateAppointment(ctx context.Context, params CreateAppointmentParams) (models.Appointment, error)

	// Must return apperrors.ErrAppointmentNotFound if appointment not exists
	GetAppointment(ctx context.Context, id int64) (models.Appointment, error)

	// List appointments visible in the scope, newest start first
	ListAppointments(ctx context.Context, scope models.AppointmentScope) ([]models.Appointment, error)

	// Must return apperrors.ErrAppointmentNotFound if appointment not exists
	SetStatus(ctx context.Context, id int64, status models.AppointmentStatus) (models.Appointment, error)
	DeleteAppointment(ctx context.Context, id int64) error
}

type ReviewRepo interface {
	// Create review
	// If the appointment has a review already has to return apperrors.ErrReviewExists
	CreateReview(ctx context.Context, review models.Review) (models.Review, error)

	// Average rating over all reviews of the doctor profile, zero if there are none
	AvgRating(ctx context.Context, profileID int64) (decimal.Decimal, error)
}

// Aggregate read-only queries for the admin dashboard
type DashboardRepo interface {
	Stats(ctx context.Context, today time.Time) (models.DashboardStats, error)
	AppointmentsByStatus(ctx context.Context) ([]models.StatusCount, error)
	UsersByRole(ctx context.Context) ([]models.RoleCount, error)
	Specialties(ctx context.Context) ([]models.SpecialtyStats, error)
	TopDoctors(ctx context.Context, limit int) ([]models.TopDoctor, error)

	// Appointment counts per day for days starting from 'since' (inclusive)
	AppointmentsPerDay(ctx context.Context, since time.Time) ([]models.DayCount, error)

	// Newest appointments by id joined with participant names
	RecentAppointments(ctx context.Context, limit int) ([]models.AppointmentActivity, error)
}

// Storage gives access to all repositories over the same connection
type Storage interface {
	User() UserRepo
	Doctor() DoctorRepo
	Appointment() AppointmentRepo
	Review() ReviewRepo
	Dashboard() DashboardRepo

	// Run fn in transaction: commit if fn returns nil, rollback otherwise
	InTx(ctx context.Context, fn func(Storage) error) error
}
