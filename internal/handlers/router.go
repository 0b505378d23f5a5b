package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nkiryanov/medify/internal/handlers/middleware"
	"github.com/nkiryanov/medify/internal/logger"
	"github.com/nkiryanov/medify/internal/models"
	"github.com/nkiryanov/medify/internal/repository"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

// Services the API is built on
type Services struct {
	Auth         authService
	Users        userService
	Doctors      doctorService
	Appointments appointmentService
	Reviews      reviewService
	Dashboard    dashboardService
	DB           pinger
}

func NewRouter(s Services, logger logger.Logger) http.Handler {
	authenticated := middleware.AuthMiddleware(s.Auth)
	withRoles := func(h http.Handler, roles ...models.Role) http.Handler {
		if len(roles) == 0 {
			return authenticated(h)
		}
		return chain(h, authenticated, middleware.RequireRole(roles...))
	}
	admin := func(h http.Handler) http.Handler {
		return withRoles(h, models.RoleAdmin)
	}

	mux := http.NewServeMux()

	mux.Handle("GET /{$}", handleRoot())
	mux.Handle("GET /health", handleHealth(s.DB))

	mux.Handle("POST /auth/register", handleRegister(s.Auth, logger))
	mux.Handle("POST /auth/login", handleLogin(s.Auth, logger))
	mux.Handle("POST /auth/logout", handleLogout(s.Auth))
	mux.Handle("GET /auth/me", withRoles(handleMe(s.Auth, logger)))

	mux.Handle("GET /doctors", handleSearchDoctors(s.Doctors, logger))
	mux.Handle("GET /doctors/{id}", handleDoctorDetail(s.Doctors, logger))

	mux.Handle("GET /appointments", withRoles(handleListAppointments(s.Appointments, logger)))
	mux.Handle("POST /appointments", withRoles(handleCreateAppointment(s.Appointments, logger), models.RolePatient))
	mux.Handle("POST /appointments/{id}/cancel", withRoles(handleCancelAppointment(s.Appointments, logger)))
	mux.Handle("POST /appointments/{id}/complete", withRoles(handleCompleteAppointment(s.Appointments, logger), models.RoleDoctor, models.RoleAdmin))

	mux.Handle("POST /reviews", withRoles(handleCreateReview(s.Reviews, logger), models.RolePatient))

	mux.Handle("GET /admin/users", admin(handleListUsers(s.Users, logger)))
	mux.Handle("GET /admin/users/{id}", admin(handleGetUser(s.Users, logger)))
	mux.Handle("DELETE /admin/users/{id}", admin(handleDeleteUser(s.Users, logger)))
	mux.Handle("POST /admin/users/{id}/toggle-active", admin(handleToggleActive(s.Users, logger)))
	mux.Handle("GET /admin/doctors", admin(handleAdminListDoctors(s.Doctors, logger)))
	mux.Handle("GET /admin/doctors/{id}", admin(handleDoctorDetail(s.Doctors, logger)))
	mux.Handle("GET /admin/appointments", admin(handleListAppointments(s.Appointments, logger)))
	mux.Handle("GET /admin/appointments/{id}", admin(handleGetAppointment(s.Appointments, logger)))
	mux.Handle("DELETE /admin/appointments/{id}", admin(handleDeleteAppointment(s.Appointments, logger)))

	mux.Handle("GET /admin/dashboard", admin(handleDashboard(s.Dashboard, logger)))
	mux.Handle("GET /admin/dashboard/stats", admin(handleDashboardStats(s.Dashboard, logger)))
	mux.Handle("GET /admin/dashboard/appointments-by-status", admin(handleAppointmentsByStatus(s.Dashboard, logger)))
	mux.Handle("GET /admin/dashboard/users-by-role", admin(handleUsersByRole(s.Dashboard, logger)))
	mux.Handle("GET /admin/dashboard/specialties", admin(handleSpecialties(s.Dashboard, logger)))
	mux.Handle("GET /admin/dashboard/top-doctors", admin(handleTopDoctors(s.Dashboard, logger)))
	mux.Handle("GET /admin/dashboard/appointment-trends", admin(handleAppointmentTrends(s.Dashboard, logger)))
	mux.Handle("GET /admin/dashboard/recent-activities", admin(handleRecentActivities(s.Dashboard, logger)))

	handler := chain(mux,
		middleware.LoggerMiddleware(logger),
	)

	return handler
}

type authService interface {
	// Has to return apperrors.ErrEmailTaken if email is used already
	// and apperrors.ErrForbidden if role can't be self registered
	Register(ctx context.Context, nu models.NewUser) (models.User, error)

	// Has to return apperrors.ErrInvalidCredentials or apperrors.ErrUserInactive
	Login(ctx context.Context, email string, password string) (models.IssuedToken, models.User, error)

	// Revoke token if it is valid. Never fails
	Logout(token string) models.LogoutResult

	Authenticate(token string) (models.Principal, error)
	Me(ctx context.Context, p models.Principal) (models.User, error)
}

type userService interface {
	GetUserByID(ctx context.Context, userID int64) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	DeleteUser(ctx context.Context, userID int64) error
	ToggleActive(ctx context.Context, userID int64) (models.User, error)
}

type doctorService interface {
	Search(ctx context.Context, filter models.DoctorFilter) ([]models.Doctor, error)

	// Has to return apperrors.ErrDoctorNotFound
	Detail(ctx context.Context, userID int64) (models.DoctorDetail, error)
}

type appointmentService interface {
	List(ctx context.Context, p models.Principal) ([]models.Appointment, error)
	Create(ctx context.Context, patientID int64, params repository.CreateAppointmentParams) (models.Appointment, error)
	Cancel(ctx context.Context, p models.Principal, id int64) (models.Appointment, error)
	Complete(ctx context.Context, p models.Principal, id int64) (models.Appointment, error)
	Get(ctx context.Context, id int64) (models.Appointment, error)
	Delete(ctx context.Context, id int64) error
}

type reviewService interface {
	// Returns new average rating of the doctor
	Create(ctx context.Context, patientID int64, review models.Review) (decimal.Decimal, error)
}

type dashboardService interface {
	Stats(ctx context.Context) (models.DashboardStats, error)
	AppointmentsByStatus(ctx context.Context) ([]models.StatusCount, error)
	UsersByRole(ctx context.Context) ([]models.RoleCount, error)
	Specialties(ctx context.Context) ([]models.SpecialtyStats, error)
	TopDoctors(ctx context.Context, limit int) ([]models.TopDoctor, error)
	AppointmentTrends(ctx context.Context, days int) ([]models.DayCount, error)
	RecentActivities(ctx context.Context, limit int) ([]models.Activity, error)
	Dashboard(ctx context.Context) (models.Dashboard, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

const healthTimeout = 2 * time.Second
