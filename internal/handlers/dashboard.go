package handlers

import (
	"net/http"

	"github.com/nkiryanov/medify/internal/handlers/render"
	"github.com/nkiryanov/medify/internal/logger"
	"github.com/nkiryanov/medify/internal/service/dashboard"
)

func handleDashboard(d dashboardService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := d.Dashboard(r.Context())
		if err != nil {
			internalError(w, r, l, "dashboard failed", err)
			return
		}

		render.JSON(w, newDashboardOut(data))
	})
}

func handleDashboardStats(d dashboardService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		stats, err := d.Stats(r.Context())
		if err != nil {
			internalError(w, r, l, "dashboard stats failed", err)
			return
		}

		render.JSON(w, newStatsOut(stats))
	})
}

func handleAppointmentsByStatus(d dashboardService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		counts, err := d.AppointmentsByStatus(r.Context())
		if err != nil {
			internalError(w, r, l, "appointments by status failed", err)
			return
		}

		render.JSON(w, newStatusCountsOut(counts))
	})
}

func handleUsersByRole(d dashboardService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		counts, err := d.UsersByRole(r.Context())
		if err != nil {
			internalError(w, r, l, "users by role failed", err)
			return
		}

		render.JSON(w, newRoleCountsOut(counts))
	})
}

func handleSpecialties(d dashboardService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		stats, err := d.Specialties(r.Context())
		if err != nil {
			internalError(w, r, l, "specialties failed", err)
			return
		}

		render.JSON(w, newSpecialtiesOut(stats))
	})
}

func handleTopDoctors(d dashboardService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limit, ok := queryPositiveInt(w, r, "limit", dashboard.DefaultTopDoctorsLimit)
		if !ok {
			return
		}

		doctors, err := d.TopDoctors(r.Context(), limit)
		if err != nil {
			internalError(w, r, l, "top doctors failed", err)
			return
		}

		render.JSON(w, newTopDoctorsOut(doctors))
	})
}

func handleAppointmentTrends(d dashboardService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		days, ok := queryPositiveInt(w, r, "days", dashboard.DefaultTrendDays)
		if !ok {
			return
		}

		trends, err := d.AppointmentTrends(r.Context(), days)
		if err != nil {
			internalError(w, r, l, "appointment trends failed", err)
			return
		}

		render.JSON(w, newTrendsOut(trends))
	})
}

func handleRecentActivities(d dashboardService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limit, ok := queryPositiveInt(w, r, "limit", dashboard.DefaultActivitiesLimit)
		if !ok {
			return
		}

		activities, err := d.RecentActivities(r.Context(), limit)
		if err != nil {
			internalError(w, r, l, "recent activities failed", err)
			return
		}

		render.JSON(w, newActivitiesOut(activities))
	})
}
