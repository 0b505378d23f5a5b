package handlers

import (
	"time"

	"github.com/nkiryanov/medify/internal/models"
)

type userOut struct {
	ID        int64          `json:"id"`
	Email     string         `json:"email"`
	FullName  string         `json:"full_name"`
	Gender    *models.Gender `json:"gender"`
	Role      models.Role    `json:"role"`
	IsActive  bool           `json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
}

func newUserOut(u models.User) userOut {
	return userOut{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		Gender:    u.Gender,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

type doctorCard struct {
	ID        int64          `json:"id"`
	FullName  string         `json:"full_name"`
	Specialty string         `json:"specialty"`
	YearsExp  int            `json:"years_exp"`
	AvgRating float64        `json:"avg_rating"`
	Gender    *models.Gender `json:"gender"`
}

func newDoctorCards(doctors []models.Doctor) []doctorCard {
	cards := make([]doctorCard, 0, len(doctors))
	for _, d := range doctors {
		rating, _ := d.Profile.AvgRating.Float64()
		cards = append(cards, doctorCard{
			ID:        d.User.ID,
			FullName:  d.User.FullName,
			Specialty: d.Profile.Specialty,
			YearsExp:  d.Profile.YearsExp,
			AvgRating: rating,
			Gender:    d.User.Gender,
		})
	}
	return cards
}

type availabilityOut struct {
	Weekday   int    `json:"weekday"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type doctorDetailOut struct {
	User             userOut           `json:"user"`
	ProfileSpecialty string            `json:"profile_specialty"`
	YearsExp         int               `json:"years_exp"`
	Bio              string            `json:"bio"`
	AvgRating        float64           `json:"avg_rating"`
	Availabilities   []availabilityOut `json:"availabilities"`
}

func newDoctorDetailOut(d models.DoctorDetail) doctorDetailOut {
	rating, _ := d.Profile.AvgRating.Float64()
	out := doctorDetailOut{
		User:             newUserOut(d.User),
		ProfileSpecialty: d.Profile.Specialty,
		YearsExp:         d.Profile.YearsExp,
		Bio:              d.Profile.Bio,
		AvgRating:        rating,
		Availabilities:   make([]availabilityOut, 0, len(d.Availabilities)),
	}
	for _, a := range d.Availabilities {
		out.Availabilities = append(out.Availabilities, availabilityOut{Weekday: a.Weekday, StartTime: a.StartTime, EndTime: a.EndTime})
	}
	return out
}

type appointmentOut struct {
	ID           int64                    `json:"id"`
	DoctorUserID int64                    `json:"doctor_user_id"`
	PatientID    int64                    `json:"patient_id"`
	StartAt      time.Time                `json:"start_at"`
	EndAt        time.Time                `json:"end_at"`
	Status       models.AppointmentStatus `json:"status"`
	Note         *string                  `json:"note"`
}

func newAppointmentOut(a models.Appointment) appointmentOut {
	return appointmentOut{
		ID:           a.ID,
		DoctorUserID: a.DoctorID,
		PatientID:    a.PatientID,
		StartAt:      a.StartAt,
		EndAt:        a.EndAt,
		Status:       a.Status,
		Note:         a.Note,
	}
}

func newAppointmentsOut(appointments []models.Appointment) []appointmentOut {
	out := make([]appointmentOut, 0, len(appointments))
	for _, a := range appointments {
		out = append(out, newAppointmentOut(a))
	}
	return out
}

type statsOut struct {
	TotalPatients       int64 `json:"total_patients"`
	TotalDoctors        int64 `json:"total_doctors"`
	TotalAppointments   int64 `json:"total_appointments"`
	PendingAppointments int64 `json:"pending_appointments"`
	TodayAppointments   int64 `json:"today_appointments"`
	ActiveUsers         int64 `json:"active_users"`
}

type statusCountOut struct {
	Status models.AppointmentStatus `json:"status"`
	Count  int64                    `json:"count"`
}

type roleCountOut struct {
	Role  models.Role `json:"role"`
	Count int64       `json:"count"`
}

type specialtyOut struct {
	Specialty        string `json:"specialty"`
	DoctorCount      int64  `json:"doctor_count"`
	AppointmentCount int64  `json:"appointment_count"`
}

type topDoctorOut struct {
	DoctorID         int64   `json:"doctor_id"`
	DoctorName       string  `json:"doctor_name"`
	Specialty        string  `json:"specialty"`
	AvgRating        float64 `json:"avg_rating"`
	AppointmentCount int64   `json:"appointment_count"`
}

type trendOut struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type activityOut struct {
	ID          int64     `json:"id"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type dashboardOut struct {
	Overview             statsOut         `json:"overview"`
	AppointmentsByStatus []statusCountOut `json:"appointments_by_status"`
	UsersByRole          []roleCountOut   `json:"users_by_role"`
	Specialties          []specialtyOut   `json:"specialties"`
	TopDoctors           []topDoctorOut   `json:"top_doctors"`
	RecentActivities     []activityOut    `json:"recent_activities"`
	AppointmentTrends    []trendOut       `json:"appointment_trends"`
}

func newStatsOut(s models.DashboardStats) statsOut {
	return statsOut(s)
}

func newStatusCountsOut(counts []models.StatusCount) []statusCountOut {
	out := make([]statusCountOut, 0, len(counts))
	for _, c := range counts {
		out = append(out, statusCountOut(c))
	}
	return out
}

func newRoleCountsOut(counts []models.RoleCount) []roleCountOut {
	out := make([]roleCountOut, 0, len(counts))
	for _, c := range counts {
		out = append(out, roleCountOut(c))
	}
	return out
}

func newSpecialtiesOut(stats []models.SpecialtyStats) []specialtyOut {
	out := make([]specialtyOut, 0, len(stats))
	for _, s := range stats {
		out = append(out, specialtyOut(s))
	}
	return out
}

func newTopDoctorsOut(doctors []models.TopDoctor) []topDoctorOut {
	out := make([]topDoctorOut, 0, len(doctors))
	for _, d := range doctors {
		rating, _ := d.AvgRating.Float64()
		out = append(out, topDoctorOut{
			DoctorID:         d.DoctorID,
			DoctorName:       d.DoctorName,
			Specialty:        d.Specialty,
			AvgRating:        rating,
			AppointmentCount: d.AppointmentCount,
		})
	}
	return out
}

func newTrendsOut(days []models.DayCount) []trendOut {
	out := make([]trendOut, 0, len(days))
	for _, d := range days {
		out = append(out, trendOut{Date: d.Date.Format(time.DateOnly), Count: d.Count})
	}
	return out
}

func newActivitiesOut(activities []models.Activity) []activityOut {
	out := make([]activityOut, 0, len(activities))
	for _, a := range activities {
		out = append(out, activityOut(a))
	}
	return out
}

func newDashboardOut(d models.Dashboard) dashboardOut {
	return dashboardOut{
		Overview:             newStatsOut(d.Overview),
		AppointmentsByStatus: newStatusCountsOut(d.AppointmentsByStatus),
		UsersByRole:          newRoleCountsOut(d.UsersByRole),
		Specialties:          newSpecialtiesOut(d.Specialties),
		TopDoctors:           newTopDoctorsOut(d.TopDoctors),
		RecentActivities:     newActivitiesOut(d.RecentActivities),
		AppointmentTrends:    newTrendsOut(d.AppointmentTrends),
	}
}
