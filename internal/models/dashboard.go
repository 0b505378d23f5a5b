package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type DashboardStats struct {
	TotalPatients       int64
	TotalDoctors        int64
	TotalAppointments   int64
	PendingAppointments int64
	TodayAppointments   int64
	ActiveUsers         int64
}

type StatusCount struct {
	Status AppointmentStatus
	Count  int64
}

type RoleCount struct {
	Role  Role
	Count int64
}

type SpecialtyStats struct {
	Specialty        string
	DoctorCount      int64
	AppointmentCount int64
}

type TopDoctor struct {
	DoctorID         int64
	DoctorName       string
	Specialty        string
	AvgRating        decimal.Decimal
	AppointmentCount int64
}

type DayCount struct {
	Date  time.Time
	Count int64
}

// Appointment joined with participant names, used for the activity feed
type AppointmentActivity struct {
	ID          int64
	PatientName string
	DoctorName  string
	StartAt     time.Time
}

type Activity struct {
	ID          int64
	Type        string
	Description string
	CreatedAt   time.Time
}

type Dashboard struct {
	Overview             DashboardStats
	AppointmentsByStatus []StatusCount
	UsersByRole          []RoleCount
	Specialties          []SpecialtyStats
	TopDoctors           []TopDoctor
	RecentActivities     []Activity
	AppointmentTrends    []DayCount
}
