package models

import (
	"github.com/shopspring/decimal"
)

const DefaultSpecialty = "General"

type DoctorProfile struct {
	ID        int64
	UserID    int64
	Specialty string
	YearsExp  int
	Bio       string
	AvgRating decimal.Decimal
}

type Availability struct {
	ID        int64
	DoctorID  int64
	Weekday   int    // 0..6
	StartTime string // "08:00"
	EndTime   string // "11:30"
}

// Doctor is a user with role DOCTOR joined with its profile
type Doctor struct {
	User    User
	Profile DoctorProfile
}

type DoctorDetail struct {
	Doctor
	Availabilities []Availability
}

const (
	DoctorSortRatingDesc = "rating_desc"
	DoctorSortNameAsc    = "name_asc"
)

type DoctorFilter struct {
	Query     string // matched against full name or bio
	Specialty string
	Gender    *Gender
	Sort      string
}
