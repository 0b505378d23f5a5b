package models

import (
	"time"
)

type AppointmentStatus string

const (
	AppointmentBooked   AppointmentStatus = "BOOKED"
	AppointmentCanceled AppointmentStatus = "CANCELED"
	AppointmentDone     AppointmentStatus = "DONE"
)

type Appointment struct {
	ID        int64
	CreatedAt time.Time
	PatientID int64
	DoctorID  int64 // user id of the doctor
	StartAt   time.Time
	EndAt     time.Time
	Status    AppointmentStatus
	Note      *string
}

// Appointment visibility scope. Zero value means all appointments
type AppointmentScope struct {
	PatientID int64
	DoctorID  int64
}

type Review struct {
	ID              int64
	CreatedAt       time.Time
	AppointmentID   int64
	DoctorProfileID int64
	Rating          int
	Comment         *string
}
