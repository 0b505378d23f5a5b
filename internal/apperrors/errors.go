package apperrors

import (
	"errors"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrTokenInvalid = errors.New("token is invalid")
	ErrTokenRevoked = errors.New("token is revoked")

	ErrEmailTaken         = errors.New("email already used")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserInactive       = errors.New("user is inactive")

	ErrDoctorNotFound        = errors.New("doctor not found")
	ErrDoctorProfileNotFound = errors.New("doctor profile not found")

	ErrAppointmentNotFound  = errors.New("appointment not found")
	ErrAppointmentNotDone   = errors.New("appointment must be DONE before review")
	ErrAppointmentNotBooked = errors.New("appointment is not booked")
	ErrAppointmentTimeRange = errors.New("end_at must be after start_at")

	ErrReviewExists = errors.New("appointment already reviewed")
)
