package models

import (
	"time"
)

type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}

// Authenticated caller extracted from a verified access token
type Principal struct {
	UserID    int64
	Role      Role
	ExpiresAt time.Time
}

// Outcome of a logout request. ExpiresAt is zero when nothing was revoked
type LogoutResult struct {
	Revoked   bool
	ExpiresAt time.Time
}
