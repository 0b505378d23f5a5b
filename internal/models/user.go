package models

import (
	"time"
)

type Role string

const (
	RolePatient Role = "PATIENT"
	RoleDoctor  Role = "DOCTOR"
	RoleAdmin   Role = "ADMIN"
)

func (r Role) Valid() bool {
	switch r {
	case RolePatient, RoleDoctor, RoleAdmin:
		return true
	default:
		return false
	}
}

type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOther  Gender = "OTHER"
)

type Hasher interface {
	Hash(password string) (string, error)
	Compare(hashedPassword string, password string) error
}

type User struct {
	ID           int64
	CreatedAt    time.Time
	Email        string
	FullName     string
	Gender       *Gender // nil if not provided
	PasswordHash string
	IsActive     bool
	Role         Role
}

func (u *User) SetPassword(raw string, h Hasher) error {
	hash, err := h.Hash(raw)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(raw string, h Hasher) bool {
	return h.Compare(u.PasswordHash, raw) == nil
}

// Data required to create a user account. Password is raw, not hashed yet
type NewUser struct {
	Email    string
	FullName string
	Gender   *Gender
	Password string
	Role     Role
}
