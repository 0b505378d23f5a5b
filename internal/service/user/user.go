package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/nkiryanov/medify/internal/apperrors"
	"github.com/nkiryanov/medify/internal/models"
	"github.com/nkiryanov/medify/internal/repository"
	"github.com/nkiryanov/medify/internal/service/auth"
	"github.com/nkiryanov/medify/internal/service/validate"
)

type UserService struct {
	hasher  models.Hasher
	storage repository.Storage
}

func NewService(hasher models.Hasher, storage repository.Storage) *UserService {
	if hasher == nil {
		hasher = auth.DefaultHasher
	}

	return &UserService{
		hasher:  hasher,
		storage: storage,
	}
}

// Create user of any role. Doctor gets an empty profile within the same transaction
func (s *UserService) CreateUser(ctx context.Context, nu models.NewUser) (models.User, error) {
	var user models.User

	if !nu.Role.Valid() {
		return user, fmt.Errorf("unknown role %q", nu.Role)
	}

	if err := validate.Password(nu.Password); err != nil {
		return user, fmt.Errorf("can't use this as password, Err: %w", err)
	}

	if err := user.SetPassword(nu.Password, s.hasher); err != nil {
		return user, fmt.Errorf("can't hash password, Err: %w", err)
	}

	err := s.storage.InTx(ctx, func(storage repository.Storage) error {
		var err error
		user, err = storage.User().CreateUser(ctx, repository.CreateUserParams{
			Email:        nu.Email,
			FullName:     nu.FullName,
			Gender:       nu.Gender,
			PasswordHash: user.PasswordHash,
			Role:         nu.Role,
		})
		if err != nil {
			return fmt.Errorf("can't create user. Err: %w", err)
		}

		return ensureDoctorProfile(ctx, storage, user)
	})

	return user, err
}

// Update role, password and full name of existing user. Empty full name keeps the current one.
// User promoted to doctor gets an empty profile if there is none yet
func (s *UserService) UpdateUser(ctx context.Context, userID int64, nu models.NewUser) (models.User, error) {
	var user models.User

	if !nu.Role.Valid() {
		return user, fmt.Errorf("unknown role %q", nu.Role)
	}

	if err := validate.Password(nu.Password); err != nil {
		return user, fmt.Errorf("can't use this as password, Err: %w", err)
	}

	if err := user.SetPassword(nu.Password, s.hasher); err != nil {
		return user, fmt.Errorf("can't hash password, Err: %w", err)
	}

	err := s.storage.InTx(ctx, func(storage repository.Storage) error {
		var err error
		user, err = storage.User().UpdateUser(ctx, userID, repository.UpdateUserParams{
			FullName:     nu.FullName,
			PasswordHash: user.PasswordHash,
			Role:         nu.Role,
		})
		if err != nil {
			return fmt.Errorf("can't update user. Err: %w", err)
		}

		return ensureDoctorProfile(ctx, storage, user)
	})

	return user, err
}

// Create empty doctor profile for doctor without one. Does nothing for other roles
func ensureDoctorProfile(ctx context.Context, storage repository.Storage, user models.User) error {
	if user.Role != models.RoleDoctor {
		return nil
	}

	_, err := storage.Doctor().GetProfileByUserID(ctx, user.ID)
	switch {
	case err == nil:
		return nil
	case !errors.Is(err, apperrors.ErrDoctorProfileNotFound):
		return err
	}

	_, err = storage.Doctor().CreateProfile(ctx, models.DoctorProfile{
		UserID:    user.ID,
		Specialty: models.DefaultSpecialty,
	})
	if err != nil {
		return fmt.Errorf("can't create doctor profile. Err: %w", err)
	}

	return nil
}

// Check credentials
// Returns apperrors.ErrInvalidCredentials if email unknown or password does not match
// and apperrors.ErrUserInactive if user is disabled
func (s *UserService) Login(ctx context.Context, email string, password string) (models.User, error) {
	user, err := s.storage.User().GetUserByEmail(ctx, email)
	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
		return user, apperrors.ErrInvalidCredentials
	case err != nil:
		return user, err
	}

	if !user.CheckPassword(password, s.hasher) {
		return user, apperrors.ErrInvalidCredentials
	}

	if !user.IsActive {
		return user, apperrors.ErrUserInactive
	}

	return user, nil
}

func (s *UserService) GetUserByID(ctx context.Context, userID int64) (models.User, error) {
	return s.storage.User().GetUserByID(ctx, userID)
}

func (s *UserService) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	return s.storage.User().GetUserByEmail(ctx, email)
}

func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.storage.User().ListUsers(ctx)
}

func (s *UserService) DeleteUser(ctx context.Context, userID int64) error {
	return s.storage.User().DeleteUser(ctx, userID)
}

func (s *UserService) ToggleActive(ctx context.Context, userID int64) (models.User, error) {
	return s.storage.User().ToggleActive(ctx, userID)
}
