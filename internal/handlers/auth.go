package handlers

import (
	"errors"
	"net/http"

	"github.com/nkiryanov/medify/internal/apperrors"
	"github.com/nkiryanov/medify/internal/handlers/middleware"
	"github.com/nkiryanov/medify/internal/handlers/render"
	"github.com/nkiryanov/medify/internal/handlers/userctx"
	"github.com/nkiryanov/medify/internal/logger"
	"github.com/nkiryanov/medify/internal/models"
)

func handleRegister(auth authService, l logger.Logger) http.Handler {
	type request struct {
		Email    string         `json:"email" validate:"required,email,max=255"`
		FullName string         `json:"full_name" validate:"required,max=255"`
		Password string         `json:"password" validate:"required,password"`
		Gender   *models.Gender `json:"gender" validate:"omitempty,oneof=MALE FEMALE OTHER"`
		Role     models.Role    `json:"role" validate:"omitempty,oneof=PATIENT DOCTOR ADMIN"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		user, err := auth.Register(r.Context(), models.NewUser{
			Email:    data.Email,
			FullName: data.FullName,
			Gender:   data.Gender,
			Password: data.Password,
			Role:     data.Role,
		})
		switch {
		case err == nil:
			render.JSON(w, newUserOut(user))
		case errors.Is(err, apperrors.ErrEmailTaken):
			render.ServiceError(w, "Email already used", http.StatusBadRequest)
		case errors.Is(err, apperrors.ErrForbidden):
			render.ServiceError(w, "Forbidden", http.StatusForbidden)
		default:
			internalError(w, r, l, "register failed", err)
		}
	})
}

func handleLogin(auth authService, l logger.Logger) http.Handler {
	type request struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}
	type response struct {
		AccessToken string  `json:"access_token"`
		TokenType   string  `json:"token_type"`
		User        userOut `json:"user"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		token, user, err := auth.Login(r.Context(), data.Email, data.Password)
		switch {
		case err == nil:
			render.JSON(w, response{AccessToken: token.Value, TokenType: "bearer", User: newUserOut(user)})
		case errors.Is(err, apperrors.ErrInvalidCredentials):
			render.ServiceError(w, "Invalid email or password", http.StatusUnauthorized)
		case errors.Is(err, apperrors.ErrUserInactive):
			render.ServiceError(w, "User is inactive", http.StatusUnauthorized)
		default:
			internalError(w, r, l, "login failed", err)
		}
	})
}

// Always succeeds: missing or invalid token is reported as not revoked
func handleLogout(auth authService) http.Handler {
	type response struct {
		OK      bool   `json:"ok"`
		Revoked bool   `json:"revoked"`
		Exp     *int64 `json:"exp,omitempty"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		result := auth.Logout(middleware.BearerToken(r))

		resp := response{OK: true, Revoked: result.Revoked}
		if result.Revoked {
			exp := result.ExpiresAt.Unix()
			resp.Exp = &exp
		}

		render.JSON(w, resp)
	})
}

func handleMe(auth authService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, _ := userctx.FromContext(r.Context())

		user, err := auth.Me(r.Context(), p)
		switch {
		case err == nil:
			render.JSON(w, newUserOut(user))
		case errors.Is(err, apperrors.ErrUserNotFound):
			render.ServiceError(w, "User not found", http.StatusNotFound)
		default:
			internalError(w, r, l, "get current user failed", err)
		}
	})
}
