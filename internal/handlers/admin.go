package handlers

import (
	"errors"
	"net/http"

	"github.com/nkiryanov/medify/internal/apperrors"
	"github.com/nkiryanov/medify/internal/handlers/render"
	"github.com/nkiryanov/medify/internal/logger"
)

func userError(w http.ResponseWriter, r *http.Request, l logger.Logger, err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, apperrors.ErrUserNotFound):
		render.ServiceError(w, "User not found", http.StatusNotFound)
	default:
		internalError(w, r, l, "user operation failed", err)
	}
	return true
}

func handleListUsers(users userService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		found, err := users.ListUsers(r.Context())
		if userError(w, r, l, err) {
			return
		}

		out := make([]userOut, 0, len(found))
		for _, u := range found {
			out = append(out, newUserOut(u))
		}
		render.JSON(w, out)
	})
}

func handleGetUser(users userService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		u, err := users.GetUserByID(r.Context(), id)
		if userError(w, r, l, err) {
			return
		}

		render.JSON(w, newUserOut(u))
	})
}

func handleDeleteUser(users userService, l logger.Logger) http.Handler {
	type response struct {
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		err := users.DeleteUser(r.Context(), id)
		if userError(w, r, l, err) {
			return
		}

		render.JSON(w, response{Message: "User deleted successfully"})
	})
}

func handleToggleActive(users userService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		u, err := users.ToggleActive(r.Context(), id)
		if userError(w, r, l, err) {
			return
		}

		render.JSON(w, newUserOut(u))
	})
}
