package handlers

import (
	"net/http"
	"strconv"

	"github.com/nkiryanov/medify/internal/handlers/render"
	"github.com/nkiryanov/medify/internal/logger"
)

// Parse positive integer path parameter 'id'. Writes error response if it is not valid
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		render.FieldError(w, "id", "Must be a positive integer")
		return 0, false
	}

	return id, true
}

// Parse positive integer query parameter. Missing parameter means default value
// Writes error response if it is not valid
func queryPositiveInt(w http.ResponseWriter, r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		render.FieldError(w, name, "Must be a positive integer")
		return 0, false
	}

	return n, true
}

// Log unexpected error with request scoped logger and hide details from client
func internalError(w http.ResponseWriter, r *http.Request, l logger.Logger, msg string, err error) {
	logger.FromContext(r.Context(), l).Error(msg, "error", err)
	render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
}
