package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/nkiryanov/medify/internal/handlers/render"
)

func handleRoot() http.Handler {
	type response struct {
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, response{Message: "Medify API is running"})
	})
}

// Always 200: status is 'degraded' if database does not answer in time
func handleHealth(db pinger) http.Handler {
	type services struct {
		API      string `json:"api"`
		Database string `json:"database"`
	}
	type response struct {
		Status   string    `json:"status"`
		TimeUTC  time.Time `json:"time_utc"`
		Services services  `json:"services"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		resp := response{
			Status:   "ok",
			TimeUTC:  time.Now().UTC(),
			Services: services{API: "up", Database: "up"},
		}

		if db == nil || db.Ping(ctx) != nil {
			resp.Status = "degraded"
			resp.Services.Database = "down"
		}

		render.JSON(w, resp)
	})
}
