package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/nkiryanov/medify/internal/logger"
	"github.com/nkiryanov/medify/internal/models"
	"github.com/nkiryanov/medify/internal/repository/postgres"
	"github.com/nkiryanov/medify/internal/service/appointment"
	"github.com/nkiryanov/medify/internal/service/auth"
	"github.com/nkiryanov/medify/internal/service/auth/revocation"
	"github.com/nkiryanov/medify/internal/service/auth/tokenmanager"
	"github.com/nkiryanov/medify/internal/service/dashboard"
	"github.com/nkiryanov/medify/internal/service/doctor"
	"github.com/nkiryanov/medify/internal/service/review"
	"github.com/nkiryanov/medify/internal/service/user"
	"github.com/nkiryanov/medify/internal/testutil"
)

type apiClient struct {
	t   *testing.T
	url string
}

// Send request with optional bearer token and JSON body, return status and decoded body
func (c apiClient) do(method string, path string, token string, body any) (int, map[string]any) {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(c.t.Context(), method, c.url+path, reader)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)

	decoded := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(c.t, json.Unmarshal(raw, &decoded), "body: %s", raw)
	}
	if len(raw) > 0 && raw[0] == '[' {
		var items []any
		require.NoError(c.t, json.Unmarshal(raw, &items), "body: %s", raw)
		decoded["items"] = items
	}

	return resp.StatusCode, decoded
}

func (c apiClient) login(email string, password string) string {
	c.t.Helper()

	code, body := c.do(http.MethodPost, "/auth/login", "", map[string]any{"email": email, "password": password})
	require.Equal(c.t, http.StatusOK, code, "login failed: %v", body)
	require.Equal(c.t, "bearer", body["token_type"])

	return body["access_token"].(string)
}

func Test_Router(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	// Run http server with production services over a rolled back transaction
	withAPI := func(t *testing.T, fn func(c apiClient, users *user.UserService)) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			storage := postgres.NewStorage(tx)
			users := user.NewService(auth.BcryptHasher{Cost: bcrypt.MinCost}, storage)

			tokens, err := tokenmanager.New(tokenmanager.Config{SecretKey: "test-secret"})
			require.NoError(t, err)

			authService, err := auth.NewAuthService(users, tokens, revocation.New())
			require.NoError(t, err)

			router := NewRouter(Services{
				Auth:         authService,
				Users:        users,
				Doctors:      doctor.NewService(storage.Doctor()),
				Appointments: appointment.NewService(storage),
				Reviews:      review.NewService(storage),
				Dashboard:    dashboard.NewService(storage.Dashboard()),
				DB:           pg.Pool,
			}, logger.NewNoOpLogger())

			srv := httptest.NewServer(router)
			defer srv.Close()

			fn(apiClient{t: t, url: srv.URL}, users)
		})
	}

	register := func(c apiClient, email string, role models.Role) int64 {
		c.t.Helper()

		code, body := c.do(http.MethodPost, "/auth/register", "", map[string]any{
			"email":     email,
			"full_name": "Name of " + email,
			"password":  "Secret1!",
			"role":      role,
		})
		require.Equal(c.t, http.StatusOK, code, "register failed: %v", body)

		return int64(body["id"].(float64))
	}

	createAdmin := func(t *testing.T, users *user.UserService) {
		_, err := users.CreateUser(t.Context(), models.NewUser{
			Email:    "admin@example.com",
			FullName: "Admin",
			Password: "Secret1!",
			Role:     models.RoleAdmin,
		})
		require.NoError(t, err)
	}

	t.Run("root and health", func(t *testing.T) {
		withAPI(t, func(c apiClient, _ *user.UserService) {
			code, body := c.do(http.MethodGet, "/", "", nil)
			require.Equal(t, http.StatusOK, code)
			require.Equal(t, "Medify API is running", body["message"])

			code, body = c.do(http.MethodGet, "/health", "", nil)
			require.Equal(t, http.StatusOK, code)
			require.Equal(t, "ok", body["status"])
		})
	})

	t.Run("register", func(t *testing.T) {
		t.Run("ok as patient by default", func(t *testing.T) {
			withAPI(t, func(c apiClient, _ *user.UserService) {
				code, body := c.do(http.MethodPost, "/auth/register", "", map[string]any{
					"email":     "anna@example.com",
					"full_name": "Anna",
					"password":  "Secret1!",
				})

				require.Equal(t, http.StatusOK, code)
				require.Equal(t, "PATIENT", body["role"])
				require.Equal(t, true, body["is_active"])
				require.NotContains(t, body, "password_hash")
			})
		})

		t.Run("email taken", func(t *testing.T) {
			withAPI(t, func(c apiClient, _ *user.UserService) {
				register(c, "anna@example.com", models.RolePatient)

				code, body := c.do(http.MethodPost, "/auth/register", "", map[string]any{
					"email":     "anna@example.com",
					"full_name": "Anna",
					"password":  "Secret1!",
				})

				require.Equal(t, http.StatusBadRequest, code)
				require.Equal(t, "Email already used", body["message"])
			})
		})

		t.Run("admin is forbidden", func(t *testing.T) {
			withAPI(t, func(c apiClient, _ *user.UserService) {
				code, body := c.do(http.MethodPost, "/auth/register", "", map[string]any{
					"email":     "root@example.com",
					"full_name": "Root",
					"password":  "Secret1!",
					"role":      "ADMIN",
				})

				require.Equal(t, http.StatusForbidden, code)
				require.Equal(t, "Forbidden", body["message"])
			})
		})

		t.Run("weak password", func(t *testing.T) {
			withAPI(t, func(c apiClient, _ *user.UserService) {
				code, body := c.do(http.MethodPost, "/auth/register", "", map[string]any{
					"email":     "anna@example.com",
					"full_name": "Anna",
					"password":  "weak",
				})

				require.Equal(t, http.StatusBadRequest, code)
				require.Equal(t, "validation_failed", body["error"])
				require.Contains(t, body["fields"], "password")
			})
		})
	})

	t.Run("login", func(t *testing.T) {
		withAPI(t, func(c apiClient, users *user.UserService) {
			id := register(c, "anna@example.com", models.RolePatient)

			code, body := c.do(http.MethodPost, "/auth/login", "", map[string]any{"email": "anna@example.com", "password": "Wrong1!x"})
			require.Equal(t, http.StatusUnauthorized, code)
			require.Equal(t, "Invalid email or password", body["message"])

			code, _ = c.do(http.MethodPost, "/auth/login", "", map[string]any{"email": "nobody@example.com", "password": "Secret1!"})
			require.Equal(t, http.StatusUnauthorized, code)

			_, err := users.ToggleActive(t.Context(), id)
			require.NoError(t, err)

			code, body = c.do(http.MethodPost, "/auth/login", "", map[string]any{"email": "anna@example.com", "password": "Secret1!"})
			require.Equal(t, http.StatusUnauthorized, code)
			require.Equal(t, "User is inactive", body["message"])
		})
	})

	t.Run("logout revokes token", func(t *testing.T) {
		withAPI(t, func(c apiClient, _ *user.UserService) {
			register(c, "anna@example.com", models.RolePatient)
			token := c.login("anna@example.com", "Secret1!")

			code, body := c.do(http.MethodGet, "/auth/me", token, nil)
			require.Equal(t, http.StatusOK, code)
			require.Equal(t, "anna@example.com", body["email"])

			code, body = c.do(http.MethodPost, "/auth/logout", token, nil)
			require.Equal(t, http.StatusOK, code)
			require.Equal(t, true, body["ok"])
			require.Equal(t, true, body["revoked"])
			require.Greater(t, body["exp"], float64(time.Now().Unix()))

			code, _ = c.do(http.MethodGet, "/auth/me", token, nil)
			require.Equal(t, http.StatusUnauthorized, code, "revoked token must not be accepted")

			other := c.login("anna@example.com", "Secret1!")
			code, _ = c.do(http.MethodGet, "/auth/me", other, nil)
			require.Equal(t, http.StatusOK, code, "new token works after logout")
		})
	})

	t.Run("logout without valid token", func(t *testing.T) {
		withAPI(t, func(c apiClient, _ *user.UserService) {
			for _, token := range []string{"", "not-a-jwt"} {
				code, body := c.do(http.MethodPost, "/auth/logout", token, nil)
				require.Equal(t, http.StatusOK, code)
				require.Equal(t, true, body["ok"])
				require.Equal(t, false, body["revoked"])
				require.NotContains(t, body, "exp")
			}
		})
	})

	t.Run("me requires token", func(t *testing.T) {
		withAPI(t, func(c apiClient, _ *user.UserService) {
			code, body := c.do(http.MethodGet, "/auth/me", "", nil)
			require.Equal(t, http.StatusUnauthorized, code)
			require.Equal(t, "Unauthorized", body["message"])
		})
	})

	t.Run("appointment and review flow", func(t *testing.T) {
		withAPI(t, func(c apiClient, _ *user.UserService) {
			doctorID := register(c, "house@example.com", models.RoleDoctor)
			register(c, "anna@example.com", models.RolePatient)
			patient := c.login("anna@example.com", "Secret1!")
			doc := c.login("house@example.com", "Secret1!")

			code, body := c.do(http.MethodGet, "/doctors?specialty="+models.DefaultSpecialty, "", nil)
			require.Equal(t, http.StatusOK, code)
			require.Len(t, body["items"], 1)

			code, body = c.do(http.MethodGet, fmt.Sprintf("/doctors/%d", doctorID), "", nil)
			require.Equal(t, http.StatusOK, code)
			require.Equal(t, models.DefaultSpecialty, body["profile_specialty"])

			start := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Minute)
			booking := map[string]any{
				"doctor_user_id": doctorID,
				"start_at":       start.Format(time.RFC3339),
				"end_at":         start.Add(30 * time.Minute).Format(time.RFC3339),
			}

			code, _ = c.do(http.MethodPost, "/appointments", doc, booking)
			require.Equal(t, http.StatusForbidden, code, "doctors can't book")

			code, body = c.do(http.MethodPost, "/appointments", patient, booking)
			require.Equal(t, http.StatusOK, code, "booking failed: %v", body)
			require.Equal(t, "BOOKED", body["status"])
			appointmentID := int64(body["id"].(float64))

			code, body = c.do(http.MethodPost, "/reviews", patient, map[string]any{"appointment_id": 999999, "rating": 5})
			require.Equal(t, http.StatusForbidden, code, "unknown appointment looks the same as foreign one")
			require.Equal(t, "Forbidden", body["message"])

			review := map[string]any{"appointment_id": appointmentID, "rating": 5}
			code, body = c.do(http.MethodPost, "/reviews", patient, review)
			require.Equal(t, http.StatusBadRequest, code)
			require.Equal(t, "Appointment must be DONE before review", body["message"])

			code, _ = c.do(http.MethodPost, fmt.Sprintf("/appointments/%d/complete", appointmentID), patient, nil)
			require.Equal(t, http.StatusForbidden, code)

			code, body = c.do(http.MethodPost, fmt.Sprintf("/appointments/%d/complete", appointmentID), doc, nil)
			require.Equal(t, http.StatusOK, code)
			require.Equal(t, "DONE", body["status"])

			code, _ = c.do(http.MethodPost, fmt.Sprintf("/appointments/%d/complete", appointmentID), doc, nil)
			require.Equal(t, http.StatusConflict, code)

			code, body = c.do(http.MethodPost, "/reviews", patient, review)
			require.Equal(t, http.StatusOK, code)
			require.Equal(t, true, body["ok"])
			require.InDelta(t, 5.0, body["new_avg_rating"], 0.001)

			code, _ = c.do(http.MethodPost, "/reviews", patient, review)
			require.Equal(t, http.StatusConflict, code)

			code, body = c.do(http.MethodGet, "/appointments", doc, nil)
			require.Equal(t, http.StatusOK, code)
			require.Len(t, body["items"], 1)
		})
	})

	t.Run("create appointment validation", func(t *testing.T) {
		withAPI(t, func(c apiClient, _ *user.UserService) {
			register(c, "anna@example.com", models.RolePatient)
			patient := c.login("anna@example.com", "Secret1!")
			start := time.Now().Add(time.Hour).UTC()

			code, body := c.do(http.MethodPost, "/appointments", patient, map[string]any{
				"doctor_user_id": 1,
				"start_at":       start.Format(time.RFC3339),
				"end_at":         start.Add(-time.Minute).Format(time.RFC3339),
			})
			require.Equal(t, http.StatusBadRequest, code)
			require.Contains(t, body["fields"], "end_at")

			code, body = c.do(http.MethodPost, "/appointments", patient, map[string]any{
				"doctor_user_id": 999999,
				"start_at":       start.Format(time.RFC3339),
				"end_at":         start.Add(time.Minute).Format(time.RFC3339),
			})
			require.Equal(t, http.StatusNotFound, code)
			require.Equal(t, "Doctor not found", body["message"])
		})
	})

	t.Run("cancel ownership", func(t *testing.T) {
		withAPI(t, func(c apiClient, _ *user.UserService) {
			doctorID := register(c, "house@example.com", models.RoleDoctor)
			register(c, "anna@example.com", models.RolePatient)
			register(c, "bob@example.com", models.RolePatient)
			anna := c.login("anna@example.com", "Secret1!")
			bob := c.login("bob@example.com", "Secret1!")

			start := time.Now().Add(time.Hour).UTC()
			code, body := c.do(http.MethodPost, "/appointments", anna, map[string]any{
				"doctor_user_id": doctorID,
				"start_at":       start.Format(time.RFC3339),
				"end_at":         start.Add(time.Hour).Format(time.RFC3339),
			})
			require.Equal(t, http.StatusOK, code)
			path := fmt.Sprintf("/appointments/%d/cancel", int64(body["id"].(float64)))

			code, _ = c.do(http.MethodPost, path, bob, nil)
			require.Equal(t, http.StatusForbidden, code)

			code, body = c.do(http.MethodPost, path, anna, nil)
			require.Equal(t, http.StatusOK, code)
			require.Equal(t, "CANCELED", body["status"])

			code, _ = c.do(http.MethodPost, "/appointments/999999/cancel", anna, nil)
			require.Equal(t, http.StatusNotFound, code)

			code, body = c.do(http.MethodPost, "/appointments/abc/cancel", anna, nil)
			require.Equal(t, http.StatusBadRequest, code)
			require.Contains(t, body["fields"], "id")
		})
	})

	t.Run("admin area", func(t *testing.T) {
		withAPI(t, func(c apiClient, users *user.UserService) {
			createAdmin(t, users)
			patientID := register(c, "anna@example.com", models.RolePatient)
			patient := c.login("anna@example.com", "Secret1!")
			admin := c.login("admin@example.com", "Secret1!")

			code, _ := c.do(http.MethodGet, "/admin/users", "", nil)
			require.Equal(t, http.StatusUnauthorized, code)

			code, body := c.do(http.MethodGet, "/admin/users", patient, nil)
			require.Equal(t, http.StatusForbidden, code)
			require.Equal(t, "Forbidden", body["message"])

			code, body = c.do(http.MethodGet, "/admin/users", admin, nil)
			require.Equal(t, http.StatusOK, code)
			require.Len(t, body["items"], 2)

			code, body = c.do(http.MethodPost, fmt.Sprintf("/admin/users/%d/toggle-active", patientID), admin, nil)
			require.Equal(t, http.StatusOK, code)
			require.Equal(t, false, body["is_active"])

			code, body = c.do(http.MethodDelete, fmt.Sprintf("/admin/users/%d", patientID), admin, nil)
			require.Equal(t, http.StatusOK, code)
			require.Equal(t, "User deleted successfully", body["message"])

			code, _ = c.do(http.MethodGet, fmt.Sprintf("/admin/users/%d", patientID), admin, nil)
			require.Equal(t, http.StatusNotFound, code)

			code, _ = c.do(http.MethodDelete, "/admin/appointments/999999", admin, nil)
			require.Equal(t, http.StatusNotFound, code)
		})
	})

	t.Run("dashboard", func(t *testing.T) {
		withAPI(t, func(c apiClient, users *user.UserService) {
			createAdmin(t, users)
			register(c, "house@example.com", models.RoleDoctor)
			register(c, "anna@example.com", models.RolePatient)
			admin := c.login("admin@example.com", "Secret1!")

			code, body := c.do(http.MethodGet, "/admin/dashboard", admin, nil)
			require.Equal(t, http.StatusOK, code)
			require.Contains(t, body, "overview")
			require.Len(t, body["appointment_trends"], dashboard.DefaultTrendDays)

			code, body = c.do(http.MethodGet, "/admin/dashboard/stats", admin, nil)
			require.Equal(t, http.StatusOK, code)
			require.InDelta(t, 1, body["total_patients"], 0)
			require.InDelta(t, 1, body["total_doctors"], 0)

			code, body = c.do(http.MethodGet, "/admin/dashboard/appointment-trends?days=3", admin, nil)
			require.Equal(t, http.StatusOK, code)
			require.Len(t, body["items"], 3)

			code, body = c.do(http.MethodGet, "/admin/dashboard/top-doctors?limit=0", admin, nil)
			require.Equal(t, http.StatusBadRequest, code)
			require.Contains(t, body["fields"], "limit")

			for _, path := range []string{
				"/admin/dashboard/appointments-by-status",
				"/admin/dashboard/users-by-role",
				"/admin/dashboard/specialties",
				"/admin/dashboard/top-doctors",
				"/admin/dashboard/recent-activities",
			} {
				code, _ := c.do(http.MethodGet, path, admin, nil)
				require.Equal(t, http.StatusOK, code, path)
			}
		})
	})
}
