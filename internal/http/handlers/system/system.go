// Package system serves the service-level endpoints: the status summary on
// "/" and the liveness check on "/health".
package system

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aanand-mishra/students-api/internal/storage/bootstrap"
	"github.com/aanand-mishra/students-api/internal/utils/response"
)

// Endpoints is the route summary shown on the home page.
var Endpoints = map[string]string{
	"GET /students":             "Get all students",
	"POST /students":            "Add new student (requires: name, age)",
	"GET /students/{id}":        "Get student by ID",
	"DELETE /students/{id}":     "Delete student by ID",
	"GET /students/name/{name}": "Search students by name",
	"GET /health":               "Health check for CI/CD monitoring",
}

// HomeResponse is the body of GET /.
type HomeResponse struct {
	Message          string            `json:"message"`
	Status           string            `json:"status"`
	DatabaseStatus   string            `json:"database_status"`
	TotalStudents    int               `json:"total_students"`
	SecretConfigured bool              `json:"secret_configured"`
	Timestamp        string            `json:"timestamp"`
	Endpoints        map[string]string `json:"endpoints"`
}

// HealthResponse is the body of GET /health. The degraded form fills
// Error and leaves the counters out.
type HealthResponse struct {
	Status                string `json:"status"`
	Database              string `json:"database"`
	MongoSecretConfigured *bool  `json:"mongo_secret_configured,omitempty"`
	Timestamp             string `json:"timestamp"`
	TotalStudents         *int   `json:"total_students,omitempty"`
	ReadyForDeployment    *bool  `json:"ready_for_deployment,omitempty"`
	Error                 string `json:"error,omitempty"`
}

// Health status values.
const (
	StatusHealthy             = "healthy"
	StatusHealthyWithFallback = "healthy_with_fallback"

	DatabaseConnected = "connected_via_secrets"
	DatabaseFallback  = "fallback_mode"
	DatabaseNoSecret  = "fallback_mode_no_secret"
)

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// Home handles GET /.
func Home(conn *bootstrap.Connection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		students, err := conn.Storage.GetStudents(r.Context())
		if err != nil {
			slog.Error("error in home route", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.Error(response.MsgInternal))
			return
		}

		response.WriteJSON(w, http.StatusOK, HomeResponse{
			Message:          "Welcome to the Student Management System API!",
			Status:           "operational",
			DatabaseStatus:   conn.DatabaseStatus(),
			TotalStudents:    len(students),
			SecretConfigured: conn.SecretConfigured,
			Timestamp:        timestamp(),
			Endpoints:        Endpoints,
		})
	}
}

// Health handles GET /health.
//
// A failed backend ping is reported in the body. With alwaysOK the status
// code stays 200 so deployment pipelines do not treat a degraded database
// as a failed rollout; otherwise it answers 503.
func Health(conn *bootstrap.Connection, alwaysOK bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		degraded := func(err error) {
			slog.Error("health check failed", slog.String("error", err.Error()))

			status := http.StatusServiceUnavailable
			if alwaysOK {
				status = http.StatusOK
			}
			response.WriteJSON(w, status, HealthResponse{
				Status:    StatusHealthyWithFallback,
				Database:  DatabaseFallback,
				Timestamp: timestamp(),
				Error:     err.Error(),
			})
		}

		database := DatabaseNoSecret
		if conn.Connected {
			if err := conn.Storage.Ping(r.Context()); err != nil {
				degraded(err)
				return
			}
			database = DatabaseConnected
		}

		students, err := conn.Storage.GetStudents(r.Context())
		if err != nil {
			degraded(err)
			return
		}

		total := len(students)
		ready := true
		secret := conn.SecretConfigured

		response.WriteJSON(w, http.StatusOK, HealthResponse{
			Status:                StatusHealthy,
			Database:              database,
			MongoSecretConfigured: &secret,
			Timestamp:             timestamp(),
			TotalStudents:         &total,
			ReadyForDeployment:    &ready,
		})
	}
}
