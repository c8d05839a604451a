// Package student contains all HTTP handlers related to the Student resource.
//
// HANDLER PATTERN USED HERE — THE CLOSURE / FACTORY PATTERN:
// ────────────────────────────────────────────────────────────
// The router expects handler functions with the signature:
//
//	func(http.ResponseWriter, *http.Request)
//
// To inject the storage backend we use a factory function that accepts
// the dependency and returns a function with exactly that signature:
//
//	r.Post("/students", student.New(storage))
//	//                  ^^^^^^^^^^^^^^^^^^^^
//	//   New(storage) is called ONCE at startup. The handler it returns
//	//   is called on EVERY incoming request.
package student

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/aanand-mishra/students-api/internal/storage"
	"github.com/aanand-mishra/students-api/internal/utils/response"
)

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /students
// Creates a new student from the JSON request body.
//
// Request body (JSON):
//
//	{ "name": "John Doe", "age": 25 }
//
// Success response (201 Created) — the stored record:
//
//	{ "_id": "665f…", "name": "John Doe", "age": 25, "created_at": "…" }
//
// Error responses:
//
//	400 Bad Request  — missing fields, invalid age, blank name
//	500 Internal     — body is not JSON, or the database failed
//
// ─────────────────────────────────────────────────────────────────────────────
func New(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a student")

		input, err := decodeNewStudent(r.Body)
		if err != nil {
			var inErr *inputError
			if errors.As(err, &inErr) {
				response.WriteJSON(w, http.StatusBadRequest, response.Error(inErr.Message))
				return
			}

			slog.Error("error decoding student", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.Error(response.MsgAddFailed))
			return
		}

		student, err := storage.CreateStudent(r.Context(), input.Name, input.Age)
		if err != nil {
			slog.Error("error adding student", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.Error(response.MsgAddFailed))
			return
		}

		slog.Info("student created",
			slog.String("id", student.ID),
			slog.String("name", student.Name))

		response.WriteJSON(w, http.StatusCreated, student)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetByID handles GET /students/{id}
//
// Success response (200 OK):
//
//	{ "_id": "1", "name": "John Doe", "age": 20 }
//
// Error responses:
//
//	404 Not Found    — no such student, or an id the backend cannot parse
//	500 Internal     — database error
//
// ─────────────────────────────────────────────────────────────────────────────
func GetByID(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := pathParam(r, "id")
		slog.Info("getting a student", slog.String("id", id))

		student, err := storage.GetStudentByID(r.Context(), id)
		if err != nil {
			if isNotFound(err) {
				response.WriteJSON(w, http.StatusNotFound,
					response.Error(response.MsgStudentNotFound))
				return
			}

			slog.Error("error getting student",
				slog.String("id", id),
				slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.Error(response.MsgGetFailed))
			return
		}

		response.WriteJSON(w, http.StatusOK, student)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetList handles GET /students
// Returns a JSON array of all students. An empty store yields [] (not null).
// ─────────────────────────────────────────────────────────────────────────────
func GetList(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("getting all students")

		students, err := storage.GetStudents(r.Context())
		if err != nil {
			slog.Error("error getting students", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.Error(response.MsgListFailed))
			return
		}

		response.WriteJSON(w, http.StatusOK, students)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Delete handles DELETE /students/{id}
// Permanently removes a student record.
//
// Success response (200 OK):
//
//	{ "message": "Student deleted successfully" }
//
// Deleting the same id twice yields 200 then 404.
// ─────────────────────────────────────────────────────────────────────────────
func Delete(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := pathParam(r, "id")
		slog.Info("deleting a student", slog.String("id", id))

		if err := storage.DeleteStudentByID(r.Context(), id); err != nil {
			if isNotFound(err) {
				response.WriteJSON(w, http.StatusNotFound,
					response.Error(response.MsgStudentNotFound))
				return
			}

			slog.Error("error deleting student",
				slog.String("id", id),
				slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.Error(response.MsgDeleteFailed))
			return
		}

		slog.Info("student deleted", slog.String("id", id))
		response.WriteJSON(w, http.StatusOK, response.Message{Message: response.MsgStudentDeleted})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// SearchByName handles GET /students/name/{name}
// Case-insensitive substring search. No matches is a 404, not an empty 200.
// ─────────────────────────────────────────────────────────────────────────────
func SearchByName(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := pathParam(r, "name")
		slog.Info("searching students", slog.String("name", name))

		students, err := storage.SearchStudentsByName(r.Context(), name)
		if err != nil {
			slog.Error("error searching students",
				slog.String("name", name),
				slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.Error(response.MsgSearchFailed))
			return
		}

		if len(students) == 0 {
			response.WriteJSON(w, http.StatusNotFound,
				response.Error(response.MsgNoNameMatches))
			return
		}

		response.WriteJSON(w, http.StatusOK, students)
	}
}

// isNotFound treats ids a backend cannot parse the same as unknown ids.
func isNotFound(err error) bool {
	return errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidID)
}

// pathParam returns the decoded value of a route parameter. chi matches
// against the escaped path when the URL carries one (e.g. an encoded '/').
func pathParam(r *http.Request, key string) string {
	v := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return v
	}
	if unescaped, err := url.PathUnescape(v); err == nil {
		return unescaped
	}
	return v
}
