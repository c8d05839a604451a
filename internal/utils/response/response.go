// Package response provides helpers for writing consistent JSON HTTP responses.
//
// Every handler in this application sends JSON back to the client.
// Rather than repeating the same three lines (set header, set status,
// encode JSON) in every handler, we centralise them here.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// ─────────────────────────────────────────────────────────────────────────────
// Response is the standard envelope returned for error cases.
//
// Success responses may return any JSON shape (a student, a list, a
// message…). Error responses always look like:
//
//	{ "status": "error", "error": "Student not found" }
//
// ─────────────────────────────────────────────────────────────────────────────
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

// Message is the body returned by successful deletes.
type Message struct {
	Message string `json:"message"`
}

// StatusError is the status value of every error envelope.
const StatusError = "error"

// Client-facing messages. Internal error details are logged, never sent.
const (
	MsgNoJSON          = "No JSON data provided"
	MsgMissingFields   = "Missing required fields: 'name' and 'age'"
	MsgAgeNotNumber    = "Age must be a valid number"
	MsgAgeOutOfRange   = "Age must be between 0 and 150"
	MsgNameEmpty       = "Name cannot be empty"
	MsgNameNotString   = "Name must be a string"
	MsgAddFailed       = "Failed to add student"
	MsgListFailed      = "Failed to retrieve students"
	MsgGetFailed       = "Failed to retrieve student"
	MsgDeleteFailed    = "Failed to delete student"
	MsgSearchFailed    = "Failed to search students"
	MsgStudentNotFound = "Student not found"
	MsgNoNameMatches   = "No students found with the given name"
	MsgStudentDeleted  = "Student deleted successfully"
	MsgRouteNotFound   = "Endpoint not found"
	MsgMethodNotAllow  = "Method not allowed"
	MsgInternal        = "Internal server error"
)

// ─────────────────────────────────────────────────────────────────────────────
// WriteJSON writes a JSON-encoded response with the given HTTP status code.
//
// IMPORTANT ORDER: Header() → WriteHeader() → body writes.
// Once WriteHeader is called (or the first Write), headers are locked.
// ─────────────────────────────────────────────────────────────────────────────
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// Error builds an error Response from a plain message.
func Error(msg string) Response {
	return Response{
		Status: StatusError,
		Error:  msg,
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// ValidationError converts validator.ValidationErrors for a
// types.NewStudent into a single Response.
//
// Only the first failing field is reported, so the client sees the same
// message the checks would give one at a time: age before name.
// ─────────────────────────────────────────────────────────────────────────────
func ValidationError(errs validator.ValidationErrors) Response {
	if len(errs) == 0 {
		return Error("validation failed")
	}

	e := errs[0]
	switch e.Field() {
	case "Age":
		return Error(MsgAgeOutOfRange)
	case "Name":
		return Error(MsgNameEmpty)
	}

	switch e.ActualTag() {
	case "required", "notblank":
		return Error("field " + e.Field() + " is required")
	default:
		return Error("field " + e.Field() + " is invalid")
	}
}
