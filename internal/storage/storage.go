// Package storage defines the Storage interface — a contract that any
// database backend must satisfy to work with this application.
//
// WHY AN INTERFACE?
// ─────────────────
// Handlers (HTTP layer) should not know or care which database they are
// talking to. Three backends satisfy this contract:
//
//   - mongo  — a MongoDB collection (the normal production backend)
//   - sqlite — a single-file SQLite table
//   - memory — the in-memory sample set used when no database is configured
//
// The backend is picked ONCE at startup (see package bootstrap) and every
// handler receives the same Storage value for the life of the process.
package storage

import (
	"context"
	"errors"

	"github.com/aanand-mishra/students-api/internal/types"
)

var (
	// ErrNotFound is returned when no student matches the requested id.
	ErrNotFound = errors.New("student not found")

	// ErrInvalidID is returned by backends whose identifiers have a fixed
	// format (ObjectID, integer row id) when the id cannot be parsed.
	ErrInvalidID = errors.New("invalid student id")
)

// Storage is the database contract.
type Storage interface {
	// CreateStudent stores a new student and returns the complete record,
	// including the generated id and the server-set creation time.
	CreateStudent(ctx context.Context, name string, age int) (types.Student, error)

	// GetStudents returns every student projected to {_id, name, age}.
	// Returns an empty slice (not nil) if there are no students.
	GetStudents(ctx context.Context) ([]types.Student, error)

	// GetStudentByID fetches a single student. Returns ErrNotFound if no
	// record matches, ErrInvalidID if the id is malformed for the backend.
	GetStudentByID(ctx context.Context, id string) (types.Student, error)

	// DeleteStudentByID removes a student record permanently.
	// Returns ErrNotFound if nothing was deleted.
	DeleteStudentByID(ctx context.Context, id string) error

	// SearchStudentsByName returns every student whose name contains
	// query, compared case-insensitively.
	SearchStudentsByName(ctx context.Context, query string) ([]types.Student, error)

	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases the backend's resources.
	Close(ctx context.Context) error
}
