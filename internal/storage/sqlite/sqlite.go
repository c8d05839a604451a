// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// WHY SQLite?
// ───────────
// SQLite stores everything in a single file on disk. There is no
// network, no separate server process, and no installation beyond the
// driver. It is selected with a database URI of the form
// sqlite:///var/lib/students.db (or file:students.db) and behaves exactly
// like the MongoDB backend, except that ids are decimal row ids.
//
// The blank import below registers the sqlite3 driver with database/sql.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aanand-mishra/students-api/internal/storage"
	"github.com/aanand-mishra/students-api/internal/types"

	// Blank import: side-effect only (registers the "sqlite3" driver).
	_ "github.com/mattn/go-sqlite3"
)

// SQLite is the concrete implementation of storage.Storage.
// It holds a *sql.DB which is a connection pool managed by database/sql.
// A single *sql.DB is safe for concurrent use by multiple goroutines.
type SQLite struct {
	Db  *sql.DB
	now func() time.Time
}

// New opens the SQLite database at path, creates the students table if it
// does not already exist, and returns a ready-to-use *SQLite.
func New(ctx context.Context, path string) (*SQLite, error) {
	// sql.Open does NOT open a real connection yet — it just validates
	// the driver name and data source name (DSN).
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	// CREATE TABLE IF NOT EXISTS is idempotent — safe to run on every
	// startup. It also forces the first real connection, so a bad path
	// fails here rather than on the first request.
	//
	// Schema:
	//   id         — integer primary key, auto-incremented by SQLite
	//   name       — student's full name
	//   age        — student's age in years
	//   created_at — set by CreateStudent, never by the client
	_, err = db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS students (
			id         INTEGER  PRIMARY KEY AUTOINCREMENT,
			name       TEXT     NOT NULL,
			age        INTEGER  NOT NULL,
			created_at DATETIME NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.New: create table: %w", err)
	}

	return &SQLite{
		Db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}, nil
}

// CreateStudent inserts a new row into the students table.
// The ? placeholders keep user input out of the SQL text.
func (s *SQLite) CreateStudent(ctx context.Context, name string, age int) (types.Student, error) {
	stmt, err := s.Db.PrepareContext(ctx,
		"INSERT INTO students (name, age, created_at) VALUES (?, ?, ?)",
	)
	if err != nil {
		return types.Student{}, fmt.Errorf("CreateStudent: prepare: %w", err)
	}
	defer stmt.Close()

	createdAt := s.now()

	result, err := stmt.ExecContext(ctx, name, age, createdAt)
	if err != nil {
		return types.Student{}, fmt.Errorf("CreateStudent: exec: %w", err)
	}

	lastID, err := result.LastInsertId()
	if err != nil {
		return types.Student{}, fmt.Errorf("CreateStudent: last insert id: %w", err)
	}

	return types.Student{
		ID:        strconv.FormatInt(lastID, 10),
		Name:      name,
		Age:       age,
		CreatedAt: &createdAt,
	}, nil
}

// GetStudentByID fetches exactly one student row matched by primary key.
func (s *SQLite) GetStudentByID(ctx context.Context, id string) (types.Student, error) {
	intID, err := parseID(id)
	if err != nil {
		return types.Student{}, err
	}

	stmt, err := s.Db.PrepareContext(ctx,
		"SELECT id, name, age FROM students WHERE id = ? LIMIT 1",
	)
	if err != nil {
		return types.Student{}, fmt.Errorf("GetStudentByID: prepare: %w", err)
	}
	defer stmt.Close()

	var (
		student types.Student
		rowID   int64
	)

	// QueryRow returns exactly one row. If the query finds no match the
	// error surfaces only when Scan is called.
	err = stmt.QueryRowContext(ctx, intID).Scan(&rowID, &student.Name, &student.Age)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Student{}, fmt.Errorf("no student found with id %d: %w", intID, storage.ErrNotFound)
		}
		return types.Student{}, fmt.Errorf("GetStudentByID: scan: %w", err)
	}
	student.ID = strconv.FormatInt(rowID, 10)

	return student, nil
}

// GetStudents returns all student rows in insertion order.
func (s *SQLite) GetStudents(ctx context.Context) ([]types.Student, error) {
	stmt, err := s.Db.PrepareContext(ctx,
		"SELECT id, name, age FROM students ORDER BY id",
	)
	if err != nil {
		return nil, fmt.Errorf("GetStudents: prepare: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("GetStudents: query: %w", err)
	}
	defer rows.Close()

	return scanStudents(rows, "GetStudents")
}

// SearchStudentsByName matches case-insensitively on a substring of name.
//
// instr(lower(...)) is used rather than LIKE so that '%' and '_' in the
// query are matched literally. SQLite's lower() only folds ASCII.
func (s *SQLite) SearchStudentsByName(ctx context.Context, query string) ([]types.Student, error) {
	stmt, err := s.Db.PrepareContext(ctx,
		"SELECT id, name, age FROM students WHERE instr(lower(name), lower(?)) > 0 ORDER BY id",
	)
	if err != nil {
		return nil, fmt.Errorf("SearchStudentsByName: prepare: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("SearchStudentsByName: query: %w", err)
	}
	defer rows.Close()

	return scanStudents(rows, "SearchStudentsByName")
}

// DeleteStudentByID removes a student row by primary key.
func (s *SQLite) DeleteStudentByID(ctx context.Context, id string) error {
	intID, err := parseID(id)
	if err != nil {
		return err
	}

	stmt, err := s.Db.PrepareContext(ctx, "DELETE FROM students WHERE id = ?")
	if err != nil {
		return fmt.Errorf("DeleteStudentByID: prepare: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx, intID)
	if err != nil {
		return fmt.Errorf("DeleteStudentByID: exec: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("DeleteStudentByID: rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("no student found with id %d: %w", intID, storage.ErrNotFound)
	}

	return nil
}

func (s *SQLite) Ping(ctx context.Context) error {
	return s.Db.PingContext(ctx)
}

func (s *SQLite) Close(context.Context) error {
	return s.Db.Close()
}

func parseID(id string) (int64, error) {
	intID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not an integer: %w", id, storage.ErrInvalidID)
	}
	return intID, nil
}

// scanStudents drains rows into a non-nil slice.
func scanStudents(rows *sql.Rows, op string) ([]types.Student, error) {
	students := make([]types.Student, 0)

	for rows.Next() {
		var (
			student types.Student
			rowID   int64
		)
		if err := rows.Scan(&rowID, &student.Name, &student.Age); err != nil {
			return nil, fmt.Errorf("%s: scan row: %w", op, err)
		}
		student.ID = strconv.FormatInt(rowID, 10)
		students = append(students, student)
	}

	// rows.Err() captures any error that occurred during iteration.
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows iteration: %w", op, err)
	}

	return students, nil
}

var _ storage.Storage = (*SQLite)(nil)
