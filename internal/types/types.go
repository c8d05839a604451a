// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles —
// handlers, storage, and utils can all import types without depending
// on each other.
package types

import "time"

// Student represents a student record in our system.
//
// The JSON key for the identifier is "_id" so that every backend (the
// document database, SQLite, or the in-memory sample set) produces the
// same wire shape.
//
// CreatedAt is a pointer so it can be left out of list/get/search
// responses: only the create response carries it.
type Student struct {
	ID        string     `json:"_id"`
	Name      string     `json:"name"`
	Age       int        `json:"age"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// Summary returns a copy of the student projected to {_id, name, age}.
func (s Student) Summary() Student {
	return Student{ID: s.ID, Name: s.Name, Age: s.Age}
}

// NewStudent is the validated input for creating a student.
//
// Field order matters: validator reports errors in declaration order, and
// age problems must be reported before name problems.
//
//   - "gte=0,lte=150" — inclusive age range
//   - "notblank"      — registered from validator's non-standard set;
//     rejects strings that are empty after trimming whitespace
type NewStudent struct {
	Age  int    `json:"age"  validate:"gte=0,lte=150"`
	Name string `json:"name" validate:"notblank"`
}
