// Package memory provides an in-memory implementation of the
// storage.Storage interface.
//
// It is the fallback backend: when no database URI is configured (or the
// connection attempt fails) the service runs entirely on this store. It is
// also used as the static sample set behind storage.WithReadFallback.
//
// The record set is owned by a *Memory value and guarded by a RWMutex, so
// a single instance can be shared by every handler goroutine.
package memory

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aanand-mishra/students-api/internal/storage"
	"github.com/aanand-mishra/students-api/internal/types"
)

// SampleStudents is the record set a fresh fallback store starts with.
func SampleStudents() []types.Student {
	return []types.Student{
		{ID: "1", Name: "John Doe", Age: 20},
		{ID: "2", Name: "Jane Smith", Age: 22},
		{ID: "3", Name: "Alice Johnson", Age: 19},
		{ID: "4", Name: "Bob Wilson", Age: 21},
	}
}

// Memory keeps students in insertion order.
type Memory struct {
	mu       sync.RWMutex
	students []types.Student
	now      func() time.Time
}

// New returns a store holding a copy of seed.
func New(seed []types.Student) *Memory {
	students := make([]types.Student, len(seed))
	copy(students, seed)

	return &Memory{
		students: students,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// NewWithSamples returns a store seeded with SampleStudents.
func NewWithSamples() *Memory {
	return New(SampleStudents())
}

// CreateStudent appends a student whose id is one more than the largest
// numeric id currently stored ("1" for an empty store).
func (m *Memory) CreateStudent(_ context.Context, name string, age int) (types.Student, error) {
	createdAt := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	student := types.Student{
		ID:        m.nextID(),
		Name:      name,
		Age:       age,
		CreatedAt: &createdAt,
	}
	m.students = append(m.students, student)

	return student, nil
}

// nextID must be called with mu held.
func (m *Memory) nextID() string {
	var highest int64
	for _, s := range m.students {
		// Ids are always generated here, but a seed may carry anything.
		n, err := strconv.ParseInt(s.ID, 10, 64)
		if err == nil && n > highest {
			highest = n
		}
	}
	return strconv.FormatInt(highest+1, 10)
}

func (m *Memory) GetStudents(_ context.Context) ([]types.Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	students := make([]types.Student, 0, len(m.students))
	for _, s := range m.students {
		students = append(students, s.Summary())
	}
	return students, nil
}

// GetStudentByID compares ids as literal strings: "01" does not match "1".
func (m *Memory) GetStudentByID(_ context.Context, id string) (types.Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if i := m.indexOf(id); i >= 0 {
		return m.students[i].Summary(), nil
	}
	return types.Student{}, storage.ErrNotFound
}

func (m *Memory) DeleteStudentByID(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(id)
	if i < 0 {
		return storage.ErrNotFound
	}
	m.students = append(m.students[:i], m.students[i+1:]...)
	return nil
}

func (m *Memory) SearchStudentsByName(_ context.Context, query string) ([]types.Student, error) {
	needle := strings.ToLower(query)

	m.mu.RLock()
	defer m.mu.RUnlock()

	matches := make([]types.Student, 0)
	for _, s := range m.students {
		if strings.Contains(strings.ToLower(s.Name), needle) {
			matches = append(matches, s.Summary())
		}
	}
	return matches, nil
}

// indexOf must be called with mu held.
func (m *Memory) indexOf(id string) int {
	for i, s := range m.students {
		if s.ID == id {
			return i
		}
	}
	return -1
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) Close(context.Context) error { return nil }

var _ storage.Storage = (*Memory)(nil)
