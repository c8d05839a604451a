package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/students-api/internal/storage"
)

func newTestStore(t *testing.T) *SQLite {
	t.Helper()

	s, err := New(context.Background(), filepath.Join(t.TempDir(), "students.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close(context.Background()) })
	return s
}

func TestCreateAndGet(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	created, err := s.CreateStudent(ctx, "John Doe", 25)
	require.NoError(t, err)
	assert.Equal(t, "1", created.ID)
	require.NotNil(t, created.CreatedAt)

	got, err := s.GetStudentByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "John Doe", got.Name)
	assert.Equal(t, 25, got.Age)
	assert.Nil(t, got.CreatedAt)
}

func TestGetStudentByID_Errors(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.GetStudentByID(ctx, "42")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = s.GetStudentByID(ctx, "abc")
	assert.ErrorIs(t, err, storage.ErrInvalidID)
}

func TestGetStudents_OrderAndEmpty(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	empty, err := s.GetStudents(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	for _, name := range []string{"Ann", "Ben", "Cat"} {
		_, err := s.CreateStudent(ctx, name, 20)
		require.NoError(t, err)
	}

	all, err := s.GetStudents(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Ann", all[0].Name)
	assert.Equal(t, "Cat", all[2].Name)
}

func TestDeleteStudentByID(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	created, err := s.CreateStudent(ctx, "Temp", 30)
	require.NoError(t, err)

	require.NoError(t, s.DeleteStudentByID(ctx, created.ID))
	assert.ErrorIs(t, s.DeleteStudentByID(ctx, created.ID), storage.ErrNotFound)
	assert.ErrorIs(t, s.DeleteStudentByID(ctx, "x1"), storage.ErrInvalidID)

	_, err = s.GetStudentByID(ctx, created.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSearchStudentsByName(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, name := range []string{"Alice Johnson", "Bob Wilson", "100%_real"} {
		_, err := s.CreateStudent(ctx, name, 20)
		require.NoError(t, err)
	}

	for _, q := range []string{"alice", "Johnson", "ce Jo"} {
		got, err := s.SearchStudentsByName(ctx, q)
		require.NoError(t, err)
		require.Len(t, got, 1, "query %q", q)
		assert.Equal(t, "Alice Johnson", got[0].Name)
	}

	// LIKE wildcards are matched literally.
	got, err := s.SearchStudentsByName(ctx, "%_")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "100%_real", got[0].Name)

	got, err = s.SearchStudentsByName(ctx, "zzz")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPing(t *testing.T) {
	s := newTestStore(t)
	assert.NoError(t, s.Ping(context.Background()))
}
