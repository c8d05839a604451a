package storage

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aanand-mishra/students-api/internal/types"
)

// FallbackObserver is notified every time a read is answered from the
// sample set. metrics.Collector satisfies it.
type FallbackObserver interface {
	ObserveReadFallback(operation string)
}

// readFallback answers reads from a secondary store when the primary
// backend fails. Writes always go to the primary.
type readFallback struct {
	Storage
	samples  Storage
	observer FallbackObserver
}

// WithReadFallback wraps primary so that list, get and search never fail
// because of a backend error: the error is logged and the read is served
// from samples instead. ErrNotFound is a normal answer, not a failure, and
// is passed through untouched.
//
// observer may be nil.
func WithReadFallback(primary, samples Storage, observer FallbackObserver) Storage {
	return &readFallback{Storage: primary, samples: samples, observer: observer}
}

func (f *readFallback) GetStudents(ctx context.Context) ([]types.Student, error) {
	students, err := f.Storage.GetStudents(ctx)
	if err == nil {
		return students, nil
	}

	f.degrade("list", err)
	return f.samples.GetStudents(ctx)
}

func (f *readFallback) GetStudentByID(ctx context.Context, id string) (types.Student, error) {
	student, err := f.Storage.GetStudentByID(ctx, id)
	if err == nil || errors.Is(err, ErrNotFound) {
		return student, err
	}

	// A malformed id is the client's mistake, not a backend failure.
	if errors.Is(err, ErrInvalidID) {
		slog.Warn("id is not valid for the backend, scanning sample data",
			slog.String("id", id))
		return f.samples.GetStudentByID(ctx, id)
	}

	f.degrade("get", err, slog.String("id", id))
	return f.samples.GetStudentByID(ctx, id)
}

func (f *readFallback) SearchStudentsByName(ctx context.Context, query string) ([]types.Student, error) {
	students, err := f.Storage.SearchStudentsByName(ctx, query)
	if err == nil {
		return students, nil
	}

	f.degrade("search", err, slog.String("query", query))
	return f.samples.SearchStudentsByName(ctx, query)
}

func (f *readFallback) degrade(operation string, err error, attrs ...any) {
	args := append([]any{
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	}, attrs...)
	slog.Error("backend read failed, serving sample data", args...)

	if f.observer != nil {
		f.observer.ObserveReadFallback(operation)
	}
}
