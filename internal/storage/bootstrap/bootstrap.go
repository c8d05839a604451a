// Package bootstrap decides, once per process, which storage backend the
// service runs on.
//
// The decision is made from a single database URI:
//
//	""                    → in-memory sample set, no network attempt
//	mongodb://…           → MongoDB (ping must succeed)
//	mongodb+srv://…       → MongoDB (ping must succeed)
//	sqlite://path, file:… → SQLite file
//
// Any failure while connecting is logged and downgrades the service to the
// in-memory sample set. Open never returns an error.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aanand-mishra/students-api/internal/config"
	"github.com/aanand-mishra/students-api/internal/storage"
	"github.com/aanand-mishra/students-api/internal/storage/memory"
	"github.com/aanand-mishra/students-api/internal/storage/mongodb"
	"github.com/aanand-mishra/students-api/internal/storage/sqlite"
)

// Backend names reported by Connection.Backend.
const (
	BackendMongoDB = "mongodb"
	BackendSQLite  = "sqlite"
	BackendMemory  = "memory"
)

var errUnsupportedScheme = errors.New("unsupported database uri scheme")

// Connection is the outcome of the startup connection attempt.
type Connection struct {
	// Storage is shared by every handler for the life of the process.
	Storage storage.Storage

	// Connected is true when a persistent backend answered at startup.
	Connected bool

	// Backend is one of the Backend* constants.
	Backend string

	// SecretConfigured reports whether a database URI was supplied,
	// whether or not the connection succeeded.
	SecretConfigured bool
}

// Open tries the configured database and falls back to memory on failure.
// observer receives read-fallback events and may be nil.
func Open(ctx context.Context, cfg *config.Config, log *slog.Logger, observer storage.FallbackObserver) *Connection {
	conn := &Connection{SecretConfigured: cfg.SecretConfigured()}

	if !conn.SecretConfigured {
		log.Warn("MONGO_URI is not set, running on sample data")
		conn.useMemory(cfg)
		return conn
	}

	if cfg.Database.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Database.ConnectTimeout)
		defer cancel()
	}

	backend, primary, err := dial(ctx, cfg)
	if err != nil {
		log.Error("database connection failed, running on sample data",
			slog.String("error", err.Error()))
		conn.useMemory(cfg)
		return conn
	}

	log.Info("database connected",
		slog.String("backend", backend),
		slog.String("database", cfg.Database.Name),
		slog.String("collection", cfg.Database.Collection))

	conn.Connected = true
	conn.Backend = backend
	conn.Storage = primary
	if cfg.Database.ReadFallback {
		conn.Storage = storage.WithReadFallback(primary, memory.NewWithSamples(), observer)
	}

	return conn
}

// Close releases the active backend.
func (c *Connection) Close(ctx context.Context) error {
	return c.Storage.Close(ctx)
}

// Home page database modes.
const (
	StatusConnected  = "Connected via GitHub/Jenkins Secrets"
	StatusSampleData = "Using Sample Data (No MongoDB Secret)"
)

// DatabaseStatus is the human-readable mode shown on the home page.
func (c *Connection) DatabaseStatus() string {
	if c.Connected {
		return StatusConnected
	}
	return StatusSampleData
}

func (c *Connection) useMemory(cfg *config.Config) {
	c.Backend = BackendMemory
	if cfg.Database.SeedSamples {
		c.Storage = memory.NewWithSamples()
		return
	}
	c.Storage = memory.New(nil)
}

// dial opens the backend named by the URI scheme. The URI itself is never
// included in errors because it usually carries credentials.
func dial(ctx context.Context, cfg *config.Config) (string, storage.Storage, error) {
	uri := cfg.Database.URI

	switch {
	case strings.HasPrefix(uri, "mongodb://"), strings.HasPrefix(uri, "mongodb+srv://"):
		m, err := mongodb.Connect(ctx, uri, cfg.Database.Name, cfg.Database.Collection)
		return BackendMongoDB, m, err

	case strings.HasPrefix(uri, "sqlite://"):
		s, err := sqlite.New(ctx, strings.TrimPrefix(uri, "sqlite://"))
		return BackendSQLite, s, err

	case strings.HasPrefix(uri, "file:"):
		s, err := sqlite.New(ctx, uri)
		return BackendSQLite, s, err
	}

	scheme, _, _ := strings.Cut(uri, ":")
	return "", nil, fmt.Errorf("%w: %q", errUnsupportedScheme, scheme)
}
