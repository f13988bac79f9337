package library

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/rxtnnn/harmony/internal/shared"
)

// Store is the library persistence layer over a SQLite database.
//
// The zero value is not usable; construct with [New]. All methods are safe
// for use before Init has run: the first call initializes the schema and
// later calls reuse the same outcome.
type Store struct {
	path     string
	musicDir string
	maxOpen  int
	maxIdle  int
	logger   *log.Logger

	initOnce sync.Once
	initErr  error
	db       *sql.DB
}

// New creates a Store for the database at cfg.Database.Path.
//
// musicDir is the root of the durable music namespace; relative paths in
// downloaded_music resolve against it when deleting stored files.
func New(cfg *shared.Config, musicDir string, logger *log.Logger) *Store {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &Store{
		path:     cfg.Database.Path,
		musicDir: musicDir,
		maxOpen:  cfg.Database.MaxOpenConns,
		maxIdle:  cfg.Database.MaxIdleConns,
		logger:   logger,
	}
}

// ensureInit opens the database and applies migrations exactly once.
// Concurrent first-callers block on the same sync.Once and observe the same
// result; a failed init is permanent for the life of the Store.
func (s *Store) ensureInit() error {
	s.initOnce.Do(func() {
		db, err := shared.NewDatabase(s.path, s.maxOpen, s.maxIdle)
		if err != nil {
			s.initErr = err
			return
		}

		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			s.initErr = fmt.Errorf("failed to enable foreign keys: %w", err)
			return
		}

		if err := shared.RunMigrations(db); err != nil {
			db.Close()
			s.initErr = fmt.Errorf("failed to run migrations: %w", err)
			return
		}

		s.db = db
	})

	return s.initErr
}

// Init forces initialization eagerly. Optional; every other method calls it
// implicitly.
func (s *Store) Init() error {
	return s.ensureInit()
}

// Close releases the underlying database handle if one was opened.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// now returns the timestamp format persisted in TEXT datetime columns.
func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// parseTime accepts both RFC3339 (written by Go) and SQLite's
// datetime('now') format (written by column defaults and triggers).
func parseTime(s string) time.Time {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t
	}
	return time.Time{}
}
