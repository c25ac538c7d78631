package store

import (
	"context"
	"database/sql"
	"embed"
	stderrors "errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ncharlet/bibliart/internal/errors"
	"github.com/ncharlet/bibliart/internal/logger"
	"github.com/ncharlet/bibliart/internal/models"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type state int

const (
	stateUninitialized state = iota
	stateInitializing
	stateReady
)

// Store is the durable persistence boundary for the artist collection. The
// collection is one logical document; LoadAll and ReplaceAll move it in and
// out as a unit.
type Store struct {
	mu      sync.Mutex // guards state and lastLoadErr
	writeMu sync.Mutex // serializes ReplaceAll; it is never reentrant
	state   state

	db         *sql.DB
	dsn        string
	legacyPath string
	quotaBytes int64
	nextID     atomic.Int64

	lastLoadErr error
	log         *logger.Logger
}

// New creates an uninitialized Store. quotaBytes zero disables the local
// quota check (the platform limit still applies).
func New(dbPath, legacyPath string, quotaBytes int64) *Store {
	return &Store{
		dsn:        dbPath,
		legacyPath: legacyPath,
		quotaBytes: quotaBytes,
		log:        logger.Default().WithPrefix("store"),
	}
}

// Initialize opens or creates the durable backend and applies migrations.
// Idempotent: a Ready store stays Ready.
func (s *Store) Initialize(ctx context.Context) error {
	s.mu.Lock()
	if s.state == stateReady {
		s.mu.Unlock()
		return nil
	}
	s.state = stateInitializing
	s.mu.Unlock()

	dsn := fmt.Sprintf("%s?_busy_timeout=5000&_foreign_keys=on&_journal_mode=WAL&_synchronous=NORMAL", s.dsn)
	s.log.Info("opening database: %s", s.dsn)

	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		s.fail()
		return errors.NewStoreUnavailableError(err)
	}
	sqlDB.SetMaxOpenConns(1) // SQLite best practice for single writer

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		s.fail()
		return errors.NewStoreUnavailableError(err)
	}

	s.log.Debug("applying migrations")
	if err := applyMigrations(ctx, sqlDB, s.log); err != nil {
		_ = sqlDB.Close()
		s.fail()
		return errors.NewStoreUnavailableError(err)
	}

	s.db = sqlDB
	if err := s.seedCounter(ctx); err != nil {
		_ = sqlDB.Close()
		s.db = nil
		s.fail()
		return errors.NewStoreUnavailableError(err)
	}

	s.mu.Lock()
	s.state = stateReady
	s.mu.Unlock()
	s.log.Info("store ready")
	return nil
}

func (s *Store) fail() {
	s.mu.Lock()
	s.state = stateUninitialized
	s.mu.Unlock()
}

// Close releases the backend connection. The store returns to
// Uninitialized and may be re-initialized.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = stateUninitialized
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *Store) ready(op string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != stateReady {
		return errors.NewNotInitializedError(op)
	}
	return nil
}

// NextID mints a fresh identifier. The store owns the single authoritative
// counter; nothing else in the system generates ids.
func (s *Store) NextID() models.ID {
	return models.ID(s.nextID.Add(1))
}

func (s *Store) seedCounter(ctx context.Context) error {
	var max sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
SELECT MAX(n) FROM (
    SELECT MAX(id) AS n FROM artists
    UNION ALL
    SELECT MAX(id) AS n FROM artworks
)`).Scan(&max)
	if err != nil {
		return fmt.Errorf("seed id counter: %w", err)
	}
	if max.Valid {
		s.nextID.Store(max.Int64)
	} else {
		s.nextID.Store(0)
	}
	return nil
}

// LastLoadError returns the condition reported by the most recent LoadAll,
// or nil when it read cleanly.
func (s *Store) LastLoadError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastLoadErr
}

func (s *Store) setLoadErr(err error) {
	s.mu.Lock()
	s.lastLoadErr = err
	s.mu.Unlock()
}

// Usage reports the backend file size against the configured quota. A
// memory-backed or unstattable database yields an error and the quota
// monitor stays inert.
func (s *Store) Usage() (models.QuotaUsage, error) {
	path := filesystemPath(s.dsn)
	if path == "" {
		return models.QuotaUsage{}, fmt.Errorf("no backing file for %q", s.dsn)
	}
	info, err := os.Stat(path)
	if err != nil {
		return models.QuotaUsage{}, err
	}
	used := info.Size()
	if wal, err := os.Stat(path + "-wal"); err == nil {
		used += wal.Size()
	}
	return models.QuotaUsage{UsedBytes: used, QuotaBytes: s.quotaBytes}, nil
}

func filesystemPath(dsn string) string {
	p := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(p, '?'); i >= 0 {
		p = p[:i]
	}
	if p == ":memory:" || p == "" || strings.Contains(dsn, "mode=memory") {
		return ""
	}
	return p
}

func applyMigrations(ctx context.Context, db *sql.DB, log *logger.Logger) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY, applied_at DATETIME DEFAULT CURRENT_TIMESTAMP)`); err != nil {
		return err
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return err
	}

	for _, entry := range entries {
		version := entry.Name()
		var v string
		err := db.QueryRowContext(ctx, `SELECT version FROM schema_migrations WHERE version = ?`, version).Scan(&v)
		if err == nil {
			log.Debug("migration %s already applied, skipping", version)
			continue
		}
		if !stderrors.Is(err, sql.ErrNoRows) {
			return err
		}
		sqlBytes, err := migrationsFS.ReadFile("migrations/" + version)
		if err != nil {
			return err
		}
		log.Info("applying migration: %s", version)
		if _, err := db.ExecContext(ctx, string(sqlBytes)); err != nil {
			return fmt.Errorf("apply migration %s: %w", version, err)
		}
		if _, err := db.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES (?)`, version); err != nil {
			return err
		}
	}
	return nil
}
