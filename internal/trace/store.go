package trace

import (
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

const currentSchemaVersion = 1

// Store is a durable, append-mostly record of a core.Engine's call log
// and memory-image checkpoints, backed by SQLite in WAL mode.
type Store struct {
	db  *sql.DB
	seq int64
}

// Open creates or opens a SQLite database at path, applying the
// required pragmas and schema. Passing ":memory:" opens a private,
// in-memory database useful for tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("trace: open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("trace: connect: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("trace: apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("trace: apply schema: %w", err)
	}

	seq, err := nextSeq(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("trace: read sequence: %w", err)
	}

	return &Store{db: db, seq: seq}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB for direct queries the higher-level
// Write/Read helpers don't cover.
func (s *Store) DB() *sql.DB {
	return s.db
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	return nil
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

// nextSeq seeds the store's monotonically increasing recorded_seq
// counter from whatever is already on disk, so reopening a trace
// database and continuing to record never reuses a sequence number.
func nextSeq(db *sql.DB) (int64, error) {
	var maxCall, maxSnapshot sql.NullInt64
	if err := db.QueryRow("SELECT MAX(recorded_seq) FROM calls").Scan(&maxCall); err != nil {
		return 0, err
	}
	if err := db.QueryRow("SELECT MAX(recorded_seq) FROM snapshots").Scan(&maxSnapshot); err != nil {
		return 0, err
	}
	seq := maxCall.Int64
	if maxSnapshot.Int64 > seq {
		seq = maxSnapshot.Int64
	}
	return seq, nil
}
