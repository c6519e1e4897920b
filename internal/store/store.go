package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/schema/field"

	"github.com/abhisek/revise/ent/schema"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// masteryTable is the table backing schema.OutcomeMastery.
const masteryTable = "outcome_mastery"

// Store is a SQLite-backed mastery record store.
type Store struct {
	db  *sql.DB
	drv *entsql.Driver
}

// Open creates a new Store connected to the SQLite database at dsn.
// It applies recommended pragmas and creates the schema if needed.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	drv := entsql.OpenDB(dialect.SQLite, db)
	s := &Store{db: db, drv: drv}
	if err := s.migrate(context.Background()); err != nil {
		drv.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}
	return s, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.drv.Close()
}

// migrate creates the mastery table from the ent schema descriptors.
func (s *Store) migrate(ctx context.Context) error {
	query, args := createTableQuery()
	if err := s.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("create %s: %w", masteryTable, err)
	}
	return nil
}

func createTableQuery() (string, []any) {
	def := schema.OutcomeMastery{}
	tb := entsql.Dialect(dialect.SQLite).CreateTable(masteryTable).IfNotExists()
	for _, f := range def.Fields() {
		desc := f.Descriptor()
		col := entsql.Column(desc.Name).Type(sqliteType(desc.Info.Type))
		if !desc.Optional {
			col.Attr("NOT NULL")
		}
		tb.Columns(col)
	}
	for _, idx := range def.Indexes() {
		if desc := idx.Descriptor(); desc.Unique {
			tb.PrimaryKey(desc.Fields...)
		}
	}
	return tb.Query()
}

func sqliteType(t field.Type) string {
	switch t {
	case field.TypeFloat64, field.TypeFloat32:
		return "REAL"
	case field.TypeInt, field.TypeInt64, field.TypeInt32, field.TypeBool:
		return "INTEGER"
	default:
		return "TEXT"
	}
}

// applyPragmas configures SQLite for optimal single-user performance.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. REVISE_DB environment variable
// 2. $XDG_DATA_HOME/revise/revise.db
// 3. ~/.local/share/revise/revise.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("REVISE_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "revise", "revise.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
