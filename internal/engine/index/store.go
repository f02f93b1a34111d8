// Package index records checked class declarations in SQLite so that a run
// can answer which classes exist and which parents were never declared.
package index

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"inspector/internal/engine/parser"
	"inspector/internal/engine/resolver"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const sqliteDriverName = "sqlite"

type ClassRecord struct {
	RunID      string
	FQN        string
	File       string
	Line       int
	Parent     string
	Interfaces []string
}

// Store is a resolver.ClassChecker that indexes every class it is shown.
// Rows are scoped to the run id the store was opened with.
type Store struct {
	db         *sql.DB
	runID      string
	upsertStmt *sql.Stmt
}

var _ resolver.ClassChecker = (*Store)(nil)

// Open creates or opens the index at path. An empty runID gets a fresh one.
func Open(path string, busyTimeout time.Duration, runID string) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("class index path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("class index path %q is a directory, expected file", cleanPath)
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create class index directory %q: %w", dir, err)
		}
	}

	if busyTimeout <= 0 {
		busyTimeout = 5 * time.Second
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)", cleanPath, busyTimeout.Milliseconds())
	db, err := sql.Open(sqliteDriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open class index %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping class index %q: %w", cleanPath, err)
	}
	if err := migrateClassSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	upsertStmt, err := db.Prepare(`INSERT INTO classes (run_id, fqn, file_path, line_number, parent_fqn, interfaces)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(run_id, fqn, file_path) DO UPDATE SET
  line_number = excluded.line_number,
  parent_fqn = excluded.parent_fqn,
  interfaces = excluded.interfaces`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("prepare class upsert stmt: %w", err)
	}

	if strings.TrimSpace(runID) == "" {
		runID = uuid.NewString()
	}
	return &Store{db: db, runID: runID, upsertStmt: upsertStmt}, nil
}

func (s *Store) RunID() string { return s.runID }

// CheckClass records class under its fully-qualified name, resolving the
// parent and interfaces through the file's aliases and namespace.
func (s *Store) CheckClass(ctx context.Context, class *parser.ClassDecl, namespace string, aliases resolver.AliasTable, file string) error {
	fqn := class.Name
	if namespace != "" {
		fqn = namespace + parser.NamespaceSeparator + class.Name
	}

	parent := ""
	if class.Extends != "" {
		parent = resolver.ResolveName(class.Extends, namespace, aliases)
	}
	interfaces := make([]string, 0, len(class.Implements))
	for _, iface := range class.Implements {
		interfaces = append(interfaces, resolver.ResolveName(iface, namespace, aliases))
	}
	encoded, err := json.Marshal(interfaces)
	if err != nil {
		return fmt.Errorf("encode interfaces of %s: %w", fqn, err)
	}

	if _, err := s.upsertStmt.ExecContext(ctx, s.runID, fqn, file, class.Line, parent, string(encoded)); err != nil {
		return fmt.Errorf("index class %s: %w", fqn, err)
	}
	return nil
}

// Lookup returns every declaration of fqn seen in this run.
func (s *Store) Lookup(ctx context.Context, fqn string) ([]ClassRecord, error) {
	return s.query(ctx, `SELECT run_id, fqn, file_path, line_number, parent_fqn, interfaces
FROM classes WHERE run_id = ? AND fqn = ? ORDER BY file_path`, s.runID, fqn)
}

func (s *Store) Classes(ctx context.Context) ([]ClassRecord, error) {
	return s.query(ctx, `SELECT run_id, fqn, file_path, line_number, parent_fqn, interfaces
FROM classes WHERE run_id = ? ORDER BY fqn, file_path`, s.runID)
}

// UnknownParents returns classes whose parent was not declared by any file
// checked in this run.
func (s *Store) UnknownParents(ctx context.Context) ([]ClassRecord, error) {
	return s.query(ctx, `SELECT c.run_id, c.fqn, c.file_path, c.line_number, c.parent_fqn, c.interfaces
FROM classes c
WHERE c.run_id = ? AND c.parent_fqn != ''
  AND NOT EXISTS (SELECT 1 FROM classes p WHERE p.run_id = c.run_id AND p.fqn = c.parent_fqn)
ORDER BY c.fqn, c.file_path`, s.runID)
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM classes WHERE run_id = ?`, s.runID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count classes: %w", err)
	}
	return n, nil
}

// PruneRuns deletes rows written by other runs.
func (s *Store) PruneRuns(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM classes WHERE run_id != ?`, s.runID)
	if err != nil {
		return 0, fmt.Errorf("prune class index runs: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	_ = s.upsertStmt.Close()
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *Store) query(ctx context.Context, q string, args ...interface{}) ([]ClassRecord, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query class index: %w", err)
	}
	defer rows.Close()

	var out []ClassRecord
	for rows.Next() {
		var rec ClassRecord
		var interfaces string
		if err := rows.Scan(&rec.RunID, &rec.FQN, &rec.File, &rec.Line, &rec.Parent, &interfaces); err != nil {
			return nil, fmt.Errorf("scan class record: %w", err)
		}
		if err := json.Unmarshal([]byte(interfaces), &rec.Interfaces); err != nil {
			return nil, fmt.Errorf("decode interfaces of %s: %w", rec.FQN, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
