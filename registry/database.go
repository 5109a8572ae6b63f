package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/nohros/nohrosruby/protocol"
)

const (
	// DefaultFileName is the registry file inside the data directory.
	DefaultFileName = "services.db"

	// MemoryPath opens a transient registry.
	MemoryPath = ":memory:"

	// schemaVersion is written by this build. A store whose
	// last_compatible_version is newer cannot be read and is recreated.
	schemaVersion         = 2
	lastCompatibleVersion = 2
)

// Common errors for registry operations
var (
	ErrNoFacts  = errors.New("service must have at least one fact")
	ErrNotFound = errors.New("service not found")
)

const schema = `
CREATE TABLE IF NOT EXISTS meta (
	key TEXT NOT NULL PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS services (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	working_dir TEXT NOT NULL DEFAULT '',
	language_runtime_type INTEGER NOT NULL DEFAULT 0,
	arguments TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS facts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	service_id INTEGER NOT NULL REFERENCES services(id),
	hash_code INTEGER NOT NULL,
	key TEXT NOT NULL,
	value TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_facts_hash_code ON facts(hash_code);
CREATE INDEX IF NOT EXISTS idx_facts_service_id ON facts(service_id);
`

// Database is the SQLite-backed service registry. It is safe for concurrent
// use.
type Database struct {
	db     *sql.DB
	path   string
	logger *zap.Logger
}

// Open opens or creates the registry at path. An existing file that has no
// version information, or whose format is newer than this build understands,
// is treated as corrupt: it is deleted and recreated empty.
func Open(path string, logger *zap.Logger) (*Database, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("registry")
	if path == "" {
		path = MemoryPath
	}

	if path != MemoryPath {
		if _, err := os.Stat(path); err == nil && !isCompatible(path) {
			logger.Warn("discarding incompatible services database", zap.String("path", path))
			if err := removeFile(path); err != nil {
				return nil, fmt.Errorf("failed to discard corrupt registry: %w", err)
			}
		}
	}

	db, err := openSQLite(path)
	if err != nil {
		return nil, err
	}

	d := &Database{db: db, path: path, logger: logger}
	if err := d.initialize(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Info("services database opened", zap.String("path", path))
	return d, nil
}

func openSQLite(path string) (*sql.DB, error) {
	dsn := path
	if path != MemoryPath {
		dsn = "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open registry %s: %w", path, err)
	}
	// One connection keeps :memory: databases shared and serializes writers.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to open registry %s: %w", path, err)
	}
	return db, nil
}

// isCompatible reports whether an existing store carries a readable version.
func isCompatible(path string) bool {
	db, err := openSQLite(path)
	if err != nil {
		return false
	}
	defer db.Close()

	var value string
	err = db.QueryRow(`SELECT value FROM meta WHERE key = 'last_compatible_version'`).Scan(&value)
	if err != nil {
		return false
	}
	var version int
	if _, err := fmt.Sscanf(value, "%d", &version); err != nil {
		return false
	}
	return version <= schemaVersion
}

// removeFile deletes the store and its WAL side files. The delete is
// attempted twice because a just-closed handle may still hold the file.
func removeFile(path string) error {
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		err = os.Remove(path)
		if err == nil || errors.Is(err, os.ErrNotExist) {
			_ = os.Remove(path + "-wal")
			_ = os.Remove(path + "-shm")
			return nil
		}
		time.Sleep(50 * time.Millisecond)
	}
	return err
}

func (d *Database) initialize(ctx context.Context) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	for key, value := range map[string]int{
		"version":                 schemaVersion,
		"last_compatible_version": lastCompatibleVersion,
	} {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO meta(key, value) VALUES(?, ?)`, key, fmt.Sprint(value)); err != nil {
			return fmt.Errorf("failed to write schema version: %w", err)
		}
	}
	return tx.Commit()
}

// Path returns the store location.
func (d *Database) Path() string {
	return d.path
}

// Add registers a service described by facts. Duplicate facts are stored
// once. The service row and its index rows are written in one transaction.
func (d *Database) Add(ctx context.Context, facts protocol.FactSet, metadata *ServiceMetadata) (*ServiceMetadata, error) {
	facts = facts.Distinct()
	if len(facts) == 0 {
		return nil, ErrNoFacts
	}
	if metadata == nil {
		return nil, errors.New("metadata is required")
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO services(name, working_dir, language_runtime_type, arguments) VALUES(?, ?, ?, ?)`,
		metadata.name, metadata.workingDir, int32(metadata.runtime), metadata.arguments)
	if err != nil {
		return nil, fmt.Errorf("failed to insert service: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read service id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO facts(service_id, hash_code, key, value) VALUES(?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare fact insert: %w", err)
	}
	defer stmt.Close()

	for _, f := range facts {
		if _, err := stmt.ExecContext(ctx, id, FactHash(f), f.Key, f.Value); err != nil {
			return nil, fmt.Errorf("failed to insert fact %s: %w", f, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit service: %w", err)
	}

	registered := metadata.withID(id, facts)
	d.logger.Debug("service registered",
		zap.Int64("service_id", id),
		zap.String("name", metadata.name),
		zap.Stringer("facts", facts))
	return registered, nil
}

// GetServicesMetadata returns every service whose fact set contains all of
// facts. No match, or an empty query, yields an empty slice and a nil error.
func (d *Database) GetServicesMetadata(ctx context.Context, facts protocol.FactSet) ([]*ServiceMetadata, error) {
	facts = facts.Distinct()
	if len(facts) == 0 {
		return []*ServiceMetadata{}, nil
	}

	// Candidates come from the first fact; the remaining hashes narrow them
	// down. Stored key/value pairs are compared afterwards so that hash
	// collisions never produce a false match.
	hashes := make(map[int32]struct{}, len(facts))
	args := []any{FactHash(facts[0])}
	for _, f := range facts {
		h := FactHash(f)
		if _, ok := hashes[h]; ok {
			continue
		}
		hashes[h] = struct{}{}
		args = append(args, h)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(hashes)), ",")
	args = append(args, len(hashes))

	query := `
SELECT s.id, s.name, s.working_dir, s.language_runtime_type, s.arguments
FROM services s
WHERE s.id IN (SELECT service_id FROM facts WHERE hash_code = ?)
  AND (SELECT COUNT(DISTINCT f.hash_code) FROM facts f
       WHERE f.service_id = s.id AND f.hash_code IN (` + placeholders + `)) = ?
ORDER BY s.id`

	candidates, err := d.queryServices(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	matches := make([]*ServiceMetadata, 0, len(candidates))
	for _, m := range candidates {
		if m.facts.ContainsAll(facts) {
			matches = append(matches, m)
		}
	}
	return matches, nil
}

// Exists reports whether any service matches facts.
func (d *Database) Exists(ctx context.Context, facts protocol.FactSet) (bool, error) {
	matches, err := d.GetServicesMetadata(ctx, facts)
	if err != nil {
		return false, err
	}
	return len(matches) > 0, nil
}

// Get returns the service with the given id.
func (d *Database) Get(ctx context.Context, id int64) (*ServiceMetadata, error) {
	services, err := d.queryServices(ctx,
		`SELECT id, name, working_dir, language_runtime_type, arguments FROM services WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(services) == 0 {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return services[0], nil
}

// List returns every registered service ordered by id.
func (d *Database) List(ctx context.Context) ([]*ServiceMetadata, error) {
	return d.queryServices(ctx,
		`SELECT id, name, working_dir, language_runtime_type, arguments FROM services ORDER BY id`)
}

// Remove deletes a service and its index rows.
func (d *Database) Remove(ctx context.Context, id int64) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM facts WHERE service_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete facts: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM services WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete service: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit removal: %w", err)
	}

	d.logger.Debug("service removed", zap.Int64("service_id", id))
	return nil
}

// Close releases the store.
func (d *Database) Close() error {
	return d.db.Close()
}

// queryServices runs a services query and attaches each row's facts. Rows
// are fully read before facts are loaded because the pool holds a single
// connection.
func (d *Database) queryServices(ctx context.Context, query string, args ...any) ([]*ServiceMetadata, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query services: %w", err)
	}

	var services []*ServiceMetadata
	for rows.Next() {
		m := &ServiceMetadata{}
		var runtime int32
		if err := rows.Scan(&m.id, &m.name, &m.workingDir, &runtime, &m.arguments); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan service: %w", err)
		}
		m.runtime = LanguageRuntimeType(runtime)
		services = append(services, m)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read services: %w", err)
	}

	for _, m := range services {
		facts, err := d.loadFacts(ctx, m.id)
		if err != nil {
			return nil, err
		}
		m.facts = facts
	}
	if services == nil {
		services = []*ServiceMetadata{}
	}
	return services, nil
}

func (d *Database) loadFacts(ctx context.Context, id int64) (protocol.FactSet, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT key, value FROM facts WHERE service_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query facts: %w", err)
	}
	defer rows.Close()

	var facts protocol.FactSet
	for rows.Next() {
		var f protocol.Fact
		if err := rows.Scan(&f.Key, &f.Value); err != nil {
			return nil, fmt.Errorf("failed to scan fact: %w", err)
		}
		facts = append(facts, f)
	}
	return facts, rows.Err()
}
