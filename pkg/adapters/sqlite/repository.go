// Package sqlite stores graph documents in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/pixelpilot/pkg/ports"
	"github.com/aretw0/pixelpilot/pkg/schema"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

const currentSchemaVersion = 1

// Summary describes a stored graph without decoding it.
type Summary struct {
	Name      string
	Nodes     int
	Links     int
	Rules     int
	UpdatedAt time.Time
}

// Repository implements ports.GraphRepository on SQLite.
// Documents are stored as JSON alongside a few counters for listing.
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

// Open creates or opens a SQLite database at the given path.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode
//   - 5-second busy timeout for lock contention
func Open(path string) (*Repository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Repository{db: db, now: time.Now}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

// Save inserts or replaces a document. The creation time of an existing entry
// is preserved.
func (r *Repository) Save(ctx context.Context, name string, doc *schema.Document) error {
	if name == "" {
		return fmt.Errorf("graph name is required")
	}
	data, err := schema.Encode(doc, schema.FormatJSON)
	if err != nil {
		return fmt.Errorf("failed to encode graph %s: %w", name, err)
	}
	now := r.now().UnixMilli()
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO graphs (name, document, node_count, link_count, rule_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			document = excluded.document,
			node_count = excluded.node_count,
			link_count = excluded.link_count,
			rule_count = excluded.rule_count,
			updated_at = excluded.updated_at`,
		name, data, len(doc.Nodes), len(doc.Links), len(doc.Rules), now, now)
	if err != nil {
		return fmt.Errorf("failed to save graph %s: %w", name, err)
	}
	return nil
}

// Load retrieves a document by name.
func (r *Repository) Load(ctx context.Context, name string) (*schema.Document, error) {
	var data []byte
	err := r.db.QueryRowContext(ctx, `SELECT document FROM graphs WHERE name = ?`, name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ports.ErrGraphNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load graph %s: %w", name, err)
	}
	return schema.Decode(data)
}

// List returns the stored names in sorted order.
func (r *Repository) List(ctx context.Context) ([]string, error) {
	sums, err := r.Summaries(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(sums))
	for i, s := range sums {
		names[i] = s.Name
	}
	return names, nil
}

// Summaries lists every stored graph with its counters, ordered by name.
func (r *Repository) Summaries(ctx context.Context) ([]Summary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT name, node_count, link_count, rule_count, updated_at
		FROM graphs ORDER BY name COLLATE BINARY`)
	if err != nil {
		return nil, fmt.Errorf("failed to list graphs: %w", err)
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var s Summary
		var updated int64
		if err := rows.Scan(&s.Name, &s.Nodes, &s.Links, &s.Rules, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan graph row: %w", err)
		}
		s.UpdatedAt = time.UnixMilli(updated)
		out = append(out, s)
	}
	return out, rows.Err()
}

// Delete removes a document. Missing names are not an error.
func (r *Repository) Delete(ctx context.Context, name string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM graphs WHERE name = ?`, name); err != nil {
		return fmt.Errorf("failed to delete graph %s: %w", name, err)
	}
	return nil
}
