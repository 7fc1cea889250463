package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/five82/jotter/internal/item"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Initial schema
// 1 - Added index on items(created_at, seq) for newest-first listing
const currentSchemaVersion = 1

// SQLite stores items in a single SQLite table.
// WAL mode keeps reads available while a write is in progress.
type SQLite struct {
	db   *sql.DB
	opts options
}

// Open creates or opens a SQLite database at the given path.
// Applies required pragmas and migrations automatically.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode
//   - 5-second busy timeout for lock contention
//
// This function is idempotent - safe to call multiple times.
func Open(path string, opts ...Option) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	// SQLite allows one writer; a single connection also serializes
	// read-modify-write on the same id.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLite{db: db, opts: applyOptions(opts)}, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Insert stores a new item, assigning its id and timestamps.
func (s *SQLite) Insert(ctx context.Context, in item.Input) (item.Item, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return item.Item{}, fmt.Errorf("insert item: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	id, err := s.allocateID(ctx, tx)
	if err != nil {
		return item.Item{}, fmt.Errorf("insert item: %w", err)
	}

	now := s.opts.now().UTC()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO items (id, title, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, id, in.Title, in.Description, now.UnixNano(), now.UnixNano())
	if err != nil {
		return item.Item{}, fmt.Errorf("insert item: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return item.Item{}, fmt.Errorf("insert item: commit: %w", err)
	}

	return item.Item{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Find returns the item with the given id.
func (s *SQLite) Find(ctx context.Context, id string) (item.Item, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, created_at, updated_at
		FROM items WHERE id = ?
	`, id)
	it, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return item.Item{}, &item.NotFoundError{ID: id}
	}
	if err != nil {
		return item.Item{}, fmt.Errorf("find item: %w", err)
	}
	return it, nil
}

// FindAll returns every item, newest first. Items created at the same
// instant are ordered by insertion, newest first.
func (s *SQLite) FindAll(ctx context.Context) ([]item.Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, created_at, updated_at
		FROM items
		ORDER BY created_at DESC, seq DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	items := []item.Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("list items: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

// Update applies the present patch fields and refreshes updatedAt.
func (s *SQLite) Update(ctx context.Context, id string, patch item.Patch) (item.Item, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return item.Item{}, fmt.Errorf("update item: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	row := tx.QueryRowContext(ctx, `
		SELECT id, title, description, created_at, updated_at
		FROM items WHERE id = ?
	`, id)
	current, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return item.Item{}, &item.NotFoundError{ID: id}
	}
	if err != nil {
		return item.Item{}, fmt.Errorf("update item: %w", err)
	}

	next := patch.Apply(current)
	next.UpdatedAt = nextUpdatedAt(s.opts.now().UTC(), current.UpdatedAt)

	_, err = tx.ExecContext(ctx, `
		UPDATE items SET title = ?, description = ?, updated_at = ?
		WHERE id = ?
	`, next.Title, next.Description, next.UpdatedAt.UnixNano(), id)
	if err != nil {
		return item.Item{}, fmt.Errorf("update item: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return item.Item{}, fmt.Errorf("update item: commit: %w", err)
	}
	return next, nil
}

// Delete removes the item and retires its id.
func (s *SQLite) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete item: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	result, err := tx.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete item: rows affected: %w", err)
	}
	if n == 0 {
		return &item.NotFoundError{ID: id}
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO retired_ids (id) VALUES (?) ON CONFLICT(id) DO NOTHING
	`, id); err != nil {
		return fmt.Errorf("delete item: retire id: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete item: commit: %w", err)
	}
	return nil
}

// allocateID draws ids until one has never been issued.
func (s *SQLite) allocateID(ctx context.Context, tx *sql.Tx) (string, error) {
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id := s.opts.newID()
		var taken bool
		err := tx.QueryRowContext(ctx, `
			SELECT EXISTS(SELECT 1 FROM items WHERE id = ?)
			    OR EXISTS(SELECT 1 FROM retired_ids WHERE id = ?)
		`, id, id).Scan(&taken)
		if err != nil {
			return "", fmt.Errorf("check id: %w", err)
		}
		if id != "" && !taken {
			return id, nil
		}
	}
	return "", ErrIDExhausted
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (item.Item, error) {
	var (
		it               item.Item
		created, updated int64
	)
	if err := row.Scan(&it.ID, &it.Title, &it.Description, &created, &updated); err != nil {
		return item.Item{}, err
	}
	it.CreatedAt = time.Unix(0, created).UTC()
	it.UpdatedAt = time.Unix(0, updated).UTC()
	return it, nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	return nil
}

// applySchema creates tables if they don't exist and runs migrations.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	if err := runMigrations(db); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// runMigrations applies incremental schema migrations based on user_version.
func runMigrations(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version < 1 {
		if _, err := db.Exec(`
			CREATE INDEX IF NOT EXISTS idx_items_created
			ON items(created_at DESC, seq DESC)
		`); err != nil {
			return fmt.Errorf("migrate to v1: %w", err)
		}
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}
