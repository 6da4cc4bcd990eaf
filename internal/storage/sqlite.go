package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dshills/pdfindex/pkg/types"
)

// SQLiteStore implements Store on a single SQLite database file
type SQLiteStore struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// SQLite allows a single writer; one connection also keeps :memory: shared
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStore opens (or creates) the database at dbPath and migrates it
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		return nil, errors.New("database path is required")
	}

	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func (s *SQLiteStore) CreateCollection(ctx context.Context, name string) (Collection, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	// check first so the common case needs no driver-specific error parsing
	if _, err := s.lookup(ctx, s.db, name); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrCollectionExists, name)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx, "INSERT INTO collections (name) VALUES (?)", name)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %s", ErrCollectionExists, name)
		}
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &sqliteCollection{store: s, id: id, name: name}, nil
}

func (s *SQLiteStore) GetCollection(ctx context.Context, name string) (Collection, error) {
	return s.lookup(ctx, s.db, name)
}

func (s *SQLiteStore) lookup(ctx context.Context, q querier, name string) (*sqliteCollection, error) {
	c := &sqliteCollection{store: s, name: name}
	err := q.QueryRowContext(ctx, "SELECT id FROM collections WHERE name = ?", name).Scan(&c.id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get collection: %w", err)
	}
	return c, nil
}

func (s *SQLiteStore) DeleteCollection(ctx context.Context, name string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM collections WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return nil
}

func (s *SQLiteStore) ListCollections(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name FROM collections ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// sqliteCollection is a handle on one row of the collections table
type sqliteCollection struct {
	store *SQLiteStore
	id    int64
	name  string
}

func (c *sqliteCollection) Name() string {
	return c.name
}

// Add inserts every record inside one transaction; any failure rolls back
// the whole batch
func (c *sqliteCollection) Add(ctx context.Context, documents []string, metadatas []types.Metadata, embeddings [][]float32) (err error) {
	tx, err := c.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var current int
	err = tx.QueryRowContext(ctx, "SELECT dimension FROM collections WHERE id = ?", c.id).Scan(&current)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%w: %s", ErrNotFound, c.name)
	}
	if err != nil {
		return fmt.Errorf("failed to read collection: %w", err)
	}

	dim, err := validateRecords(documents, metadatas, embeddings, current)
	if err != nil {
		return err
	}
	if len(documents) == 0 {
		return tx.Commit()
	}

	if current == 0 {
		if _, err = tx.ExecContext(ctx, "UPDATE collections SET dimension = ? WHERE id = ?", dim, c.id); err != nil {
			return fmt.Errorf("failed to set dimension: %w", err)
		}
	}

	if err = insertRecords(ctx, tx, c.id, documents, metadatas, embeddings); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit records: %w", err)
	}
	return nil
}

func insertRecords(ctx context.Context, q querier, collectionID int64, documents []string, metadatas []types.Metadata, embeddings [][]float32) error {
	query := `
		INSERT INTO records (id, collection_id, document, pdf, page, embedding)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	ids := newRecordIDs(len(documents))
	for i := range documents {
		_, err := q.ExecContext(ctx, query,
			ids[i], collectionID, documents[i],
			metadatas[i].PDF, metadatas[i].Page, serializeVector(embeddings[i]))
		if err != nil {
			return fmt.Errorf("failed to insert record %d: %w", i, err)
		}
	}
	return nil
}

func (c *sqliteCollection) Count(ctx context.Context) (int, error) {
	var n int
	err := c.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM records WHERE collection_id = ?", c.id).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return n, nil
}

func (c *sqliteCollection) Records(ctx context.Context) ([]Record, error) {
	query := `
		SELECT id, document, pdf, page, embedding
		FROM records
		WHERE collection_id = ?
		ORDER BY seq
	`
	rows, err := c.store.db.QueryContext(ctx, query, c.id)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []Record
	for rows.Next() {
		var r Record
		var blob []byte
		if err := rows.Scan(&r.ID, &r.Document, &r.Metadata.PDF, &r.Metadata.Page, &blob); err != nil {
			return nil, err
		}
		if r.Embedding, err = deserializeVector(blob); err != nil {
			return nil, fmt.Errorf("record %s: %w", r.ID, err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// isUniqueViolation recognises a UNIQUE constraint failure from either driver
func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
