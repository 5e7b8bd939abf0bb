// Package database persists uploaded documents in SQLite.
package database

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"pdf-workbench/internal/logging"
	"pdf-workbench/internal/metrics"
)

// Default timeout for database operations
const defaultTimeout = 5 * time.Second

// ErrNotFound is returned when a document id does not exist.
var ErrNotFound = errors.New("document not found")

// Database manages all persistence for pdf-workbench.
type Database struct {
	db     *sql.DB
	dbPath string
}

// New opens (or creates) the database at dbPath. The parent directory must
// already exist and be writable; use startup.LoadConfig for that.
func New(ctx context.Context, dbPath string) (*Database, error) {
	logging.Info("Database path: %s", dbPath)

	// WAL keeps readers unblocked during uploads; busy_timeout avoids
	// "database is locked" under concurrent handlers.
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	d := &Database{db: db, dbPath: dbPath}

	if err := d.initialize(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after initialization failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}

	logging.Info("Database initialized successfully at %s", dbPath)
	return d, nil
}

func (d *Database) initialize(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		size INTEGER NOT NULL DEFAULT 0,
		data BLOB NOT NULL,
		page_count INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'loading',
		error TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
	);

	CREATE INDEX IF NOT EXISTS idx_documents_status ON documents(status);
	CREATE INDEX IF NOT EXISTS idx_documents_created_at ON documents(created_at);
	`

	initCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := d.db.ExecContext(initCtx, schema)
	return err
}

// Close closes the underlying connection pool.
func (d *Database) Close() error {
	return d.db.Close()
}

// newDocumentID returns a random 128-bit hex identifier.
func newDocumentID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate document id: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// observe records query metrics the way every accessor below does.
func observe(op string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.DBQueryTotal.WithLabelValues(op, status).Inc()
	metrics.DBQueryDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// InsertDocument stores a new upload in loading state and returns its id.
// The data slice is copied by the driver before the call returns.
func (d *Database) InsertDocument(ctx context.Context, name string, data []byte) (string, error) {
	start := time.Now()

	id, err := newDocumentID()
	if err != nil {
		return "", err
	}

	opCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = d.db.ExecContext(opCtx,
		`INSERT INTO documents (id, name, size, data, status) VALUES (?, ?, ?, ?, ?)`,
		id, name, int64(len(data)), data, StatusLoading)
	observe("insert_document", start, err)
	if err != nil {
		return "", fmt.Errorf("failed to insert document %q: %w", name, err)
	}

	d.updateStoredGauge(ctx)
	return id, nil
}

// MarkDocumentReady records the resolved page count and flips the document
// to ready.
func (d *Database) MarkDocumentReady(ctx context.Context, id string, pageCount int) error {
	start := time.Now()

	opCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := d.db.ExecContext(opCtx,
		`UPDATE documents SET page_count = ?, status = ?, error = '' WHERE id = ?`,
		pageCount, StatusReady, id)
	observe("mark_ready", start, err)
	if err != nil {
		return fmt.Errorf("failed to mark document %s ready: %w", id, err)
	}
	return requireRow(res, id)
}

// MarkDocumentError records a processing failure for the document.
func (d *Database) MarkDocumentError(ctx context.Context, id, message string) error {
	start := time.Now()

	opCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := d.db.ExecContext(opCtx,
		`UPDATE documents SET status = ?, error = ? WHERE id = ?`,
		StatusError, message, id)
	observe("mark_error", start, err)
	if err != nil {
		return fmt.Errorf("failed to mark document %s errored: %w", id, err)
	}
	return requireRow(res, id)
}

// GetDocument returns one document including its content bytes.
func (d *Database) GetDocument(ctx context.Context, id string) (*Document, error) {
	start := time.Now()

	opCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc Document
	var createdAt int64
	err := d.db.QueryRowContext(opCtx,
		`SELECT id, name, size, data, page_count, status, error, created_at
		 FROM documents WHERE id = ?`, id).
		Scan(&doc.ID, &doc.Name, &doc.Size, &doc.Data, &doc.PageCount, &doc.Status, &doc.Error, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		observe("get_document", start, nil)
		return nil, ErrNotFound
	}
	observe("get_document", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to load document %s: %w", id, err)
	}

	doc.CreatedAt = time.Unix(createdAt, 0)
	return &doc, nil
}

// ListDocuments returns all documents, newest first, without content bytes.
func (d *Database) ListDocuments(ctx context.Context) ([]Document, error) {
	start := time.Now()

	opCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(opCtx,
		`SELECT id, name, size, page_count, status, error, created_at
		 FROM documents ORDER BY created_at DESC, id`)
	observe("list_documents", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logging.Warn("failed to close document rows: %v", err)
		}
	}()

	var docs []Document
	for rows.Next() {
		var doc Document
		var createdAt int64
		if err := rows.Scan(&doc.ID, &doc.Name, &doc.Size, &doc.PageCount, &doc.Status, &doc.Error, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan document row: %w", err)
		}
		doc.CreatedAt = time.Unix(createdAt, 0)
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed while iterating documents: %w", err)
	}
	return docs, nil
}

// DeleteDocument removes a document.
func (d *Database) DeleteDocument(ctx context.Context, id string) error {
	start := time.Now()

	opCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := d.db.ExecContext(opCtx, `DELETE FROM documents WHERE id = ?`, id)
	observe("delete_document", start, err)
	if err != nil {
		return fmt.Errorf("failed to delete document %s: %w", id, err)
	}
	if err := requireRow(res, id); err != nil {
		return err
	}

	d.updateStoredGauge(ctx)
	return nil
}

// CountDocuments returns the number of stored documents.
func (d *Database) CountDocuments(ctx context.Context) (int, error) {
	start := time.Now()

	opCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var count int
	err := d.db.QueryRowContext(opCtx, `SELECT COUNT(*) FROM documents`).Scan(&count)
	observe("count_documents", start, err)
	if err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return count, nil
}

func (d *Database) updateStoredGauge(ctx context.Context) {
	if count, err := d.CountDocuments(ctx); err == nil {
		metrics.DocumentsStored.Set(float64(count))
	}
}

func requireRow(res sql.Result, id string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows for %s: %w", id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
