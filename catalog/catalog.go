// Package catalog persists a record of every archive this tool
// produces, so the digest can be looked up later when the archive is
// extracted or re-verified.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("no catalog record for archive")

type Record struct {
	ID          int64
	ArchivePath string
	Format      string
	Digest      string
	SizeBytes   int64
	CreatedAt   time.Time
}

type Catalog struct {
	db *sql.DB
}

func Open(ctx context.Context, dbPath string) (*Catalog, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening catalog %s: %w", dbPath, err)
	}
	c := &Catalog{db: db}
	if err := c.createTables(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing catalog %s: %w", dbPath, err)
	}
	return c, nil
}

func (c *Catalog) createTables(ctx context.Context) error {
	_, err := c.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS archives (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    archive_path TEXT NOT NULL,
    format TEXT NOT NULL,
    digest TEXT NOT NULL,
    size_bytes INTEGER NOT NULL,
    created_at TEXT NOT NULL
);
`)
	return err
}

func (c *Catalog) Close() error {
	return c.db.Close()
}

func (c *Catalog) Add(ctx context.Context, record *Record) error {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	result, err := c.db.ExecContext(ctx,
		`INSERT INTO archives (archive_path, format, digest, size_bytes, created_at)
     VALUES (?, ?, ?, ?, ?)`,
		record.ArchivePath, record.Format, record.Digest, record.SizeBytes,
		record.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("recording archive %s: %w", record.ArchivePath, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	record.ID = id
	return nil
}

// FindByPath returns the most recent record for archivePath, or
// ErrNotFound.
func (c *Catalog) FindByPath(ctx context.Context, archivePath string) (*Record, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT id, archive_path, format, digest, size_bytes, created_at
     FROM archives WHERE archive_path=?
     ORDER BY created_at DESC, id DESC LIMIT 1`,
		archivePath)

	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, archivePath)
	}
	return record, err
}

func (c *Catalog) List(ctx context.Context) ([]Record, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT id, archive_path, format, digest, size_bytes, created_at
     FROM archives ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	return records, rows.Err()
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRecord(row scannable) (*Record, error) {
	record := Record{}
	var createdAtStr string
	err := row.Scan(&record.ID, &record.ArchivePath, &record.Format,
		&record.Digest, &record.SizeBytes, &createdAtStr)
	if err != nil {
		return nil, err
	}
	createdAt, err := time.Parse(time.RFC3339, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at %q: %w", createdAtStr, err)
	}
	record.CreatedAt = createdAt
	return &record, nil
}
