package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/0x6d61/tampergen/internal/variant"
)

// SQLiteStore implements Store using SQLite via modernc.org/sqlite (pure Go).
type SQLiteStore struct {
	db *sql.DB
}

// Compile-time check that SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS batches (
		id          TEXT PRIMARY KEY,
		payload     TEXT NOT NULL,
		seed        INTEGER NOT NULL,
		variants    INTEGER NOT NULL,
		batch_json  TEXT NOT NULL,
		created_at  DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS variants (
		batch_id     TEXT NOT NULL,
		idx          INTEGER NOT NULL,
		label        TEXT NOT NULL,
		name         TEXT NOT NULL,
		fingerprint  INTEGER NOT NULL,
		text         BLOB NOT NULL,
		PRIMARY KEY (batch_id, label)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_variants_fingerprint ON variants(fingerprint)`,
}

// NewSQLiteStore opens (creating if needed) a history database.
// dbPath is the path to the SQLite database file; use ":memory:" for testing.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("history: open database: %w", err)
	}
	// Every pooled connection to ":memory:" would see its own empty database.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: ping database: %w", err)
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("history: create schema: %w", err)
		}
	}
	return &SQLiteStore{db: db}, nil
}

// Save persists a batch and indexes each of its variants by fingerprint.
// If the batch's ID is empty, a new UUID is generated and assigned.
func (s *SQLiteStore) Save(ctx context.Context, batch *Batch) error {
	if batch.ID == "" {
		batch.ID = uuid.New().String()
	}
	if batch.CreatedAt.IsZero() {
		batch.CreatedAt = time.Now().UTC()
	}

	batchJSON, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("history: marshal batch: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("history: begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO batches (id, payload, seed, variants, batch_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			payload    = excluded.payload,
			seed       = excluded.seed,
			variants   = excluded.variants,
			batch_json = excluded.batch_json
	`,
		batch.ID,
		batch.Payload,
		batch.Seed,
		len(batch.Variants)+1,
		string(batchJSON),
		batch.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("history: save batch: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM variants WHERE batch_id = ?`, batch.ID); err != nil {
		return fmt.Errorf("history: clear variants: %w", err)
	}
	all := append(append([]variant.Variant{}, batch.Variants...), batch.Baseline)
	for _, v := range all {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO variants (batch_id, idx, label, name, fingerprint, text)
			VALUES (?, ?, ?, ?, ?, ?)
		`, batch.ID, v.Index, v.Label, v.Name, int64(v.Fingerprint), []byte(v.Text))
		if err != nil {
			return fmt.Errorf("history: save variant %s: %w", v.Label, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("history: commit: %w", err)
	}
	return nil
}

// LoadByID retrieves a batch by its unique ID.
// Returns (nil, nil) if no batch is found.
func (s *SQLiteStore) LoadByID(ctx context.Context, id string) (*Batch, error) {
	row := s.db.QueryRowContext(ctx, `SELECT batch_json FROM batches WHERE id = ?`, id)

	var batchJSON string
	if err := row.Scan(&batchJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("history: scan row: %w", err)
	}

	var batch Batch
	if err := json.Unmarshal([]byte(batchJSON), &batch); err != nil {
		return nil, fmt.Errorf("history: unmarshal batch: %w", err)
	}
	return &batch, nil
}

// List returns a summary of all stored batches, newest first.
func (s *SQLiteStore) List(ctx context.Context) ([]*Summary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, payload, seed, variants, created_at FROM batches ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("history: list batches: %w", err)
	}
	defer rows.Close()

	var summaries []*Summary
	for rows.Next() {
		var (
			summary   Summary
			createdAt string
		)
		if err := rows.Scan(&summary.ID, &summary.Payload, &summary.Seed, &summary.Variants, &createdAt); err != nil {
			return nil, fmt.Errorf("history: scan summary row: %w", err)
		}
		if summary.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		summaries = append(summaries, &summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: iterate rows: %w", err)
	}
	return summaries, nil
}

// Find returns every stored variant whose text equals text exactly. The
// fingerprint index narrows the candidates; the text comparison settles
// hash collisions.
func (s *SQLiteStore) Find(ctx context.Context, text string) ([]*Occurrence, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT v.batch_id, v.idx, v.label, v.name, b.created_at
		FROM variants v JOIN batches b ON b.id = v.batch_id
		WHERE v.fingerprint = ? AND v.text = ?
		ORDER BY b.created_at DESC, v.idx
	`, int64(variant.Fingerprint(text)), []byte(text))
	if err != nil {
		return nil, fmt.Errorf("history: find variant: %w", err)
	}
	defer rows.Close()

	var out []*Occurrence
	for rows.Next() {
		var (
			occ       Occurrence
			createdAt string
		)
		if err := rows.Scan(&occ.BatchID, &occ.Index, &occ.Label, &occ.Name, &createdAt); err != nil {
			return nil, fmt.Errorf("history: scan occurrence row: %w", err)
		}
		if occ.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		out = append(out, &occ)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: iterate rows: %w", err)
	}
	return out, nil
}

// Delete removes a batch and its variants.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("history: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM variants WHERE batch_id = ?`, id); err != nil {
		return fmt.Errorf("history: delete variants: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM batches WHERE id = ?`, id); err != nil {
		return fmt.Errorf("history: delete batch: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("history: commit: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Cleanup removes batches older than maxAge and returns how many were deleted.
func (s *SQLiteStore) Cleanup(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-maxAge).Format(time.RFC3339)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("history: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM variants WHERE batch_id IN (SELECT id FROM batches WHERE created_at < ?)`, cutoff); err != nil {
		return 0, fmt.Errorf("history: cleanup variants: %w", err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM batches WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("history: cleanup batches: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("history: rows affected: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("history: commit: %w", err)
	}
	return deleted, nil
}

func parseTime(v string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, v)
	if err == nil {
		return t, nil
	}
	// SQLite's CURRENT_TIMESTAMP format.
	t, err = time.Parse("2006-01-02 15:04:05", v)
	if err != nil {
		return time.Time{}, fmt.Errorf("history: parse time %q: %w", v, err)
	}
	return t, nil
}
