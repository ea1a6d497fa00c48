package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists entries in a single-table SQLite database. The
// sequence number is the primary key, which makes the optimistic append
// check a single MAX(seq) read inside the insert transaction.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) a SQLite-backed store at path.
// Use ":memory:" for an ephemeral database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS journal_entries (
			seq     INTEGER PRIMARY KEY,
			id      TEXT NOT NULL,
			payload TEXT NOT NULL
		)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Append(ctx context.Context, expectedSeq int64, entries []Entry) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var tail sql.NullInt64
	if err := tx.QueryRowContext(ctx, `SELECT MAX(seq) FROM journal_entries`).Scan(&tail); err != nil {
		return 0, fmt.Errorf("reading tail: %w", err)
	}
	current := int64(-1)
	if tail.Valid {
		current = tail.Int64
	}
	if expectedSeq != current {
		return current, ErrSequenceConflict
	}

	for _, e := range entries {
		current++
		e.Seq = uint64(current)
		payload, err := json.Marshal(e)
		if err != nil {
			return 0, fmt.Errorf("encoding seq %d: %w", current, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO journal_entries (seq, id, payload) VALUES (?, ?, ?)`,
			current, e.ID, string(payload))
		if err != nil {
			return 0, fmt.Errorf("inserting seq %d: %w", current, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing: %w", err)
	}
	return current, nil
}

func (s *SQLiteStore) Read(ctx context.Context, fromSeq uint64) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM journal_entries WHERE seq >= ? ORDER BY seq`, fromSeq)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		var e Entry
		if err := json.Unmarshal([]byte(payload), &e); err != nil {
			return nil, fmt.Errorf("decoding entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
