package logging

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists records to a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at path and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS dispatch_audit (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        ts INTEGER,
        kind TEXT,
        request_id TEXT,
        driver_id TEXT,
        record TEXT
    );
    CREATE INDEX IF NOT EXISTS dispatch_audit_ts ON dispatch_audit (ts);`
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Append writes the record to the database.
func (s *SQLiteStore) Append(ctx context.Context, rec LogRecord) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO dispatch_audit (ts, kind, request_id, driver_id, record) VALUES (?, ?, ?, ?, ?)`,
		rec.Timestamp.UnixMilli(), string(rec.Kind), rec.RequestID, rec.DriverID, string(b))
	return err
}

// Query returns records matching q. Driver filters also match candidate
// lists, so they are applied after decoding.
func (s *SQLiteStore) Query(ctx context.Context, q LogQuery) ([]LogRecord, error) {
	var args []any
	query := `SELECT record FROM dispatch_audit WHERE 1=1`
	if !q.Start.IsZero() {
		query += ` AND ts >= ?`
		args = append(args, q.Start.UnixMilli())
	}
	if !q.End.IsZero() {
		query += ` AND ts <= ?`
		args = append(args, q.End.UnixMilli())
	}
	if q.Kind != "" {
		query += ` AND kind = ?`
		args = append(args, string(q.Kind))
	}
	if q.RequestID != "" {
		query += ` AND request_id = ?`
		args = append(args, q.RequestID)
	}
	query += ` ORDER BY ts, id`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []LogRecord
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var r LogRecord
		if err := json.Unmarshal([]byte(data), &r); err != nil {
			return nil, fmt.Errorf("unmarshal record: %w", err)
		}
		if q.Matches(r) {
			res = append(res, r)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
