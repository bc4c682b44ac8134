package records

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS records (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	category   TEXT NOT NULL,
	data       TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_records_category ON records(category, id);
`

// SQLiteRepo stores every category in one table with a JSON payload.
type SQLiteRepo struct {
	db *sql.DB
}

func NewSQLiteRepo(db *sql.DB) *SQLiteRepo {
	return &SQLiteRepo{db: db}
}

// EnsureIndexes creates the records table and its index
func (r *SQLiteRepo) EnsureIndexes(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("migrate records table: %w", err)
	}
	return nil
}

func (r *SQLiteRepo) Insert(ctx context.Context, rec *Record) error {
	data, err := json.Marshal(rec.Fields)
	if err != nil {
		return fmt.Errorf("encode %s record: %w", rec.Category, err)
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO records (category, data, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		rec.Category, string(data), formatTime(rec.CreatedAt), formatTime(rec.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert %s record: %w", rec.Category, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert %s record: %w", rec.Category, err)
	}
	rec.ID = strconv.FormatInt(id, 10)
	return nil
}

func (r *SQLiteRepo) FindByID(ctx context.Context, category, id string) (*Record, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return nil, ErrRecordNotFound
	}
	row := r.db.QueryRowContext(ctx,
		`SELECT id, category, data, created_at, updated_at FROM records WHERE category = ? AND id = ?`,
		category, n)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find %s record %s: %w", category, id, err)
	}
	return rec, nil
}

func (r *SQLiteRepo) List(ctx context.Context, q ListQuery) ([]*Record, error) {
	var (
		where = []string{"category = ?"}
		args  = []any{q.Category}
	)
	if q.DateField != "" {
		path := "$." + q.DateField
		if q.Since != "" {
			where = append(where, "json_extract(data, ?) >= ?")
			args = append(args, path, q.Since)
		}
		if q.Until != "" {
			where = append(where, "json_extract(data, ?) <= ?")
			args = append(args, path, q.Until)
		}
	}
	query := `SELECT id, category, data, created_at, updated_at FROM records WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY id ASC`
	limit := q.limit()
	if limit == 0 {
		limit = -1
	}
	query += ` LIMIT ? OFFSET ?`
	args = append(args, limit, q.offset())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s records: %w", q.Category, err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("decode %s records: %w", q.Category, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s records: %w", q.Category, err)
	}
	return out, nil
}

func (r *SQLiteRepo) Update(ctx context.Context, rec *Record) error {
	n, err := strconv.ParseInt(rec.ID, 10, 64)
	if err != nil {
		return ErrRecordNotFound
	}
	data, err := json.Marshal(rec.Fields)
	if err != nil {
		return fmt.Errorf("encode %s record: %w", rec.Category, err)
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE records SET data = ?, updated_at = ? WHERE category = ? AND id = ?`,
		string(data), formatTime(rec.UpdatedAt), rec.Category, n)
	if err != nil {
		return fmt.Errorf("update %s record: %w", rec.Category, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (r *SQLiteRepo) Delete(ctx context.Context, category, id string) error {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return ErrRecordNotFound
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM records WHERE category = ? AND id = ?`, category, n)
	if err != nil {
		return fmt.Errorf("delete %s record: %w", category, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (r *SQLiteRepo) Count(ctx context.Context, category string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records WHERE category = ?`, category).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count %s records: %w", category, err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*Record, error) {
	var (
		id                   int64
		category, data       string
		createdAt, updatedAt string
	)
	if err := s.Scan(&id, &category, &data, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	fields := map[string]any{}
	dec := json.NewDecoder(bytes.NewReader([]byte(data)))
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil {
		return nil, err
	}
	return &Record{
		ID:        strconv.FormatInt(id, 10),
		Category:  category,
		Fields:    fields,
		CreatedAt: parseTime(createdAt),
		UpdatedAt: parseTime(updatedAt),
	}, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
