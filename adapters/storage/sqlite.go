package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"fencecost/core/output"
	"fencecost/internal/errors"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS quotes (
	id         TEXT PRIMARY KEY,
	customer   TEXT NOT NULL DEFAULT '',
	project    TEXT NOT NULL DEFAULT '',
	kind       TEXT NOT NULL,
	total      TEXT NOT NULL,
	created_at TEXT NOT NULL,
	body       TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_quotes_project ON quotes(project, created_at);
CREATE INDEX IF NOT EXISTS idx_quotes_created ON quotes(created_at);
`

// created_at is stored as fixed-width UTC text so it sorts lexically
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteStore keeps quotes in a SQLite database
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at path
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Storage("failed to open database", err)
	}
	// one writer avoids SQLITE_BUSY under concurrent handlers
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Storage("failed to ping database", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, errors.Storage("failed to initialize schema", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Save(ctx context.Context, q *StoredQuote) error {
	if err := prepare(q); err != nil {
		return err
	}
	body, err := json.Marshal(q.Quote)
	if err != nil {
		return errors.Storage("failed to marshal quote", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO quotes (id, customer, project, kind, total, created_at, body)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			customer = excluded.customer,
			project = excluded.project,
			kind = excluded.kind,
			total = excluded.total,
			body = excluded.body`,
		q.ID, q.Customer, q.Project, string(q.Kind), q.Total.String(),
		q.CreatedAt.UTC().Format(sqliteTimeLayout), string(body))
	if err != nil {
		return errors.Storage("failed to save quote", err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*StoredQuote, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, customer, project, kind, total, created_at, body
		FROM quotes WHERE id = ?`, canonicalID(id))

	q, err := scanQuote(row)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("quote", id)
	}
	if err != nil {
		return nil, err
	}
	return q, nil
}

func (s *SQLiteStore) List(ctx context.Context, filter *ListFilter) ([]*StoredQuote, error) {
	query := `SELECT id, customer, project, kind, total, created_at, body FROM quotes`
	var where []string
	var args []interface{}

	if filter != nil {
		if filter.Customer != "" {
			where = append(where, "customer = ?")
			args = append(args, filter.Customer)
		}
		if filter.Project != "" {
			where = append(where, "project = ?")
			args = append(args, filter.Project)
		}
		if filter.Kind != "" {
			where = append(where, "kind = ?")
			args = append(args, string(filter.Kind))
		}
		if !filter.Since.IsZero() {
			where = append(where, "created_at >= ?")
			args = append(args, filter.Since.UTC().Format(sqliteTimeLayout))
		}
		if !filter.Until.IsZero() {
			where = append(where, "created_at <= ?")
			args = append(args, filter.Until.UTC().Format(sqliteTimeLayout))
		}
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id ASC"
	if filter != nil && (filter.Limit > 0 || filter.Offset > 0) {
		limit := filter.Limit
		if limit <= 0 {
			limit = -1
		}
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Storage("failed to list quotes", err)
	}
	defer rows.Close()

	var results []*StoredQuote
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, q)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Storage("failed to list quotes", err)
	}
	return results, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM quotes WHERE id = ?`, canonicalID(id))
	if err != nil {
		return errors.Storage("failed to delete quote", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.NotFound("quote", id)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanQuote(row rowScanner) (*StoredQuote, error) {
	var (
		q                      StoredQuote
		kind, total, createdAt string
		body                   string
	)
	if err := row.Scan(&q.ID, &q.Customer, &q.Project, &kind, &total, &createdAt, &body); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, errors.Storage("failed to scan quote", err)
	}

	q.Kind = output.Kind(kind)
	var err error
	if q.Total, err = decimal.NewFromString(total); err != nil {
		return nil, errors.Storage("corrupt quote total", err)
	}
	if q.CreatedAt, err = time.Parse(sqliteTimeLayout, createdAt); err != nil {
		return nil, errors.Storage("corrupt quote timestamp", err)
	}
	q.Quote = &output.Quote{}
	if err := json.Unmarshal([]byte(body), q.Quote); err != nil {
		return nil, errors.Storage("corrupt quote body", err)
	}
	return &q, nil
}
