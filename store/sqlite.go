package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dynoquery/models"
	"dynoquery/utils/logger"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// timeLayout is fixed width so that text order equals time order
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const schema = `
CREATE TABLE IF NOT EXISTS records (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    key TEXT UNIQUE NOT NULL,
    created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
    record_type TEXT NOT NULL,
    payload TEXT NOT NULL CHECK (json_valid(payload))
);

CREATE INDEX IF NOT EXISTS idx_records_type_created ON records(record_type, created_at);
`

// ListOptions selects one page of records of a single type
type ListOptions struct {
	RecordType models.RecordType
	Page       int
	PageSize   int
	Search     string
	OrderBy    models.OrderBy
}

// Store is the embedded document store. It owns a single connection so every call
// is serialized.
type Store struct {
	db     *sql.DB
	logger logger.Logger
	now    func() time.Time
}

// Open opens or creates the store file at path in write-ahead log mode
func Open(ctx context.Context, path string, log logger.Logger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to store: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	log.Debugf("Store opened at %s", path)
	return &Store{db: db, logger: log, now: time.Now}, nil
}

// Close closes the underlying connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Insert adds a record. A zero createdAt means now.
func (s *Store) Insert(ctx context.Context, key string, recordType models.RecordType, payload []byte, createdAt time.Time) error {
	if createdAt.IsZero() {
		createdAt = s.now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO records (key, created_at, record_type, payload) VALUES (?, ?, ?, ?)`,
		key, formatTime(createdAt), string(recordType), string(payload))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", models.ErrDuplicateKey, key)
		}
		return fmt.Errorf("failed to insert record %s: %w", key, err)
	}
	return nil
}

// Update sets each leaf field of partial on the stored payload, leaving other fields
// untouched. An empty recordType matches any type. A partial with no leaf fields is a no-op.
func (s *Store) Update(ctx context.Context, key string, partial []byte, recordType models.RecordType) error {
	paths, err := LeafPaths(partial)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return nil
	}

	placeholders := make([]string, 0, len(paths))
	args := make([]interface{}, 0, len(paths)*2+2)
	for _, p := range paths {
		placeholders = append(placeholders, "?, json(?)")
		args = append(args, p.Path, p.Value)
	}
	stmt := "UPDATE records SET payload = json_set(payload, " + strings.Join(placeholders, ", ") + ") WHERE key = ?"
	args = append(args, key)
	if recordType != "" {
		stmt += " AND record_type = ?"
		args = append(args, string(recordType))
	}

	res, err := s.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("failed to update record %s: %w", key, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", models.ErrNotFound, key)
	}
	return nil
}

// Remove deletes a record by key
func (s *Store) Remove(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to remove record %s: %w", key, err)
	}
	return nil
}

// RemoveAll deletes every record of a type
func (s *Store) RemoveAll(ctx context.Context, recordType models.RecordType) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE record_type = ?`, string(recordType))
	if err != nil {
		return 0, fmt.Errorf("failed to remove %s records: %w", recordType, err)
	}
	return res.RowsAffected()
}

// RemoveWhere deletes every record of a type whose payload field equals value
func (s *Store) RemoveWhere(ctx context.Context, recordType models.RecordType, field, value string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM records WHERE record_type = ? AND json_extract(payload, ?) = ?`,
		string(recordType), FieldPath(field), value)
	if err != nil {
		return 0, fmt.Errorf("failed to remove %s records: %w", recordType, err)
	}
	return res.RowsAffected()
}

// RemoveCascade deletes the record at key together with every record of childType whose
// payload field equals value, in one transaction
func (s *Store) RemoveCascade(ctx context.Context, key string, childType models.RecordType, field, value string) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`DELETE FROM records WHERE record_type = ? AND json_extract(payload, ?) = ?`,
		string(childType), FieldPath(field), value)
	if err != nil {
		return 0, fmt.Errorf("failed to remove dependents of %s: %w", key, err)
	}
	children, _ := res.RowsAffected()

	res, err = tx.ExecContext(ctx, `DELETE FROM records WHERE key = ?`, key)
	if err != nil {
		return 0, fmt.Errorf("failed to remove record %s: %w", key, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return 0, fmt.Errorf("%w: %s", models.ErrNotFound, key)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit cascade delete: %w", err)
	}
	return children, nil
}

// List returns one page of records and the total matching count. Page is 1-based.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]models.StoreRecord, int, error) {
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.PageSize < 1 {
		opts.PageSize = 50
	}

	where := "record_type = ?"
	args := []interface{}{string(opts.RecordType)}
	if opts.Search != "" {
		where += " AND instr(json_extract(payload, ?), ?) > 0"
		args = append(args, NamePath, opts.Search)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM records WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count %s records: %w", opts.RecordType, err)
	}

	order := "created_at DESC, id DESC"
	if opts.OrderBy == models.OrderByNameAsc {
		order = "json_extract(payload, '" + NamePath + "') ASC, id ASC"
	}
	stmt := "SELECT id, key, created_at, record_type, payload FROM records WHERE " + where +
		" ORDER BY " + order + " LIMIT ? OFFSET ?"
	args = append(args, opts.PageSize, (opts.Page-1)*opts.PageSize)

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list %s records: %w", opts.RecordType, err)
	}
	defer rows.Close()

	records := []models.StoreRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read %s records: %w", opts.RecordType, err)
	}
	return records, total, nil
}

// Get returns the record at key
func (s *Store) Get(ctx context.Context, key string) (*models.StoreRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, key, created_at, record_type, payload FROM records WHERE key = ?`, key)
	return notFound(scanRecord(row))
}

// GetByName returns the first record of a type whose name field equals name
func (s *Store) GetByName(ctx context.Context, recordType models.RecordType, name string) (*models.StoreRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, key, created_at, record_type, payload FROM records
		 WHERE record_type = ? AND json_extract(payload, ?) = ? ORDER BY id LIMIT 1`,
		string(recordType), NamePath, name)
	return notFound(scanRecord(row))
}

// Last returns the most recently created record of a type
func (s *Store) Last(ctx context.Context, recordType models.RecordType) (*models.StoreRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, key, created_at, record_type, payload FROM records
		 WHERE record_type = ? ORDER BY created_at DESC, id DESC LIMIT 1`,
		string(recordType))
	return notFound(scanRecord(row))
}

// Count returns the number of records of a type
func (s *Store) Count(ctx context.Context, recordType models.RecordType) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM records WHERE record_type = ?`, string(recordType)).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s records: %w", recordType, err)
	}
	return n, nil
}

// PruneOldest keeps the newest keep records of a type and deletes the rest
func (s *Store) PruneOldest(ctx context.Context, recordType models.RecordType, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM records WHERE record_type = ? AND id NOT IN (
		     SELECT id FROM records WHERE record_type = ? ORDER BY created_at DESC, id DESC LIMIT ?
		 )`,
		string(recordType), string(recordType), keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune %s records: %w", recordType, err)
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner) (*models.StoreRecord, error) {
	var (
		rec        models.StoreRecord
		createdAt  string
		recordType string
		payload    string
	)
	if err := row.Scan(&rec.ID, &rec.Key, &createdAt, &recordType, &payload); err != nil {
		return nil, err
	}
	rec.RecordType = models.RecordType(recordType)
	rec.Payload = json.RawMessage(payload)
	rec.CreatedAt = parseTime(createdAt)
	return &rec, nil
}

func notFound(rec *models.StoreRecord, err error) (*models.StoreRecord, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read record: %w", err)
	}
	return rec, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime also accepts the CURRENT_TIMESTAMP layout written by the column default
func parseTime(s string) time.Time {
	if t, err := time.Parse(timeLayout, s); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t
	}
	return time.Time{}
}

func isUniqueViolation(err error) bool {
	var sqlErr *sqlite.Error
	if errors.As(err, &sqlErr) {
		return sqlErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
