package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/me/busdesk/pkg/model"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and returns a Store.
// Use ":memory:" for an in-memory database (useful in tests).
func NewSQLiteStore(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	if dbPath == ":memory:" {
		// Every connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logger.With("component", "store"),
	}, nil
}

// connPragmas are applied by the driver to every new pooled connection.
var connPragmas = []string{
	"busy_timeout(5000)",
	"journal_mode(WAL)",
}

func dsn(dbPath string) string {
	sep := "?"
	if strings.Contains(dbPath, "?") {
		sep = "&"
	}
	var b strings.Builder
	b.WriteString(dbPath)
	for _, p := range connPragmas {
		b.WriteString(sep + "_pragma=" + p)
		sep = "&"
	}
	return b.String()
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Migrate creates all required tables and indexes.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	s.logger.Debug("sql", "op", "migrate")
	return migrate(ctx, s.db)
}

// --- Notices ---

func (s *SQLiteStore) PushNotice(ctx context.Context, n model.Notice) error {
	s.logger.Debug("sql", "op", "insert", "table", "notices", "client_id", n.ClientID)

	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notices (client_id, level, message, created_at) VALUES (?, ?, ?, ?)`,
		n.ClientID, string(n.Level), n.Message, n.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

// PopNotices returns the client's pending notices in arrival order and
// deletes them.
func (s *SQLiteStore) PopNotices(ctx context.Context, clientID string) ([]model.Notice, error) {
	s.logger.Debug("sql", "op", "pop", "table", "notices", "client_id", clientID)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx,
		`SELECT id, client_id, level, message, created_at FROM notices WHERE client_id = ? ORDER BY id`,
		clientID,
	)
	if err != nil {
		return nil, err
	}

	var notices []model.Notice
	var lastID int64
	for rows.Next() {
		var n model.Notice
		var level, createdAt string
		if err := rows.Scan(&n.ID, &n.ClientID, &level, &n.Message, &createdAt); err != nil {
			rows.Close()
			return nil, err
		}
		n.Level = model.NoticeLevel(level)
		n.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		notices = append(notices, n)
		lastID = n.ID
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	if len(notices) == 0 {
		return nil, nil
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM notices WHERE client_id = ? AND id <= ?`, clientID, lastID,
	); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return notices, nil
}

// PruneNotices deletes notices nobody collected before the cutoff.
func (s *SQLiteStore) PruneNotices(ctx context.Context, before time.Time) (int64, error) {
	s.logger.Debug("sql", "op", "delete_expired", "table", "notices")

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM notices WHERE created_at < ?`, before.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// --- Action journal ---

func (s *SQLiteStore) RecordAction(ctx context.Context, rec model.ActionRecord) error {
	s.logger.Debug("sql", "op", "insert", "table", "actions", "collection", rec.Collection, "entity_id", rec.EntityID)

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO actions (client_id, owner_id, collection, entity_id, field, old_value, new_value, outcome, message, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ClientID, rec.OwnerID, string(rec.Collection), rec.EntityID, rec.Field,
		rec.OldValue, rec.NewValue, string(rec.Outcome), rec.Message,
		rec.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

// ListActions returns journal entries newest first, with the total count
// matching the filter.
func (s *SQLiteStore) ListActions(ctx context.Context, f ActionFilter, opts model.ListOptions) ([]model.ActionRecord, int, error) {
	s.logger.Debug("sql", "op", "list", "table", "actions", "limit", opts.Limit, "offset", opts.Offset)
	opts.Clamp()

	var where []string
	var args []any
	if f.ClientID != "" {
		where = append(where, "client_id = ?")
		args = append(args, f.ClientID)
	}
	if f.OwnerID != "" {
		where = append(where, "owner_id = ?")
		args = append(args, f.OwnerID)
	}
	if f.Collection != "" {
		where = append(where, "collection = ?")
		args = append(args, string(f.Collection))
	}
	if f.EntityID != "" {
		where = append(where, "entity_id = ?")
		args = append(args, f.EntityID)
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM actions`+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, client_id, owner_id, collection, entity_id, field, old_value, new_value, outcome, message, created_at
		 FROM actions`+clause+` ORDER BY id DESC LIMIT ? OFFSET ?`,
		append(args, opts.Limit, opts.Offset)...,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var actions []model.ActionRecord
	for rows.Next() {
		var rec model.ActionRecord
		var collection, outcome, createdAt string
		if err := rows.Scan(&rec.ID, &rec.ClientID, &rec.OwnerID, &collection, &rec.EntityID, &rec.Field,
			&rec.OldValue, &rec.NewValue, &outcome, &rec.Message, &createdAt); err != nil {
			return nil, 0, err
		}
		rec.Collection = model.Collection(collection)
		rec.Outcome = model.ActionOutcome(outcome)
		rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		actions = append(actions, rec)
	}
	return actions, total, rows.Err()
}
