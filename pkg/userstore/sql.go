package userstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/dmitrymomot/authcore/pkg/logger"
	"github.com/dmitrymomot/authcore/pkg/pg"
	"github.com/dmitrymomot/authcore/pkg/userstore/migrations"
)

// Dialect selects placeholder syntax and the created_at encoding.
type Dialect string

const (
	// DialectPostgres uses $n placeholders and TIMESTAMPTZ.
	DialectPostgres Dialect = "postgres"
	// DialectSQLite uses ? placeholders and unix milliseconds.
	DialectSQLite Dialect = "sqlite"
)

const (
	insertUserQuery = `INSERT INTO users (id, username, username_key, password_hash, email, created_at) VALUES (?, ?, ?, ?, ?, ?)`
	selectUserQuery = `SELECT id, username, password_hash, email, created_at FROM users`
)

// SQLStore keeps users in a relational table with a unique index on the
// case-folded username. The database enforces uniqueness, so Create needs no
// process-level lock.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
	opts    options
	ping    func(context.Context) error
}

// NewSQLStore wraps an already migrated database handle.
func NewSQLStore(db *sql.DB, dialect Dialect, opts ...Option) *SQLStore {
	s := &SQLStore{db: db, dialect: dialect, opts: buildOptions(opts)}
	s.ping = db.PingContext
	return s
}

// OpenSQLite opens the database file at path and applies the embedded
// migrations.
func OpenSQLite(ctx context.Context, path string, opts ...Option) (*SQLStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.Join(ErrStorageFailure, errors.New("sqlite path is required"))
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Join(ErrStorageFailure, err)
	}
	// A single writer connection keeps concurrent Creates from racing into
	// SQLITE_BUSY; the unique index still decides which one wins.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Join(ErrStorageFailure, err)
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, db, migrations.SQLite())
	if err != nil {
		_ = db.Close()
		return nil, errors.Join(ErrStorageFailure, err)
	}
	if _, err := provider.Up(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Join(ErrStorageFailure, fmt.Errorf("run migrations: %w", err))
	}

	return NewSQLStore(db, DialectSQLite, opts...), nil
}

// OpenPostgres migrates the users table and returns a store backed by pool.
func OpenPostgres(ctx context.Context, pool *pgxpool.Pool, cfg pg.Config, opts ...Option) (*SQLStore, error) {
	s := NewSQLStore(stdlib.OpenDBFromPool(pool), DialectPostgres, opts...)
	if err := pg.Migrate(ctx, pool, cfg, migrations.Postgres(), s.opts.logger); err != nil {
		_ = s.db.Close()
		return nil, errors.Join(ErrStorageFailure, err)
	}
	s.ping = pg.Healthcheck(pool)
	return s, nil
}

// Ping reports whether the database answers.
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.ping(ctx)
}

// Close releases the database handle.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) Create(ctx context.Context, username, email, passwordHash string) (Record, error) {
	rec, err := s.opts.newRecord(username, email, passwordHash)
	if err != nil {
		return Record{}, err
	}

	_, err = s.db.ExecContext(ctx, s.rebind(insertUserQuery),
		rec.ID, rec.Username, Key(rec.Username), rec.PasswordHash, rec.Email, s.encodeTime(rec.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return Record{}, ErrConflict
		}
		s.opts.logger.ErrorContext(ctx, "failed to insert user",
			logger.Username(rec.Username),
			logger.Error(err),
		)
		return Record{}, errors.Join(ErrStorageFailure, err)
	}
	return rec, nil
}

func (s *SQLStore) FindByUsername(ctx context.Context, username string) (Record, error) {
	return s.findOne(ctx, selectUserQuery+` WHERE username_key = ?`, Key(username))
}

func (s *SQLStore) FindByID(ctx context.Context, id string) (Record, error) {
	return s.findOne(ctx, selectUserQuery+` WHERE id = ?`, id)
}

func (s *SQLStore) All(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, selectUserQuery+` ORDER BY created_at, id`)
	if err != nil {
		return nil, errors.Join(ErrStorageFailure, err)
	}
	defer func() { _ = rows.Close() }()

	var out []Record
	for rows.Next() {
		rec, err := s.scan(rows)
		if err != nil {
			s.opts.logger.WarnContext(ctx, "skipping corrupt user row", logger.Error(errors.Join(ErrCorrupt, err)))
			continue
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Join(ErrStorageFailure, err)
	}
	return out, nil
}

func (s *SQLStore) findOne(ctx context.Context, query string, arg string) (Record, error) {
	rec, err := s.scan(s.db.QueryRowContext(ctx, s.rebind(query), arg))
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return Record{}, ErrNotFound
	case err != nil:
		return Record{}, errors.Join(ErrStorageFailure, err)
	}
	return rec, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func (s *SQLStore) scan(row scanner) (Record, error) {
	var rec Record
	if s.dialect == DialectSQLite {
		var millis int64
		if err := row.Scan(&rec.ID, &rec.Username, &rec.PasswordHash, &rec.Email, &millis); err != nil {
			return Record{}, err
		}
		rec.CreatedAt = time.UnixMilli(millis).UTC()
		return rec, nil
	}
	if err := row.Scan(&rec.ID, &rec.Username, &rec.PasswordHash, &rec.Email, &rec.CreatedAt); err != nil {
		return Record{}, err
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	return rec, nil
}

func (s *SQLStore) encodeTime(t time.Time) any {
	if s.dialect == DialectSQLite {
		return t.UnixMilli()
	}
	return t
}

// rebind rewrites ? placeholders to $n for Postgres.
func (s *SQLStore) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isUniqueViolation(err error) bool {
	if pg.IsDuplicateKeyError(err) {
		return true
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

var _ Store = (*SQLStore)(nil)
