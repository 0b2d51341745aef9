package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// Table names of the two SQLite media.
const (
	CookieTable = "cookie_kv"
	LocalTable  = "local_kv"
)

// SQLiteBackend stores entries in one table of a SQLite database. The
// database handle is owned by the caller.
type SQLiteBackend struct {
	db    *sql.DB
	table string
	limit int
	now   func() time.Time
}

// NewSQLiteBackend creates table if needed and returns a Backend over it.
// A limit above zero rejects larger values with ErrCapacityExceeded.
func NewSQLiteBackend(ctx context.Context, db *sql.DB, table string, limit int, now func() time.Time) (*SQLiteBackend, error) {
	if now == nil {
		now = time.Now
	}
	b := &SQLiteBackend{db: db, table: table, limit: limit, now: now}

	query, args := b.builder().CreateTable(table).
		IfNotExists().
		Columns(
			entsql.Column("key").Type("TEXT").Attr("NOT NULL"),
			entsql.Column("value").Type("TEXT").Attr("NOT NULL"),
			entsql.Column("expires_at").Type("INTEGER").Attr("NOT NULL DEFAULT 0"),
		).
		PrimaryKey("key").
		Query()
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("create table %s: %w", table, err)
	}
	return b, nil
}

func (b *SQLiteBackend) builder() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.SQLite)
}

func (b *SQLiteBackend) Name() string { return b.table }

func (b *SQLiteBackend) Get(ctx context.Context, key string) (string, error) {
	query, args := b.builder().Select("value", "expires_at").
		From(entsql.Table(b.table)).
		Where(entsql.EQ("key", key)).
		Query()

	var (
		value     string
		expiresAt int64
	)
	err := b.db.QueryRowContext(ctx, query, args...).Scan(&value, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get %s/%s: %w", b.table, key, err)
	}
	if expired(b.now(), expiresAt) {
		if err := b.Delete(ctx, key); err != nil {
			return "", err
		}
		return "", ErrNotFound
	}
	return value, nil
}

func (b *SQLiteBackend) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if b.limit > 0 && len(value) > b.limit {
		return ErrCapacityExceeded
	}

	query, args := b.builder().Insert(b.table).
		Columns("key", "value", "expires_at").
		Values(key, value, expiry(b.now(), ttl)).
		OnConflict(
			entsql.ConflictColumns("key"),
			entsql.ResolveWithNewValues(),
		).
		Query()
	if _, err := b.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set %s/%s: %w", b.table, key, err)
	}
	return nil
}

func (b *SQLiteBackend) Delete(ctx context.Context, key string) error {
	query, args := b.builder().Delete(b.table).
		Where(entsql.EQ("key", key)).
		Query()
	if _, err := b.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete %s/%s: %w", b.table, key, err)
	}
	return nil
}

// PurgeExpired removes every expired entry and reports how many were dropped.
func (b *SQLiteBackend) PurgeExpired(ctx context.Context) (int64, error) {
	query, args := b.builder().Delete(b.table).
		Where(entsql.And(
			entsql.GT("expires_at", 0),
			entsql.LTE("expires_at", b.now().UnixMilli()),
		)).
		Query()
	res, err := b.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("purge %s: %w", b.table, err)
	}
	return res.RowsAffected()
}

func (b *SQLiteBackend) Close() error { return nil }
