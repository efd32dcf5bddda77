// Package postgres stores the ledger aggregates (apartments, bookings,
// payments, reviews) in PostgreSQL. Inside a write unit every ByID takes a
// row lock, so concurrent writers on the same aggregate queue in the database.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

//go:embed migrations/*.sql
var migrations embed.FS

const uniqueViolation = "23505"

// Open connects with the lib/pq driver and checks the connection.
func Open(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

// Migrate applies the embedded schema files in name order. Every statement is
// idempotent, so reruns are safe.
func Migrate(ctx context.Context, db *sqlx.DB) ([]string, error) {
	names, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	for _, name := range names {
		script, err := migrations.ReadFile(name)
		if err != nil {
			return nil, err
		}
		if _, err := db.ExecContext(ctx, string(script)); err != nil {
			return nil, fmt.Errorf("postgres: migrate %s: %w", name, err)
		}
	}
	return names, nil
}

func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return string(pqErr.Code) == uniqueViolation && (constraint == "" || pqErr.Constraint == constraint)
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func fromNullTime(t sql.NullTime) time.Time {
	if !t.Valid {
		return time.Time{}
	}
	return t.Time.UTC()
}

func lockClause(lock bool) string {
	if lock {
		return " FOR UPDATE"
	}
	return ""
}

// exists distinguishes a missing row from a version mismatch after an update
// matched nothing.
func exists(ctx context.Context, q sqlx.QueryerContext, table, id string) (bool, error) {
	var found bool
	err := sqlx.GetContext(ctx, q, &found, "SELECT EXISTS (SELECT 1 FROM "+table+" WHERE id = $1)", id)
	return found, err
}

// insertWithSavepoint runs insert under a savepoint so a unique violation can
// be rolled back without aborting the surrounding transaction.
func insertWithSavepoint(ctx context.Context, q sqlx.ExecerContext, name string, insert func() error) error {
	if _, err := q.ExecContext(ctx, "SAVEPOINT "+name); err != nil {
		return err
	}
	if err := insert(); err != nil {
		if _, rbErr := q.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+name); rbErr != nil {
			return errors.Join(err, rbErr)
		}
		return err
	}
	_, err := q.ExecContext(ctx, "RELEASE SAVEPOINT "+name)
	return err
}

func affected(res sql.Result) (int64, error) {
	if res == nil {
		return 0, nil
	}
	return res.RowsAffected()
}

func sqlxSelect(ctx context.Context, q sqlx.QueryerContext, dest any, query string, args ...any) error {
	return sqlx.SelectContext(ctx, q, dest, query, args...)
}

// inQuery expands IN (?) placeholders and rebinds to the driver's bindvar.
func inQuery(q sqlx.ExtContext, query string, args ...any) (string, []any, error) {
	expanded, expandedArgs, err := sqlx.In(query, args...)
	if err != nil {
		return "", nil, err
	}
	return q.Rebind(expanded), expandedArgs, nil
}

func toStrings[T ~string](values []T) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, string(v))
	}
	return out
}
