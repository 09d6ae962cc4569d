package postgres

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/exaring/otelpgx"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mubas-somase/voting-backend/pkg/ctxs"
	"github.com/mubas-somase/voting-backend/pkg/env"
)

func NewPgxPool(ctx context.Context, pgdsn string, mode env.Mode) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(pgdsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pgdsn: %w", err)
	}

	opts := []otelpgx.Option{
		otelpgx.WithTrimSQLInSpanName(),
	}
	if mode == env.Prod {
		// statements carry emails and usernames
		opts = append(opts, otelpgx.WithDisableSQLStatementInAttributes())
	}

	cfg.ConnConfig.Tracer = otelpgx.NewTracer(opts...)

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

// Migrate applies the migrations found under "migrations" in fsys. dsn must use the pgx5:// scheme.
func Migrate(dsn string, fsys fs.FS) error {
	driver, err := iofs.New(fsys, "migrations")
	if err != nil {
		return fmt.Errorf("failed to open migrations: %w", err)
	}
	defer driver.Close()

	m, err := migrate.NewWithSourceInstance("iofs", driver, dsn)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	return nil
}

// WithTx runs fn inside a transaction, committing when fn returns nil and rolling back otherwise.
// The transaction is also stored in the context passed to fn.
func WithTx(ctx context.Context, pool *pgxpool.Pool, fn func(ctx context.Context, tx pgx.Tx) error) (err error) {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if cerr := tx.Commit(ctx); cerr != nil {
			err = fmt.Errorf("failed to commit transaction: %w", cerr)
		}
	}()

	return fn(ctxs.WithTx(ctx, tx), tx)
}

// UniqueViolation returns the violated constraint name when err is a unique violation.
func UniqueViolation(err error) (constraint string, ok bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}
