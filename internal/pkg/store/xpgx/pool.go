// Package xpgx wraps a pgx pool with squirrel-aware helpers.
package xpgx

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Pool runs statements either on the connection pool or, inside InTx, on a transaction.
type Pool struct {
	q    querier
	pool *pgxpool.Pool
}

func New(ctx context.Context, dsn string) (*Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.ParseConfig: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.NewWithConfig: %w", err)
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return &Pool{q: pool, pool: pool}, nil
}

func (p *Pool) Close() {
	if p.pool != nil {
		p.pool.Close()
	}
}

// Exec runs raw SQL, e.g. a migration script.
func (p *Pool) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return p.q.Exec(ctx, sql, args...)
}

func (p *Pool) Execx(ctx context.Context, sqlizer squirrel.Sqlizer) (pgconn.CommandTag, error) {
	query, args, err := sqlizer.ToSql()
	if err != nil {
		return pgconn.CommandTag{}, fmt.Errorf("build query: %w", err)
	}

	return p.q.Exec(ctx, query, args...)
}

func (p *Pool) Queryx(ctx context.Context, sqlizer squirrel.Sqlizer) (pgx.Rows, error) {
	query, args, err := sqlizer.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	return p.q.Query(ctx, query, args...)
}

// Get returns the single row of the query as a *T. Columns are matched to
// fields by `db` tag; fields without a column keep their zero value.
// It returns pgx.ErrNoRows when the query yields nothing.
func Get[T any](ctx context.Context, p *Pool, sqlizer squirrel.Sqlizer) (*T, error) {
	rows, err := p.Queryx(ctx, sqlizer)
	if err != nil {
		return nil, err
	}

	return pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByNameLax[T])
}

// Select returns every row of the query as a *T, matched like Get.
func Select[T any](ctx context.Context, p *Pool, sqlizer squirrel.Sqlizer) ([]*T, error) {
	rows, err := p.Queryx(ctx, sqlizer)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, pgx.RowToAddrOfStructByNameLax[T])
}

// GetValue returns the single column of the single row of the query.
func GetValue[T any](ctx context.Context, p *Pool, sqlizer squirrel.Sqlizer) (T, error) {
	rows, err := p.Queryx(ctx, sqlizer)
	if err != nil {
		var zero T
		return zero, err
	}

	return pgx.CollectOneRow(rows, pgx.RowTo[T])
}

// InTx runs fn on a transaction. Called on a Pool that is already inside a
// transaction it opens a savepoint.
func (p *Pool) InTx(ctx context.Context, fn func(*Pool) error) error {
	tx, err := p.q.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}

	if err = fn(&Pool{q: tx}); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}
