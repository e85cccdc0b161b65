package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
	"github.com/sony/gobreaker"

	"github.com/AchilleasB/blood-portal/matching-service/internal/config"
	"github.com/AchilleasB/blood-portal/matching-service/internal/core/domain"
	"github.com/AchilleasB/blood-portal/matching-service/internal/core/ports"
)

const (
	defaultStoreTimeout = 5 * time.Second

	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// SQLRepository is the PostgreSQL record store. Every call is bounded by the
// configured timeout and guarded by a circuit breaker.
type SQLRepository struct {
	db      *sql.DB
	cb      *gobreaker.CircuitBreaker
	timeout time.Duration
}

var _ ports.RecordStore = (*SQLRepository)(nil)

func NewSQLRepository(db *sql.DB, timeout time.Duration) *SQLRepository {
	if timeout <= 0 {
		timeout = defaultStoreTimeout
	}
	return &SQLRepository{
		db:      db,
		cb:      config.NewCircuitBreaker("PostgreSQL"),
		timeout: timeout,
	}
}

// BreakerState exposes the store breaker for readiness checks.
func (r *SQLRepository) BreakerState() gobreaker.State {
	return r.cb.State()
}

func (r *SQLRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}

// run executes fn under the store timeout and circuit breaker.
func run[T any](ctx context.Context, r *SQLRepository, fn func(ctx context.Context) (T, error)) (T, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	v, err := r.cb.Execute(func() (interface{}, error) {
		return fn(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

func (r *SQLRepository) exec(ctx context.Context, fn func(ctx context.Context) error) error {
	_, err := run(ctx, r, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// RunInTx runs fn inside a single database transaction. The transaction is
// committed only when fn returns nil and is rolled back on every other path.
func (r *SQLRepository) RunInTx(ctx context.Context, fn func(tx ports.LifecycleTx) error) error {
	return r.exec(ctx, func(ctx context.Context) error {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		if err := fn(&lifecycleTx{tx: tx}); err != nil {
			return err
		}
		return tx.Commit()
	})
}

// translate maps driver errors onto the store sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return domain.ErrConflict
		case pqForeignKeyViolation:
			// The referenced user, profile or request does not exist.
			return domain.ErrNotFound
		}
	}
	return err
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func collect[T any](rows *sql.Rows, scan func(rowScanner) (T, error)) ([]T, error) {
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
