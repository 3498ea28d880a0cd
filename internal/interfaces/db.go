package interfaces

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrInvalidCursor возвращается при некорректном курсоре пагинации.
var ErrInvalidCursor = errors.New("invalid pagination cursor")

// DBTX abstracts a pgx pool or transaction so repositories can run inside an
// externally managed transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxManager runs a function inside a database transaction with automatic
// rollback on error or panic. The membership-row write and every counter delta
// it implies must share one WithTransaction call.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error
}
