package store

import (
	"context"
	"database/sql"
)

type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type Getter interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
}

type Selecter interface {
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

// DB is satisfied by *sqlx.DB and *sqlx.Tx.
type DB interface {
	Execer
	Getter
	Selecter
}

// Tx is what store methods need from an open transaction.
type Tx interface {
	Execer
	Getter
	Selecter
}
