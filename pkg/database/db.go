package database

import (
	"context"
	"database/sql"

	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"
	"github.com/jmoiron/sqlx"
)

// Executor is the subset of sqlx shared by *sqlx.DB and *sqlx.Tx that repositories run statements on.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

type DB interface {
	Executor
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
	Close() error
	DriverName() string
	PingContext(ctx context.Context) error
	Ping() error
	Flavor() sqlbuilder.Flavor
	WithTx(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context) error) error
}

type DatabaseInstance struct {
	*sqlx.DB
	logger ectologger.Logger
	flavor sqlbuilder.Flavor
}

func NewDatabaseInstance(db *sqlx.DB, logger ectologger.Logger) DB {
	return &DatabaseInstance{
		DB:     db,
		logger: logger,
		flavor: FlavorForDriver(db.DriverName()),
	}
}

// FlavorForDriver maps a database/sql driver name onto the sqlbuilder flavor that emits its placeholders.
func FlavorForDriver(driverName string) sqlbuilder.Flavor {
	switch driverName {
	case "postgres", "pgx":
		return sqlbuilder.PostgreSQL
	case "sqlite3", "sqlite":
		return sqlbuilder.SQLite
	case "mysql":
		return sqlbuilder.MySQL
	default:
		return sqlbuilder.PostgreSQL
	}
}

func (db *DatabaseInstance) Flavor() sqlbuilder.Flavor {
	return db.flavor
}

func (db *DatabaseInstance) WithTx(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context) error) error {
	return WithTx(ctx, db.logger, db, opts, fn)
}

// Conn returns the transaction bound to ctx, or db when no transaction is open.
func Conn(ctx context.Context, db DB) Executor {
	if tx, ok := TxFromContext(ctx); ok {
		return tx
	}
	return db
}
