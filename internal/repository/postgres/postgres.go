// Package postgres implements the dashboard repositories on PostgreSQL
// through the pgx database/sql driver, with schema managed by goose.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/msomdec/acme-invoices/internal/domain"
	"github.com/msomdec/acme-invoices/internal/repository/postgres/migrations"
	"github.com/pressly/goose/v3"
)

type DB struct {
	SqlDB *sql.DB
}

var _ domain.Store = (*DB)(nil)

// New opens a connection pool for dsn and verifies it with a ping.
func New(ctx context.Context, dsn string) (*DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &DB{SqlDB: db}, nil
}

// gooseUp is a seam for tests that exercise Migrate without a server.
var gooseUp = func(ctx context.Context, db *sql.DB, dir string) error {
	return goose.UpContext(ctx, db, dir)
}

// Migrate applies the embedded goose migrations.
func (d *DB) Migrate(ctx context.Context) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := gooseUp(ctx, d.SqlDB, "."); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

func (d *DB) Close() error {
	return d.SqlDB.Close()
}

func (d *DB) Users() domain.UserRepository {
	return &userRepo{db: d.SqlDB}
}

func (d *DB) Customers() domain.CustomerRepository {
	return &customerRepo{db: d.SqlDB}
}

func (d *DB) Invoices() domain.InvoiceRepository {
	return &invoiceRepo{db: d.SqlDB}
}
