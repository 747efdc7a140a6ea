package domain

import "context"

// Database defines lifecycle operations for the underlying database.
// Each implementation (SQLite, Postgres) owns its own migration
// files and strategy, ensuring the entire backend is swappable.
type Database interface {
	Migrate(ctx context.Context) error
	Close() error
}

// Store is a Database that also vends the repositories the dashboard reads
// and writes through.
type Store interface {
	Database
	Users() UserRepository
	Customers() CustomerRepository
	Invoices() InvoiceRepository
}
