package sqlite_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/msomdec/acme-invoices/internal/domain"
	"github.com/msomdec/acme-invoices/internal/repository/sqlite"
)

// Verify that *sqlite.DB implements domain.Store at compile time.
var _ domain.Store = (*sqlite.DB)(nil)

func newTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func seedCustomer(t *testing.T, db *sqlite.DB, name string) *domain.Customer {
	t.Helper()
	c := &domain.Customer{Name: name, Email: name + "@example.com", ImageURL: "/customers/" + name + ".png"}
	if err := db.Customers().Create(context.Background(), c); err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	return c
}

func TestNew(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Fatal("database file was not created")
	}

	var fkEnabled int
	if err := db.SqlDB.QueryRow("PRAGMA foreign_keys").Scan(&fkEnabled); err != nil {
		t.Fatalf("check foreign_keys: %v", err)
	}
	if fkEnabled != 1 {
		t.Fatalf("expected foreign_keys=1, got %d", fkEnabled)
	}
}

func TestMigrateIdempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("second Migrate (idempotent): %v", err)
	}

	var count int
	err := db.SqlDB.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations").Scan(&count)
	if err != nil {
		t.Fatalf("count schema_migrations: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 migration record, got %d", count)
	}
}

func TestCustomerRepository_ListAndCount(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	seedCustomer(t, db, "zed")
	seedCustomer(t, db, "amy")

	customers, err := db.Customers().List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(customers) != 2 {
		t.Fatalf("expected 2 customers, got %d", len(customers))
	}
	if customers[0].Name != "amy" {
		t.Fatalf("expected customers ordered by name, got %q first", customers[0].Name)
	}

	n, err := db.Customers().Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected count 2, got %d", n)
	}
}

func TestCustomerRepository_ListFilteredTotals(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	amy := seedCustomer(t, db, "amy")
	seedCustomer(t, db, "bob")

	invoices := db.Invoices()
	for _, inv := range []domain.Invoice{
		{CustomerID: amy.ID, Amount: 1000, Status: domain.InvoiceStatusPaid, Date: "2026-01-01"},
		{CustomerID: amy.ID, Amount: 250, Status: domain.InvoiceStatusPending, Date: "2026-01-02"},
	} {
		if err := invoices.Create(ctx, &inv); err != nil {
			t.Fatalf("Create invoice: %v", err)
		}
	}

	got, err := db.Customers().ListFiltered(ctx, "AMY")
	if err != nil {
		t.Fatalf("ListFiltered: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 customer, got %d", len(got))
	}
	if got[0].TotalInvoices != 2 || got[0].TotalPaid != 1000 || got[0].TotalPending != 250 {
		t.Fatalf("unexpected totals: %+v", got[0])
	}

	all, err := db.Customers().ListFiltered(ctx, "")
	if err != nil {
		t.Fatalf("ListFiltered all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 customers, got %d", len(all))
	}
	if all[1].TotalInvoices != 0 {
		t.Fatalf("expected bob to have no invoices, got %d", all[1].TotalInvoices)
	}
}
