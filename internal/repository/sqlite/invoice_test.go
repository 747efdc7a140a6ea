package sqlite_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/msomdec/acme-invoices/internal/domain"
)

func TestInvoiceRepository_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	repo := db.Invoices()
	ctx := context.Background()
	c := seedCustomer(t, db, "amy")

	inv := &domain.Invoice{CustomerID: c.ID, Amount: 1250, Status: domain.InvoiceStatusPending, Date: "2026-10-17"}
	if err := repo.Create(ctx, inv); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := uuid.Parse(inv.ID); err != nil {
		t.Fatalf("expected database-generated uuid, got %q: %v", inv.ID, err)
	}

	got, err := repo.GetByID(ctx, inv.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if *got != *inv {
		t.Fatalf("expected %+v, got %+v", *inv, *got)
	}
}

func TestInvoiceRepository_GetByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Invoices().GetByID(context.Background(), uuid.NewString())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestInvoiceRepository_Create_UnknownCustomerIsPersistenceError(t *testing.T) {
	db := newTestDB(t)

	inv := &domain.Invoice{CustomerID: "missing", Amount: 100, Status: domain.InvoiceStatusPaid, Date: "2026-10-17"}
	err := db.Invoices().Create(context.Background(), inv)

	var perr *domain.PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *PersistenceError, got %v", err)
	}
	if perr.Op != "insert invoice" {
		t.Fatalf("expected op 'insert invoice', got %q", perr.Op)
	}
}

func TestInvoiceRepository_UpdateKeepsIDAndDate(t *testing.T) {
	db := newTestDB(t)
	repo := db.Invoices()
	ctx := context.Background()
	amy := seedCustomer(t, db, "amy")
	bob := seedCustomer(t, db, "bob")

	inv := &domain.Invoice{CustomerID: amy.ID, Amount: 100, Status: domain.InvoiceStatusPending, Date: "2026-01-01"}
	if err := repo.Create(ctx, inv); err != nil {
		t.Fatalf("Create: %v", err)
	}

	n, err := repo.Update(ctx, &domain.Invoice{
		ID: inv.ID, CustomerID: bob.ID, Amount: 999, Status: domain.InvoiceStatusPaid, Date: "1999-12-31",
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 row affected, got %d", n)
	}

	got, err := repo.GetByID(ctx, inv.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.CustomerID != bob.ID || got.Amount != 999 || got.Status != domain.InvoiceStatusPaid {
		t.Fatalf("update not applied: %+v", got)
	}
	if got.Date != "2026-01-01" {
		t.Fatalf("expected date to stay 2026-01-01, got %s", got.Date)
	}
}

func TestInvoiceRepository_UpdateAndDeleteMissingAreNotErrors(t *testing.T) {
	db := newTestDB(t)
	repo := db.Invoices()
	ctx := context.Background()
	c := seedCustomer(t, db, "amy")

	id := uuid.NewString()
	n, err := repo.Update(ctx, &domain.Invoice{ID: id, CustomerID: c.ID, Amount: 1, Status: domain.InvoiceStatusPaid})
	if err != nil {
		t.Fatalf("Update missing: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected 0 rows affected, got %d", n)
	}

	n, err = repo.Delete(ctx, id)
	if err != nil {
		t.Fatalf("Delete missing: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected 0 rows affected, got %d", n)
	}
}

func TestInvoiceRepository_DeleteTwice(t *testing.T) {
	db := newTestDB(t)
	repo := db.Invoices()
	ctx := context.Background()
	c := seedCustomer(t, db, "amy")

	inv := &domain.Invoice{CustomerID: c.ID, Amount: 100, Status: domain.InvoiceStatusPaid, Date: "2026-01-01"}
	if err := repo.Create(ctx, inv); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if n, err := repo.Delete(ctx, inv.ID); err != nil || n != 1 {
		t.Fatalf("first Delete: n=%d err=%v", n, err)
	}
	if n, err := repo.Delete(ctx, inv.ID); err != nil || n != 0 {
		t.Fatalf("second Delete: n=%d err=%v", n, err)
	}
	if _, err := repo.GetByID(ctx, inv.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestInvoiceRepository_ListFilteredPaginates(t *testing.T) {
	db := newTestDB(t)
	repo := db.Invoices()
	ctx := context.Background()
	amy := seedCustomer(t, db, "amy")
	bob := seedCustomer(t, db, "bob")

	for i := 1; i <= 8; i++ {
		c := amy
		if i%2 == 0 {
			c = bob
		}
		inv := &domain.Invoice{CustomerID: c.ID, Amount: int64(i * 100), Status: domain.InvoiceStatusPending, Date: fmt.Sprintf("2026-01-%02d", i)}
		if err := repo.Create(ctx, inv); err != nil {
			t.Fatalf("Create %d: %v", i, err)
		}
	}

	page, err := repo.ListFiltered(ctx, "", 6, 0)
	if err != nil {
		t.Fatalf("ListFiltered: %v", err)
	}
	if len(page) != 6 {
		t.Fatalf("expected 6 rows, got %d", len(page))
	}
	if page[0].Date != "2026-01-08" {
		t.Fatalf("expected newest first, got %s", page[0].Date)
	}
	if page[0].CustomerName != "bob" {
		t.Fatalf("expected joined customer name, got %q", page[0].CustomerName)
	}

	rest, err := repo.ListFiltered(ctx, "", 6, 6)
	if err != nil {
		t.Fatalf("ListFiltered page 2: %v", err)
	}
	if len(rest) != 2 {
		t.Fatalf("expected 2 rows on page 2, got %d", len(rest))
	}

	n, err := repo.CountFiltered(ctx, "bob")
	if err != nil {
		t.Fatalf("CountFiltered: %v", err)
	}
	if n != 4 {
		t.Fatalf("expected 4 invoices for bob, got %d", n)
	}

	byAmount, err := repo.ListFiltered(ctx, "700", 6, 0)
	if err != nil {
		t.Fatalf("ListFiltered by amount: %v", err)
	}
	if len(byAmount) != 1 || byAmount[0].Amount != 700 {
		t.Fatalf("expected the 700 invoice, got %+v", byAmount)
	}
}

func TestInvoiceRepository_ListFilteredTreatsWildcardsLiterally(t *testing.T) {
	db := newTestDB(t)
	repo := db.Invoices()
	ctx := context.Background()
	c := seedCustomer(t, db, "amy")

	inv := &domain.Invoice{CustomerID: c.ID, Amount: 100, Status: domain.InvoiceStatusPaid, Date: "2026-01-01"}
	if err := repo.Create(ctx, inv); err != nil {
		t.Fatalf("Create: %v", err)
	}

	n, err := repo.CountFiltered(ctx, "%")
	if err != nil {
		t.Fatalf("CountFiltered: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected %% to match literally, got %d rows", n)
	}
}

func TestInvoiceRepository_LatestAndSummary(t *testing.T) {
	db := newTestDB(t)
	repo := db.Invoices()
	ctx := context.Background()
	c := seedCustomer(t, db, "amy")

	for i, st := range []domain.InvoiceStatus{domain.InvoiceStatusPaid, domain.InvoiceStatusPending, domain.InvoiceStatusPaid} {
		inv := &domain.Invoice{CustomerID: c.ID, Amount: int64(100 * (i + 1)), Status: st, Date: fmt.Sprintf("2026-02-%02d", i+1)}
		if err := repo.Create(ctx, inv); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	latest, err := repo.Latest(ctx, 2)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if len(latest) != 2 || latest[0].Date != "2026-02-03" {
		t.Fatalf("unexpected latest: %+v", latest)
	}

	s, err := repo.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if s.Count != 3 || s.TotalPaid != 400 || s.TotalPending != 200 {
		t.Fatalf("unexpected summary: %+v", s)
	}
}
