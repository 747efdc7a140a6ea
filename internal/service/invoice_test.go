package service_test

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/msomdec/acme-invoices/internal/domain"
	"github.com/msomdec/acme-invoices/internal/service"
)

var fixedNow = time.Date(2024, 3, 9, 23, 30, 0, 0, time.UTC)

func newTestInvoiceService(t *testing.T) (*service.InvoiceService, *fakeInvoices, *fakePaths, *fakeRecorder) {
	t.Helper()
	repo := newFakeInvoices()
	paths := &fakePaths{}
	rec := newFakeRecorder()
	svc := service.NewInvoiceService(repo, paths, rec, service.WithClock(func() time.Time { return fixedNow }))
	return svc, repo, paths, rec
}

func validForm() domain.FormValues {
	return form("customerId", "c1", "amount", "12.50", "status", "pending")
}

func TestCreateInvoice_Success(t *testing.T) {
	svc, repo, paths, rec := newTestInvoiceService(t)

	out := svc.CreateInvoice(context.Background(), validForm())
	if out.Failed() {
		t.Fatalf("CreateInvoice failed: %s", out.Message)
	}
	if out.RedirectTo != "/dashboard/invoices" {
		t.Fatalf("expected redirect to /dashboard/invoices, got %q", out.RedirectTo)
	}

	if len(repo.created) != 1 {
		t.Fatalf("expected 1 insert, got %d", len(repo.created))
	}
	got := repo.created[0]
	if got.Amount != 1250 {
		t.Fatalf("expected amount 1250 cents, got %d", got.Amount)
	}
	if got.Date != "2024-03-09" {
		t.Fatalf("expected date 2024-03-09, got %q", got.Date)
	}
	if got.Status != domain.InvoiceStatusPending || got.CustomerID != "c1" {
		t.Fatalf("unexpected invoice %+v", got)
	}

	if diff := cmp.Diff([]string{"/dashboard/invoices"}, paths.paths); diff != "" {
		t.Fatalf("invalidations mismatch (-want +got):\n%s", diff)
	}
	if rec.actions["create/success"] != 1 {
		t.Fatalf("expected create/success recorded, got %v", rec.actions)
	}
}

func TestCreateInvoice_OneCent(t *testing.T) {
	svc, repo, _, _ := newTestInvoiceService(t)

	svc.CreateInvoice(context.Background(), form("customerId", "c1", "amount", "0.01", "status", "paid"))
	if len(repo.created) != 1 || repo.created[0].Amount != 1 {
		t.Fatalf("expected one invoice of 1 cent, got %+v", repo.created)
	}
}

func TestCreateInvoice_ValidationSkipsGateway(t *testing.T) {
	svc, repo, paths, rec := newTestInvoiceService(t)

	out := svc.CreateInvoice(context.Background(), form("amount", "10", "status", "paid"))
	if !out.Failed() {
		t.Fatal("expected failure")
	}
	if out.Message != "Missing Fields. Failed to Create Invoice." {
		t.Fatalf("unexpected message %q", out.Message)
	}
	want := domain.FieldErrors{"customerId": {"Please select a customer"}}
	if diff := cmp.Diff(want, out.Errors); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
	if len(repo.calls) != 0 {
		t.Fatalf("expected no gateway calls, got %v", repo.calls)
	}
	if len(paths.paths) != 0 {
		t.Fatalf("expected no invalidation, got %v", paths.paths)
	}
	if out.RedirectTo != "" {
		t.Fatalf("expected no redirect, got %q", out.RedirectTo)
	}
	if rec.actions["create/validation_error"] != 1 {
		t.Fatalf("expected validation_error recorded, got %v", rec.actions)
	}
}

func TestCreateInvoice_PersistenceFault(t *testing.T) {
	svc, repo, paths, _ := newTestInvoiceService(t)
	repo.fail = errDiskFull

	out := svc.CreateInvoice(context.Background(), validForm())
	if out.Message != "Database Error: Failed to Create Invoice." {
		t.Fatalf("unexpected message %q", out.Message)
	}
	if strings.Contains(out.Message, "disk full") {
		t.Fatal("internal error leaked into message")
	}
	if out.Errors != nil {
		t.Fatalf("expected no field errors, got %v", out.Errors)
	}
	if len(paths.paths) != 0 {
		t.Fatalf("expected no invalidation, got %v", paths.paths)
	}
}

func TestCreateInvoice_InvalidatesBeforeReturning(t *testing.T) {
	svc, repo, paths, _ := newTestInvoiceService(t)
	var events []string
	repo.events = &events
	paths.events = &events

	svc.CreateInvoice(context.Background(), validForm())

	want := []string{"gateway:create", "invalidate:/dashboard/invoices"}
	if diff := cmp.Diff(want, events); diff != "" {
		t.Fatalf("event order mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdateInvoice_Success(t *testing.T) {
	svc, repo, paths, _ := newTestInvoiceService(t)
	repo.rows["123"] = domain.Invoice{ID: "123", CustomerID: "c0", Amount: 5, Status: domain.InvoiceStatusPaid, Date: "2020-01-01"}

	out := svc.UpdateInvoice(context.Background(), "123", form("customerId", "c1", "amount", "99.99", "status", "pending"))
	if out.Failed() || out.RedirectTo != "/dashboard/invoices" {
		t.Fatalf("unexpected outcome %+v", out)
	}
	got := repo.rows["123"]
	if got.Amount != 9999 || got.CustomerID != "c1" || got.Status != domain.InvoiceStatusPending {
		t.Fatalf("unexpected stored invoice %+v", got)
	}
	if len(paths.paths) != 1 {
		t.Fatalf("expected exactly one invalidation, got %v", paths.paths)
	}
}

func TestUpdateInvoice_MissingRowSucceeds(t *testing.T) {
	svc, _, paths, _ := newTestInvoiceService(t)

	out := svc.UpdateInvoice(context.Background(), "does-not-exist", validForm())
	if out.Failed() {
		t.Fatalf("expected success for missing row, got %q", out.Message)
	}
	if out.RedirectTo != "/dashboard/invoices" || len(paths.paths) != 1 {
		t.Fatalf("unexpected outcome %+v, invalidations %v", out, paths.paths)
	}
}

func TestUpdateInvoice_ValidationMessage(t *testing.T) {
	svc, repo, _, _ := newTestInvoiceService(t)

	out := svc.UpdateInvoice(context.Background(), "123", form("customerId", "c1", "amount", "0", "status", "paid"))
	if out.Message != "Missing Fields. Failed to Update Invoice." {
		t.Fatalf("unexpected message %q", out.Message)
	}
	if len(repo.calls) != 0 {
		t.Fatalf("expected no gateway calls, got %v", repo.calls)
	}
}

func TestUpdateInvoice_PersistenceFaultNamesID(t *testing.T) {
	svc, repo, paths, _ := newTestInvoiceService(t)
	repo.fail = errDiskFull

	out := svc.UpdateInvoice(context.Background(), "123", validForm())
	if out.Message != "Database Error: Failed to Update Invoice 123." {
		t.Fatalf("unexpected message %q", out.Message)
	}
	if len(paths.paths) != 0 {
		t.Fatalf("expected no invalidation, got %v", paths.paths)
	}
}

func TestDeleteInvoice_Success(t *testing.T) {
	svc, repo, paths, _ := newTestInvoiceService(t)
	repo.rows["abc"] = domain.Invoice{ID: "abc"}

	out := svc.DeleteInvoice(context.Background(), "abc")
	if out.Failed() {
		t.Fatalf("DeleteInvoice failed: %s", out.Message)
	}
	if out.RedirectTo != "" {
		t.Fatalf("expected no redirect on delete, got %q", out.RedirectTo)
	}
	if _, ok := repo.rows["abc"]; ok {
		t.Fatal("expected row to be gone")
	}
	if diff := cmp.Diff([]string{"/dashboard/invoices"}, paths.paths); diff != "" {
		t.Fatalf("invalidations mismatch (-want +got):\n%s", diff)
	}
}

func TestDeleteInvoice_Twice(t *testing.T) {
	svc, repo, _, _ := newTestInvoiceService(t)
	repo.rows["abc"] = domain.Invoice{ID: "abc"}

	for i := range 2 {
		if out := svc.DeleteInvoice(context.Background(), "abc"); out.Failed() {
			t.Fatalf("delete %d failed: %s", i+1, out.Message)
		}
	}
}

func TestDeleteInvoice_PersistenceFault(t *testing.T) {
	svc, repo, paths, rec := newTestInvoiceService(t)
	repo.fail = errDiskFull

	out := svc.DeleteInvoice(context.Background(), "abc")
	if out.Message != "Database Error: Failed to Delete Invoice abc." {
		t.Fatalf("unexpected message %q", out.Message)
	}
	if len(paths.paths) != 0 {
		t.Fatalf("expected no invalidation, got %v", paths.paths)
	}
	if rec.actions["delete/persistence_error"] != 1 {
		t.Fatalf("expected persistence_error recorded, got %v", rec.actions)
	}
}

func TestListInvoices_PageMath(t *testing.T) {
	svc, repo, _, _ := newTestInvoiceService(t)
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		repo.rows[id] = domain.Invoice{ID: id}
	}

	page, err := svc.ListInvoices(context.Background(), "", 0)
	if err != nil {
		t.Fatalf("ListInvoices: %v", err)
	}
	if page.Page != 1 {
		t.Fatalf("expected page clamped to 1, got %d", page.Page)
	}
	if page.TotalPages != 2 {
		t.Fatalf("expected 2 pages for 7 invoices, got %d", page.TotalPages)
	}
}

func TestListInvoices_HugePageKeepsOffsetInRange(t *testing.T) {
	svc, repo, _, _ := newTestInvoiceService(t)
	maxPage := math.MaxInt32 / service.InvoicesPerPage

	for _, requested := range []int{math.MaxInt, math.MaxInt/service.InvoicesPerPage + 2, maxPage + 1} {
		page, err := svc.ListInvoices(context.Background(), "", requested)
		if err != nil {
			t.Fatalf("ListInvoices(%d): %v", requested, err)
		}
		if page.Page != maxPage {
			t.Fatalf("ListInvoices(%d): expected page clamped to %d, got %d", requested, maxPage, page.Page)
		}
		if repo.lastOffset < 0 || repo.lastOffset > math.MaxInt32 {
			t.Fatalf("ListInvoices(%d): offset %d out of range", requested, repo.lastOffset)
		}
		if repo.lastLimit != service.InvoicesPerPage {
			t.Fatalf("expected limit %d, got %d", service.InvoicesPerPage, repo.lastLimit)
		}
	}
}

func TestListInvoices_Error(t *testing.T) {
	svc, repo, _, _ := newTestInvoiceService(t)
	repo.fail = errDiskFull

	if _, err := svc.ListInvoices(context.Background(), "", 1); err == nil {
		t.Fatal("expected error")
	}
}

func TestPagination(t *testing.T) {
	tests := []struct {
		current, total int
		want           []int
	}{
		{1, 0, []int{}},
		{1, 3, []int{1, 2, 3}},
		{4, 7, []int{1, 2, 3, 4, 5, 6, 7}},
		{2, 10, []int{1, 2, 3, 0, 9, 10}},
		{9, 10, []int{1, 2, 0, 8, 9, 10}},
		{5, 10, []int{1, 0, 4, 5, 6, 0, 10}},
	}
	for _, tt := range tests {
		got := service.Pagination(tt.current, tt.total)
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Fatalf("Pagination(%d, %d) mismatch (-want +got):\n%s", tt.current, tt.total, diff)
		}
	}
}
