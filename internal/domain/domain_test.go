package domain_test

import (
	"errors"
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/msomdec/acme-invoices/internal/domain"
)

func TestFormValuesFrom(t *testing.T) {
	v := url.Values{
		"status":  {"paid", "pending"},
		"amount":  {""},
		"ignored": {"x"},
	}
	f := domain.FormValuesFrom(v, "customerId", "amount", "status")

	if diff := cmp.Diff([]string{"amount", "status"}, f.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
	if _, ok := f.Get("customerId"); ok {
		t.Fatal("absent field must not be present")
	}
	if got, ok := f.Get("amount"); !ok || got != "" {
		t.Fatalf("empty field must be present and empty, got %q %v", got, ok)
	}
	if f.Value("status") != "paid" {
		t.Fatalf("expected first value, got %q", f.Value("status"))
	}
	if _, ok := f.Get("ignored"); ok {
		t.Fatal("unlisted field must be dropped")
	}
}

func TestFormValues_SetKeepsPosition(t *testing.T) {
	var f domain.FormValues
	f.Set("a", "1")
	f.Set("b", "2")
	f.Set("a", "3")

	if diff := cmp.Diff([]string{"a", "b"}, f.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
	if f.Value("a") != "3" {
		t.Fatalf("expected overwritten value, got %q", f.Value("a"))
	}
}

func TestFieldErrors_Fields(t *testing.T) {
	fe := domain.FieldErrors{"status": {"x"}, "amount": {"y"}, "customerId": nil}
	if diff := cmp.Diff([]string{"amount", "status"}, fe.Fields()); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestActionOutcome(t *testing.T) {
	if domain.Redirect("/x").Failed() {
		t.Fatal("redirect must not be a failure")
	}
	if (domain.ActionOutcome{}).Failed() {
		t.Fatal("empty outcome must not be a failure")
	}
	if !domain.Failure("boom", nil).Failed() {
		t.Fatal("failure must report failed")
	}
}

func TestPersistenceError(t *testing.T) {
	cause := errors.New("connection refused")
	err := error(&domain.PersistenceError{Op: "update invoice", ID: "123", Err: cause})

	if err.Error() != "update invoice 123: connection refused" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected cause to unwrap")
	}
	var pe *domain.PersistenceError
	if !errors.As(err, &pe) || pe.ID != "123" {
		t.Fatalf("expected PersistenceError with id, got %v", err)
	}
}

func TestSession_Authenticated(t *testing.T) {
	var nilSession *domain.Session
	if nilSession.Authenticated() {
		t.Fatal("nil session must be anonymous")
	}
	if (&domain.Session{}).Authenticated() {
		t.Fatal("session without user must be anonymous")
	}
	if !(&domain.Session{UserID: "u"}).Authenticated() {
		t.Fatal("session with user must be authenticated")
	}
}

func TestParseInvoiceStatus(t *testing.T) {
	for _, s := range []string{"pending", "paid"} {
		if _, ok := domain.ParseInvoiceStatus(s); !ok {
			t.Fatalf("expected %q to parse", s)
		}
	}
	for _, s := range []string{"", "Paid", "overdue"} {
		if _, ok := domain.ParseInvoiceStatus(s); ok {
			t.Fatalf("expected %q to be rejected", s)
		}
	}
}
