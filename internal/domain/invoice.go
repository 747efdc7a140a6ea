package domain

import "context"

type InvoiceStatus string

const (
	InvoiceStatusPending InvoiceStatus = "pending"
	InvoiceStatusPaid    InvoiceStatus = "paid"
)

// InvoiceStatuses lists every valid status in display order.
var InvoiceStatuses = []InvoiceStatus{InvoiceStatusPending, InvoiceStatusPaid}

// ParseInvoiceStatus reports whether s is exactly one of the known statuses.
func ParseInvoiceStatus(s string) (InvoiceStatus, bool) {
	for _, st := range InvoiceStatuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// Invoice is a bill issued to a customer. Amount is stored in minor units
// (cents). ID and Date are assigned at creation and never change.
type Invoice struct {
	ID         string
	CustomerID string
	Amount     int64
	Status     InvoiceStatus
	Date       string // YYYY-MM-DD
}

// InvoiceRow is an invoice joined with the customer it was issued to.
type InvoiceRow struct {
	Invoice
	CustomerName     string
	CustomerEmail    string
	CustomerImageURL string
}

// InvoiceSummary holds the figures shown on the dashboard cards.
type InvoiceSummary struct {
	Count        int
	TotalPaid    int64
	TotalPending int64
}

// InvoiceRepository is the persistence gateway for invoices. Each write runs
// exactly one statement; failures are reported as *PersistenceError.
// Update and Delete report the number of rows affected and do not treat zero
// as an error.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *Invoice) error
	Update(ctx context.Context, invoice *Invoice) (int64, error)
	Delete(ctx context.Context, id string) (int64, error)
	GetByID(ctx context.Context, id string) (*Invoice, error)
	ListFiltered(ctx context.Context, query string, limit, offset int) ([]InvoiceRow, error)
	CountFiltered(ctx context.Context, query string) (int, error)
	Latest(ctx context.Context, limit int) ([]InvoiceRow, error)
	Summary(ctx context.Context) (InvoiceSummary, error)
}
