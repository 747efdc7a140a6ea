package domain

import "context"

type Customer struct {
	ID       string
	Name     string
	Email    string
	ImageURL string
}

// CustomerSummary is a customer with aggregate figures over its invoices.
// Totals are in minor units.
type CustomerSummary struct {
	Customer
	TotalInvoices int
	TotalPending  int64
	TotalPaid     int64
}

type CustomerRepository interface {
	Create(ctx context.Context, customer *Customer) error
	List(ctx context.Context) ([]Customer, error)
	ListFiltered(ctx context.Context, query string) ([]CustomerSummary, error)
	Count(ctx context.Context) (int, error)
}
