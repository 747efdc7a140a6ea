package service

import (
	"context"
	"fmt"

	"github.com/msomdec/acme-invoices/internal/domain"
)

const latestInvoicesShown = 5

// Overview is the data behind the dashboard landing page.
type Overview struct {
	Invoices       domain.InvoiceSummary
	CustomerCount  int
	LatestInvoices []domain.InvoiceRow
}

// DashboardService serves the overview and customer pages.
type DashboardService struct {
	invoices  domain.InvoiceRepository
	customers domain.CustomerRepository
}

func NewDashboardService(invoices domain.InvoiceRepository, customers domain.CustomerRepository) *DashboardService {
	return &DashboardService{invoices: invoices, customers: customers}
}

// Overview gathers the card figures and the most recent invoices.
func (s *DashboardService) Overview(ctx context.Context) (*Overview, error) {
	summary, err := s.invoices.Summary(ctx)
	if err != nil {
		return nil, fmt.Errorf("invoice summary: %w", err)
	}

	count, err := s.customers.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count customers: %w", err)
	}

	latest, err := s.invoices.Latest(ctx, latestInvoicesShown)
	if err != nil {
		return nil, fmt.Errorf("latest invoices: %w", err)
	}

	return &Overview{Invoices: summary, CustomerCount: count, LatestInvoices: latest}, nil
}

// Customers lists every customer, for the invoice form's select box.
func (s *DashboardService) Customers(ctx context.Context) ([]domain.Customer, error) {
	return s.customers.List(ctx)
}

// SearchCustomers lists customers matching query with their invoice totals.
func (s *DashboardService) SearchCustomers(ctx context.Context, query string) ([]domain.CustomerSummary, error) {
	return s.customers.ListFiltered(ctx, query)
}
