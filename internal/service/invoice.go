package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/msomdec/acme-invoices/internal/domain"
)

// InvoicesPath is the invoices list page. It is invalidated after every
// successful invoice mutation and is where create and update navigate to.
const InvoicesPath = "/dashboard/invoices"

// InvoicesPerPage is the page size of the invoices list.
const InvoicesPerPage = 6

// PathInvalidator marks the cached rendering of a page as stale.
type PathInvalidator interface {
	InvalidatePath(path string)
}

// ActionRecorder counts invoice action outcomes.
type ActionRecorder interface {
	RecordAction(action, outcome string)
}

// Action outcome labels.
const (
	OutcomeSuccess          = "success"
	OutcomeValidationError  = "validation_error"
	OutcomePersistenceError = "persistence_error"
)

// InvoiceService runs the create, update and delete actions and serves the
// invoice read queries.
type InvoiceService struct {
	invoices domain.InvoiceRepository
	paths    PathInvalidator
	recorder ActionRecorder
	now      func() time.Time
}

type InvoiceOption func(*InvoiceService)

// WithClock replaces the clock used to date new invoices.
func WithClock(now func() time.Time) InvoiceOption {
	return func(s *InvoiceService) { s.now = now }
}

// NewInvoiceService creates a new InvoiceService.
func NewInvoiceService(invoices domain.InvoiceRepository, paths PathInvalidator, recorder ActionRecorder, opts ...InvoiceOption) *InvoiceService {
	s := &InvoiceService{
		invoices: invoices,
		paths:    paths,
		recorder: recorder,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateInvoice validates the form and inserts a new invoice dated today.
// On success the invoices page is invalidated and the outcome redirects to it.
func (s *InvoiceService) CreateInvoice(ctx context.Context, form domain.FormValues) domain.ActionOutcome {
	res := ValidateCreateInvoice(form)
	if !res.OK() {
		slog.Debug("create invoice rejected", "fields", res.Errors.Fields())
		s.recorder.RecordAction("create", OutcomeValidationError)
		return domain.Failure(res.Message+" Failed to Create Invoice.", res.Errors)
	}

	inv := &domain.Invoice{
		CustomerID: res.Fields.CustomerID,
		Amount:     MinorUnits(res.Fields.Amount),
		Status:     res.Fields.Status,
		Date:       s.today(),
	}
	if err := s.invoices.Create(ctx, inv); err != nil {
		slog.Error("create invoice", "error", err)
		s.recorder.RecordAction("create", OutcomePersistenceError)
		return domain.Failure("Database Error: Failed to Create Invoice.", nil)
	}

	slog.Info("invoice created", "id", inv.ID, "customer_id", inv.CustomerID)
	s.recorder.RecordAction("create", OutcomeSuccess)
	s.paths.InvalidatePath(InvoicesPath)
	return domain.Redirect(InvoicesPath)
}

// UpdateInvoice validates the form and overwrites customer, amount and status
// of the invoice with the given id. The date is left unchanged.
func (s *InvoiceService) UpdateInvoice(ctx context.Context, id string, form domain.FormValues) domain.ActionOutcome {
	res := ValidateUpdateInvoice(id, form)
	if !res.OK() {
		slog.Debug("update invoice rejected", "id", id, "fields", res.Errors.Fields())
		s.recorder.RecordAction("update", OutcomeValidationError)
		return domain.Failure(res.Message+" Failed to Update Invoice.", res.Errors)
	}

	inv := &domain.Invoice{
		ID:         id,
		CustomerID: res.Fields.CustomerID,
		Amount:     MinorUnits(res.Fields.Amount),
		Status:     res.Fields.Status,
	}
	n, err := s.invoices.Update(ctx, inv)
	if err != nil {
		slog.Error("update invoice", "id", id, "error", err)
		s.recorder.RecordAction("update", OutcomePersistenceError)
		return domain.Failure(fmt.Sprintf("Database Error: Failed to Update Invoice %s.", id), nil)
	}
	if n == 0 {
		slog.Debug("update matched no invoice", "id", id)
	}

	s.recorder.RecordAction("update", OutcomeSuccess)
	s.paths.InvalidatePath(InvoicesPath)
	return domain.Redirect(InvoicesPath)
}

// DeleteInvoice removes the invoice with the given id. Deleting an id that
// does not exist succeeds. The outcome carries no redirect.
func (s *InvoiceService) DeleteInvoice(ctx context.Context, id string) domain.ActionOutcome {
	n, err := s.invoices.Delete(ctx, id)
	if err != nil {
		slog.Error("delete invoice", "id", id, "error", err)
		s.recorder.RecordAction("delete", OutcomePersistenceError)
		return domain.Failure(fmt.Sprintf("Database Error: Failed to Delete Invoice %s.", id), nil)
	}
	if n == 0 {
		slog.Debug("delete matched no invoice", "id", id)
	}

	s.recorder.RecordAction("delete", OutcomeSuccess)
	s.paths.InvalidatePath(InvoicesPath)
	return domain.ActionOutcome{}
}

func (s *InvoiceService) today() string {
	return s.now().UTC().Format(time.DateOnly)
}

// InvoicePage is one page of the filtered invoices list.
type InvoicePage struct {
	Query      string
	Page       int
	TotalPages int
	Invoices   []domain.InvoiceRow
}

// maxListPage keeps the row offset of a requested page within an int32.
const maxListPage = math.MaxInt32 / InvoicesPerPage

// ListInvoices returns the requested page of invoices matching query. Pages
// start at 1; a page below 1 is treated as 1 and one past maxListPage as
// maxListPage.
func (s *InvoiceService) ListInvoices(ctx context.Context, query string, page int) (*InvoicePage, error) {
	page = min(max(page, 1), maxListPage)

	total, err := s.invoices.CountFiltered(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("count invoices: %w", err)
	}

	rows, err := s.invoices.ListFiltered(ctx, query, InvoicesPerPage, (page-1)*InvoicesPerPage)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}

	return &InvoicePage{
		Query:      query,
		Page:       page,
		TotalPages: (total + InvoicesPerPage - 1) / InvoicesPerPage,
		Invoices:   rows,
	}, nil
}

// GetInvoice returns a single invoice, or domain.ErrNotFound.
func (s *InvoiceService) GetInvoice(ctx context.Context, id string) (*domain.Invoice, error) {
	return s.invoices.GetByID(ctx, id)
}

// Pagination returns the page numbers to show for a pager, with 0 standing
// for a gap. Up to seven pages are listed in full.
func Pagination(current, total int) []int {
	if total <= 7 {
		pages := make([]int, total)
		for i := range pages {
			pages[i] = i + 1
		}
		return pages
	}
	switch {
	case current <= 3:
		return []int{1, 2, 3, 0, total - 1, total}
	case current >= total-2:
		return []int{1, 2, 0, total - 2, total - 1, total}
	default:
		return []int{1, 0, current - 1, current, current + 1, 0, total}
	}
}
