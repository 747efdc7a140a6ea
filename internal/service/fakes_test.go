package service_test

import (
	"context"
	"errors"
	"sync"

	"github.com/msomdec/acme-invoices/internal/domain"
)

var errDiskFull = errors.New("disk full")

// fakeInvoices records every call and can be told to fail.
type fakeInvoices struct {
	mu      sync.Mutex
	calls   []string
	created []domain.Invoice
	updated []domain.Invoice
	deleted []string
	rows    map[string]domain.Invoice
	fail    error
	events  *[]string

	lastLimit, lastOffset int
}

func newFakeInvoices() *fakeInvoices {
	return &fakeInvoices{rows: make(map[string]domain.Invoice)}
}

func (f *fakeInvoices) record(call string) {
	f.calls = append(f.calls, call)
	if f.events != nil {
		*f.events = append(*f.events, "gateway:"+call)
	}
}

func (f *fakeInvoices) Create(_ context.Context, inv *domain.Invoice) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("create")
	if f.fail != nil {
		return &domain.PersistenceError{Op: "insert invoice", Err: f.fail}
	}
	inv.ID = "11111111-2222-4333-8444-555555555555"
	f.created = append(f.created, *inv)
	f.rows[inv.ID] = *inv
	return nil
}

func (f *fakeInvoices) Update(_ context.Context, inv *domain.Invoice) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("update")
	if f.fail != nil {
		return 0, &domain.PersistenceError{Op: "update invoice", ID: inv.ID, Err: f.fail}
	}
	f.updated = append(f.updated, *inv)
	if _, ok := f.rows[inv.ID]; !ok {
		return 0, nil
	}
	f.rows[inv.ID] = *inv
	return 1, nil
}

func (f *fakeInvoices) Delete(_ context.Context, id string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("delete")
	if f.fail != nil {
		return 0, &domain.PersistenceError{Op: "delete invoice", ID: id, Err: f.fail}
	}
	f.deleted = append(f.deleted, id)
	if _, ok := f.rows[id]; !ok {
		return 0, nil
	}
	delete(f.rows, id)
	return 1, nil
}

func (f *fakeInvoices) GetByID(_ context.Context, id string) (*domain.Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &inv, nil
}

func (f *fakeInvoices) ListFiltered(_ context.Context, _ string, limit, offset int) ([]domain.InvoiceRow, error) {
	f.lastLimit, f.lastOffset = limit, offset
	return nil, f.fail
}

func (f *fakeInvoices) CountFiltered(context.Context, string) (int, error) {
	return len(f.rows), f.fail
}

func (f *fakeInvoices) Latest(context.Context, int) ([]domain.InvoiceRow, error) {
	return nil, f.fail
}

func (f *fakeInvoices) Summary(context.Context) (domain.InvoiceSummary, error) {
	return domain.InvoiceSummary{}, f.fail
}

// fakePaths records invalidated paths.
type fakePaths struct {
	paths  []string
	events *[]string
}

func (f *fakePaths) InvalidatePath(path string) {
	f.paths = append(f.paths, path)
	if f.events != nil {
		*f.events = append(*f.events, "invalidate:"+path)
	}
}

type fakeRecorder struct {
	mu       sync.Mutex
	actions  map[string]int
	hits     int
	misses   int
	invalids int
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{actions: make(map[string]int)}
}

func (r *fakeRecorder) RecordAction(action, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions[action+"/"+outcome]++
}

func (r *fakeRecorder) RecordCacheHit() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hits++
}

func (r *fakeRecorder) RecordCacheMiss() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.misses++
}

func (r *fakeRecorder) RecordCacheInvalidation() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invalids++
}

// fakeUsers is a user repository whose lookups can fail.
type fakeUsers struct {
	byEmail map[string]*domain.User
	fail    error
}

func (f *fakeUsers) Create(_ context.Context, u *domain.User) error {
	if f.byEmail == nil {
		f.byEmail = make(map[string]*domain.User)
	}
	u.ID = "user-" + u.Email
	f.byEmail[u.Email] = u
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}
