package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/msomdec/acme-invoices/internal/domain"
)

type invoiceRepo struct {
	db *sql.DB
}

const invoiceRowColumns = `i.id, i.customer_id, i.amount, i.status, i.date::text, c.name, c.email, c.image_url`

const invoiceFilter = `c.name ILIKE $1
		    OR c.email ILIKE $1
		    OR i.amount::text ILIKE $1
		    OR i.date::text ILIKE $1
		    OR i.status ILIKE $1`

func (r *invoiceRepo) Create(ctx context.Context, inv *domain.Invoice) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO invoices (customer_id, amount, status, date)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		inv.CustomerID, inv.Amount, string(inv.Status), inv.Date,
	).Scan(&inv.ID)
	if err != nil {
		return &domain.PersistenceError{Op: "insert invoice", Err: err}
	}
	return nil
}

func (r *invoiceRepo) Update(ctx context.Context, inv *domain.Invoice) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE invoices SET customer_id = $1, amount = $2, status = $3 WHERE id = $4`,
		inv.CustomerID, inv.Amount, string(inv.Status), inv.ID,
	)
	if err != nil {
		return 0, &domain.PersistenceError{Op: "update invoice", ID: inv.ID, Err: err}
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, &domain.PersistenceError{Op: "update invoice", ID: inv.ID, Err: err}
	}
	return n, nil
}

func (r *invoiceRepo) Delete(ctx context.Context, id string) (int64, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM invoices WHERE id = $1", id)
	if err != nil {
		return 0, &domain.PersistenceError{Op: "delete invoice", ID: id, Err: err}
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, &domain.PersistenceError{Op: "delete invoice", ID: id, Err: err}
	}
	return n, nil
}

func (r *invoiceRepo) GetByID(ctx context.Context, id string) (*domain.Invoice, error) {
	inv := &domain.Invoice{}
	var status string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, customer_id, amount, status, date::text FROM invoices WHERE id = $1`, id,
	).Scan(&inv.ID, &inv.CustomerID, &inv.Amount, &status, &inv.Date)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, &domain.PersistenceError{Op: "get invoice", ID: id, Err: err}
	}
	inv.Status = domain.InvoiceStatus(status)
	return inv, nil
}

func (r *invoiceRepo) ListFiltered(ctx context.Context, query string, limit, offset int) ([]domain.InvoiceRow, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+invoiceRowColumns+`
		 FROM invoices i JOIN customers c ON i.customer_id = c.id
		 WHERE `+invoiceFilter+`
		 ORDER BY i.date DESC, i.id
		 LIMIT $2 OFFSET $3`,
		likePattern(query), limit, offset)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "list filtered invoices", Err: err}
	}
	return scanInvoiceRows(rows)
}

func (r *invoiceRepo) CountFiltered(ctx context.Context, query string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*)
		 FROM invoices i JOIN customers c ON i.customer_id = c.id
		 WHERE `+invoiceFilter,
		likePattern(query),
	).Scan(&n)
	if err != nil {
		return 0, &domain.PersistenceError{Op: "count filtered invoices", Err: err}
	}
	return n, nil
}

func (r *invoiceRepo) Latest(ctx context.Context, limit int) ([]domain.InvoiceRow, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+invoiceRowColumns+`
		 FROM invoices i JOIN customers c ON i.customer_id = c.id
		 ORDER BY i.date DESC, i.id
		 LIMIT $1`, limit)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "list latest invoices", Err: err}
	}
	return scanInvoiceRows(rows)
}

func (r *invoiceRepo) Summary(ctx context.Context) (domain.InvoiceSummary, error) {
	var s domain.InvoiceSummary
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(CASE WHEN status = 'paid' THEN amount ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN status = 'pending' THEN amount ELSE 0 END), 0)
		 FROM invoices`,
	).Scan(&s.Count, &s.TotalPaid, &s.TotalPending)
	if err != nil {
		return s, &domain.PersistenceError{Op: "summarize invoices", Err: err}
	}
	return s, nil
}

func scanInvoiceRows(rows *sql.Rows) ([]domain.InvoiceRow, error) {
	defer rows.Close()

	var invoices []domain.InvoiceRow
	for rows.Next() {
		var r domain.InvoiceRow
		var status string
		if err := rows.Scan(&r.ID, &r.CustomerID, &r.Amount, &status, &r.Date,
			&r.CustomerName, &r.CustomerEmail, &r.CustomerImageURL); err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		r.Status = domain.InvoiceStatus(status)
		invoices = append(invoices, r)
	}
	return invoices, rows.Err()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern builds a substring ILIKE pattern that treats the query
// literally. Backslash is the default escape character in Postgres.
func likePattern(query string) string {
	return "%" + likeEscaper.Replace(query) + "%"
}
