package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/msomdec/acme-invoices/internal/domain"
)

type customerRepo struct {
	db *sql.DB
}

func (r *customerRepo) Create(ctx context.Context, c *domain.Customer) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO customers (name, email, image_url) VALUES ($1, $2, $3) RETURNING id`,
		c.Name, c.Email, c.ImageURL,
	).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

func (r *customerRepo) List(ctx context.Context) ([]domain.Customer, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, email, image_url FROM customers ORDER BY name ASC`)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "list customers", Err: err}
	}
	defer rows.Close()

	var customers []domain.Customer
	for rows.Next() {
		var c domain.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.ImageURL); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (r *customerRepo) ListFiltered(ctx context.Context, query string) ([]domain.CustomerSummary, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT c.id, c.name, c.email, c.image_url,
		        COUNT(i.id),
		        COALESCE(SUM(CASE WHEN i.status = 'pending' THEN i.amount ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN i.status = 'paid' THEN i.amount ELSE 0 END), 0)
		 FROM customers c
		 LEFT JOIN invoices i ON i.customer_id = c.id
		 WHERE c.name ILIKE $1 OR c.email ILIKE $1
		 GROUP BY c.id, c.name, c.email, c.image_url
		 ORDER BY c.name ASC`,
		likePattern(query))
	if err != nil {
		return nil, &domain.PersistenceError{Op: "list filtered customers", Err: err}
	}
	defer rows.Close()

	var customers []domain.CustomerSummary
	for rows.Next() {
		var c domain.CustomerSummary
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.ImageURL,
			&c.TotalInvoices, &c.TotalPending, &c.TotalPaid); err != nil {
			return nil, fmt.Errorf("scan customer summary: %w", err)
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (r *customerRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM customers").Scan(&n); err != nil {
		return 0, &domain.PersistenceError{Op: "count customers", Err: err}
	}
	return n, nil
}
