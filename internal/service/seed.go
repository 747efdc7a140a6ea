package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/msomdec/acme-invoices/internal/domain"
)

// Demo account credentials created by SeedDemo.
const (
	DemoUserEmail    = "user@nextmail.com"
	DemoUserPassword = "123456"
)

var demoCustomers = []domain.Customer{
	{Name: "Evil Rabbit", Email: "evil@rabbit.com"},
	{Name: "Delba de Oliveira", Email: "delba@oliveira.com"},
	{Name: "Lee Robinson", Email: "lee@robinson.com"},
	{Name: "Michael Novotny", Email: "michael@novotny.com"},
	{Name: "Amy Burns", Email: "amy@burns.com"},
	{Name: "Balazs Orban", Email: "balazs@orban.com"},
}

type demoInvoice struct {
	customer int
	amount   int64
	status   domain.InvoiceStatus
	daysAgo  int
}

var demoInvoices = []demoInvoice{
	{0, 15795, domain.InvoiceStatusPending, 2},
	{1, 20348, domain.InvoiceStatusPending, 5},
	{4, 3040, domain.InvoiceStatusPaid, 9},
	{3, 44800, domain.InvoiceStatusPaid, 14},
	{5, 34577, domain.InvoiceStatusPending, 20},
	{2, 54246, domain.InvoiceStatusPending, 31},
	{0, 666, domain.InvoiceStatusPending, 40},
	{3, 32545, domain.InvoiceStatusPaid, 52},
	{4, 1250, domain.InvoiceStatusPaid, 61},
	{5, 8546, domain.InvoiceStatusPaid, 75},
}

// SeedDemo creates the demo user and, on an empty database, the demo
// customers and invoices. Running it again changes nothing.
func SeedDemo(ctx context.Context, auth *AuthService, store domain.Store) error {
	if err := seedDemoUser(ctx, auth, store.Users()); err != nil {
		return err
	}

	count, err := store.Customers().Count(ctx)
	if err != nil {
		return fmt.Errorf("count customers: %w", err)
	}
	if count > 0 {
		return nil
	}

	customers := make([]domain.Customer, len(demoCustomers))
	for i, c := range demoCustomers {
		customers[i] = c
		if err := store.Customers().Create(ctx, &customers[i]); err != nil {
			return fmt.Errorf("create customer %s: %w", c.Name, err)
		}
	}

	today := time.Now().UTC()
	for _, d := range demoInvoices {
		inv := &domain.Invoice{
			CustomerID: customers[d.customer].ID,
			Amount:     d.amount,
			Status:     d.status,
			Date:       today.AddDate(0, 0, -d.daysAgo).Format(time.DateOnly),
		}
		if err := store.Invoices().Create(ctx, inv); err != nil {
			return fmt.Errorf("create invoice: %w", err)
		}
	}

	slog.Info("demo data seeded", "customers", len(customers), "invoices", len(demoInvoices))
	return nil
}

func seedDemoUser(ctx context.Context, auth *AuthService, users domain.UserRepository) error {
	_, err := users.GetByEmail(ctx, DemoUserEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("get demo user: %w", err)
	}

	hash, err := auth.HashPassword(DemoUserPassword)
	if err != nil {
		return err
	}
	user := &domain.User{Name: "User", Email: DemoUserEmail, PasswordHash: hash}
	if err := users.Create(ctx, user); err != nil {
		return fmt.Errorf("create demo user: %w", err)
	}
	slog.Info("demo user created", "email", DemoUserEmail)
	return nil
}
