package handler

import (
	"net/http"

	"github.com/msomdec/acme-invoices/internal/metrics"
	"github.com/msomdec/acme-invoices/internal/service"
	"github.com/prometheus/client_golang/prometheus"
)

// Deps holds what the routes need.
type Deps struct {
	Auth         *service.AuthService
	Invoices     *service.InvoiceService
	Dashboard    *service.DashboardService
	Pages        *service.PageCache
	Limiter      *service.LoginLimiter
	Metrics      *metrics.Collector
	Gatherer     prometheus.Gatherer
	CookieSecure bool
}

// RegisterRoutes sets up all HTTP routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, d Deps) {
	authHandler := NewAuthHandler(d.Auth, d.Limiter, d.Metrics, d.CookieSecure)
	dashboardHandler := NewDashboardHandler(d.Dashboard)
	invoiceHandler := NewInvoiceHandler(d.Invoices, d.Dashboard, d.Pages)

	gated := func(h http.HandlerFunc) http.Handler {
		return Gate(d.Auth, h)
	}

	mux.HandleFunc("GET /healthz", HandleHealthz)
	mux.Handle("GET /metrics", metrics.Handler(d.Gatherer))

	mux.Handle("GET /{$}", gated(HandleHome))
	mux.Handle("GET /login", gated(authHandler.HandleLoginPage))
	mux.Handle("POST /login", gated(authHandler.HandleLogin))
	mux.HandleFunc("POST /logout", authHandler.HandleLogout)

	mux.Handle("GET /dashboard", gated(dashboardHandler.HandleDashboard))
	mux.Handle("GET /dashboard/customers", gated(dashboardHandler.HandleCustomers))

	mux.Handle("GET /dashboard/invoices", gated(invoiceHandler.HandleList))
	mux.Handle("GET /dashboard/invoices/search", gated(invoiceHandler.HandleSearch))
	mux.Handle("GET /dashboard/invoices/create", gated(invoiceHandler.HandleCreatePage))
	mux.Handle("GET /dashboard/invoices/{id}/edit", gated(invoiceHandler.HandleEditPage))
	mux.Handle("POST /dashboard/invoices", gated(invoiceHandler.HandleCreate))
	mux.Handle("POST /dashboard/invoices/{id}", gated(invoiceHandler.HandleUpdate))
	mux.Handle("DELETE /dashboard/invoices/{id}", gated(invoiceHandler.HandleDelete))
}
