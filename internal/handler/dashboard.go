package handler

import (
	"log/slog"
	"net/http"

	"github.com/msomdec/acme-invoices/internal/service"
	"github.com/msomdec/acme-invoices/internal/view"
)

// DashboardHandler handles the overview and customers pages.
type DashboardHandler struct {
	dashboard *service.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// HandleDashboard renders the overview cards and the latest invoices.
func (h *DashboardHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	ov, err := h.dashboard.Overview(r.Context())
	if err != nil {
		slog.Error("load dashboard overview", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	view.DashboardPage(SessionFromContext(r.Context()), ov).Render(r.Context(), w)
}

// HandleCustomers renders the customers table filtered by ?query=.
func (h *DashboardHandler) HandleCustomers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	customers, err := h.dashboard.SearchCustomers(r.Context(), query)
	if err != nil {
		slog.Error("search customers", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	view.CustomersPage(SessionFromContext(r.Context()), query, customers).Render(r.Context(), w)
}
