package handler

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/a-h/templ"
	"github.com/google/uuid"
	"github.com/msomdec/acme-invoices/internal/domain"
	"github.com/msomdec/acme-invoices/internal/service"
	"github.com/msomdec/acme-invoices/internal/view"
	datastar "github.com/starfederation/datastar-go/datastar"
)

// InvoiceHandler serves the invoices pages and actions.
type InvoiceHandler struct {
	invoices  *service.InvoiceService
	dashboard *service.DashboardService
	pages     *service.PageCache
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(invoices *service.InvoiceService, dashboard *service.DashboardService, pages *service.PageCache) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices, dashboard: dashboard, pages: pages}
}

// HandleList renders the filtered, paginated invoices list. The page body is
// served from the page cache when present.
// GET /dashboard/invoices?query=&page=
func (h *InvoiceHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	page := parsePage(r.URL.Query().Get("page"))
	key := service.PageKey{Path: service.InvoicesPath, Query: canonicalListQuery(query, page)}

	body, ok := h.pages.Get(key)
	if !ok {
		gen := h.pages.Generation(key.Path)
		list, err := h.invoices.ListInvoices(r.Context(), query, page)
		if err != nil {
			slog.Error("list invoices", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		var buf bytes.Buffer
		if err := view.InvoicesContent(list).Render(r.Context(), &buf); err != nil {
			slog.Error("render invoices", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		body = buf.Bytes()
		h.pages.Set(key, gen, body)
	}

	view.Layout("Invoices", SessionFromContext(r.Context()), templ.Raw(string(body))).Render(r.Context(), w)
}

// HandleSearch re-renders the invoices table for the query signal via SSE.
// GET /dashboard/invoices/search
func (h *InvoiceHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	var signals view.ListSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	list, err := h.invoices.ListInvoices(r.Context(), signals.Query, 1)
	if err != nil {
		slog.Error("search invoices", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	sse := datastar.NewSSE(w, r)
	sse.MarshalAndPatchSignals(view.ListSignals{Query: signals.Query, Page: 1})
	sse.PatchElementTempl(view.InvoicesTable(list))
}

// HandleCreatePage renders the empty create form.
// GET /dashboard/invoices/create
func (h *InvoiceHandler) HandleCreatePage(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, http.StatusOK, view.InvoiceForm{})
}

// HandleEditPage renders the edit form for an existing invoice.
// GET /dashboard/invoices/{id}/edit
func (h *InvoiceHandler) HandleEditPage(w http.ResponseWriter, r *http.Request) {
	id, ok := invoiceID(r)
	if !ok {
		h.renderNotFound(w, r)
		return
	}

	inv, err := h.invoices.GetInvoice(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			h.renderNotFound(w, r)
			return
		}
		slog.Error("get invoice", "id", id, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var values domain.FormValues
	values.Set(service.FieldCustomerID, inv.CustomerID)
	values.Set(service.FieldAmount, service.MajorUnits(inv.Amount))
	values.Set(service.FieldStatus, string(inv.Status))
	h.renderForm(w, r, http.StatusOK, view.InvoiceForm{InvoiceID: id, Values: values})
}

// HandleCreate processes the create form.
// POST /dashboard/invoices
func (h *InvoiceHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	values := domain.FormValuesFrom(r.PostForm, service.InvoiceFormFields...)

	out := h.invoices.CreateInvoice(r.Context(), values)
	if out.Failed() {
		h.renderForm(w, r, http.StatusUnprocessableEntity, view.InvoiceForm{
			Values: values, Errors: out.Errors, Message: out.Message,
		})
		return
	}
	http.Redirect(w, r, out.RedirectTo, http.StatusSeeOther)
}

// HandleUpdate processes the edit form.
// POST /dashboard/invoices/{id}
func (h *InvoiceHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := invoiceID(r)
	if !ok {
		h.renderNotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	values := domain.FormValuesFrom(r.PostForm, service.InvoiceFormFields...)

	out := h.invoices.UpdateInvoice(r.Context(), id, values)
	if out.Failed() {
		h.renderForm(w, r, http.StatusUnprocessableEntity, view.InvoiceForm{
			InvoiceID: id, Values: values, Errors: out.Errors, Message: out.Message,
		})
		return
	}
	http.Redirect(w, r, out.RedirectTo, http.StatusSeeOther)
}

// HandleDelete removes an invoice and patches the table in place, or shows
// the failure banner.
// DELETE /dashboard/invoices/{id}
func (h *InvoiceHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := invoiceID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	var signals view.ListSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		slog.Debug("read delete signals", "error", err)
	}

	out := h.invoices.DeleteInvoice(r.Context(), id)
	if out.Failed() {
		sse := datastar.NewSSE(w, r)
		sse.PatchElementTempl(view.ActionError(out.Message))
		return
	}

	list, err := h.invoices.ListInvoices(r.Context(), signals.Query, max(signals.Page, 1))
	if err != nil {
		slog.Error("list invoices after delete", "error", err)
		sse := datastar.NewSSE(w, r)
		sse.PatchElementTempl(view.ActionError("Invoice deleted. Reload the page to see the list."))
		return
	}

	sse := datastar.NewSSE(w, r)
	sse.PatchElementTempl(view.ActionError(""))
	sse.PatchElementTempl(view.InvoicesTable(list))
}

func (h *InvoiceHandler) renderForm(w http.ResponseWriter, r *http.Request, status int, form view.InvoiceForm) {
	customers, err := h.dashboard.Customers(r.Context())
	if err != nil {
		slog.Error("list customers for invoice form", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	form.Customers = customers
	w.WriteHeader(status)
	view.InvoiceFormPage(SessionFromContext(r.Context()), form).Render(r.Context(), w)
}

func (h *InvoiceHandler) renderNotFound(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotFound)
	view.ErrorPage("404 Not Found", "Could not find the requested invoice.").Render(r.Context(), w)
}

// invoiceID returns the {id} path value if it is a well-formed UUID.
func invoiceID(r *http.Request) (string, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return "", false
	}
	return id.String(), true
}

func parsePage(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func canonicalListQuery(query string, page int) string {
	return url.Values{"query": {query}, "page": {strconv.Itoa(page)}}.Encode()
}
