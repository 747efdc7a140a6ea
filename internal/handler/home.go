package handler

import (
	"net/http"

	"github.com/msomdec/acme-invoices/internal/view"
)

// HandleHome renders the public landing page.
func HandleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	view.HomePage().Render(r.Context(), w)
}
