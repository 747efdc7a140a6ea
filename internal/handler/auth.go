package handler

import (
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/msomdec/acme-invoices/internal/domain"
	"github.com/msomdec/acme-invoices/internal/service"
	"github.com/msomdec/acme-invoices/internal/view"
)

// LoginRecorder counts login attempts by result.
type LoginRecorder interface {
	RecordLogin(result string)
}

// AuthHandler handles sign-in and sign-out.
type AuthHandler struct {
	auth         *service.AuthService
	limiter      *service.LoginLimiter
	recorder     LoginRecorder
	cookieSecure bool
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *service.AuthService, limiter *service.LoginLimiter, recorder LoginRecorder, cookieSecure bool) *AuthHandler {
	return &AuthHandler{auth: auth, limiter: limiter, recorder: recorder, cookieSecure: cookieSecure}
}

// HandleLoginPage renders the login form.
// GET /login
func (h *AuthHandler) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	view.LoginPage(view.LoginForm{CallbackURL: r.URL.Query().Get("callbackUrl")}).Render(r.Context(), w)
}

// HandleLogin processes the login form. On success it sets the session cookie
// and redirects to the callback URL or the dashboard.
// POST /login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	form := view.LoginForm{
		Email:       r.PostFormValue("email"),
		CallbackURL: r.PostFormValue("redirectTo"),
	}

	if !h.limiter.Allow(clientIP(r)) {
		h.recorder.RecordLogin("rate_limited")
		form.Error = "Too many login attempts. Please try again later."
		w.WriteHeader(http.StatusTooManyRequests)
		view.LoginPage(form).Render(r.Context(), w)
		return
	}

	token, err := h.auth.Authenticate(r.Context(), form.Email, r.PostFormValue("password"))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			h.recorder.RecordLogin("invalid_credentials")
			form.Error = "Invalid credentials."
			w.WriteHeader(http.StatusUnauthorized)
			view.LoginPage(form).Render(r.Context(), w)
			return
		}
		slog.Error("authenticate user", "error", err)
		h.recorder.RecordLogin("error")
		form.Error = "Something went wrong."
		w.WriteHeader(http.StatusInternalServerError)
		view.LoginPage(form).Render(r.Context(), w)
		return
	}

	h.recorder.RecordLogin("success")
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.auth.SessionTTL().Seconds()),
	})
	http.Redirect(w, r, safeRedirect(form.CallbackURL), http.StatusSeeOther)
}

// HandleLogout clears the session cookie and returns to the home page.
// POST /logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// safeRedirect keeps only same-site absolute paths.
func safeRedirect(target string) string {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return service.DashboardPath
	}
	return target
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
