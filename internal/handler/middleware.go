package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"runtime/debug"
	"time"

	"github.com/msomdec/acme-invoices/internal/domain"
	"github.com/msomdec/acme-invoices/internal/service"
)

type contextKey string

const sessionContextKey contextKey = "session"

// SessionCookie is the name of the cookie holding the session token.
const SessionCookie = "auth_token"

// SessionFromContext extracts the session from the request context.
// Returns nil for an anonymous request.
func SessionFromContext(ctx context.Context) *domain.Session {
	session, _ := ctx.Value(sessionContextKey).(*domain.Session)
	return session
}

// Gate resolves the session from the auth cookie, stores it in the request
// context and applies the route guard. Anonymous visitors to the protected
// area are sent to the login page with a callbackUrl; signed-in visitors to
// public pages are sent to the dashboard.
func Gate(auth *service.AuthService, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := sessionFromRequest(r, auth)
		if session != nil {
			r = r.WithContext(context.WithValue(r.Context(), sessionContextKey, session))
		}

		access := service.Authorize(session, r.URL.Path)
		switch access.Decision {
		case domain.AccessDeny:
			target := access.RedirectTo + "?" + url.Values{"callbackUrl": {r.URL.RequestURI()}}.Encode()
			http.Redirect(w, r, target, http.StatusSeeOther)
		case domain.AccessRedirect:
			http.Redirect(w, r, access.RedirectTo, http.StatusSeeOther)
		default:
			next.ServeHTTP(w, r)
		}
	})
}

func sessionFromRequest(r *http.Request, auth *service.AuthService) *domain.Session {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		return nil
	}
	session, err := auth.Inspect(r.Context(), cookie.Value)
	if err != nil {
		if !errors.Is(err, domain.ErrUnauthorized) {
			slog.Error("inspect session", "error", err)
		}
		return nil
	}
	return session
}

// SecurityHeaders sets standard security response headers.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
		next.ServeHTTP(w, r)
	})
}

// RequestObserver records per-request metrics.
type RequestObserver interface {
	ObserveRequest(method string, status int, d time.Duration)
}

// statusRecorder wraps http.ResponseWriter to capture the status code.
type statusRecorder struct {
	http.ResponseWriter
	status  int
	written bool
}

func (sr *statusRecorder) WriteHeader(code int) {
	if !sr.written {
		sr.status = code
		sr.written = true
	}
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if !sr.written {
		sr.status = http.StatusOK
		sr.written = true
	}
	return sr.ResponseWriter.Write(b)
}

// Flush lets SSE responses stream through the recorder.
func (sr *statusRecorder) Flush() {
	if f, ok := sr.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (sr *statusRecorder) Unwrap() http.ResponseWriter {
	return sr.ResponseWriter
}

// LogRequests logs every request at a level chosen by its status class and
// reports it to obs.
func LogRequests(obs RequestObserver, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		d := time.Since(start)
		obs.ObserveRequest(r.Method, rec.status, d)

		level := slog.LevelInfo
		if rec.status >= 500 {
			level = slog.LevelError
		} else if rec.status >= 400 {
			level = slog.LevelWarn
		}
		slog.Log(r.Context(), level, "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", float64(d.Microseconds())/1000,
		)
	})
}

// Recover turns a panic in a handler into a 500 response.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("panic recovered",
					"panic", rec,
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
