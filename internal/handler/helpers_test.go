package handler_test

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/msomdec/acme-invoices/internal/domain"
	"github.com/msomdec/acme-invoices/internal/handler"
	"github.com/msomdec/acme-invoices/internal/metrics"
	"github.com/msomdec/acme-invoices/internal/repository/sqlite"
	"github.com/msomdec/acme-invoices/internal/service"
	"github.com/prometheus/client_golang/prometheus"
)

const testJWTSecret = "test-secret-for-handler-tests-0123456789"

const (
	testEmail    = "user@example.com"
	testPassword = "password123"
)

type testEnv struct {
	db       *sqlite.DB
	auth     *service.AuthService
	pages    *service.PageCache
	customer domain.Customer
	srv      *httptest.Server
}

func newTestAuthService(t *testing.T) (*service.AuthService, *sqlite.DB) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	// Use cost 4 for fast tests.
	return service.NewAuthService(db.Users(), testJWTSecret, 4, time.Hour), db
}

func newTestEnv(t *testing.T, loginBurst int) *testEnv {
	t.Helper()
	auth, db := newTestAuthService(t)
	ctx := context.Background()

	hash, err := auth.HashPassword(testPassword)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if err := db.Users().Create(ctx, &domain.User{Name: "Test User", Email: testEmail, PasswordHash: hash}); err != nil {
		t.Fatalf("create user: %v", err)
	}
	customer := domain.Customer{Name: "Amy Burns", Email: "amy@burns.com"}
	if err := db.Customers().Create(ctx, &customer); err != nil {
		t.Fatalf("create customer: %v", err)
	}

	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)
	pages := service.NewPageCache(time.Minute, collector)
	t.Cleanup(pages.Stop)
	limiter := service.NewLoginLimiter(0, loginBurst, time.Minute)
	t.Cleanup(limiter.Stop)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, handler.Deps{
		Auth:      auth,
		Invoices:  service.NewInvoiceService(db.Invoices(), pages, collector),
		Dashboard: service.NewDashboardService(db.Invoices(), db.Customers()),
		Pages:     pages,
		Limiter:   limiter,
		Metrics:   collector,
		Gatherer:  reg,
	})

	srv := httptest.NewServer(handler.Recover(handler.LogRequests(collector, handler.SecurityHeaders(mux))))
	t.Cleanup(srv.Close)

	return &testEnv{db: db, auth: auth, pages: pages, customer: customer, srv: srv}
}

// newClient returns a client with a cookie jar that does not follow redirects.
func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("create cookie jar: %v", err)
	}
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse // don't follow redirects automatically
		},
	}
}

func sessionToken(t *testing.T, auth *service.AuthService) string {
	t.Helper()
	token, err := auth.Authenticate(context.Background(), testEmail, testPassword)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	return token
}
