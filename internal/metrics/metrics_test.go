package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/msomdec/acme-invoices/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollector_RecordAction(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := metrics.NewCollector(reg)

	c.RecordAction("create", "success")
	c.RecordAction("create", "success")
	c.RecordAction("delete", "persistence_error")

	expected := `
# HELP acme_invoice_actions_total Invoice actions by action and outcome.
# TYPE acme_invoice_actions_total counter
acme_invoice_actions_total{action="create",outcome="success"} 2
acme_invoice_actions_total{action="delete",outcome="persistence_error"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "acme_invoice_actions_total"); err != nil {
		t.Fatalf("unexpected metrics: %v", err)
	}
}

func TestCollector_CacheAndLogin(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := metrics.NewCollector(reg)

	c.RecordCacheHit()
	c.RecordCacheMiss()
	c.RecordCacheMiss()
	c.RecordCacheInvalidation()
	c.RecordLogin("invalid_credentials")

	if n := testutil.CollectAndCount(reg, "acme_page_cache_events_total"); n != 3 {
		t.Fatalf("expected 3 cache event series, got %d", n)
	}
	if n := testutil.CollectAndCount(reg, "acme_login_attempts_total"); n != 1 {
		t.Fatalf("expected 1 login series, got %d", n)
	}
}

func TestHandler_ServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := metrics.NewCollector(reg)
	c.ObserveRequest(http.MethodGet, http.StatusOK, 15*time.Millisecond)

	srv := httptest.NewServer(metrics.Handler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET metrics: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `acme_http_requests_total{method="GET",status_code="200"} 1`) {
		t.Fatalf("expected request counter in output, got:\n%s", body)
	}
}
