package observability

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsDispatchCollectors(t *testing.T) {
	t.Parallel()

	metrics := NewMetrics()

	metrics.IncDispatch("SMS", "sent")
	metrics.IncDispatch("sms", "failed")
	metrics.ObserveProviderSendDuration("hubtel", 120*time.Millisecond)
	metrics.IncAuditDiscarded()
	metrics.IncRateLimited("whatsapp")

	if got := testutil.ToFloat64(metrics.dispatchTotal.WithLabelValues("sms", "sent")); got != 1 {
		t.Fatalf("dispatch_total{sent} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.dispatchTotal.WithLabelValues("sms", "failed")); got != 1 {
		t.Fatalf("dispatch_total{failed} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.auditDiscardedTotal); got != 1 {
		t.Fatalf("audit_discarded_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.rateLimitedTotal.WithLabelValues("whatsapp")); got != 1 {
		t.Fatalf("rate_limited_total = %v, want 1", got)
	}
}

func TestMetricsHTTPMiddlewareRecordsRequest(t *testing.T) {
	t.Parallel()

	metrics := NewMetrics()
	app := fiber.New()
	app.Use(metrics.HTTPMiddleware())
	app.Get("/livez", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/livez", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	if got := testutil.ToFloat64(metrics.httpRequestsTotal.WithLabelValues("GET", "/livez", "200")); got != 1 {
		t.Fatalf("http_requests_total = %v, want 1", got)
	}
}

func TestMetricsHTTPMiddlewareRecordsErrorStatus(t *testing.T) {
	t.Parallel()

	metrics := NewMetrics()
	app := fiber.New()
	app.Use(metrics.HTTPMiddleware())
	app.Get("/boom", func(c *fiber.Ctx) error {
		return errors.New("boom")
	})

	req := httptest.NewRequest("GET", "/boom", nil)
	_, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}

	if got := testutil.ToFloat64(metrics.httpRequestsTotal.WithLabelValues("GET", "/boom", "500")); got != 1 {
		t.Fatalf("http_requests_total = %v, want 1", got)
	}
}
