package handlers_test

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"stockhub/internal/config"
)

func TestHealthAndNotFound(t *testing.T) {
	app, _ := newTestApp(t, config.Config{}, nil)

	resp, body := do(t, app, "GET", "/healthz", nil)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), `"ok":true`) {
		t.Fatalf("healthz: %d %s", resp.StatusCode, body)
	}
	resp, body = do(t, app, "GET", "/api/nope", nil)
	if resp.StatusCode != http.StatusNotFound || errorText(t, body) != "Route not found." {
		t.Fatalf("404: %d %s", resp.StatusCode, body)
	}
	if resp.Header.Get("X-Request-Id") == "" {
		t.Fatal("request id header missing")
	}
}

func TestLowStockReportPage(t *testing.T) {
	app, _ := newTestApp(t, config.Config{}, nil)

	resp, body := do(t, app, "GET", "/reports/low-stock", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("report: %d %s", resp.StatusCode, body)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("content type: %q", ct)
	}
	s := string(body)
	for _, want := range []string{"Low stock report", "Oat Milk 1L", "Harbor", "2 record(s)"} {
		if !strings.Contains(s, want) {
			t.Errorf("report missing %q", want)
		}
	}
	if strings.Contains(s, "Paper Cups") {
		t.Error("report lists a record above its threshold")
	}
}

// Storage failures surface as a generic 500, the cause only in the log.
func TestPersistenceFailureDoesNotLeak(t *testing.T) {
	app, db := newTestApp(t, config.Config{}, nil)
	_ = db.Close()

	var resp *http.Response
	var body []byte
	entries := captureLogs(t, func() {
		resp, body = do(t, app, "GET", "/api/inventory/alerts", nil)
	})
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("want 500, got %d", resp.StatusCode)
	}
	if msg := errorText(t, body); msg != "Failed to persist changes." {
		t.Fatalf("message: %q", msg)
	}
	if strings.Contains(string(body), "sql") {
		t.Fatalf("internal details leaked: %s", body)
	}
	e, ok := findAction(entries, "inventory.alerts.fail")
	if !ok || e.Level != "error" || !strings.Contains(e.Err, "closed") {
		t.Fatalf("expected error log with cause, got %+v", entries)
	}
}

func TestAuditAndAccessLogs(t *testing.T) {
	app, _ := newTestApp(t, config.Config{}, nil)

	entries := captureLogs(t, func() {
		do(t, app, "POST", "/api/inventory/transfer", map[string]any{
			"sourceStoreId": 1, "destinationStoreId": 2, "productId": 1, "quantity": 2,
		})
		do(t, app, "POST", "/api/inventory/transfer", map[string]any{
			"sourceStoreId": 1, "destinationStoreId": 2, "productId": 1, "quantity": 999,
		})
	})

	audit, ok := findAction(entries, "inventory.transfer")
	if !ok {
		t.Fatal("expected inventory.transfer audit entry")
	}
	if audit.Kind != "audit" || audit.ReqID == "" || audit.Fields["reference"] == nil {
		t.Fatalf("audit entry incomplete: %+v", audit)
	}
	reject, ok := findAction(entries, "inventory.transfer.reject")
	if !ok || reject.Level != "warn" || reject.Status != http.StatusBadRequest {
		t.Fatalf("expected warn reject entry, got %+v", reject)
	}

	var access int
	for _, e := range entries {
		if e.Action == "http.access" {
			access++
		}
	}
	if access != 2 {
		t.Fatalf("want 2 access entries, got %d", access)
	}
}

func TestRateLimit(t *testing.T) {
	app, _ := newTestApp(t, config.Config{RateLimit: 3}, nil)

	for i := 0; i < 4; i++ {
		resp, _ := do(t, app, "GET", "/api/inventory/alerts", nil)
		if i < 3 && resp.StatusCode == http.StatusTooManyRequests {
			t.Fatalf("hit rate limit too early at %d", i)
		}
		if i == 3 && resp.StatusCode != http.StatusTooManyRequests {
			t.Fatalf("expected 429 after limit, got %d", resp.StatusCode)
		}
	}
	// health checks are exempt
	if resp, _ := do(t, app, "GET", "/healthz", nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz limited: %d", resp.StatusCode)
	}
}

func TestBodySizeLimit(t *testing.T) {
	app, _ := newTestApp(t, config.Config{BodyLimit: 1024}, nil)

	oversize := bytes.Repeat([]byte(" "), 4096)
	req := httptest.NewRequest("POST", "/api/inventory/transfer", bytes.NewReader(oversize))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	// Fiber returns an error instead of a response when body too large; treat that as pass
	if err != nil {
		if strings.Contains(err.Error(), "body size exceeds") || strings.Contains(err.Error(), "too large") {
			return
		}
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected 413 for oversize, got %d body=%s", resp.StatusCode, string(body))
	}
}
