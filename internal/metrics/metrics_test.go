package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	return rec.Body.String()
}

func TestOperationCounter(t *testing.T) {
	m := New()
	m.Operation("claim_chore", ResultOK)
	m.Operation("claim_chore", ResultOK)
	m.Operation("claim_chore", ResultRefused)

	body := scrape(t, m)
	for _, want := range []string{
		`famdo_operations_total{operation="claim_chore",result="ok"} 2`,
		`famdo_operations_total{operation="claim_chore",result="refused"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("missing %q in:\n%s", want, body)
		}
	}
}

func TestPointsCountersIgnoreNonPositive(t *testing.T) {
	m := New()
	m.PointsAwarded(10)
	m.PointsAwarded(0)
	m.PointsPenalized(-3)
	m.PointsPenalized(4)

	body := scrape(t, m)
	if !strings.Contains(body, "famdo_points_awarded_total 10") {
		t.Errorf("awarded counter wrong:\n%s", body)
	}
	if !strings.Contains(body, "famdo_points_penalized_total 4") {
		t.Errorf("penalized counter wrong:\n%s", body)
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.Operation("x", ResultOK)
	m.PointsAwarded(1)
	m.ObserveRefresh(time.Second)
	m.ClientConnected()
	m.ObserveRequest("GET", "/", 200, time.Millisecond)
}

func TestHandlerExposesGauge(t *testing.T) {
	m := New()
	m.ClientConnected()
	m.ClientConnected()
	m.ClientDisconnected()

	if body := scrape(t, m); !strings.Contains(body, "famdo_websocket_clients 1") {
		t.Errorf("body missing gauge value:\n%s", body)
	}
}
