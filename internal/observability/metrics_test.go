package observability

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/danmuck/pomoctl/internal/testutil/testlog"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/goleak"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	testlog.Start(t)
	RegisterMetrics()
	RegisterMetrics()

	before := testutil.ToFloat64(commands.WithLabelValues("work", "rejected"))
	RecordCommand("work", false)
	if got := testutil.ToFloat64(commands.WithLabelValues("work", "rejected")); got != before+1 {
		t.Fatalf("expected rejected work count to grow, before=%v after=%v", before, got)
	}

	RecordMalformed()
	RecordTimerSignal(TimerFailed)
	RecordHTTPRequest("GET", "/health", 200, 12*time.Millisecond)

	SetAlertActive(true)
	if got := testutil.ToFloat64(alertActive); got != 1 {
		t.Fatalf("expected alert gauge 1, got %v", got)
	}
	SetAlertActive(false)
	if got := testutil.ToFloat64(alertActive); got != 0 {
		t.Fatalf("expected alert gauge 0, got %v", got)
	}
}

func TestRouterServesHealthAndMetrics(t *testing.T) {
	testlog.Start(t)
	r := NewRouter(time.Now())
	RecordCommand("get_state", true)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Fatalf("unexpected health response code=%d body=%s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status=%d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `pomoctl_commands_total{action="get_state",outcome="accepted"}`) {
		t.Fatalf("metrics output missing command counter")
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	testlog.Start(t)
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, ln, time.Now()) }()

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	resp, err := client.Get("http://" + ln.Addr().String() + "/health")
	if err != nil {
		t.Fatalf("get health: %v", err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("serve did not stop")
	}
}
