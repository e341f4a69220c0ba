package middle

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	zap "go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	h := RequestIDMiddleware(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
		if Logger(r.Context(), nil) == nil {
			t.Error("expected request scoped logger")
		}
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if !strings.HasPrefix(seen, "req-") {
		t.Errorf("expected generated id, got %q", seen)
	}
	if got := rr.Header().Get(RequestIDHeader); got != seen {
		t.Errorf("header %q does not match context id %q", got, seen)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "client-1")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if seen != "client-1" || rr.Header().Get(RequestIDHeader) != "client-1" {
		t.Errorf("expected client id to be kept, got %q", seen)
	}
}

func TestLoggingMiddlewareRecoversPanic(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}), RequestIDMiddleware(zap.New(core)), LoggingMiddleware(zap.New(core)))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/state", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	errs := logs.FilterMessage("Internal Server Error").All()
	if len(errs) != 1 {
		t.Fatalf("expected one error entry, got %d", len(errs))
	}
	if id := errs[0].ContextMap()["request_id"]; id == "" {
		t.Error("expected request id on error entry")
	}
	done := logs.FilterMessage("Request completed").All()
	if len(done) != 1 || done[0].ContextMap()["status"] != int64(http.StatusInternalServerError) {
		t.Errorf("unexpected completion entries: %+v", done)
	}
}

func TestLoggingMiddlewareStatus(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	h := LoggingMiddleware(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/groups", nil))
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
	entries := logs.FilterMessage("Request completed").All()
	if len(entries) != 1 || entries[0].ContextMap()["status"] != int64(http.StatusConflict) {
		t.Errorf("unexpected entries: %+v", entries)
	}
}

func TestMetricsInstrument(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	h := m.Instrument("GET /api/v1/state", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	for i := 0; i < 3; i++ {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/state", nil))
	}

	got := testutil.ToFloat64(m.requests.WithLabelValues("GET /api/v1/state", "get", "418"))
	if got != 3 {
		t.Errorf("expected 3 requests, got %v", got)
	}
	if n := testutil.CollectAndCount(m.duration); n != 1 {
		t.Errorf("expected one histogram series, got %d", n)
	}
}
