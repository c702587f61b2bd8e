package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fdg312/portion-planner/internal/reqctx"
)

func TestRequestLog_PropagatesIncomingID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	var seen string
	handler := RequestLogMiddleware(zap.New(core), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = reqctx.GetRequestID(r.Context())
		w.WriteHeader(http.StatusCreated)
	}))

	req := httptest.NewRequest(http.MethodPost, "/v1/plans", nil)
	req.Header.Set("X-Request-ID", "req-123")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if seen != "req-123" {
		t.Errorf("expected request id in context, got %q", seen)
	}
	if got := w.Header().Get("X-Request-ID"); got != "req-123" {
		t.Errorf("expected echoed X-Request-ID, got %q", got)
	}

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["status"] != int64(http.StatusCreated) {
		t.Errorf("expected status 201 logged, got %v", fields["status"])
	}
	if fields["path"] != "/v1/plans" {
		t.Errorf("expected path logged, got %v", fields["path"])
	}
}

func TestRequestLog_GeneratesID(t *testing.T) {
	var seen string
	handler := RequestLogMiddleware(zap.NewNop(), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = reqctx.GetRequestID(r.Context())
		w.Write([]byte("ok"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if seen == "" {
		t.Fatal("expected generated request id")
	}
	if got := w.Header().Get("X-Request-ID"); got != seen {
		t.Errorf("header %q does not match context id %q", got, seen)
	}
}

func TestRequestLog_ServerErrorLoggedAsError(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	handler := RequestLogMiddleware(zap.New(core), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusInternalServerError, "internal_error", "boom")
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if n := logs.FilterMessage("request failed").Len(); n != 1 {
		t.Errorf("expected 1 error entry, got %d", n)
	}
}
