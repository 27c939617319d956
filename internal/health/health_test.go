package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func serve(t *testing.T, handler http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest(http.MethodGet, "/", nil))
	return w
}

func TestHandler_Healthy(t *testing.T) {
	handler := NewHandler("v1.0.0")
	handler.Register("store", Ping(func(context.Context) error { return nil }))

	w := serve(t, handler.ServeHTTP)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var response Response
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Status != StatusHealthy || response.Version != "v1.0.0" {
		t.Fatalf("unexpected response: %+v", response)
	}
	if _, ok := response.Checks["store"]; !ok {
		t.Fatalf("expected store check, got %+v", response.Checks)
	}
}

func TestHandler_Unhealthy(t *testing.T) {
	handler := NewHandler("v1.0.0")
	handler.Register("postgres", Ping(func(context.Context) error { return errors.New("connection refused") }))

	w := serve(t, handler.ServeHTTP)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", w.Code)
	}

	var response Response
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Checks["postgres"].Message != "connection refused" {
		t.Fatalf("expected error message in check, got %+v", response.Checks["postgres"])
	}

	if ready := serve(t, handler.Ready); ready.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected readiness 503, got %d", ready.Code)
	}
}

func TestHandler_DegradedIsStillReady(t *testing.T) {
	handler := NewHandler("dev")
	backlog := 10
	handler.Register("outbox", Threshold(func() int { return backlog }, 5, "pending events"))

	response := handler.Evaluate(context.Background())
	if response.Status != StatusDegraded {
		t.Fatalf("expected degraded, got %s", response.Status)
	}
	if response.Checks["outbox"].Message != "10 pending events" {
		t.Fatalf("unexpected message %q", response.Checks["outbox"].Message)
	}

	if w := serve(t, handler.Ready); w.Code != http.StatusOK {
		t.Fatalf("degraded service must stay ready, got %d", w.Code)
	}

	backlog = 0
	if response := handler.Evaluate(context.Background()); response.Status != StatusHealthy {
		t.Fatalf("expected healthy after backlog drained, got %s", response.Status)
	}
}

func TestLive(t *testing.T) {
	w := serve(t, Live)
	if w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Fatalf("unexpected liveness response: %d %q", w.Code, w.Body.String())
	}
}
