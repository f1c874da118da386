package app

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCORSPreflight(t *testing.T) {
	server, _ := newTestServer()

	req := httptest.NewRequest(http.MethodOptions, "/api/okrs", nil)
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("preflight = %d, want 204", rr.Code)
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Allow-Origin = %q", got)
	}
	if got := rr.Header().Get("Access-Control-Allow-Methods"); got == "" {
		t.Error("Allow-Methods header missing")
	}
}

func TestUnknownRouteAndMethod(t *testing.T) {
	server, _ := newTestServer()
	token := loginToken(t, server)

	rr, response := doJSON(t, server, http.MethodGet, "/api/nope", token, "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("unknown route = %d, want 404", rr.Code)
	}
	if response["code"] != "NOT_FOUND" {
		t.Errorf("code = %v", response["code"])
	}

	rr, _ = doJSON(t, server, http.MethodPut, "/api/okrs", token, "{}")
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("PUT /api/okrs = %d, want 405", rr.Code)
	}
}

func TestRequestGetsIDHeader(t *testing.T) {
	server, _ := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header missing")
	}
}
