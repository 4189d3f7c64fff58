package trace

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"tracker/internal/log"
)

func TestMiddleware_TagsAndCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMiddleware(nil, log.Discard(), reg)

	var seenID string
	r := mux.NewRouter()
	r.Use(m.Middleware)
	r.HandleFunc("/api/transactions/{id}", func(w http.ResponseWriter, r *http.Request) {
		seenID = GetRequestID(r.Context())
		w.WriteHeader(http.StatusNotFound)
	}).Methods(http.MethodGet)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/transactions/42", nil))

	if !strings.HasPrefix(seenID, "req_") {
		t.Errorf("request id %q missing prefix", seenID)
	}
	if rec.Header().Get(HeaderRequestID) != seenID {
		t.Errorf("response header %q != context id %q", rec.Header().Get(HeaderRequestID), seenID)
	}
	if got := testutil.ToFloat64(m.requests.WithLabelValues("/api/transactions/{id}", "GET", "404")); got != 1 {
		t.Errorf("request counter = %v, want 1", got)
	}
}

func TestMiddleware_KeepsIncomingRequestID(t *testing.T) {
	m := NewMiddleware(nil, log.Discard(), nil)
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(HeaderRequestID, "upstream-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Header().Get(HeaderRequestID) != "upstream-1" {
		t.Errorf("got %q", rec.Header().Get(HeaderRequestID))
	}
}

func TestGenerateRequestID_Unique(t *testing.T) {
	if GenerateRequestID() == GenerateRequestID() {
		t.Fatal("ids should differ")
	}
}
