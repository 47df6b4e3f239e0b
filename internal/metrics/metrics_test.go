package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestMiddlewareRecordsRoutePattern(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/blogs/{slug}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	r.Handle("/metrics", m.Handler())

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/blogs/hello", nil))
	m.Event("post_published")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()

	if !strings.Contains(body, `techscribe_http_requests_total{code="418",method="GET",route="/blogs/{slug}"} 1`) {
		t.Fatalf("request counter missing from output:\n%s", body)
	}
	if !strings.Contains(body, `techscribe_domain_events_total{event="post_published"} 1`) {
		t.Fatalf("event counter missing from output:\n%s", body)
	}
}

func TestNilMetricsEventIsNoop(t *testing.T) {
	var m *Metrics
	m.Event("anything")
}
