package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/anshu200710/ai-agent-sub000/pkg/logging"
	"github.com/anshu200710/ai-agent-sub000/pkg/metrics"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
)

type pingRoute struct{}

func (pingRoute) Register(r *mux.Router) {
	r.HandleFunc("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}).Methods(http.MethodPost)
}

func TestHealthIncludesExtraFields(t *testing.T) {
	srv := NewHTTPServer(Config{}, prometheus.NewRegistry(), func() map[string]any {
		return map[string]any{"sessions": 3}
	}, logging.Discard())

	w := httptest.NewRecorder()
	srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" || body["sessions"] != float64(3) {
		t.Fatalf("unexpected health body %v", body)
	}
}

func TestMetricsServesRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs := metrics.NewPrometheusObserver(reg)
	obs.RecordEvent(metrics.NewEvent(metrics.EventTurn, 1, map[string]string{"step": "ivr_menu", "outcome": "started"}))

	srv := NewHTTPServer(Config{}, reg, nil, logging.Discard())
	w := httptest.NewRecorder()
	srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "complaintline_turns_total") {
		t.Fatalf("expected turn counter in metrics output")
	}
}

func TestRegistrarsAreMounted(t *testing.T) {
	srv := NewHTTPServer(Config{Addr: ":9999"}, prometheus.NewRegistry(), nil, logging.Discard(), pingRoute{}, nil)
	if srv.Addr != ":9999" {
		t.Fatalf("expected addr :9999, got %s", srv.Addr)
	}
	w := httptest.NewRecorder()
	srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/ping", nil))
	if w.Code != http.StatusTeapot {
		t.Fatalf("expected 418 from mounted route, got %d", w.Code)
	}
}
