package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/agriguru/agriguru-backend/services/gateway/internal/handlers"
	"github.com/agriguru/agriguru-backend/services/gateway/internal/proxy"
	"github.com/go-chi/chi/v5"
)

// echoBackend records what the proxy forwarded and answers with a
// recognizable payload.
type echoBackend struct {
	name        string
	lastPath    string
	lastMethod  string
	lastHeaders http.Header
	lastBody    string
}

func (b *echoBackend) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.lastPath = r.URL.Path
		if r.URL.RawQuery != "" {
			b.lastPath += "?" + r.URL.RawQuery
		}
		b.lastMethod = r.Method
		b.lastHeaders = r.Header.Clone()

		body := make([]byte, 4096)
		n, _ := r.Body.Read(body)
		b.lastBody = string(body[:n])

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Backend", b.name)
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"service": b.name})
	}
}

func setup(t *testing.T) (*chi.Mux, map[string]*echoBackend) {
	t.Helper()

	backends := map[string]*echoBackend{
		"auth":      {name: "auth"},
		"advisory":  {name: "advisory"},
		"diagnosis": {name: "diagnosis"},
		"assistant": {name: "assistant"},
		"market":    {name: "market"},
	}

	urls := make(map[string]string)
	for name, b := range backends {
		srv := httptest.NewServer(b.handler())
		t.Cleanup(srv.Close)
		urls[name] = srv.URL
	}

	h := handlers.New(
		proxy.NewServiceProxy(urls["auth"]),
		proxy.NewServiceProxy(urls["advisory"]),
		proxy.NewServiceProxy(urls["diagnosis"]),
		proxy.NewServiceProxy(urls["assistant"]),
		proxy.NewServiceProxy(urls["market"]),
	)

	r := chi.NewRouter()
	r.Route("/v1", func(r chi.Router) {
		r.Handle("/auth/*", h.Auth())
		r.Handle("/advisory/*", h.Advisory())
		r.Handle("/diagnosis/*", h.Diagnosis())
		r.Handle("/assistant/*", h.Assistant())
		r.Handle("/market/*", h.Market())
	})
	return r, backends
}

func TestRoutesToCorrectService(t *testing.T) {
	router, backends := setup(t)

	cases := []struct {
		path    string
		service string
		want    string
	}{
		{"/v1/auth/login", "auth", "/login"},
		{"/v1/advisory/officers/nearby?lat=1&lng=2", "advisory", "/officers/nearby?lat=1&lng=2"},
		{"/v1/diagnosis/analyze", "diagnosis", "/analyze"},
		{"/v1/assistant/chat", "assistant", "/chat"},
		{"/v1/market/dataset-info", "market", "/dataset-info"},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))

		if rec.Code != http.StatusOK {
			t.Errorf("%s: status %d", tc.path, rec.Code)
			continue
		}
		if got := backends[tc.service].lastPath; got != tc.want {
			t.Errorf("%s: backend saw path %q, want %q", tc.path, got, tc.want)
		}
		if got := rec.Header().Get("X-Backend"); got != tc.service {
			t.Errorf("%s: response relayed from %q, want %q", tc.path, got, tc.service)
		}
	}
}

func TestForwardPreservesAuthAndBody(t *testing.T) {
	router, backends := setup(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", strings.NewReader(`{"email":"a@b.c"}`))
	req.Header.Set("Authorization", "Bearer token-123")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Cookie", "agriguru_session=abc")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	b := backends["auth"]
	if b.lastMethod != http.MethodPost {
		t.Errorf("method = %q", b.lastMethod)
	}
	if got := b.lastHeaders.Get("Authorization"); got != "Bearer token-123" {
		t.Errorf("Authorization = %q", got)
	}
	if got := b.lastHeaders.Get("Cookie"); got != "agriguru_session=abc" {
		t.Errorf("Cookie = %q", got)
	}
	if b.lastHeaders.Get("X-Gateway-Forwarded") != "true" {
		t.Error("missing X-Gateway-Forwarded header")
	}
	if b.lastBody != `{"email":"a@b.c"}` {
		t.Errorf("body = %q", b.lastBody)
	}
}

func TestUpstreamDownReturnsBadGateway(t *testing.T) {
	// Port 1 is never listening.
	h := handlers.New(
		proxy.NewServiceProxy("http://127.0.0.1:1"),
		proxy.NewServiceProxy("http://127.0.0.1:1"),
		proxy.NewServiceProxy("http://127.0.0.1:1"),
		proxy.NewServiceProxy("http://127.0.0.1:1"),
		proxy.NewServiceProxy("http://127.0.0.1:1"),
	)

	r := chi.NewRouter()
	r.Handle("/v1/auth/*", h.Auth())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/auth/check-auth", nil))

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	var body struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Code != "INTERNAL_ERROR" {
		t.Errorf("code = %q", body.Code)
	}
	if body.Error == "" {
		t.Error("expected an error message in the body")
	}
}
