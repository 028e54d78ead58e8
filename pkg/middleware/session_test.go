package middleware_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/agriguru/agriguru-backend/pkg/auth"
	mw "github.com/agriguru/agriguru-backend/pkg/middleware"
)

const testSecret = "test-secret-key-for-signing"

type mockSessionStore struct {
	live    map[string]int64
	err     error
	lookups []string
}

func (m *mockSessionStore) Lookup(_ context.Context, sessionID string) (int64, bool, error) {
	m.lookups = append(m.lookups, sessionID)
	if m.err != nil {
		return 0, false, m.err
	}
	userID, ok := m.live[sessionID]
	return userID, ok, nil
}

func guarded(store *mockSessionStore, sawUser *int64) http.Handler {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*sawUser = mw.SessionUserID(r)
		w.WriteHeader(http.StatusOK)
	})
	return mw.RequireSession(testSecret, store)(next)
}

func token(t *testing.T, sessionID string) string {
	t.Helper()
	tok, err := auth.NewSessionToken(7, "farmer@example.com", sessionID, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}

func TestRequireSessionLiveSession(t *testing.T) {
	store := &mockSessionStore{live: map[string]int64{"session-1": 7}}
	var sawUser int64
	h := guarded(store, &sawUser)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, "session-1"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if sawUser != 7 {
		t.Errorf("user id should reach the handler, got %d", sawUser)
	}
	if len(store.lookups) != 1 || store.lookups[0] != "session-1" {
		t.Errorf("sid claim should drive the lookup, got %v", store.lookups)
	}
}

func TestRequireSessionRevokedToken(t *testing.T) {
	// The token is unexpired but logout already deleted the session.
	store := &mockSessionStore{live: map[string]int64{}}
	var sawUser int64
	h := guarded(store, &sawUser)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, "session-1"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for revoked session, got %d", rec.Code)
	}
	if sawUser != 0 {
		t.Error("handler must not run for a revoked session")
	}
}

func TestRequireSessionCookieToken(t *testing.T) {
	store := &mockSessionStore{live: map[string]int64{"session-2": 7}}
	var sawUser int64
	h := guarded(store, &sawUser)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: token(t, "session-2")})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 via cookie, got %d", rec.Code)
	}
}

func TestRequireSessionMissingToken(t *testing.T) {
	store := &mockSessionStore{live: map[string]int64{"session-1": 7}}
	var sawUser int64
	h := guarded(store, &sawUser)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if len(store.lookups) != 0 {
		t.Error("no lookup without a token")
	}
}

func TestRequireSessionStoreError(t *testing.T) {
	store := &mockSessionStore{err: fmt.Errorf("redis down")}
	var sawUser int64
	h := guarded(store, &sawUser)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, "session-1"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("a failed lookup must not admit the request, got %d", rec.Code)
	}
}
