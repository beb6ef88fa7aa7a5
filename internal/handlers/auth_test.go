package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/termgate/termgate/internal/auth"
)

func setupAuthTest(t *testing.T) {
	t.Helper()
	setupTestDB(t)

	prev := SessionStore
	SessionStore = auth.NewSessionStore()
	t.Cleanup(func() { SessionStore = prev })
}

func TestLogin(t *testing.T) {
	setupAuthTest(t)
	user := createTestUser(t, "admin")

	req := buildRequest(t, "POST", "/api/v1/auth/login", nil,
		map[string]string{"username": user.Username, "password": "test-password"}, nil)
	w := httptest.NewRecorder()
	Login(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	result := decodeBody(t, w)
	if result["username"] != user.Username {
		t.Errorf("expected username %q, got %v", user.Username, result["username"])
	}

	cookies := w.Result().Cookies()
	found := false
	for _, c := range cookies {
		if c.Name == auth.SessionCookie && c.Value != "" {
			found = true
		}
	}
	if !found {
		t.Error("expected session cookie set")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	setupAuthTest(t)
	user := createTestUser(t, "admin")

	req := buildRequest(t, "POST", "/api/v1/auth/login", nil,
		map[string]string{"username": user.Username, "password": "nope"}, nil)
	w := httptest.NewRecorder()
	Login(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestLoginUnknownUser(t *testing.T) {
	setupAuthTest(t)

	req := buildRequest(t, "POST", "/api/v1/auth/login", nil,
		map[string]string{"username": "ghost", "password": "x"}, nil)
	w := httptest.NewRecorder()
	Login(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestGetCurrentUser(t *testing.T) {
	setupAuthTest(t)
	user := createTestUser(t, "viewer")

	req := buildRequest(t, "GET", "/api/v1/auth/me", user, nil, nil)
	w := httptest.NewRecorder()
	GetCurrentUser(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	result := decodeBody(t, w)
	if result["role"] != "viewer" {
		t.Errorf("expected role viewer, got %v", result["role"])
	}
}

func TestGetCurrentUserUnauthenticated(t *testing.T) {
	setupAuthTest(t)

	req := buildRequest(t, "GET", "/api/v1/auth/me", nil, nil, nil)
	w := httptest.NewRecorder()
	GetCurrentUser(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}
