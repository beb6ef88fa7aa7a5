package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/termgate/termgate/internal/audit"
	"github.com/termgate/termgate/internal/auth"
	"github.com/termgate/termgate/internal/database"
	"github.com/termgate/termgate/internal/middleware"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB points the database package at a fresh in-memory SQLite
// database and wires an Auditor against it.
func setupTestDB(t *testing.T) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := db.AutoMigrate(&database.User{}, &database.Server{}, &database.SSHKey{}, &database.AuditLog{}); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}

	prevDB, prevAuditor := database.DB, Auditor
	database.DB = db
	Auditor = audit.NewAuditor(db, 90)

	t.Cleanup(func() {
		database.DB = prevDB
		Auditor = prevAuditor
	})
}

func createTestUser(t *testing.T, role string) *database.User {
	t.Helper()

	hash, err := auth.HashPassword("test-password")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &database.User{
		Username:     "tester-" + role,
		PasswordHash: hash,
		Role:         role,
	}
	if err := database.CreateUser(user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

// buildRequest builds a request with an optional JSON body, authenticated
// user, and chi URL params.
func buildRequest(t *testing.T, method, url string, user *database.User, body interface{}, chiParams map[string]string) *http.Request {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, url, reader)
	req.Header.Set("Content-Type", "application/json")

	if len(chiParams) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range chiParams {
			rctx.URLParams.Add(k, v)
		}
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	if user != nil {
		req = middleware.WithUserForTest(req, user)
	}
	return req
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return result
}
