package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	authservice "github.com/solacelabs/solace-backend/internal/service/auth"
	"github.com/solacelabs/solace-backend/internal/store"
)

func newAuthMiddleware(t *testing.T) (func(http.Handler) http.Handler, *authservice.Service, *store.Users) {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	tokens := authservice.NewService("test-secret", 60)
	users := store.NewUsers(db)
	return Auth(tokens, users), tokens, users
}

func protectedProbe(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		account, ok := UserFrom(r.Context())
		if !ok {
			t.Fatal("account missing from context")
		}
		w.Write([]byte(account.Email))
	})
}

func TestAuthAcceptsBearerToken(t *testing.T) {
	middleware, tokens, users := newAuthMiddleware(t)

	account, err := users.Create(context.Background(), "ok@example.com", "ok", "hash")
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	token, err := tokens.CreateAccessToken(account.ID, account.Email)
	if err != nil {
		t.Fatalf("create token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	middleware(protectedProbe(t)).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if rec.Body.String() != "ok@example.com" {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

func TestAuthAcceptsQueryToken(t *testing.T) {
	middleware, tokens, users := newAuthMiddleware(t)

	account, _ := users.Create(context.Background(), "stream@example.com", "stream", "hash")
	token, _ := tokens.CreateAccessToken(account.ID, account.Email)

	req := httptest.NewRequest(http.MethodGet, "/probe?token="+token, nil)
	rec := httptest.NewRecorder()
	middleware(protectedProbe(t)).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestAuthRejectsMissingAndBadTokens(t *testing.T) {
	middleware, _, _ := newAuthMiddleware(t)

	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run")
	})

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	rec := httptest.NewRecorder()
	middleware(next).ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing token status = %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec = httptest.NewRecorder()
	middleware(next).ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token status = %d", rec.Code)
	}
}

func TestAuthRejectsInactiveAccount(t *testing.T) {
	middleware, tokens, users := newAuthMiddleware(t)

	account, _ := users.Create(context.Background(), "off@example.com", "off", "hash")
	token, _ := tokens.CreateAccessToken(account.ID, account.Email)

	// Deactivate after the token was issued.
	if err := users.SetActive(context.Background(), account.ID, false); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run")
	})).ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}
