package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func okHandler() (http.Handler, *bool) {
	called := new(bool)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	}), called
}

// TestAPIKeyAuthMissing verifies requests without an API key are rejected
// before reaching the handler.
func TestAPIKeyAuthMissing(t *testing.T) {
	next, called := okHandler()
	handler := APIKeyAuth("secret")(next)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if *called {
		t.Error("handler was called without API key")
	}
}

// TestAPIKeyAuthInvalid verifies a wrong key is rejected with 403.
func TestAPIKeyAuthInvalid(t *testing.T) {
	next, called := okHandler()
	handler := APIKeyAuth("secret")(next)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-API-Key", "wrong")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
	if *called {
		t.Error("handler was called with invalid API key")
	}
}

// TestAPIKeyAuthValid verifies the matching key passes through.
func TestAPIKeyAuthValid(t *testing.T) {
	next, called := okHandler()
	handler := APIKeyAuth("secret")(next)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-API-Key", "secret")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if !*called {
		t.Error("handler was not called with valid API key")
	}
}

// TestIdentityMissingHeader verifies requests without a user id are rejected.
func TestIdentityMissingHeader(t *testing.T) {
	next, called := okHandler()
	handler := Identity(next)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if *called {
		t.Error("handler was called without user identity")
	}
}

// TestIdentitySetsUserID verifies the user id from the header lands in the
// request context.
func TestIdentitySetsUserID(t *testing.T) {
	want := uuid.New()
	var got uuid.UUID
	handler := Identity(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = userIDFromContext(r)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-User-ID", want.String())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got != want {
		t.Errorf("userIDFromContext = %s, want %s", got, want)
	}
}

// TestCORSPreflight verifies OPTIONS requests short-circuit with 204.
func TestCORSPreflight(t *testing.T) {
	next, called := okHandler()
	handler := CORS(next)

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if *called {
		t.Error("handler was called for preflight request")
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS origin header")
	}
}
