package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"booking-api/internal/apperr"
	"booking-api/internal/authz"
	"github.com/go-chi/chi/v5"
)

type stubVerifier map[string]authz.Identity

func (s stubVerifier) VerifyToken(ctx context.Context, token string) (authz.Identity, error) {
	identity, ok := s[token]
	if !ok {
		return authz.Identity{}, apperr.Unauthorized("Invalid or expired authentication token")
	}
	return identity, nil
}

var verifier = stubVerifier{
	"admin-token":  {UserID: "65a1b2c3d4e5f60718293a00", Role: "admin"},
	"client-token": {UserID: "65a1b2c3d4e5f60718293a01", Role: "client"},
}

func serve(h http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func echoIdentity() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		_, _ = w.Write([]byte(identity.Role))
	})
}

func TestAuthenticate(t *testing.T) {
	h := Authenticate(verifier)(echoIdentity())

	if rec := serve(h, http.MethodGet, "/", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
	if rec := serve(h, http.MethodGet, "/", "unknown"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown token, got %d", rec.Code)
	}
	rec := serve(h, http.MethodGet, "/", "client-token")
	if rec.Code != http.StatusOK || rec.Body.String() != "client" {
		t.Fatalf("expected client identity, got %d %q", rec.Code, rec.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic abc")
	bad := httptest.NewRecorder()
	h.ServeHTTP(bad, req)
	if bad.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for non-bearer scheme, got %d", bad.Code)
	}
}

func TestOptionalAuthenticate(t *testing.T) {
	h := OptionalAuthenticate(verifier)(echoIdentity())

	if rec := serve(h, http.MethodGet, "/", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("expected anonymous pass-through, got %d", rec.Code)
	}
	if rec := serve(h, http.MethodGet, "/", "admin-token"); rec.Body.String() != "admin" {
		t.Fatalf("expected admin identity, got %q", rec.Body.String())
	}
	if rec := serve(h, http.MethodGet, "/", "unknown"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a bad token that was sent, got %d", rec.Code)
	}
}

func TestAuthorizeUsesPathID(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Authenticate(verifier))
	r.With(Authorize(authz.ActionReadUser)).Get("/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	if rec := serve(r, http.MethodGet, "/users/65a1b2c3d4e5f60718293a01", "client-token"); rec.Code != http.StatusOK {
		t.Fatalf("expected self read allowed, got %d", rec.Code)
	}
	if rec := serve(r, http.MethodGet, "/users/65a1b2c3d4e5f60718293a02", "client-token"); rec.Code != http.StatusForbidden {
		t.Fatalf("expected forbidden, got %d", rec.Code)
	}
	if rec := serve(r, http.MethodGet, "/users/65a1b2c3d4e5f60718293a02", "admin-token"); rec.Code != http.StatusOK {
		t.Fatalf("expected admin allowed, got %d", rec.Code)
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	rec := serve(h, http.MethodGet, "/", "")
	if seen == "" || rec.Header().Get(RequestIDHeader) != seen {
		t.Fatalf("expected generated id in context and header, got %q / %q", seen, rec.Header().Get(RequestIDHeader))
	}

	const inbound = "0b7c3d52-6a0c-4f51-9d3b-5d1f0b6a9c11"
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, inbound)
	h.ServeHTTP(httptest.NewRecorder(), req)
	if seen != inbound {
		t.Fatalf("expected inbound id reused, got %q", seen)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "not a uuid")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if seen == "not a uuid" {
		t.Fatalf("expected malformed inbound id to be replaced")
	}
}

func TestCORS(t *testing.T) {
	h := CORS([]string{"https://app.example.com"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent || rec.Header().Get("Access-Control-Allow-Origin") != "https://app.example.com" {
		t.Fatalf("unexpected preflight: %d %v", rec.Code, rec.Header())
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatalf("unexpected allow origin for unknown origin")
	}
}
